package api

import "time"

type Empty struct{}

type OKResponse struct {
	OK bool `json:"ok"`
}

// Account is the full account view, visible to superadmins and to the
// account itself.
type Account struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Nickname      string    `json:"nickname"`
	Role          string    `json:"role"`
	LoginType     string    `json:"loginType"`
	Token         string    `json:"token,omitempty"`
	LinkAccountID *int64    `json:"linkAccountId,omitempty"`
	Image         string    `json:"image,omitempty"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PublicAccount carries only fields any visitor may see. Tokens and
// password state are never included.
type PublicAccount struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Nickname      string    `json:"nickname"`
	Role          string    `json:"role"`
	LoginType     string    `json:"loginType"`
	LinkAccountID *int64    `json:"linkAccountId,omitempty"`
	Image         string    `json:"image,omitempty"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type ListResponse struct {
	Accounts []Account `json:"accounts"`
}

type PublicUserListResponse struct {
	Accounts []PublicAccount `json:"accounts"`
}

type LinkCandidate struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
}

type NativeAccountListResponse struct {
	Accounts []LinkCandidate `json:"accounts"`
}

type LinkAccountRequest struct {
	ID               int64  `json:"id"`
	OriginalPassword string `json:"originalPassword"`
}

type UnlinkAccountRequest struct {
	ID int64 `json:"id"`
}

// DetailRequest asks for the caller's own profile when ID is nil.
type DetailRequest struct {
	ID *int64 `json:"id,omitempty"`
}

type DetailResponse struct {
	Account  Account `json:"account"`
	IsLinked bool    `json:"isLinked"`
}

type CanRegisterResponse struct {
	Allowed bool `json:"allowed"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginResponse is returned by Login and LoginTwoFactor. With
// RequiresTwoFactor set, Token is empty and Challenge must be answered.
type LoginResponse struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Nickname          string `json:"nickname"`
	Role              string `json:"role"`
	Token             string `json:"token,omitempty"`
	Image             string `json:"image,omitempty"`
	LoginType         string `json:"loginType"`
	RequiresTwoFactor bool   `json:"requiresTwoFactor"`
	Challenge         string `json:"challenge,omitempty"`
}

type LoginTwoFactorRequest struct {
	Challenge string `json:"challenge"`
	Code      string `json:"code"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UpsertUserRequest struct {
	ID               *int64 `json:"id,omitempty"`
	Name             string `json:"name,omitempty"`
	Password         string `json:"password,omitempty"`
	OriginalPassword string `json:"originalPassword,omitempty"`
	Nickname         string `json:"nickname,omitempty"`
	Image            string `json:"image,omitempty"`
}

type UpsertUserByAdminRequest struct {
	ID       *int64 `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password,omitempty"`
	Nickname string `json:"nickname,omitempty"`
}

type Generate2FASecretRequest struct {
	Name string `json:"name"`
}

type Generate2FASecretResponse struct {
	Secret string `json:"secret"`
	QRCode string `json:"qrCode"`
}

// Verify2FATokenRequest enables two-factor when Token is a valid code for
// Secret.
type Verify2FATokenRequest struct {
	Token  string `json:"token"`
	Secret string `json:"secret"`
}

type SetAllowRegisterRequest struct {
	Value bool `json:"value"`
}

type AvatarUploadURLResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type DeleteUserRequest struct {
	ID int64 `json:"id"`
}

// Package models holds the persisted server-side records.
package models

import (
	"time"

	"github.com/dmitrijs2005/noteshelf/internal/common"
)

// Account is a row of the accounts table.
//
// Password is nil for externally authenticated accounts. LinkAccountID, when
// set, points at the native account this one is linked to.
type Account struct {
	ID            int64
	Name          string
	Nickname      string
	Password      *string
	Role          string
	LoginType     string
	APIToken      string
	LinkAccountID *int64
	Image         string
	Description   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsNative reports whether the account signs in with a local password.
func (a *Account) IsNative() bool { return a.LoginType == common.LoginTypeNative }

// IsSuperAdmin reports whether the account holds the superadmin role.
func (a *Account) IsSuperAdmin() bool { return a.Role == common.RoleSuperAdmin }

// StoredPassword returns the password hash or "" for accounts without one.
func (a *Account) StoredPassword() string {
	if a.Password == nil {
		return ""
	}
	return *a.Password
}

// AccountPatch lists the columns an upsert may change. Nil fields are left
// untouched.
type AccountPatch struct {
	Name     *string
	Nickname *string
	Password *string
	Image    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p AccountPatch) IsEmpty() bool {
	return p.Name == nil && p.Nickname == nil && p.Password == nil && p.Image == nil
}

// LinkCandidate is the public face of a native account offered for linking.
type LinkCandidate struct {
	ID       int64
	Name     string
	Nickname string
}

// StoredCredential is an (account, password) pair read by the legacy hash
// migration.
type StoredCredential struct {
	AccountID int64
	Password  string
}

// Package auth issues and verifies account tokens (HS256 JWT).
package auth

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Issued-at carries milliseconds so session cutoffs inside the same second
// still apply.
func init() { jwt.TimePrecision = time.Millisecond }

// LowPermissionScope is the fixed operation allowlist of low-permission
// tokens.
var LowPermissionScope = []string{"notes.upsert", "ai.completions"}

// Claims carries the account identity. Subject is the decimal account id.
// A nil Permissions means the token is authorized by role alone.
type Claims struct {
	jwt.RegisteredClaims
	Role        string   `json:"role"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions,omitempty"`
}

// AccountID parses the subject.
func (c *Claims) AccountID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, common.ErrInvalidToken
	}
	return id, nil
}

// Scoped reports whether the token is restricted to a permission allowlist.
func (c *Claims) Scoped() bool { return c.Permissions != nil }

// Allows reports whether a scoped token may call operation.
func (c *Claims) Allows(operation string) bool {
	return !c.Scoped() || slices.Contains(c.Permissions, operation)
}

type Issuer struct {
	secrets  SecretProvider
	validity time.Duration
	now      func() time.Time
}

func NewIssuer(secrets SecretProvider, validity time.Duration) *Issuer {
	return &Issuer{secrets: secrets, validity: validity, now: time.Now}
}

// Issue signs a token for the account. Storing it as the account's api token
// is the caller's job.
func (i *Issuer) Issue(ctx context.Context, id int64, name, role string, permissions ...string) (string, error) {
	secret, err := i.secrets.Secret(ctx)
	if err != nil {
		return "", err
	}

	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
		Role: role,
		Name: name,
	}
	if len(permissions) > 0 {
		claims.Permissions = permissions
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// IssueLowPermission signs a token limited to LowPermissionScope.
func (i *Issuer) IssueLowPermission(ctx context.Context, id int64, name, role string) (string, error) {
	return i.Issue(ctx, id, name, role, slices.Clone(LowPermissionScope)...)
}

// Verify checks signature, algorithm and expiry. Any failure is reported as
// common.ErrInvalidToken.
func (i *Issuer) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, common.ErrMissingToken
	}

	secret, err := i.secrets.Secret(ctx)
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if _, err := claims.AccountID(); err != nil {
		return nil, err
	}

	return claims, nil
}

package services

import (
	"context"

	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/dmitrijs2005/noteshelf/internal/dbx"
	"github.com/dmitrijs2005/noteshelf/internal/server/auth"
	"github.com/dmitrijs2005/noteshelf/internal/server/twofactor"
)

// Caller is the authenticated account performing an operation.
type Caller struct {
	ID   int64
	Role string
}

// CallerFromClaims resolves the caller of a verified token.
func CallerFromClaims(c *auth.Claims) (Caller, error) {
	if c == nil {
		return Caller{}, common.ErrMissingToken
	}
	id, err := c.AccountID()
	if err != nil {
		return Caller{}, err
	}
	return Caller{ID: id, Role: c.Role}, nil
}

func (c Caller) IsSuperAdmin() bool { return c.Role == common.RoleSuperAdmin }

type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, stored string) (bool, error)
}

type TokenIssuer interface {
	Issue(ctx context.Context, id int64, name, role string, permissions ...string) (string, error)
	IssueLowPermission(ctx context.Context, id int64, name, role string) (string, error)
}

// SessionInvalidator ends the current sessions of accounts.
type SessionInvalidator interface {
	Invalidate(ctx context.Context, accountIDs ...int64) error
}

// NoteRemover deletes the notes owned by an account inside the caller's
// transaction. Notes live outside this service.
type NoteRemover interface {
	RemoveNotesOf(ctx context.Context, tx dbx.DBTX, accountID int64) error
}

// NoNotes is a NoteRemover for deployments without a notes store.
type NoNotes struct{}

func (NoNotes) RemoveNotesOf(context.Context, dbx.DBTX, int64) error { return nil }

// LoginChallenges stores logins waiting for their second factor.
type LoginChallenges interface {
	Create(ctx context.Context, accountID int64) (string, error)
	Get(ctx context.Context, id string) (*twofactor.Challenge, error)
	Consume(ctx context.Context, id string) error
	RecordFailure(ctx context.Context, id string) (bool, error)
}

type TOTP interface {
	Enroll(account, secret string) (twofactor.Enrollment, error)
	VerifyCode(code, secret string) bool
}

// Package accounts declares the server-side repository contract for account
// rows.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/noteshelf/internal/server/models"
)

// Repository defines account persistence. Lookups of a missing row return an
// error wrapping common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)

	// GetNativeByName looks up a native (password) account by its unique name.
	GetNativeByName(ctx context.Context, name string) (*models.Account, error)

	List(ctx context.Context) ([]*models.Account, error)
	ListNative(ctx context.Context) ([]*models.Account, error)

	// ListLinkCandidates returns native accounts that no other account links to.
	ListLinkCandidates(ctx context.Context) ([]models.LinkCandidate, error)

	Count(ctx context.Context) (int64, error)

	// Update applies the non-nil fields of patch.
	Update(ctx context.Context, id int64, patch models.AccountPatch) error
	UpdatePassword(ctx context.Context, id int64, hash string) error

	SetLink(ctx context.Context, id, targetID int64) error

	// ClearLinksTo detaches every account linked to targetID and returns
	// their ids.
	ClearLinksTo(ctx context.Context, targetID int64) ([]int64, error)
	IsLinked(ctx context.Context, id int64) (bool, error)

	Delete(ctx context.Context, id int64) error

	// ListLegacyPasswords returns stored passwords that lack the pbkdf2 tag.
	ListLegacyPasswords(ctx context.Context) ([]models.StoredCredential, error)
}

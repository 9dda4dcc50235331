// Package configs declares the repository contract for key/value
// configuration entries, both global (user id 0) and per account.
package configs

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/noteshelf/internal/server/models"
)

type Repository interface {
	// Get returns the entry for (key, userID) or common.ErrorNotFound.
	Get(ctx context.Context, key string, userID int64) (*models.ConfigEntry, error)

	// Set inserts or replaces the entry for (key, userID).
	Set(ctx context.Context, key string, userID int64, value json.RawMessage) error

	// Insert stores the entry only when (key, userID) is absent and reports
	// whether it did.
	Insert(ctx context.Context, key string, userID int64, value json.RawMessage) (bool, error)

	DeleteByUser(ctx context.Context, userID int64) error
}

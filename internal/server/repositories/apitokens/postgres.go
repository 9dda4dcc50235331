package apitokens

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/dmitrijs2005/noteshelf/internal/dbx"
)

// PostgresRepository keeps tokens in the accounts.api_token column.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Set replaces the stored token. Concurrent writers race; the last one wins.
func (r *PostgresRepository) Set(ctx context.Context, accountID int64, token string) error {
	query := `
		UPDATE accounts SET api_token = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, accountID, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrAccountNotFound
	}
	return nil
}

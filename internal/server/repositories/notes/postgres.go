// Package notes provides the PostgreSQL queries the account service needs on
// the notes table. Note content itself is managed elsewhere.
package notes

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/noteshelf/internal/dbx"
)

// PostgresRepository implements note queries over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// DeleteByOwner removes every note of accountID and returns how many rows
// were deleted.
func (r *PostgresRepository) DeleteByOwner(ctx context.Context, accountID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE account_id = $1`, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

// Remover deletes an account's notes inside the caller's transaction.
type Remover struct{}

func (Remover) RemoveNotesOf(ctx context.Context, tx dbx.DBTX, accountID int64) error {
	_, err := NewPostgresRepository(tx).DeleteByOwner(ctx, accountID)
	return err
}

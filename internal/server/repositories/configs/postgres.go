package configs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/dmitrijs2005/noteshelf/internal/dbx"
	"github.com/dmitrijs2005/noteshelf/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, key string, userID int64) (*models.ConfigEntry, error) {
	query :=
		`SELECT value FROM configs
		 WHERE key = $1 AND user_id = $2
		 `

	var value []byte
	if err := r.db.QueryRowContext(ctx, query, key, userID).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &models.ConfigEntry{Key: key, UserID: userID, Value: value}, nil
}

func (r *PostgresRepository) Set(ctx context.Context, key string, userID int64, value json.RawMessage) error {
	query :=
		`INSERT INTO configs (key, user_id, value)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key, user_id) DO UPDATE SET value = EXCLUDED.value
		 `

	if _, err := r.db.ExecContext(ctx, query, key, userID, []byte(value)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Insert(ctx context.Context, key string, userID int64, value json.RawMessage) (bool, error) {
	query :=
		`INSERT INTO configs (key, user_id, value)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key, user_id) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, key, userID, []byte(value))
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM configs WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

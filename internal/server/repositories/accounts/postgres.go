package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/dmitrijs2005/noteshelf/internal/dbx"
	"github.com/dmitrijs2005/noteshelf/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const accountColumns = `id, name, nickname, password, role, login_type, api_token,
		link_account_id, image, description, created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const uniqueViolation = "23505"

// dbError wraps err, turning a violation of the native name index into
// common.ErrUsernameTaken.
func dbError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return common.ErrUsernameTaken
	}
	return fmt.Errorf("db error: %w", err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	var password sql.NullString
	var link sql.NullInt64
	err := row.Scan(&a.ID, &a.Name, &a.Nickname, &password, &a.Role, &a.LoginType, &a.APIToken,
		&link, &a.Image, &a.Description, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if password.Valid {
		a.Password = &password.String
	}
	if link.Valid {
		a.LinkAccountID = &link.Int64
	}
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (name, nickname, password, role, login_type, api_token, image, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.Name, account.Nickname, account.Password, account.Role, account.LoginType,
		account.APIToken, account.Image, account.Description,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, dbError(err)
	}

	return account, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *PostgresRepository) GetNativeByName(ctx context.Context, name string) (*models.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE name = $1 AND login_type = ''`, name)
}

func (r *PostgresRepository) list(ctx context.Context, query string) ([]*models.Account, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Account, error) {
	return r.list(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
}

func (r *PostgresRepository) ListNative(ctx context.Context) ([]*models.Account, error) {
	return r.list(ctx, `SELECT `+accountColumns+` FROM accounts WHERE login_type = '' ORDER BY id`)
}

func (r *PostgresRepository) ListLinkCandidates(ctx context.Context) ([]models.LinkCandidate, error) {
	query :=
		`SELECT a.id, a.name, a.nickname FROM accounts a
		 WHERE a.login_type = ''
		   AND NOT EXISTS (SELECT 1 FROM accounts l WHERE l.link_account_id = a.id)
		 ORDER BY a.id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.LinkCandidate
	for rows.Next() {
		var c models.LinkCandidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Nickname); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return dbError(err)
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

func (r *PostgresRepository) Update(ctx context.Context, id int64, patch models.AccountPatch) error {
	query :=
		`UPDATE accounts SET
		   name = COALESCE($2, name),
		   nickname = COALESCE($3, nickname),
		   password = COALESCE($4, password),
		   image = COALESCE($5, image),
		   updated_at = now()
		 WHERE id = $1
		 `
	return r.execOne(ctx, query, id, patch.Name, patch.Nickname, patch.Password, patch.Image)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.execOne(ctx, `UPDATE accounts SET password = $2, updated_at = now() WHERE id = $1`, id, hash)
}

func (r *PostgresRepository) SetLink(ctx context.Context, id, targetID int64) error {
	return r.execOne(ctx, `UPDATE accounts SET link_account_id = $2, updated_at = now() WHERE id = $1`, id, targetID)
}

func (r *PostgresRepository) ClearLinksTo(ctx context.Context, targetID int64) ([]int64, error) {
	query :=
		`UPDATE accounts SET link_account_id = NULL, updated_at = now()
		 WHERE link_account_id = $1
		 RETURNING id
		 `

	rows, err := r.db.QueryContext(ctx, query, targetID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}

func (r *PostgresRepository) IsLinked(ctx context.Context, id int64) (bool, error) {
	var linked bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE link_account_id = $1)`, id).Scan(&linked)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return linked, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM accounts WHERE id = $1`, id)
}

func (r *PostgresRepository) ListLegacyPasswords(ctx context.Context) ([]models.StoredCredential, error) {
	query :=
		`SELECT id, password FROM accounts
		 WHERE password IS NOT NULL AND password NOT LIKE 'pbkdf2:%'
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.StoredCredential
	for rows.Next() {
		var c models.StoredCredential
		if err := rows.Scan(&c.AccountID, &c.Password); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

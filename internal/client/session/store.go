// Package session keeps the CLI's signed-in state in a local SQLite file so
// a token survives between invocations.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/noteshelf/internal/client/migrations"
	"github.com/dmitrijs2005/noteshelf/internal/filex"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const (
	keyToken = "token"
	keyName  = "name"
	dbFile   = "session.db"
)

// State is what the CLI remembers about the signed-in account.
type State struct {
	Token string
	Name  string
}

func (s State) SignedIn() bool { return s.Token != "" }

type Store struct {
	db   *sql.DB
	repo Repository
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open creates dir under the working directory if needed and opens the
// session database inside it.
func Open(ctx context.Context, dir string) (*Store, error) {
	path, err := filex.EnsureSubdDir(dir)
	if err != nil {
		return nil, err
	}
	return OpenDSN(ctx, filepath.Join(path, dbFile))
}

func OpenDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, repo: NewSQLiteRepository(db)}, nil
}

func (s *Store) Load(ctx context.Context) (State, error) {
	token, err := s.repo.Get(ctx, keyToken)
	if err != nil {
		return State{}, err
	}
	name, err := s.repo.Get(ctx, keyName)
	if err != nil {
		return State{}, err
	}
	return State{Token: string(token), Name: string(name)}, nil
}

func (s *Store) Save(ctx context.Context, st State) error {
	if err := s.repo.Set(ctx, keyToken, []byte(st.Token)); err != nil {
		return err
	}
	return s.repo.Set(ctx, keyName, []byte(st.Name))
}

func (s *Store) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

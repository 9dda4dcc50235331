package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/dmitrijs2005/noteshelf/internal/dbx"
	"github.com/dmitrijs2005/noteshelf/internal/logging"
	"github.com/dmitrijs2005/noteshelf/internal/server/auth"
	"github.com/dmitrijs2005/noteshelf/internal/server/credentials"
	"github.com/dmitrijs2005/noteshelf/internal/server/models"
	"github.com/dmitrijs2005/noteshelf/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/noteshelf/internal/server/repositories/apitokens"
	"github.com/dmitrijs2005/noteshelf/internal/server/repositories/configs"
)

// --- in-memory store behind the fake repository manager ---

type configKey struct {
	key    string
	userID int64
}

type memStore struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*models.Account
	configs  map[configKey]json.RawMessage

	failCount error
}

func newMemStore() *memStore {
	return &memStore{accounts: map[int64]*models.Account{}, configs: map[configKey]json.RawMessage{}}
}

func clone(a *models.Account) *models.Account {
	c := *a
	if a.Password != nil {
		p := *a.Password
		c.Password = &p
	}
	if a.LinkAccountID != nil {
		l := *a.LinkAccountID
		c.LinkAccountID = &l
	}
	return &c
}

// add inserts an account directly, bypassing the services.
func (s *memStore) add(a *models.Account) *models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	a.ID = s.nextID
	s.accounts[a.ID] = clone(a)
	return a
}

func (s *memStore) get(id int64) *models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[id]; ok {
		return clone(a)
	}
	return nil
}

func (s *memStore) setRaw(key string, userID int64, raw json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[configKey{key, userID}] = raw
}

// seedConfig stores v the way the configs repository does, as {"value": v}.
func (s *memStore) seedConfig(t *testing.T, key string, userID int64, v any) {
	t.Helper()
	raw, err := models.EncodeConfigValue(v)
	if err != nil {
		t.Fatalf("encode config %s: %v", key, err)
	}
	s.setRaw(key, userID, raw)
}

func (s *memStore) config(key string, userID int64) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.configs[configKey{key, userID}]
	return v, ok
}

// storedConfig returns the unwrapped value of a config entry.
func storedConfig[T any](t *testing.T, s *memStore, key string, userID int64) T {
	t.Helper()
	raw, ok := s.config(key, userID)
	if !ok {
		t.Fatalf("config %s for %d not stored", key, userID)
	}
	v, ok := models.DecodeConfigValue[T](raw)
	if !ok {
		t.Fatalf("config %s for %d is not {\"value\": %T}: %s", key, userID, v, raw)
	}
	return v
}

type fakeAccountsRepo struct{ s *memStore }

func (r *fakeAccountsRepo) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.accounts {
		if e.LoginType == "" && a.LoginType == "" && e.Name == a.Name {
			return nil, common.ErrUsernameTaken
		}
	}
	r.s.nextID++
	a.ID = r.s.nextID
	a.CreatedAt, a.UpdatedAt = time.Now(), time.Now()
	r.s.accounts[a.ID] = clone(a)
	return a, nil
}

func (r *fakeAccountsRepo) GetByID(_ context.Context, id int64) (*models.Account, error) {
	if a := r.s.get(id); a != nil {
		return a, nil
	}
	return nil, common.ErrAccountNotFound
}

func (r *fakeAccountsRepo) GetNativeByName(_ context.Context, name string) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.Name == name && a.LoginType == "" {
			return clone(a), nil
		}
	}
	return nil, common.ErrAccountNotFound
}

func (r *fakeAccountsRepo) sorted(keep func(*models.Account) bool) []*models.Account {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Account
	for _, a := range r.s.accounts {
		if keep(a) {
			out = append(out, clone(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeAccountsRepo) List(context.Context) ([]*models.Account, error) {
	return r.sorted(func(*models.Account) bool { return true }), nil
}

func (r *fakeAccountsRepo) ListNative(context.Context) ([]*models.Account, error) {
	return r.sorted(func(a *models.Account) bool { return a.LoginType == "" }), nil
}

func (r *fakeAccountsRepo) isLinkedLocked(id int64) bool {
	for _, a := range r.s.accounts {
		if a.LinkAccountID != nil && *a.LinkAccountID == id {
			return true
		}
	}
	return false
}

func (r *fakeAccountsRepo) ListLinkCandidates(context.Context) ([]models.LinkCandidate, error) {
	var out []models.LinkCandidate
	for _, a := range r.sorted(func(a *models.Account) bool { return a.LoginType == "" }) {
		r.s.mu.Lock()
		linked := r.isLinkedLocked(a.ID)
		r.s.mu.Unlock()
		if !linked {
			out = append(out, models.LinkCandidate{ID: a.ID, Name: a.Name, Nickname: a.Nickname})
		}
	}
	return out, nil
}

func (r *fakeAccountsRepo) Count(context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failCount != nil {
		return 0, r.s.failCount
	}
	return int64(len(r.s.accounts)), nil
}

func (r *fakeAccountsRepo) mutate(id int64, fn func(a *models.Account)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return common.ErrAccountNotFound
	}
	fn(a)
	a.UpdatedAt = time.Now()
	return nil
}

func (r *fakeAccountsRepo) Update(_ context.Context, id int64, p models.AccountPatch) error {
	return r.mutate(id, func(a *models.Account) {
		if p.Name != nil {
			a.Name = *p.Name
		}
		if p.Nickname != nil {
			a.Nickname = *p.Nickname
		}
		if p.Password != nil {
			v := *p.Password
			a.Password = &v
		}
		if p.Image != nil {
			a.Image = *p.Image
		}
	})
}

func (r *fakeAccountsRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	return r.mutate(id, func(a *models.Account) { a.Password = &hash })
}

func (r *fakeAccountsRepo) SetLink(_ context.Context, id, targetID int64) error {
	return r.mutate(id, func(a *models.Account) { a.LinkAccountID = &targetID })
}

func (r *fakeAccountsRepo) ClearLinksTo(_ context.Context, targetID int64) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []int64
	for _, a := range r.s.accounts {
		if a.LinkAccountID != nil && *a.LinkAccountID == targetID {
			a.LinkAccountID = nil
			ids = append(ids, a.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakeAccountsRepo) IsLinked(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.isLinkedLocked(id), nil
}

func (r *fakeAccountsRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[id]; !ok {
		return common.ErrAccountNotFound
	}
	delete(r.s.accounts, id)
	return nil
}

func (r *fakeAccountsRepo) ListLegacyPasswords(context.Context) ([]models.StoredCredential, error) {
	var out []models.StoredCredential
	for _, a := range r.sorted(func(a *models.Account) bool {
		return a.Password != nil && !strings.HasPrefix(*a.Password, "pbkdf2:")
	}) {
		out = append(out, models.StoredCredential{AccountID: a.ID, Password: *a.Password})
	}
	return out, nil
}

type fakeConfigsRepo struct{ s *memStore }

func (r *fakeConfigsRepo) Get(_ context.Context, key string, userID int64) (*models.ConfigEntry, error) {
	v, ok := r.s.config(key, userID)
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.ConfigEntry{Key: key, UserID: userID, Value: v}, nil
}

func (r *fakeConfigsRepo) Set(_ context.Context, key string, userID int64, value json.RawMessage) error {
	r.s.setRaw(key, userID, value)
	return nil
}

func (r *fakeConfigsRepo) Insert(_ context.Context, key string, userID int64, value json.RawMessage) (bool, error) {
	if _, ok := r.s.config(key, userID); ok {
		return false, nil
	}
	r.s.setRaw(key, userID, value)
	return true, nil
}

func (r *fakeConfigsRepo) DeleteByUser(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k := range r.s.configs {
		if k.userID == userID {
			delete(r.s.configs, k)
		}
	}
	return nil
}

type fakeTokensRepo struct{ s *memStore }

func (r *fakeTokensRepo) Set(_ context.Context, id int64, token string) error {
	return (&fakeAccountsRepo{r.s}).mutate(id, func(a *models.Account) { a.APIToken = token })
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository        { return &fakeAccountsRepo{m.s} }
func (m *fakeRepoManager) Configs(dbx.DBTX) configs.Repository          { return &fakeConfigsRepo{m.s} }
func (m *fakeRepoManager) APITokens(dbx.DBTX) apitokens.Repository      { return &fakeTokensRepo{m.s} }

// --- other collaborators ---

type recordingSessions struct {
	mu  sync.Mutex
	ids []int64
}

func (r *recordingSessions) Invalidate(_ context.Context, ids ...int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, ids...)
	return nil
}

type recordingNotes struct {
	removed []int64
	err     error
}

func (r *recordingNotes) RemoveNotesOf(_ context.Context, _ dbx.DBTX, id int64) error {
	if r.err != nil {
		return r.err
	}
	r.removed = append(r.removed, id)
	return nil
}

// --- helpers ---

var testSecret = auth.StaticSecret("test-secret")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func expectCommit(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func expectRollback(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}

func newPasswords() *credentials.Manager { return credentials.NewManager(2, logging.Nop{}) }

func newIssuer() *auth.Issuer { return auth.NewIssuer(testSecret, 100*365*24*time.Hour) }

func mustHash(t *testing.T, p string) *string {
	t.Helper()
	h, err := newPasswords().Hash(context.Background(), p)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &h
}

type accountFixture struct {
	db       *sql.DB
	mock     sqlmock.Sqlmock
	store    *memStore
	svc      *AccountService
	sessions *recordingSessions
	notes    *recordingNotes
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	store := newMemStore()
	rm := &fakeRepoManager{s: store}
	sessions := &recordingSessions{}
	notes := &recordingNotes{}
	svc := NewAccountService(db, rm, AccountDeps{
		Passwords: newPasswords(),
		Tokens:    newIssuer(),
		Sessions:  sessions,
		Notes:     notes,
	})
	return &accountFixture{db: db, mock: mock, store: store, svc: svc, sessions: sessions, notes: notes}
}

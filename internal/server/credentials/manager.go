// Package credentials hashes and verifies account passwords.
//
// Stored hashes are self-describing: "pbkdf2:<salt-hex>:<key-hex>". The key is
// PBKDF2-HMAC-SHA-512 over the password with the salt's hex string as salt,
// 1000 iterations and a 64-byte output.
package credentials

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/dmitrijs2005/noteshelf/internal/logging"
	"github.com/dmitrijs2005/noteshelf/internal/server/models"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/sync/semaphore"
)

const (
	Scheme     = "pbkdf2"
	iterations = 1000
	keyLength  = 64
	saltLength = 16
)

// LegacyStore is the slice of the account repository the legacy migration
// needs.
type LegacyStore interface {
	ListLegacyPasswords(ctx context.Context) ([]models.StoredCredential, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

// Manager runs hashing on a bounded pool so that concurrent logins can not
// saturate every CPU.
type Manager struct {
	sem    *semaphore.Weighted
	logger logging.Logger
}

func NewManager(workers int, logger logging.Logger) *Manager {
	if workers < 1 {
		workers = 1
	}
	return &Manager{
		sem:    semaphore.NewWeighted(int64(workers)),
		logger: logger.With("module", "credentials"),
	}
}

func derive(password, salt string) string {
	return hex.EncodeToString(pbkdf2.Key([]byte(password), []byte(salt), iterations, keyLength, sha512.New))
}

func (m *Manager) run(ctx context.Context, fn func()) error {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer m.sem.Release(1)
	fn()
	return nil
}

// Hash derives a new salted hash for password.
func (m *Manager) Hash(ctx context.Context, password string) (string, error) {
	salt, err := common.MakeRandHexString(saltLength)
	if err != nil {
		return "", fmt.Errorf("%w: salt: %v", common.ErrorInternal, err)
	}

	var key string
	if err := m.run(ctx, func() { key = derive(password, salt) }); err != nil {
		return "", err
	}
	return Scheme + ":" + salt + ":" + key, nil
}

// Verify reports whether password matches stored. Unknown schemes and
// malformed hashes never match. The only error is ctx cancellation while
// waiting for a worker.
func (m *Manager) Verify(ctx context.Context, password, stored string) (bool, error) {
	parts := strings.Split(stored, ":")
	if len(parts) != 3 || parts[0] != Scheme || parts[1] == "" || parts[2] == "" {
		return false, nil
	}

	var key string
	if err := m.run(ctx, func() { key = derive(password, parts[1]) }); err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(parts[2])) == 1, nil
}

// IsHashed reports whether stored already carries the scheme tag.
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, Scheme+":")
}

// MigrateLegacy rehashes every stored password that lacks the scheme tag,
// treating the stored value as the plaintext. Already tagged rows are
// skipped, so running it again changes nothing.
func (m *Manager) MigrateLegacy(ctx context.Context, store LegacyStore) (int, error) {
	legacy, err := store.ListLegacyPasswords(ctx)
	if err != nil {
		return 0, err
	}

	migrated := 0
	for _, c := range legacy {
		if IsHashed(c.Password) {
			continue
		}
		hash, err := m.Hash(ctx, c.Password)
		if err != nil {
			return migrated, err
		}
		if err := store.UpdatePassword(ctx, c.AccountID, hash); err != nil {
			return migrated, err
		}
		migrated++
	}

	if migrated > 0 {
		m.logger.Info(ctx, "migrated legacy password hashes", "count", migrated)
	}
	return migrated, nil
}

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/dmitrijs2005/noteshelf/internal/server/models"
)

// SecretProvider yields the process-wide token signing secret.
type SecretProvider interface {
	Secret(ctx context.Context) ([]byte, error)
}

// StaticSecret is a fixed secret.
type StaticSecret []byte

func (s StaticSecret) Secret(context.Context) ([]byte, error) { return s, nil }

// SecretStore is the slice of the configs repository the secret source uses.
type SecretStore interface {
	Get(ctx context.Context, key string, userID int64) (*models.ConfigEntry, error)
	Insert(ctx context.Context, key string, userID int64, value json.RawMessage) (bool, error)
}

// SecretSource resolves the signing secret once and caches it for the life of
// the process. A configured key wins; otherwise the global tokenSecret entry
// is used, and created on first need. Failed loads are not cached.
type SecretSource struct {
	configured string
	store      SecretStore

	mu     sync.Mutex
	secret []byte
}

func NewSecretSource(configured string, store SecretStore) *SecretSource {
	return &SecretSource{configured: configured, store: store}
}

func (s *SecretSource) Secret(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.secret != nil {
		return s.secret, nil
	}

	if s.configured != "" {
		s.secret = []byte(s.configured)
		return s.secret, nil
	}

	secret, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.secret = []byte(secret)
	return s.secret, nil
}

func (s *SecretSource) load(ctx context.Context) (string, error) {
	secret, err := s.read(ctx)
	if err == nil {
		return secret, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return "", err
	}

	generated, err := common.MakeRandHexString(32)
	if err != nil {
		return "", fmt.Errorf("%w: generate secret: %v", common.ErrorInternal, err)
	}
	value, err := models.EncodeConfigValue(generated)
	if err != nil {
		return "", err
	}

	inserted, err := s.store.Insert(ctx, models.ConfigTokenSecret, models.GlobalScope, value)
	if err != nil {
		return "", err
	}
	if inserted {
		return generated, nil
	}
	// Another instance stored one first.
	return s.read(ctx)
}

func (s *SecretSource) read(ctx context.Context) (string, error) {
	entry, err := s.store.Get(ctx, models.ConfigTokenSecret, models.GlobalScope)
	if err != nil {
		return "", err
	}
	secret, ok := models.DecodeConfigValue[string](entry.Value)
	if !ok || secret == "" {
		return "", fmt.Errorf("%w: stored token secret is invalid", common.ErrorInternal)
	}
	return secret, nil
}

package twofactor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/redis/go-redis/v9"
)

// Challenge is a login that passed the password check and waits for a code.
type Challenge struct {
	AccountID int64 `json:"account_id"`
	ExpiresAt int64 `json:"expires_at"`
	Attempts  int   `json:"attempts"`
}

// ChallengeStore keeps pending second-factor logins in Redis under
// "<prefix>:<id>". Records expire with the key TTL and are removed once
// maxAttempts wrong codes were submitted.
type ChallengeStore struct {
	redis       redis.UniversalClient
	prefix      string
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
}

func NewChallengeStore(client redis.UniversalClient, ttl time.Duration, maxAttempts int) *ChallengeStore {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &ChallengeStore{
		redis:       client,
		prefix:      "tfc",
		ttl:         ttl,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

func (s *ChallengeStore) key(id string) string {
	return s.prefix + ":" + id
}

func backendErr(err error) error {
	return fmt.Errorf("%w: challenge store: %v", common.ErrorInternal, err)
}

// Create stores a challenge for accountID and returns its opaque id.
func (s *ChallengeStore) Create(ctx context.Context, accountID int64) (string, error) {
	id, err := common.MakeRandHexString(32)
	if err != nil {
		return "", backendErr(err)
	}

	data, err := json.Marshal(Challenge{AccountID: accountID, ExpiresAt: s.now().Add(s.ttl).Unix()})
	if err != nil {
		return "", err
	}
	if err := s.redis.Set(ctx, s.key(id), data, s.ttl).Err(); err != nil {
		return "", backendErr(err)
	}
	return id, nil
}

func (s *ChallengeStore) decode(data []byte) (*Challenge, error) {
	c := &Challenge{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, backendErr(err)
	}
	if s.now().Unix() > c.ExpiresAt {
		return nil, common.ErrTwoFactorChallenge
	}
	return c, nil
}

// Get returns the live challenge or common.ErrTwoFactorChallenge.
func (s *ChallengeStore) Get(ctx context.Context, id string) (*Challenge, error) {
	if id == "" {
		return nil, common.ErrTwoFactorChallenge
	}
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrTwoFactorChallenge
		}
		return nil, backendErr(err)
	}

	c, err := s.decode(data)
	if errors.Is(err, common.ErrTwoFactorChallenge) {
		_ = s.redis.Del(ctx, s.key(id)).Err()
	}
	return c, err
}

// Consume deletes the challenge. It fails with common.ErrTwoFactorChallenge
// when another request consumed it first.
func (s *ChallengeStore) Consume(ctx context.Context, id string) error {
	n, err := s.redis.Del(ctx, s.key(id)).Result()
	if err != nil {
		return backendErr(err)
	}
	if n == 0 {
		return common.ErrTwoFactorChallenge
	}
	return nil
}

// RecordFailure counts a wrong code and reports whether the challenge was
// dropped because it ran out of attempts.
func (s *ChallengeStore) RecordFailure(ctx context.Context, id string) (bool, error) {
	const maxRetries = 4
	key := s.key(id)

	for i := 0; i < maxRetries; i++ {
		var exceeded bool
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			c, err := s.decode(data)
			if err != nil {
				return err
			}

			c.Attempts++
			ttl := time.Unix(c.ExpiresAt, 0).Sub(s.now())
			if c.Attempts >= s.maxAttempts || ttl <= 0 {
				exceeded = c.Attempts >= s.maxAttempts
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				return err
			}

			updated, err := json.Marshal(c)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, ttl)
				return nil
			})
			return err
		}, key)

		switch {
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, redis.Nil), errors.Is(err, common.ErrTwoFactorChallenge):
			return false, common.ErrTwoFactorChallenge
		case err != nil:
			return false, backendErr(err)
		}
		return exceeded, nil
	}

	return false, common.ErrTwoFactorChallenge
}

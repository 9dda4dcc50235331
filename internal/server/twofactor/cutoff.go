package twofactor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/redis/go-redis/v9"
)

// SessionCutoffs records, per account, the moment before which issued tokens
// no longer authenticate. Used after link changes alter how an account
// resolves.
type SessionCutoffs struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewSessionCutoffs(client redis.UniversalClient) *SessionCutoffs {
	return &SessionCutoffs{redis: client, prefix: "sic", now: time.Now}
}

func (s *SessionCutoffs) key(accountID int64) string {
	return s.prefix + ":" + strconv.FormatInt(accountID, 10)
}

// Cutoffs are stored as Unix milliseconds.

// Invalidate ends every session of the given accounts issued before now.
func (s *SessionCutoffs) Invalidate(ctx context.Context, accountIDs ...int64) error {
	if len(accountIDs) == 0 {
		return nil
	}
	at := s.now().UnixMilli()
	_, err := s.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range accountIDs {
			pipe.Set(ctx, s.key(id), at, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: session cutoff: %v", common.ErrorInternal, err)
	}
	return nil
}

// Cutoff returns the cutoff of accountID, if any.
func (s *SessionCutoffs) Cutoff(ctx context.Context, accountID int64) (time.Time, bool, error) {
	at, err := s.redis.Get(ctx, s.key(accountID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("%w: session cutoff: %v", common.ErrorInternal, err)
	}
	return time.UnixMilli(at), true, nil
}

// Check fails with common.ErrSessionEnded when issuedAt is before the
// account's cutoff.
func (s *SessionCutoffs) Check(ctx context.Context, accountID int64, issuedAt time.Time) error {
	cutoff, ok, err := s.Cutoff(ctx, accountID)
	if err != nil || !ok {
		return err
	}
	if issuedAt.UnixMilli() < cutoff.UnixMilli() {
		return common.ErrSessionEnded
	}
	return nil
}

package policy

import (
	"context"
	"time"

	"github.com/dmitrijs2005/noteshelf/internal/server/auth"
)

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// SessionChecker rejects tokens issued before an account's session cutoff.
type SessionChecker interface {
	Check(ctx context.Context, accountID int64, issuedAt time.Time) error
}

// Enforcer authenticates a request token and evaluates the guard chain.
type Enforcer struct {
	verifier   TokenVerifier
	sessions   SessionChecker
	deployment Deployment
	chain      []Guard
}

// NewEnforcer builds an Enforcer running DefaultChain. sessions may be nil.
func NewEnforcer(verifier TokenVerifier, sessions SessionChecker, d Deployment) *Enforcer {
	return &Enforcer{verifier: verifier, sessions: sessions, deployment: d, chain: DefaultChain}
}

// Authorize returns the caller's claims when op may run. Public operations
// return nil claims without looking at the token.
func (e *Enforcer) Authorize(ctx context.Context, token string, op Operation) (*auth.Claims, error) {
	if op.Public {
		return nil, nil
	}

	claims, err := e.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	if e.sessions != nil {
		id, err := claims.AccountID()
		if err != nil {
			return nil, err
		}
		var issued time.Time
		if claims.IssuedAt != nil {
			issued = claims.IssuedAt.Time
		}
		if err := e.sessions.Check(ctx, id, issued); err != nil {
			return nil, err
		}
	}

	if err := Evaluate(e.chain, claims, op, e.deployment); err != nil {
		return nil, err
	}
	return claims, nil
}

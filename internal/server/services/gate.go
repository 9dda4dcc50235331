package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/dmitrijs2005/noteshelf/internal/dbx"
	"github.com/dmitrijs2005/noteshelf/internal/server/models"
	"github.com/dmitrijs2005/noteshelf/internal/server/repositories/repomanager"
)

// GateDecision is the outcome of a registration check. Bootstrap is set when
// no account exists yet; the new account then becomes the superadmin.
type GateDecision struct {
	Allowed   bool
	Bootstrap bool
}

// RegistrationGate decides whether a new account may be created. The count
// is read on every call, so an empty table reopens the bootstrap path.
type RegistrationGate struct {
	repomanager repomanager.RepositoryManager
}

func NewRegistrationGate(m repomanager.RepositoryManager) *RegistrationGate {
	return &RegistrationGate{repomanager: m}
}

func (g *RegistrationGate) Decide(ctx context.Context, db dbx.DBTX) (GateDecision, error) {
	n, err := g.repomanager.Accounts(db).Count(ctx)
	if err != nil {
		return GateDecision{}, err
	}
	if n == 0 {
		return GateDecision{Allowed: true, Bootstrap: true}, nil
	}

	allowed, err := g.allowFlag(ctx, db)
	if err != nil {
		return GateDecision{}, err
	}
	return GateDecision{Allowed: allowed}, nil
}

// CanRegister reports whether registration is currently open.
func (g *RegistrationGate) CanRegister(ctx context.Context, db dbx.DBTX) (bool, error) {
	d, err := g.Decide(ctx, db)
	return d.Allowed, err
}

// allowFlag reads the global allow-register flag. Unset or non-boolean
// values mean closed.
func (g *RegistrationGate) allowFlag(ctx context.Context, db dbx.DBTX) (bool, error) {
	entry, err := g.repomanager.Configs(db).Get(ctx, models.ConfigAllowRegister, models.GlobalScope)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	v, ok := models.DecodeConfigValue[bool](entry.Value)
	return ok && v, nil
}

// SetAllowRegister persists the global allow-register flag.
func (g *RegistrationGate) SetAllowRegister(ctx context.Context, db dbx.DBTX, allow bool) error {
	value, err := models.EncodeConfigValue(allow)
	if err != nil {
		return err
	}
	return g.repomanager.Configs(db).Set(ctx, models.ConfigAllowRegister, models.GlobalScope, value)
}

package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/dmitrijs2005/noteshelf/internal/dbx"
	"github.com/dmitrijs2005/noteshelf/internal/logging"
	"github.com/dmitrijs2005/noteshelf/internal/server/models"
	"github.com/dmitrijs2005/noteshelf/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/noteshelf/internal/server/repositories/repomanager"
)

// LinkService attaches an account to a native account, proven by the
// native account's password. Links are single level: a link target can not
// link anywhere itself and is targeted by at most one account.
type LinkService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	passwords   PasswordHasher
	sessions    SessionInvalidator
	logger      logging.Logger
}

func NewLinkService(db *sql.DB, m repomanager.RepositoryManager, passwords PasswordHasher,
	sessions SessionInvalidator, logger logging.Logger) *LinkService {
	return &LinkService{
		db:          db,
		repomanager: m,
		passwords:   passwords,
		sessions:    sessions,
		logger:      logger.With("module", "link_service"),
	}
}

// Candidates lists native accounts nobody links to yet.
func (s *LinkService) Candidates(ctx context.Context) ([]models.LinkCandidate, error) {
	return s.repomanager.Accounts(s.db).ListLinkCandidates(ctx)
}

func (s *LinkService) IsLinked(ctx context.Context, id int64) (bool, error) {
	return s.repomanager.Accounts(s.db).IsLinked(ctx, id)
}

// checkLink validates that caller may link to targetID and returns the
// target.
func checkLink(ctx context.Context, repo accounts.Repository, callerID, targetID int64) (*models.Account, error) {
	caller, err := repo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	callerIsTarget, err := repo.IsLinked(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if callerIsTarget {
		return nil, common.ErrLinkChain
	}

	if targetID == callerID {
		return nil, common.ErrLinkTargetInvalid
	}
	target, err := repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !target.IsNative() || target.LinkAccountID != nil {
		return nil, common.ErrLinkTargetInvalid
	}

	relink := caller.LinkAccountID != nil && *caller.LinkAccountID == targetID
	if !relink {
		taken, err := repo.IsLinked(ctx, targetID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, common.ErrLinkTargetInvalid
		}
	}
	return target, nil
}

// Link points the caller at targetID after checking password against the
// target's stored hash. Linking the same pair again succeeds.
func (s *LinkService) Link(ctx context.Context, caller Caller, targetID int64, password string) error {
	target, err := checkLink(ctx, s.repomanager.Accounts(s.db), caller.ID, targetID)
	if err != nil {
		return err
	}

	if password == "" {
		return common.ErrPasswordRequired
	}
	ok, err := s.passwords.Verify(ctx, password, target.StoredPassword())
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Info(ctx, "link rejected", "account_id", caller.ID, "target_id", targetID)
		return common.ErrPasswordIncorrect
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		if _, err := checkLink(ctx, repo, caller.ID, targetID); err != nil {
			return err
		}
		return repo.SetLink(ctx, caller.ID, targetID)
	})
	if err != nil {
		s.logger.Error(ctx, "link failed", "account_id", caller.ID, "target_id", targetID, "error", err)
		return err
	}

	s.logger.Info(ctx, "account linked", "account_id", caller.ID, "target_id", targetID)
	s.invalidate(ctx, caller.ID)
	return nil
}

// Unlink detaches every account linked to targetID. Any authenticated
// caller may do it.
func (s *LinkService) Unlink(ctx context.Context, _ Caller, targetID int64) error {
	detached, err := dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) ([]int64, error) {
		return s.repomanager.Accounts(tx).ClearLinksTo(ctx, targetID)
	})
	if err != nil {
		s.logger.Error(ctx, "unlink failed", "target_id", targetID, "error", err)
		return err
	}

	s.logger.Info(ctx, "accounts unlinked", "target_id", targetID, "count", len(detached))
	s.invalidate(ctx, detached...)
	return nil
}

// invalidate forces re-authentication of accounts whose identity resolution
// changed. The link change is already committed, so failures are logged.
func (s *LinkService) invalidate(ctx context.Context, ids ...int64) {
	if s.sessions == nil || len(ids) == 0 {
		return
	}
	if err := s.sessions.Invalidate(ctx, ids...); err != nil {
		s.logger.Warn(ctx, "session invalidation failed", "error", err)
	}
}

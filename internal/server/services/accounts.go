// Package services holds the account business logic: registration, login,
// profile updates, linking, two-factor enrollment and deletion. Each
// multi-step mutation runs inside one dbx.WithTx scope; password hashing and
// verification happen before the transaction opens.
package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/dmitrijs2005/noteshelf/internal/dbx"
	"github.com/dmitrijs2005/noteshelf/internal/logging"
	"github.com/dmitrijs2005/noteshelf/internal/server/models"
	"github.com/dmitrijs2005/noteshelf/internal/server/repositories/repomanager"
)

// Profile is an account as returned by Detail.
type Profile struct {
	*models.Account
	IsLinked bool
}

// LoginResult is the outcome of a password login. When RequiresTwoFactor is
// set, Token is empty and Challenge must be answered with LoginTwoFactor.
type LoginResult struct {
	Account           *models.Account
	Token             string
	RequiresTwoFactor bool
	Challenge         string
}

// UpsertInput is a self-service update (ID set) or create (ID nil). Empty
// strings count as absent.
type UpsertInput struct {
	ID               *int64
	Name             string
	Password         string
	OriginalPassword string
	Nickname         string
	Image            string
}

// AdminUpsertInput is an update or create performed by a superadmin.
type AdminUpsertInput struct {
	ID       *int64
	Name     string
	Password string
	Nickname string
}

type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	passwords   PasswordHasher
	tokens      TokenIssuer
	minter      tokenMinter
	gate        *RegistrationGate
	challenges  LoginChallenges
	sessions    SessionInvalidator
	notes       NoteRemover
	logger      logging.Logger
}

// AccountDeps bundles the collaborators of AccountService. Challenges,
// Sessions and Notes are optional.
type AccountDeps struct {
	Passwords  PasswordHasher
	Tokens     TokenIssuer
	Gate       *RegistrationGate
	Challenges LoginChallenges
	Sessions   SessionInvalidator
	Notes      NoteRemover
	Logger     logging.Logger
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, deps AccountDeps) *AccountService {
	if deps.Gate == nil {
		deps.Gate = NewRegistrationGate(m)
	}
	if deps.Notes == nil {
		deps.Notes = NoNotes{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop{}
	}
	return &AccountService{
		db:          db,
		repomanager: m,
		passwords:   deps.Passwords,
		tokens:      deps.Tokens,
		minter:      tokenMinter{issuer: deps.Tokens, repomanager: m},
		gate:        deps.Gate,
		challenges:  deps.Challenges,
		sessions:    deps.Sessions,
		notes:       deps.Notes,
		logger:      deps.Logger.With("module", "account_service"),
	}
}

func (s *AccountService) List(ctx context.Context) ([]*models.Account, error) {
	return s.repomanager.Accounts(s.db).List(ctx)
}

// PublicList returns native accounts. Callers must only expose public fields.
func (s *AccountService) PublicList(ctx context.Context) ([]*models.Account, error) {
	return s.repomanager.Accounts(s.db).ListNative(ctx)
}

// Detail returns the profile of id, or of the caller when id is nil. Only a
// superadmin may read another account.
func (s *AccountService) Detail(ctx context.Context, caller Caller, id *int64) (*Profile, error) {
	target := caller.ID
	if id != nil {
		target = *id
	}
	if target != caller.ID && !caller.IsSuperAdmin() {
		return nil, common.ErrForeignAccount
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByID(ctx, target)
	if err != nil {
		return nil, err
	}
	linked, err := repo.IsLinked(ctx, target)
	if err != nil {
		return nil, err
	}
	return &Profile{Account: account, IsLinked: linked}, nil
}

func (s *AccountService) CanRegister(ctx context.Context) (bool, error) {
	return s.gate.CanRegister(ctx, s.db)
}

// SetAllowRegister opens or closes self registration.
func (s *AccountService) SetAllowRegister(ctx context.Context, allow bool) error {
	return s.gate.SetAllowRegister(ctx, s.db, allow)
}

// Register creates a native account. The first account of an empty
// deployment is always accepted and becomes the superadmin; later ones need
// the allow-register flag.
func (s *AccountService) Register(ctx context.Context, name, password string) (*models.Account, error) {
	if name == "" {
		return nil, common.ErrNameRequired
	}
	hash, err := s.passwords.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	account, err := dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Account, error) {
		decision, err := s.gate.Decide(ctx, tx)
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			return nil, common.ErrRegistrationClosed
		}

		role := common.RoleUser
		if decision.Bootstrap {
			role = common.RoleSuperAdmin
		}
		account, err := s.create(ctx, tx, name, hash, role)
		if err != nil {
			return nil, err
		}

		if decision.Bootstrap {
			theme, err := models.EncodeConfigValue("system")
			if err != nil {
				return nil, err
			}
			if err := s.repomanager.Configs(tx).Set(ctx, models.ConfigTheme, account.ID, theme); err != nil {
				return nil, err
			}
		}
		return account, nil
	})
	if err != nil {
		s.logger.Error(ctx, "register failed", "name", name, "error", err)
		return nil, err
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID, "role", account.Role)
	return account, nil
}

// create inserts a native account with a unique name and stores its first
// token.
func (s *AccountService) create(ctx context.Context, tx dbx.DBTX, name, hash, role string) (*models.Account, error) {
	repo := s.repomanager.Accounts(tx)

	if err := ensureNameFree(ctx, repo, name); err != nil {
		return nil, err
	}
	account, err := repo.Create(ctx, &models.Account{
		Name:      name,
		Nickname:  name,
		Password:  &hash,
		Role:      role,
		LoginType: common.LoginTypeNative,
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.minter.mint(ctx, tx, account); err != nil {
		return nil, err
	}
	return account, nil
}

type nameLookup interface {
	GetNativeByName(ctx context.Context, name string) (*models.Account, error)
}

func ensureNameFree(ctx context.Context, repo nameLookup, name string) error {
	_, err := repo.GetNativeByName(ctx, name)
	switch {
	case err == nil:
		return common.ErrUsernameTaken
	case errors.Is(err, common.ErrorNotFound):
		return nil
	default:
		return err
	}
}

// Login checks a native account's password. Accounts with two-factor
// enabled get a pending challenge instead of a token.
func (s *AccountService) Login(ctx context.Context, name, password string) (*LoginResult, error) {
	account, err := s.repomanager.Accounts(s.db).GetNativeByName(ctx, name)
	if err != nil {
		return nil, err
	}

	ok, err := s.passwords.Verify(ctx, password, account.StoredPassword())
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Info(ctx, "login rejected", "account_id", account.ID)
		return nil, common.ErrPasswordIncorrect
	}

	enabled, err := twoFactorEnabled(ctx, s.repomanager.Configs(s.db), account.ID)
	if err != nil {
		return nil, err
	}
	if enabled {
		if s.challenges == nil {
			return nil, common.ErrTwoFactorNotAvailable
		}
		challenge, err := s.challenges.Create(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		s.logger.Info(ctx, "login waiting for second factor", "account_id", account.ID)
		return &LoginResult{Account: account, RequiresTwoFactor: true, Challenge: challenge}, nil
	}

	token, err := s.minter.mint(ctx, s.db, account)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "login", "account_id", account.ID)
	return &LoginResult{Account: account, Token: token}, nil
}

// RegenToken replaces the caller's stored token. It reports false when the
// account no longer exists.
func (s *AccountService) RegenToken(ctx context.Context, caller Caller) (bool, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	if _, err := s.minter.mint(ctx, s.db, account); err != nil {
		return false, err
	}
	return true, nil
}

// GenLowPermToken mints a scoped token for the caller. It is not stored.
func (s *AccountService) GenLowPermToken(ctx context.Context, caller Caller) (string, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, caller.ID)
	if err != nil {
		return "", err
	}
	return s.tokens.IssueLowPermission(ctx, account.ID, account.Name, account.Role)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// UpsertUser updates the caller's own account, or creates a new one when no
// id is given. Changing a stored password requires the current one.
func (s *AccountService) UpsertUser(ctx context.Context, caller Caller, in UpsertInput) error {
	if in.ID == nil {
		return s.createUser(ctx, in.Name, in.Password, true)
	}

	id := *in.ID
	if id != caller.ID && !caller.IsSuperAdmin() {
		return common.ErrForeignUpdate
	}

	target, err := s.repomanager.Accounts(s.db).GetByID(ctx, id)
	if err != nil {
		return err
	}

	if in.Password != "" && in.OriginalPassword == "" && id == caller.ID && target.StoredPassword() != "" {
		return common.ErrPasswordRequired
	}
	if in.OriginalPassword != "" {
		ok, err := s.passwords.Verify(ctx, in.OriginalPassword, target.StoredPassword())
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrPasswordIncorrect
		}
	}

	patch := models.AccountPatch{
		Name:     optional(in.Name),
		Nickname: optional(in.Nickname),
		Image:    optional(in.Image),
	}
	if in.Password != "" {
		hash, err := s.passwords.Hash(ctx, in.Password)
		if err != nil {
			return err
		}
		patch.Password = &hash
	}

	return s.update(ctx, target, patch)
}

// UpsertUserByAdmin updates any account or creates one, bypassing the
// registration gate.
func (s *AccountService) UpsertUserByAdmin(ctx context.Context, in AdminUpsertInput) error {
	if in.ID == nil {
		return s.createUser(ctx, in.Name, in.Password, false)
	}

	target, err := s.repomanager.Accounts(s.db).GetByID(ctx, *in.ID)
	if err != nil {
		return err
	}

	patch := models.AccountPatch{
		Name:     optional(in.Name),
		Nickname: optional(in.Nickname),
	}
	if in.Password != "" {
		hash, err := s.passwords.Hash(ctx, in.Password)
		if err != nil {
			return err
		}
		patch.Password = &hash
	}

	return s.update(ctx, target, patch)
}

func (s *AccountService) update(ctx context.Context, target *models.Account, patch models.AccountPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		if patch.Name != nil && *patch.Name != target.Name && target.IsNative() {
			if err := ensureNameFree(ctx, repo, *patch.Name); err != nil {
				return err
			}
		}
		return repo.Update(ctx, target.ID, patch)
	})
	if err != nil {
		s.logger.Error(ctx, "account update failed", "account_id", target.ID, "error", err)
		return err
	}
	s.logger.Info(ctx, "account updated", "account_id", target.ID)
	return nil
}

func (s *AccountService) createUser(ctx context.Context, name, password string, gated bool) error {
	if password == "" {
		return common.ErrPasswordRequired
	}
	if name == "" {
		return common.ErrNameRequired
	}
	hash, err := s.passwords.Hash(ctx, password)
	if err != nil {
		return err
	}

	account, err := dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Account, error) {
		if gated {
			allowed, err := s.gate.CanRegister(ctx, tx)
			if err != nil {
				return nil, err
			}
			if !allowed {
				return nil, common.ErrRegistrationClosed
			}
		}
		return s.create(ctx, tx, name, hash, common.RoleUser)
	})
	if err != nil {
		s.logger.Error(ctx, "account create failed", "name", name, "error", err)
		return err
	}
	s.logger.Info(ctx, "account created", "account_id", account.ID)
	return nil
}

// DeleteUser removes an account with its notes and configuration. The
// superadmin and the caller's own account can not be deleted.
func (s *AccountService) DeleteUser(ctx context.Context, caller Caller, id int64) error {
	detached, err := dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) ([]int64, error) {
		repo := s.repomanager.Accounts(tx)

		target, err := repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if target.IsSuperAdmin() {
			return nil, common.ErrCannotDeleteSuperAdmin
		}
		if target.ID == caller.ID {
			return nil, common.ErrCannotDeleteSelf
		}

		if err := s.notes.RemoveNotesOf(ctx, tx, id); err != nil {
			return nil, err
		}
		if err := s.repomanager.Configs(tx).DeleteByUser(ctx, id); err != nil {
			return nil, err
		}
		detached, err := repo.ClearLinksTo(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return nil, err
		}
		return detached, nil
	})
	if err != nil {
		s.logger.Error(ctx, "delete failed", "account_id", id, "error", err)
		return err
	}

	s.logger.Info(ctx, "account deleted", "account_id", id, "by", caller.ID)
	if len(detached) > 0 && s.sessions != nil {
		if err := s.sessions.Invalidate(ctx, detached...); err != nil {
			s.logger.Warn(ctx, "session invalidation failed", "error", err)
		}
	}
	return nil
}

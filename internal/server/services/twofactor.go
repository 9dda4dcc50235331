package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/dmitrijs2005/noteshelf/internal/cryptox"
	"github.com/dmitrijs2005/noteshelf/internal/dbx"
	"github.com/dmitrijs2005/noteshelf/internal/logging"
	"github.com/dmitrijs2005/noteshelf/internal/server/auth"
	"github.com/dmitrijs2005/noteshelf/internal/server/models"
	"github.com/dmitrijs2005/noteshelf/internal/server/repositories/configs"
	"github.com/dmitrijs2005/noteshelf/internal/server/repositories/repomanager"
)

const totpKeyInfo = "noteshelf/totp-secret"

// TwoFactorService handles TOTP enrollment and the second step of login.
//
// Enrollment: the secret is generated and handed to the client, nothing is
// stored. Enable verifies a code against it and only then persists the flag
// together with the secret, sealed with a key derived from the signing
// secret. Disable clears the flag without asking for a code.
type TwoFactorService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	totp        TOTP
	challenges  LoginChallenges
	secrets     auth.SecretProvider
	minter      tokenMinter
	logger      logging.Logger
}

func NewTwoFactorService(db *sql.DB, m repomanager.RepositoryManager, totp TOTP, challenges LoginChallenges,
	secrets auth.SecretProvider, tokens TokenIssuer, logger logging.Logger) *TwoFactorService {
	return &TwoFactorService{
		db:          db,
		repomanager: m,
		totp:        totp,
		challenges:  challenges,
		secrets:     secrets,
		minter:      tokenMinter{issuer: tokens, repomanager: m},
		logger:      logger.With("module", "two_factor_service"),
	}
}

func twoFactorEnabled(ctx context.Context, repo configs.Repository, accountID int64) (bool, error) {
	entry, err := repo.Get(ctx, models.ConfigTwoFactorEnabled, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	v, ok := models.DecodeConfigValue[bool](entry.Value)
	return ok && v, nil
}

func (s *TwoFactorService) sealKey(ctx context.Context) ([]byte, error) {
	secret, err := s.secrets.Secret(ctx)
	if err != nil {
		return nil, err
	}
	return cryptox.DeriveKey(secret, totpKeyInfo)
}

// GenerateSecret returns a new secret and its provisioning QR code for name.
func (s *TwoFactorService) GenerateSecret(ctx context.Context, name string) (secret, qrCode string, err error) {
	e, err := s.totp.Enroll(name, "")
	if err != nil {
		return "", "", err
	}
	return e.Secret, e.QR, nil
}

// Enable turns two-factor on for the caller if code matches secret.
func (s *TwoFactorService) Enable(ctx context.Context, caller Caller, code, secret string) error {
	if !s.totp.VerifyCode(code, secret) {
		return common.ErrInvalidTwoFactorCode
	}

	key, err := s.sealKey(ctx)
	if err != nil {
		return err
	}
	sealed, err := cryptox.Seal([]byte(secret), key)
	if err != nil {
		return err
	}
	enabled, err := models.EncodeConfigValue(true)
	if err != nil {
		return err
	}
	stored, err := models.EncodeConfigValue(sealed)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Configs(tx)
		if err := repo.Set(ctx, models.ConfigTwoFactorSecret, caller.ID, stored); err != nil {
			return err
		}
		return repo.Set(ctx, models.ConfigTwoFactorEnabled, caller.ID, enabled)
	})
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "two-factor enabled", "account_id", caller.ID)
	return nil
}

// Disable turns two-factor off immediately. No code is required.
func (s *TwoFactorService) Disable(ctx context.Context, caller Caller) error {
	value, err := models.EncodeConfigValue(false)
	if err != nil {
		return err
	}
	if err := s.repomanager.Configs(s.db).Set(ctx, models.ConfigTwoFactorEnabled, caller.ID, value); err != nil {
		return err
	}
	s.logger.Info(ctx, "two-factor disabled", "account_id", caller.ID)
	return nil
}

func (s *TwoFactorService) storedSecret(ctx context.Context, accountID int64) (string, error) {
	repo := s.repomanager.Configs(s.db)
	enabled, err := twoFactorEnabled(ctx, repo, accountID)
	if err != nil {
		return "", err
	}
	if !enabled {
		return "", common.ErrTwoFactorNotAvailable
	}

	entry, err := repo.Get(ctx, models.ConfigTwoFactorSecret, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrTwoFactorNotAvailable
		}
		return "", err
	}
	sealed, ok := models.DecodeConfigValue[string](entry.Value)
	if !ok {
		return "", common.ErrTwoFactorNotAvailable
	}

	key, err := s.sealKey(ctx)
	if err != nil {
		return "", err
	}
	secret, err := cryptox.Open(sealed, key)
	if err != nil {
		return "", common.ErrTwoFactorNotAvailable
	}
	return string(secret), nil
}

// LoginTwoFactor answers a pending challenge. The token is only issued after
// a valid code; a wrong code counts against the challenge's attempts.
func (s *TwoFactorService) LoginTwoFactor(ctx context.Context, challengeID, code string) (*LoginResult, error) {
	challenge, err := s.challenges.Get(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	secret, err := s.storedSecret(ctx, challenge.AccountID)
	if err != nil {
		return nil, err
	}

	if !s.totp.VerifyCode(code, secret) {
		exceeded, err := s.challenges.RecordFailure(ctx, challengeID)
		if err != nil && !errors.Is(err, common.ErrTwoFactorChallenge) {
			return nil, err
		}
		s.logger.Info(ctx, "second factor rejected", "account_id", challenge.AccountID, "exhausted", exceeded)
		return nil, common.ErrInvalidTwoFactorCode
	}

	if err := s.challenges.Consume(ctx, challengeID); err != nil {
		return nil, err
	}

	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, challenge.AccountID)
	if err != nil {
		return nil, err
	}
	token, err := s.minter.mint(ctx, s.db, account)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "login", "account_id", account.ID, "two_factor", true)
	return &LoginResult{Account: account, Token: token}, nil
}

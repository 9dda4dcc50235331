// Package server wires the account server together: PostgreSQL repositories,
// Redis-backed two-factor stores, the services and the gRPC transport. It
// handles startup migrations and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/noteshelf/internal/logging"
	"github.com/dmitrijs2005/noteshelf/internal/server/auth"
	"github.com/dmitrijs2005/noteshelf/internal/server/config"
	"github.com/dmitrijs2005/noteshelf/internal/server/credentials"
	"github.com/dmitrijs2005/noteshelf/internal/server/policy"
	"github.com/dmitrijs2005/noteshelf/internal/server/repositories/notes"
	"github.com/dmitrijs2005/noteshelf/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/noteshelf/internal/server/services"
	"github.com/dmitrijs2005/noteshelf/internal/server/twofactor"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/noteshelf/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client
	server *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	passwords := credentials.NewManager(c.HashWorkers, logger)
	if _, err := passwords.MigrateLegacy(ctx, rm.Accounts(db)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("password migration error: %w", err)
	}

	secrets := auth.NewSecretSource(c.SecretKey, rm.Configs(db))
	if _, err := secrets.Secret(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("token secret error: %w", err)
	}
	issuer := auth.NewIssuer(secrets, c.TokenValidityDuration)

	rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("redis init error: %w", err)
	}
	challenges := twofactor.NewChallengeStore(rdb, c.TwoFactorChallengeTTL, c.TwoFactorMaxAttempts)
	cutoffs := twofactor.NewSessionCutoffs(rdb)

	accounts := services.NewAccountService(db, rm, services.AccountDeps{
		Passwords:  passwords,
		Tokens:     issuer,
		Challenges: challenges,
		Sessions:   cutoffs,
		Notes:      notes.Remover{},
		Logger:     logger,
	})
	links := services.NewLinkService(db, rm, passwords, cutoffs, logger)
	twoFactor := services.NewTwoFactorService(db, rm, twofactor.NewAuthenticator(c.TOTPIssuer), challenges,
		secrets, issuer, logger)
	avatars := services.NewAvatarService(services.S3Settings{
		User:     c.S3RootUser,
		Password: c.S3RootPassword,
		Bucket:   c.S3Bucket,
		Region:   c.S3Region,
		Endpoint: c.S3BaseEndpoint,
		URLTTL:   c.AvatarURLTTL,
	}, logger)

	enforcer := policy.NewEnforcer(issuer, cutoffs, policy.Deployment{DemoMode: c.DemoMode})
	srv := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, enforcer, gs.Services{
		Accounts:  accounts,
		Links:     links,
		TwoFactor: twoFactor,
		Avatars:   avatars,
	})

	return &App{config: c, logger: logger, db: db, redis: rdb, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a termination signal arrives or ctx is cancelled, then
// releases the database and Redis connections.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "demo_mode", app.config.DemoMode)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.redis.Close(); err != nil {
		app.logger.Warn(ctx, "redis close failed", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}

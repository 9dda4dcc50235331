// Package grpc exposes the account services over gRPC. Requests are
// authorized by a unary interceptor before they reach a handler.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/noteshelf/internal/api"
	"github.com/dmitrijs2005/noteshelf/internal/logging"
	"github.com/dmitrijs2005/noteshelf/internal/server/auth"
	"github.com/dmitrijs2005/noteshelf/internal/server/models"
	"github.com/dmitrijs2005/noteshelf/internal/server/policy"
	"github.com/dmitrijs2005/noteshelf/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type AccountService interface {
	List(ctx context.Context) ([]*models.Account, error)
	PublicList(ctx context.Context) ([]*models.Account, error)
	Detail(ctx context.Context, caller services.Caller, id *int64) (*services.Profile, error)
	CanRegister(ctx context.Context) (bool, error)
	SetAllowRegister(ctx context.Context, allow bool) error
	Register(ctx context.Context, name, password string) (*models.Account, error)
	Login(ctx context.Context, name, password string) (*services.LoginResult, error)
	RegenToken(ctx context.Context, caller services.Caller) (bool, error)
	GenLowPermToken(ctx context.Context, caller services.Caller) (string, error)
	UpsertUser(ctx context.Context, caller services.Caller, in services.UpsertInput) error
	UpsertUserByAdmin(ctx context.Context, in services.AdminUpsertInput) error
	DeleteUser(ctx context.Context, caller services.Caller, id int64) error
}

type LinkService interface {
	Candidates(ctx context.Context) ([]models.LinkCandidate, error)
	Link(ctx context.Context, caller services.Caller, targetID int64, password string) error
	Unlink(ctx context.Context, caller services.Caller, targetID int64) error
}

type TwoFactorService interface {
	GenerateSecret(ctx context.Context, name string) (secret, qrCode string, err error)
	Enable(ctx context.Context, caller services.Caller, code, secret string) error
	Disable(ctx context.Context, caller services.Caller) error
	LoginTwoFactor(ctx context.Context, challengeID, code string) (*services.LoginResult, error)
}

type AvatarService interface {
	UploadURL(ctx context.Context, caller services.Caller) (key, url string, err error)
}

// Authorizer verifies the request token against an operation's policy.
type Authorizer interface {
	Authorize(ctx context.Context, token string, op policy.Operation) (*auth.Claims, error)
}

// Services are the handlers' collaborators. Avatars may be nil when no
// object store is configured.
type Services struct {
	Accounts  AccountService
	Links     LinkService
	TwoFactor TwoFactorService
	Avatars   AvatarService
}

type GRPCServer struct {
	api.UnimplementedAccountServiceServer
	address    string
	authorizer Authorizer
	accounts   AccountService
	links      LinkService
	twoFactor  TwoFactorService
	avatars    AvatarService
	logger     logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, authorizer Authorizer, svc Services) *GRPCServer {
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		authorizer: authorizer,
		accounts:   svc.Accounts,
		links:      svc.Links,
		twoFactor:  svc.TwoFactor,
		avatars:    svc.Avatars,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	api.RegisterAccountServiceServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully when ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())
	return srv.Serve(lis)
}

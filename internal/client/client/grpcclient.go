package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/noteshelf/internal/api"
	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/dmitrijs2005/noteshelf/internal/netx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var uploadToPresignedURL = netx.UploadToPresignedURL

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      *api.Client

	mu    sync.RWMutex
	token string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.Token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewAccountClient connects to the account server at endpointURL. Extra
// dial options are appended after the defaults.
func NewAccountClient(endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, dialOpts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *GRPCClient) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *GRPCClient) CanRegister(ctx context.Context) (bool, error) {
	resp, err := s.client.CanRegister(ctx)
	if err != nil {
		return false, s.mapError(err)
	}
	return resp.Allowed, nil
}

func (s *GRPCClient) Register(ctx context.Context, name, password string) error {
	_, err := s.client.Register(ctx, &api.RegisterRequest{Name: name, Password: password})
	return s.mapError(err)
}

// Login signs in with a password. When the account has two-factor enabled
// the response carries a challenge and no token is stored.
func (s *GRPCClient) Login(ctx context.Context, name, password string) (*api.LoginResponse, error) {
	resp, err := s.client.Login(ctx, &api.LoginRequest{Name: name, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	if resp.Token != "" {
		s.SetToken(resp.Token)
	}
	return resp, nil
}

func (s *GRPCClient) LoginTwoFactor(ctx context.Context, challenge, code string) (*api.LoginResponse, error) {
	resp, err := s.client.LoginTwoFactor(ctx, &api.LoginTwoFactorRequest{Challenge: challenge, Code: code})
	if err != nil {
		return nil, s.mapError(err)
	}
	s.SetToken(resp.Token)
	return resp, nil
}

func (s *GRPCClient) Detail(ctx context.Context, id *int64) (*api.DetailResponse, error) {
	resp, err := s.client.Detail(ctx, &api.DetailRequest{ID: id})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) List(ctx context.Context) ([]api.Account, error) {
	resp, err := s.client.List(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Accounts, nil
}

func (s *GRPCClient) PublicUserList(ctx context.Context) ([]api.PublicAccount, error) {
	resp, err := s.client.PublicUserList(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Accounts, nil
}

func (s *GRPCClient) NativeAccountList(ctx context.Context) ([]api.LinkCandidate, error) {
	resp, err := s.client.NativeAccountList(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Accounts, nil
}

func (s *GRPCClient) LinkAccount(ctx context.Context, id int64, password string) error {
	_, err := s.client.LinkAccount(ctx, &api.LinkAccountRequest{ID: id, OriginalPassword: password})
	return s.mapError(err)
}

func (s *GRPCClient) UnlinkAccount(ctx context.Context, id int64) error {
	_, err := s.client.UnlinkAccount(ctx, &api.UnlinkAccountRequest{ID: id})
	return s.mapError(err)
}

// RegenToken rotates the caller's personal token. The session token held by
// the client stays valid.
func (s *GRPCClient) RegenToken(ctx context.Context) error {
	_, err := s.client.RegenToken(ctx)
	return s.mapError(err)
}

func (s *GRPCClient) GenLowPermToken(ctx context.Context) (string, error) {
	resp, err := s.client.GenLowPermToken(ctx)
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.Token, nil
}

func (s *GRPCClient) UpsertUser(ctx context.Context, req *api.UpsertUserRequest) error {
	_, err := s.client.UpsertUser(ctx, req)
	return s.mapError(err)
}

func (s *GRPCClient) UpsertUserByAdmin(ctx context.Context, req *api.UpsertUserByAdminRequest) error {
	_, err := s.client.UpsertUserByAdmin(ctx, req)
	return s.mapError(err)
}

func (s *GRPCClient) DeleteUser(ctx context.Context, id int64) error {
	_, err := s.client.DeleteUser(ctx, &api.DeleteUserRequest{ID: id})
	return s.mapError(err)
}

func (s *GRPCClient) SetAllowRegister(ctx context.Context, allow bool) error {
	_, err := s.client.SetAllowRegister(ctx, &api.SetAllowRegisterRequest{Value: allow})
	return s.mapError(err)
}

func (s *GRPCClient) Generate2FASecret(ctx context.Context, name string) (*api.Generate2FASecretResponse, error) {
	resp, err := s.client.Generate2FASecret(ctx, &api.Generate2FASecretRequest{Name: name})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) Verify2FAToken(ctx context.Context, code, secret string) error {
	_, err := s.client.Verify2FAToken(ctx, &api.Verify2FATokenRequest{Token: code, Secret: secret})
	return s.mapError(err)
}

func (s *GRPCClient) Disable2FA(ctx context.Context) error {
	_, err := s.client.Disable2FA(ctx)
	return s.mapError(err)
}

// UploadAvatar uploads image to a freshly presigned URL and saves the object
// key as the caller's profile image. The key is returned.
func (s *GRPCClient) UploadAvatar(ctx context.Context, contentType string, image []byte) (string, error) {
	me, err := s.Detail(ctx, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.AvatarUploadURL(ctx)
	if err != nil {
		return "", s.mapError(err)
	}
	if err := uploadToPresignedURL(ctx, resp.URL, contentType, image); err != nil {
		return "", err
	}
	id := me.Account.ID
	if err := s.UpsertUser(ctx, &api.UpsertUserRequest{ID: &id, Image: resp.Key}); err != nil {
		return "", err
	}
	return resp.Key, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", common.ErrorForbidden, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", common.ErrorConflict, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

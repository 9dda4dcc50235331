package api

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type stubServer struct {
	UnimplementedAccountServiceServer
	gotLogin *LoginRequest
	gotToken string
	method   string
}

func (s *stubServer) Login(ctx context.Context, in *LoginRequest) (*LoginResponse, error) {
	s.gotLogin = in
	return &LoginResponse{ID: 7, Name: in.Name, Role: "user", Token: "tok"}, nil
}

func (s *stubServer) Detail(ctx context.Context, in *DetailRequest) (*DetailResponse, error) {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(TokenMetadataKey); len(v) > 0 {
			s.gotToken = v[0]
		}
	}
	return &DetailResponse{Account: Account{ID: *in.ID, Name: "bob"}, IsLinked: true}, nil
}

func startServer(t *testing.T, srv AccountServiceServer, opts ...grpc.ServerOption) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(opts...)
	RegisterAccountServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn)
}

func TestClient_RoundTrip(t *testing.T) {
	stub := &stubServer{}
	c := startServer(t, stub)

	res, err := c.Login(context.Background(), &LoginRequest{Name: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, &LoginRequest{Name: "alice", Password: "pw"}, stub.gotLogin)
	assert.Equal(t, int64(7), res.ID)
	assert.Equal(t, "tok", res.Token)

	id := int64(3)
	ctx := metadata.AppendToOutgoingContext(context.Background(), TokenMetadataKey, "abc")
	d, err := c.Detail(ctx, &DetailRequest{ID: &id})
	require.NoError(t, err)
	assert.Equal(t, "bob", d.Account.Name)
	assert.True(t, d.IsLinked)
	assert.Equal(t, "abc", stub.gotToken)
}

func TestClient_Unimplemented(t *testing.T) {
	c := startServer(t, &stubServer{})

	_, err := c.DeleteUser(context.Background(), &DeleteUserRequest{ID: 1})
	require.Error(t, err)
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestInterceptorSeesFullMethod(t *testing.T) {
	stub := &stubServer{}
	var seen string
	c := startServer(t, stub, grpc.UnaryInterceptor(
		func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
			seen = info.FullMethod
			return handler(ctx, req)
		}))

	_, err := c.Login(context.Background(), &LoginRequest{Name: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "/noteshelf.accounts.v1.AccountService/Login", seen)
}

func TestServiceDescCoversAllMethods(t *testing.T) {
	assert.Len(t, AccountServiceDesc.Methods, 20)
	names := map[string]bool{}
	for _, m := range AccountServiceDesc.Methods {
		assert.False(t, names[m.MethodName], "duplicate %s", m.MethodName)
		names[m.MethodName] = true
	}
}

func TestCodec(t *testing.T) {
	data, err := Codec{}.Marshal(&OKResponse{OK: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))

	var out OKResponse
	require.NoError(t, Codec{}.Unmarshal(data, &out))
	assert.True(t, out.OK)
	assert.Equal(t, "json", Codec{}.Name())
}

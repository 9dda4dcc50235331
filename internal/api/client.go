package api

import (
	"context"

	"github.com/dmitrijs2005/noteshelf/internal/common"
	"google.golang.org/grpc"
)

// TokenMetadataKey is the metadata key carrying the account token.
const TokenMetadataKey = common.AccessTokenHeaderName

// Client is a typed AccountService client. Every call is sent with the JSON
// content subtype.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) List(ctx context.Context, opts ...grpc.CallOption) (*ListResponse, error) {
	return invoke[ListResponse](ctx, c.cc, MethodList, &Empty{}, opts)
}

func (c *Client) PublicUserList(ctx context.Context, opts ...grpc.CallOption) (*PublicUserListResponse, error) {
	return invoke[PublicUserListResponse](ctx, c.cc, MethodPublicUserList, &Empty{}, opts)
}

func (c *Client) NativeAccountList(ctx context.Context, opts ...grpc.CallOption) (*NativeAccountListResponse, error) {
	return invoke[NativeAccountListResponse](ctx, c.cc, MethodNativeAccountList, &Empty{}, opts)
}

func (c *Client) LinkAccount(ctx context.Context, in *LinkAccountRequest, opts ...grpc.CallOption) (*OKResponse, error) {
	return invoke[OKResponse](ctx, c.cc, MethodLinkAccount, in, opts)
}

func (c *Client) UnlinkAccount(ctx context.Context, in *UnlinkAccountRequest, opts ...grpc.CallOption) (*OKResponse, error) {
	return invoke[OKResponse](ctx, c.cc, MethodUnlinkAccount, in, opts)
}

func (c *Client) Detail(ctx context.Context, in *DetailRequest, opts ...grpc.CallOption) (*DetailResponse, error) {
	return invoke[DetailResponse](ctx, c.cc, MethodDetail, in, opts)
}

func (c *Client) CanRegister(ctx context.Context, opts ...grpc.CallOption) (*CanRegisterResponse, error) {
	return invoke[CanRegisterResponse](ctx, c.cc, MethodCanRegister, &Empty{}, opts)
}

func (c *Client) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*OKResponse, error) {
	return invoke[OKResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *Client) LoginTwoFactor(ctx context.Context, in *LoginTwoFactorRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLoginTwoFactor, in, opts)
}

func (c *Client) RegenToken(ctx context.Context, opts ...grpc.CallOption) (*OKResponse, error) {
	return invoke[OKResponse](ctx, c.cc, MethodRegenToken, &Empty{}, opts)
}

func (c *Client) GenLowPermToken(ctx context.Context, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodGenLowPermToken, &Empty{}, opts)
}

func (c *Client) UpsertUser(ctx context.Context, in *UpsertUserRequest, opts ...grpc.CallOption) (*OKResponse, error) {
	return invoke[OKResponse](ctx, c.cc, MethodUpsertUser, in, opts)
}

func (c *Client) UpsertUserByAdmin(ctx context.Context, in *UpsertUserByAdminRequest, opts ...grpc.CallOption) (*OKResponse, error) {
	return invoke[OKResponse](ctx, c.cc, MethodUpsertUserByAdmin, in, opts)
}

func (c *Client) Generate2FASecret(ctx context.Context, in *Generate2FASecretRequest, opts ...grpc.CallOption) (*Generate2FASecretResponse, error) {
	return invoke[Generate2FASecretResponse](ctx, c.cc, MethodGenerate2FASecret, in, opts)
}

func (c *Client) Verify2FAToken(ctx context.Context, in *Verify2FATokenRequest, opts ...grpc.CallOption) (*OKResponse, error) {
	return invoke[OKResponse](ctx, c.cc, MethodVerify2FAToken, in, opts)
}

func (c *Client) Disable2FA(ctx context.Context, opts ...grpc.CallOption) (*OKResponse, error) {
	return invoke[OKResponse](ctx, c.cc, MethodDisable2FA, &Empty{}, opts)
}

func (c *Client) SetAllowRegister(ctx context.Context, in *SetAllowRegisterRequest, opts ...grpc.CallOption) (*OKResponse, error) {
	return invoke[OKResponse](ctx, c.cc, MethodSetAllowRegister, in, opts)
}

func (c *Client) AvatarUploadURL(ctx context.Context, opts ...grpc.CallOption) (*AvatarUploadURLResponse, error) {
	return invoke[AvatarUploadURLResponse](ctx, c.cc, MethodAvatarUploadURL, &Empty{}, opts)
}

func (c *Client) DeleteUser(ctx context.Context, in *DeleteUserRequest, opts ...grpc.CallOption) (*OKResponse, error) {
	return invoke[OKResponse](ctx, c.cc, MethodDeleteUser, in, opts)
}

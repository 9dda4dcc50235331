package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "noteshelf.accounts.v1.AccountService"

const (
	MethodList              = "List"
	MethodPublicUserList    = "PublicUserList"
	MethodNativeAccountList = "NativeAccountList"
	MethodLinkAccount       = "LinkAccount"
	MethodUnlinkAccount     = "UnlinkAccount"
	MethodDetail            = "Detail"
	MethodCanRegister       = "CanRegister"
	MethodRegister          = "Register"
	MethodLogin             = "Login"
	MethodLoginTwoFactor    = "LoginTwoFactor"
	MethodRegenToken        = "RegenToken"
	MethodGenLowPermToken   = "GenLowPermToken"
	MethodUpsertUser        = "UpsertUser"
	MethodUpsertUserByAdmin = "UpsertUserByAdmin"
	MethodGenerate2FASecret = "Generate2FASecret"
	MethodVerify2FAToken    = "Verify2FAToken"
	MethodDisable2FA        = "Disable2FA"
	MethodSetAllowRegister  = "SetAllowRegister"
	MethodAvatarUploadURL   = "AvatarUploadURL"
	MethodDeleteUser        = "DeleteUser"
)

// FullMethod returns the gRPC method path, e.g.
// "/noteshelf.accounts.v1.AccountService/Login".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// AccountServiceServer is implemented by the server.
type AccountServiceServer interface {
	List(context.Context, *Empty) (*ListResponse, error)
	PublicUserList(context.Context, *Empty) (*PublicUserListResponse, error)
	NativeAccountList(context.Context, *Empty) (*NativeAccountListResponse, error)
	LinkAccount(context.Context, *LinkAccountRequest) (*OKResponse, error)
	UnlinkAccount(context.Context, *UnlinkAccountRequest) (*OKResponse, error)
	Detail(context.Context, *DetailRequest) (*DetailResponse, error)
	CanRegister(context.Context, *Empty) (*CanRegisterResponse, error)
	Register(context.Context, *RegisterRequest) (*OKResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	LoginTwoFactor(context.Context, *LoginTwoFactorRequest) (*LoginResponse, error)
	RegenToken(context.Context, *Empty) (*OKResponse, error)
	GenLowPermToken(context.Context, *Empty) (*TokenResponse, error)
	UpsertUser(context.Context, *UpsertUserRequest) (*OKResponse, error)
	UpsertUserByAdmin(context.Context, *UpsertUserByAdminRequest) (*OKResponse, error)
	Generate2FASecret(context.Context, *Generate2FASecretRequest) (*Generate2FASecretResponse, error)
	Verify2FAToken(context.Context, *Verify2FATokenRequest) (*OKResponse, error)
	Disable2FA(context.Context, *Empty) (*OKResponse, error)
	SetAllowRegister(context.Context, *SetAllowRegisterRequest) (*OKResponse, error)
	AvatarUploadURL(context.Context, *Empty) (*AvatarUploadURLResponse, error)
	DeleteUser(context.Context, *DeleteUserRequest) (*OKResponse, error)
}

// UnimplementedAccountServiceServer answers every method with
// codes.Unimplemented. Embed it to satisfy AccountServiceServer partially.
type UnimplementedAccountServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedAccountServiceServer) List(context.Context, *Empty) (*ListResponse, error) {
	return nil, unimplemented(MethodList)
}
func (UnimplementedAccountServiceServer) PublicUserList(context.Context, *Empty) (*PublicUserListResponse, error) {
	return nil, unimplemented(MethodPublicUserList)
}
func (UnimplementedAccountServiceServer) NativeAccountList(context.Context, *Empty) (*NativeAccountListResponse, error) {
	return nil, unimplemented(MethodNativeAccountList)
}
func (UnimplementedAccountServiceServer) LinkAccount(context.Context, *LinkAccountRequest) (*OKResponse, error) {
	return nil, unimplemented(MethodLinkAccount)
}
func (UnimplementedAccountServiceServer) UnlinkAccount(context.Context, *UnlinkAccountRequest) (*OKResponse, error) {
	return nil, unimplemented(MethodUnlinkAccount)
}
func (UnimplementedAccountServiceServer) Detail(context.Context, *DetailRequest) (*DetailResponse, error) {
	return nil, unimplemented(MethodDetail)
}
func (UnimplementedAccountServiceServer) CanRegister(context.Context, *Empty) (*CanRegisterResponse, error) {
	return nil, unimplemented(MethodCanRegister)
}
func (UnimplementedAccountServiceServer) Register(context.Context, *RegisterRequest) (*OKResponse, error) {
	return nil, unimplemented(MethodRegister)
}
func (UnimplementedAccountServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, unimplemented(MethodLogin)
}
func (UnimplementedAccountServiceServer) LoginTwoFactor(context.Context, *LoginTwoFactorRequest) (*LoginResponse, error) {
	return nil, unimplemented(MethodLoginTwoFactor)
}
func (UnimplementedAccountServiceServer) RegenToken(context.Context, *Empty) (*OKResponse, error) {
	return nil, unimplemented(MethodRegenToken)
}
func (UnimplementedAccountServiceServer) GenLowPermToken(context.Context, *Empty) (*TokenResponse, error) {
	return nil, unimplemented(MethodGenLowPermToken)
}
func (UnimplementedAccountServiceServer) UpsertUser(context.Context, *UpsertUserRequest) (*OKResponse, error) {
	return nil, unimplemented(MethodUpsertUser)
}
func (UnimplementedAccountServiceServer) UpsertUserByAdmin(context.Context, *UpsertUserByAdminRequest) (*OKResponse, error) {
	return nil, unimplemented(MethodUpsertUserByAdmin)
}
func (UnimplementedAccountServiceServer) Generate2FASecret(context.Context, *Generate2FASecretRequest) (*Generate2FASecretResponse, error) {
	return nil, unimplemented(MethodGenerate2FASecret)
}
func (UnimplementedAccountServiceServer) Verify2FAToken(context.Context, *Verify2FATokenRequest) (*OKResponse, error) {
	return nil, unimplemented(MethodVerify2FAToken)
}
func (UnimplementedAccountServiceServer) Disable2FA(context.Context, *Empty) (*OKResponse, error) {
	return nil, unimplemented(MethodDisable2FA)
}
func (UnimplementedAccountServiceServer) SetAllowRegister(context.Context, *SetAllowRegisterRequest) (*OKResponse, error) {
	return nil, unimplemented(MethodSetAllowRegister)
}
func (UnimplementedAccountServiceServer) AvatarUploadURL(context.Context, *Empty) (*AvatarUploadURLResponse, error) {
	return nil, unimplemented(MethodAvatarUploadURL)
}
func (UnimplementedAccountServiceServer) DeleteUser(context.Context, *DeleteUserRequest) (*OKResponse, error) {
	return nil, unimplemented(MethodDeleteUser)
}

// unary builds the descriptor of one method: decode into Req, run the
// interceptor chain, dispatch to call.
func unary[Req, Resp any](method string, call func(AccountServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AccountServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AccountServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// AccountServiceDesc describes the service for grpc.Server.RegisterService.
var AccountServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodList, AccountServiceServer.List),
		unary(MethodPublicUserList, AccountServiceServer.PublicUserList),
		unary(MethodNativeAccountList, AccountServiceServer.NativeAccountList),
		unary(MethodLinkAccount, AccountServiceServer.LinkAccount),
		unary(MethodUnlinkAccount, AccountServiceServer.UnlinkAccount),
		unary(MethodDetail, AccountServiceServer.Detail),
		unary(MethodCanRegister, AccountServiceServer.CanRegister),
		unary(MethodRegister, AccountServiceServer.Register),
		unary(MethodLogin, AccountServiceServer.Login),
		unary(MethodLoginTwoFactor, AccountServiceServer.LoginTwoFactor),
		unary(MethodRegenToken, AccountServiceServer.RegenToken),
		unary(MethodGenLowPermToken, AccountServiceServer.GenLowPermToken),
		unary(MethodUpsertUser, AccountServiceServer.UpsertUser),
		unary(MethodUpsertUserByAdmin, AccountServiceServer.UpsertUserByAdmin),
		unary(MethodGenerate2FASecret, AccountServiceServer.Generate2FASecret),
		unary(MethodVerify2FAToken, AccountServiceServer.Verify2FAToken),
		unary(MethodDisable2FA, AccountServiceServer.Disable2FA),
		unary(MethodSetAllowRegister, AccountServiceServer.SetAllowRegister),
		unary(MethodAvatarUploadURL, AccountServiceServer.AvatarUploadURL),
		unary(MethodDeleteUser, AccountServiceServer.DeleteUser),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "noteshelf/accounts/v1",
}

func RegisterAccountServiceServer(s grpc.ServiceRegistrar, srv AccountServiceServer) {
	s.RegisterService(&AccountServiceDesc, srv)
}

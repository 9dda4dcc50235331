package grpc

import (
	"context"

	"github.com/dmitrijs2005/noteshelf/internal/api"
	"github.com/dmitrijs2005/noteshelf/internal/server/auth"
	"github.com/dmitrijs2005/noteshelf/internal/server/policy"
	"github.com/dmitrijs2005/noteshelf/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// operations maps full method names to policy operation ids.
var operations = map[string]string{
	api.FullMethod(api.MethodList):              policy.OpList,
	api.FullMethod(api.MethodPublicUserList):    policy.OpPublicUserList,
	api.FullMethod(api.MethodNativeAccountList): policy.OpNativeAccountList,
	api.FullMethod(api.MethodLinkAccount):       policy.OpLinkAccount,
	api.FullMethod(api.MethodUnlinkAccount):     policy.OpUnlinkAccount,
	api.FullMethod(api.MethodDetail):            policy.OpDetail,
	api.FullMethod(api.MethodCanRegister):       policy.OpCanRegister,
	api.FullMethod(api.MethodRegister):          policy.OpRegister,
	api.FullMethod(api.MethodLogin):             policy.OpLogin,
	api.FullMethod(api.MethodLoginTwoFactor):    policy.OpLoginTwoFactor,
	api.FullMethod(api.MethodRegenToken):        policy.OpRegenToken,
	api.FullMethod(api.MethodGenLowPermToken):   policy.OpGenLowPermToken,
	api.FullMethod(api.MethodUpsertUser):        policy.OpUpsertUser,
	api.FullMethod(api.MethodUpsertUserByAdmin): policy.OpUpsertUserByAdmin,
	api.FullMethod(api.MethodGenerate2FASecret): policy.OpGenerate2FASecret,
	api.FullMethod(api.MethodVerify2FAToken):    policy.OpVerify2FAToken,
	api.FullMethod(api.MethodDisable2FA):        policy.OpDisable2FA,
	api.FullMethod(api.MethodSetAllowRegister):  policy.OpSetAllowRegister,
	api.FullMethod(api.MethodAvatarUploadURL):   policy.OpAvatarUploadURL,
	api.FullMethod(api.MethodDeleteUser):        policy.OpDeleteUser,
}

func tokenFromMetadata(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(api.TokenMetadataKey); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// accessTokenInterceptor authorizes account service calls. Methods of other
// services (health) pass through.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	id, ok := operations[info.FullMethod]
	if !ok {
		return handler(ctx, req)
	}

	claims, err := s.authorizer.Authorize(ctx, tokenFromMetadata(ctx), policy.Catalog[id])
	if err != nil {
		s.logger.Info(ctx, "request rejected", "operation", id, "error", err)
		return nil, toStatus(err)
	}
	if claims != nil {
		ctx = auth.NewContext(ctx, claims)
	}

	return handler(ctx, req)
}

func callerFrom(ctx context.Context) (services.Caller, error) {
	claims, _ := auth.FromContext(ctx)
	return services.CallerFromClaims(claims)
}

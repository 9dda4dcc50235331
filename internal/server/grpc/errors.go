package grpc

import (
	"github.com/dmitrijs2005/noteshelf/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var grpcCodes = map[common.Code]codes.Code{
	common.CodeNotFound:     codes.NotFound,
	common.CodeUnauthorized: codes.Unauthenticated,
	common.CodeForbidden:    codes.PermissionDenied,
	common.CodeConflict:     codes.AlreadyExists,
	common.CodeInternal:     codes.Internal,
}

// toStatus converts a service error to a gRPC status carrying only the
// public message.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	c, ok := grpcCodes[common.CodeOf(err)]
	if !ok {
		c = codes.Internal
	}
	return status.Error(c, common.PublicMessage(err))
}

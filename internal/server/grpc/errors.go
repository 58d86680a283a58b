package grpc

import (
	"errors"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors to gRPC statuses. Only the message of a known
// kind is sent; the wrapped details stay in the server log.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, common.ErrorNotFound.Error())
	case errors.Is(err, common.ErrorConflict):
		return status.Error(codes.AlreadyExists, common.ErrorConflict.Error())
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, common.ErrorForbidden.Error())
	case errors.Is(err, common.ErrorInvalidCredential):
		return status.Error(codes.Unauthenticated, common.ErrorInvalidCredential.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	case errors.Is(err, common.ErrorUpdateFailed):
		return status.Error(codes.FailedPrecondition, common.ErrorUpdateFailed.Error())
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorUnavailable):
		return status.Error(codes.Unavailable, common.ErrorUnavailable.Error())
	default:
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}

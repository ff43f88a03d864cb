package grpcstore

import (
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/SkynetHQ/skynet-go/registry"
	"github.com/SkynetHQ/skynet-go/skyerr"
	"github.com/SkynetHQ/skynet-go/storage"
)

// mapRPC translates a status error from the Store service back into the
// sentinels callers of storage.CAS and registry.Store match on.
func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		// Both stores share the code; the message tells them apart.
		if strings.HasPrefix(st.Message(), "registry:") {
			return registry.ErrEntryNotFound
		}
		return storage.ErrNotFound
	case codes.InvalidArgument:
		if st.Message() == storage.ErrInvalidCID.Error() {
			return storage.ErrInvalidCID
		}
		return skyerr.Validation("request", "%s", st.Message())
	case codes.DataLoss:
		return storage.ErrCIDMismatch
	case codes.Aborted:
		return storage.ErrStaleRevision
	case codes.Unauthenticated:
		return &skyerr.Error{
			Kind:    skyerr.KindAuthentication,
			Message: st.Message(),
		}
	default:
		return err
	}
}

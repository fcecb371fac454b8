package api

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"

	"github.com/ebosoh/sales-agent/internal/monitor"
	"github.com/ebosoh/sales-agent/internal/query"
	"github.com/ebosoh/sales-agent/internal/store"
)

// toStatus maps domain errors onto gRPC codes. op prefixes the message.
func toStatus(op string, err error) error {
	if err == nil {
		return nil
	}
	return grpcstatus.Errorf(codeOf(err), "%s: %v", op, err)
}

func codeOf(err error) codes.Code {
	switch {
	case errors.Is(err, store.ErrDuplicateKey), errors.Is(err, monitor.ErrAlreadyRunning):
		return codes.AlreadyExists
	case errors.Is(err, store.ErrInvalid):
		return codes.InvalidArgument
	case errors.Is(err, store.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, monitor.ErrNoGroups),
		errors.Is(err, query.ErrEmptyCatalog),
		errors.Is(err, query.ErrNoIdentity):
		return codes.FailedPrecondition
	case errors.Is(err, query.ErrNoCommunity):
		return codes.Unavailable
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	}
	return codes.Internal
}

package llm

import (
	"context"
	"errors"
	"net"
	"net/http"

	"google.golang.org/grpc/codes"
)

// Failure categories a provider error is sorted into.
var (
	ErrNetwork         = errors.New("network error")
	ErrQuota           = errors.New("quota exceeded")
	ErrInvalidArgument = errors.New("request rejected")
	ErrBlocked         = errors.New("response blocked")
	ErrUnavailable     = errors.New("service unavailable")
)

var kinds = []error{ErrNetwork, ErrQuota, ErrInvalidArgument, ErrBlocked, ErrUnavailable}

// Error tags a provider error with its category. Error() is the provider's message.
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// KindOf returns the category sentinel of err, or nil when err is unclassified.
func KindOf(err error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

func tag(kind, err error) error {
	if kind == nil {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

// classifyCommon handles failures every provider shares: transport errors and deadlines.
// Errors already tagged are returned unchanged.
func classifyCommon(err error) error {
	if err == nil || KindOf(err) != nil {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return tag(ErrNetwork, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return tag(ErrNetwork, err)
	}
	return err
}

func kindForHTTPStatus(code int) error {
	switch {
	case code == http.StatusTooManyRequests:
		return ErrQuota
	case code == http.StatusBadRequest, code == http.StatusUnauthorized, code == http.StatusForbidden,
		code == http.StatusNotFound, code == http.StatusUnprocessableEntity:
		return ErrInvalidArgument
	case code >= 500:
		return ErrUnavailable
	}
	return nil
}

func kindForGRPCCode(code codes.Code) error {
	switch code {
	case codes.ResourceExhausted:
		return ErrQuota
	case codes.InvalidArgument, codes.FailedPrecondition, codes.PermissionDenied,
		codes.Unauthenticated, codes.NotFound, codes.OutOfRange:
		return ErrInvalidArgument
	case codes.Unavailable, codes.Internal, codes.Aborted:
		return ErrUnavailable
	case codes.DeadlineExceeded:
		return ErrNetwork
	}
	return nil
}

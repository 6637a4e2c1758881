package infer

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/status"
)

// Sequence protocol misuse. These are returned synchronously and indicate a
// caller bug, not a server condition.
var (
	// ErrSequenceClosed is returned by AddRequest after a request carrying
	// the end marker was already added.
	ErrSequenceClosed = errors.New("sequence already received its end request, no further requests can be added")

	// ErrSequenceExhausted is returned when requests are read past the
	// delivered end-marked request.
	ErrSequenceExhausted = errors.New("sequence end request already delivered, no further requests can be read")

	// ErrSequenceNotDelivered is returned by Reset while the current
	// sequence still has undelivered requests.
	ErrSequenceNotDelivered = errors.New("sequence metadata can be reset only once the current sequence is delivered")
)

// ErrInvalidArgument marks descriptor and parameter validation failures
// detected before any network call.
var ErrInvalidArgument = errors.New("invalid argument")

func invalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}

// ServerError is the uniform error for every RPC failure surfaced by the
// SDK: the server-reported (or transport) message, the string form of the
// status code, and the transport debug detail when available.
type ServerError struct {
	Message      string
	Status       string
	DebugDetails string
}

func (e *ServerError) Error() string {
	if e.Status == "" {
		return e.Message
	}
	return fmt.Sprintf("[%s] %s", e.Status, e.Message)
}

// ErrorFromRPC converts a gRPC call error into a *ServerError.
func ErrorFromRPC(err error) *ServerError {
	s, ok := status.FromError(err)
	if !ok {
		return &ServerError{Message: err.Error()}
	}
	return &ServerError{
		Message:      s.Message(),
		Status:       s.Code().String(),
		DebugDetails: s.String(),
	}
}

package session

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/pithecene-io/mpub/archive"
	"github.com/pithecene-io/mpub/marketplace"
	"github.com/pithecene-io/mpub/types"
)

var (
	// ErrAlreadyStarted is returned by Send on a session that is not idle.
	ErrAlreadyStarted = errors.New("session already started")
	// ErrInvalidTransition is returned by Transition for events that do not
	// apply to the current state.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Error is the terminal error of a session.
type Error struct {
	Kind types.ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the error kind carried by err.
// Errors that are not session errors are classified as if raised by a step.
func KindOf(err error) types.ErrorKind {
	if err == nil {
		return types.ErrorNone
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return classify(context.Background(), "", err).Kind
}

// classify maps a step error onto an error kind. parent is the session
// context: once it is done every failure counts as a cancellation, since
// the request deadline is derived from it.
func classify(parent context.Context, op string, err error) *Error {
	e := &Error{Op: op, Err: err}

	var statusErr *marketplace.StatusError
	var netErr net.Error
	switch {
	case parent.Err() != nil || errors.Is(err, context.Canceled):
		e.Kind = types.ErrorCancelled
	case errors.Is(err, context.DeadlineExceeded):
		e.Kind = types.ErrorTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		e.Kind = types.ErrorTimeout
	case errors.Is(err, marketplace.ErrNotAuthenticated):
		e.Kind = types.ErrorUnauthenticated
	case errors.As(err, &statusErr):
		e.Kind = types.ErrorHTTPStatus
	case errors.Is(err, marketplace.ErrMalformedResponse):
		e.Kind = types.ErrorMalformedResponse
	case errors.Is(err, marketplace.ErrCategoryNotFound):
		e.Kind = types.ErrorCategoryNotFound
	case errors.Is(err, archive.ErrArchiveWrite):
		e.Kind = types.ErrorArchiveWrite
	case errors.Is(err, marketplace.ErrTransport):
		e.Kind = types.ErrorNetwork
	default:
		e.Kind = types.ErrorUnknown
	}
	return e
}

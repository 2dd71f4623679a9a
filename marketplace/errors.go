package marketplace

import (
	"errors"
	"fmt"
)

// Sentinel errors for response classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrTransport indicates the request never produced a response
	// (connection refused, reset, DNS, deadline).
	ErrTransport = errors.New("transport error")

	// ErrMalformedResponse indicates a response body could not be interpreted.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrCategoryNotFound indicates the category list has no entry with the
	// requested name.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrNotAuthenticated indicates an authenticated request was built
	// without a token.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// StatusError is returned for non-2xx HTTP responses.
// Body holds the raw response payload.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

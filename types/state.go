// Package types defines core domain types for the mpub publisher.
//
//nolint:revive // types is a common Go package naming convention
package types

// State is the position of an upload session in its workflow.
//
// Every session starts Idle and ends Complete. There is no failed state:
// a failed session is Complete with a non-none ErrorKind.
type State string

const (
	// StateIdle is the initial state. Only an idle session can be sent.
	StateIdle State = "idle"
	// StateFetchingCategory covers category resolution and archive assembly.
	StateFetchingCategory State = "fetching_category"
	// StateUploading is entered right before the listing request is dispatched.
	StateUploading State = "uploading"
	// StateAwaitingInventorySync covers the post-publish inventory request.
	StateAwaitingInventorySync State = "awaiting_inventory_sync"
	// StateComplete is terminal for both success and failure.
	StateComplete State = "complete"
)

// IsTerminal returns true if no further transitions are possible.
func (s State) IsTerminal() bool {
	return s == StateComplete
}

// String implements fmt.Stringer.
func (s State) String() string {
	return string(s)
}

// ErrorKind classifies the terminal error of a session.
type ErrorKind string

const (
	// ErrorNone means no failure was observed.
	ErrorNone ErrorKind = "none"
	// ErrorUnknown is an unclassified failure.
	ErrorUnknown ErrorKind = "unknown"
	// ErrorNetwork is a transport-level failure (connection refused, reset, DNS).
	ErrorNetwork ErrorKind = "network"
	// ErrorTimeout means a request exceeded its deadline.
	ErrorTimeout ErrorKind = "timeout"
	// ErrorHTTPStatus means the server answered with a non-2xx status.
	ErrorHTTPStatus ErrorKind = "http_status"
	// ErrorUnauthenticated means an authenticated request had no credentials.
	ErrorUnauthenticated ErrorKind = "unauthenticated"
	// ErrorMalformedResponse means a response body could not be interpreted.
	ErrorMalformedResponse ErrorKind = "malformed_response"
	// ErrorCategoryNotFound means the target category is absent from the list.
	ErrorCategoryNotFound ErrorKind = "category_not_found"
	// ErrorArchiveWrite means the archive writer failed; nothing was submitted.
	ErrorArchiveWrite ErrorKind = "archive_write"
	// ErrorCancelled means the caller cancelled the session.
	ErrorCancelled ErrorKind = "cancelled"
	// ErrorFileReadSkipped marks an input that could not be read and was left
	// out of the archive. It is never a session error.
	ErrorFileReadSkipped ErrorKind = "file_read_skipped"
)

// IsFailure returns true for kinds that end a session unsuccessfully.
func (k ErrorKind) IsFailure() bool {
	return k != "" && k != ErrorNone && k != ErrorFileReadSkipped
}

// Legacy collapses the kind to the two-valued none/unknown classification
// reported by older marketplace clients.
func (k ErrorKind) Legacy() ErrorKind {
	if k.IsFailure() {
		return ErrorUnknown
	}
	return ErrorNone
}

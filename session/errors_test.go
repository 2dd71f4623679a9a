package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pithecene-io/mpub/archive"
	"github.com/pithecene-io/mpub/marketplace"
	"github.com/pithecene-io/mpub/types"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want types.ErrorKind
	}{
		{"transport", fmt.Errorf("%w: dial tcp: refused", marketplace.ErrTransport), types.ErrorNetwork},
		{"deadline", fmt.Errorf("%w: %w", marketplace.ErrTransport, context.DeadlineExceeded), types.ErrorTimeout},
		{"net timeout", fmt.Errorf("%w: %w", marketplace.ErrTransport, timeoutErr{}), types.ErrorTimeout},
		{"canceled", fmt.Errorf("%w: %w", marketplace.ErrTransport, context.Canceled), types.ErrorCancelled},
		{"status", &marketplace.StatusError{Code: 500}, types.ErrorHTTPStatus},
		{"unauthenticated", fmt.Errorf("%w: no token", marketplace.ErrNotAuthenticated), types.ErrorUnauthenticated},
		{"malformed", fmt.Errorf("%w: bad json", marketplace.ErrMalformedResponse), types.ErrorMalformedResponse},
		{"not found", fmt.Errorf("%w: Avatars", marketplace.ErrCategoryNotFound), types.ErrorCategoryNotFound},
		{"archive", fmt.Errorf("%w: close", archive.ErrArchiveWrite), types.ErrorArchiveWrite},
		{"archive too large", fmt.Errorf("%w: %w", archive.ErrArchiveWrite, archive.ErrTooLarge), types.ErrorArchiveWrite},
		{"other", errors.New("boom"), types.ErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := classify(context.Background(), OpUpload, tt.err)
			if e.Kind != tt.want {
				t.Errorf("kind = %s, want %s", e.Kind, tt.want)
			}
			if !errors.Is(e, tt.err) {
				t.Error("classified error should wrap the cause")
			}
			if e.Op != OpUpload {
				t.Errorf("op = %q", e.Op)
			}
		})
	}
}

func TestClassify_ParentDoneWins(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := classify(ctx, OpFetchCategory, fmt.Errorf("%w: reset", marketplace.ErrTransport))
	if e.Kind != types.ErrorCancelled {
		t.Errorf("kind = %s, want cancelled", e.Kind)
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(nil); got != types.ErrorNone {
		t.Errorf("KindOf(nil) = %s", got)
	}
	wrapped := fmt.Errorf("run: %w", &Error{Kind: types.ErrorTimeout, Op: OpUpload})
	if got := KindOf(wrapped); got != types.ErrorTimeout {
		t.Errorf("KindOf(wrapped) = %s", got)
	}
	if got := KindOf(&marketplace.StatusError{Code: 404}); got != types.ErrorHTTPStatus {
		t.Errorf("KindOf(status) = %s", got)
	}
}

func TestError_Message(t *testing.T) {
	e := &Error{Kind: types.ErrorNetwork, Op: OpSyncInventory, Err: errors.New("reset")}
	if got := e.Error(); got != "sync_inventory: network: reset" {
		t.Errorf("Error() = %q", got)
	}
}

package types //nolint:revive // types is a valid package name

import "testing"

func TestState_IsTerminal(t *testing.T) {
	states := []State{
		StateIdle,
		StateFetchingCategory,
		StateUploading,
		StateAwaitingInventorySync,
	}
	for _, s := range states {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	if !StateComplete.IsTerminal() {
		t.Error("complete should be terminal")
	}
}

func TestErrorKind_Legacy(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want ErrorKind
	}{
		{ErrorNone, ErrorNone},
		{"", ErrorNone},
		{ErrorFileReadSkipped, ErrorNone},
		{ErrorUnknown, ErrorUnknown},
		{ErrorNetwork, ErrorUnknown},
		{ErrorTimeout, ErrorUnknown},
		{ErrorHTTPStatus, ErrorUnknown},
		{ErrorUnauthenticated, ErrorUnknown},
		{ErrorMalformedResponse, ErrorUnknown},
		{ErrorCategoryNotFound, ErrorUnknown},
		{ErrorArchiveWrite, ErrorUnknown},
		{ErrorCancelled, ErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.Legacy(); got != tt.want {
				t.Errorf("Legacy(%q) = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

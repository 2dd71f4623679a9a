package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/urfave/cli/v2"
)

func TestExitErrHandler_NilError(t *testing.T) {
	// Should not panic or exit on nil error
	exitErrHandler(nil, nil)
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
	}{
		{
			name:     "success no message",
			err:      cli.Exit("", 0),
			wantCode: 0,
		},
		{
			name:     "upload failed silent",
			err:      cli.Exit("", 1),
			wantCode: 1,
		},
		{
			name:     "invalid input with message",
			err:      cli.Exit("--title is required", 2),
			wantCode: 2,
			wantOut:  "--title is required\n",
		},
		{
			name:     "cancelled",
			err:      cli.Exit("", 3),
			wantCode: 3,
		},
		{
			name:     "wrapped exit coder",
			err:      errors.Join(errors.New("context"), cli.Exit("inner error", 42)),
			wantCode: 42,
			wantOut:  "inner error\n",
		},
		{
			name:     "regular error",
			err:      errors.New("boom"),
			wantCode: 1,
			wantOut:  "Error: boom\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if got := reportError(&buf, tt.err); got != tt.wantCode {
				t.Errorf("code = %d, want %d", got, tt.wantCode)
			}
			if buf.String() != tt.wantOut {
				t.Errorf("output = %q, want %q", buf.String(), tt.wantOut)
			}
		})
	}
}

func TestNewApp_Commands(t *testing.T) {
	app := newApp()
	want := map[string]bool{"upload": false, "categories": false, "version": false}
	for _, c := range app.Commands {
		if _, ok := want[c.Name]; ok {
			want[c.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing command %q", name)
		}
	}
}

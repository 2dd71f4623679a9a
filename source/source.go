// Package source opens the inputs that go into a listing archive.
//
// Inputs are named either by a local file path or by an s3://bucket/key URI.
// The archive entry for an input is always its base name.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrUnsupportedScheme is returned by Mux for URIs with no registered opener.
var ErrUnsupportedScheme = errors.New("unsupported source scheme")

// Opener opens a named input for reading.
type Opener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, name string) (io.ReadCloser, error)

// Open implements Opener.
func (f OpenerFunc) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return f(ctx, name)
}

// Local opens files on the local filesystem.
type Local struct{}

// Open implements Opener.
func (Local) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// Mux dispatches to an opener by URI scheme. Names without a scheme go to
// Default.
type Mux struct {
	Default Opener
	Schemes map[string]Opener
}

// NewMux returns a Mux that opens local paths, plus s3:// URIs when s3 is
// non-nil.
func NewMux(s3 Opener) *Mux {
	m := &Mux{Default: Local{}, Schemes: map[string]Opener{}}
	if s3 != nil {
		m.Schemes["s3"] = s3
	}
	return m
}

// Open implements Opener.
func (m *Mux) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	scheme := Scheme(name)
	if scheme == "" {
		if m.Default == nil {
			return nil, fmt.Errorf("%w: no default opener for %q", ErrUnsupportedScheme, name)
		}
		return m.Default.Open(ctx, name)
	}
	o, ok := m.Schemes[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}
	return o.Open(ctx, name)
}

// Scheme returns the lowercase URI scheme of name, or "" for plain paths.
// Single-letter schemes are treated as Windows drive letters.
func Scheme(name string) string {
	i := strings.Index(name, "://")
	if i <= 1 {
		return ""
	}
	return strings.ToLower(name[:i])
}

// BaseName returns the archive entry name for an input.
func BaseName(name string) string {
	if Scheme(name) != "" {
		_, rest, _ := strings.Cut(name, "://")
		rest = strings.TrimRight(rest, "/")
		return path.Base(rest)
	}
	return filepath.Base(name)
}

var (
	_ Opener = Local{}
	_ Opener = (*Mux)(nil)
	_ Opener = OpenerFunc(nil)
)

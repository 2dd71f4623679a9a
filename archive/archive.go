// Package archive builds the compressed container submitted with a listing.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/pithecene-io/mpub/iox"
	"github.com/pithecene-io/mpub/source"
)

var (
	// ErrArchiveWrite indicates the zip writer failed. The archive is unusable.
	ErrArchiveWrite = errors.New("archive write failed")
	// ErrTooLarge indicates the archive exceeded the configured size cap.
	ErrTooLarge = errors.New("archive exceeds size limit")
	// ErrNoInputs indicates Build was called with an empty input list.
	ErrNoInputs = errors.New("no archive inputs")
)

// Entry is one file stored in the archive.
type Entry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Skipped is an input that could not be read and was left out.
type Skipped struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// Archive is a finished archive blob plus a record of what went into it.
type Archive struct {
	Data    []byte
	Entries []Entry
	Skipped []Skipped
}

// Has reports whether an entry named name was stored.
func (a *Archive) Has(name string) bool {
	for _, e := range a.Entries {
		if e.Name == name {
			return true
		}
	}
	return false
}

// Duplicates returns entry names that occur more than once, in first-seen order.
func (a *Archive) Duplicates() []string {
	seen := make(map[string]int, len(a.Entries))
	var dups []string
	for _, e := range a.Entries {
		seen[e.Name]++
		if seen[e.Name] == 2 {
			dups = append(dups, e.Name)
		}
	}
	return dups
}

// Archiver creates an archive from an ordered list of inputs.
type Archiver interface {
	Build(ctx context.Context, paths []string) (*Archive, error)
}

// ZipArchiver stores each readable input as a deflated zip entry named by
// its base name. Unreadable inputs are skipped.
type ZipArchiver struct {
	// Opener reads inputs. Nil means local files only.
	Opener source.Opener
	// MaxBytes caps the archive size. Zero means no cap.
	MaxBytes int64
	// Store disables compression.
	Store bool
}

// Build implements Archiver.
func (z *ZipArchiver) Build(ctx context.Context, paths []string) (*Archive, error) {
	if len(paths) == 0 {
		return nil, ErrNoInputs
	}
	opener := z.Opener
	if opener == nil {
		opener = source.Local{}
	}

	var buf bytes.Buffer
	out := io.Writer(&buf)
	if z.MaxBytes > 0 {
		out = &limitWriter{w: &buf, max: z.MaxBytes}
	}
	zw := zip.NewWriter(out)

	method := zip.Deflate
	if z.Store {
		method = zip.Store
	}

	a := &Archive{}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := readAll(ctx, opener, p)
		if err != nil {
			a.Skipped = append(a.Skipped, Skipped{Path: p, Err: err})
			continue
		}

		name := source.BaseName(p)
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   method,
			Modified: time.Now(),
		})
		if err != nil {
			return nil, writeErr("create entry "+name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, writeErr("write entry "+name, err)
		}
		a.Entries = append(a.Entries, Entry{Name: name, Size: int64(len(data))})
	}

	if err := zw.Close(); err != nil {
		return nil, writeErr("close", err)
	}
	a.Data = buf.Bytes()
	return a, nil
}

func readAll(ctx context.Context, opener source.Opener, name string) ([]byte, error) {
	rc, err := opener.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer iox.DiscardClose(rc)
	return io.ReadAll(rc)
}

func writeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrArchiveWrite, op, err)
}

// limitWriter fails once more than max bytes have been written.
type limitWriter struct {
	w   io.Writer
	max int64
	n   int64
}

func (l *limitWriter) Write(p []byte) (int, error) {
	if l.n+int64(len(p)) > l.max {
		return 0, fmt.Errorf("%w (%d bytes)", ErrTooLarge, l.max)
	}
	n, err := l.w.Write(p)
	l.n += int64(n)
	return n, err
}

// Verify ZipArchiver implements the Archiver interface.
var _ Archiver = (*ZipArchiver)(nil)

// Package iox provides I/O helpers for resource cleanup and transfer progress.
package iox

import "io"

// DiscardClose closes c and discards the error.
// Use in defer statements where close errors are unactionable:
//
//	defer iox.DiscardClose(resp.Body)
func DiscardClose(c io.Closer) { _ = c.Close() }

// CloseFunc returns a cleanup function that closes c.
// Designed for t.Cleanup registration:
//
//	t.Cleanup(iox.CloseFunc(adapter))
func CloseFunc(c io.Closer) func() {
	return func() { _ = c.Close() }
}

// DiscardErr calls fn and discards the returned error.
// Use for non-Close cleanup calls (e.g. Sync) where errors are unactionable:
//
//	defer iox.DiscardErr(logger.Sync)
func DiscardErr(fn func() error) { _ = fn() }

// ProgressFunc receives the cumulative byte count read so far and the
// declared total.
type ProgressFunc func(sent, total int64)

// ProgressReader reports cumulative bytes read from an underlying reader.
// Reported counts never decrease and never exceed total.
type ProgressReader struct {
	r     io.Reader
	total int64
	sent  int64
	fn    ProgressFunc
}

// NewProgressReader wraps r. fn may be nil.
func NewProgressReader(r io.Reader, total int64, fn ProgressFunc) *ProgressReader {
	return &ProgressReader{r: r, total: total, fn: fn}
}

// Read implements io.Reader.
func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.sent > p.total {
			p.sent = p.total
		}
		if p.fn != nil {
			p.fn(p.sent, p.total)
		}
	}
	return n, err
}

// Sent returns the bytes read so far.
func (p *ProgressReader) Sent() int64 { return p.sent }

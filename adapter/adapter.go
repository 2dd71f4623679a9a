// Package adapter defines the boundary for notifying downstream systems
// that an upload session finished.
//
// Adapters are best effort: a publish failure is reported to the caller but
// never changes the session outcome.
package adapter

import (
	"context"
	"time"

	"github.com/pithecene-io/mpub/session"
	"github.com/pithecene-io/mpub/types"
)

// EventTypeUploadCompleted is the event_type of every UploadCompletedEvent.
const EventTypeUploadCompleted = "upload_completed"

// DefaultBackoff is the delay before the first retry. Later retries double it.
const DefaultBackoff = 500 * time.Millisecond

// UploadCompletedEvent is the payload published when a session completes.
type UploadCompletedEvent struct {
	Version       string `json:"version" msgpack:"version"`
	EventType     string `json:"event_type" msgpack:"event_type"`
	SessionID     string `json:"session_id" msgpack:"session_id"`
	Operation     string `json:"operation" msgpack:"operation"`
	ItemID        string `json:"item_id,omitempty" msgpack:"item_id,omitempty"`
	Title         string `json:"title" msgpack:"title"`
	State         string `json:"state" msgpack:"state"`
	ErrorKind     string `json:"error_kind" msgpack:"error_kind"`
	Error         string `json:"error,omitempty" msgpack:"error,omitempty"`
	CategoryID    int    `json:"category_id,omitempty" msgpack:"category_id,omitempty"`
	HTTPStatus    int    `json:"http_status,omitempty" msgpack:"http_status,omitempty"`
	FilesArchived int    `json:"files_archived" msgpack:"files_archived"`
	FilesSkipped  int    `json:"files_skipped" msgpack:"files_skipped"`
	ArchiveBytes  int64  `json:"archive_bytes" msgpack:"archive_bytes"`
	Timestamp     string `json:"timestamp" msgpack:"timestamp"` // RFC 3339
	DurationMs    int64  `json:"duration_ms" msgpack:"duration_ms"`
}

// NewUploadCompletedEvent builds the event for a completed session.
func NewUploadCompletedEvent(res *session.Result, now time.Time) *UploadCompletedEvent {
	ev := &UploadCompletedEvent{
		Version:       types.Version,
		EventType:     EventTypeUploadCompleted,
		SessionID:     res.Meta.SessionID,
		Operation:     string(res.Meta.Operation),
		Title:         res.Meta.Title,
		State:         string(res.State),
		ErrorKind:     string(res.ErrorKind),
		CategoryID:    res.CategoryID,
		HTTPStatus:    res.Status,
		FilesArchived: len(res.Entries),
		FilesSkipped:  len(res.Skipped),
		ArchiveBytes:  res.ArchiveBytes,
		Timestamp:     now.UTC().Format(time.RFC3339),
		DurationMs:    res.Duration.Milliseconds(),
	}
	if res.Meta.ItemID != nil {
		ev.ItemID = *res.Meta.ItemID
	}
	if res.Err != nil {
		ev.Error = res.Err.Error()
	}
	return ev
}

// Adapter publishes upload completion events to a downstream system.
type Adapter interface {
	// Publish sends the event. Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *UploadCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}

// Backoff returns the delay before retry number attempt (1-based).
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return time.Duration(1<<uint(attempt-1)) * base
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pithecene-io/mpub/session"
	"github.com/pithecene-io/mpub/types"
)

func TestNewUploadCompletedEvent(t *testing.T) {
	item := "{abc-123}"
	res := &session.Result{
		Meta: types.SessionMeta{
			SessionID: "sess-1",
			Operation: types.OperationUpdate,
			ItemID:    &item,
			Title:     "Robot",
		},
		State:        types.StateComplete,
		ErrorKind:    types.ErrorHTTPStatus,
		Err:          errors.New("upload: http_status: unexpected status 422"),
		CategoryID:   7,
		Status:       422,
		ArchiveBytes: 1024,
		Duration:     1500 * time.Millisecond,
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))

	ev := NewUploadCompletedEvent(res, now)

	if ev.EventType != EventTypeUploadCompleted || ev.Version != types.Version {
		t.Errorf("header = %s/%s", ev.EventType, ev.Version)
	}
	if ev.SessionID != "sess-1" || ev.Operation != "update" || ev.ItemID != item {
		t.Errorf("identity = %+v", ev)
	}
	if ev.State != "complete" || ev.ErrorKind != "http_status" || ev.Error == "" {
		t.Errorf("outcome = %s/%s/%q", ev.State, ev.ErrorKind, ev.Error)
	}
	if ev.Timestamp != "2026-03-01T11:00:00Z" {
		t.Errorf("timestamp = %s", ev.Timestamp)
	}
	if ev.DurationMs != 1500 || ev.HTTPStatus != 422 || ev.CategoryID != 7 {
		t.Errorf("numbers = %+v", ev)
	}
}

func TestNewUploadCompletedEvent_Success(t *testing.T) {
	res := &session.Result{
		Meta:      types.SessionMeta{SessionID: "sess-2", Operation: types.OperationCreate},
		State:     types.StateComplete,
		ErrorKind: types.ErrorNone,
	}
	ev := NewUploadCompletedEvent(res, time.Now())
	if ev.ItemID != "" || ev.Error != "" {
		t.Errorf("create success event = %+v", ev)
	}
}

func TestBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	want := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}
	for attempt, w := range want {
		if got := Backoff(base, attempt); got != w {
			t.Errorf("Backoff(%d) = %s, want %s", attempt, got, w)
		}
	}
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep = %v, want context.Canceled", err)
	}
}

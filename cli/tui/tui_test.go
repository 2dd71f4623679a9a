package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pithecene-io/mpub/archive"
	"github.com/pithecene-io/mpub/session"
	"github.com/pithecene-io/mpub/types"
)

type captureSender struct{ msgs []tea.Msg }

func (c *captureSender) Send(msg tea.Msg) { c.msgs = append(c.msgs, msg) }

func update(t *testing.T, m UploadModel, msg tea.Msg) (UploadModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	um, ok := next.(UploadModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return um, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestUploadModel_Flow(t *testing.T) {
	m := NewUploadModel("Robot", 2, nil, nil)

	m, _ = update(t, m, StateMsg{From: types.StateIdle, To: types.StateUploading})
	if !strings.Contains(m.View(), "uploading") {
		t.Errorf("view should show state: %s", m.View())
	}

	m, _ = update(t, m, ProgressMsg{Sent: 512, Total: 2048})
	if got := m.percent(); got != 0.25 {
		t.Errorf("percent = %v, want 0.25", got)
	}
	if !strings.Contains(m.View(), "512 B / 2.0 KiB") {
		t.Errorf("view should show byte counts: %s", m.View())
	}

	res := &session.Result{
		State:        types.StateComplete,
		ErrorKind:    types.ErrorNone,
		Entries:      []archive.Entry{{Name: "robot.fst"}, {Name: "robot.fbx"}},
		ArchiveBytes: 4096,
	}
	m, cmd := update(t, m, DoneMsg{Result: res})
	if !isQuit(cmd) {
		t.Error("DoneMsg should quit")
	}
	if m.Result() != res || m.state != types.StateComplete {
		t.Errorf("result not recorded")
	}
	if !strings.Contains(m.View(), "Finished: none") {
		t.Errorf("view should show outcome: %s", m.View())
	}
}

func TestUploadModel_QuitCancels(t *testing.T) {
	var cancelled int
	m := NewUploadModel("Robot", 1, nil, func() { cancelled++ })

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if isQuit(cmd) {
		t.Error("quit key should wait for the session to finish")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cancelled != 1 {
		t.Errorf("cancel called %d times, want 1", cancelled)
	}
	if !strings.Contains(m.View(), "Cancelling") {
		t.Errorf("view should show cancelling: %s", m.View())
	}
}

func TestUploadModel_StartError(t *testing.T) {
	m := NewUploadModel("Robot", 1, func() error { return errors.New("already started") }, nil)

	msg := m.Init()()
	m, cmd := update(t, m, msg)
	if !isQuit(cmd) {
		t.Error("start error should quit")
	}
	if m.Err() == nil || !strings.Contains(m.View(), "already started") {
		t.Errorf("start error not shown: %s", m.View())
	}
}

func TestUploadModel_FailedResult(t *testing.T) {
	m := NewUploadModel("Robot", 1, nil, nil)
	m, _ = update(t, m, DoneMsg{Result: &session.Result{
		State:     types.StateComplete,
		ErrorKind: types.ErrorNetwork,
		Err:       errors.New("upload: network: connection reset"),
	}})
	if !strings.Contains(m.View(), "connection reset") {
		t.Errorf("view should show error: %s", m.View())
	}
}

func TestObserver_Forwards(t *testing.T) {
	c := &captureSender{}
	o := NewObserver(c)

	o.StateChanged(types.StateIdle, types.StateFetchingCategory)
	o.UploadProgress(10, 20)
	o.Completed(&session.Result{})

	if len(c.msgs) != 3 {
		t.Fatalf("got %d messages", len(c.msgs))
	}
	if sm, ok := c.msgs[0].(StateMsg); !ok || sm.To != types.StateFetchingCategory {
		t.Errorf("msg[0] = %#v", c.msgs[0])
	}
	if pm, ok := c.msgs[1].(ProgressMsg); !ok || pm.Sent != 10 || pm.Total != 20 {
		t.Errorf("msg[1] = %#v", c.msgs[1])
	}
	if _, ok := c.msgs[2].(DoneMsg); !ok {
		t.Errorf("msg[2] = %#v", c.msgs[2])
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:               "0 B",
		1023:            "1023 B",
		1024:            "1.0 KiB",
		5 * 1024 * 1024: "5.0 MiB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

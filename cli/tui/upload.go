package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/mpub/session"
	"github.com/pithecene-io/mpub/types"
)

// StateMsg reports a session state change.
type StateMsg struct {
	From, To types.State
}

// ProgressMsg reports upload progress.
type ProgressMsg struct {
	Sent, Total int64
}

// DoneMsg carries the session result.
type DoneMsg struct {
	Result *session.Result
}

// startErrMsg reports that the session could not be started.
type startErrMsg struct{ err error }

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "cancel"),
	),
}

// UploadModel is a Bubble Tea model that follows one upload session.
type UploadModel struct {
	title  string
	files  int
	start  func() error
	cancel func()

	state      types.State
	sent       int64
	total      int64
	bar        progress.Model
	result     *session.Result
	err        error
	cancelling bool
}

// NewUploadModel creates the model. start is invoked from Init and should
// send the session; cancel is invoked when the user quits.
func NewUploadModel(title string, files int, start func() error, cancel func()) UploadModel {
	return UploadModel{
		title:  title,
		files:  files,
		start:  start,
		cancel: cancel,
		state:  types.StateIdle,
		bar:    progress.New(progress.WithGradient(string(primaryColor), string(successColor))),
	}
}

// Result returns the session result once DoneMsg has been received.
func (m UploadModel) Result() *session.Result { return m.result }

// Err returns the start error, if any.
func (m UploadModel) Err() error { return m.err }

// Init implements tea.Model.
func (m UploadModel) Init() tea.Cmd {
	if m.start == nil {
		return nil
	}
	start := m.start
	return func() tea.Msg {
		if err := start(); err != nil {
			return startErrMsg{err: err}
		}
		return nil
	}
}

// Update implements tea.Model.
func (m UploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = max(msg.Width-8, 10)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) && !m.cancelling {
			m.cancelling = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case StateMsg:
		m.state = msg.To
		return m, nil

	case ProgressMsg:
		m.sent, m.total = msg.Sent, msg.Total
		return m, nil

	case DoneMsg:
		m.result = msg.Result
		m.state = types.StateComplete
		return m, tea.Quit

	case startErrMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

func (m UploadModel) percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.sent) / float64(m.total)
}

// View implements tea.Model.
func (m UploadModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Publishing " + m.title))
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s%s\n", LabelStyle.Render("State"), StateStyle(m.state).Render(string(m.state)))
	fmt.Fprintf(&b, "%s%s\n", LabelStyle.Render("Files"), ValueStyle.Render(fmt.Sprintf("%d", m.files)))
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(m.percent()))
	fmt.Fprintf(&b, "\n%s\n", HelpStyle.UnsetMarginTop().Render(fmt.Sprintf("%s / %s", formatBytes(m.sent), formatBytes(m.total))))

	switch {
	case m.err != nil:
		b.WriteString("\n" + ErrorStyle.Render("Error: "+m.err.Error()))
	case m.result != nil:
		b.WriteString("\n" + m.renderResult())
	case m.cancelling:
		b.WriteString("\n" + WarningStyle.Render("Cancelling..."))
	default:
		b.WriteString(HelpStyle.Render("Press q or Ctrl+C to cancel"))
	}
	return b.String() + "\n"
}

func (m UploadModel) renderResult() string {
	r := m.result
	boxes := []string{
		renderStatBox("Archived", int64(len(r.Entries)), highlightColor),
		renderStatBox("Skipped", int64(len(r.Skipped)), warningColor),
		renderStatBox("KiB", r.ArchiveBytes/1024, successColor),
	}

	status := KindStyle(r.ErrorKind).Render(fmt.Sprintf("Finished: %s", r.ErrorKind))
	if r.Err != nil {
		status += "\n" + ErrorStyle.Render(r.Err.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, boxes...),
		status,
	)
}

func renderStatBox(label string, value int64, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)
	valueStr := StatValueStyle.Foreground(color).Render(fmt.Sprintf("%d", value))
	labelStr := StatLabelStyle.Render(label)
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr))
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Sender delivers messages to a running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// Observer forwards session notifications to a Bubble Tea program.
type Observer struct {
	p Sender
}

// NewObserver returns a session observer that feeds p.
func NewObserver(p Sender) *Observer {
	return &Observer{p: p}
}

// StateChanged implements session.Observer.
func (o *Observer) StateChanged(from, to types.State) {
	o.p.Send(StateMsg{From: from, To: to})
}

// UploadProgress implements session.Observer.
func (o *Observer) UploadProgress(sent, total int64) {
	o.p.Send(ProgressMsg{Sent: sent, Total: total})
}

// Completed implements session.Observer.
func (o *Observer) Completed(result *session.Result) {
	o.p.Send(DoneMsg{Result: result})
}

var _ session.Observer = (*Observer)(nil)

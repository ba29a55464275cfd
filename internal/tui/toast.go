package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/posdash/internal/notify"
	"github.com/muesli/reflow/wordwrap"
)

const (
	toastTTL  = 4 * time.Second
	maxToasts = 3
)

type toast struct {
	id     int
	notice notify.Notice
}

// toastExpiredMsg removes the toast with id.
type toastExpiredMsg struct{ id int }

// ToastModel shows notifications drained from the shared queue.
type ToastModel struct {
	queue  *notify.Queue
	toasts []toast
	nextID int
	ttl    time.Duration
}

// NewToastModel creates a toast stack reading from q.
func NewToastModel(q *notify.Queue) ToastModel {
	return ToastModel{queue: q, ttl: toastTTL}
}

// Collect moves pending notices onto the stack and schedules their expiry.
func (m ToastModel) Collect() (ToastModel, tea.Cmd) {
	if m.queue == nil {
		return m, nil
	}
	notices := m.queue.Drain()
	if len(notices) == 0 {
		return m, nil
	}

	var cmds []tea.Cmd
	for _, n := range notices {
		m.nextID++
		id := m.nextID
		m.toasts = append(m.toasts, toast{id: id, notice: n})
		cmds = append(cmds, tea.Tick(m.ttl, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} }))
	}
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
	return m, tea.Batch(cmds...)
}

// Update handles expiry.
func (m ToastModel) Update(msg tea.Msg) ToastModel {
	if msg, ok := msg.(toastExpiredMsg); ok {
		kept := m.toasts[:0:0]
		for _, t := range m.toasts {
			if t.id != msg.id {
				kept = append(kept, t)
			}
		}
		m.toasts = kept
	}
	return m
}

// Len is the number of visible toasts.
func (m ToastModel) Len() int { return len(m.toasts) }

// View renders the stack, newest last.
func (m ToastModel) View(width int) string {
	if len(m.toasts) == 0 {
		return ""
	}
	if width < 20 {
		width = 20
	}
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		style, icon := SuccessStyle, "✓ "
		if t.notice.Level == notify.LevelError {
			style, icon = ErrorStyle, "✗ "
		}
		lines = append(lines, style.Render(wordwrap.String(icon+t.notice.Msg, width-2)))
	}
	return strings.Join(lines, "\n")
}

package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/jobfit/internal/model"
)

type viewMsg struct{ view model.View }

type progressMsg struct {
	start bool
	op    model.ViewState
	opID  string
}

// Bridge forwards session events into a running program. It is handed to the
// session as its Progress before the program exists; events that arrive
// before Attach are dropped.
type Bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewBridge returns an unattached Bridge.
func NewBridge() *Bridge { return &Bridge{} }

// Attach routes subsequent events to send.
func (b *Bridge) Attach(send func(tea.Msg)) {
	b.mu.Lock()
	b.send = send
	b.mu.Unlock()
}

func (b *Bridge) emit(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

// View forwards a published view. It has the shape Session.Subscribe expects.
func (b *Bridge) View(v model.View) { b.emit(viewMsg{view: v}) }

func (b *Bridge) Start(op model.ViewState, opID string) {
	b.emit(progressMsg{start: true, op: op, opID: opID})
}

func (b *Bridge) Stop(opID string) {
	b.emit(progressMsg{opID: opID})
}

package state

import "github.com/amishk599/jobfit/internal/model"

// Machine tracks the screen currently shown and a back history of the screens
// before it. A screen is identified by its view state and job id together, so
// histories of different jobs never collapse into each other.
//
// Machine is not safe for concurrent use; the session serializes access.
type Machine struct {
	current model.NavigationEntry
	history []model.NavigationEntry
}

// NewMachine returns a machine showing the instructions screen with no history.
func NewMachine() *Machine {
	return &Machine{current: model.NavigationEntry{State: model.ViewInstructions}}
}

// Set moves to (state, jobID). Setting the current screen again is a no-op.
// Unless isBack is true, the screen being replaced is pushed onto the history.
func (m *Machine) Set(state model.ViewState, isBack bool, jobID string) {
	next := model.NavigationEntry{State: state, JobID: jobID}
	if next == m.current {
		return
	}
	if !isBack {
		m.history = append(m.history, m.current)
	}
	m.current = next
}

// Back pops the most recent history entry and makes it current. It returns
// false when there is no history; the current screen is then left unchanged.
func (m *Machine) Back() (model.NavigationEntry, bool) {
	if len(m.history) == 0 {
		return model.NavigationEntry{}, false
	}
	prev := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	m.current = prev
	return prev, true
}

func (m *Machine) Value() model.ViewState { return m.current.State }

func (m *Machine) CurrentJobID() string { return m.current.JobID }

func (m *Machine) Current() model.NavigationEntry { return m.current }

// Depth returns the number of entries available to Back.
func (m *Machine) Depth() int { return len(m.history) }

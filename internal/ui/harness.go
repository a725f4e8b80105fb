package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// defaultCmdDeadline bounds how long the harness waits for a command. Timer
// based commands (notice expiry, cursor blink, spinner ticks) and blocking
// transport reads outlive it and are dropped.
const defaultCmdDeadline = 20 * time.Millisecond

// Harness drives the UI model programmatically for integration tests.
type Harness struct {
	model    *Model
	deadline time.Duration
}

// NewHarness creates a harness for the provided model.
func NewHarness(model *Model) *Harness {
	return &Harness{model: model, deadline: defaultCmdDeadline}
}

// Start runs Init, which connects the session manager, without executing the
// commands it returns.
func (h *Harness) Start() {
	if h.model == nil {
		return
	}
	_ = h.model.Init()
}

// Send routes a message through the model and executes any returned commands
// that complete within the harness deadline.
func (h *Harness) Send(msg tea.Msg) {
	if h.model == nil {
		return
	}
	h.dispatch(msg)
}

func (h *Harness) dispatch(msg tea.Msg) {
	mdl, cmd := h.model.Update(msg)
	if updated, ok := mdl.(*Model); ok {
		h.model = updated
	}
	h.processCmd(cmd)
}

func (h *Harness) processCmd(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg, ok := h.run(cmd)
	if !ok || msg == nil {
		return
	}
	if batch, isBatch := msg.(tea.BatchMsg); isBatch {
		for _, sub := range batch {
			h.processCmd(sub)
		}
		return
	}
	h.dispatch(msg)
}

func (h *Harness) run(cmd tea.Cmd) (tea.Msg, bool) {
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		return msg, true
	case <-time.After(h.deadline):
		return nil, false
	}
}

// View returns the current view string.
func (h *Harness) View() string {
	if h.model == nil {
		return ""
	}
	return h.model.View()
}

// Model exposes the underlying model.
func (h *Harness) Model() *Model {
	return h.model
}

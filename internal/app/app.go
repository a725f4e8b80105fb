package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/atomicstack/camview/internal/backend"
	"github.com/atomicstack/camview/internal/logging/events"
	"github.com/atomicstack/camview/internal/session"
	"github.com/atomicstack/camview/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// Config describes user-provided application options.
type Config struct {
	Endpoint       string
	Namespace      string
	NoticeTimeout  time.Duration
	NoticeCapacity int
	Width          int
	Height         int
	ShowFooter     bool
}

// runtime bundles the pieces Run wires together.
type runtime struct {
	watcher *backend.Watcher
	conn    *session.Manager
	model   *ui.Model
}

func build(cfg Config) (*runtime, error) {
	endpoint, err := backend.ResolveEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("resolve endpoint: %w", err)
	}
	watcher := backend.NewWatcher(backend.Config{
		Endpoint:  endpoint,
		Namespace: cfg.Namespace,
	})
	conn := session.NewManager(watcher)
	model := ui.NewModel(conn, watcher, ui.Options{
		Endpoint:       cfg.Endpoint,
		Width:          cfg.Width,
		Height:         cfg.Height,
		ShowFooter:     cfg.ShowFooter,
		NoticeTimeout:  cfg.NoticeTimeout,
		NoticeCapacity: cfg.NoticeCapacity,
	})
	return &runtime{watcher: watcher, conn: conn, model: model}, nil
}

// teardown stops the transport and waits for its goroutines to exit.
func (r *runtime) teardown() {
	r.conn.Teardown()
	r.watcher.Wait()
}

// Run bootstraps and executes the Bubble Tea program. The hub connection is
// opened by the model's Init and closed when the program exits.
func Run(cfg Config) error {
	rt, err := build(cfg)
	if err != nil {
		return err
	}
	defer rt.teardown()

	program := tea.NewProgram(rt.model, tea.WithAltScreen())
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		events.App.Stop("killed")
		return nil
	}
	if err != nil {
		events.App.Stop(err.Error())
	}
	return err
}

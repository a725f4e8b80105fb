package ui

import (
	"reflect"
	"time"

	"github.com/atomicstack/camview/internal/backend"
	"github.com/atomicstack/camview/internal/data/dispatcher"
	"github.com/atomicstack/camview/internal/session"
	"github.com/atomicstack/camview/internal/state"
	"github.com/atomicstack/camview/internal/theme"
	uistate "github.com/atomicstack/camview/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type level = uistate.Level

// Focus selects which widget receives key presses.
type Focus int

const (
	FocusPicker Focus = iota
	FocusCompose
)

func (f Focus) String() string {
	if f == FocusCompose {
		return "compose"
	}
	return "picker"
}

const pickerLevelID = "sources"

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// EventSource streams transport events to the model.
type EventSource interface {
	Events() <-chan backend.Event
}

// Options carries the presentation settings for NewModel.
type Options struct {
	Endpoint   string
	Width      int
	Height     int
	ShowFooter bool
	// NoticeTimeout is how long a notice stays queued. Zero or less keeps
	// notices until they are dismissed.
	NoticeTimeout  time.Duration
	NoticeCapacity int
}

// Model implements the Bubble Tea model for the camera hub client.
type Model struct {
	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool
	endpoint    string

	noticeTimeout time.Duration

	conn       *session.Manager
	events     EventSource
	dispatcher *dispatcher.Dispatcher
	sender     *session.Sender

	sources   *state.Registry
	selection state.Selection
	notices   *state.Notices

	picker            *level
	focus             Focus
	compose           textinput.Model
	spinner           spinner.Model
	filterCursor      cursor.Model
	filterCursorDirty bool
	everConnected     bool
	errMsg            string

	handlers map[reflect.Type]msgHandler
}

// NewModel wires the registry, notice queue, dispatcher and sender around
// conn. It does not connect; Init does.
func NewModel(conn *session.Manager, events EventSource, opts Options) *Model {
	sources := state.NewRegistry()
	notices := state.NewNotices(opts.NoticeCapacity)
	m := &Model{
		showFooter:    opts.ShowFooter,
		endpoint:      opts.Endpoint,
		noticeTimeout: opts.NoticeTimeout,
		conn:          conn,
		events:        events,
		dispatcher:    dispatcher.New(conn, sources, notices),
		sender:        session.NewSender(conn, notices),
		sources:       sources,
		notices:       notices,
		picker:        uistate.NewLevel(pickerLevelID, "Sources", nil),
		focus:         FocusPicker,
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}

	c := cursor.New()
	if styles.Cursor != nil {
		c.Style = styles.Cursor.Copy()
	}
	if styles.Filter != nil {
		c.TextStyle = styles.Filter.Copy()
	}
	c.SetChar(" ")
	m.filterCursor = c

	m.compose = newComposeInput()
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	if styles.Spinner != nil {
		m.spinner.Style = styles.Spinner.Copy()
	}
	m.registerHandlers()
	return m
}

// Init connects to the hub and starts consuming transport events.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if err := m.conn.Connect(); err != nil {
		m.setError(err)
	}
	if m.events != nil {
		cmds = append(cmds, waitForBackendEvent(m.events))
	}
	if cmd := m.filterCursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if cmd := m.updateFilterCursorModel(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	} else if m.focus == FocusCompose {
		// cursor blink and paste messages belong to the compose input
		var cmd tea.Cmd
		m.compose, cmd = m.compose.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(spinner.TickMsg{}):   m.handleSpinnerTickMsg,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
		reflect.TypeOf(noticeExpiredMsg{}):  m.handleNoticeExpiredMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.filterCursorDirty {
		m.filterCursorDirty = false
		m.filterCursor.Blink = false
		if cmd := m.filterCursor.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleSpinnerTickMsg(msg tea.Msg) tea.Cmd {
	// the spinner stops once the first connection succeeds
	if m.everConnected {
		return nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return cmd
}

func (m *Model) setError(err error) {
	if err == nil {
		m.errMsg = ""
		return
	}
	m.errMsg = err.Error()
}

// Sources exposes the registry for inspection.
func (m *Model) Sources() *state.Registry {
	return m.sources
}

// Selection exposes the sticky selection.
func (m *Model) Selection() *state.Selection {
	return &m.selection
}

// Notices exposes the notice queue.
func (m *Model) Notices() *state.Notices {
	return m.notices
}

// Focus reports which widget currently receives keys.
func (m *Model) Focus() Focus {
	return m.focus
}

package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ganot/laptrack/internal/domain/identity"
	"github.com/ganot/laptrack/internal/domain/session"
	"github.com/ganot/laptrack/internal/domain/stopwatch"
)

// Ports are the minimal interfaces this UI requires. All business
// logic lives behind them.

type TimerPort interface {
	Start()
	Stop()
	Lap()
	Reset(ctx context.Context)
	SetTitle(title string)
	State() stopwatch.Snapshot
}

type HistoryPort interface {
	Sessions() []session.Session
	Get(id int64) (session.Session, error)
	Clear(ctx context.Context) error
}

type IdentityPort interface {
	SignUp(ctx context.Context, email, password string) (*identity.Account, error)
	SignIn(ctx context.Context, email, password string) (*identity.Account, error)
	SignOut()
	CurrentEmail() string
}

// TickMsg redraws the running timer. The engine's refresh loop feeds
// these through Program.Send.
type TickMsg struct{}

type authResultMsg struct{ err error }

type screen int

const (
	screenTimer screen = iota
	screenHistory
	screenDetail
	screenAuth
)

type authMode int

const (
	modeSignIn authMode = iota
	modeSignUp
)

type keyMap struct {
	StartStop key.Binding
	Lap       key.Binding
	Reset     key.Binding
	Title     key.Binding
	History   key.Binding
	Account   key.Binding
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Clear     key.Binding
	Back      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		StartStop: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/stop")),
		Lap:       key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "lap")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Title:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "title")),
		History:   key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
		Account:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "account")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear history")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.StartStop, k.Lap, k.Reset, k.History, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.StartStop, k.Lap, k.Reset, k.Title},
		{k.History, k.Account, k.Clear},
		{k.Help, k.Back, k.Quit},
	}
}

// Model is the root Bubble Tea model: one screen at a time, with the
// timer screen as home.
type Model struct {
	timer    TimerPort
	history  HistoryPort
	identity IdentityPort

	screen screen
	keys   keyMap
	help   help.Model

	// timer screen
	editingTitle bool
	titleInput   textinput.Model

	// history screens
	cursor   int
	sessions []session.Session
	detail   session.Session

	// auth screen
	mode      authMode
	email     textinput.Model
	password  textinput.Model
	authFocus int
	authBusy  bool

	status string
	width  int
	height int
}

func New(timer TimerPort, history HistoryPort, identity IdentityPort) Model {
	title := textinput.New()
	title.Placeholder = "session title"
	title.CharLimit = 80

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 120

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 120

	return Model{
		timer:      timer,
		history:    history,
		identity:   identity,
		keys:       defaultKeys(),
		help:       help.New(),
		titleInput: title,
		email:      email,
		password:   password,
		status:     "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m, nil

	case authResultMsg:
		m.authBusy = false
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.status = "signed in as " + m.identity.CurrentEmail()
		m.screen = screenTimer
		m.email.SetValue("")
		m.password.SetValue("")
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && !m.typing() {
			return m, tea.Quit
		}
		switch m.screen {
		case screenTimer:
			return m.updateTimer(msg)
		case screenHistory:
			return m.updateHistory(msg)
		case screenDetail:
			return m.updateDetail(msg)
		case screenAuth:
			return m.updateAuth(msg)
		}
	}
	return m, nil
}

// typing reports whether a text input currently owns the keyboard.
func (m Model) typing() bool {
	return m.editingTitle || m.screen == screenAuth
}

func (m Model) updateTimer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editingTitle {
		switch msg.Type {
		case tea.KeyEnter:
			m.timer.SetTitle(m.titleInput.Value())
			m.editingTitle = false
			m.titleInput.Blur()
			m.status = "title set"
			return m, nil
		case tea.KeyEsc:
			m.editingTitle = false
			m.titleInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.titleInput, cmd = m.titleInput.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.StartStop):
		if m.timer.State().Running {
			m.timer.Stop()
			m.status = "stopped"
		} else {
			m.timer.Start()
			m.status = "running"
		}
	case key.Matches(msg, m.keys.Lap):
		m.timer.Lap()
	case key.Matches(msg, m.keys.Reset):
		m.timer.Reset(context.Background())
		m.status = "reset"
	case key.Matches(msg, m.keys.Title):
		m.editingTitle = true
		m.titleInput.SetValue(m.timer.State().Title)
		m.titleInput.Focus()
	case key.Matches(msg, m.keys.History):
		m.sessions = m.history.Sessions()
		m.cursor = 0
		m.screen = screenHistory
	case key.Matches(msg, m.keys.Account):
		m.screen = screenAuth
		m.authFocus = 0
		m.email.Focus()
		m.password.Blur()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = screenTimer
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.sessions)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Enter):
		if m.cursor < len(m.sessions) {
			sess, err := m.history.Get(m.sessions[m.cursor].ID)
			if err == nil {
				m.detail = sess
				m.screen = screenDetail
			}
		}
	case key.Matches(msg, m.keys.Clear):
		if err := m.history.Clear(context.Background()); err != nil {
			m.status = err.Error()
		} else {
			m.sessions = nil
			m.cursor = 0
			m.status = "history cleared"
		}
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.screen = screenHistory
	}
	return m, nil
}

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.authBusy {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.screen = screenTimer
		return m, nil
	case tea.KeyTab, tea.KeyShiftTab:
		if m.authFocus == 0 {
			m.authFocus = 1
			m.email.Blur()
			m.password.Focus()
		} else {
			m.authFocus = 0
			m.password.Blur()
			m.email.Focus()
		}
		return m, nil
	case tea.KeyCtrlN:
		if m.mode == modeSignIn {
			m.mode = modeSignUp
		} else {
			m.mode = modeSignIn
		}
		return m, nil
	case tea.KeyCtrlO:
		m.identity.SignOut()
		m.status = "signed out"
		m.screen = screenTimer
		return m, nil
	case tea.KeyEnter:
		email, password := m.email.Value(), m.password.Value()
		mode := m.mode
		m.authBusy = true
		m.status = "working"
		return m, func() tea.Msg {
			ctx := context.Background()
			if mode == modeSignUp {
				_, err := m.identity.SignUp(ctx, email, password)
				return authResultMsg{err: err}
			}
			_, err := m.identity.SignIn(ctx, email, password)
			return authResultMsg{err: err}
		}
	}

	var cmd tea.Cmd
	if m.authFocus == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

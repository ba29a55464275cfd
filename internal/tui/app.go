package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/posdash/internal/auth"
	"github.com/h0rv/posdash/internal/config"
	"github.com/h0rv/posdash/internal/gateway"
	"github.com/h0rv/posdash/internal/notify"
	"go.uber.org/zap"
)

// Deps are the shared services every screen is built from.
type Deps struct {
	Ctx      context.Context
	Client   *gateway.Client
	Config   *config.Config
	Sessions *auth.SessionStore
	// Tokens resolves a bearer token at startup.
	Tokens  func(ctx context.Context) (string, error)
	Notices *notify.Queue
	Log     *zap.Logger
	Now     func() time.Time
	// ExportDir receives exported invoices.
	ExportDir string
}

func (d *Deps) ctx() context.Context {
	if d.Ctx == nil {
		return context.Background()
	}
	return d.Ctx
}

func (d *Deps) log() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

func (d *Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// requirement is the access rule of screen.
func requirement(screen string) auth.Requirement {
	if screen == ScreenLogin {
		return auth.GuestOnly
	}
	return auth.Private
}

// closer is implemented by screens holding in-flight work.
type closer interface{ Close() }

// resumer is implemented by screens that reload when returned to.
type resumer interface{ Resume() tea.Cmd }

// frame is a screen kept on the back stack.
type frame struct {
	screen string
	model  tea.Model
}

// AppModel is the root Bubble Tea model that manages screen transitions.
// Every navigation passes through auth.Guard.
type AppModel struct {
	deps *Deps

	state   auth.State
	who     string
	pending NavigateMsg

	screen  string
	current tea.Model
	stack   []frame

	toasts  ToastModel
	spinner spinner.Model
	err     error
	width   int
	height  int
}

// NewAppModel creates the app. start is the first screen shown once the
// session is resolved.
func NewAppModel(deps *Deps, start string) AppModel {
	if start == "" {
		start = ScreenMenu
	}
	if deps.Notices == nil {
		deps.Notices = notify.NewQueue()
	}
	return AppModel{
		deps:    deps,
		state:   auth.Loading(),
		pending: NavigateMsg{Screen: start},
		toasts:  NewToastModel(deps.Notices),
		spinner: newEditorSpinner(),
	}
}

// Init resolves the session.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.resolve())
}

func (m AppModel) resolve() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		if d.Tokens == nil {
			return authResolvedMsg{state: auth.Unauthenticated()}
		}
		token, err := d.Tokens(d.ctx())
		if err != nil {
			return authResolvedMsg{state: auth.Unauthenticated(), err: err}
		}
		return authResolvedMsg{state: auth.FromToken(token, d.now())}
	}
}

// State is the current session state.
func (m AppModel) State() auth.State { return m.state }

// Screen is the key of the screen shown.
func (m AppModel) Screen() string { return m.screen }

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	var collect tea.Cmd
	next.toasts, collect = next.toasts.Collect()
	return next, tea.Batch(cmd, collect)
}

func (m AppModel) update(msg tea.Msg) (AppModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.closeAll()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case spinner.TickMsg:
		if m.current == nil {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case toastExpiredMsg:
		m.toasts = m.toasts.Update(msg)
		return m, nil

	case authResolvedMsg:
		if msg.err != nil {
			m.deps.log().Debug("no stored session", zap.Error(msg.err))
		}
		m.setState(msg.state)
		return m.navigate(m.pending)

	case SignedInMsg:
		m.setState(auth.FromToken(msg.Session.JWT, m.deps.now()))
		if u := msg.Session.User; u.Username != "" {
			m.who = u.Username
		}
		target := m.pending
		if target.Screen == "" || target.Screen == ScreenLogin {
			target = NavigateMsg{Screen: ScreenMenu}
		}
		m.closeAll()
		return m.navigate(target)

	case SignOutMsg:
		if m.deps.Sessions != nil {
			if err := m.deps.Sessions.Clear(); err != nil {
				m.deps.log().Warn("failed to clear session", zap.Error(err))
			}
		}
		m.setState(auth.Unauthenticated())
		m.who = ""
		m.closeAll()
		m.pending = NavigateMsg{Screen: ScreenMenu}
		return m.navigate(NavigateMsg{Screen: ScreenLogin})

	case NavigateMsg:
		return m.navigate(msg)

	case BackMsg:
		return m.back()

	case QuitMsg:
		m.closeAll()
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	if m.current == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.current, cmd = m.current.Update(msg)
	return m, cmd
}

func (m *AppModel) setState(s auth.State) {
	m.state = s
	if m.deps.Client != nil {
		m.deps.Client.SetToken(s.Token)
	}
	if s.Identity.Email != "" {
		m.who = s.Identity.Email
	}
}

// navigate shows nav.Screen if the guard allows it, otherwise remembers it
// and redirects.
func (m AppModel) navigate(nav NavigateMsg) (AppModel, tea.Cmd) {
	switch auth.Guard(m.state, requirement(nav.Screen)) {
	case auth.Wait:
		m.pending = nav
		return m, nil
	case auth.Redirect:
		if requirement(nav.Screen) == auth.Private {
			m.pending = nav
			m.closeAll()
			nav = NavigateMsg{Screen: ScreenLogin}
		} else {
			nav = NavigateMsg{Screen: ScreenMenu}
		}
	}

	model, err := m.build(nav)
	if err != nil {
		m.deps.Notices.Error(err.Error())
		return m, nil
	}
	m.err = nil

	switch {
	case m.current == nil:
	case nav.Replace || nav.Screen == ScreenLogin || nav.Screen == ScreenMenu:
		closeModel(m.current)
	default:
		m.stack = append(m.stack, frame{screen: m.screen, model: m.current})
	}
	if nav.Screen == ScreenMenu || nav.Screen == ScreenLogin {
		m.closeStack()
	}

	m.screen = nav.Screen
	m.current = model
	return m, model.Init()
}

// back returns to the previous screen, or the menu when there is none.
func (m AppModel) back() (AppModel, tea.Cmd) {
	if len(m.stack) == 0 {
		if m.screen == ScreenMenu || m.screen == ScreenLogin {
			m.closeAll()
			return m, tea.Quit
		}
		return m.navigate(NavigateMsg{Screen: ScreenMenu})
	}
	closeModel(m.current)
	top := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	m.screen, m.current = top.screen, top.model

	if r, ok := m.current.(resumer); ok {
		return m, r.Resume()
	}
	return m, tea.WindowSize()
}

// build creates the model for nav.
func (m AppModel) build(nav NavigateMsg) (tea.Model, error) {
	d := m.deps
	switch nav.Screen {
	case ScreenLogin:
		return NewLoginModel(d), nil
	case ScreenMenu:
		return NewMenuModel(DefaultMenu, m.who), nil
	case ScreenDashboard:
		return NewDashboardModel(d), nil
	case ScreenNewSale:
		return NewSaleModel(d), nil
	case ScreenPOS:
		return NewPOSModel(d), nil
	case ScreenInvoice:
		return NewInvoiceModel(d, nav.Ref), nil
	case ScreenProductForm:
		return NewProductEditor(d, nav.Product), nil
	case ScreenCategoryForm:
		return NewCategoryEditor(d, nav.Category), nil
	}
	if model, ok := newListScreen(d, nav.Screen); ok {
		return model, nil
	}
	return nil, fmt.Errorf("unknown screen %q", nav.Screen)
}

func closeModel(model tea.Model) {
	if c, ok := model.(closer); ok {
		c.Close()
	}
}

func (m *AppModel) closeStack() {
	for _, f := range m.stack {
		closeModel(f.model)
	}
	m.stack = nil
}

func (m *AppModel) closeAll() {
	m.closeStack()
	if m.current != nil {
		closeModel(m.current)
		m.current = nil
	}
}

// View renders the current screen with toasts underneath.
func (m AppModel) View() string {
	var body string
	switch {
	case m.err != nil:
		body = ErrorStyle.Render(fmt.Sprintf("Error: %v\n\nPress Ctrl+C to quit", m.err))
	case m.current != nil:
		body = m.current.View()
	default:
		body = m.spinner.View() + " Checking session...\n\nPress Ctrl+C to quit"
	}
	if m.toasts.Len() == 0 {
		return body
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.toasts.View(m.width))
}

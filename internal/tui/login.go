package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/posdash/internal/auth"
	"github.com/h0rv/posdash/internal/domain"
	"github.com/h0rv/posdash/internal/notify"
	"go.uber.org/zap"
)

type loginDoneMsg struct {
	session *domain.Session
	err     error
}

// LoginModel asks for credentials and stores the resulting session.
type LoginModel struct {
	ctx      context.Context
	login    auth.LoginFunc
	sessions *auth.SessionStore
	notices  notify.Notifier
	log      *zap.Logger

	fields  fieldSet
	spinner spinner.Model
	busy    bool
	err     string
}

// NewLoginModel creates the login form, prefilled with the configured email.
func NewLoginModel(d *Deps) LoginModel {
	fs := newFieldSet(
		newField("email", "Email", "you@example.com"),
		newField("password", "Password", ""),
	)
	fs.mask("password")
	if d.Config.Auth.Email != "" {
		fs.set("email", d.Config.Auth.Email)
		fs.move(1)
	}
	return LoginModel{
		ctx:      d.ctx(),
		login:    d.Client.Login,
		sessions: d.Sessions,
		notices:  d.Notices,
		log:      d.log().Named("login"),
		fields:   fs,
		spinner:  newEditorSpinner(),
	}
}

// Init initializes the model.
func (m LoginModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages.
func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = domain.Detail(msg.err)
			m.notices.Error("Login failed: " + m.err)
			return m, nil
		}
		if m.sessions != nil {
			if err := m.sessions.Save(*msg.session); err != nil {
				m.log.Warn("failed to persist session", zap.Error(err))
			}
		}
		session := *msg.session
		return m, func() tea.Msg { return SignedInMsg{Session: session} }

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return QuitMsg{} }
		case "tab", "down", "shift+tab", "up":
			cmd := m.fields.move(1)
			return m, cmd
		case "enter":
			if m.fields.focused() == "email" {
				cmd := m.fields.move(1)
				return m, cmd
			}
			return m.submit()
		}
		cmd := m.fields.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m LoginModel) submit() (tea.Model, tea.Cmd) {
	creds := domain.Credentials{Identifier: m.fields.get("email"), Password: m.fields.get("password")}
	fe := domain.FieldErrors{}
	if creds.Identifier == "" {
		fe.Add("email", "Email is required")
	}
	if creds.Password == "" {
		fe.Add("password", "Password is required")
	}
	if len(fe) > 0 {
		m.fields.setErrors(fe)
		return m, nil
	}
	m.fields.clearErrors()
	m.busy = true
	m.err = ""

	ctx, login := m.ctx, m.login
	return m, func() tea.Msg {
		s, err := login(ctx, creds)
		return loginDoneMsg{session: s, err: err}
	}
}

// View renders the form.
func (m LoginModel) View() string {
	sections := []string{
		TitleStyle.Render("Sign in"),
		m.fields.view(60),
	}
	switch {
	case m.busy:
		sections = append(sections, m.spinner.View()+" Signing in...")
	case m.err != "":
		sections = append(sections, ErrorStyle.Render(m.err))
	}
	sections = append(sections, HelpStyle.Render("enter: next/sign in  tab: switch field  esc: quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

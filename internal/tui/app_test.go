package tui

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-jwt/jwt/v5"
	"github.com/h0rv/posdash/internal/auth"
	"github.com/h0rv/posdash/internal/config"
	"github.com/h0rv/posdash/internal/domain"
	"github.com/h0rv/posdash/internal/gateway"
	"github.com/h0rv/posdash/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{BaseURL: "http://127.0.0.1:1", DashboardURL: "http://127.0.0.1:2"},
		UI: config.UIConfig{
			PageSizes:       []int{10, 25, 50},
			DefaultPageSize: 10,
			SearchDebounce:  10 * time.Millisecond,
		},
		Pricing: config.PricingConfig{
			Sale: config.PolicyConfig{DiscountMode: "percent", Discount: 10, TaxRate: 7, TaxBase: "subtotal"},
			POS:  config.PolicyConfig{DiscountMode: "fixed", Discount: 5, TaxRate: 10, TaxBase: "net", RoundWhole: true},
		},
	}
}

func testToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    7,
		"email": "cashier@example.com",
		"exp":   exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func newTestDeps(t *testing.T, tokens func(context.Context) (string, error)) *Deps {
	t.Helper()
	cfg := testConfig()
	return &Deps{
		Ctx:       context.Background(),
		Client:    gateway.New(cfg.API.BaseURL),
		Config:    cfg,
		Sessions:  auth.NewSessionStore(filepath.Join(t.TempDir(), "session.json")),
		Tokens:    tokens,
		Notices:   notify.NewQueue(),
		Now:       func() time.Time { return testNow },
		ExportDir: t.TempDir(),
	}
}

func step(t *testing.T, m AppModel, msg tea.Msg) AppModel {
	t.Helper()
	next, _ := m.Update(msg)
	am, ok := next.(AppModel)
	require.True(t, ok)
	return am
}

// resolved runs the startup token resolution.
func resolved(t *testing.T, m AppModel) AppModel {
	t.Helper()
	return step(t, m, m.resolve()())
}

func signedInApp(t *testing.T, start string) AppModel {
	t.Helper()
	tok := testToken(t, testNow.Add(time.Hour))
	d := newTestDeps(t, func(context.Context) (string, error) { return tok, nil })
	return resolved(t, NewAppModel(d, start))
}

func TestAppModel_WaitsForSession(t *testing.T) {
	d := newTestDeps(t, func(context.Context) (string, error) { return "", auth.ErrNoToken })
	m := NewAppModel(d, "sales")

	m = step(t, m, NavigateMsg{Screen: "products"})
	assert.Equal(t, "", m.Screen())
	assert.Equal(t, "products", m.pending.Screen)
	assert.Contains(t, m.View(), "Checking session")
}

func TestAppModel_RedirectsToLoginWithoutToken(t *testing.T) {
	d := newTestDeps(t, func(context.Context) (string, error) { return "", errors.New("no token available") })
	m := resolved(t, NewAppModel(d, "sales"))

	assert.Equal(t, auth.StatusUnauthenticated, m.State().Status)
	assert.Equal(t, ScreenLogin, m.Screen())
	assert.Equal(t, "sales", m.pending.Screen)
	assert.IsType(t, LoginModel{}, m.current)
}

func TestAppModel_ExpiredTokenIsUnauthenticated(t *testing.T) {
	tok := testToken(t, testNow.Add(-time.Minute))
	d := newTestDeps(t, func(context.Context) (string, error) { return tok, nil })
	m := resolved(t, NewAppModel(d, ScreenDashboard))

	assert.Equal(t, ScreenLogin, m.Screen())
	assert.Empty(t, d.Client.Token())
}

func TestAppModel_AuthenticatedShowsStartScreen(t *testing.T) {
	m := signedInApp(t, "sales")

	assert.Equal(t, auth.StatusAuthenticated, m.State().Status)
	assert.Equal(t, 7, m.State().Identity.UserID)
	assert.Equal(t, "sales", m.Screen())
	assert.Equal(t, m.State().Token, m.deps.Client.Token())
}

func TestAppModel_SignInResumesPendingScreen(t *testing.T) {
	d := newTestDeps(t, func(context.Context) (string, error) { return "", auth.ErrNoToken })
	m := resolved(t, NewAppModel(d, "products"))
	require.Equal(t, ScreenLogin, m.Screen())

	tok := testToken(t, testNow.Add(time.Hour))
	m = step(t, m, SignedInMsg{Session: domain.Session{JWT: tok, User: domain.User{Username: "cashier"}}})

	assert.Equal(t, "products", m.Screen())
	assert.Equal(t, tok, d.Client.Token())
	assert.Equal(t, "cashier", m.who)
}

func TestAppModel_LoginIsGuestOnly(t *testing.T) {
	m := signedInApp(t, ScreenMenu)

	m = step(t, m, NavigateMsg{Screen: ScreenLogin})
	assert.Equal(t, ScreenMenu, m.Screen())
}

func TestAppModel_BackStack(t *testing.T) {
	m := signedInApp(t, ScreenMenu)

	m = step(t, m, NavigateMsg{Screen: ScreenDashboard})
	assert.Equal(t, ScreenDashboard, m.Screen())
	require.Len(t, m.stack, 1)

	m = step(t, m, BackMsg{})
	assert.Equal(t, ScreenMenu, m.Screen())
	assert.Empty(t, m.stack)
}

func TestAppModel_BackWithoutStackGoesToMenu(t *testing.T) {
	m := signedInApp(t, ScreenDashboard)

	m = step(t, m, BackMsg{})
	assert.Equal(t, ScreenMenu, m.Screen())
}

func TestAppModel_ReplaceDoesNotStack(t *testing.T) {
	m := signedInApp(t, ScreenMenu)

	m = step(t, m, NavigateMsg{Screen: ScreenNewSale})
	m = step(t, m, NavigateMsg{Screen: "sales", Replace: true})
	assert.Equal(t, "sales", m.Screen())
	require.Len(t, m.stack, 1)
	assert.Equal(t, ScreenMenu, m.stack[0].screen)
}

func TestAppModel_SignOutClearsSession(t *testing.T) {
	m := signedInApp(t, ScreenMenu)
	require.NoError(t, m.deps.Sessions.Save(domain.Session{JWT: m.State().Token}))

	m = step(t, m, SignOutMsg{})

	assert.Equal(t, ScreenLogin, m.Screen())
	assert.Equal(t, auth.StatusUnauthenticated, m.State().Status)
	assert.Empty(t, m.deps.Client.Token())
	_, err := m.deps.Sessions.Load()
	assert.ErrorIs(t, err, auth.ErrNoToken)
}

func TestAppModel_UnknownScreenNotifies(t *testing.T) {
	m := signedInApp(t, ScreenMenu)
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m = step(t, m, NavigateMsg{Screen: "nowhere"})
	assert.Equal(t, ScreenMenu, m.Screen())
	require.Equal(t, 1, m.toasts.Len())
	assert.Contains(t, m.View(), `unknown screen "nowhere"`)
}

func TestAppModel_CollectsNotices(t *testing.T) {
	m := signedInApp(t, ScreenMenu)
	m.deps.Notices.Success("Sale created successfully")

	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Equal(t, 1, m.toasts.Len())
	assert.Contains(t, m.View(), "Sale created successfully")
}

func TestAppModel_CtrlCQuits(t *testing.T) {
	m := signedInApp(t, "sales")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

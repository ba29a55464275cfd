// Package tui provides Bubble Tea models for the interactive dashboard.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/posdash/internal/auth"
	"github.com/h0rv/posdash/internal/domain"
)

// Screen keys besides the list screens declared in package catalog.
const (
	ScreenLogin        = "login"
	ScreenMenu         = "menu"
	ScreenDashboard    = "dashboard"
	ScreenNewSale      = "new-sale"
	ScreenPOS          = "pos"
	ScreenInvoice      = "invoice"
	ScreenProductForm  = "product-form"
	ScreenCategoryForm = "category-form"
)

// NavigateMsg asks the app to show a screen. Ref, Product and Category carry
// the record a detail or edit screen opens with. Replace swaps the current
// screen instead of stacking on top of it.
type NavigateMsg struct {
	Screen   string
	Replace  bool
	Ref      string
	Product  *domain.Product
	Category *domain.Category
}

// BackMsg returns to the screen the current one was opened from.
type BackMsg struct{}

// SignedInMsg is emitted after a successful login.
type SignedInMsg struct {
	Session domain.Session
}

// SignOutMsg clears the session and returns to login.
type SignOutMsg struct{}

// ErrorMsg is emitted when an error occurs.
type ErrorMsg struct {
	Err error
}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}

// authResolvedMsg carries the session state once the token chain has run.
type authResolvedMsg struct {
	state auth.State
	err   error
}

func goTo(screen string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Screen: screen} }
}

func back() tea.Msg { return BackMsg{} }

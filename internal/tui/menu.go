package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MenuEntry is one destination in the main menu.
type MenuEntry struct {
	Screen      string
	Title       string
	Description string
}

// DefaultMenu lists every screen in the order shown.
var DefaultMenu = []MenuEntry{
	{Screen: ScreenDashboard, Title: "Dashboard", Description: "sales summary and chart"},
	{Screen: ScreenPOS, Title: "Point of Sale", Description: "walk-in checkout"},
	{Screen: ScreenNewSale, Title: "New Sale", Description: "create an invoice"},
	{Screen: "sales", Title: "Sales", Description: "all invoices"},
	{Screen: "monthly", Title: "Monthly Sales", Description: "this calendar month"},
	{Screen: "weekly", Title: "Weekly Sales", Description: "this week"},
	{Screen: "products", Title: "Products", Description: "inventory"},
	{Screen: "categories", Title: "Categories", Description: "product categories"},
}

// menuItem represents a menu entry in the list.
type menuItem struct {
	entry MenuEntry
}

func (i menuItem) FilterValue() string { return i.entry.Title }

// menuItemDelegate handles rendering of menu items.
type menuItemDelegate struct{}

func (d menuItemDelegate) Height() int                             { return 1 }
func (d menuItemDelegate) Spacing() int                            { return 0 }
func (d menuItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d menuItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(menuItem)
	if !ok {
		return
	}

	// Format: title (description)
	str := fmt.Sprintf("%s %s", i.entry.Title, dimStyle.Render("("+i.entry.Description+")"))

	fn := NormalItemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return SelectedItemStyle.Render("> " + s[0])
		}
	}

	fmt.Fprint(w, fn(str))
}

// MenuModel lets the user pick a screen.
type MenuModel struct {
	list list.Model
}

// NewMenuModel creates a menu over entries. who is shown in the title when set.
func NewMenuModel(entries []MenuEntry, who string) MenuModel {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = menuItem{entry: e}
	}

	// Start with a reasonable default - will be resized by WindowSizeMsg
	l := list.New(items, menuItemDelegate{}, 80, 20)
	l.Title = "POS Dashboard"
	if who != "" {
		l.Title += " · " + who
	}
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle
	l.Styles.PaginationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	l.Styles.HelpStyle = HelpStyle

	return MenuModel{list: l}
}

// Init initializes the model.
func (m MenuModel) Init() tea.Cmd {
	// Request window size on init to properly size the list
	return tea.WindowSize()
}

// Update handles messages.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.SettingFilter() {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(menuItem); ok {
				return m, goTo(item.entry.Screen)
			}
		case "L":
			return m, func() tea.Msg { return SignOutMsg{} }
		case "q", "esc":
			return m, func() tea.Msg { return QuitMsg{} }
		}

	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width - 2)
		m.list.SetHeight(msg.Height - 2)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m MenuModel) View() string {
	return m.list.View() + "\n" + dimStyle.Render("enter: open  L: sign out  q: quit")
}

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/posdash/internal/domain"
	"github.com/h0rv/posdash/internal/form"
)

type categoriesLoadedMsg struct {
	categories []domain.Category
	err        error
}

type checkoutDoneMsg struct{ err error }

// POSModel is the point-of-sale counter: browse products by category,
// build a cart and check out in one keystroke.
type POSModel struct {
	cart      *form.Cart
	submitter *form.Submitter[domain.SalePayload]
	ctx       context.Context
	load      func(context.Context) ([]domain.Category, error)

	search     productSearch
	first      tea.Cmd
	categories []domain.Category
	// category indexes categories; -1 is all.
	category int
	spinner  spinner.Model

	inCart  bool
	item    int
	paying  bool
	loadErr string
	width   int
}

// NewPOSModel creates an empty counter.
func NewPOSModel(d *Deps) POSModel {
	client := d.Client
	send := func(ctx context.Context, p domain.SalePayload) error {
		_, err := client.CreateSale(ctx, p)
		return err
	}

	cart := form.NewCart(form.PricingFromConfig(d.Config.Pricing.POS))
	if d.Now != nil {
		cart.Now = d.Now
	}

	s := newProductSearch(d.ctx(), ScreenPOS, client.SearchProducts, d.Config.UI.SearchDebounce)
	s.allowEmpty = true
	s.input.Focus()
	first := s.now()

	return POSModel{
		cart: cart,
		submitter: form.NewSubmitter(send, d.Notices,
			form.Messages{Success: "Sale completed successfully", FailurePrefix: "Transaction failed"},
			d.log().Named("pos")),
		ctx:      d.ctx(),
		load:     client.AllCategories,
		search:   s,
		first:    first,
		category: -1,
		spinner:  newEditorSpinner(),
	}
}

// Init loads categories and the first page of products.
func (m POSModel) Init() tea.Cmd {
	ctx, load := m.ctx, m.load
	return tea.Batch(
		tea.WindowSize(),
		m.spinner.Tick,
		func() tea.Msg {
			cats, err := load(ctx)
			return categoriesLoadedMsg{categories: cats, err: err}
		},
		m.first,
	)
}

// Update handles messages.
func (m POSModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case categoriesLoadedMsg:
		if msg.err != nil {
			m.loadErr = domain.Detail(msg.err)
			return m, nil
		}
		m.categories = msg.categories
		return m, nil

	case searchTickMsg, searchResultMsg:
		cmd := m.search.update(msg)
		return m, cmd

	case checkoutDoneMsg:
		m.paying = false
		if msg.err == nil {
			m.cart.Clear()
			m.item = 0
			m.inCart = false
		}
		return m, nil

	case tea.KeyMsg:
		if m.paying {
			return m, nil
		}
		return m.handleKeyPress(msg)
	}
	return m, nil
}

func (m POSModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, back
	case "ctrl+p", "ctrl+s":
		return m.checkout()
	case "tab":
		cmd := m.cycleCategory(1)
		return m, cmd
	case "shift+tab":
		cmd := m.cycleCategory(-1)
		return m, cmd
	case "ctrl+k":
		m.cart.Clear()
		m.item = 0
		return m, nil
	case "ctrl+o":
		m.inCart = !m.inCart
		if m.inCart {
			m.search.input.Blur()
			return m, nil
		}
		cmd := m.search.input.Focus()
		return m, cmd
	}

	if m.inCart {
		items := m.cart.Items()
		if len(items) == 0 {
			return m, nil
		}
		ref := items[m.item].ProductRef
		switch msg.String() {
		case "up", "k":
			m.item = max(0, m.item-1)
		case "down", "j":
			m.item = min(len(items)-1, m.item+1)
		case "+", "=":
			m.cart.SetQuantity(ref, items[m.item].Quantity+1)
		case "-":
			m.cart.SetQuantity(ref, items[m.item].Quantity-1)
		case "x", "delete", "backspace":
			m.cart.Remove(ref)
		}
		m.item = max(0, min(m.item, len(m.cart.Items())-1))
		return m, nil
	}

	switch msg.String() {
	case "up":
		m.search.moveCursor(-1)
		return m, nil
	case "down":
		m.search.moveCursor(1)
		return m, nil
	case "enter":
		if p, ok := m.search.selected(); ok {
			m.cart.Add(p)
		}
		return m, nil
	}
	cmd := m.search.update(msg)
	return m, cmd
}

// cycleCategory moves the category filter by delta through all, then each category.
func (m *POSModel) cycleCategory(delta int) tea.Cmd {
	n := len(m.categories) + 1
	m.category = (m.category+1+delta+n)%n - 1
	id := 0
	if m.category >= 0 {
		id = m.categories[m.category].ID
	}
	return m.search.setCategory(id)
}

func (m POSModel) categoryName() string {
	if m.category < 0 || m.category >= len(m.categories) {
		return "All"
	}
	return m.categories[m.category].Name
}

func (m POSModel) checkout() (tea.Model, tea.Cmd) {
	if m.submitter.InFlight() {
		return m, nil
	}
	m.paying = true
	sub, ctx, cart := m.submitter, m.ctx, m.cart
	return m, func() tea.Msg {
		return checkoutDoneMsg{err: sub.Submit(ctx, cart, nil)}
	}
}

// View renders the products pane next to the cart.
func (m POSModel) View() string {
	width := m.width
	if width == 0 {
		width = 100
	}
	left := width/2 - 2
	right := width - left - 6

	cats := "Category: " + activeFilterStyle.Render(m.categoryName())
	if m.loadErr != "" {
		cats += "  " + ErrorStyle.Render(m.loadErr)
	}
	productPane := panelStyle
	cartPane := focusedPanelStyle
	if !m.inCart {
		productPane, cartPane = focusedPanelStyle, panelStyle
	}
	products := productPane.Width(left).Render(cats + "\n" + strings.TrimRight(m.search.view(12, !m.inCart), "\n"))

	var cart string
	if len(m.cart.Items()) == 0 {
		cart = dimStyle.Render("Cart is empty")
	} else {
		cart = renderLines(m.cart.Items(), m.item, m.inCart, right-4)
	}
	cart = headerStyle.Render(fmt.Sprintf("Cart (%d items)", m.cart.Count())) + "\n" + cart + "\n\n" + renderTotals(m.cart.Totals())
	cartView := cartPane.Width(right).Render(cart)

	sections := []string{
		TitleStyle.Render("Point of Sale"),
		lipgloss.JoinHorizontal(lipgloss.Top, products, cartView),
	}
	if m.paying {
		sections = append(sections, m.spinner.View()+" Processing payment...")
	}
	sections = append(sections, HelpStyle.Render("enter: add  tab: category  ctrl+o: switch pane  +/-: quantity  x: remove  ctrl+k: clear  ctrl+p: checkout  esc: back"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

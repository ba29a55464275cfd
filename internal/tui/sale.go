package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/posdash/internal/domain"
	"github.com/h0rv/posdash/internal/form"
	"github.com/shopspring/decimal"
)

type saleZone int

const (
	zoneHeader saleZone = iota
	zoneSearch
	zoneItems
)

// saleSavedMsg reports the end of a sale submission.
type saleSavedMsg struct{ err error }

// SaleModel builds a new sale: header fields, a debounced product search and
// the line items with live totals.
type SaleModel struct {
	draft     *form.SaleDraft
	submitter *form.Submitter[domain.SalePayload]
	ctx       context.Context

	header  fieldSet
	search  productSearch
	spinner spinner.Model

	// price edits the unit price of the selected line while editingPrice is set.
	price        textinput.Model
	editingPrice bool
	priceErr     string

	zone   saleZone
	item   int
	saving bool
	width  int
}

// NewSaleModel creates an empty sale dated now.
func NewSaleModel(d *Deps) SaleModel {
	client := d.Client
	send := func(ctx context.Context, p domain.SalePayload) error {
		_, err := client.CreateSale(ctx, p)
		return err
	}

	header := newFieldSet(
		newField(form.FieldCustomerName, "Customer", "Customer name"),
		newField(form.FieldCustomerEmail, "Email", "customer@example.com"),
		newField(form.FieldCustomerPhone, "Phone", "Phone number"),
		newField(form.FieldInvoiceNumber, "Invoice", "INV-0001"),
		newField(form.FieldDate, "Date & time", "YYYY-MM-DD HH:MM"),
		newField("notes", "Notes", "Optional"),
	)
	now := d.now()
	header.set(form.FieldDate, now.Format(form.SaleDateLayout))

	price := textinput.New()
	price.Prompt = "Unit price: $"
	price.CharLimit = 12

	return SaleModel{
		draft: form.NewSaleDraft(form.PricingFromConfig(d.Config.Pricing.Sale), now),
		submitter: form.NewSubmitter(send, d.Notices,
			form.Messages{Success: "Sale created successfully", FailurePrefix: "Transaction failed"},
			d.log().Named("sale-form")),
		ctx:     d.ctx(),
		header:  header,
		search:  newProductSearch(d.ctx(), ScreenNewSale, client.SearchProducts, d.Config.UI.SearchDebounce),
		spinner: newEditorSpinner(),
		price:   price,
	}
}

// Init initializes the model.
func (m SaleModel) Init() tea.Cmd {
	return tea.Batch(tea.WindowSize(), m.spinner.Tick)
}

// Update handles messages.
func (m SaleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case searchTickMsg, searchResultMsg:
		cmd := m.search.update(msg)
		return m, cmd

	case saleSavedMsg:
		m.saving = false
		var fe domain.FieldErrors
		switch {
		case errors.As(msg.err, &fe):
			m.header.setErrors(fe)
			cmd := m.focusZone(zoneHeader)
			return m, cmd
		case msg.err == nil:
			return m, func() tea.Msg { return NavigateMsg{Screen: "sales", Replace: true} }
		}
		return m, nil

	case tea.KeyMsg:
		if m.saving {
			return m, nil
		}
		return m.handleKeyPress(msg)
	}
	return m, nil
}

func (m SaleModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editingPrice {
		return m.handlePriceEdit(msg)
	}
	switch msg.String() {
	case "esc":
		return m, back
	case "ctrl+s":
		return m.submit()
	case "tab":
		if m.zone == zoneHeader && m.header.focus < len(m.header.fields)-1 {
			cmd := m.header.move(1)
			return m, cmd
		}
		cmd := m.focusZone((m.zone + 1) % 3)
		return m, cmd
	case "shift+tab":
		if m.zone == zoneHeader && m.header.focus > 0 {
			cmd := m.header.move(-1)
			return m, cmd
		}
		cmd := m.focusZone((m.zone + 2) % 3)
		return m, cmd
	}

	switch m.zone {
	case zoneHeader:
		if msg.String() == "enter" {
			cmd := m.header.move(1)
			return m, cmd
		}
		cmd := m.header.update(msg)
		return m, cmd

	case zoneSearch:
		switch msg.String() {
		case "up":
			m.search.moveCursor(-1)
			return m, nil
		case "down":
			m.search.moveCursor(1)
			return m, nil
		case "enter":
			if p, ok := m.search.selected(); ok {
				m.draft.AddProduct(p)
				m.search.reset()
			}
			return m, nil
		}
		cmd := m.search.update(msg)
		return m, cmd

	case zoneItems:
		items := m.draft.Items()
		if len(items) == 0 {
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			m.item = max(0, m.item-1)
		case "down", "j":
			m.item = min(len(items)-1, m.item+1)
		case "+", "=":
			m.draft.SetQuantity(m.item, items[m.item].Quantity+1)
		case "-":
			m.draft.SetQuantity(m.item, items[m.item].Quantity-1)
		case "x", "delete", "backspace":
			m.draft.RemoveItem(m.item)
			m.item = max(0, min(m.item, len(items)-2))
		case "p":
			m.editingPrice = true
			m.priceErr = ""
			m.price.SetValue(items[m.item].UnitPrice.StringFixed(2))
			m.price.CursorEnd()
			cmd := m.price.Focus()
			return m, cmd
		}
	}
	return m, nil
}

func (m SaleModel) handlePriceEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editingPrice = false
		m.priceErr = ""
		m.price.Blur()
		return m, nil
	case "enter":
		price, err := decimal.NewFromString(strings.TrimSpace(m.price.Value()))
		if err != nil || price.IsNegative() {
			m.priceErr = "Price must be a number of at least 0"
			return m, nil
		}
		m.draft.SetUnitPrice(m.item, price)
		m.editingPrice = false
		m.priceErr = ""
		m.price.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.price, cmd = m.price.Update(msg)
	return m, cmd
}

func (m *SaleModel) focusZone(z saleZone) tea.Cmd {
	m.zone = z
	m.header.blur()
	m.search.input.Blur()
	switch z {
	case zoneHeader:
		return m.header.fields[m.header.focus].input.Focus()
	case zoneSearch:
		return m.search.input.Focus()
	}
	return nil
}

func (m SaleModel) submit() (tea.Model, tea.Cmd) {
	if m.submitter.InFlight() {
		return m, nil
	}
	m.draft.CustomerName = m.header.get(form.FieldCustomerName)
	m.draft.CustomerEmail = m.header.get(form.FieldCustomerEmail)
	m.draft.CustomerPhone = m.header.get(form.FieldCustomerPhone)
	m.draft.InvoiceNumber = m.header.get(form.FieldInvoiceNumber)
	m.draft.Notes = m.header.get("notes")
	m.draft.SetDate(m.header.get(form.FieldDate))
	m.header.clearErrors()
	m.saving = true

	sub, ctx, draft := m.submitter, m.ctx, m.draft
	return m, func() tea.Msg {
		return saleSavedMsg{err: sub.Submit(ctx, draft, nil)}
	}
}

// View renders the sale builder.
func (m SaleModel) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	var sections []string
	sections = append(sections, TitleStyle.Render("New Sale"))
	sections = append(sections, m.header.view(width))

	searchStyle := panelStyle
	if m.zone == zoneSearch {
		searchStyle = focusedPanelStyle
	}
	sections = append(sections, searchStyle.Width(width-4).Render(strings.TrimRight(m.search.view(6, m.zone == zoneSearch), "\n")))

	itemStyle := panelStyle
	if m.zone == zoneItems {
		itemStyle = focusedPanelStyle
	}
	sections = append(sections, itemStyle.Width(width-4).Render(m.renderItems(width-8)))
	if m.editingPrice {
		line := m.price.View()
		if m.priceErr != "" {
			line += "  " + ErrorStyle.Render(m.priceErr)
		}
		sections = append(sections, line)
	}
	sections = append(sections, renderTotals(m.draft.Totals()))

	if m.saving {
		sections = append(sections, m.spinner.View()+" Saving...")
	}
	sections = append(sections, HelpStyle.Render("tab: next  enter: add product  +/-: quantity  p: price  x: remove  ctrl+s: save  esc: cancel"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SaleModel) renderItems(width int) string {
	items := m.draft.Items()
	if len(items) == 0 {
		return dimStyle.Render("No products added")
	}
	return renderLines(items, m.item, m.zone == zoneItems, width)
}

// renderLines renders line items as a table with the cursor on selected.
func renderLines(items []form.LineItem, selected int, focused bool, width int) string {
	nameWidth := max(12, width-34)
	lines := []string{headerStyle.Render(fmt.Sprintf("  %-*s %5s %12s %12s", nameWidth, "Product", "Qty", "Price", "Amount"))}
	for i, l := range items {
		row := fmt.Sprintf("%s %5d %12s %12s", fit(l.Name, nameWidth, false), l.Quantity, form.Money(l.UnitPrice), form.Money(l.Amount()))
		if l.Stock > 0 && l.Quantity > l.Stock {
			row += ErrorStyle.Render(" exceeds stock")
		}
		if focused && i == selected {
			lines = append(lines, SelectedItemStyle.Render("> "+row))
		} else {
			lines = append(lines, NormalItemStyle.Render("  "+row))
		}
	}
	return strings.Join(lines, "\n")
}

func renderTotals(t form.Totals) string {
	row := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%10s ", label)) + fmt.Sprintf("%12s", value)
	}
	return strings.Join([]string{
		row("Subtotal", form.Money(t.Subtotal)),
		row("Discount", form.Deduction(t.Discount)),
		row("Tax", form.Surcharge(t.Tax)),
		headerStyle.Render(fmt.Sprintf("%10s %12s", "Total", form.Money(t.Total))),
	}, "\n")
}

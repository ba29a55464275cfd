package tui

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/posdash/internal/domain"
	"github.com/h0rv/posdash/internal/invoice"
	"github.com/h0rv/posdash/internal/notify"
)

type invoiceLoadedMsg struct {
	sale *domain.Sale
	err  error
}

// InvoiceModel shows one sale as a printable invoice.
type InvoiceModel struct {
	ref       string
	ctx       context.Context
	get       func(context.Context, string) (*domain.Sale, error)
	notices   notify.Notifier
	exportDir string
	dashboard string

	inv      *invoice.Invoice
	err      string
	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int
}

// NewInvoiceModel loads the sale identified by ref.
func NewInvoiceModel(d *Deps, ref string) InvoiceModel {
	return InvoiceModel{
		ref:       ref,
		ctx:       d.ctx(),
		get:       d.Client.GetSale,
		notices:   d.Notices,
		exportDir: d.ExportDir,
		dashboard: d.Config.API.DashboardURL,
		viewport:  viewport.New(80, 20),
		spinner:   newEditorSpinner(),
	}
}

// Init fetches the sale.
func (m InvoiceModel) Init() tea.Cmd {
	ctx, get, ref := m.ctx, m.get, m.ref
	return tea.Batch(tea.WindowSize(), m.spinner.Tick, func() tea.Msg {
		s, err := get(ctx, ref)
		return invoiceLoadedMsg{sale: s, err: err}
	})
}

// Update handles messages.
func (m InvoiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(5, msg.Height-4)
		m.render()
		return m, nil

	case spinner.TickMsg:
		if m.inv != nil || m.err != "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case invoiceLoadedMsg:
		if msg.err != nil {
			m.err = domain.Detail(msg.err)
			return m, nil
		}
		inv := invoice.FromSale(*msg.sale)
		m.inv = &inv
		m.render()
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return m, back
		case "p":
			m.export(false)
		case "o":
			m.export(true)
		case "b":
			if m.dashboard != "" {
				_ = invoice.OpenURL(m.dashboard + "/sales/" + m.ref)
			}
		case "j", "down":
			m.viewport.LineDown(1)
		case "k", "up":
			m.viewport.LineUp(1)
		case "ctrl+d":
			m.viewport.HalfViewDown()
		case "ctrl+u":
			m.viewport.HalfViewUp()
		case "g":
			m.viewport.GotoTop()
		case "G":
			m.viewport.GotoBottom()
		}
	}
	return m, nil
}

// export writes the PDF and optionally opens it.
func (m InvoiceModel) export(open bool) {
	if m.inv == nil {
		return
	}
	path := filepath.Join(m.exportDir, m.inv.Filename())
	if err := invoice.Export(*m.inv, path); err != nil {
		m.notices.Error("Failed to export invoice: " + err.Error())
		return
	}
	if open {
		if err := invoice.OpenFile(path); err != nil {
			m.notices.Error("Failed to open invoice: " + err.Error())
			return
		}
	}
	m.notices.Success("Invoice saved to " + path)
}

func (m *InvoiceModel) render() {
	if m.inv == nil {
		return
	}
	m.viewport.SetContent(invoice.Text(*m.inv, min(m.viewport.Width, 100)))
}

// View renders the invoice.
func (m InvoiceModel) View() string {
	title := TitleStyle.Render("Invoice")
	switch {
	case m.err != "":
		return lipgloss.JoinVertical(lipgloss.Left, title,
			ErrorStyle.Render("Failed to load invoice: "+m.err),
			HelpStyle.Render("esc: back"))
	case m.inv == nil:
		return lipgloss.JoinVertical(lipgloss.Left, title, m.spinner.View()+" Loading invoice...")
	}

	pos := "TOP"
	switch {
	case m.viewport.AtTop():
	case m.viewport.AtBottom():
		pos = "END"
	default:
		pos = fmt.Sprintf("%d%%", int(m.viewport.ScrollPercent()*100))
	}
	title = TitleStyle.Render("Invoice "+m.inv.Number) + "  " + dimStyle.Render(pos)
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.viewport.View(),
		HelpStyle.Render("j/k: scroll  p: save pdf  o: save & open  b: open in browser  esc: back"))
}

package tui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/posdash/internal/catalog"
	"github.com/h0rv/posdash/internal/domain"
	"github.com/h0rv/posdash/internal/form"
	"github.com/h0rv/posdash/internal/gateway"
	"github.com/shopspring/decimal"
)

func money(v float64) string { return form.Money(decimal.NewFromFloat(v)) }

func day(v string) string {
	t, ok := domain.ParseDate(v)
	if !ok {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

var saleColumns = []Column[domain.Sale]{
	{Title: "Invoice", Field: "invoice_number", Sort: "invoice_number", Width: 14, Value: func(s domain.Sale) string { return s.InvoiceNumber }},
	{Title: "Customer", Field: "customer_name", Sort: "customer_name", Width: 20, Value: func(s domain.Sale) string { return s.CustomerName }},
	{Title: "Phone", Field: "customer_phone", Width: 14, Value: func(s domain.Sale) string { return s.CustomerPhone }},
	{Title: "Email", Field: "customer_email", Width: 24, Value: func(s domain.Sale) string { return s.CustomerEmail }},
	{Title: "Date", Field: "date", Sort: "date", Width: 11, Value: func(s domain.Sale) string { return day(s.Date) }},
	{Title: "Total", Sort: "total", Width: 11, Right: true, Value: func(s domain.Sale) string { return money(s.Total) }},
}

var productColumns = []Column[domain.Product]{
	{Title: "Name", Field: "name", Sort: "name", Width: 24, Value: func(p domain.Product) string { return p.Name }},
	{Title: "Barcode", Field: "barcode", Width: 14, Value: func(p domain.Product) string { return p.Barcode }},
	{Title: "Category", Field: "category", Width: 16, Value: func(p domain.Product) string {
		if p.Category == nil {
			return "-"
		}
		return p.Category.Name
	}},
	{Title: "Price", Sort: "price", Width: 10, Right: true, Value: func(p domain.Product) string { return money(p.Price) }},
	{Title: "Stock", Sort: "stock", Width: 6, Right: true, Value: func(p domain.Product) string { return strconv.Itoa(p.Stock) }},
}

var categoryColumns = []Column[domain.Category]{
	{Title: "Name", Field: "name", Sort: "name", Width: 20, Value: func(c domain.Category) string { return c.Name }},
	{Title: "Description", Field: "description", Width: 50, Value: func(c domain.Category) string { return c.Description }},
}

func openInvoice(s domain.Sale) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Screen: ScreenInvoice, Ref: s.Ref()} }
}

func editProduct(p domain.Product) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Screen: ScreenProductForm, Product: &p} }
}

func editCategory(c domain.Category) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Screen: ScreenCategoryForm, Category: &c} }
}

// newListScreen builds the list screen declared under key.
func newListScreen(d *Deps, key string) (tea.Model, bool) {
	cfg := d.Config.UI
	s, ok := catalog.Find(catalog.All(cfg.PageSizes, cfg.DefaultPageSize), key)
	if !ok {
		return nil, false
	}
	if d.Now != nil {
		s.List.Now = d.Now
	}
	log := d.log().Named("list")

	switch s.Path {
	case gateway.PathSales:
		sales := d.Client.Sales()
		return NewListModel(d.ctx(), ListDef[domain.Sale]{
			Screen:   s,
			Columns:  saleColumns,
			Fetcher:  sales,
			Deleter:  sales,
			Ref:      domain.Sale.Ref,
			Describe: func(s domain.Sale) string { return s.InvoiceNumber },
			OnOpen:   openInvoice,
			OnNew:    goTo(ScreenNewSale),
		}, d.Notices, log), true

	case gateway.PathProducts:
		products := d.Client.Products()
		return NewListModel(d.ctx(), ListDef[domain.Product]{
			Screen:   s,
			Columns:  productColumns,
			Fetcher:  products,
			Deleter:  products,
			Ref:      domain.Product.Ref,
			Describe: func(p domain.Product) string { return p.Name },
			OnOpen:   editProduct,
			OnEdit:   editProduct,
			OnNew:    goTo(ScreenProductForm),
		}, d.Notices, log), true

	case gateway.PathCategories:
		categories := d.Client.Categories()
		return NewListModel(d.ctx(), ListDef[domain.Category]{
			Screen:   s,
			Columns:  categoryColumns,
			Fetcher:  categories,
			Deleter:  categories,
			Ref:      domain.Category.Ref,
			Describe: func(c domain.Category) string { return c.Name },
			OnOpen:   editCategory,
			OnEdit:   editCategory,
			OnNew:    goTo(ScreenCategoryForm),
		}, d.Notices, log), true
	}
	return nil, false
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/posdash/internal/domain"
	"github.com/h0rv/posdash/internal/form"
)

// editorHintMsg replaces the hint line under an editor.
type editorHintMsg struct{ text string }

// editorSavedMsg reports the end of a submission.
type editorSavedMsg struct{ err error }

// EditorModel is a create/update form for one record.
type EditorModel[P any] struct {
	title     string
	fields    fieldSet
	build     func(get func(string) string) form.Form[P]
	submitter *form.Submitter[P]
	ctx       context.Context
	load      tea.Cmd

	spinner spinner.Model
	hint    string
	saving  bool
	width   int
}

// Init requests the window size and runs the optional loader.
func (m EditorModel[P]) Init() tea.Cmd {
	return tea.Batch(tea.WindowSize(), m.spinner.Tick, m.load)
}

// Update handles messages.
func (m EditorModel[P]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case editorHintMsg:
		m.hint = msg.text
		return m, nil

	case editorSavedMsg:
		m.saving = false
		var fe domain.FieldErrors
		switch {
		case errors.As(msg.err, &fe):
			m.fields.setErrors(fe)
		case msg.err == nil:
			return m, back
		}
		return m, nil

	case tea.KeyMsg:
		if m.saving {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, back
		case "tab", "down":
			cmd := m.fields.move(1)
			return m, cmd
		case "shift+tab", "up":
			cmd := m.fields.move(-1)
			return m, cmd
		case "ctrl+s":
			return m.submit()
		case "enter":
			if m.fields.focus == len(m.fields.fields)-1 {
				return m.submit()
			}
			cmd := m.fields.move(1)
			return m, cmd
		}
		cmd := m.fields.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m EditorModel[P]) submit() (tea.Model, tea.Cmd) {
	f := m.build(func(key string) string { return m.fields.get(key) })
	m.fields.clearErrors()
	m.saving = true
	sub, ctx := m.submitter, m.ctx
	return m, func() tea.Msg {
		return editorSavedMsg{err: sub.Submit(ctx, f, nil)}
	}
}

// View renders the form.
func (m EditorModel[P]) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}
	var sections []string
	sections = append(sections, TitleStyle.Render(m.title))
	sections = append(sections, m.fields.view(width))
	if m.hint != "" {
		sections = append(sections, dimStyle.Render(m.hint))
	}
	if m.saving {
		sections = append(sections, m.spinner.View()+" Saving...")
	}
	sections = append(sections, HelpStyle.Render("tab: next field  enter/ctrl+s: save  esc: cancel"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func newEditorSpinner() spinner.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return sp
}

// NewProductEditor edits p, or creates a product when p is nil.
func NewProductEditor(d *Deps, p *domain.Product) EditorModel[domain.ProductPayload] {
	base := form.ProductForm{}
	title, msgs := "New Product", form.Messages{Success: "Product created successfully", FailurePrefix: "Failed to create product"}
	if p != nil {
		base = form.ProductFormFrom(*p)
		title, msgs = "Edit Product", form.Messages{Success: "Product updated successfully", FailurePrefix: "Failed to update product"}
	}

	fs := newFieldSet(
		newField("name", "Name", "Product name"),
		newField("description", "Description", "Optional"),
		newField("price", "Price", "0.00"),
		newField("stock", "Stock", "0"),
		newField("barcode", "Barcode", "Scan or type"),
		newField("category", "Category", "Category id"),
	)
	fs.set("name", base.Name)
	fs.set("description", base.Description)
	fs.set("price", base.Price)
	fs.set("stock", base.Stock)
	fs.set("barcode", base.Barcode)
	fs.set("category", base.Category)

	client := d.Client
	send := func(ctx context.Context, payload domain.ProductPayload) error {
		var err error
		if base.Editing() {
			_, err = client.UpdateProduct(ctx, base.Ref, payload)
		} else {
			_, err = client.CreateProduct(ctx, payload)
		}
		return err
	}

	ctx := d.ctx()
	return EditorModel[domain.ProductPayload]{
		title:  title,
		fields: fs,
		build: func(get func(string) string) form.Form[domain.ProductPayload] {
			f := base
			f.Name = get("name")
			f.Description = get("description")
			f.Price = get("price")
			f.Stock = get("stock")
			f.Barcode = get("barcode")
			f.Category = get("category")
			return f
		},
		submitter: form.NewSubmitter(send, d.Notices, msgs, d.log().Named("product-form")),
		ctx:       ctx,
		load: func() tea.Msg {
			cats, err := client.AllCategories(ctx)
			if err != nil {
				return editorHintMsg{text: "Categories unavailable: " + domain.Detail(err)}
			}
			return editorHintMsg{text: categoryHint(cats)}
		},
		spinner: newEditorSpinner(),
	}
}

func categoryHint(cats []domain.Category) string {
	if len(cats) == 0 {
		return "No categories yet"
	}
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = fmt.Sprintf("%d %s", c.ID, c.Name)
	}
	return "Categories: " + strings.Join(parts, " · ")
}

// NewCategoryEditor edits c, or creates a category when c is nil.
func NewCategoryEditor(d *Deps, c *domain.Category) EditorModel[domain.CategoryPayload] {
	base := form.CategoryForm{}
	title, msgs := "New Category", form.Messages{Success: "Category created successfully", FailurePrefix: "Failed to create category"}
	if c != nil {
		base = form.CategoryFormFrom(*c)
		title, msgs = "Edit Category", form.Messages{Success: "Category updated successfully", FailurePrefix: "Failed to update category"}
	}

	fs := newFieldSet(
		newField("name", "Name", "1-40 characters"),
		newField("description", "Description", "5-200 characters"),
	)
	fs.set("name", base.Name)
	fs.set("description", base.Description)

	client := d.Client
	send := func(ctx context.Context, payload domain.CategoryPayload) error {
		var err error
		if base.Editing() {
			_, err = client.UpdateCategory(ctx, base.Ref, payload)
		} else {
			_, err = client.CreateCategory(ctx, payload)
		}
		return err
	}

	return EditorModel[domain.CategoryPayload]{
		title:  title,
		fields: fs,
		build: func(get func(string) string) form.Form[domain.CategoryPayload] {
			f := base
			f.Name = get("name")
			f.Description = get("description")
			return f
		},
		submitter: form.NewSubmitter(send, d.Notices, msgs, d.log().Named("category-form")),
		ctx:       d.ctx(),
		spinner:   newEditorSpinner(),
	}
}

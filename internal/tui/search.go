package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/posdash/internal/domain"
	"github.com/h0rv/posdash/internal/form"
)

// SearchFunc looks up products by name within an optional category.
type SearchFunc func(ctx context.Context, term string, categoryID int) ([]domain.Product, error)

// searchTickMsg fires when generation gen outlived its quiet period.
type searchTickMsg struct {
	owner string
	gen   uint64
}

// searchResultMsg carries the hits of generation gen.
type searchResultMsg struct {
	owner    string
	gen      uint64
	products []domain.Product
	err      error
}

// productSearch is a debounced product search box with a result list.
type productSearch struct {
	owner      string
	input      textinput.Model
	debounce   *form.Debouncer
	search     SearchFunc
	ctx        context.Context
	allowEmpty bool

	category  int
	last      string
	gen       uint64
	results   []domain.Product
	cursor    int
	searching bool
	err       string
}

func newProductSearch(ctx context.Context, owner string, search SearchFunc, delay time.Duration) productSearch {
	ti := textinput.New()
	ti.Placeholder = "Search products..."
	ti.Prompt = "Search: "
	ti.CharLimit = 100
	return productSearch{
		owner:    owner,
		input:    ti,
		debounce: form.NewDebouncer(delay),
		search:   search,
		ctx:      ctx,
	}
}

// schedule starts a new quiet period for the current term.
func (s *productSearch) schedule() tea.Cmd {
	term := strings.TrimSpace(s.input.Value())
	if term == "" && !s.allowEmpty {
		s.debounce.Cancel()
		s.gen = 0
		s.results = nil
		s.cursor = 0
		s.searching = false
		return nil
	}
	s.gen = s.debounce.Touch()
	gen, owner, ctx, debounce := s.gen, s.owner, s.ctx, s.debounce
	return func() tea.Msg {
		if !debounce.Wait(ctx, gen) {
			return nil
		}
		return searchTickMsg{owner: owner, gen: gen}
	}
}

// now runs the search without waiting.
func (s *productSearch) now() tea.Cmd {
	s.gen = s.debounce.Touch()
	s.debounce.Fire(s.gen)
	return s.run(s.gen)
}

func (s *productSearch) run(gen uint64) tea.Cmd {
	s.searching = true
	term, category, owner, ctx, search := strings.TrimSpace(s.input.Value()), s.category, s.owner, s.ctx, s.search
	return func() tea.Msg {
		products, err := search(ctx, term, category)
		return searchResultMsg{owner: owner, gen: gen, products: products, err: err}
	}
}

// setCategory limits results to category and searches again.
func (s *productSearch) setCategory(id int) tea.Cmd {
	s.category = id
	return s.now()
}

// update handles search messages and typing. Keys other than text editing
// are left to the caller.
func (s *productSearch) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case searchTickMsg:
		if msg.owner != s.owner || msg.gen != s.gen {
			return nil
		}
		return s.run(msg.gen)

	case searchResultMsg:
		if msg.owner != s.owner || msg.gen != s.gen {
			return nil
		}
		s.searching = false
		if msg.err != nil {
			s.err = domain.Detail(msg.err)
			s.results = nil
			return nil
		}
		s.err = ""
		s.results = msg.products
		s.cursor = 0
		return nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		if v := s.input.Value(); v != s.last {
			s.last = v
			return tea.Batch(cmd, s.schedule())
		}
		return cmd
	}
	return nil
}

func (s *productSearch) moveCursor(delta int) {
	if len(s.results) == 0 {
		return
	}
	s.cursor = max(0, min(len(s.results)-1, s.cursor+delta))
}

func (s *productSearch) selected() (domain.Product, bool) {
	if s.cursor < 0 || s.cursor >= len(s.results) {
		return domain.Product{}, false
	}
	return s.results[s.cursor], true
}

// reset clears the box and drops pending searches.
func (s *productSearch) reset() {
	s.debounce.Cancel()
	s.gen = 0
	s.input.SetValue("")
	s.last = ""
	s.results = nil
	s.cursor = 0
	s.searching = false
}

func (s productSearch) view(limit int, focused bool) string {
	var b strings.Builder
	b.WriteString(s.input.View())
	if s.searching {
		b.WriteString(dimStyle.Render("  searching..."))
	}
	b.WriteString("\n")
	if s.err != "" {
		b.WriteString(ErrorStyle.Render(s.err) + "\n")
	}
	for i, p := range s.results {
		if i >= limit {
			b.WriteString(dimStyle.Render("  …") + "\n")
			break
		}
		label := form.SuggestionLabel(p)
		if focused && i == s.cursor {
			b.WriteString(SelectedItemStyle.Render("> "+label) + "\n")
		} else {
			b.WriteString(NormalItemStyle.Render("  "+label) + "\n")
		}
	}
	return b.String()
}

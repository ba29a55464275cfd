package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/posdash/internal/catalog"
	"github.com/h0rv/posdash/internal/listview"
	"github.com/h0rv/posdash/internal/mutation"
	"github.com/h0rv/posdash/internal/notify"
	"go.uber.org/zap"
)

// Layout constants
const (
	defaultColumnWidth = 15
	listChromeLines    = 6 // header, filters, table header, rule, summary, hints
)

// Column is one table column of a list screen.
type Column[T any] struct {
	Title string
	// Field links the column to a filter policy of the same name, if any.
	Field string
	// Sort is the server field the column orders by, empty if unsortable.
	Sort  string
	Width int
	Right bool
	Value func(T) string
}

// ListDef wires a catalog screen to its data and actions. Nil actions are
// disabled.
type ListDef[T any] struct {
	Screen   catalog.Screen
	Columns  []Column[T]
	Fetcher  listview.Fetcher[T]
	Deleter  mutation.Deleter
	Ref      func(T) string
	Describe func(T) string
	OnOpen   func(T) tea.Cmd
	OnNew    tea.Cmd
	OnEdit   func(T) tea.Cmd
}

// pickMode is what a digit selects in the column picker.
type pickMode int

const (
	pickNone pickMode = iota
	pickFilter
	pickClear
	pickSort
)

// ListModel is the paginated, filterable table shared by every list screen.
type ListModel[T any] struct {
	// Dependencies
	def     ListDef[T]
	ctrl    *listview.Controller[T]
	filters []*listview.ColumnFilter
	flow    *mutation.Flow[T]
	ctx     context.Context

	// UI components
	keymap      KeyMap
	help        HelpModel
	spinner     spinner.Model
	filterInput textinput.Model

	// View state
	cursor    int
	picking   pickMode
	editing   int // index into filters, -1 when no editor is open
	filterErr string
	showHelp  bool
	width     int
	height    int
}

// NewListModel creates a list screen. Its controller fetches under ctx and
// reports through n.
func NewListModel[T any](ctx context.Context, def ListDef[T], n notify.Notifier, log *zap.Logger) ListModel[T] {
	if log == nil {
		log = zap.NewNop()
	}
	ctrl := listview.New[T](def.Screen.List, def.Fetcher, n,
		listview.WithLogger(log),
		listview.WithContext(ctx),
	)

	opts := []mutation.Option[T]{
		mutation.WithMessages[T](def.Screen.Deletes),
		mutation.WithLogger[T](log),
	}
	if def.Describe != nil {
		opts = append(opts, mutation.WithDescribe[T](def.Describe))
	}
	ref := def.Ref
	if ref == nil {
		ref = func(T) string { return "" }
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Prompt = "/ "

	return ListModel[T]{
		def:         def,
		ctrl:        ctrl,
		filters:     ctrl.ColumnFilters(),
		flow:        mutation.New[T](def.Deleter, ctrl, n, ref, opts...),
		ctx:         ctx,
		keymap:      DefaultKeyMap(),
		help:        NewHelpModel(def.Screen.Title, DefaultKeyMap()),
		spinner:     sp,
		filterInput: ti,
		editing:     -1,
	}
}

// listFetchedMsg reports that a fetch of the named list finished.
type listFetchedMsg struct {
	name    string
	applied bool
}

// deleteDoneMsg reports the end of a confirmed deletion.
type deleteDoneMsg struct {
	name string
	err  error
}

// Init issues the first fetch.
func (m ListModel[T]) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.WindowSize(), m.run(m.ctrl.Load()))
}

// Close cancels in-flight fetches. Called when the screen is left.
func (m ListModel[T]) Close() { m.ctrl.Close() }

// Resume refetches the current page when the screen is shown again.
func (m ListModel[T]) Resume() tea.Cmd {
	return tea.Batch(tea.WindowSize(), m.run(m.ctrl.Refetch()))
}

// Controller exposes the list's query controller.
func (m ListModel[T]) Controller() *listview.Controller[T] { return m.ctrl }

// run performs req in a command.
func (m ListModel[T]) run(req listview.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	name := m.def.Screen.Key
	return func() tea.Msg {
		return listFetchedMsg{name: name, applied: req.Do()}
	}
}

// Update handles messages
func (m ListModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listFetchedMsg:
		if msg.name == m.def.Screen.Key {
			m.clampCursor()
		}
		return m, nil

	case deleteDoneMsg:
		if msg.name == m.def.Screen.Key {
			m.clampCursor()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// handleKeyPress processes keyboard input
func (m ListModel[T]) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.flow.Phase() {
	case mutation.PhaseDeleting:
		return m, nil
	case mutation.PhaseConfirmationOpen:
		switch {
		case key.Matches(msg, m.keymap.Confirm):
			return m, m.confirmDelete()
		case key.Matches(msg, m.keymap.Cancel):
			m.flow.Cancel()
		}
		return m, nil
	}

	// Help overlay
	if m.showHelp {
		if key.Matches(msg, m.keymap.Help, m.keymap.Back) {
			m.showHelp = false
		}
		return m, nil
	}

	if m.editing >= 0 {
		return m.handleFilterEdit(msg)
	}

	if m.picking != pickNone {
		return m.handlePick(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Back):
		return m, back
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.ctrl.State().Rows())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keymap.NextPage):
		return m.page(m.ctrl.NextPage())
	case key.Matches(msg, m.keymap.PrevPage):
		return m.page(m.ctrl.PrevPage())
	case key.Matches(msg, m.keymap.FirstPage):
		return m.page(m.ctrl.FirstPage())
	case key.Matches(msg, m.keymap.LastPage):
		return m.page(m.ctrl.LastPage())
	case key.Matches(msg, m.keymap.PageSize):
		req, err := m.ctrl.SetPageSize(m.nextPageSize())
		if err != nil {
			return m, nil
		}
		return m.page(req)
	case key.Matches(msg, m.keymap.Filter):
		switch len(m.filters) {
		case 0:
		case 1:
			cmd := m.openFilter(0)
			return m, cmd
		default:
			m.picking = pickFilter
		}
	case key.Matches(msg, m.keymap.ClearColumn):
		if len(m.filters) > 0 {
			m.picking = pickClear
		}
	case key.Matches(msg, m.keymap.Sort):
		if len(m.sortable()) > 0 {
			m.picking = pickSort
		}
	case key.Matches(msg, m.keymap.ClearFilters):
		return m.page(m.ctrl.ClearFilters())
	case key.Matches(msg, m.keymap.Refresh):
		return m, m.run(m.ctrl.Refetch())
	case key.Matches(msg, m.keymap.Open):
		if row, ok := m.selected(); ok && m.def.OnOpen != nil {
			return m, m.def.OnOpen(row)
		}
	case key.Matches(msg, m.keymap.New):
		return m, m.def.OnNew
	case key.Matches(msg, m.keymap.Edit):
		if row, ok := m.selected(); ok && m.def.OnEdit != nil {
			return m, m.def.OnEdit(row)
		}
	case key.Matches(msg, m.keymap.Delete):
		if row, ok := m.selected(); ok && m.def.Deleter != nil {
			_ = m.flow.RequestDelete(row)
		}
	}

	return m, nil
}

// handlePick resolves a digit in the column picker.
func (m ListModel[T]) handlePick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.picking = pickNone
		return m, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
	default:
		return m, nil
	}
	idx := int(msg.Runes[0] - '1')

	switch m.picking {
	case pickFilter:
		if idx < len(m.filters) {
			m.picking = pickNone
			cmd := m.openFilter(idx)
			return m, cmd
		}
	case pickClear:
		if idx < len(m.filters) && m.filters[idx].Active() {
			m.picking = pickNone
			req, err := m.filters[idx].Clear()
			if err != nil {
				return m, nil
			}
			return m.page(req)
		}
	case pickSort:
		cols := m.sortable()
		if idx < len(cols) {
			m.picking = pickNone
			return m.page(m.cycleSort(cols[idx].Sort))
		}
	}
	return m, nil
}

// sortable returns the columns that can order the list.
func (m ListModel[T]) sortable() []Column[T] {
	var cols []Column[T]
	for _, c := range m.def.Columns {
		if c.Sort != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

// cycleSort moves field through ascending, descending and unsorted.
func (m ListModel[T]) cycleSort(field string) listview.Request {
	cur := m.ctrl.Query().Sort
	switch {
	case cur == nil || cur.Field != field:
		return m.ctrl.SetSort(field, listview.Asc)
	case cur.Dir == listview.Asc:
		return m.ctrl.SetSort(field, listview.Desc)
	default:
		return m.ctrl.SetSort("", listview.Asc)
	}
}

// handleFilterEdit drives the open column filter editor.
func (m ListModel[T]) handleFilterEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.filters[m.editing]
	switch {
	case key.Matches(msg, m.keymap.ApplyFilter):
		f.SetDraft(m.filterInput.Value())
		req, err := f.Apply()
		if err != nil {
			m.filterErr = err.Error()
			return m, nil
		}
		m.closeEditor()
		return m.page(req)
	case key.Matches(msg, m.keymap.ClearFilter):
		req, err := f.Clear()
		if err != nil {
			m.filterErr = err.Error()
			return m, nil
		}
		m.closeEditor()
		return m.page(req)
	case key.Matches(msg, m.keymap.CancelFilter):
		f.Cancel()
		m.closeEditor()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	f.SetDraft(m.filterInput.Value())
	return m, cmd
}

func (m *ListModel[T]) openFilter(idx int) tea.Cmd {
	f := m.filters[idx]
	f.Open()
	m.editing = idx
	m.filterErr = ""
	m.filterInput.Prompt = f.Label() + ": "
	m.filterInput.Placeholder = f.Placeholder()
	m.filterInput.SetValue(f.Draft())
	m.filterInput.CursorEnd()
	return m.filterInput.Focus()
}

func (m *ListModel[T]) closeEditor() {
	m.editing = -1
	m.filterErr = ""
	m.filterInput.Blur()
	m.filterInput.SetValue("")
}

// page runs a request that changes the visible page and resets the cursor.
func (m ListModel[T]) page(req listview.Request) (tea.Model, tea.Cmd) {
	if req == nil {
		return m, nil
	}
	m.cursor = 0
	return m, m.run(req)
}

func (m ListModel[T]) nextPageSize() int {
	sizes := m.ctrl.Config().PageSizes
	i := slices.Index(sizes, m.ctrl.Query().PageSize)
	return sizes[(i+1)%len(sizes)]
}

func (m ListModel[T]) confirmDelete() tea.Cmd {
	flow, ctx, name := m.flow, m.ctx, m.def.Screen.Key
	return func() tea.Msg {
		return deleteDoneMsg{name: name, err: flow.Confirm(ctx)}
	}
}

func (m ListModel[T]) selected() (T, bool) {
	rows := m.ctrl.State().Rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		var zero T
		return zero, false
	}
	return rows[m.cursor], true
}

func (m *ListModel[T]) clampCursor() {
	n := len(m.ctrl.State().Rows())
	if m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

// View renders the list screen.
func (m ListModel[T]) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	var sections []string
	sections = append(sections, m.renderHeader(width))
	if chips := m.renderActiveFilters(); chips != "" {
		sections = append(sections, chips)
	}

	if m.picking != pickNone {
		sections = append(sections, m.renderColumnPicker())
	}
	if m.editing >= 0 {
		line := m.filterInput.View()
		if m.filterErr != "" {
			line += "  " + ErrorStyle.Render(m.filterErr)
		}
		sections = append(sections, line)
	}

	bodyHeight := height - listChromeLines
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	var body string
	switch {
	case m.showHelp:
		body = m.help.Overlay(width)
	case m.flow.Phase() != mutation.PhaseIdle:
		body = lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, m.renderConfirm(width))
	default:
		body = m.renderBody(width, bodyHeight)
	}
	sections = append(sections, body)

	sections = append(sections, dimStyle.Render(m.ctrl.Summary()))
	sections = append(sections, m.help.Bar(width))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the title on the left and page position on the right.
func (m ListModel[T]) renderHeader(width int) string {
	title := m.def.Screen.Title

	status := []string{}
	if m.ctrl.State().Status == listview.StatusLoading {
		status = append(status, m.spinner.View()+"loading")
	}
	status = append(status, m.ctrl.PageLabel())
	status = append(status, fmt.Sprintf("%d per page", m.ctrl.Query().PageSize))
	right := strings.Join(status, " | ")

	padding := width - lipgloss.Width(title) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	return headerStyle.Render(title) + strings.Repeat(" ", padding) + dimStyle.Render(right)
}

func (m ListModel[T]) renderActiveFilters() string {
	var chips []string
	for _, f := range m.filters {
		if f.Active() {
			chips = append(chips, activeFilterStyle.Render(f.Label()+": "+m.ctrl.Filter(f.Field())))
		}
	}
	return strings.Join(chips, " ")
}

func (m ListModel[T]) renderColumnPicker() string {
	var (
		title string
		parts []string
	)
	switch m.picking {
	case pickSort:
		title = "SORT"
		for i, c := range m.sortable() {
			parts = append(parts, fmt.Sprintf("[%d] %s", i+1, c.Title))
		}
	case pickClear:
		title = "CLEAR"
		for i, f := range m.filters {
			if f.Active() {
				parts = append(parts, fmt.Sprintf("[%d] %s", i+1, f.Label()))
			}
		}
		if len(parts) == 0 {
			parts = append(parts, dimStyle.Render("no active filters"))
		}
	default:
		title = "FILTER"
		for i, f := range m.filters {
			parts = append(parts, fmt.Sprintf("[%d] %s", i+1, f.Label()))
		}
	}
	return activeFilterStyle.Render(title) + " " + strings.Join(parts, "  ") + dimStyle.Render("  esc: cancel")
}

func (m ListModel[T]) renderConfirm(width int) string {
	if m.flow.Phase() == mutation.PhaseDeleting {
		return overlayStyle.Render(m.spinner.View() + " Deleting...")
	}
	w := min(60, width-6)
	prompt := lipgloss.NewStyle().Width(w).Render(m.flow.Prompt())
	return overlayStyle.Render(prompt + "\n\n" + ErrorStyle.Render("[y] Delete") + "   " + dimStyle.Render("[n] Cancel"))
}

// renderBody renders the table or the loading, failure and empty states.
func (m ListModel[T]) renderBody(width, height int) string {
	state := m.ctrl.State()
	switch state.Status {
	case listview.StatusIdle, listview.StatusLoading:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.spinner.View()+" Loading...")
	case listview.StatusFailure:
		msg := ErrorStyle.Render(m.ctrl.Config().FailureMessage) + "\n" + dimStyle.Render("Press r to retry")
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, msg)
	}

	rows := state.Rows()
	lines := []string{m.renderTableHeader(), dimStyle.Render(strings.Repeat("─", min(width, m.tableWidth())))}
	if len(rows) == 0 {
		lines = append(lines, dimStyle.Render("No Rows To Show"))
	}

	// Keep the cursor in view
	start := 0
	visible := height - 2
	if visible < 1 {
		visible = 1
	}
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	for i := start; i < len(rows) && i < start+visible; i++ {
		line := m.renderRow(rows[i])
		if i == m.cursor {
			lines = append(lines, SelectedItemStyle.Render("> "+line))
		} else {
			lines = append(lines, NormalItemStyle.Render("  "+line))
		}
	}
	return strings.Join(lines, "\n")
}

func (m ListModel[T]) renderTableHeader() string {
	sort := m.ctrl.Query().Sort
	cells := make([]string, len(m.def.Columns))
	for i, c := range m.def.Columns {
		title := c.Title
		if _, ok := m.ctrl.Config().Policy(c.Field); ok && c.Field != "" {
			title += "▾"
		}
		if sort != nil && c.Sort != "" && c.Sort == sort.Field {
			if sort.Dir == listview.Desc {
				title += "↓"
			} else {
				title += "↑"
			}
		}
		cells[i] = fit(title, colWidth(c), c.Right)
	}
	return "  " + headerStyle.Render(strings.Join(cells, " "))
}

func (m ListModel[T]) renderRow(row T) string {
	cells := make([]string, len(m.def.Columns))
	for i, c := range m.def.Columns {
		cells[i] = fit(c.Value(row), colWidth(c), c.Right)
	}
	return strings.Join(cells, " ")
}

func (m ListModel[T]) tableWidth() int {
	w := 2
	for _, c := range m.def.Columns {
		w += colWidth(c) + 1
	}
	return w
}

func colWidth[T any](c Column[T]) int {
	if c.Width > 0 {
		return c.Width
	}
	return defaultColumnWidth
}

// fit pads or truncates s to exactly w cells.
func fit(s string, w int, right bool) string {
	r := []rune(s)
	if len(r) > w {
		if w <= 1 {
			return string(r[:w])
		}
		return string(r[:w-1]) + "…"
	}
	pad := strings.Repeat(" ", w-len(r))
	if right {
		return pad + s
	}
	return s + pad
}

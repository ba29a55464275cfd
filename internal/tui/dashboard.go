package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/posdash/internal/domain"
	"github.com/h0rv/posdash/internal/invoice"
	"golang.org/x/sync/errgroup"
)

var periodTitles = map[domain.SummaryPeriod]string{
	domain.PeriodWeek:      "Last 7 days",
	domain.PeriodTwoWeeks:  "Last 14 days",
	domain.PeriodMonth:     "This month",
	domain.PeriodLastMonth: "Last month",
}

type dashboardLoadedMsg struct {
	summary map[domain.SummaryPeriod]domain.SalesSummary
	points  []domain.ChartPoint
	err     error
}

// DashboardModel shows the sales summary cards and the daily revenue chart.
type DashboardModel struct {
	ctx     context.Context
	summary func(context.Context) (map[domain.SummaryPeriod]domain.SalesSummary, error)
	chart   func(context.Context) ([]domain.ChartPoint, error)
	url     string

	data    dashboardLoadedMsg
	loading bool
	spinner spinner.Model
	width   int
}

// NewDashboardModel creates the dashboard.
func NewDashboardModel(d *Deps) DashboardModel {
	return DashboardModel{
		ctx:     d.ctx(),
		summary: d.Client.SalesSummary,
		chart:   d.Client.ChartData,
		url:     d.Config.API.DashboardURL,
		loading: true,
		spinner: newEditorSpinner(),
	}
}

// Init loads the summary and chart.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(tea.WindowSize(), m.spinner.Tick, m.fetch())
}

// fetch loads both endpoints concurrently.
func (m DashboardModel) fetch() tea.Cmd {
	ctx, summary, chart := m.ctx, m.summary, m.chart
	return func() tea.Msg {
		var msg dashboardLoadedMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			s, err := summary(gctx)
			msg.summary = s
			return err
		})
		g.Go(func() error {
			p, err := chart(gctx)
			msg.points = p
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

// Update handles messages.
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case dashboardLoadedMsg:
		m.loading = false
		m.data = msg
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return m, back
		case "r":
			m.loading = true
			return m, m.fetch()
		case "o":
			if m.url != "" {
				_ = invoice.OpenURL(m.url)
			}
		}
	}
	return m, nil
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	width := m.width
	if width == 0 {
		width = 100
	}
	sections := []string{TitleStyle.Render("Dashboard")}

	switch {
	case m.loading && m.data.summary == nil && m.data.err == nil:
		sections = append(sections, m.spinner.View()+" Loading dashboard...")
	case m.data.err != nil:
		sections = append(sections,
			ErrorStyle.Render("Failed to load dashboard: "+domain.Detail(m.data.err)),
			dimStyle.Render("Press r to retry"))
	default:
		sections = append(sections, m.renderCards(width), "", m.renderChart(width))
		if m.loading {
			sections = append(sections, m.spinner.View()+" Refreshing...")
		}
	}
	sections = append(sections, HelpStyle.Render("r: refresh  o: open web dashboard  esc: back"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderCards(width int) string {
	cardWidth := max(22, width/len(domain.SummaryPeriods)-4)
	cards := make([]string, 0, len(domain.SummaryPeriods))
	for _, p := range domain.SummaryPeriods {
		s := m.data.summary[p]
		body := strings.Join([]string{
			headerStyle.Render(periodTitles[p]),
			labelStyle.Render("Revenue  ") + money(s.TotalRevenue),
			labelStyle.Render("Sales    ") + fmt.Sprintf("%d", s.Count),
			labelStyle.Render("Tax      ") + money(s.TotalTax),
			labelStyle.Render("Discount ") + money(s.TotalDiscount),
		}, "\n")
		cards = append(cards, panelStyle.Width(cardWidth).Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// renderChart draws one horizontal bar per day scaled to the largest total.
func (m DashboardModel) renderChart(width int) string {
	points := m.data.points
	if len(points) == 0 {
		return dimStyle.Render("No sales in the chart period")
	}
	peak := 0.0
	for _, p := range points {
		peak = max(peak, p.Total)
	}
	barWidth := max(10, width-28)
	lines := []string{headerStyle.Render("Daily revenue")}
	for _, p := range points {
		n := 0
		if peak > 0 {
			n = int(p.Total / peak * float64(barWidth))
		}
		bar := activeFilterStyle.Render(strings.Repeat("█", n))
		lines = append(lines, fmt.Sprintf("%-10s %s %s", day(p.Date), bar, money(p.Total)))
	}
	return strings.Join(lines, "\n")
}

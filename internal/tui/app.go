package tui

import (
	"context"
	"time"

	"crypto-weather/internal/domain"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ReportProvider supplies the latest weather report.
type ReportProvider interface {
	Current(ctx context.Context) (*domain.WeatherReport, error)
}

// CycleRunner runs a fresh analysis cycle on demand.
type CycleRunner interface {
	RunCycle(ctx context.Context) (*domain.WeatherReport, error)
}

// Services bundles everything the dashboard needs.
type Services struct {
	Reports  ReportProvider
	Runner   CycleRunner
	Username string
	Theme    string
}

type reportMsg struct {
	report *domain.WeatherReport
}

type errMsg struct {
	err error
}

// AppModel is the SSH dashboard: one screen showing the current
// condition, metrics, forecast, and alerts.
type AppModel struct {
	svc     Services
	styles  styles
	spinner spinner.Model

	report     *domain.WeatherReport
	err        error
	refreshing bool

	width  int
	height int
}

func NewAppModel(svc Services) *AppModel {
	st := newStyles(svc.Theme)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.spinner
	return &AppModel{
		svc:     svc,
		styles:  st,
		spinner: sp,
	}
}

func (m *AppModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchReport())
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			if m.svc.Runner != nil && !m.refreshing {
				m.refreshing = true
				return m, tea.Batch(m.spinner.Tick, m.runCycle())
			}
			return m, m.fetchReport()
		}
		return m, nil

	case reportMsg:
		m.report = msg.report
		m.err = nil
		m.refreshing = false
		return m, nil

	case errMsg:
		m.err = msg.err
		m.refreshing = false
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *AppModel) fetchReport() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		report, err := m.svc.Reports.Current(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return reportMsg{report: report}
	}
}

func (m *AppModel) runCycle() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		report, err := m.svc.Runner.RunCycle(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return reportMsg{report: report}
	}
}

func (m *AppModel) View() string {
	header := m.styles.title.Render("CRYPTO WEATHER")
	if m.svc.Username != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Top,
			header, m.styles.faint.Render("  ~ "+m.svc.Username))
	}

	var body string
	switch {
	case m.refreshing:
		body = m.spinner.View() + " running a fresh analysis cycle..."
	case m.err != nil:
		body = m.styles.alert.Render("no report: "+m.err.Error()) +
			"\n\n" + m.styles.faint.Render("press r to retry")
	case m.report == nil:
		body = m.spinner.View() + " loading the latest report..."
	default:
		body = m.renderReport(m.report)
	}

	footer := m.styles.faint.Render("r refresh · q quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", footer)
}

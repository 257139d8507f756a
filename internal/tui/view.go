package tui

import (
	"fmt"
	"strings"

	"crypto-weather/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title   lipgloss.Style
	panel   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	alert   lipgloss.Style
	faint   lipgloss.Style
	spinner lipgloss.Style
}

func newStyles(theme string) styles {
	accent := lipgloss.Color("39")
	warn := lipgloss.Color("203")
	dim := lipgloss.Color("241")
	if theme == "light" {
		accent = lipgloss.Color("27")
		warn = lipgloss.Color("160")
		dim = lipgloss.Color("245")
	}
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		panel:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(dim).Padding(0, 1),
		label:   lipgloss.NewStyle().Foreground(dim),
		value:   lipgloss.NewStyle().Bold(true),
		alert:   lipgloss.NewStyle().Bold(true).Foreground(warn),
		faint:   lipgloss.NewStyle().Foreground(dim),
		spinner: lipgloss.NewStyle().Foreground(accent),
	}
}

func (m *AppModel) renderReport(r *domain.WeatherReport) string {
	condition := m.styles.panel.Render(fmt.Sprintf("%s  %s\n%s %s",
		r.Condition.Icon,
		m.styles.value.Render(r.Condition.Condition),
		m.styles.label.Render(r.Condition.Temperature),
		r.Condition.Description,
	))

	metrics := m.styles.panel.Render(strings.Join([]string{
		m.metricLine("Volatility", r.Metrics.Volatility),
		m.metricLine("Sentiment", r.Metrics.Sentiment),
		m.metricLine("Fear & Greed", r.Metrics.FearGreed),
		fmt.Sprintf("%s %s",
			m.styles.label.Render("Dominance"),
			m.styles.value.Render(fmt.Sprintf("BTC %.1f%% · ETH %.1f%%",
				r.Metrics.Dominance.BTC, r.Metrics.Dominance.ETH))),
		fmt.Sprintf("%s %s",
			m.styles.label.Render("Trends"),
			m.styles.value.Render(fmt.Sprintf("%d↑ %d↓ %d→",
				r.Metrics.Trends.Bullish, r.Metrics.Trends.Bearish, r.Metrics.Trends.Mixed))),
	}, "\n"))

	top := lipgloss.JoinHorizontal(lipgloss.Top, condition, " ", metrics)

	sections := []string{top, m.renderForecast(r)}

	if len(r.Alerts) > 0 {
		lines := make([]string, 0, len(r.Alerts))
		for _, alert := range r.Alerts {
			lines = append(lines, m.styles.alert.Render(alert))
		}
		sections = append(sections, m.styles.panel.Render(strings.Join(lines, "\n")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *AppModel) metricLine(name string, value float64) string {
	return fmt.Sprintf("%s %s",
		m.styles.label.Render(fmt.Sprintf("%-12s", name)),
		m.styles.value.Render(fmt.Sprintf("%5.1f / 100", value)))
}

func (m *AppModel) renderForecast(r *domain.WeatherReport) string {
	if len(r.Forecast) == 0 {
		return ""
	}

	cells := make([]string, 0, len(r.Forecast))
	for _, day := range r.Forecast {
		cells = append(cells, m.styles.panel.Render(fmt.Sprintf("%s\n%s\n%s",
			m.styles.label.Render(day.Day), day.Icon, day.Desc)))
	}

	title := m.styles.label.Render("5-day forecast")
	if r.AIForecastApplied {
		title += m.styles.faint.Render(" (AI)")
	}
	return lipgloss.JoinVertical(lipgloss.Left, title,
		lipgloss.JoinHorizontal(lipgloss.Top, cells...))
}

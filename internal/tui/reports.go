package tui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/newlife/internal/timecalc"
	"github.com/sadopc/newlife/internal/tracker"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportWeekly
)

// daySummary is the tracked time of one project on one date.
type daySummary struct {
	date    string
	project tracker.Project
	seconds int64
	count   int
}

type reportsModel struct {
	width  int
	height int

	st tracker.State
	// now is the time the summaries were computed at; ticks do not rebuild
	// the chart.
	now time.Time

	mode      reportMode
	offset    int // 7-day blocks or weeks back from today (0 = current)
	summaries []daySummary

	chart barchart.Model
}

func newReportsModel(st tracker.State, now time.Time) reportsModel {
	r := reportsModel{
		st:    st,
		now:   now,
		chart: barchart.New(60, 12),
	}
	r.rebuild()
	return r
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.buildChart()
}

func (r *reportsModel) setState(st tracker.State, now time.Time) {
	r.st = st
	r.now = now
	r.rebuild()
}

// dateRange returns the first day of the window and the number of days.
func (r reportsModel) dateRange() (string, int) {
	today, _ := timecalc.ParseDate(timecalc.Today(r.now))

	switch r.mode {
	case reportWeekly:
		weekday := int(today.Weekday())
		if weekday == int(time.Sunday) {
			weekday = 7
		}
		start := today.AddDate(0, 0, -(weekday - 1)-7*r.offset)
		return timecalc.FormatDate(start), 7
	default:
		start := today.AddDate(0, 0, -6-7*r.offset)
		return timecalc.FormatDate(start), 7
	}
}

func (r reportsModel) dates() []string {
	first, n := r.dateRange()
	out := make([]string, 0, n)
	for i := range n {
		d, err := timecalc.AddDays(first, i)
		if err != nil {
			break
		}
		out = append(out, d)
	}
	return out
}

// summarize groups the window's check-ins by date and project.
func summarize(st tracker.State, dates []string, now time.Time) []daySummary {
	inRange := make(map[string]bool, len(dates))
	for _, d := range dates {
		inRange[d] = true
	}

	type k struct{ date, project string }
	byKey := make(map[k]*daySummary)
	for _, c := range st.CheckIns {
		if !inRange[c.Date] {
			continue
		}
		id := k{c.Date, c.ProjectID}
		s, ok := byKey[id]
		if !ok {
			s = &daySummary{date: c.Date, project: st.ProjectOrPlaceholder(c.ProjectID)}
			byKey[id] = s
		}
		s.seconds += c.DisplayDuration(now)
		s.count++
	}

	out := make([]daySummary, 0, len(byKey))
	for _, s := range byKey {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b daySummary) int {
		if c := cmp.Compare(a.date, b.date); c != 0 {
			return c
		}
		return cmp.Compare(a.project.Name, b.project.Name)
	})
	return out
}

func (r *reportsModel) rebuild() {
	r.summaries = summarize(r.st, r.dates(), r.now)
	r.buildChart()
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.PrevDay):
			r.offset++
			r.rebuild()
		case key.Matches(msg, keys.Right), key.Matches(msg, keys.NextDay):
			if r.offset > 0 {
				r.offset--
			}
			r.rebuild()
		case key.Matches(msg, keys.Enter):
			if r.mode == reportDaily {
				r.mode = reportWeekly
			} else {
				r.mode = reportDaily
			}
			r.offset = 0
			r.rebuild()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := max(20, r.width-8)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, date := range r.dates() {
		label := date
		if t, err := timecalc.ParseDate(date); err == nil {
			label = t.Format("Mon 02")
		}

		var values []barchart.BarValue
		for _, s := range r.summaries {
			if s.date != date || s.seconds == 0 {
				continue
			}
			values = append(values, barchart.BarValue{
				Name:  s.project.Name,
				Value: float64(s.seconds) / 3600.0,
				Style: lipgloss.NewStyle().Foreground(lipgloss.Color(s.project.Color)),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{Label: label, Values: values})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	dailyTab := inactiveTabStyle.Render("Last 7 days")
	weeklyTab := inactiveTabStyle.Render("Week")
	if r.mode == reportDaily {
		dailyTab = activeTabStyle.Render("Last 7 days")
	} else {
		weeklyTab = activeTabStyle.Render("Week")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)

	dates := r.dates()
	dateLabel := ""
	if len(dates) > 0 {
		dateLabel = mutedStyle.Render(fmt.Sprintf("%s – %s", dates[0], dates[len(dates)-1]))
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", dateLabel,
	)

	nav := mutedStyle.Render("  ←/→: navigate  enter: switch range  (hours per day)")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", r.renderLegend(), "", r.renderSummaryTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderSummaryTable(w int) string {
	if len(r.summaries) == 0 {
		return mutedStyle.Render("  No check-ins in this period")
	}

	rows := []string{
		mutedStyle.Render(fmt.Sprintf("  %-12s %-22s %10s %8s", "Date", "Project", "Duration", "Entries")),
		mutedStyle.Render("  " + strings.Repeat("─", max(0, min(w-6, 56)))),
	}
	for _, s := range r.summaries {
		rows = append(rows, fmt.Sprintf("  %-12s %s %-20s %10s %8d",
			s.date, dot(s.project.Color), clip(s.project.Icon+" "+s.project.Name, 20),
			timecalc.FormatClockDuration(s.seconds), s.count,
		))
	}
	return strings.Join(rows, "\n")
}

func (r reportsModel) renderLegend() string {
	seen := make(map[string]bool)
	var items []string
	for _, s := range r.summaries {
		if seen[s.project.ID] || s.seconds == 0 {
			continue
		}
		seen[s.project.ID] = true
		items = append(items, fmt.Sprintf("%s %s", dot(s.project.Color), s.project.Name))
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}

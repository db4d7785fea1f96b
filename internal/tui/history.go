package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/sadopc/newlife/internal/timecalc"
	"github.com/sadopc/newlife/internal/tracker"
)

type historyModel struct {
	width  int
	height int

	st     tracker.State
	now    time.Time
	offset int // first visible line

	md *markdown
}

// markdown renders journal entries, caching output per width and content.
type markdown struct {
	width    int
	renderer *glamour.TermRenderer
	cache    map[string]string
}

func newMarkdown() *markdown {
	return &markdown{cache: make(map[string]string)}
}

func (m *markdown) render(content string, width int) string {
	width = max(20, width)
	if m.renderer == nil || m.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content
		}
		m.renderer = r
		m.width = width
		clear(m.cache)
	}
	if out, ok := m.cache[content]; ok {
		return out
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	out = strings.Trim(out, "\n")
	m.cache[content] = out
	return out
}

func newHistoryModel(st tracker.State, now time.Time) historyModel {
	return historyModel{st: st, now: now, md: newMarkdown()}
}

func (h *historyModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
}

func (h *historyModel) setState(st tracker.State, now time.Time) {
	h.st = st
	h.now = now
}

func (h historyModel) pageSize() int {
	return max(1, h.height-6)
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			h.offset = max(0, h.offset-3)
		case tea.MouseButtonWheelDown:
			h.offset += 3
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			h.offset = max(0, h.offset-1)
		case key.Matches(msg, keys.Down):
			h.offset++
		case key.Matches(msg, keys.PageUp):
			h.offset = max(0, h.offset-h.pageSize())
		case key.Matches(msg, keys.PageDown):
			h.offset += h.pageSize()
		}
	}
	return h, nil
}

func (h historyModel) lines(w int) []string {
	groups := h.st.History()
	if len(groups) == 0 {
		return []string{mutedStyle.Render("No history yet. Check-ins and journal entries show up here by day.")}
	}

	var out []string
	for _, g := range groups {
		var total int64
		for _, c := range g.CheckIns {
			total += c.DisplayDuration(h.now)
		}
		head := titleStyle.Render(formatDayLabel(g.Date))
		if d, err := timecalc.ParseDate(g.Date); err == nil {
			if n := timecalc.DaysBetween(h.st.Settings.StartDate.Local(), d); n >= 0 {
				head += "  " + highlightStyle.Render(fmt.Sprintf("Day %d", n))
			}
		}
		if total > 0 {
			head += "  " + mutedStyle.Render(timecalc.FormatDuration(total, false))
		}
		out = append(out, head)

		for _, c := range g.CheckIns {
			p := h.st.ProjectOrPlaceholder(c.ProjectID)
			dur := timerBadge(c, h.now)
			out = append(out, fmt.Sprintf("  %s %s %s  %s", dot(p.Color), p.Icon, clip(c.Text, w-30), dur))
		}
		if g.Journal != nil && strings.TrimSpace(g.Journal.Content) != "" {
			out = append(out, mutedStyle.Render("  📓 Journal"))
			for _, line := range strings.Split(h.md.render(g.Journal.Content, w-4), "\n") {
				out = append(out, "  "+line)
			}
		}
		out = append(out, "")
	}
	return out
}

func (h historyModel) view() string {
	w := h.width - 4
	lines := h.lines(w - 4)

	page := h.pageSize()
	offset := max(0, min(h.offset, len(lines)-page))
	end := min(len(lines), offset+page)

	title := titleStyle.Render("History")
	if len(lines) > page {
		title += "  " + mutedStyle.Render(fmt.Sprintf("%d–%d of %d", offset+1, end, len(lines)))
	}
	body := append([]string{title, ""}, lines[offset:end]...)
	return panelStyle.Width(w).Render(strings.Join(body, "\n"))
}

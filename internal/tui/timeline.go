package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/newlife/internal/timecalc"
	"github.com/sadopc/newlife/internal/timeline"
	"github.com/sadopc/newlife/internal/tracker"
)

const (
	dayRows = timeline.DayMinutes / timeline.Snap
	// firstRowY is the line of the first hour row inside the view: panel
	// border, padding, title and a blank line sit above it.
	firstRowY = 4
	// scrollHomeRow is 07:00, where the timeline opens.
	scrollHomeRow = 7 * 60 / timeline.Snap
	gutterWidth   = 7
)

// rowMinute samples a row at its midpoint so a press floors onto the row's
// own slot and a drag ceils past it.
func rowMinute(row int) int {
	return row*timeline.Snap + timeline.Snap/2
}

// timelinePickedMsg carries a finished selection to the log form.
type timelinePickedMsg struct {
	date  string
	start string
	end   string
}

type timelineModel struct {
	width  int
	height int

	st   tracker.State
	now  time.Time
	date string

	offset int
	cursor int
	sel    timeline.Selection
}

func newTimelineModel(st tracker.State, now time.Time) timelineModel {
	return timelineModel{
		st:     st,
		now:    now,
		date:   timecalc.Today(now),
		offset: scrollHomeRow,
		cursor: scrollHomeRow,
	}
}

func (t *timelineModel) setSize(w, h int) {
	t.width = w
	t.height = h
	t.clampOffset()
}

func (t *timelineModel) setState(st tracker.State, now time.Time) {
	t.st = st
	t.now = now
}

func (t timelineModel) visibleRows() int {
	return max(4, t.height-8)
}

func (t *timelineModel) clampOffset() {
	t.offset = max(0, min(t.offset, dayRows-t.visibleRows()))
}

// scrollTo keeps row on screen.
func (t *timelineModel) scrollTo(row int) {
	if row < t.offset {
		t.offset = row
	} else if row >= t.offset+t.visibleRows() {
		t.offset = row - t.visibleRows() + 1
	}
	t.clampOffset()
}

// rowAt maps a view-relative y to a day row. ok is false off the grid.
func (t timelineModel) rowAt(y int) (row int, ok bool) {
	i := y - firstRowY
	if i < 0 || i >= t.visibleRows() {
		return 0, false
	}
	row = t.offset + i
	return row, row < dayRows
}

func (t timelineModel) update(msg tea.Msg) (timelineModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		return t.updateMouse(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			t.moveCursor(t.cursor - 1)
		case key.Matches(msg, keys.Down):
			t.moveCursor(t.cursor + 1)
		case key.Matches(msg, keys.PageUp):
			t.offset -= t.visibleRows()
			t.clampOffset()
		case key.Matches(msg, keys.PageDown):
			t.offset += t.visibleRows()
			t.clampOffset()
		case key.Matches(msg, keys.Mark):
			if !t.sel.Active() {
				t.sel.Press(rowMinute(t.cursor))
				return t, nil
			}
			return t.release()
		case key.Matches(msg, keys.Back):
			t.sel.Cancel()
		case key.Matches(msg, keys.PrevDay):
			t.shiftDate(-1)
		case key.Matches(msg, keys.NextDay):
			t.shiftDate(1)
		case key.Matches(msg, keys.Today):
			t.date = timecalc.Today(t.now)
			t.sel.Cancel()
		}
	}
	return t, nil
}

func (t *timelineModel) moveCursor(row int) {
	t.cursor = max(0, min(row, dayRows-1))
	t.scrollTo(t.cursor)
	t.sel.Move(rowMinute(t.cursor))
}

func (t *timelineModel) shiftDate(days int) {
	if d, err := timecalc.AddDays(t.date, days); err == nil {
		t.date = d
		t.sel.Cancel()
	}
}

func (t timelineModel) updateMouse(msg tea.MouseMsg) (timelineModel, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		t.offset--
		t.clampOffset()
		return t, nil
	case tea.MouseButtonWheelDown:
		t.offset++
		t.clampOffset()
		return t, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return t, nil
		}
		if row, ok := t.rowAt(msg.Y); ok {
			t.cursor = row
			t.sel.Press(rowMinute(row))
		}
	case tea.MouseActionMotion:
		if !t.sel.Active() {
			return t, nil
		}
		// Dragging past the edge scrolls the grid.
		if msg.Y < firstRowY {
			t.offset--
			t.clampOffset()
		} else if msg.Y >= firstRowY+t.visibleRows() {
			t.offset++
			t.clampOffset()
		}
		y := max(firstRowY, min(msg.Y, firstRowY+t.visibleRows()-1))
		if row, ok := t.rowAt(y); ok {
			t.cursor = row
			t.sel.Move(rowMinute(row))
		}
	case tea.MouseActionRelease:
		if row, ok := t.rowAt(msg.Y); ok {
			t.sel.Move(rowMinute(row))
		}
		return t.release()
	}
	return t, nil
}

func (t timelineModel) release() (timelineModel, tea.Cmd) {
	iv, ok := t.sel.Release()
	if !ok {
		return t, nil
	}
	start, end := iv.Clock()
	date := t.date
	return t, func() tea.Msg { return timelinePickedMsg{date: date, start: start, end: end} }
}

type timelineBlock struct {
	timeline.Block
	checkIn tracker.CheckIn
	project tracker.Project
}

func (t timelineModel) blocks() (blocks []timelineBlock, untimed int) {
	byID := make(map[string]tracker.CheckIn)
	var entries []timeline.Entry
	for _, c := range t.st.CheckInsOn(t.date) {
		if !c.Timed() {
			untimed++
			continue
		}
		iv, err := timeline.FromClock(c.StartTime, c.EndTime)
		if err != nil {
			untimed++
			continue
		}
		byID[c.ID] = c
		entries = append(entries, timeline.Entry{ID: c.ID, Interval: iv})
	}
	for _, b := range timeline.Layout(entries) {
		c := byID[b.ID]
		blocks = append(blocks, timelineBlock{Block: b, checkIn: c, project: t.st.ProjectOrPlaceholder(c.ProjectID)})
	}
	return blocks, untimed
}

func (t timelineModel) view() string {
	w := t.width - 4
	lanesWidth := max(10, w-4-gutterWidth)
	blocks, untimed := t.blocks()

	header := titleStyle.Render("Timeline  "+formatDayLabel(t.date)) + "  "
	if t.sel.Active() {
		start, end := t.sel.Preview().Clock()
		header += selectionStyle.Render(fmt.Sprintf(" %s–%s ", start, end))
	} else if untimed > 0 {
		header += mutedStyle.Render(fmt.Sprintf("%d check-ins without a time", untimed))
	}

	rows := []string{header, ""}
	last := min(dayRows, t.offset+t.visibleRows())
	for row := t.offset; row < last; row++ {
		rows = append(rows, t.renderRow(row, blocks, lanesWidth))
	}
	rows = append(rows, "", mutedStyle.Render("  drag or space: select  ↑/↓: move  [ ]: day  esc: cancel"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (t timelineModel) renderRow(row int, blocks []timelineBlock, width int) string {
	minute := row * timeline.Snap
	label := ""
	if minute%60 == 0 {
		label = timecalc.FormatClock(minute)
	}
	gutter := hourLabelStyle.Render(label)
	switch {
	case row == t.cursor:
		gutter = cursorRowStyle.Width(6).Render("▸ " + strings.TrimSpace(label))
	case t.isNowRow(row):
		gutter = accentStyle.Width(6).Render("now")
	}

	slot := timeline.Interval{Start: minute, End: minute + timeline.Snap}
	if t.sel.Active() && t.sel.Preview().Overlaps(slot) {
		return gutter + " " + selectionStyle.Width(width).Render("")
	}

	var inRow []timelineBlock
	for _, b := range blocks {
		if b.Interval.Overlaps(slot) {
			inRow = append(inRow, b)
		}
	}
	if len(inRow) == 0 {
		line := "┈"
		if minute%60 != 0 {
			line = " "
		}
		return gutter + " " + gridStyle.Render(strings.Repeat(line, width))
	}

	lanes := max(1, inRow[0].Lanes)
	laneWidth := width / lanes
	segments := make([]string, lanes)
	for i := range segments {
		segments[i] = strings.Repeat(" ", laneWidth)
	}
	for _, b := range inRow {
		if b.Lane >= lanes {
			continue
		}
		text := ""
		if b.Interval.Start >= minute {
			text = " " + b.project.Icon + " " + b.checkIn.Text
		} else if b.Interval.Start >= minute-timeline.Snap {
			text = "   " + b.checkIn.StartTime + "–" + b.checkIn.EndTime
		}
		segments[b.Lane] = blockStyle(b.project.Color).Width(laneWidth).Render(clip(text, laneWidth-1))
	}
	return gutter + " " + lipgloss.JoinHorizontal(lipgloss.Top, segments...)
}

func (t timelineModel) isNowRow(row int) bool {
	if t.date != timecalc.Today(t.now) {
		return false
	}
	local := t.now.Local()
	return (local.Hour()*60+local.Minute())/timeline.Snap == row
}

package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"

	"github.com/sadopc/newlife/internal/gateway"
	"github.com/sadopc/newlife/internal/timecalc"
	"github.com/sadopc/newlife/internal/tracker"
)

// viewState represents the currently active view.
type viewState int

const (
	viewLog viewState = iota
	viewTimeline
	viewHistory
	viewReports
	viewJourney
)

var viewNames = []string{"Log", "Timeline", "History", "Reports", "Journey"}

// --- Messages ---

// stateChangedMsg follows every successful mutation; the app re-reads the
// service state and hands it to every view.
type stateChangedMsg struct {
	status string
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type categorizedMsg struct {
	checkIn *tracker.CheckIn
	res     tracker.Resolution
	err     error
}

type suggestionsMsg struct {
	suggestions []gateway.Suggestion
}

// syncedMsg reports a periodic re-read of storage.
type syncedMsg struct {
	changed bool
	err     error
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// mutate runs fn off the event loop and reports the outcome as a message.
func mutate(done string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return stateChangedMsg{status: done}
	}
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

// clip shortens s to w cells, marking the cut with an ellipsis.
func clip(s string, w int) string {
	if w <= 1 {
		return ""
	}
	return truncate.StringWithTail(s, uint(w), "…")
}

func formatDayLabel(date string) string {
	t, err := timecalc.ParseDate(date)
	if err != nil {
		return date
	}
	return t.Format("Mon, Jan 02 2006")
}

// progressBar draws a fixed-width bar for a 0..100 value.
func progressBar(value, width int) string {
	value = max(0, min(100, value))
	filled := value * width / 100
	return successStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
}

func aggregateLabel(st tracker.State, p tracker.Project) string {
	v, ok := st.Aggregate(p.ID)
	if !ok {
		return ""
	}
	if p.TrackingMode == tracker.ModeProgress {
		return progressBar(v, 10) + " " + strconv.Itoa(v) + "%"
	}
	return fmt.Sprintf("%d days", v)
}

func validateClock(s string) error {
	if s == "" {
		return nil
	}
	_, err := timecalc.ParseClock(s)
	return err
}

func validateDate(s string) error {
	_, err := timecalc.ParseDate(s)
	return err
}

func validateProgress(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("progress must be a number")
	}
	return nil
}

func parseProgress(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &v
}

// parseHMS reads "H:MM:SS", "H:MM" or a bare number of minutes.
func parseHMS(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("duration %q: want H:MM:SS", s)
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("duration %q: want H:MM:SS", s)
		}
		nums[i] = n
	}
	switch len(nums) {
	case 1:
		return timecalc.FromHMS(0, nums[0], 0), nil
	case 2:
		return timecalc.FromHMS(nums[0], nums[1], 0), nil
	default:
		return timecalc.FromHMS(nums[0], nums[1], nums[2]), nil
	}
}

func validateHMS(s string) error {
	_, err := parseHMS(s)
	return err
}

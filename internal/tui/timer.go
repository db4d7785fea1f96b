package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/newlife/internal/timecalc"
	"github.com/sadopc/newlife/internal/tracker"
)

// timerBadge renders a check-in's duration. Running timers tick with the
// clock; the value shown is derived on every render and never stored.
func timerBadge(c tracker.CheckIn, now time.Time) string {
	secs := c.DisplayDuration(now)
	if c.Running() {
		return timerRunningStyle.Render("● " + timecalc.FormatDuration(secs, true))
	}
	if secs == 0 {
		return mutedStyle.Render("–")
	}
	return highlightStyle.Render(timecalc.FormatDuration(secs, false))
}

// runningIndicator summarises open timers for the footer.
func runningIndicator(st tracker.State, now time.Time) string {
	running := st.Running()
	switch len(running) {
	case 0:
		return ""
	case 1:
		c := running[0]
		p := st.ProjectOrPlaceholder(c.ProjectID)
		return successStyle.Render(fmt.Sprintf(" ● %s %s", p.Icon, timecalc.FormatClockDuration(c.DisplayDuration(now))))
	}
	var total int64
	for _, c := range running {
		total += c.DisplayDuration(now)
	}
	return successStyle.Render(fmt.Sprintf(" ● %d timers %s", len(running), timecalc.FormatClockDuration(total)))
}

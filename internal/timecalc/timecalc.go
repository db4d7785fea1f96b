// Package timecalc holds the elapsed-time arithmetic behind check-in timers
// and the calendar/clock helpers shared by the model and the views.
//
// Nothing here reads the wall clock: every function takes "now" explicitly,
// so a running timer is always derived at read time and never stored as a
// ticking value.
package timecalc

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DateLayout is the timezone-naive calendar day format used by check-ins and journals.
	DateLayout = "2006-01-02"
	// DayMinutes is the length of the timeline axis.
	DayMinutes = 24 * 60
)

var (
	ErrInvalidDate  = errors.New("invalid date, want YYYY-MM-DD")
	ErrInvalidClock = errors.New("invalid time, want HH:MM")
)

// Elapsed returns whole seconds between since and now. A clock that moved
// backwards yields 0 rather than a negative value.
func Elapsed(since, now time.Time) int64 {
	d := now.Sub(since)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

// DisplayDuration is the duration to show for a check-in: the committed
// seconds plus the running segment, if any.
func DisplayDuration(durationSeconds int64, activeSince *time.Time, now time.Time) int64 {
	if activeSince == nil {
		return durationSeconds
	}
	return durationSeconds + Elapsed(*activeSince, now)
}

// Toggle starts or stops a timer segment. Stopping commits the running
// segment into the returned duration and clears the start instant; starting
// leaves the duration untouched.
func Toggle(durationSeconds int64, activeSince *time.Time, now time.Time) (int64, *time.Time) {
	if activeSince != nil {
		return durationSeconds + Elapsed(*activeSince, now), nil
	}
	started := now
	return durationSeconds, &started
}

// Stop commits a running segment. Stopping a stopped timer is a no-op.
func Stop(durationSeconds int64, activeSince *time.Time, now time.Time) (int64, *time.Time) {
	if activeSince == nil {
		return durationSeconds, nil
	}
	return Toggle(durationSeconds, activeSince, now)
}

// FromHMS converts a user-supplied hours/minutes/seconds triple into seconds.
// Negative components count as zero.
func FromHMS(h, m, s int) int64 {
	return int64(max(h, 0))*3600 + int64(max(m, 0))*60 + int64(max(s, 0))
}

// SplitHMS is the inverse of FromHMS.
func SplitHMS(seconds int64) (h, m, s int) {
	if seconds < 0 {
		seconds = 0
	}
	return int(seconds / 3600), int((seconds % 3600) / 60), int(seconds % 60)
}

// FormatDuration formats seconds as "1h 40m", "45m" or "30s". A running timer
// always shows seconds ("1h 40m 3s", "0m 12s").
func FormatDuration(seconds int64, running bool) string {
	h, m, s := SplitHMS(seconds)
	if running {
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		return fmt.Sprintf("%dm %ds", m, s)
	}
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatClockDuration formats seconds as HH:MM:SS.
func FormatClockDuration(seconds int64) string {
	h, m, s := SplitHMS(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatDate returns the calendar day of t in its own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the calendar day of now in local time.
func Today(now time.Time) string {
	return FormatDate(now.Local())
}

// ParseDate validates a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// AddDays shifts a YYYY-MM-DD date by n days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// DaysBetween returns the number of whole calendar days from a to b
// (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

// ParseClock converts "HH:MM" into minutes since midnight. "24:00" is
// accepted as the end of the day.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' || !isDigits(s[:2]) || !isDigits(s[3:]) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return h*60 + m, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatClock converts minutes since midnight into "HH:MM".
func FormatClock(minutes int) string {
	minutes = min(max(minutes, 0), DayMinutes)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

package tracker

import (
	"errors"
	"fmt"
	"time"
)

// TrackingMode governs how a project's check-ins are aggregated for display.
// The zero value means no mode: the project only shows timers/durations.
type TrackingMode string

const (
	ModeNone     TrackingMode = ""
	ModeProgress TrackingMode = "progress"
	ModeCounter  TrackingMode = "counter"
)

// ParseMode accepts "none", "progress" and "counter".
func ParseMode(s string) (TrackingMode, error) {
	switch s {
	case "", "none", "timer":
		return ModeNone, nil
	case string(ModeProgress):
		return ModeProgress, nil
	case string(ModeCounter):
		return ModeCounter, nil
	}
	return ModeNone, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func (m TrackingMode) String() string {
	if m == ModeNone {
		return "none"
	}
	return string(m)
}

// Placeholder values used when a check-in cannot be attached to a live project.
const (
	UncategorizedID   = "general"
	UncategorizedName = "Uncategorized"
	DefaultIcon       = "🎯"
	DefaultNewName    = "General"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrCheckInNotFound = errors.New("check-in not found")
	ErrEmptyText       = errors.New("text is empty")
	ErrEmptyName       = errors.New("name is empty")
	ErrInvalidMode     = errors.New("invalid tracking mode")
)

type Project struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Icon         string       `json:"emoji"`
	Color        string       `json:"color,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	TrackingMode TrackingMode `json:"trackingMode,omitempty"`
}

type CheckIn struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Text      string    `json:"text"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Timestamp time.Time `json:"timestamp"`
	Progress  *int      `json:"progress,omitempty"`
	StartTime string    `json:"startTime,omitempty"` // HH:MM
	EndTime   string    `json:"endTime,omitempty"`   // HH:MM
	// DurationSeconds is the committed elapsed time; a running segment is
	// added on read from TimerActiveSince.
	DurationSeconds  int64      `json:"durationSeconds,omitempty"`
	TimerActiveSince *time.Time `json:"timerActiveSince,omitempty"`
}

// Running reports whether the check-in has an open timer segment.
func (c CheckIn) Running() bool {
	return c.TimerActiveSince != nil
}

// ProgressOrZero returns the stored progress, or 0 when unset.
func (c CheckIn) ProgressOrZero() int {
	if c.Progress == nil {
		return 0
	}
	return *c.Progress
}

// Timed reports whether the check-in was placed on the timeline.
func (c CheckIn) Timed() bool {
	return c.StartTime != "" && c.EndTime != ""
}

type DailyJournal struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WidgetSettings describes the reference event the day counter counts from.
type WidgetSettings struct {
	EventName string    `json:"eventName"`
	StartDate time.Time `json:"startDate"`
}

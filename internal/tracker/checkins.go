package tracker

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sadopc/newlife/internal/timecalc"
)

// NewCheckIn carries the caller-supplied fields of a check-in. Date defaults
// to the local day of now. StartTime and EndTime are set together or not at
// all.
type NewCheckIn struct {
	ProjectID string
	Text      string
	Date      string
	Progress  *int
	StartTime string
	EndTime   string
}

// TimerPatch selects what UpdateCheckIn does with a running timer.
type TimerPatch int

const (
	TimerKeep TimerPatch = iota
	// TimerClear drops the running segment without committing it.
	TimerClear
)

// CheckInPatch is a partial update; nil fields are left alone.
type CheckInPatch struct {
	Text            *string
	Progress        *int
	StartTime       *string
	EndTime         *string
	DurationSeconds *int64
	Timer           TimerPatch
}

// DisplayDuration is the committed duration plus the running segment.
func (c CheckIn) DisplayDuration(now time.Time) int64 {
	return timecalc.DisplayDuration(c.DurationSeconds, c.TimerActiveSince, now)
}

func clampProgress(p *int) *int {
	if p == nil {
		return nil
	}
	v := min(max(*p, 0), 100)
	return &v
}

func validateWindow(start, end string) error {
	if start == "" && end == "" {
		return nil
	}
	s, err := timecalc.ParseClock(start)
	if err != nil {
		return err
	}
	e, err := timecalc.ParseClock(end)
	if err != nil {
		return err
	}
	if e <= s {
		return fmt.Errorf("%w: end %s is not after start %s", timecalc.ErrInvalidClock, end, start)
	}
	return nil
}

// CreateCheckIn appends a check-in stamped with now. The project must exist,
// except for the UncategorizedID placeholder. A project in progress mode
// carries its current progress forward when none is given.
func (s State) CreateCheckIn(in NewCheckIn, now time.Time, id string) (State, CheckIn, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return s, CheckIn{}, ErrEmptyText
	}
	date := in.Date
	if date == "" {
		date = timecalc.Today(now)
	} else if _, err := timecalc.ParseDate(date); err != nil {
		return s, CheckIn{}, err
	}
	if err := validateWindow(in.StartTime, in.EndTime); err != nil {
		return s, CheckIn{}, err
	}

	progress := clampProgress(in.Progress)
	if in.ProjectID != UncategorizedID {
		p, ok := s.Project(in.ProjectID)
		if !ok {
			return s, CheckIn{}, fmt.Errorf("%w: %s", ErrProjectNotFound, in.ProjectID)
		}
		if progress == nil && p.TrackingMode == ModeProgress {
			v := s.ProgressValue(p.ID)
			progress = &v
		}
	}

	c := CheckIn{
		ID:        id,
		ProjectID: in.ProjectID,
		Text:      text,
		Date:      date,
		Timestamp: now,
		Progress:  progress,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	}
	next := s.clone()
	next.CheckIns = append(next.CheckIns, c)
	return next, c, nil
}

// CheckIn looks up a check-in by id.
func (s State) CheckIn(id string) (CheckIn, bool) {
	i := s.checkInIndex(id)
	if i < 0 {
		return CheckIn{}, false
	}
	return s.CheckIns[i], true
}

// UpdateCheckIn applies a partial update. Setting DurationSeconds replaces
// the committed duration and clears any running timer.
func (s State) UpdateCheckIn(id string, patch CheckInPatch) (State, CheckIn, error) {
	i := s.checkInIndex(id)
	if i < 0 {
		return s, CheckIn{}, fmt.Errorf("%w: %s", ErrCheckInNotFound, id)
	}
	c := s.CheckIns[i]

	if patch.Text != nil {
		t := strings.TrimSpace(*patch.Text)
		if t == "" {
			return s, CheckIn{}, ErrEmptyText
		}
		c.Text = t
	}
	if patch.Progress != nil {
		c.Progress = clampProgress(patch.Progress)
	}
	if patch.StartTime != nil {
		c.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		c.EndTime = *patch.EndTime
	}
	if err := validateWindow(c.StartTime, c.EndTime); err != nil {
		return s, CheckIn{}, err
	}
	if patch.DurationSeconds != nil {
		c.DurationSeconds = max(*patch.DurationSeconds, 0)
		c.TimerActiveSince = nil
	}
	if patch.Timer == TimerClear {
		c.TimerActiveSince = nil
	}

	next := s.clone()
	next.CheckIns[i] = c
	return next, c, nil
}

// ToggleTimer starts a stopped timer or commits a running one.
func (s State) ToggleTimer(id string, now time.Time) (State, CheckIn, error) {
	i := s.checkInIndex(id)
	if i < 0 {
		return s, CheckIn{}, fmt.Errorf("%w: %s", ErrCheckInNotFound, id)
	}
	next := s.clone()
	c := &next.CheckIns[i]
	c.DurationSeconds, c.TimerActiveSince = timecalc.Toggle(c.DurationSeconds, c.TimerActiveSince, now)
	return next, *c, nil
}

func (s State) DeleteCheckIn(id string) (State, error) {
	i := s.checkInIndex(id)
	if i < 0 {
		return s, fmt.Errorf("%w: %s", ErrCheckInNotFound, id)
	}
	next := s.clone()
	next.CheckIns = slices.Delete(next.CheckIns, i, i+1)
	return next, nil
}

// CheckInsOn returns the check-ins logged for date, newest first.
func (s State) CheckInsOn(date string) []CheckIn {
	var out []CheckIn
	for _, c := range s.CheckIns {
		if c.Date == date {
			out = append(out, c)
		}
	}
	sortNewestFirst(out)
	return out
}

// Running returns every check-in with an open timer.
func (s State) Running() []CheckIn {
	var out []CheckIn
	for _, c := range s.CheckIns {
		if c.Running() {
			out = append(out, c)
		}
	}
	return out
}

// DayGroup is one date of history with its check-ins.
type DayGroup struct {
	Date     string
	CheckIns []CheckIn
	Journal  *DailyJournal
}

// History groups check-ins and journals by date, newest date first.
func (s State) History() []DayGroup {
	byDate := make(map[string]*DayGroup)
	group := func(date string) *DayGroup {
		g, ok := byDate[date]
		if !ok {
			g = &DayGroup{Date: date}
			byDate[date] = g
		}
		return g
	}
	for _, c := range s.CheckIns {
		g := group(c.Date)
		g.CheckIns = append(g.CheckIns, c)
	}
	for i := range s.Journals {
		j := s.Journals[i]
		group(j.Date).Journal = &j
	}

	out := make([]DayGroup, 0, len(byDate))
	for _, g := range byDate {
		sortNewestFirst(g.CheckIns)
		out = append(out, *g)
	}
	slices.SortFunc(out, func(a, b DayGroup) int { return cmp.Compare(b.Date, a.Date) })
	return out
}

func sortNewestFirst(cs []CheckIn) {
	slices.SortStableFunc(cs, func(a, b CheckIn) int { return b.Timestamp.Compare(a.Timestamp) })
}

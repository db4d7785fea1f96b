package tracker

import (
	"strings"
	"time"

	"github.com/sadopc/newlife/internal/timecalc"
)

// JournalOn returns the journal entry for date, if any.
func (s State) JournalOn(date string) (DailyJournal, bool) {
	for _, j := range s.Journals {
		if j.Date == date {
			return j, true
		}
	}
	return DailyJournal{}, false
}

// SaveJournal upserts the entry for date. An existing entry keeps its id;
// id is only used when the date has no entry yet.
func (s State) SaveJournal(date, content string, now time.Time, id string) (State, DailyJournal, error) {
	if _, err := timecalc.ParseDate(date); err != nil {
		return s, DailyJournal{}, err
	}
	next := s.clone()
	for i := range next.Journals {
		if next.Journals[i].Date == date {
			next.Journals[i].Content = content
			next.Journals[i].UpdatedAt = now
			return next, next.Journals[i], nil
		}
	}
	j := DailyJournal{ID: id, Date: date, Content: content, UpdatedAt: now}
	next.Journals = append(next.Journals, j)
	return next, j, nil
}

// UpdateSettings replaces the widget settings. An empty event name keeps the
// current one.
func (s State) UpdateSettings(eventName string, startDate time.Time) State {
	next := s.clone()
	if name := strings.TrimSpace(eventName); name != "" {
		next.Settings.EventName = name
	}
	if !startDate.IsZero() {
		next.Settings.StartDate = startDate
	}
	return next
}

// DayNumber is the number of whole days between the settings start date and
// now, regardless of direction.
func (s State) DayNumber(now time.Time) int {
	d := timecalc.DaysBetween(s.Settings.StartDate.In(now.Location()), now)
	if d < 0 {
		return -d
	}
	return d
}

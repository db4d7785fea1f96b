package export

import (
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/sadopc/newlife/internal/timecalc"
	"github.com/sadopc/newlife/internal/tracker"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	EventName  string        `json:"event_name"`
	StartDate  string        `json:"start_date"`
	Count      int           `json:"count"`
	Entries    []jsonEntry   `json:"entries"`
	Journals   []jsonJournal `json:"journals"`
}

type jsonEntry struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Project     string `json:"project"`
	ProjectID   string `json:"project_id"`
	Text        string `json:"text"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
	Running     bool   `json:"running,omitempty"`
	Progress    *int   `json:"progress,omitempty"`
}

type jsonJournal struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}

func ToJSON(w io.Writer, st tracker.State, now time.Time) error {
	export := jsonExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		EventName:  st.Settings.EventName,
		StartDate:  timecalc.FormatDate(st.Settings.StartDate),
		Count:      len(st.CheckIns),
		Entries:    []jsonEntry{},
		Journals:   []jsonJournal{},
	}

	for _, c := range chronological(st) {
		dur := c.DisplayDuration(now)
		export.Entries = append(export.Entries, jsonEntry{
			ID:          c.ID,
			Date:        c.Date,
			Project:     st.ProjectOrPlaceholder(c.ProjectID).Name,
			ProjectID:   c.ProjectID,
			Text:        c.Text,
			StartTime:   c.StartTime,
			EndTime:     c.EndTime,
			DurationSec: dur,
			Duration:    timecalc.FormatClockDuration(dur),
			Running:     c.Running(),
			Progress:    c.Progress,
		})
	}
	for _, day := range st.History() {
		if day.Journal != nil {
			export.Journals = append(export.Journals, jsonJournal{Date: day.Date, Content: day.Journal.Content})
		}
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

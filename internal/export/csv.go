package export

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/sadopc/newlife/internal/timecalc"
	"github.com/sadopc/newlife/internal/tracker"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv or json)", s)
}

// ToFile writes the state to path in the given format.
func ToFile(path string, format Format, st tracker.State, now time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s file: %w", format, err)
	}
	defer f.Close()

	if err := Write(f, format, st, now); err != nil {
		return err
	}
	return f.Close()
}

func Write(w io.Writer, format Format, st tracker.State, now time.Time) error {
	switch format {
	case FormatCSV:
		return ToCSV(w, st, now)
	case FormatJSON:
		return ToJSON(w, st, now)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// chronological returns the check-ins oldest first.
func chronological(st tracker.State) []tracker.CheckIn {
	out := slices.Clone(st.CheckIns)
	slices.SortStableFunc(out, func(a, b tracker.CheckIn) int {
		if c := cmp.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out
}

// ToCSV writes one row per check-in. A running timer is exported with its
// elapsed time as of now.
func ToCSV(w io.Writer, st tracker.State, now time.Time) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"ID", "Date", "Project", "Text", "Start", "End", "Duration (s)", "Duration", "Progress"}); err != nil {
		return err
	}

	for _, c := range chronological(st) {
		dur := c.DisplayDuration(now)
		progress := ""
		if c.Progress != nil {
			progress = strconv.Itoa(*c.Progress)
		}
		row := []string{
			c.ID,
			c.Date,
			st.ProjectOrPlaceholder(c.ProjectID).Name,
			c.Text,
			c.StartTime,
			c.EndTime,
			strconv.FormatInt(dur, 10),
			timecalc.FormatClockDuration(dur),
			progress,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

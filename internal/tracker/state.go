// Package tracker is the in-memory model: projects, check-ins, journals and
// the widget settings, held together in a State value.
//
// Every mutation is a method on State that returns the next State and leaves
// the receiver untouched, so callers can keep, diff or discard snapshots
// freely. Persistence and the wall clock live elsewhere.
package tracker

import (
	"slices"
	"time"
)

// Blob names one persisted collection of the State.
type Blob string

const (
	BlobProjects Blob = "projects"
	BlobCheckIns Blob = "checkins"
	BlobSettings Blob = "settings"
	BlobJournals Blob = "journals"
)

// AllBlobs lists every persisted collection in load order.
var AllBlobs = []Blob{BlobProjects, BlobCheckIns, BlobSettings, BlobJournals}

type State struct {
	Projects []Project
	CheckIns []CheckIn
	Journals []DailyJournal
	Settings WidgetSettings
}

// NewState returns the first-run state: the starter projects and default
// settings, with no check-ins or journals.
func NewState(now time.Time) State {
	return State{
		Projects: DefaultProjects(now),
		Settings: DefaultSettings(now),
	}
}

// clone copies the slices so the returned State shares no backing arrays
// with the receiver.
func (s State) clone() State {
	return State{
		Projects: slices.Clone(s.Projects),
		CheckIns: slices.Clone(s.CheckIns),
		Journals: slices.Clone(s.Journals),
		Settings: s.Settings,
	}
}

func (s State) projectIndex(id string) int {
	return slices.IndexFunc(s.Projects, func(p Project) bool { return p.ID == id })
}

func (s State) checkInIndex(id string) int {
	return slices.IndexFunc(s.CheckIns, func(c CheckIn) bool { return c.ID == id })
}

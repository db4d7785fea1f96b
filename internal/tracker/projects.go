package tracker

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Palette is the fixed set of display colours assigned to new projects.
var Palette = []string{"#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#E74C3C", "#9B59B6", "#3498DB"}

// Project looks up a live project by id.
func (s State) Project(id string) (Project, bool) {
	i := s.projectIndex(id)
	if i < 0 {
		return Project{}, false
	}
	return s.Projects[i], true
}

// ProjectOrPlaceholder returns the project, or a neutral placeholder for a
// check-in whose project no longer exists.
func (s State) ProjectOrPlaceholder(id string) Project {
	if p, ok := s.Project(id); ok {
		return p
	}
	return Project{ID: id, Name: UncategorizedName, Icon: "📁", Color: "#666666"}
}

// CreateProject appends a project with no tracking mode. An empty icon falls
// back to DefaultIcon.
func (s State) CreateProject(name, icon string, now time.Time, id string) (State, Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, Project{}, ErrEmptyName
	}
	if icon = strings.TrimSpace(icon); icon == "" {
		icon = DefaultIcon
	}
	if s.projectIndex(id) >= 0 {
		return s, Project{}, fmt.Errorf("project %q already exists", id)
	}
	p := Project{
		ID:        id,
		Name:      name,
		Icon:      icon,
		Color:     Palette[len(s.Projects)%len(Palette)],
		CreatedAt: now,
	}
	next := s.clone()
	next.Projects = append(next.Projects, p)
	return next, p, nil
}

func (s State) RenameProject(id, name string) (State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, ErrEmptyName
	}
	return s.updateProject(id, func(p *Project) { p.Name = name })
}

// SetTrackingMode switches how the project aggregates; stored progress values
// are kept as they are.
func (s State) SetTrackingMode(id string, mode TrackingMode) (State, error) {
	switch mode {
	case ModeNone, ModeProgress, ModeCounter:
	default:
		return s, fmt.Errorf("%w: %q", ErrInvalidMode, string(mode))
	}
	return s.updateProject(id, func(p *Project) { p.TrackingMode = mode })
}

func (s State) updateProject(id string, fn func(*Project)) (State, error) {
	i := s.projectIndex(id)
	if i < 0 {
		return s, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	next := s.clone()
	fn(&next.Projects[i])
	return next, nil
}

// DeleteProject removes the project and every check-in that references it.
func (s State) DeleteProject(id string) (State, error) {
	i := s.projectIndex(id)
	if i < 0 {
		return s, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	next := s.clone()
	next.Projects = slices.Delete(next.Projects, i, i+1)
	next.CheckIns = slices.DeleteFunc(next.CheckIns, func(c CheckIn) bool { return c.ProjectID == id })
	return next, nil
}

// ProjectCheckIns returns the project's check-ins, newest first.
func (s State) ProjectCheckIns(id string) []CheckIn {
	var out []CheckIn
	for _, c := range s.CheckIns {
		if c.ProjectID == id {
			out = append(out, c)
		}
	}
	sortNewestFirst(out)
	return out
}

// ProgressValue is the progress of the project's most recent check-in, or 0.
func (s State) ProgressValue(id string) int {
	var (
		latest CheckIn
		found  bool
	)
	for _, c := range s.CheckIns {
		if c.ProjectID != id {
			continue
		}
		if !found || c.Timestamp.After(latest.Timestamp) {
			latest, found = c, true
		}
	}
	if !found {
		return 0
	}
	return latest.ProgressOrZero()
}

// ActiveDays counts the distinct dates the project has check-ins on.
func (s State) ActiveDays(id string) int {
	days := make(map[string]struct{})
	for _, c := range s.CheckIns {
		if c.ProjectID == id {
			days[c.Date] = struct{}{}
		}
	}
	return len(days)
}

// TotalDuration sums the displayed duration of the project's check-ins.
func (s State) TotalDuration(id string, now time.Time) int64 {
	var total int64
	for _, c := range s.CheckIns {
		if c.ProjectID == id {
			total += c.DisplayDuration(now)
		}
	}
	return total
}

// Aggregate returns the value the project's tracking mode displays. ok is
// false for projects without a mode.
func (s State) Aggregate(id string) (value int, ok bool) {
	p, found := s.Project(id)
	if !found {
		return 0, false
	}
	switch p.TrackingMode {
	case ModeProgress:
		return s.ProgressValue(id), true
	case ModeCounter:
		return s.ActiveDays(id), true
	}
	return 0, false
}

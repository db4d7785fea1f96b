package tracker

import (
	"strings"
	"time"
)

// Categorization is the classifier's answer for one piece of text.
type Categorization struct {
	MatchFound      bool
	ProjectID       string
	NewProjectName  string
	NewProjectEmoji string
}

// Resolution records which branch ResolveCategory took.
type Resolution string

const (
	ResolvedMatch    Resolution = "match"
	ResolvedCreated  Resolution = "created"
	ResolvedFallback Resolution = "fallback"
)

// ResolveCategory turns a classifier answer into a project id that is valid
// against s. A nil answer means the classifier failed: the first project is
// used, or the UncategorizedID placeholder when there is none. A match whose
// id is no longer present is treated as no match and creates a project,
// using newID.
func (s State) ResolveCategory(c *Categorization, now time.Time, newID string) (State, string, Resolution) {
	if c == nil {
		if len(s.Projects) > 0 {
			return s, s.Projects[0].ID, ResolvedFallback
		}
		return s, UncategorizedID, ResolvedFallback
	}
	if c.MatchFound && c.ProjectID != "" {
		if _, ok := s.Project(c.ProjectID); ok {
			return s, c.ProjectID, ResolvedMatch
		}
	}

	name := strings.TrimSpace(c.NewProjectName)
	if name == "" {
		name = DefaultNewName
	}
	next, p, err := s.CreateProject(name, c.NewProjectEmoji, now, newID)
	if err != nil {
		// only a duplicate id can get here
		if len(s.Projects) > 0 {
			return s, s.Projects[0].ID, ResolvedFallback
		}
		return s, UncategorizedID, ResolvedFallback
	}
	return next, p.ID, ResolvedCreated
}

package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/sadopc/newlife/internal/tracker"
)

// ProjectRef is the part of a project the classifier sees.
type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Refs converts projects to the classifier view.
func Refs(projects []tracker.Project) []ProjectRef {
	refs := make([]ProjectRef, len(projects))
	for i, p := range projects {
		refs[i] = ProjectRef{ID: p.ID, Name: p.Name}
	}
	return refs
}

// categorizeResponse mirrors the response schema. MatchFound is a pointer so
// a missing field is distinguishable from false.
type categorizeResponse struct {
	MatchFound      *bool  `json:"matchFound"`
	ProjectID       string `json:"projectId"`
	NewProjectName  string `json:"newProjectName"`
	NewProjectEmoji string `json:"newProjectEmoji"`
}

var categorizeSchema = &schema{
	Type: "OBJECT",
	Properties: map[string]*schema{
		"matchFound":      {Type: "BOOLEAN"},
		"projectId":       {Type: "STRING", Description: "The ID of the existing project if matchFound is true"},
		"newProjectName":  {Type: "STRING", Description: "Suggested name for a new project if matchFound is false"},
		"newProjectEmoji": {Type: "STRING", Description: "Emoji for the new project"},
	},
	Required: []string{"matchFound"},
}

func categorizePrompt(text string, projects []ProjectRef) (string, error) {
	if projects == nil {
		projects = []ProjectRef{}
	}
	list, err := json.Marshal(projects)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`User logged this activity: %q.
Existing projects: %s.

Decide if this fits an existing project or needs a new one.
If it fits existing, return its id.
If it needs a new one, suggest a name and a single emoji.
Return JSON format.`, text, list), nil
}

// Categorize asks the model whether text belongs to one of projects.
func (c *Client) Categorize(ctx context.Context, text string, projects []ProjectRef) (*tracker.Categorization, error) {
	prompt, err := categorizePrompt(text, projects)
	if err != nil {
		return nil, fmt.Errorf("encoding projects: %w", err)
	}
	raw, err := c.generate(ctx, prompt, categorizeSchema)
	if err != nil {
		return nil, err
	}
	return parseCategorization(raw)
}

func parseCategorization(raw string) (*tracker.Categorization, error) {
	var r categorizeResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if r.MatchFound == nil {
		return nil, fmt.Errorf("%w: matchFound missing", ErrMalformed)
	}
	return &tracker.Categorization{
		MatchFound:      *r.MatchFound,
		ProjectID:       r.ProjectID,
		NewProjectName:  r.NewProjectName,
		NewProjectEmoji: r.NewProjectEmoji,
	}, nil
}

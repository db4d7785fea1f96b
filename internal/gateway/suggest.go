package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

const maxSuggestions = 5

// Suggestion is one proposed action for the day.
type Suggestion struct {
	ProjectName string `json:"projectName"`
	Action      string `json:"action"`
}

var suggestSchema = &schema{
	Type: "ARRAY",
	Items: &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"projectName": {Type: "STRING"},
			"action":      {Type: "STRING"},
		},
		Required: []string{"projectName", "action"},
	},
}

func suggestPrompt(projectNames []string, dayCount int, eventName string) string {
	ctxList := strings.Join(projectNames, ", ")
	if ctxList == "" {
		ctxList = "None yet"
	}
	return fmt.Sprintf(`I am on day %d of my "New Life" after I %s.
I have these active projects: %s.

Suggest 3-5 specific "Daily Check-ins" (actions) I could take today for these projects.
If I have no projects, suggest 3 vital projects to start.
Format your response as a JSON array of objects with 'projectName' and 'action'.`, dayCount, eventName, ctxList)
}

// Suggest asks for a handful of actions for today. Incomplete items are
// dropped and at most five are returned.
func (c *Client) Suggest(ctx context.Context, projectNames []string, dayCount int, eventName string) ([]Suggestion, error) {
	raw, err := c.generate(ctx, suggestPrompt(projectNames, dayCount, eventName), suggestSchema)
	if err != nil {
		return nil, err
	}

	var items []Suggestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	out := make([]Suggestion, 0, min(len(items), maxSuggestions))
	for _, it := range items {
		if strings.TrimSpace(it.Action) == "" {
			continue
		}
		out = append(out, it)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out, nil
}

package tracker

import "time"

// DefaultProjects is the starter set used on first run or when the stored
// project list cannot be read.
func DefaultProjects(now time.Time) []Project {
	return []Project{
		{ID: "p-sports", Name: "Sports", Icon: "🏃", Color: Palette[0], CreatedAt: now},
		{ID: "p-job", Name: "Look for a new job", Icon: "💼", Color: Palette[1], CreatedAt: now},
		{ID: "p-english", Name: "Learn English", Icon: "🇺🇸", Color: Palette[2], CreatedAt: now},
		{ID: "p-ai", Name: "AI Study", Icon: "🤖", Color: Palette[3], CreatedAt: now},
	}
}

func DefaultSettings(now time.Time) WidgetSettings {
	return WidgetSettings{EventName: "lost my job", StartDate: now}
}

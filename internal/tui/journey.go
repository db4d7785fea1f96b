package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/newlife/internal/gateway"
	"github.com/sadopc/newlife/internal/service"
	"github.com/sadopc/newlife/internal/timecalc"
	"github.com/sadopc/newlife/internal/tracker"
)

// journeyModel shows the day counter, its settings, the journal of the
// selected day and suggestions. The selected day is shared with the log view.
type journeyModel struct {
	svc       *service.Service
	aiEnabled bool
	width     int
	height    int

	st   tracker.State
	now  time.Time
	date string

	suggestions []gateway.Suggestion
	suggesting  bool

	formActive bool
	form       *huh.Form
	formType   string // "settings", "journal"

	// Form values as pointers (survive value copies)
	eventName *string
	startDate *string
	journal   *string

	md *markdown
}

func newJourneyModel(svc *service.Service, aiEnabled bool) journeyModel {
	var event, start, journal string
	now := svc.Now()
	return journeyModel{
		svc:       svc,
		aiEnabled: aiEnabled,
		st:        svc.State(),
		now:       now,
		date:      timecalc.Today(now),
		eventName: &event,
		startDate: &start,
		journal:   &journal,
		md:        newMarkdown(),
	}
}

func (j *journeyModel) setSize(w, h int) {
	j.width = w
	j.height = h
}

func (j *journeyModel) setState(st tracker.State, now time.Time) {
	j.st = st
	j.now = now
}

func (j journeyModel) update(msg tea.Msg) (journeyModel, tea.Cmd) {
	if msg, ok := msg.(suggestionsMsg); ok {
		j.suggesting = false
		j.suggestions = msg.suggestions
		if len(msg.suggestions) == 0 {
			return j, statusCmd("No suggestions available", false)
		}
		return j, nil
	}
	if j.formActive && j.form != nil {
		return j.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return j.showSettingsForm()
		case key.Matches(msg, keys.Journal):
			return j.showJournalForm()
		case key.Matches(msg, keys.PrevDay):
			j.shiftDate(-1)
		case key.Matches(msg, keys.NextDay):
			j.shiftDate(1)
		case key.Matches(msg, keys.Today):
			j.date = timecalc.Today(j.now)
		case key.Matches(msg, keys.Suggest):
			if !j.aiEnabled {
				return j, statusCmd("Suggestions need a Gemini API key", true)
			}
			if j.suggesting {
				return j, nil
			}
			j.suggesting = true
			svc := j.svc
			return j, func() tea.Msg {
				return suggestionsMsg{suggestions: svc.Suggest(context.Background())}
			}
		}
	}
	return j, nil
}

func (j *journeyModel) shiftDate(days int) {
	if d, err := timecalc.AddDays(j.date, days); err == nil {
		j.date = d
	}
}

func (j journeyModel) showSettingsForm() (journeyModel, tea.Cmd) {
	*j.eventName = j.st.Settings.EventName
	*j.startDate = timecalc.FormatDate(j.st.Settings.StartDate.Local())
	j.formType = "settings"

	j.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Counting days since…").Value(j.eventName).Validate(validateName),
			huh.NewInput().Title("Start date (YYYY-MM-DD)").Value(j.startDate).Validate(validateDate),
		).Title("Day counter"),
	).WithShowHelp(true).WithShowErrors(true)

	j.formActive = true
	return j, j.form.Init()
}

func (j journeyModel) showJournalForm() (journeyModel, tea.Cmd) {
	*j.journal = ""
	if existing, ok := j.st.JournalOn(j.date); ok {
		*j.journal = existing.Content
	}
	j.formType = "journal"

	j.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Journal · " + formatDayLabel(j.date)).
				Description("Markdown is supported.").
				Lines(8).
				Value(j.journal),
		),
	).WithShowHelp(true)

	j.formActive = true
	return j, j.form.Init()
}

func (j journeyModel) updateForm(msg tea.Msg) (journeyModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			j.formActive = false
			j.form = nil
			return j, nil
		}
	}

	form, cmd := j.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		j.form = f
	}

	if j.form.State == huh.StateCompleted {
		j.formActive = false
		j.form = nil
		return j, j.save()
	}

	return j, cmd
}

func (j journeyModel) save() tea.Cmd {
	switch j.formType {
	case "settings":
		name := strings.TrimSpace(*j.eventName)
		start, err := localDate(*j.startDate)
		if err != nil {
			return statusCmd(err.Error(), true)
		}
		return mutate("Settings saved", func(ctx context.Context) error {
			return j.svc.UpdateSettings(ctx, name, start)
		})
	case "journal":
		date := j.date
		content := *j.journal
		return mutate("Journal saved", func(ctx context.Context) error {
			_, err := j.svc.SaveJournal(ctx, date, content)
			return err
		})
	}
	return nil
}

// localDate parses a YYYY-MM-DD string as local midnight.
func localDate(s string) (time.Time, error) {
	t, err := timecalc.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), nil
}

func (j journeyModel) view() string {
	w := j.width - 4

	if j.formActive && j.form != nil {
		title := titleStyle.Render("Journey")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", j.form.View()),
		)
	}

	counter := counterStyle.Width(w - 6).Render(fmt.Sprintf("Day %d", j.st.DayNumber(j.now)))
	since := subtitleStyle.Width(w - 6).Align(lipgloss.Center).Render(fmt.Sprintf(
		"since %s · %s", j.st.Settings.EventName, j.st.Settings.StartDate.Local().Format("Jan 02, 2006")))
	top := panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center, counter, since))

	return lipgloss.JoinVertical(lipgloss.Left, top, j.renderJournal(w), j.renderSuggestions(w))
}

func (j journeyModel) renderJournal(w int) string {
	title := titleStyle.Render("Journal · " + formatDayLabel(j.date))
	if j.date == timecalc.Today(j.now) {
		title += "  " + highlightStyle.Render("today")
	}
	entry, ok := j.st.JournalOn(j.date)
	if !ok || strings.TrimSpace(entry.Content) == "" {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, mutedStyle.Render("Nothing written yet. Press j to write.")))
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		title, j.md.render(entry.Content, w-8), mutedStyle.Render("j: edit")))
}

func (j journeyModel) renderSuggestions(w int) string {
	title := titleStyle.Render("Ideas for today")
	rows := []string{title}
	switch {
	case j.suggesting:
		rows = append(rows, warningStyle.Render("✨ thinking…"))
	case len(j.suggestions) == 0:
		hint := "Press g for suggestions."
		if !j.aiEnabled {
			hint = "Set gateway.apiKey (or GEMINI_API_KEY) to get suggestions."
		}
		rows = append(rows, mutedStyle.Render(hint))
	default:
		for _, s := range j.suggestions {
			rows = append(rows, fmt.Sprintf("  • %s %s", accentStyle.Render(s.ProjectName+":"), clip(s.Action, w-12-len(s.ProjectName))))
		}
	}
	rows = append(rows, "", mutedStyle.Render("enter: settings  j: journal  [ ]: day  g: suggest"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

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

	"github.com/sadopc/newlife/internal/service"
	"github.com/sadopc/newlife/internal/timecalc"
	"github.com/sadopc/newlife/internal/tracker"
)

// autoProject is the project picker value that hands the text to the
// categorizer.
const autoProject = ""

type logFocus int

const (
	focusCheckIns logFocus = iota
	focusProjects
)

type logModel struct {
	svc       *service.Service
	aiEnabled bool
	width     int
	height    int

	st   tracker.State
	now  time.Time
	date string

	focus         logFocus
	projectCursor int
	checkInCursor int

	// processing is set while a categorization request is outstanding.
	processing bool

	formActive bool
	form       *huh.Form
	formType   string // "log", "edit", "project", "edit_project", "delete_project"
	editingID  string

	// Form field pointers (survive value copies)
	formText     *string
	formProject  *string
	formStart    *string
	formEnd      *string
	formProgress *string
	formDuration *string
	formName     *string
	formIcon     *string
	formMode     *string
	formConfirm  *bool
}

func newLogModel(svc *service.Service, aiEnabled bool) logModel {
	var text, project, start, end, progress, duration, name, icon, mode string
	var confirm bool
	now := svc.Now()
	return logModel{
		svc:          svc,
		aiEnabled:    aiEnabled,
		st:           svc.State(),
		now:          now,
		date:         timecalc.Today(now),
		formText:     &text,
		formProject:  &project,
		formStart:    &start,
		formEnd:      &end,
		formProgress: &progress,
		formDuration: &duration,
		formName:     &name,
		formIcon:     &icon,
		formMode:     &mode,
		formConfirm:  &confirm,
	}
}

func (l *logModel) setSize(w, h int) {
	l.width = w
	l.height = h
}

func (l *logModel) setState(st tracker.State, now time.Time) {
	l.st = st
	l.now = now
	l.projectCursor = min(l.projectCursor, max(0, len(st.Projects)-1))
	l.checkInCursor = min(l.checkInCursor, max(0, len(l.checkIns())-1))
}

func (l logModel) checkIns() []tracker.CheckIn {
	return l.st.CheckInsOn(l.date)
}

func (l logModel) selectedCheckIn() (tracker.CheckIn, bool) {
	cs := l.checkIns()
	if l.checkInCursor >= len(cs) {
		return tracker.CheckIn{}, false
	}
	return cs[l.checkInCursor], true
}

func (l logModel) selectedProject() (tracker.Project, bool) {
	if l.projectCursor >= len(l.st.Projects) {
		return tracker.Project{}, false
	}
	return l.st.Projects[l.projectCursor], true
}

func (l logModel) update(msg tea.Msg) (logModel, tea.Cmd) {
	// The result may land while another form is open; it never goes to the form.
	if msg, ok := msg.(categorizedMsg); ok {
		return l.categorized(msg)
	}
	if l.formActive && l.form != nil {
		return l.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.Right):
			if l.focus == focusCheckIns {
				l.focus = focusProjects
			} else {
				l.focus = focusCheckIns
			}
		case key.Matches(msg, keys.Up):
			if l.focus == focusProjects && l.projectCursor > 0 {
				l.projectCursor--
			} else if l.focus == focusCheckIns && l.checkInCursor > 0 {
				l.checkInCursor--
			}
		case key.Matches(msg, keys.Down):
			if l.focus == focusProjects && l.projectCursor < len(l.st.Projects)-1 {
				l.projectCursor++
			} else if l.focus == focusCheckIns && l.checkInCursor < len(l.checkIns())-1 {
				l.checkInCursor++
			}
		case key.Matches(msg, keys.PrevDay):
			l.shiftDate(-1)
		case key.Matches(msg, keys.NextDay):
			l.shiftDate(1)
		case key.Matches(msg, keys.Today):
			l.date = timecalc.Today(l.now)
			l.checkInCursor = 0
		case key.Matches(msg, keys.New):
			return l.showLogForm()
		case key.Matches(msg, keys.Project):
			return l.showNewProjectForm()
		case key.Matches(msg, keys.Timer):
			if c, ok := l.selectedCheckIn(); ok {
				return l, l.toggleTimer(c.ID)
			}
		case key.Matches(msg, keys.Edit):
			if l.focus == focusProjects {
				if _, ok := l.selectedProject(); ok {
					return l.showEditProjectForm()
				}
			} else if _, ok := l.selectedCheckIn(); ok {
				return l.showEditForm()
			}
		case key.Matches(msg, keys.Delete):
			if l.focus == focusProjects {
				if _, ok := l.selectedProject(); ok {
					return l.showDeleteProjectForm()
				}
			} else if c, ok := l.selectedCheckIn(); ok {
				return l, mutate("Check-in deleted", func(ctx context.Context) error {
					return l.svc.DeleteCheckIn(ctx, c.ID)
				})
			}
		}
	}
	return l, nil
}

func (l logModel) categorized(msg categorizedMsg) (logModel, tea.Cmd) {
	l.processing = false
	if msg.err != nil {
		return l, statusCmd(fmt.Sprintf("Error: %v", msg.err), true)
	}
	if msg.checkIn == nil {
		return l, nil
	}
	p := l.svc.State().ProjectOrPlaceholder(msg.checkIn.ProjectID)
	status := fmt.Sprintf("Logged to %s %s", p.Icon, p.Name)
	switch msg.res {
	case tracker.ResolvedCreated:
		status += " (new project)"
	case tracker.ResolvedFallback:
		status += " (categorizer unavailable)"
	}
	return l, func() tea.Msg { return stateChangedMsg{status: status} }
}

func (l *logModel) shiftDate(days int) {
	date, err := timecalc.AddDays(l.date, days)
	if err != nil {
		return
	}
	l.date = date
	l.checkInCursor = 0
}

func (l logModel) toggleTimer(id string) tea.Cmd {
	return func() tea.Msg {
		c, err := l.svc.ToggleTimer(context.Background(), id)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		if c.Running() {
			return stateChangedMsg{status: "Timer started"}
		}
		return stateChangedMsg{status: "Timer stopped at " + timecalc.FormatDuration(c.DurationSeconds, false)}
	}
}

// projectOptions lists the picker choices, led by the categorizer when one
// is configured.
func (l logModel) projectOptions() []huh.Option[string] {
	var opts []huh.Option[string]
	if l.aiEnabled {
		opts = append(opts, huh.NewOption("✨ Auto (AI)", autoProject))
	}
	for _, p := range l.st.Projects {
		opts = append(opts, huh.NewOption(p.Icon+" "+p.Name, p.ID))
	}
	if len(opts) == 0 {
		opts = append(opts, huh.NewOption(tracker.DefaultIcon+" "+tracker.UncategorizedName, tracker.UncategorizedID))
	}
	return opts
}

func (l logModel) showLogForm() (logModel, tea.Cmd) {
	opts := l.projectOptions()
	*l.formText = ""
	*l.formProject = opts[0].Value
	if p, ok := l.selectedProject(); ok && l.focus == focusProjects {
		*l.formProject = p.ID
	}
	*l.formStart = ""
	*l.formEnd = ""
	*l.formProgress = ""
	l.formType = "log"
	l.form = l.checkInForm(opts, "", "")
	l.formActive = true
	return l, l.form.Init()
}

// showTimedLogForm opens the log form with a window already chosen on the
// timeline.
func (l logModel) showTimedLogForm(date, start, end string) (logModel, tea.Cmd) {
	l.date = date
	opts := l.projectOptions()
	*l.formText = ""
	*l.formProject = opts[0].Value
	*l.formStart = start
	*l.formEnd = end
	*l.formProgress = ""
	l.formType = "log"
	l.form = l.checkInForm(opts, start, end)
	l.formActive = true
	return l, l.form.Init()
}

func (l logModel) checkInForm(opts []huh.Option[string], start, end string) *huh.Form {
	fields := []huh.Field{
		huh.NewInput().Title("What did you do?").Value(l.formText).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return tracker.ErrEmptyText
				}
				return nil
			}),
		huh.NewSelect[string]().Title("Project").Options(opts...).Value(l.formProject),
	}
	if start == "" && end == "" {
		fields = append(fields,
			huh.NewInput().Title("Start (HH:MM, optional)").Value(l.formStart).Validate(validateClock),
			huh.NewInput().Title("End (HH:MM, optional)").Value(l.formEnd).Validate(validateClock),
		)
	}
	fields = append(fields, huh.NewInput().Title("Progress % (optional)").Value(l.formProgress).Validate(validateProgress))

	return huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).WithShowErrors(true)
}

func (l logModel) showEditForm() (logModel, tea.Cmd) {
	c, _ := l.selectedCheckIn()
	l.editingID = c.ID
	*l.formText = c.Text
	*l.formStart = c.StartTime
	*l.formEnd = c.EndTime
	*l.formDuration = timecalc.FormatClockDuration(c.DisplayDuration(l.now))
	*l.formProgress = ""
	if c.Progress != nil {
		*l.formProgress = fmt.Sprint(*c.Progress)
	}
	l.formType = "edit"

	l.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Text").Value(l.formText),
			huh.NewInput().Title("Start (HH:MM)").Value(l.formStart).Validate(validateClock),
			huh.NewInput().Title("End (HH:MM)").Value(l.formEnd).Validate(validateClock),
			huh.NewInput().Title("Duration (H:MM:SS)").Value(l.formDuration).Validate(validateHMS),
			huh.NewInput().Title("Progress %").Value(l.formProgress).Validate(validateProgress),
		),
	).WithShowHelp(true).WithShowErrors(true)

	l.formActive = true
	return l, l.form.Init()
}

func (l logModel) updateForm(msg tea.Msg) (logModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			l.formActive = false
			l.form = nil
			return l, nil
		}
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}

	if l.form.State == huh.StateCompleted {
		l.formActive = false
		l.form = nil
		switch l.formType {
		case "log":
			return l.submitLog()
		case "edit":
			return l, l.submitEdit()
		case "project", "edit_project", "delete_project":
			return l, l.submitProjectForm()
		}
	}

	return l, cmd
}

func (l logModel) submitLog() (logModel, tea.Cmd) {
	in := tracker.NewCheckIn{
		ProjectID: *l.formProject,
		Text:      *l.formText,
		Date:      l.date,
		StartTime: strings.TrimSpace(*l.formStart),
		EndTime:   strings.TrimSpace(*l.formEnd),
		Progress:  parseProgress(*l.formProgress),
	}

	if in.ProjectID != autoProject {
		return l, mutate("Logged", func(ctx context.Context) error {
			_, err := l.svc.Log(ctx, in)
			return err
		})
	}

	if l.processing {
		return l, statusCmd("Still categorizing the previous log", true)
	}
	l.processing = true
	svc := l.svc
	return l, tea.Batch(
		statusCmd("Categorizing…", false),
		func() tea.Msg {
			c, res, err := svc.LogWithAI(context.Background(), in)
			return categorizedMsg{checkIn: c, res: res, err: err}
		},
	)
}

func (l logModel) submitEdit() tea.Cmd {
	id := l.editingID
	text := *l.formText
	start := strings.TrimSpace(*l.formStart)
	end := strings.TrimSpace(*l.formEnd)
	patch := tracker.CheckInPatch{
		Text:      &text,
		StartTime: &start,
		EndTime:   &end,
		Progress:  parseProgress(*l.formProgress),
	}

	c, ok := l.st.CheckIn(id)
	if secs, err := parseHMS(*l.formDuration); err == nil && ok {
		// Only an edited duration replaces the committed one.
		if timecalc.FormatClockDuration(secs) != timecalc.FormatClockDuration(c.DisplayDuration(l.now)) {
			patch.DurationSeconds = &secs
		}
	}

	return mutate("Check-in updated", func(ctx context.Context) error {
		_, err := l.svc.UpdateCheckIn(ctx, id, patch)
		return err
	})
}

func (l logModel) view() string {
	if l.formActive && l.form != nil {
		title := titleStyle.Render(l.formTitle())
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", l.form.View())
		return panelStyle.Width(l.width - 4).Render(content)
	}
	if l.width < 20 {
		return "Terminal too small"
	}

	projectsWidth := max(30, (l.width-4)*2/5)
	checkInsWidth := l.width - 4 - projectsWidth - 2

	return lipgloss.JoinHorizontal(lipgloss.Top,
		l.renderProjects(projectsWidth),
		"  ",
		l.renderCheckIns(max(20, checkInsWidth)),
	)
}

func (l logModel) formTitle() string {
	switch l.formType {
	case "edit":
		return "Edit Check-in"
	case "project":
		return "New Project"
	case "edit_project":
		return "Edit Project"
	case "delete_project":
		return "Delete Project"
	}
	if *l.formStart != "" && *l.formEnd != "" {
		return fmt.Sprintf("Log %s  %s–%s", formatDayLabel(l.date), *l.formStart, *l.formEnd)
	}
	return "Log " + formatDayLabel(l.date)
}

func (l logModel) renderProjects(w int) string {
	style := panelStyle
	if l.focus == focusProjects {
		style = activePanelStyle
	}
	title := titleStyle.Render("Projects")
	if len(l.st.Projects) == 0 {
		return style.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No projects yet. Press p to create one.")))
	}

	rows := []string{title, ""}
	for i, p := range l.st.Projects {
		cursor := "  "
		itemStyle := normalItemStyle
		if l.focus == focusProjects && i == l.projectCursor {
			cursor = "> "
			itemStyle = selectedItemStyle
		}
		name := clip(p.Icon+" "+p.Name, w-12)
		rows = append(rows, cursor+dot(p.Color)+" "+itemStyle.Render(name))

		detail := mutedStyle.Render(timecalc.FormatDuration(l.st.TotalDuration(p.ID, l.now), false))
		if agg := aggregateLabel(l.st, p); agg != "" {
			detail = agg + "  " + detail
		}
		rows = append(rows, "     "+detail)
	}
	rows = append(rows, "", mutedStyle.Render("  p: new  e: edit  d: delete"))
	return style.Width(w).Render(strings.Join(rows, "\n"))
}

func (l logModel) renderCheckIns(w int) string {
	style := panelStyle
	if l.focus == focusCheckIns {
		style = activePanelStyle
	}

	header := titleStyle.Render(formatDayLabel(l.date))
	if l.date == timecalc.Today(l.now) {
		header += "  " + highlightStyle.Render("today")
	}
	if l.processing {
		header += "  " + warningStyle.Render("✨ categorizing…")
	}

	cs := l.checkIns()
	if len(cs) == 0 {
		return style.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", mutedStyle.Render("Nothing logged. Press n to add a check-in."),
			"", mutedStyle.Render("  [ ]: change day  t: today")))
	}

	rows := []string{header, ""}
	for i, c := range cs {
		p := l.st.ProjectOrPlaceholder(c.ProjectID)
		cursor := "  "
		itemStyle := normalItemStyle
		if l.focus == focusCheckIns && i == l.checkInCursor {
			cursor = "> "
			itemStyle = selectedItemStyle
		}

		dur := timerBadge(c, l.now)
		window := ""
		if c.Timed() {
			window = mutedStyle.Render(c.StartTime+"–"+c.EndTime) + " "
		}
		textWidth := w - lipgloss.Width(dur) - lipgloss.Width(window) - 12
		line := cursor + p.Icon + " " + window + itemStyle.Render(clip(c.Text, textWidth))
		gap := max(1, w-6-lipgloss.Width(line)-lipgloss.Width(dur))
		rows = append(rows, line+strings.Repeat(" ", gap)+dur)

		if c.Progress != nil && p.TrackingMode == tracker.ModeProgress {
			rows = append(rows, "     "+progressBar(*c.Progress, 10)+mutedStyle.Render(fmt.Sprintf(" %d%%", *c.Progress)))
		}
	}
	rows = append(rows, "", mutedStyle.Render("  n: log  s: timer  e: edit  d: delete  [ ]: day"))
	return style.Width(w).Render(strings.Join(rows, "\n"))
}

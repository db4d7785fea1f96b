package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/sadopc/newlife/internal/tracker"
)

var projectIcons = []string{"🎯", "🏃", "💼", "📚", "🇺🇸", "🤖", "🎨", "🧘", "💰", "🍳"}

var modeOptions = []huh.Option[string]{
	huh.NewOption("Timer only", "none"),
	huh.NewOption("Progress (0-100%)", string(tracker.ModeProgress)),
	huh.NewOption("Counter (active days)", string(tracker.ModeCounter)),
}

func iconOptions(current string) []huh.Option[string] {
	icons := projectIcons
	if current != "" && !containsIcon(icons, current) {
		icons = append([]string{current}, icons...)
	}
	opts := make([]huh.Option[string], len(icons))
	for i, ic := range icons {
		opts[i] = huh.NewOption(ic, ic)
	}
	return opts
}

func containsIcon(icons []string, icon string) bool {
	for _, ic := range icons {
		if ic == icon {
			return true
		}
	}
	return false
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return tracker.ErrEmptyName
	}
	return nil
}

func (l logModel) showNewProjectForm() (logModel, tea.Cmd) {
	*l.formName = ""
	*l.formIcon = tracker.DefaultIcon
	*l.formMode = "none"
	l.formType = "project"

	l.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(l.formName).Validate(validateName),
			huh.NewSelect[string]().Title("Icon").Options(iconOptions("")...).Value(l.formIcon),
			huh.NewSelect[string]().Title("Tracking").Options(modeOptions...).Value(l.formMode),
		),
	).WithShowHelp(true).WithShowErrors(true)

	l.formActive = true
	return l, l.form.Init()
}

func (l logModel) showEditProjectForm() (logModel, tea.Cmd) {
	p, _ := l.selectedProject()
	*l.formName = p.Name
	*l.formMode = p.TrackingMode.String()
	l.formType = "edit_project"
	l.editingID = p.ID

	l.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(l.formName).Validate(validateName),
			huh.NewSelect[string]().Title("Tracking").Options(modeOptions...).Value(l.formMode),
		),
	).WithShowHelp(true).WithShowErrors(true)

	l.formActive = true
	return l, l.form.Init()
}

func (l logModel) showDeleteProjectForm() (logModel, tea.Cmd) {
	p, _ := l.selectedProject()
	*l.formConfirm = false
	l.formType = "delete_project"
	l.editingID = p.ID

	n := len(l.st.ProjectCheckIns(p.ID))
	l.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s %s?", p.Icon, p.Name)).
				Description(fmt.Sprintf("Its %d check-ins will be deleted too.", n)).
				Affirmative("Delete").
				Negative("Keep").
				Value(l.formConfirm),
		),
	).WithShowHelp(true)

	l.formActive = true
	return l, l.form.Init()
}

func (l logModel) submitProjectForm() tea.Cmd {
	id := l.editingID
	name := strings.TrimSpace(*l.formName)
	icon := *l.formIcon

	switch l.formType {
	case "project":
		mode, err := tracker.ParseMode(*l.formMode)
		if err != nil {
			return statusCmd(err.Error(), true)
		}
		return mutate("Project created", func(ctx context.Context) error {
			p, err := l.svc.CreateProject(ctx, name, icon)
			if err != nil || mode == tracker.ModeNone {
				return err
			}
			return l.svc.SetTrackingMode(ctx, p.ID, mode)
		})

	case "edit_project":
		mode, err := tracker.ParseMode(*l.formMode)
		if err != nil {
			return statusCmd(err.Error(), true)
		}
		return mutate("Project updated", func(ctx context.Context) error {
			if err := l.svc.RenameProject(ctx, id, name); err != nil {
				return err
			}
			return l.svc.SetTrackingMode(ctx, id, mode)
		})

	case "delete_project":
		if !*l.formConfirm {
			return nil
		}
		return mutate("Project deleted", func(ctx context.Context) error {
			return l.svc.DeleteProject(ctx, id)
		})
	}
	return nil
}

package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/newlife/internal/export"
	"github.com/sadopc/newlife/internal/service"
	"github.com/sadopc/newlife/internal/timecalc"
)

// App is the root Bubble Tea model.
type App struct {
	svc    *service.Service
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	log      logModel
	timeline timelineModel
	history  historyModel
	reports  reportsModel
	journey  journeyModel

	help      help.Model
	status    string
	statusErr bool
}

// NewApp builds the UI over svc. aiEnabled controls whether the log form
// offers automatic categorization.
func NewApp(svc *service.Service, aiEnabled bool) App {
	h := help.New()
	h.ShowAll = false

	st, now := svc.State(), svc.Now()
	return App{
		svc:        svc,
		activeView: viewLog,
		log:        newLogModel(svc, aiEnabled),
		timeline:   newTimelineModel(st, now),
		history:    newHistoryModel(st, now),
		reports:    newReportsModel(st, now),
		journey:    newJourneyModel(svc, aiEnabled),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(tickCmd(), syncCmd(a.svc))
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// syncInterval is how often the UI re-reads storage for writes made by the
// CLI or another running instance.
const syncInterval = 5 * time.Second

func syncCmd(svc *service.Service) tea.Cmd {
	return tea.Tick(syncInterval, func(time.Time) tea.Msg {
		changed, err := svc.Refresh(context.Background())
		return syncedMsg{changed: changed, err: err}
	})
}

// refresh hands the current service state to every view.
func (a *App) refresh() {
	st, now := a.svc.State(), a.svc.Now()
	a.log.setState(st, now)
	a.timeline.setState(st, now)
	a.history.setState(st, now)
	a.reports.setState(st, now)
	a.journey.setState(st, now)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.log.setSize(a.width, contentHeight)
		a.timeline.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.journey.setSize(a.width, contentHeight)
		return a, nil

	case tea.MouseMsg:
		if a.isFormActive() || a.exportPicking {
			return a, nil
		}
		// Views see coordinates relative to their own top edge.
		msg.Y -= lipgloss.Height(a.renderHeader())
		return a.updateActiveView(msg)

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewLog
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewTimeline
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewHistory
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewReports
			return a, nil
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewJourney
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, nil
		}

	case tickMsg:
		// Ticks only move the clock the views render running timers with.
		now := time.Time(msg)
		a.log.now = now
		a.timeline.now = now
		a.history.now = now
		a.journey.now = now
		return a, tickCmd()

	case syncedMsg:
		if msg.err != nil {
			a.status = fmt.Sprintf("Sync error: %v", msg.err)
			a.statusErr = true
		} else if msg.changed {
			a.refresh()
		}
		return a, syncCmd(a.svc)

	case stateChangedMsg:
		a.refresh()
		a.status = msg.status
		a.statusErr = false
		return a, nil

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case categorizedMsg:
		var cmd tea.Cmd
		a.log, cmd = a.log.update(msg)
		return a, cmd

	case suggestionsMsg:
		var cmd tea.Cmd
		a.journey, cmd = a.journey.update(msg)
		return a, cmd

	case timelinePickedMsg:
		a.activeView = viewLog
		var cmd tea.Cmd
		a.log, cmd = a.log.showTimedLogForm(msg.date, msg.start, msg.end)
		a.journey.date = a.log.date
		return a, cmd

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewLog:
		a.log, cmd = a.log.update(msg)
	case viewTimeline:
		a.timeline, cmd = a.timeline.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewJourney:
		a.journey, cmd = a.journey.update(msg)
	}
	a.syncDate()
	return a, cmd
}

// syncDate keeps the log and journey views on the same selected day.
func (a *App) syncDate() {
	switch a.activeView {
	case viewLog:
		a.journey.date = a.log.date
	case viewJourney:
		if a.log.date != a.journey.date {
			a.log.date = a.journey.date
			a.log.checkInCursor = 0
		}
	}
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewLog:
		return a.log.formActive
	case viewJourney:
		return a.journey.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewLog:
		content = a.log.view()
	case viewTimeline:
		content = a.timeline.view()
	case viewHistory:
		content = a.history.view()
	case viewReports:
		content = a.reports.view()
	case viewJourney:
		content = a.journey.view()
	}

	contentHeight := max(1, a.height-lipgloss.Height(header)-lipgloss.Height(footer))

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	st := a.log.st
	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("newlife") +
		mutedStyle.Render(fmt.Sprintf(" · day %d", st.DayNumber(a.log.now)))
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	left := footerStyle.Render(helpView)
	right := runningIndicator(a.log.st, a.log.now) + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []export.Format{export.FormatCSV, export.FormatJSON}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Format"), ""}
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+string(f)))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format export.Format) tea.Cmd {
	svc := a.svc
	return func() tea.Msg {
		home, err := os.UserHomeDir()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		now := svc.Now()
		path := filepath.Join(home, fmt.Sprintf("newlife-export-%s.%s", timecalc.Today(now), format))
		if err := export.ToFile(path, format, svc.State(), now); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

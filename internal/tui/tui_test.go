package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/newlife/internal/gateway"
	"github.com/sadopc/newlife/internal/providers"
	"github.com/sadopc/newlife/internal/service"
	"github.com/sadopc/newlife/internal/store"
	"github.com/sadopc/newlife/internal/structures"
	"github.com/sadopc/newlife/internal/timeline"
	"github.com/sadopc/newlife/internal/tracker"
)

var t0 = time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local)

const today = "2024-01-02"

type fakeAI struct {
	answer      *tracker.Categorization
	suggestions []gateway.Suggestion
}

func (f *fakeAI) Categorize(context.Context, string, []gateway.ProjectRef) (*tracker.Categorization, error) {
	return f.answer, nil
}

func (f *fakeAI) Suggest(context.Context, []string, int, string) ([]gateway.Suggestion, error) {
	return f.suggestions, nil
}

func newTestService(t *testing.T, ai service.Categorizer) *service.Service {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	n := 0
	svc := service.New(s, ai, providers.NewNopLogger(), providers.NewMetricsProvider(&structures.Config{}),
		service.WithClock(func() time.Time { return t0 }),
		service.WithIDs(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return svc
}

func newTestApp(t *testing.T, ai *fakeAI) App {
	t.Helper()
	app := NewApp(newTestService(t, ai), true)
	m, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App)
}

// run executes cmd and any batched commands, returning the produced
// messages in order.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// feed runs cmd and hands every resulting message back to the app.
func feed(t *testing.T, app App, cmd tea.Cmd) App {
	t.Helper()
	for _, msg := range run(cmd) {
		m, next := app.Update(msg)
		app = m.(App)
		app = feed(t, app, next)
	}
	return app
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends keys and drops the commands they return. Form init commands
// start cursor blinks that never settle, so only pressFeed runs them.
func press(t *testing.T, app App, names ...string) App {
	t.Helper()
	for _, k := range names {
		m, _ := app.Update(keyMsg(k))
		app = m.(App)
	}
	return app
}

func pressFeed(t *testing.T, app App, k string) App {
	t.Helper()
	m, cmd := app.Update(keyMsg(k))
	return feed(t, m.(App), cmd)
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	app := NewApp(newTestService(t, &fakeAI{}), false)

	if app.activeView != viewLog {
		t.Fatal("default view should be log")
	}
	if app.showHelp {
		t.Fatal("help should be hidden by default")
	}
	if app.exportPicking {
		t.Fatal("export picker should be hidden by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppLoadingState(t *testing.T) {
	app := NewApp(newTestService(t, &fakeAI{}), false)
	if got := app.View(); got != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", got)
	}
}

func TestAppViewStates(t *testing.T) {
	app := newTestApp(t, &fakeAI{})

	views := []viewState{viewLog, viewTimeline, viewHistory, viewReports, viewJourney}
	for _, v := range views {
		app.activeView = v
		if app.View() == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppTabCycles(t *testing.T) {
	app := newTestApp(t, &fakeAI{})
	for i := 1; i <= len(viewNames); i++ {
		app = press(t, app, "tab")
		if want := viewState(i % len(viewNames)); app.activeView != want {
			t.Fatalf("after %d tabs: view %d, want %d", i, app.activeView, want)
		}
	}

	app = press(t, app, "4")
	if app.activeView != viewReports {
		t.Fatalf("4 should open reports, got %d", app.activeView)
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app := newTestApp(t, &fakeAI{})
	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
	if !strings.Contains(header, "day 0") {
		t.Fatalf("header should show the day counter: %q", header)
	}
}

func TestAppStatusMessage(t *testing.T) {
	app := newTestApp(t, &fakeAI{})
	m, _ := app.Update(statusMsg{text: "test status"})
	app = m.(App)

	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppTickOnlyMovesClock(t *testing.T) {
	app := newTestApp(t, &fakeAI{})
	before := app.svc.State()

	later := t0.Add(time.Minute)
	m, cmd := app.Update(tickMsg(later))
	app = m.(App)
	if cmd == nil {
		t.Fatal("tick should schedule the next tick")
	}
	if !app.log.now.Equal(later) {
		t.Fatal("tick should advance the render clock")
	}
	if len(app.svc.State().CheckIns) != len(before.CheckIns) {
		t.Fatal("tick must not change state")
	}
}

// ============================================================
// Log view
// ============================================================

func TestLogSubmitWithProject(t *testing.T) {
	app := newTestApp(t, &fakeAI{})

	*app.log.formText = "ran 5k"
	*app.log.formProject = "p-sports"
	*app.log.formStart = "07:00"
	*app.log.formEnd = "07:30"
	*app.log.formProgress = ""
	var cmd tea.Cmd
	app.log, cmd = app.log.submitLog()
	app = feed(t, app, cmd)

	cs := app.log.checkIns()
	if len(cs) != 1 || cs[0].Text != "ran 5k" || cs[0].ProjectID != "p-sports" {
		t.Fatalf("unexpected check-ins: %+v", cs)
	}
	if cs[0].StartTime != "07:00" || cs[0].EndTime != "07:30" {
		t.Fatalf("window not stored: %+v", cs[0])
	}
	if app.status != "Logged" {
		t.Fatalf("status = %q", app.status)
	}
	if !strings.Contains(app.View(), "ran 5k") {
		t.Fatal("log view should list the check-in")
	}
}

func TestLogAutoCategorize(t *testing.T) {
	ai := &fakeAI{answer: &tracker.Categorization{MatchFound: false, NewProjectName: "Reading", NewProjectEmoji: "📚"}}
	app := newTestApp(t, ai)

	*app.log.formText = "read a chapter"
	*app.log.formProject = autoProject
	var cmd tea.Cmd
	app.log, cmd = app.log.submitLog()
	if !app.log.processing {
		t.Fatal("log should be processing while categorizing")
	}

	// A second submission is refused while the first is outstanding.
	var second tea.Cmd
	app.log, second = app.log.submitLog()
	msgs := run(second)
	if len(msgs) != 1 {
		t.Fatalf("expected one status message, got %d", len(msgs))
	}
	if s, ok := msgs[0].(statusMsg); !ok || !s.isError {
		t.Fatalf("expected an error status, got %#v", msgs[0])
	}

	app = feed(t, app, cmd)
	if app.log.processing {
		t.Fatal("processing should clear once the result arrives")
	}
	st := app.svc.State()
	if len(st.Projects) != 5 || st.Projects[4].Name != "Reading" {
		t.Fatalf("expected a new Reading project, got %+v", st.Projects)
	}
	if !strings.Contains(app.status, "new project") {
		t.Fatalf("status = %q", app.status)
	}
	if len(app.log.checkIns()) != 1 {
		t.Fatal("check-in should be visible after refresh")
	}
}

func TestCategorizedResultWhileFormOpen(t *testing.T) {
	ai := &fakeAI{answer: &tracker.Categorization{MatchFound: true, ProjectID: "p-sports"}}
	app := newTestApp(t, ai)

	*app.log.formText = "ran 5k"
	*app.log.formProject = autoProject
	var cmd tea.Cmd
	app.log, cmd = app.log.submitLog()

	// The user starts the next log before the classifier answers.
	app.log, _ = app.log.showLogForm()
	app = feed(t, app, cmd)

	if app.log.processing {
		t.Fatal("the result must clear processing even with a form open")
	}
	if !app.log.formActive {
		t.Fatal("the open form should survive the result")
	}
	if len(app.log.checkIns()) != 1 {
		t.Fatal("the categorized check-in should be visible")
	}

	app = press(t, app, "esc")
	*app.log.formText = "stretching"
	*app.log.formProject = autoProject
	app.log, cmd = app.log.submitLog()
	if !app.log.processing {
		t.Fatal("a later auto log should be accepted")
	}
	app = feed(t, app, cmd)
	if len(app.log.checkIns()) != 2 {
		t.Fatalf("expected 2 check-ins, got %d", len(app.log.checkIns()))
	}
}

func TestLogProjectOptions(t *testing.T) {
	svc := newTestService(t, &fakeAI{})
	l := newLogModel(svc, true)
	opts := l.projectOptions()
	if len(opts) != 5 || opts[0].Value != autoProject {
		t.Fatalf("expected auto plus 4 projects, got %d", len(opts))
	}

	l = newLogModel(svc, false)
	if opts := l.projectOptions(); opts[0].Value != "p-sports" {
		t.Fatalf("without AI the first option should be a project, got %q", opts[0].Value)
	}

	l.st = tracker.State{}
	opts = l.projectOptions()
	if len(opts) != 1 || opts[0].Value != tracker.UncategorizedID {
		t.Fatal("with no projects the placeholder should be offered")
	}
}

func TestLogTimerToggle(t *testing.T) {
	app := newTestApp(t, &fakeAI{})
	*app.log.formText = "study"
	*app.log.formProject = "p-ai"
	var cmd tea.Cmd
	app.log, cmd = app.log.submitLog()
	app = feed(t, app, cmd)

	app = pressFeed(t, app, "s")
	if len(app.svc.State().Running()) != 1 {
		t.Fatal("s should start the timer")
	}
	if app.status != "Timer started" {
		t.Fatalf("status = %q", app.status)
	}
	if !strings.Contains(app.renderFooter(), "●") {
		t.Fatal("footer should show the running timer")
	}

	app = pressFeed(t, app, "s")
	if len(app.svc.State().Running()) != 0 {
		t.Fatal("second s should stop the timer")
	}
}

func TestLogDeleteCheckIn(t *testing.T) {
	app := newTestApp(t, &fakeAI{})
	*app.log.formText = "walk"
	*app.log.formProject = "p-sports"
	var cmd tea.Cmd
	app.log, cmd = app.log.submitLog()
	app = feed(t, app, cmd)

	app = pressFeed(t, app, "d")
	if len(app.svc.State().CheckIns) != 0 {
		t.Fatal("d should delete the selected check-in")
	}
}

func TestLogDateNavigation(t *testing.T) {
	app := newTestApp(t, &fakeAI{})
	if app.log.date != today {
		t.Fatalf("date = %q", app.log.date)
	}
	app = press(t, app, "[")
	if app.log.date != "2024-01-01" {
		t.Fatalf("[ should go back a day, got %q", app.log.date)
	}
	app = press(t, app, "]", "]")
	if app.log.date != "2024-01-03" {
		t.Fatalf("] should go forward, got %q", app.log.date)
	}
	app = press(t, app, "t")
	if app.log.date != today {
		t.Fatal("t should return to today")
	}
}

func TestLogEscCancelsForm(t *testing.T) {
	app := newTestApp(t, &fakeAI{})
	app = press(t, app, "n")
	if !app.isFormActive() {
		t.Fatal("n should open the log form")
	}
	app = press(t, app, "esc")
	if app.isFormActive() {
		t.Fatal("esc should close the form")
	}
}

func TestProjectFormSubmit(t *testing.T) {
	app := newTestApp(t, &fakeAI{})

	app.log.formType = "project"
	*app.log.formName = "Reading"
	*app.log.formIcon = "📚"
	*app.log.formMode = "counter"
	app = feed(t, app, app.log.submitProjectForm())

	st := app.svc.State()
	p := st.Projects[len(st.Projects)-1]
	if p.Name != "Reading" || p.Icon != "📚" || p.TrackingMode != tracker.ModeCounter {
		t.Fatalf("unexpected project %+v", p)
	}

	app.log.formType = "delete_project"
	app.log.editingID = p.ID
	*app.log.formConfirm = false
	if cmd := app.log.submitProjectForm(); cmd != nil {
		t.Fatal("declined delete should do nothing")
	}
	*app.log.formConfirm = true
	app = feed(t, app, app.log.submitProjectForm())
	if _, ok := app.svc.State().Project(p.ID); ok {
		t.Fatal("confirmed delete should remove the project")
	}
}

// ============================================================
// Timeline view
// ============================================================

func TestTimelineOpensAtMorning(t *testing.T) {
	app := newTestApp(t, &fakeAI{})
	if app.timeline.offset != scrollHomeRow {
		t.Fatalf("offset = %d, want %d", app.timeline.offset, scrollHomeRow)
	}
	app.activeView = viewTimeline
	if !strings.Contains(app.View(), "07:00") {
		t.Fatal("timeline should show 07:00")
	}
}

func TestTimelineRowAt(t *testing.T) {
	tl := newTimelineModel(tracker.State{}, t0)
	tl.setSize(120, 36)

	if _, ok := tl.rowAt(firstRowY - 1); ok {
		t.Fatal("rows above the grid should not map")
	}
	if row, ok := tl.rowAt(firstRowY); !ok || row != tl.offset {
		t.Fatalf("first row = %d, %v", row, ok)
	}
	if _, ok := tl.rowAt(firstRowY + tl.visibleRows()); ok {
		t.Fatal("rows below the grid should not map")
	}
}

func TestTimelineMouseDrag(t *testing.T) {
	tl := newTimelineModel(tracker.State{}, t0)
	tl.setSize(120, 36)

	tl, _ = tl.update(tea.MouseMsg{X: 20, Y: firstRowY, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if !tl.sel.Active() {
		t.Fatal("press should start a selection")
	}
	tl, _ = tl.update(tea.MouseMsg{X: 20, Y: firstRowY + 3, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion})
	if got := tl.sel.Preview(); got != (timeline.Interval{Start: 420, End: 480}) {
		t.Fatalf("preview = %+v", got)
	}

	tl, cmd := tl.update(tea.MouseMsg{X: 20, Y: firstRowY + 3, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	msgs := run(cmd)
	if len(msgs) != 1 {
		t.Fatalf("release should emit one message, got %d", len(msgs))
	}
	picked := msgs[0].(timelinePickedMsg)
	if picked.start != "07:00" || picked.end != "08:00" || picked.date != today {
		t.Fatalf("picked = %+v", picked)
	}
	if tl.sel.Active() {
		t.Fatal("release should end the selection")
	}
}

func TestTimelineKeyboardSelection(t *testing.T) {
	tl := newTimelineModel(tracker.State{}, t0)
	tl.setSize(120, 36)

	tl, _ = tl.update(keyMsg(" "))
	tl, _ = tl.update(keyMsg("down"))
	tl, _ = tl.update(keyMsg("down"))
	tl, cmd := tl.update(keyMsg(" "))

	picked := run(cmd)[0].(timelinePickedMsg)
	if picked.start != "07:00" || picked.end != "07:45" {
		t.Fatalf("picked = %+v", picked)
	}
}

func TestTimelineEscCancels(t *testing.T) {
	tl := newTimelineModel(tracker.State{}, t0)
	tl.setSize(120, 36)
	tl, _ = tl.update(keyMsg(" "))
	tl, _ = tl.update(keyMsg("esc"))
	if tl.sel.Active() {
		t.Fatal("esc should cancel the selection")
	}
	if _, cmd := tl.update(keyMsg(" ")); cmd != nil {
		t.Fatal("space after cancel should start a new selection, not release")
	}
}

func TestTimelinePickOpensLogForm(t *testing.T) {
	app := newTestApp(t, &fakeAI{})
	app.activeView = viewTimeline

	m, _ := app.Update(timelinePickedMsg{date: today, start: "09:00", end: "10:30"})
	app = m.(App)
	if app.activeView != viewLog || !app.log.formActive {
		t.Fatal("a picked range should open the log form")
	}
	if *app.log.formStart != "09:00" || *app.log.formEnd != "10:30" {
		t.Fatalf("form window = %s–%s", *app.log.formStart, *app.log.formEnd)
	}
}

func TestTimelineRendersOverlappingBlocks(t *testing.T) {
	st := tracker.NewState(t0)
	st, _, _ = st.CreateCheckIn(tracker.NewCheckIn{ProjectID: "p-sports", Text: "ran 5k", Date: today, StartTime: "07:00", EndTime: "08:00"}, t0, "a")
	st, _, _ = st.CreateCheckIn(tracker.NewCheckIn{ProjectID: "p-job", Text: "emails", Date: today, StartTime: "07:30", EndTime: "08:30"}, t0, "b")
	st, _, _ = st.CreateCheckIn(tracker.NewCheckIn{ProjectID: "p-job", Text: "untimed", Date: today}, t0, "c")

	tl := newTimelineModel(st, t0)
	tl.setSize(120, 40)

	blocks, untimed := tl.blocks()
	if len(blocks) != 2 || untimed != 1 {
		t.Fatalf("blocks=%d untimed=%d", len(blocks), untimed)
	}
	for _, b := range blocks {
		if b.Lanes != 2 {
			t.Fatalf("overlapping blocks should share two lanes: %+v", b.Block)
		}
	}

	out := tl.view()
	for _, want := range []string{"ran 5k", "emails", "1 check-ins without a time"} {
		if !strings.Contains(out, want) {
			t.Fatalf("timeline missing %q", want)
		}
	}
}

// ============================================================
// History, reports, journey
// ============================================================

func TestHistoryShowsDaysAndJournal(t *testing.T) {
	st := tracker.NewState(t0)
	st, _, _ = st.CreateCheckIn(tracker.NewCheckIn{ProjectID: "p-sports", Text: "ran 5k", Date: today}, t0, "a")
	st, _, _ = st.SaveJournal(today, "felt **great**", t0, "j1")

	h := newHistoryModel(st, t0)
	h.setSize(120, 40)
	out := h.view()
	for _, want := range []string{"History", "ran 5k", "Journal", "great", "Day 0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("history missing %q", want)
		}
	}
}

func TestHistoryEmpty(t *testing.T) {
	h := newHistoryModel(tracker.State{}, t0)
	h.setSize(120, 40)
	if !strings.Contains(h.view(), "No history yet") {
		t.Fatal("empty history should say so")
	}
}

func TestSummarize(t *testing.T) {
	st := tracker.NewState(t0)
	secs := int64(1800)
	for i, p := range []string{"p-sports", "p-sports", "p-job"} {
		var c tracker.CheckIn
		st, c, _ = st.CreateCheckIn(tracker.NewCheckIn{ProjectID: p, Text: "x", Date: today}, t0, fmt.Sprint(i))
		st, _, _ = st.UpdateCheckIn(c.ID, tracker.CheckInPatch{DurationSeconds: &secs})
	}
	st, _, _ = st.CreateCheckIn(tracker.NewCheckIn{ProjectID: "p-job", Text: "old", Date: "2023-01-01"}, t0, "old")

	got := summarize(st, []string{"2024-01-01", today}, t0)
	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(got))
	}
	for _, s := range got {
		switch s.project.ID {
		case "p-sports":
			if s.seconds != 3600 || s.count != 2 {
				t.Fatalf("sports summary %+v", s)
			}
		case "p-job":
			if s.seconds != 1800 || s.count != 1 {
				t.Fatalf("job summary %+v", s)
			}
		}
	}
}

func TestReportsRangeNavigation(t *testing.T) {
	r := newReportsModel(tracker.State{}, t0)
	r.setSize(120, 40)

	first, n := r.dateRange()
	if first != "2023-12-27" || n != 7 {
		t.Fatalf("range = %s +%d", first, n)
	}
	r, _ = r.update(keyMsg("left"))
	if first, _ := r.dateRange(); first != "2023-12-20" {
		t.Fatalf("previous range starts %s", first)
	}
	r, _ = r.update(keyMsg("enter"))
	if first, _ := r.dateRange(); first != "2024-01-01" {
		t.Fatalf("week should start on Monday, got %s", first)
	}
	if !strings.Contains(r.view(), "No check-ins in this period") {
		t.Fatal("empty report should say so")
	}
}

func TestSuggestionsWhileJournalOpen(t *testing.T) {
	app := newTestApp(t, &fakeAI{})
	app = press(t, app, "5")
	app.journey, _ = app.journey.showJournalForm()
	app.journey.suggesting = true

	m, _ := app.Update(suggestionsMsg{suggestions: []gateway.Suggestion{{ProjectName: "Sports", Action: "Walk"}}})
	app = m.(App)
	if app.journey.suggesting || len(app.journey.suggestions) != 1 {
		t.Fatalf("suggestions not applied: %+v", app.journey.suggestions)
	}
	if !app.journey.formActive {
		t.Fatal("the journal form should stay open")
	}
}

func TestJournalFollowsSelectedDay(t *testing.T) {
	app := newTestApp(t, &fakeAI{})
	app = press(t, app, "[")
	if app.journey.date != "2024-01-01" {
		t.Fatalf("journey date = %q", app.journey.date)
	}

	app = press(t, app, "5")
	if !strings.Contains(app.View(), "Mon, Jan 01 2024") {
		t.Fatal("journey should show the selected day")
	}
	app.journey.formType = "journal"
	*app.journey.journal = "quiet day"
	app = feed(t, app, app.journey.save())
	if j, ok := app.svc.State().JournalOn("2024-01-01"); !ok || j.Content != "quiet day" {
		t.Fatalf("journal = %+v, %v", j, ok)
	}
	if _, ok := app.svc.State().JournalOn(today); ok {
		t.Fatal("today's journal should be untouched")
	}

	app = press(t, app, "t")
	if app.journey.date != today || app.log.date != today {
		t.Fatalf("t should return both views to today: %q %q", app.journey.date, app.log.date)
	}
}

func TestSyncPicksUpExternalWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "newlife.db")
	open := func() *service.Service {
		s, err := store.New(path)
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		svc := service.New(s, &fakeAI{}, providers.NewNopLogger(), providers.NewMetricsProvider(&structures.Config{}),
			service.WithClock(func() time.Time { return t0 }))
		if err := svc.Load(ctx); err != nil {
			t.Fatalf("load: %v", err)
		}
		return svc
	}

	ui := open()
	app := NewApp(ui, false)
	m, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app = m.(App)

	if _, err := open().Log(ctx, tracker.NewCheckIn{ProjectID: "p-job", Text: "sent CV"}); err != nil {
		t.Fatalf("log: %v", err)
	}
	changed, err := ui.Refresh(ctx)
	m, cmd := app.Update(syncedMsg{changed: changed, err: err})
	app = m.(App)

	if cmd == nil {
		t.Fatal("sync should schedule the next sync")
	}
	if len(app.log.checkIns()) != 1 || !strings.Contains(app.View(), "sent CV") {
		t.Fatal("the check-in written elsewhere should be shown")
	}
}

func TestJourneyView(t *testing.T) {
	app := newTestApp(t, &fakeAI{})
	app.activeView = viewJourney
	out := app.View()
	for _, want := range []string{"Day 0", "lost my job", "Nothing written yet"} {
		if !strings.Contains(out, want) {
			t.Fatalf("journey missing %q", want)
		}
	}
}

func TestJourneySaveSettingsAndJournal(t *testing.T) {
	app := newTestApp(t, &fakeAI{})

	app.journey.formType = "settings"
	*app.journey.eventName = "moved to Lisbon"
	*app.journey.startDate = "2023-12-25"
	app = feed(t, app, app.journey.save())
	if got := app.svc.State().Settings.EventName; got != "moved to Lisbon" {
		t.Fatalf("event = %q", got)
	}
	if got := app.svc.State().DayNumber(t0); got != 8 {
		t.Fatalf("day number = %d, want 8", got)
	}

	app.journey.formType = "journal"
	*app.journey.journal = "first week done"
	app = feed(t, app, app.journey.save())
	if j, ok := app.svc.State().JournalOn(today); !ok || j.Content != "first week done" {
		t.Fatalf("journal = %+v, %v", j, ok)
	}
}

func TestJourneyBadStartDate(t *testing.T) {
	app := newTestApp(t, &fakeAI{})
	app.journey.formType = "settings"
	*app.journey.eventName = "x"
	*app.journey.startDate = "25/12/2023"
	msgs := run(app.journey.save())
	if s, ok := msgs[0].(statusMsg); !ok || !s.isError {
		t.Fatalf("expected an error status, got %#v", msgs[0])
	}
}

func TestJourneySuggestions(t *testing.T) {
	ai := &fakeAI{suggestions: []gateway.Suggestion{{ProjectName: "Sports", Action: "Stretch for 10 minutes"}}}
	app := newTestApp(t, ai)
	app = press(t, app, "5")
	app = pressFeed(t, app, "g")

	if len(app.journey.suggestions) != 1 || app.journey.suggesting {
		t.Fatalf("suggestions = %+v", app.journey.suggestions)
	}
	if !strings.Contains(app.View(), "Stretch for 10 minutes") {
		t.Fatal("journey should list suggestions")
	}
}

// ============================================================
// Export picker
// ============================================================

func TestExportPicker(t *testing.T) {
	app := newTestApp(t, &fakeAI{})
	app = press(t, app, "x")
	if !app.exportPicking {
		t.Fatal("x should open the export picker")
	}
	app = press(t, app, "down")
	if app.exportCursor != 1 {
		t.Fatalf("cursor = %d", app.exportCursor)
	}
	app = press(t, app, "esc")
	if app.exportPicking {
		t.Fatal("esc should close the picker")
	}
}

// ============================================================
// Helpers
// ============================================================

func TestParseHMS(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		err  bool
	}{
		{"", 0, false},
		{"45", 2700, false},
		{"1:30", 5400, false},
		{"01:02:03", 3723, false},
		{"1:2:3:4", 0, true},
		{"abc", 0, true},
		{"-1:00", 0, true},
	}
	for _, tt := range tests {
		got, err := parseHMS(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("parseHMS(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseHMS(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestValidators(t *testing.T) {
	if validateClock("") != nil || validateClock("07:30") != nil || validateClock("7:30") == nil {
		t.Fatal("validateClock")
	}
	if validateDate(today) != nil || validateDate("2024-13-01") == nil {
		t.Fatal("validateDate")
	}
	if validateProgress("") != nil || validateProgress(" 40 ") != nil || validateProgress("forty") == nil {
		t.Fatal("validateProgress")
	}
	if p := parseProgress(" 40 "); p == nil || *p != 40 {
		t.Fatal("parseProgress")
	}
	if parseProgress("") != nil {
		t.Fatal("blank progress should be nil")
	}
}

func TestClip(t *testing.T) {
	if got := clip("hello", 10); got != "hello" {
		t.Fatalf("clip short = %q", got)
	}
	if got := clip("hello world", 6); got != "hello…" {
		t.Fatalf("clip long = %q", got)
	}
	if clip("hello", 1) != "" {
		t.Fatal("clip to one cell should be empty")
	}
}

func TestAggregateLabel(t *testing.T) {
	st := tracker.NewState(t0)
	st, _ = st.SetTrackingMode("p-sports", tracker.ModeCounter)
	st, _ = st.SetTrackingMode("p-english", tracker.ModeProgress)
	p := 60
	st, _, _ = st.CreateCheckIn(tracker.NewCheckIn{ProjectID: "p-sports", Text: "run", Date: today}, t0, "a")
	st, _, _ = st.CreateCheckIn(tracker.NewCheckIn{ProjectID: "p-english", Text: "unit", Date: today, Progress: &p}, t0, "b")

	sports, _ := st.Project("p-sports")
	english, _ := st.Project("p-english")
	job, _ := st.Project("p-job")
	if got := aggregateLabel(st, sports); got != "1 days" {
		t.Fatalf("counter label = %q", got)
	}
	if got := aggregateLabel(st, english); !strings.Contains(got, "60%") {
		t.Fatalf("progress label = %q", got)
	}
	if aggregateLabel(st, job) != "" {
		t.Fatal("untracked project should have no label")
	}
}

func TestTimerBadge(t *testing.T) {
	c := tracker.CheckIn{DurationSeconds: 90}
	if !strings.Contains(timerBadge(c, t0), "1m") {
		t.Fatal("stopped badge should show committed time")
	}
	since := t0.Add(-30 * time.Second)
	c.TimerActiveSince = &since
	if !strings.Contains(timerBadge(c, t0), "2m 0s") {
		t.Fatalf("running badge = %q", timerBadge(c, t0))
	}
	if timerBadge(tracker.CheckIn{}, t0) == "" {
		t.Fatal("empty badge should render a placeholder")
	}
}

func TestRunningIndicator(t *testing.T) {
	st := tracker.NewState(t0)
	if runningIndicator(st, t0) != "" {
		t.Fatal("no timers, no indicator")
	}
	since := t0.Add(-time.Minute)
	st.CheckIns = []tracker.CheckIn{
		{ID: "a", ProjectID: "p-sports", TimerActiveSince: &since},
		{ID: "b", ProjectID: "p-job", TimerActiveSince: &since},
	}
	if got := runningIndicator(st, t0); !strings.Contains(got, "2 timers 00:02:00") {
		t.Fatalf("indicator = %q", got)
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test: just verify they don't panic)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"counter", func() string { return counterStyle.Render("test") }},
		{"timerRunning", func() string { return timerRunningStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"subtitle", func() string { return subtitleStyle.Render("test") }},
		{"accent", func() string { return accentStyle.Render("test") }},
		{"success", func() string { return successStyle.Render("test") }},
		{"warning", func() string { return warningStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"highlight", func() string { return highlightStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
		{"selection", func() string { return selectionStyle.Render("test") }},
		{"block", func() string { return blockStyle("").Render("test") }},
	}

	for _, s := range styles {
		if s.fn() == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}

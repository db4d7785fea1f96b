package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/newlife/internal/gateway"
	"github.com/sadopc/newlife/internal/providers"
	"github.com/sadopc/newlife/internal/store"
	"github.com/sadopc/newlife/internal/structures"
	"github.com/sadopc/newlife/internal/timecalc"
	"github.com/sadopc/newlife/internal/tracker"
)

var t0 = time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

// fakeAI returns canned answers and records what it was asked.
type fakeAI struct {
	answer      *tracker.Categorization
	err         error
	suggestions []gateway.Suggestion
	seen        []gateway.ProjectRef
	beforeReply func()
}

func (f *fakeAI) Categorize(_ context.Context, _ string, projects []gateway.ProjectRef) (*tracker.Categorization, error) {
	f.seen = projects
	if f.beforeReply != nil {
		f.beforeReply()
	}
	return f.answer, f.err
}

func (f *fakeAI) Suggest(_ context.Context, _ []string, _ int, _ string) ([]gateway.Suggestion, error) {
	return f.suggestions, f.err
}

// failingStore refuses every write.
type failingStore struct{ BlobStore }

func (failingStore) PutMany(context.Context, map[string][]byte) error { return errors.New("disk full") }

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newFileStore(t *testing.T, path string) *store.Store {
	t.Helper()
	s, err := store.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// rejectWrites makes the database at path refuse every write to key.
func rejectWrites(t *testing.T, path, key string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(fmt.Sprintf(`CREATE TRIGGER reject_%[1]s BEFORE INSERT ON blobs
		WHEN NEW.key = '%[1]s' BEGIN SELECT RAISE(ABORT, 'disk full'); END`, key))
	require.NoError(t, err)
}

func newTestService(t *testing.T, blobs BlobStore, ai Categorizer, clk *clock) *Service {
	t.Helper()
	n := 0
	svc := New(blobs, ai, providers.NewNopLogger(), providers.NewMetricsProvider(&structures.Config{}),
		WithClock(clk.now),
		WithIDs(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

// ==================== Load ====================

func TestLoadEmptyStoreSeedsAndPersists(t *testing.T) {
	ctx := context.Background()
	blobs := newTestStore(t)
	svc := newTestService(t, blobs, &fakeAI{}, &clock{t0})

	st := svc.State()
	assert.Len(t, st.Projects, 4)
	assert.Equal(t, "lost my job", st.Settings.EventName)

	keys, err := blobs.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"projects", "checkins", "settings", "journals"}, keys)

	// start date survives a restart
	later := newTestService(t, blobs, &fakeAI{}, &clock{t0.Add(72 * time.Hour)})
	assert.True(t, later.State().Settings.StartDate.Equal(t0))
	assert.Equal(t, 3, later.State().DayNumber(t0.Add(72*time.Hour)))
}

func TestLoadMalformedBlobOnlyResetsThatBlob(t *testing.T) {
	ctx := context.Background()
	blobs := newTestStore(t)
	require.NoError(t, blobs.Put(ctx, "projects", []byte(`[{"id":"p1","name":"Mine","emoji":"x","trackingMode":"counter"}]`)))
	require.NoError(t, blobs.Put(ctx, "checkins", []byte(`{not json`)))
	require.NoError(t, blobs.Put(ctx, "settings", []byte(`{"eventName":"moved city","startDate":"2023-12-25T00:00:00Z"}`)))

	svc := newTestService(t, blobs, &fakeAI{}, &clock{t0})
	st := svc.State()
	require.Len(t, st.Projects, 1)
	assert.Equal(t, tracker.ModeCounter, st.Projects[0].TrackingMode)
	assert.Empty(t, st.CheckIns)
	assert.Equal(t, "moved city", st.Settings.EventName)

	// the unreadable blob is left alone until the next write
	raw, err := blobs.Get(ctx, "checkins")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw))
}

func TestStateSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	blobs := newTestStore(t)
	svc := newTestService(t, blobs, &fakeAI{}, &clock{t0})

	c, err := svc.Log(ctx, tracker.NewCheckIn{ProjectID: "p-ai", Text: "read a paper", StartTime: "09:00", EndTime: "10:30"})
	require.NoError(t, err)
	_, err = svc.SaveJournal(ctx, "2024-01-02", "# good day")
	require.NoError(t, err)

	again := newTestService(t, blobs, &fakeAI{}, &clock{t0})
	got, ok := again.State().CheckIn(c.ID)
	require.True(t, ok)
	assert.Equal(t, "10:30", got.EndTime)
	assert.True(t, got.Timestamp.Equal(t0))
	j, ok := again.State().JournalOn("2024-01-02")
	require.True(t, ok)
	assert.Equal(t, "# good day", j.Content)
}

// ==================== Mutations ====================

func TestLogBlankTextIsNoop(t *testing.T) {
	svc := newTestService(t, newTestStore(t), &fakeAI{}, &clock{t0})
	before := svc.State()

	c, err := svc.Log(context.Background(), tracker.NewCheckIn{ProjectID: "p-ai", Text: "   "})
	assert.NoError(t, err)
	assert.Nil(t, c)
	c, res, err := svc.LogWithAI(context.Background(), tracker.NewCheckIn{Text: ""})
	assert.NoError(t, err)
	assert.Nil(t, c)
	assert.Empty(t, res)
	assert.Equal(t, before, svc.State())
}

func TestWriteFailureKeepsState(t *testing.T) {
	blobs := newTestStore(t)
	svc := newTestService(t, blobs, &fakeAI{}, &clock{t0})
	svc.store = failingStore{blobs}

	_, err := svc.CreateProject(context.Background(), "Cooking", "")
	assert.Error(t, err)
	assert.Len(t, svc.State().Projects, 4)
}

func TestFailedCategorizedLogLeavesNothingOnDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "newlife.db")
	ai := &fakeAI{answer: &tracker.Categorization{MatchFound: true, ProjectID: "gone", NewProjectName: "Reading"}}
	svc := newTestService(t, newFileStore(t, path), ai, &clock{t0})
	rejectWrites(t, path, "projects")

	_, _, err := svc.LogWithAI(ctx, tracker.NewCheckIn{Text: "read a book"})
	require.Error(t, err)
	assert.Empty(t, svc.State().CheckIns)

	restarted := newTestService(t, newFileStore(t, path), &fakeAI{}, &clock{t0})
	assert.Empty(t, restarted.State().CheckIns)
	assert.Len(t, restarted.State().Projects, 4)
}

func TestFailedProjectDeleteLeavesNothingOnDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "newlife.db")
	svc := newTestService(t, newFileStore(t, path), &fakeAI{}, &clock{t0})
	c, err := svc.Log(ctx, tracker.NewCheckIn{ProjectID: "p-sports", Text: "ran 5k"})
	require.NoError(t, err)
	rejectWrites(t, path, "checkins")

	require.Error(t, svc.DeleteProject(ctx, "p-sports"))

	restarted := newTestService(t, newFileStore(t, path), &fakeAI{}, &clock{t0})
	st := restarted.State()
	_, ok := st.Project("p-sports")
	assert.True(t, ok)
	got, ok := st.CheckIn(c.ID)
	require.True(t, ok)
	assert.Equal(t, "p-sports", got.ProjectID)
}

func TestRefreshPicksUpOtherWriters(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "newlife.db")
	tui := newTestService(t, newFileStore(t, path), &fakeAI{}, &clock{t0})
	cli := newTestService(t, newFileStore(t, path), &fakeAI{}, &clock{t0})

	changed, err := tui.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = cli.Log(ctx, tracker.NewCheckIn{ProjectID: "p-ai", Text: "read a paper"})
	require.NoError(t, err)

	changed, err = tui.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, tui.State().CheckIns, 1)
	assert.Equal(t, "read a paper", tui.State().CheckIns[0].Text)

	changed, err = tui.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	// own writes are not reported back as external changes
	_, err = tui.Log(ctx, tracker.NewCheckIn{ProjectID: "p-ai", Text: "notes"})
	require.NoError(t, err)
	changed, err = tui.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "newlife.db")
	svc := newTestService(t, newFileStore(t, path), &fakeAI{}, &clock{t0})
	_, err := svc.Log(ctx, tracker.NewCheckIn{ProjectID: "p-ai", Text: "read a paper"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteProject(ctx, "p-job"))

	require.NoError(t, svc.Reset(ctx))
	assert.Empty(t, svc.State().CheckIns)
	assert.Len(t, svc.State().Projects, 4)

	restarted := newTestService(t, newFileStore(t, path), &fakeAI{}, &clock{t0})
	assert.Empty(t, restarted.State().CheckIns)
	assert.Len(t, restarted.State().Projects, 4)
}

func TestTimerThroughService(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t0}
	svc := newTestService(t, newTestStore(t), &fakeAI{}, clk)

	c, err := svc.Log(ctx, tracker.NewCheckIn{ProjectID: "p-english", Text: "duolingo"})
	require.NoError(t, err)
	started, err := svc.ToggleTimer(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, started.Running())

	clk.t = t0.Add(25 * time.Minute)
	stopped, err := svc.ToggleTimer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), stopped.DurationSeconds)
	assert.False(t, stopped.Running())
}

func TestCounterScenario(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t0}
	svc := newTestService(t, newTestStore(t), &fakeAI{}, clk)

	p, err := svc.CreateProject(ctx, "Gym", "🏋")
	require.NoError(t, err)
	require.NoError(t, svc.SetTrackingMode(ctx, p.ID, tracker.ModeCounter))
	for _, d := range []string{"2024-01-01", "2024-01-01", "2024-01-02"} {
		clk.t = clk.t.Add(time.Minute)
		_, err := svc.Log(ctx, tracker.NewCheckIn{ProjectID: p.ID, Text: "lift", Date: d})
		require.NoError(t, err)
	}
	v, ok := svc.State().Aggregate(p.ID)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestDeleteProjectThroughService(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestStore(t), &fakeAI{}, &clock{t0})
	_, err := svc.Log(ctx, tracker.NewCheckIn{ProjectID: "p-job", Text: "apply"})
	require.NoError(t, err)
	keep, err := svc.Log(ctx, tracker.NewCheckIn{ProjectID: "p-ai", Text: "read"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProject(ctx, "p-job"))
	st := svc.State()
	require.Len(t, st.CheckIns, 1)
	assert.Equal(t, *keep, st.CheckIns[0])
	assert.ErrorIs(t, svc.DeleteProject(ctx, "p-job"), tracker.ErrProjectNotFound)
}

// ==================== Categorization ====================

func TestGhostMatchCreatesGeneralProject(t *testing.T) {
	ai := &fakeAI{answer: &tracker.Categorization{MatchFound: true, ProjectID: "ghost-id"}}
	svc := newTestService(t, newTestStore(t), ai, &clock{t0})

	c, res, err := svc.LogWithAI(context.Background(), tracker.NewCheckIn{Text: "something"})
	require.NoError(t, err)
	assert.Equal(t, tracker.ResolvedCreated, res)
	p, ok := svc.State().Project(c.ProjectID)
	require.True(t, ok, "check-in must reference a live project")
	assert.Equal(t, "General", p.Name)
	assert.Equal(t, tracker.DefaultIcon, p.Icon)
	assert.Len(t, svc.State().Projects, 5)
}

func TestRanFiveKFromNoProjects(t *testing.T) {
	ctx := context.Background()
	blobs := newTestStore(t)
	require.NoError(t, blobs.Put(ctx, "projects", []byte(`[]`)))
	ai := &fakeAI{answer: &tracker.Categorization{MatchFound: false, NewProjectName: "Sports", NewProjectEmoji: "🏃"}}
	svc := newTestService(t, blobs, ai, &clock{t0})
	require.Empty(t, svc.State().Projects)

	c, res, err := svc.LogWithAI(ctx, tracker.NewCheckIn{Text: "ran 5k"})
	require.NoError(t, err)
	assert.Equal(t, tracker.ResolvedCreated, res)
	assert.Empty(t, ai.seen)

	st := svc.State()
	require.Len(t, st.Projects, 1)
	assert.Equal(t, "Sports", st.Projects[0].Name)
	assert.Equal(t, "🏃", st.Projects[0].Icon)
	assert.Equal(t, st.Projects[0].ID, c.ProjectID)
	assert.Equal(t, 0, c.ProgressOrZero())
	assert.Equal(t, timecalc.Today(t0), c.Date)

	// both touched blobs were written
	again := newTestService(t, blobs, ai, &clock{t0})
	assert.Len(t, again.State().Projects, 1)
	assert.Len(t, again.State().CheckIns, 1)
}

func TestGatewayFailureFallsBackToFirstProject(t *testing.T) {
	ai := &fakeAI{err: gateway.ErrMalformed}
	svc := newTestService(t, newTestStore(t), ai, &clock{t0})

	c, res, err := svc.LogWithAI(context.Background(), tracker.NewCheckIn{Text: "did stuff"})
	require.NoError(t, err)
	assert.Equal(t, tracker.ResolvedFallback, res)
	assert.Equal(t, "p-sports", c.ProjectID)
}

func TestGatewayFailureWithNoProjectsUsesPlaceholder(t *testing.T) {
	ctx := context.Background()
	blobs := newTestStore(t)
	require.NoError(t, blobs.Put(ctx, "projects", []byte(`[]`)))
	svc := newTestService(t, blobs, &fakeAI{err: gateway.ErrDisabled}, &clock{t0})

	c, res, err := svc.LogWithAI(ctx, tracker.NewCheckIn{Text: "did stuff"})
	require.NoError(t, err)
	assert.Equal(t, tracker.ResolvedFallback, res)
	assert.Equal(t, tracker.UncategorizedID, c.ProjectID)
	assert.Empty(t, svc.State().Projects)
	assert.Equal(t, tracker.UncategorizedName, svc.State().ProjectOrPlaceholder(c.ProjectID).Name)
}

func TestProjectDeletedWhileClassifying(t *testing.T) {
	ctx := context.Background()
	ai := &fakeAI{answer: &tracker.Categorization{MatchFound: true, ProjectID: "p-sports"}}
	svc := newTestService(t, newTestStore(t), ai, &clock{t0})
	ai.beforeReply = func() { require.NoError(t, svc.DeleteProject(ctx, "p-sports")) }

	in := tracker.NewCheckIn{Text: "ran 5k", Date: "2024-01-01"}
	answer := svc.Categorize(ctx, in.Text)
	c, res, err := svc.ApplyCategorization(ctx, in, answer)
	require.NoError(t, err)
	assert.Equal(t, tracker.ResolvedCreated, res)
	assert.NotEqual(t, "p-sports", c.ProjectID)
	assert.Equal(t, "2024-01-01", c.Date, "date captured at submit time")
	_, ok := svc.State().Project(c.ProjectID)
	assert.True(t, ok)
}

func TestSuggest(t *testing.T) {
	ai := &fakeAI{suggestions: []gateway.Suggestion{{ProjectName: "Sports", Action: "Stretch"}}}
	svc := newTestService(t, newTestStore(t), ai, &clock{t0})
	assert.Len(t, svc.Suggest(context.Background()), 1)

	ai.err = errors.New("offline")
	assert.Empty(t, svc.Suggest(context.Background()))
}

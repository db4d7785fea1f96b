package service

import (
	"context"
	"strings"
	"time"

	"github.com/sadopc/newlife/internal/gateway"
	"github.com/sadopc/newlife/internal/providers"
	"github.com/sadopc/newlife/internal/timecalc"
	"github.com/sadopc/newlife/internal/tracker"
)

// Categorize asks the classifier where text belongs, given the projects as
// they are now. It never fails: a classifier error is logged and reported as
// a nil answer, which ApplyCategorization turns into the fallback project.
// The state is not locked while the call is in flight.
func (s *Service) Categorize(ctx context.Context, text string) *tracker.Categorization {
	refs := gateway.Refs(s.State().Projects)

	start := time.Now()
	c, err := s.ai.Categorize(ctx, text, refs)
	s.metrics.ObserveGatewayDuration("categorize", time.Since(start))
	if err != nil {
		s.logger.Warnf(providers.TypeGateway, "Categorization failed, falling back: %s", err)
		return nil
	}
	s.logger.Debugf(providers.TypeGateway, "Categorized %q: match=%v id=%s new=%q", text, c.MatchFound, c.ProjectID, c.NewProjectName)
	return c
}

// ApplyCategorization creates the check-in described by in, attached to the
// project c resolves to against the current state. in.ProjectID is ignored.
// The match is re-checked here, so a project deleted while the classifier
// was running leads to a new project rather than a dangling reference.
func (s *Service) ApplyCategorization(ctx context.Context, in tracker.NewCheckIn, c *tracker.Categorization) (*tracker.CheckIn, tracker.Resolution, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, "", nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	next, projectID, res := s.state.ResolveCategory(c, now, s.newID())
	in.ProjectID = projectID
	next, ci, err := next.CreateCheckIn(in, now, s.newID())
	if err != nil {
		return nil, res, err
	}

	blobs := []tracker.Blob{tracker.BlobCheckIns}
	if res == tracker.ResolvedCreated {
		blobs = append(blobs, tracker.BlobProjects)
	}
	if err := s.commitLocked(ctx, next, blobs...); err != nil {
		return nil, res, err
	}
	s.metrics.IncCategorization(string(res))
	s.logger.Infof(providers.TypeApp, "Logged %q to %s (%s)", ci.Text, projectID, res)
	return &ci, res, nil
}

// LogWithAI categorizes in.Text and logs it. Blank text is ignored.
func (s *Service) LogWithAI(ctx context.Context, in tracker.NewCheckIn) (*tracker.CheckIn, tracker.Resolution, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, "", nil
	}
	if in.Date == "" {
		in.Date = timecalc.Today(s.now())
	}
	return s.ApplyCategorization(ctx, in, s.Categorize(ctx, in.Text))
}

// Suggest returns ideas for today. A classifier error yields an empty list.
func (s *Service) Suggest(ctx context.Context) []gateway.Suggestion {
	st := s.State()
	names := make([]string, len(st.Projects))
	for i, p := range st.Projects {
		names[i] = p.Name
	}

	start := time.Now()
	out, err := s.ai.Suggest(ctx, names, st.DayNumber(s.now()), st.Settings.EventName)
	s.metrics.ObserveGatewayDuration("suggest", time.Since(start))
	if err != nil {
		s.logger.Warnf(providers.TypeGateway, "Suggestions failed: %s", err)
		return nil
	}
	return out
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/sadopc/newlife/internal/providers"
	"github.com/sadopc/newlife/internal/tracker"
)

func (s *Service) CreateProject(ctx context.Context, name, icon string) (tracker.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, p, err := s.state.CreateProject(name, icon, s.now(), s.newID())
	if err != nil {
		return tracker.Project{}, err
	}
	if err := s.commitLocked(ctx, next, tracker.BlobProjects); err != nil {
		return tracker.Project{}, err
	}
	s.logger.Infof(providers.TypeApp, "Created project %s %q", p.ID, p.Name)
	return p, nil
}

func (s *Service) RenameProject(ctx context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.state.RenameProject(id, name)
	if err != nil {
		return err
	}
	return s.commitLocked(ctx, next, tracker.BlobProjects)
}

func (s *Service) SetTrackingMode(ctx context.Context, id string, mode tracker.TrackingMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.state.SetTrackingMode(id, mode)
	if err != nil {
		return err
	}
	return s.commitLocked(ctx, next, tracker.BlobProjects)
}

// DeleteProject removes the project and its check-ins.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.state.DeleteProject(id)
	if err != nil {
		return err
	}
	removed := len(s.state.CheckIns) - len(next.CheckIns)
	if err := s.commitLocked(ctx, next, tracker.BlobProjects, tracker.BlobCheckIns); err != nil {
		return err
	}
	s.logger.Infof(providers.TypeApp, "Deleted project %s and %d check-ins", id, removed)
	return nil
}

// Log records a check-in against in.ProjectID. Blank text is ignored: the
// result is nil with no error and nothing changes.
func (s *Service) Log(ctx context.Context, in tracker.NewCheckIn) (*tracker.CheckIn, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next, c, err := s.state.CreateCheckIn(in, s.now(), s.newID())
	if err != nil {
		return nil, err
	}
	if err := s.commitLocked(ctx, next, tracker.BlobCheckIns); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) UpdateCheckIn(ctx context.Context, id string, patch tracker.CheckInPatch) (tracker.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, c, err := s.state.UpdateCheckIn(id, patch)
	if err != nil {
		return tracker.CheckIn{}, err
	}
	if err := s.commitLocked(ctx, next, tracker.BlobCheckIns); err != nil {
		return tracker.CheckIn{}, err
	}
	return c, nil
}

// ToggleTimer starts or stops the check-in's timer.
func (s *Service) ToggleTimer(ctx context.Context, id string) (tracker.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, c, err := s.state.ToggleTimer(id, s.now())
	if err != nil {
		return tracker.CheckIn{}, err
	}
	if err := s.commitLocked(ctx, next, tracker.BlobCheckIns); err != nil {
		return tracker.CheckIn{}, err
	}
	return c, nil
}

func (s *Service) DeleteCheckIn(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.state.DeleteCheckIn(id)
	if err != nil {
		return err
	}
	return s.commitLocked(ctx, next, tracker.BlobCheckIns)
}

// SaveJournal upserts the journal entry for date.
func (s *Service) SaveJournal(ctx context.Context, date, content string) (tracker.DailyJournal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, j, err := s.state.SaveJournal(date, content, s.now(), s.newID())
	if err != nil {
		return tracker.DailyJournal{}, err
	}
	if err := s.commitLocked(ctx, next, tracker.BlobJournals); err != nil {
		return tracker.DailyJournal{}, err
	}
	return j, nil
}

func (s *Service) UpdateSettings(ctx context.Context, eventName string, startDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commitLocked(ctx, s.state.UpdateSettings(eventName, startDate), tracker.BlobSettings)
}

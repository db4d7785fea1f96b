// Package service holds the live tracker.State, persists the blobs each
// mutation touches and runs classifier calls against it.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/sadopc/newlife/internal/gateway"
	"github.com/sadopc/newlife/internal/providers"
	"github.com/sadopc/newlife/internal/store"
	"github.com/sadopc/newlife/internal/tracker"
)

type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// PutMany stores all of blobs or none of them.
	PutMany(ctx context.Context, blobs map[string][]byte) error
	Keys(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, key string) error
}

type Categorizer interface {
	Categorize(ctx context.Context, text string, projects []gateway.ProjectRef) (*tracker.Categorization, error)
	Suggest(ctx context.Context, projectNames []string, dayCount int, eventName string) ([]gateway.Suggestion, error)
}

type Service struct {
	mu      sync.Mutex
	state   tracker.State
	store   BlobStore
	ai      Categorizer
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	now     func() time.Time
	newID   func() string

	// raw is the last payload read or written per blob.
	raw map[tracker.Blob][]byte
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs replaces the uuid generator.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func New(blobs BlobStore, ai Categorizer, logger providers.Logger, metrics providers.MetricsProviderInterface, opts ...Option) *Service {
	s := &Service{
		store:   blobs,
		ai:      ai,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
		newID:   uuid.NewString,
		raw:     make(map[tracker.Blob][]byte),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = tracker.NewState(s.now())
	return s
}

// Now is the service clock.
func (s *Service) Now() time.Time { return s.now() }

// State returns the current snapshot. Mutations never modify a published
// snapshot in place, so the caller may read it freely but must not write.
func (s *Service) State() tracker.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load reads every blob independently. A missing blob takes its default and
// is written back; a malformed one takes its default in memory only and is
// logged.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Service) loadLocked(ctx context.Context) error {
	now := s.now()
	next := tracker.NewState(now)
	next.Projects = nil
	var missing []tracker.Blob

	for _, b := range tracker.AllBlobs {
		data, err := s.store.Get(ctx, string(b))
		if err == nil {
			err = decodeBlob(&next, b, data)
		}
		switch {
		case err == nil:
			s.raw[b] = data
			continue
		case errors.Is(err, store.ErrNotFound):
			s.logger.Infof(providers.TypeStore, "Blob %s absent, using defaults", b)
			missing = append(missing, b)
		default:
			s.logger.Warnf(providers.TypeStore, "Blob %s unreadable, using defaults: %s", b, err)
		}
		resetBlob(&next, b, now)
	}

	s.state = next
	s.metrics.SetCheckInsTotal(len(next.CheckIns))
	if len(missing) > 0 {
		if err := s.writeLocked(ctx, next, missing...); err != nil {
			s.logger.Warnf(providers.TypeStore, "Saving defaults: %s", err)
		}
	}
	return nil
}

// Refresh re-reads the stored blobs and adopts those another process has
// rewritten since they were last read or written here. Absent or malformed
// blobs keep their current value. changed reports whether the state moved.
func (s *Service) Refresh(ctx context.Context) (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	for _, b := range tracker.AllBlobs {
		data, err := s.store.Get(ctx, string(b))
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("refresh %s: %w", b, err)
		}
		if bytes.Equal(data, s.raw[b]) {
			continue
		}
		fresh := next
		if err := decodeBlob(&fresh, b, data); err != nil {
			s.logger.Warnf(providers.TypeStore, "Blob %s unreadable on refresh, keeping current: %s", b, err)
			continue
		}
		next = fresh
		s.raw[b] = data
		changed = true
	}
	if changed {
		s.state = next
		s.metrics.SetCheckInsTotal(len(next.CheckIns))
		s.logger.Debugf(providers.TypeStore, "Picked up external changes")
	}
	return changed, nil
}

// Reset deletes every stored blob and starts over from the first-run state.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.store.Keys(ctx)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	for _, k := range keys {
		if err := s.store.Delete(ctx, k); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	clear(s.raw)
	s.logger.Infof(providers.TypeApp, "Reset %d blobs", len(keys))
	return s.loadLocked(ctx)
}

// decodeBlob replaces one field of st with data. The field is only assigned
// on success, and never decoded in place, so a published snapshot sharing
// st's slices is left untouched.
func decodeBlob(st *tracker.State, b tracker.Blob, data []byte) error {
	switch b {
	case tracker.BlobProjects:
		var v []tracker.Project
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		st.Projects = v
	case tracker.BlobCheckIns:
		var v []tracker.CheckIn
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		st.CheckIns = v
	case tracker.BlobSettings:
		v := st.Settings
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		st.Settings = v
	case tracker.BlobJournals:
		var v []tracker.DailyJournal
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		st.Journals = v
	default:
		return fmt.Errorf("unknown blob %q", b)
	}
	return nil
}

func resetBlob(st *tracker.State, b tracker.Blob, now time.Time) {
	switch b {
	case tracker.BlobProjects:
		st.Projects = tracker.DefaultProjects(now)
	case tracker.BlobCheckIns:
		st.CheckIns = nil
	case tracker.BlobSettings:
		st.Settings = tracker.DefaultSettings(now)
	case tracker.BlobJournals:
		st.Journals = nil
	}
}

func encodeBlob(st tracker.State, b tracker.Blob) ([]byte, error) {
	switch b {
	case tracker.BlobProjects:
		return json.Marshal(nonNil(st.Projects))
	case tracker.BlobCheckIns:
		return json.Marshal(nonNil(st.CheckIns))
	case tracker.BlobSettings:
		return json.Marshal(st.Settings)
	case tracker.BlobJournals:
		return json.Marshal(nonNil(st.Journals))
	}
	return nil, fmt.Errorf("unknown blob %q", b)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// writeLocked persists the named blobs of next in one transaction.
func (s *Service) writeLocked(ctx context.Context, next tracker.State, blobs ...tracker.Blob) error {
	start := time.Now()
	defer func() { s.metrics.ObservePersistenceDuration(time.Since(start)) }()

	payloads := make(map[string][]byte, len(blobs))
	for _, b := range blobs {
		data, err := encodeBlob(next, b)
		if err != nil {
			return fmt.Errorf("encode %s: %w", b, err)
		}
		payloads[string(b)] = data
	}
	if err := s.store.PutMany(ctx, payloads); err != nil {
		return err
	}
	for _, b := range blobs {
		s.raw[b] = payloads[string(b)]
	}
	s.metrics.SetCheckInsTotal(len(next.CheckIns))
	return nil
}

// commitLocked persists the touched blobs and then publishes next. On a
// write error the in-memory state is left as it was.
func (s *Service) commitLocked(ctx context.Context, next tracker.State, blobs ...tracker.Blob) error {
	if err := s.writeLocked(ctx, next, blobs...); err != nil {
		s.logger.Errorf(providers.TypeStore, "Persist %v: %s", blobs, err)
		return fmt.Errorf("save: %w", err)
	}
	s.state = next
	return nil
}

// Package tracker holds the in-memory event list shared by the CLI and TUI.
// It keeps the cache in step with the store: writes go to the store first
// and touch the cache only once they succeed.
package tracker

import (
	"fmt"
	"time"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/logger"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/stats"
	"github.com/julianstephens/moodlit/internal/storage"
)

type Session struct {
	store  storage.Provider
	events []models.Event
	now    func() time.Time
}

type Option func(*Session)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// New returns an empty session. Call Refresh to populate it.
func New(store storage.Provider, opts ...Option) *Session {
	s := &Session{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open builds a session and loads the live events.
func Open(store storage.Provider, opts ...Option) (*Session, error) {
	s := New(store, opts...)
	if err := s.Refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) Store() storage.Provider {
	return s.store
}

// Now returns the session clock truncated to event precision.
func (s *Session) Now() time.Time {
	return s.now().Truncate(constants.EventPrecision)
}

// Refresh replaces the cache with the store's live events.
func (s *Session) Refresh() error {
	events, err := s.store.GetAllEvents()
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}
	s.events = events
	logger.Debug("Session refreshed", "events", len(events))
	return nil
}

// Events returns a copy of the cached live events in insertion order.
func (s *Session) Events() []models.Event {
	return append([]models.Event(nil), s.events...)
}

func (s *Session) Len() int {
	return len(s.events)
}

// Record creates an event stamped with the current time and persists it.
func (s *Session) Record(evaluation bool) (models.Event, error) {
	event := models.NewEvent(s.Now(), evaluation)
	if err := s.store.SaveEvent(event); err != nil {
		return models.Event{}, fmt.Errorf("failed to record %s event: %w", event.Label(), err)
	}
	s.events = append(s.events, event)
	logger.Info("Event recorded", "id", event.ID, "evaluation", event.Label())
	return event, nil
}

// Delete soft-deletes id in the store, then drops it from the cache.
func (s *Session) Delete(id string) error {
	if err := s.store.DeleteEvent(id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	for i, e := range s.events {
		if e.ID == id {
			s.events = append(s.events[:i:i], s.events[i+1:]...)
			break
		}
	}
	logger.Info("Event deleted", "id", id)
	return nil
}

// Restore undoes a soft delete. The cache is reloaded so the event returns
// to its original insertion position.
func (s *Session) Restore(id string) error {
	if err := s.store.RestoreEvent(id); err != nil {
		return fmt.Errorf("failed to restore event: %w", err)
	}
	logger.Info("Event restored", "id", id)
	return s.Refresh()
}

// Deleted returns soft-deleted events dated inside window w, newest first.
func (s *Session) Deleted(w stats.Window) ([]models.Event, error) {
	all, err := s.store.GetAllEventsIncludingDeleted()
	if err != nil {
		return nil, fmt.Errorf("failed to load deleted events: %w", err)
	}
	var deleted []models.Event
	for _, e := range all {
		if e.IsDeleted() {
			deleted = append(deleted, e)
		}
	}
	deleted, err = stats.Filter(deleted, w, s.Now())
	if err != nil {
		return nil, err
	}
	return stats.Recent(deleted, 0), nil
}

// Filtered returns the cached events inside window w.
func (s *Session) Filtered(w stats.Window) ([]models.Event, error) {
	return stats.Filter(s.events, w, s.Now())
}

// Rate computes the positive rate over window w. It returns
// stats.ErrNoEvents when the window is empty.
func (s *Session) Rate(w stats.Window) (stats.Rate, error) {
	events, err := s.Filtered(w)
	if err != nil {
		return stats.Rate{}, err
	}
	return stats.CalculateRate(events)
}

// Recent returns at most n events inside window w, newest first.
func (s *Session) Recent(w stats.Window, n int) ([]models.Event, error) {
	events, err := s.Filtered(w)
	if err != nil {
		return nil, err
	}
	return stats.Recent(events, n), nil
}

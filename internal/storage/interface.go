package storage

import (
	"errors"
	"fmt"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/models"
)

var (
	// ErrNotFound is returned when no live event carries the requested ID.
	ErrNotFound = errors.New("event not found")
	// ErrNotDeleted is returned when restoring an event that is still live.
	ErrNotDeleted = errors.New("event is not deleted")
	// ErrDuplicateID is returned when saving an event whose ID already exists.
	ErrDuplicateID = errors.New("event id already exists")
	// ErrNotLoaded is returned when a store is used before Init or Load.
	ErrNotLoaded = errors.New("storage not loaded")
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Events
	SaveEvent(models.Event) error
	GetEvent(id string) (models.Event, error)
	// GetAllEvents returns live events in insertion order.
	GetAllEvents() ([]models.Event, error)
	GetAllEventsIncludingDeleted() ([]models.Event, error)
	DeleteEvent(id string) error
	RestoreEvent(id string) error

	// Utils
	GetConfigPath() string
}

// DefaultSettings returns the settings written by Init.
func DefaultSettings() models.Settings {
	return models.Settings{
		DefaultFilter: constants.DefaultFilter,
		HistoryLimit:  constants.DefaultHistoryLimit,
		Timezone:      constants.DefaultTimezone,
	}
}

// NotFound wraps ErrNotFound with the offending ID.
func NotFound(id string) error {
	return fmt.Errorf("event with id %s: %w", id, ErrNotFound)
}

// AlreadyDeleted reports a delete of a soft-deleted event. It wraps
// ErrNotFound because the event is no longer visible.
func AlreadyDeleted(id string) error {
	return fmt.Errorf("event with id %s is already deleted: %w", id, ErrNotFound)
}

// NotDeleted wraps ErrNotDeleted with the offending ID.
func NotDeleted(id string) error {
	return fmt.Errorf("cannot restore event %s: %w", id, ErrNotDeleted)
}

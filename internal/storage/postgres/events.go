package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/storage"
)

const selectEvents = "SELECT id, date, evaluation, deleted_at FROM events"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (models.Event, error) {
	var e models.Event
	var deletedAt sql.NullTime
	if err := row.Scan(&e.ID, &e.Date, &e.Evaluation, &deletedAt); err != nil {
		return models.Event{}, err
	}
	e.Date = e.Date.UTC().Truncate(constants.EventPrecision)
	if deletedAt.Valid {
		ts := deletedAt.Time.UTC().Format(time.RFC3339)
		e.DeletedAt = &ts
	}
	return e, nil
}

func (s *Store) SaveEvent(event models.Event) error {
	var exists bool
	if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)", event.ID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check event existence: %w", err)
	}
	if exists {
		return fmt.Errorf("failed to save event %s: %w", event.ID, storage.ErrDuplicateID)
	}

	_, err := s.db.Exec(
		"INSERT INTO events (id, date, evaluation) VALUES ($1, $2, $3)",
		event.ID, event.Date.UTC().Truncate(constants.EventPrecision), event.Evaluation,
	)
	if err != nil {
		return fmt.Errorf("failed to save event %s: %w", event.ID, err)
	}
	return nil
}

func (s *Store) GetEvent(id string) (models.Event, error) {
	e, err := scanEvent(s.db.QueryRow(selectEvents+" WHERE id = $1 AND deleted_at IS NULL", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Event{}, storage.NotFound(id)
		}
		return models.Event{}, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	return e, nil
}

func (s *Store) GetAllEvents() ([]models.Event, error) {
	return s.queryEvents(selectEvents + " WHERE deleted_at IS NULL ORDER BY seq")
}

func (s *Store) GetAllEventsIncludingDeleted() ([]models.Event, error) {
	return s.queryEvents(selectEvents + " ORDER BY seq")
}

func (s *Store) queryEvents(query string) ([]models.Event, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// deletedAt returns the soft-delete marker for id, or storage.ErrNotFound.
func (s *Store) deletedAt(id string) (sql.NullTime, error) {
	var deletedAt sql.NullTime
	err := s.db.QueryRow("SELECT deleted_at FROM events WHERE id = $1", id).Scan(&deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return deletedAt, storage.NotFound(id)
	}
	if err != nil {
		return deletedAt, fmt.Errorf("failed to check event existence: %w", err)
	}
	return deletedAt, nil
}

func (s *Store) DeleteEvent(id string) error {
	deletedAt, err := s.deletedAt(id)
	if err != nil {
		return err
	}
	if deletedAt.Valid {
		return storage.AlreadyDeleted(id)
	}

	if _, err := s.db.Exec("UPDATE events SET deleted_at = $1 WHERE id = $2", time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	return nil
}

func (s *Store) RestoreEvent(id string) error {
	deletedAt, err := s.deletedAt(id)
	if err != nil {
		return err
	}
	if !deletedAt.Valid {
		return storage.NotDeleted(id)
	}

	if _, err := s.db.Exec("UPDATE events SET deleted_at = NULL WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to restore event %s: %w", id, err)
	}
	return nil
}

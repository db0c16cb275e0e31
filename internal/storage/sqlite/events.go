package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/storage"
)

// Dates are stored as fixed-width RFC3339 UTC text so lexical order matches
// chronological order.
func formatDate(t time.Time) string {
	return t.UTC().Truncate(constants.EventPrecision).Format(time.RFC3339)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid event date %q: %w", s, err)
	}
	return t.Truncate(constants.EventPrecision), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (models.Event, error) {
	var e models.Event
	var date string
	var evaluation int
	var deletedAt sql.NullString
	if err := row.Scan(&e.ID, &date, &evaluation, &deletedAt); err != nil {
		return models.Event{}, err
	}

	parsed, err := parseDate(date)
	if err != nil {
		return models.Event{}, err
	}
	e.Date = parsed
	e.Evaluation = evaluation == 1
	if deletedAt.Valid {
		e.DeletedAt = &deletedAt.String
	}
	return e, nil
}

func (s *Store) SaveEvent(event models.Event) error {
	var exists int
	if err := s.db.QueryRow("SELECT count(*) FROM events WHERE id = ?", event.ID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check event existence: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("failed to save event %s: %w", event.ID, storage.ErrDuplicateID)
	}

	evaluation := 0
	if event.Evaluation {
		evaluation = 1
	}

	_, err := s.db.Exec(
		"INSERT INTO events (id, date, evaluation) VALUES (?, ?, ?)",
		event.ID, formatDate(event.Date), evaluation,
	)
	if err != nil {
		return fmt.Errorf("failed to save event %s: %w", event.ID, err)
	}
	return nil
}

func (s *Store) GetEvent(id string) (models.Event, error) {
	row := s.db.QueryRow(
		"SELECT id, date, evaluation, deleted_at FROM events WHERE id = ? AND deleted_at IS NULL", id,
	)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Event{}, storage.NotFound(id)
		}
		return models.Event{}, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	return e, nil
}

func (s *Store) GetAllEvents() ([]models.Event, error) {
	return s.queryEvents("SELECT id, date, evaluation, deleted_at FROM events WHERE deleted_at IS NULL ORDER BY seq")
}

func (s *Store) GetAllEventsIncludingDeleted() ([]models.Event, error) {
	return s.queryEvents("SELECT id, date, evaluation, deleted_at FROM events ORDER BY seq")
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

func (s *Store) DeleteEvent(id string) error {
	// Soft delete: set deleted_at timestamp instead of removing the record
	var deletedAt sql.NullString
	err := s.db.QueryRow("SELECT deleted_at FROM events WHERE id = ?", id).Scan(&deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.NotFound(id)
		}
		return fmt.Errorf("failed to check event existence: %w", err)
	}

	if deletedAt.Valid {
		return storage.AlreadyDeleted(id)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.Exec("UPDATE events SET deleted_at = ? WHERE id = ?", now, id); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	return nil
}

func (s *Store) RestoreEvent(id string) error {
	var deletedAt sql.NullString
	err := s.db.QueryRow("SELECT deleted_at FROM events WHERE id = ?", id).Scan(&deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.NotFound(id)
		}
		return fmt.Errorf("failed to check event existence: %w", err)
	}

	if !deletedAt.Valid {
		return storage.NotDeleted(id)
	}

	if _, err := s.db.Exec("UPDATE events SET deleted_at = NULL WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to restore event %s: %w", id, err)
	}
	return nil
}

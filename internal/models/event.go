package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/moodlit/internal/constants"
)

const (
	EvaluationPositive = true
	EvaluationNegative = false
)

// Event is a single positive or negative entry. Date and Evaluation are
// fixed once the event is created; the store never updates them.
type Event struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	Evaluation bool      `json:"evaluation"`
	DeletedAt  *string   `json:"deleted_at,omitempty"` // RFC3339, set by soft delete
}

// NewEvent creates an event with a fresh ID. The date is truncated to
// second precision.
func NewEvent(date time.Time, evaluation bool) Event {
	return Event{
		ID:         uuid.New().String(),
		Date:       date.Truncate(constants.EventPrecision),
		Evaluation: evaluation,
	}
}

// Label returns "positive" or "negative".
func (e Event) Label() string {
	return EvaluationLabel(e.Evaluation)
}

func (e Event) IsDeleted() bool {
	return e.DeletedAt != nil
}

// EvaluationLabel returns the display name of an evaluation
func EvaluationLabel(evaluation bool) string {
	if evaluation {
		return "positive"
	}
	return "negative"
}

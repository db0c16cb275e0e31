// Package stats holds the pure computations over event lists: the
// positive rate, time-window filters and recent-history truncation.
package stats

import (
	"errors"
	"fmt"

	"github.com/julianstephens/moodlit/internal/models"
)

// ErrNoEvents is returned when a rate is requested for an empty collection.
// An empty collection has no defined rate; callers render NoDataLabel.
var ErrNoEvents = errors.New("no events to rate")

// NoDataLabel is shown in place of a percentage when there are no events.
const NoDataLabel = "--%"

// fullScale is 100% expressed in hundredths of a percent.
const fullScale = 10000

// Rate is the split between positive and negative events. Percentages are
// kept in hundredths of a percent so the two sides always sum to exactly 100.
type Rate struct {
	Total    int
	Positive int
	Negative int

	positiveHundredths int
}

// CalculateRate returns the positive/negative split of events, rounded half
// up to two decimals. It returns ErrNoEvents for an empty slice.
func CalculateRate(events []models.Event) (Rate, error) {
	if len(events) == 0 {
		return Rate{}, ErrNoEvents
	}

	positive := 0
	for _, e := range events {
		if e.Evaluation {
			positive++
		}
	}

	total := len(events)
	return Rate{
		Total:              total,
		Positive:           positive,
		Negative:           total - positive,
		positiveHundredths: roundHalfUp(positive*fullScale, total),
	}, nil
}

func roundHalfUp(num, den int) int {
	return (2*num + den) / (2 * den)
}

// PositiveHundredths returns the positive share in hundredths of a percent.
func (r Rate) PositiveHundredths() int {
	return r.positiveHundredths
}

// NegativeHundredths returns the negative share in hundredths of a percent.
func (r Rate) NegativeHundredths() int {
	if r.Total == 0 {
		return 0
	}
	return fullScale - r.positiveHundredths
}

// FormatPositive renders the positive share, e.g. "66.67%".
func (r Rate) FormatPositive() string {
	if r.Total == 0 {
		return NoDataLabel
	}
	return formatHundredths(r.PositiveHundredths())
}

// FormatNegative renders the negative share, e.g. "33.33%".
func (r Rate) FormatNegative() string {
	if r.Total == 0 {
		return NoDataLabel
	}
	return formatHundredths(r.NegativeHundredths())
}

func formatHundredths(v int) string {
	return fmt.Sprintf("%d.%02d%%", v/100, v%100)
}

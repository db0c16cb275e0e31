package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/stats"
	"github.com/julianstephens/moodlit/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictMissingEventID   ConflictType = "missing_event_id"
	ConflictDuplicateEventID ConflictType = "duplicate_event_id"
	ConflictZeroDate         ConflictType = "zero_date"
	ConflictFutureDate       ConflictType = "future_date"
	ConflictInvalidSetting   ConflictType = "invalid_setting"
)

// futureTolerance absorbs clock skew between machines sharing a database.
const futureTolerance = 5 * time.Minute

// Conflict represents a validation issue
type Conflict struct {
	Type        ConflictType
	Description string
	EventIDs    []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No problems detected."
	}

	var b strings.Builder
	b.WriteString("Problems detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

func (vr *ValidationResult) add(t ConflictType, ids []string, format string, args ...any) {
	vr.Conflicts = append(vr.Conflicts, Conflict{
		Type:        t,
		Description: fmt.Sprintf(format, args...),
		EventIDs:    ids,
	})
}

// Validator checks stored events and settings for inconsistencies
type Validator struct {
	now func() time.Time
}

func New() *Validator {
	return &Validator{now: time.Now}
}

// WithClock returns a copy of v that uses now as the current time.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	return &Validator{now: now}
}

// ValidateEvents reports missing or duplicate IDs, zero dates and events
// dated in the future.
func (v *Validator) ValidateEvents(events []models.Event) ValidationResult {
	var result ValidationResult
	horizon := v.now().Add(futureTolerance)
	seen := make(map[string]int, len(events))

	for i, e := range events {
		if e.ID == "" {
			result.add(ConflictMissingEventID, nil, "event #%d has no ID", i+1)
		} else {
			seen[e.ID]++
			if seen[e.ID] == 2 {
				result.add(ConflictDuplicateEventID, []string{e.ID}, "event ID %s is used more than once", e.ID)
			}
		}

		switch {
		case e.Date.IsZero():
			result.add(ConflictZeroDate, []string{e.ID}, "event %s has no date", e.ID)
		case e.Date.After(horizon):
			result.add(ConflictFutureDate, []string{e.ID}, "event %s is dated in the future (%s)",
				e.ID, e.Date.Format(constants.DateTimeFormat))
		}
	}

	return result
}

// ValidateSettings checks that every stored preference is usable.
func (v *Validator) ValidateSettings(settings models.Settings) ValidationResult {
	var result ValidationResult

	if _, err := stats.ParseWindow(settings.DefaultFilter); err != nil {
		result.add(ConflictInvalidSetting, nil, "%s %q is not one of %s",
			constants.SettingDefaultFilter, settings.DefaultFilter, strings.Join(stats.WindowKeys(), ", "))
	}
	if settings.HistoryLimit < 1 {
		result.add(ConflictInvalidSetting, nil, "%s must be positive, got %d",
			constants.SettingHistoryLimit, settings.HistoryLimit)
	}
	if _, err := utils.LoadLocation(settings.Timezone); err != nil {
		result.add(ConflictInvalidSetting, nil, "%s %q cannot be loaded", constants.SettingTimezone, settings.Timezone)
	}

	return result
}

package stats

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/moodlit/internal/models"
)

// ErrUnknownWindow is returned for a filter key outside the fixed set.
var ErrUnknownWindow = errors.New("unknown filter")

// Window is a named time range measured back from "now".
type Window string

const (
	WindowAll   Window = "all"
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowYear  Window = "year"
)

var windowDurations = map[Window]time.Duration{
	WindowDay:   24 * time.Hour,
	WindowWeek:  7 * 24 * time.Hour,
	WindowMonth: 30 * 24 * time.Hour,
	WindowYear:  365 * 24 * time.Hour,
}

var windowLabels = map[Window]string{
	WindowAll:   "All time",
	WindowDay:   "Last 24 hours",
	WindowWeek:  "Last 7 days",
	WindowMonth: "Last 30 days",
	WindowYear:  "Last 365 days",
}

// Windows returns every valid window in display order.
func Windows() []Window {
	return []Window{WindowAll, WindowDay, WindowWeek, WindowMonth, WindowYear}
}

// WindowKeys returns the valid keys, for help text and error messages.
func WindowKeys() []string {
	keys := make([]string, 0, len(windowLabels))
	for _, w := range Windows() {
		keys = append(keys, string(w))
	}
	return keys
}

// ParseWindow validates a filter key. Matching ignores case and surrounding
// whitespace.
func ParseWindow(key string) (Window, error) {
	w := Window(strings.ToLower(strings.TrimSpace(key)))
	if err := w.Validate(); err != nil {
		return "", err
	}
	return w, nil
}

func (w Window) Validate() error {
	if _, ok := windowLabels[w]; !ok {
		return fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownWindow, string(w), strings.Join(WindowKeys(), ", "))
	}
	return nil
}

// UnmarshalText lets flags and config files decode straight into a Window.
func (w *Window) UnmarshalText(text []byte) error {
	parsed, err := ParseWindow(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

func (w Window) MarshalText() ([]byte, error) {
	return []byte(w), nil
}

func (w Window) String() string {
	return string(w)
}

// Label returns a human-readable name, e.g. "Last 7 days".
func (w Window) Label() string {
	if label, ok := windowLabels[w]; ok {
		return label
	}
	return string(w)
}

// Duration returns the window length. ok is false for WindowAll.
func (w Window) Duration() (d time.Duration, ok bool) {
	d, ok = windowDurations[w]
	return d, ok
}

// Next returns the following window in display order, wrapping around.
func (w Window) Next() Window {
	all := Windows()
	for i, candidate := range all {
		if candidate == w {
			return all[(i+1)%len(all)]
		}
	}
	return WindowAll
}

// Filter returns the events dated at or after now minus the window length,
// in input order. WindowAll returns a copy of the full input.
func Filter(events []models.Event, w Window, now time.Time) ([]models.Event, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	d, bounded := w.Duration()
	if !bounded {
		return append([]models.Event(nil), events...), nil
	}

	cutoff := now.Add(-d)
	filtered := make([]models.Event, 0, len(events))
	for _, e := range events {
		if !e.Date.Before(cutoff) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

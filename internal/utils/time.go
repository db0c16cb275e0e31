package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/models"
)

// LoadLocation loads an IANA timezone. "Local" and "" mean the system zone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// LocationFromSettings returns the display zone, falling back to the
// system zone when the stored name no longer loads.
func LocationFromSettings(settings models.Settings) *time.Location {
	loc, err := LoadLocation(settings.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// FormatEventTime renders an event timestamp in loc.
func FormatEventTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(constants.DateTimeFormat)
}

// RelativeAge renders how long ago t was relative to now, e.g. "5m ago".
func RelativeAge(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < 0:
		return "in the future"
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/moodlit/internal/models"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty is local", timezone: ""},
		{name: "Local", timezone: "Local"},
		{name: "UTC", timezone: "UTC"},
		{name: "IANA name", timezone: "America/New_York"},
		{name: "invalid", timezone: "Mars/Olympus_Mons", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadLocation(%q) error = %v, wantErr %v", tt.timezone, err, tt.wantErr)
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation(%q) returned nil location", tt.timezone)
			}
		})
	}
}

func TestLocationFromSettingsFallsBack(t *testing.T) {
	loc := LocationFromSettings(models.Settings{Timezone: "Nowhere/Special"})
	if loc != time.Local {
		t.Errorf("LocationFromSettings fallback = %v, want Local", loc)
	}
}

func TestFormatEventTime(t *testing.T) {
	ts := time.Date(2024, 7, 4, 18, 30, 15, 0, time.UTC)
	if got := FormatEventTime(ts, time.UTC); got != "2024-07-04 18:30:15" {
		t.Errorf("FormatEventTime() = %q", got)
	}
}

func TestRelativeAge(t *testing.T) {
	now := time.Date(2024, 7, 4, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{-time.Minute, "in the future"},
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{50 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		if got := RelativeAge(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("RelativeAge(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := ExpandHome("~/.config/moodlit/moodlit.db")
	if err != nil {
		t.Fatalf("ExpandHome failed: %v", err)
	}
	if want := filepath.Join(home, ".config/moodlit/moodlit.db"); got != want {
		t.Errorf("ExpandHome() = %q, want %q", got, want)
	}

	if got, _ := ExpandHome("/abs/path.db"); got != "/abs/path.db" {
		t.Errorf("ExpandHome left absolute path as %q", got)
	}
}

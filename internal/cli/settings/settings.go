package settings

import (
	"fmt"
	"strings"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/validation"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	DefaultFilter *string `help:"Window used when no --filter is given (all, day, week, month, year)." name:"default-filter"`
	HistoryLimit  *int    `help:"Number of recent events shown in history." name:"history-limit"`
	Timezone      *string `help:"IANA timezone for displaying events, or Local."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		ctx.Println("Current Settings:")
		ctx.Printf("  Default Filter: %s\n", settings.DefaultFilter)
		ctx.Printf("  History Limit:  %d\n", settings.HistoryLimit)
		ctx.Printf("  Timezone:       %s\n", settings.Timezone)
		return nil
	}

	updated := false
	if c.DefaultFilter != nil {
		settings.DefaultFilter = strings.ToLower(strings.TrimSpace(*c.DefaultFilter))
		updated = true
	}
	if c.HistoryLimit != nil {
		settings.HistoryLimit = *c.HistoryLimit
		updated = true
	}
	if c.Timezone != nil {
		settings.Timezone = strings.TrimSpace(*c.Timezone)
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	if result := validation.New().ValidateSettings(settings); result.HasConflicts() {
		return fmt.Errorf("invalid settings:\n%s", result.FormatReport())
	}

	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Println("Settings updated successfully.")
	return nil
}

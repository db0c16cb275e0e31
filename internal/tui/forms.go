package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/moodlit/internal/stats"
	"github.com/julianstephens/moodlit/internal/utils"
)

type SettingsFormModel struct {
	DefaultFilter stats.Window
	HistoryLimit  string
	Timezone      string
}

type ConfirmFormModel struct {
	Message   string
	Confirmed bool
}

// NewSettingsForm creates the form for editing stored preferences
func NewSettingsForm(fm *SettingsFormModel) *huh.Form {
	options := make([]huh.Option[stats.Window], 0, len(stats.Windows()))
	for _, w := range stats.Windows() {
		options = append(options, huh.NewOption(w.Label(), w))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[stats.Window]().
				Title("Default Filter").
				Description("Window shown when the app starts").
				Options(options...).
				Value(&fm.DefaultFilter),
			huh.NewInput().
				Title("History Limit").
				Description("Number of recent events listed").
				Value(&fm.HistoryLimit).
				Validate(func(s string) error {
					i, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil {
						return fmt.Errorf("history limit must be a number")
					}
					if i < 1 {
						return fmt.Errorf("history limit must be positive")
					}
					return nil
				}),
			huh.NewInput().
				Title("Timezone").
				Description("IANA name such as Europe/Paris, or Local").
				Value(&fm.Timezone).
				Validate(func(s string) error {
					if _, err := utils.LoadLocation(strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("unknown timezone")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewConfirmForm creates a yes/no form bound to fm.Confirmed
func NewConfirmForm(fm *ConfirmFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fm.Message).
				Affirmative("Yes").
				Negative("No").
				Value(&fm.Confirmed),
		),
	).WithTheme(huh.ThemeDracula())
}

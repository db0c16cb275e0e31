package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/logger"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/stats"
	"github.com/julianstephens/moodlit/internal/storage"
	"github.com/julianstephens/moodlit/internal/tui/components/history"
	"github.com/julianstephens/moodlit/internal/tui/components/settings"
	"github.com/julianstephens/moodlit/internal/tui/components/track"
	"github.com/julianstephens/moodlit/internal/utils"
	"github.com/julianstephens/moodlit/internal/validation"
)

const tabCount = 3

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Forms own the keyboard while open
	if m.state == constants.StateEditSettings || m.state == constants.StateConfirmDelete {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case track.TickMsg:
		m.reload()
		var cmd tea.Cmd
		m.track, cmd = m.track.Update(msg)
		return m, cmd

	case history.DeleteEventMsg:
		return m.openConfirmDelete(msg.ID)

	case history.RestoreEventMsg:
		if err := m.session.Restore(msg.ID); err != nil {
			m.setError(err)
		} else {
			m.setStatus("Restored event " + shortID(msg.ID))
		}
		m.refresh()
		return m, nil

	case history.ToggleDeletedMsg:
		m.showDeleted = !m.showDeleted
		m.reload()
		return m, nil

	case settings.EditSettingsMsg:
		return m.openSettingsForm()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			m.reload()
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			m.reload()
			return m, nil
		case key.Matches(msg, m.keys.Filter):
			m.window = m.window.Next()
			m.setStatus("Window: " + m.window.Label())
			m.refresh()
			return m, nil
		}

		if m.state == constants.StateTrack {
			switch {
			case key.Matches(msg, m.keys.Positive):
				m.record(true)
				return m, nil
			case key.Matches(msg, m.keys.Negative):
				m.record(false)
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case constants.StateTrack:
		m.track, cmd = m.track.Update(msg)
	case constants.StateHistory:
		m.history, cmd = m.history.Update(msg)
	case constants.StateSettings:
		m.settingsModel, cmd = m.settingsModel.Update(msg)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.closeForm()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.state == constants.StateConfirmDelete {
			m.resolveDelete(m.confirmForm.Confirmed)
		} else {
			m.applySettings(m.settingsForm)
		}
	case huh.StateAborted:
		m.closeForm()
	}

	return m, cmd
}

func (m *Model) closeForm() {
	switch m.state {
	case constants.StateConfirmDelete:
		m.state = constants.StateHistory
	case constants.StateEditSettings:
		m.state = constants.StateSettings
	}
	m.form = nil
	m.confirmForm = nil
	m.settingsForm = nil
	m.pendingDelete = ""
}

func (m Model) openConfirmDelete(id string) (tea.Model, tea.Cmd) {
	event, ok := m.findEvent(id)
	if !ok {
		m.setError(fmt.Errorf("event %s is no longer loaded", shortID(id)))
		return m, nil
	}

	m.confirmForm = &ConfirmFormModel{
		Message: fmt.Sprintf("Delete %s event from %s?", event.Label(), utils.FormatEventTime(event.Date, utils.LocationFromSettings(m.settings))),
	}
	m.form = NewConfirmForm(m.confirmForm)
	m.pendingDelete = id
	m.state = constants.StateConfirmDelete
	return m, m.form.Init()
}

func (m Model) openSettingsForm() (tea.Model, tea.Cmd) {
	m.settingsForm = settingsFormFrom(m.settings)
	m.form = NewSettingsForm(m.settingsForm)
	m.state = constants.StateEditSettings
	return m, m.form.Init()
}

func settingsFormFrom(s models.Settings) *SettingsFormModel {
	window, err := stats.ParseWindow(s.DefaultFilter)
	if err != nil {
		window = stats.WindowAll
	}
	return &SettingsFormModel{
		DefaultFilter: window,
		HistoryLimit:  strconv.Itoa(s.HistoryLimit),
		Timezone:      s.Timezone,
	}
}

// record appends an event and reports the updated rate.
func (m *Model) record(evaluation bool) {
	event, err := m.session.Record(evaluation)
	if err != nil {
		m.setError(err)
		return
	}
	m.refresh()
	m.setStatus(fmt.Sprintf("Recorded %s event", event.Label()))
}

// resolveDelete finishes the delete confirmation. A declined prompt leaves
// the event untouched.
func (m *Model) resolveDelete(confirmed bool) {
	id := m.pendingDelete
	m.closeForm()
	if !confirmed || id == "" {
		m.setStatus("Delete cancelled")
		return
	}

	err := m.session.Delete(id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// Removed by another process since the list was drawn
		m.reload()
		m.setError(fmt.Errorf("event %s was already deleted elsewhere: %w", shortID(id), err))
		return
	case err != nil:
		m.setError(err)
	default:
		m.setStatus("Deleted event " + shortID(id) + " (press 't' to view deleted)")
	}
	m.refresh()
}

// applySettings validates and stores the edited preferences. On failure the
// form stays closed and the error is shown in the status line.
func (m *Model) applySettings(fm *SettingsFormModel) {
	m.closeForm()
	if fm == nil {
		return
	}

	limit, err := strconv.Atoi(strings.TrimSpace(fm.HistoryLimit))
	if err != nil {
		m.setError(fmt.Errorf("invalid history limit %q", fm.HistoryLimit))
		return
	}

	updated := models.Settings{
		DefaultFilter: fm.DefaultFilter.String(),
		HistoryLimit:  limit,
		Timezone:      strings.TrimSpace(fm.Timezone),
	}

	result := validation.New().ValidateSettings(updated)
	if result.HasConflicts() {
		m.setError(fmt.Errorf("invalid settings: %s", strings.TrimSpace(result.FormatReport())))
		return
	}

	if err := m.session.Store().SaveSettings(updated); err != nil {
		m.setError(fmt.Errorf("failed to save settings: %w", err))
		return
	}
	logger.Info("Settings updated", "default_filter", updated.DefaultFilter,
		"history_limit", updated.HistoryLimit, "timezone", updated.Timezone)

	m.settings = updated
	m.settingsModel.SetSettings(updated)
	m.window = fm.DefaultFilter
	m.refresh()
	m.setStatus("Settings saved")
}

func (m Model) findEvent(id string) (models.Event, bool) {
	for _, e := range m.session.Events() {
		if e.ID == id {
			return e, true
		}
	}
	return models.Event{}, false
}

func (m *Model) resize() {
	// Tabs, status line and help
	contentHeight := m.height - 6
	if m.help.ShowAll {
		contentHeight -= 3
	}
	if contentHeight < 0 {
		contentHeight = 0
	}
	contentWidth := m.width - 4
	if contentWidth < 0 {
		contentWidth = 0
	}

	m.track.SetSize(contentWidth, contentHeight)
	m.history.SetSize(contentWidth, contentHeight)
	m.settingsModel.SetSize(contentWidth, contentHeight)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

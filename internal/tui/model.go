package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/logger"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/stats"
	"github.com/julianstephens/moodlit/internal/storage"
	"github.com/julianstephens/moodlit/internal/tracker"
	"github.com/julianstephens/moodlit/internal/tui/components/history"
	"github.com/julianstephens/moodlit/internal/tui/components/settings"
	"github.com/julianstephens/moodlit/internal/tui/components/track"
	"github.com/julianstephens/moodlit/internal/utils"
)

type Model struct {
	session       *tracker.Session
	state         constants.SessionState
	keys          KeyMap
	help          help.Model
	track         track.Model
	history       history.Model
	settingsModel settings.Model
	form          *huh.Form
	settingsForm  *SettingsFormModel
	confirmForm   *ConfirmFormModel
	settings      models.Settings
	window        stats.Window
	showDeleted   bool
	pendingDelete string
	status        string
	err           error // Last store error, shown in the status line
	quitting      bool
	width         int
	height        int
}

// NewModel builds the TUI over an already refreshed session.
func NewModel(session *tracker.Session) Model {
	current, err := session.Store().GetSettings()
	if err != nil {
		current = storage.DefaultSettings()
	}

	window, werr := stats.ParseWindow(current.DefaultFilter)
	if werr != nil {
		logger.Warn("Stored default filter is invalid, using all", "filter", current.DefaultFilter)
		window = stats.WindowAll
	}

	m := Model{
		session:       session,
		state:         constants.StateTrack,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		track:         track.New(),
		history:       history.New(0, 0),
		settingsModel: settings.New(current, 0, 0),
		settings:      current,
		window:        window,
	}
	if err != nil {
		m.setError(fmt.Errorf("failed to load settings: %w", err))
	}

	m.refresh()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help, m.keys.Filter}
	switch m.state {
	case constants.StateTrack:
		keys = append(keys, m.keys.Positive, m.keys.Negative)
	case constants.StateHistory:
		if m.showDeleted {
			keys = append(keys, m.keys.Restore, m.keys.Deleted)
		} else {
			keys = append(keys, m.keys.Delete, m.keys.Deleted)
		}
	case constants.StateSettings:
		keys = append(keys, m.keys.Edit)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Filter}

	var actions []key.Binding
	switch m.state {
	case constants.StateTrack:
		actions = []key.Binding{m.keys.Positive, m.keys.Negative}
	case constants.StateHistory:
		actions = []key.Binding{m.keys.Up, m.keys.Down, m.keys.Delete, m.keys.Restore, m.keys.Deleted}
	case constants.StateSettings:
		actions = []key.Binding{m.keys.Edit}
	}

	return [][]key.Binding{global, actions}
}

func (m Model) Init() tea.Cmd {
	return m.track.Init()
}

// reload pulls events written by other processes into the session, then
// redraws.
func (m *Model) reload() {
	if err := m.session.Refresh(); err != nil {
		m.setError(err)
	}
	m.refresh()
}

// refresh recomputes every view from the session cache.
func (m *Model) refresh() {
	now := m.session.Now()
	loc := utils.LocationFromSettings(m.settings)

	rate, err := m.session.Rate(m.window)
	if err != nil && !errors.Is(err, stats.ErrNoEvents) {
		m.setError(err)
	}

	var last *models.Event
	if recent := stats.Recent(m.session.Events(), 1); len(recent) == 1 {
		last = &recent[0]
	}
	m.track.SetRate(m.window, rate, last, now, loc)

	var events []models.Event
	if m.showDeleted {
		events, err = m.session.Deleted(m.window)
	} else {
		events, err = m.session.Recent(m.window, m.settings.HistoryLimit)
	}
	if err != nil {
		m.setError(err)
		events = nil
	}
	m.history.SetEvents(events, m.showDeleted, loc, now)
}

func (m *Model) setError(err error) {
	logger.Error("TUI operation failed", "error", err)
	m.err = err
	m.status = ""
}

func (m *Model) setStatus(status string) {
	m.status = status
	m.err = nil
}

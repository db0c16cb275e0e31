package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/moodlit/internal/constants"
)

var tabTitles = []string{"Track", "History", "Settings"}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateTrack:
		content = m.track.View()
	case constants.StateHistory:
		content = docStyle.Render(m.history.View())
	case constants.StateSettings:
		content = m.settingsModel.View()
	case constants.StateEditSettings, constants.StateConfirmDelete:
		content = docStyle.Render(m.form.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

// activeTab maps form states back to the tab that opened them.
func (m Model) activeTab() constants.SessionState {
	switch m.state {
	case constants.StateEditSettings:
		return constants.StateSettings
	case constants.StateConfirmDelete:
		return constants.StateHistory
	}
	return m.state
}

func (m Model) viewTabs() string {
	active := m.activeTab()
	tabs := make([]string, 0, len(tabTitles)+1)
	for i, title := range tabTitles {
		if constants.SessionState(i) == constants.StateHistory && m.history.Len() > 0 {
			title = fmt.Sprintf("%s (%d)", title, m.history.Len())
		}
		if active == constants.SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	tabs = append(tabs, windowStyle.Render("· "+m.window.Label()))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return errorStyle.Render("❌ " + m.err.Error())
	}
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return ""
}

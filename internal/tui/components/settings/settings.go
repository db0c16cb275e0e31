package settings

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/stats"
)

type EditSettingsMsg struct{}

type Model struct {
	settings models.Settings
	width    int
	height   int
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(20)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)
)

func New(settings models.Settings, width, height int) Model {
	return Model{
		settings: settings,
		width:    width,
		height:   height,
	}
}

func (m *Model) SetSettings(settings models.Settings) {
	m.settings = settings
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "e" {
		return m, func() tea.Msg { return EditSettingsMsg{} }
	}
	return m, nil
}

func (m Model) View() string {
	filter := m.settings.DefaultFilter
	if w, err := stats.ParseWindow(filter); err == nil {
		filter = fmt.Sprintf("%s (%s)", w, w.Label())
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("Settings"),
		fmt.Sprintf("%s %s", labelStyle.Render("Default Filter:"), valueStyle.Render(filter)),
		fmt.Sprintf("%s %s", labelStyle.Render("History Limit:"), valueStyle.Render(fmt.Sprintf("%d", m.settings.HistoryLimit))),
		fmt.Sprintf("%s %s", labelStyle.Render("Timezone:"), valueStyle.Render(m.settings.Timezone)),
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			MarginTop(2).
			Render("Press 'e' to edit settings"),
	)

	if m.width == 0 {
		return content
	}
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Left,
		lipgloss.Top,
		lipgloss.NewStyle().Padding(2, 4).Render(content),
	)
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

package track

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/stats"
	"github.com/julianstephens/moodlit/internal/utils"
)

var (
	rateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true).
			Padding(1, 4).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Width(24).
			Align(lipgloss.Center)

	captionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			MarginTop(1)
)

// TickMsg asks the parent to recompute the rate; windows slide with time.
type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

type Model struct {
	window stats.Window
	rate   stats.Rate
	last   *models.Event
	now    time.Time
	loc    *time.Location
	width  int
	height int
}

func New() Model {
	return Model{
		window: stats.WindowAll,
		loc:    time.Local,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(TickMsg); ok {
		return m, tick()
	}
	return m, nil
}

// SetRate shows rate for window w. An empty rate renders as no data.
func (m *Model) SetRate(w stats.Window, rate stats.Rate, last *models.Event, now time.Time, loc *time.Location) {
	m.window = w
	m.rate = rate
	m.last = last
	m.now = now
	m.loc = loc
}

func (m Model) View() string {
	caption := fmt.Sprintf("%d entries · %s", m.rate.Total, m.window.Label())
	if m.rate.Total > 0 {
		caption = fmt.Sprintf("%d positive · %d negative · %s", m.rate.Positive, m.rate.Negative, m.window.Label())
	}

	lines := []string{
		rateStyle.Render(m.rate.FormatPositive() + "\npositive"),
		captionStyle.Render("negative " + m.rate.FormatNegative()),
		captionStyle.Render(caption),
	}
	if m.last != nil {
		lines = append(lines, captionStyle.Render(fmt.Sprintf("last: %s %s (%s)",
			m.last.Label(), utils.FormatEventTime(m.last.Date, m.loc), utils.RelativeAge(m.last.Date, m.now))))
	}
	lines = append(lines, hintStyle.Render("[p] positive   [n] negative   [f] change window"))

	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

package history

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/utils"
)

type DeleteEventMsg struct {
	ID string
}

type RestoreEventMsg struct {
	ID string
}

type ToggleDeletedMsg struct{}

type Item struct {
	Event models.Event
	loc   *time.Location
	now   time.Time
}

func (i Item) Title() string {
	title := "○ " + i.Event.Label()
	if i.Event.Evaluation {
		title = "● " + i.Event.Label()
	}
	if i.Event.IsDeleted() {
		return "👻 " + title + " (deleted)"
	}
	return title
}

func (i Item) Description() string {
	desc := utils.FormatEventTime(i.Event.Date, i.loc) + " | " + utils.RelativeAge(i.Event.Date, i.now)
	if i.Event.IsDeleted() {
		desc += " | can restore with 'r'"
	}
	return desc
}

func (i Item) FilterValue() string { return i.Event.Label() }

type KeyMap struct {
	Delete  key.Binding
	Restore key.Binding
	Deleted key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Restore: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restore"),
		),
		Deleted: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle deleted"),
		),
	}
}

type Model struct {
	list        list.Model
	keys        KeyMap
	showDeleted bool
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "History"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // We handle help globally in the main model
	l.SetFilteringEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Delete, keys.Restore, keys.Deleted}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Delete, keys.Restore, keys.Deleted}
	}

	return Model{list: l, keys: keys}
}

// SetEvents replaces the listed events. showDeleted records which view the
// events came from so the key handlers emit the right message.
func (m *Model) SetEvents(events []models.Event, showDeleted bool, loc *time.Location, now time.Time) {
	items := make([]list.Item, len(events))
	for i, e := range events {
		items[i] = Item{Event: e, loc: loc, now: now}
	}
	m.list.SetItems(items)
	m.showDeleted = showDeleted
}

func (m Model) ShowingDeleted() bool {
	return m.showDeleted
}

// Selected returns the highlighted event, if any.
func (m Model) Selected() (models.Event, bool) {
	if i, ok := m.list.SelectedItem().(Item); ok {
		return i.Event, true
	}
	return models.Event{}, false
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Delete):
			if e, ok := m.Selected(); ok && !e.IsDeleted() {
				return m, func() tea.Msg { return DeleteEventMsg{ID: e.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Restore):
			if e, ok := m.Selected(); ok && e.IsDeleted() {
				return m, func() tea.Msg { return RestoreEventMsg{ID: e.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Deleted):
			return m, func() tea.Msg { return ToggleDeletedMsg{} }
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		if m.showDeleted {
			return "\n  No deleted events.\n  Press 't' to go back."
		}
		return "\n  No events in this window.\n  Press 'p' or 'n' on the Track tab to record one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

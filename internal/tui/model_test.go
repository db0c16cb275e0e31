package tui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/stats"
	"github.com/julianstephens/moodlit/internal/storage"
	"github.com/julianstephens/moodlit/internal/tracker"
	"github.com/julianstephens/moodlit/internal/tui/components/track"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func setupTestStore(t *testing.T) *storage.JSONStore {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "moodlit.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	settings := storage.DefaultSettings()
	settings.Timezone = "UTC"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}
	return store
}

func newTestModel(t *testing.T, store storage.Provider, evaluations ...bool) (Model, *tracker.Session) {
	t.Helper()
	session, err := tracker.Open(store, tracker.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("failed to open session: %v", err)
	}
	for _, e := range evaluations {
		if _, err := session.Record(e); err != nil {
			t.Fatalf("failed to seed event: %v", err)
		}
	}

	m := NewModel(session)
	m, _ = send(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, session
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// pressAndDispatch sends a key and feeds the resulting message back in.
func pressAndDispatch(t *testing.T, m Model, r rune) Model {
	t.Helper()
	m, cmd := send(m, keyPress(r))
	if cmd == nil {
		t.Fatalf("expected a command after pressing %q", r)
	}
	m, _ = send(m, cmd())
	return m
}

func TestEmptyStoreShowsNoData(t *testing.T) {
	m, _ := newTestModel(t, setupTestStore(t))

	view := m.View()
	if !strings.Contains(view, stats.NoDataLabel) {
		t.Errorf("expected %q in view, got:\n%s", stats.NoDataLabel, view)
	}
	if !strings.Contains(view, "All time") {
		t.Errorf("expected window label in view, got:\n%s", view)
	}
}

func TestRecordKeysUpdateRate(t *testing.T) {
	m, session := newTestModel(t, setupTestStore(t))

	m, _ = send(m, keyPress('p'))
	if session.Len() != 1 {
		t.Fatalf("expected 1 event after 'p', got %d", session.Len())
	}
	view := m.View()
	if !strings.Contains(view, "100.00%") {
		t.Errorf("expected 100.00%% after one positive, got:\n%s", view)
	}
	if !strings.Contains(view, "Recorded positive event") {
		t.Errorf("expected status line, got:\n%s", view)
	}

	m, _ = send(m, keyPress('n'))
	if session.Len() != 2 {
		t.Fatalf("expected 2 events after 'n', got %d", session.Len())
	}
	if view := m.View(); !strings.Contains(view, "50.00%") {
		t.Errorf("expected 50.00%% after one of each, got:\n%s", view)
	}

	events := session.Events()
	if !events[0].Evaluation || events[1].Evaluation {
		t.Errorf("events recorded with wrong evaluations: %+v", events)
	}
}

func TestRecordKeysIgnoredOutsideTrackTab(t *testing.T) {
	m, session := newTestModel(t, setupTestStore(t))

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = send(m, keyPress('p'))
	if session.Len() != 0 {
		t.Errorf("'p' on the history tab should not record, got %d events", session.Len())
	}
	if m.state != constants.StateHistory {
		t.Errorf("expected history state, got %v", m.state)
	}
}

func TestFilterKeyCyclesWindow(t *testing.T) {
	m, _ := newTestModel(t, setupTestStore(t))

	want := []stats.Window{stats.WindowDay, stats.WindowWeek, stats.WindowMonth, stats.WindowYear, stats.WindowAll}
	for _, w := range want {
		m, _ = send(m, keyPress('f'))
		if m.window != w {
			t.Fatalf("expected window %s, got %s", w, m.window)
		}
	}
	if !strings.Contains(m.View(), "Window: All time") {
		t.Error("expected window change in status line")
	}
}

func TestTabNavigation(t *testing.T) {
	m, _ := newTestModel(t, setupTestStore(t))

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != constants.StateHistory {
		t.Fatalf("expected history state, got %v", m.state)
	}
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != constants.StateSettings {
		t.Fatalf("expected settings state, got %v", m.state)
	}
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != constants.StateTrack {
		t.Fatalf("expected tab to wrap to track, got %v", m.state)
	}
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.state != constants.StateSettings {
		t.Fatalf("expected shift+tab to wrap to settings, got %v", m.state)
	}
}

func TestHistoryTabShowsCount(t *testing.T) {
	m, _ := newTestModel(t, setupTestStore(t), models.EvaluationPositive, models.EvaluationNegative)

	if !strings.Contains(m.View(), "History (2)") {
		t.Errorf("expected event count on the history tab, got:\n%s", m.View())
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	m, session := newTestModel(t, setupTestStore(t), models.EvaluationPositive, models.EvaluationNegative)

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
	m = pressAndDispatch(t, m, 'd')
	if m.state != constants.StateConfirmDelete {
		t.Fatalf("expected confirm state, got %v", m.state)
	}
	if m.pendingDelete == "" {
		t.Fatal("expected a pending delete")
	}

	m.resolveDelete(false)
	if session.Len() != 2 {
		t.Errorf("declined delete removed an event, %d left", session.Len())
	}
	if m.state != constants.StateHistory {
		t.Errorf("expected history state after cancel, got %v", m.state)
	}

	m = pressAndDispatch(t, m, 'd')
	target := m.pendingDelete
	m.resolveDelete(true)
	if session.Len() != 1 {
		t.Fatalf("expected 1 event after delete, got %d", session.Len())
	}
	if _, err := session.Store().GetEvent(target); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("deleted event still visible: %v", err)
	}
	if session.Events()[0].ID == target {
		t.Error("expected the other event to remain")
	}
}

func TestEscCancelsConfirmation(t *testing.T) {
	m, session := newTestModel(t, setupTestStore(t), models.EvaluationPositive)

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
	m = pressAndDispatch(t, m, 'd')
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.state != constants.StateHistory {
		t.Errorf("expected history state after esc, got %v", m.state)
	}
	if session.Len() != 1 {
		t.Errorf("esc should not delete, %d events left", session.Len())
	}
}

func TestToggleDeletedAndRestore(t *testing.T) {
	m, session := newTestModel(t, setupTestStore(t), models.EvaluationPositive, models.EvaluationNegative)

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
	m = pressAndDispatch(t, m, 'd')
	m.resolveDelete(true)

	m = pressAndDispatch(t, m, 't')
	if !m.showDeleted || !m.history.ShowingDeleted() {
		t.Fatal("expected deleted view")
	}
	if m.history.Len() != 1 {
		t.Fatalf("expected 1 deleted event listed, got %d", m.history.Len())
	}

	m = pressAndDispatch(t, m, 'r')
	if session.Len() != 2 {
		t.Fatalf("expected 2 live events after restore, got %d", session.Len())
	}
	if m.history.Len() != 0 {
		t.Errorf("expected empty deleted view after restore, got %d", m.history.Len())
	}
	if !strings.Contains(m.View(), "No deleted events.") {
		t.Error("expected empty deleted message")
	}

	events := session.Events()
	if !events[0].Evaluation || events[1].Evaluation {
		t.Errorf("restore changed insertion order: %+v", events)
	}
}

func TestApplySettingsPersists(t *testing.T) {
	store := setupTestStore(t)
	m, _ := newTestModel(t, store)

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
	m = pressAndDispatch(t, m, 'e')
	if m.state != constants.StateEditSettings {
		t.Fatalf("expected edit state, got %v", m.state)
	}

	m.applySettings(&SettingsFormModel{
		DefaultFilter: stats.WindowWeek,
		HistoryLimit:  " 5 ",
		Timezone:      "Europe/Paris",
	})

	if m.state != constants.StateSettings {
		t.Errorf("expected settings state after save, got %v", m.state)
	}
	if m.window != stats.WindowWeek {
		t.Errorf("expected window to follow the new default, got %s", m.window)
	}

	saved, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	want := models.Settings{DefaultFilter: "week", HistoryLimit: 5, Timezone: "Europe/Paris"}
	if saved != want {
		t.Errorf("saved settings = %+v, want %+v", saved, want)
	}
	if !strings.Contains(m.View(), "Europe/Paris") {
		t.Error("settings tab not updated")
	}
}

func TestApplySettingsRejectsInvalid(t *testing.T) {
	store := setupTestStore(t)
	m, _ := newTestModel(t, store)

	tests := []struct {
		name string
		form SettingsFormModel
	}{
		{"zero limit", SettingsFormModel{DefaultFilter: stats.WindowAll, HistoryLimit: "0", Timezone: "UTC"}},
		{"non-numeric limit", SettingsFormModel{DefaultFilter: stats.WindowAll, HistoryLimit: "ten", Timezone: "UTC"}},
		{"unknown timezone", SettingsFormModel{DefaultFilter: stats.WindowAll, HistoryLimit: "5", Timezone: "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := tt.form
			m.applySettings(&form)
			if m.err == nil {
				t.Error("expected an error")
			}
			saved, _ := store.GetSettings()
			if saved.HistoryLimit != constants.DefaultHistoryLimit || saved.Timezone != "UTC" {
				t.Errorf("invalid settings were saved: %+v", saved)
			}
		})
	}
}

// openSecondStore loads another handle on the same file, standing in for a
// CLI command run while the TUI is open.
func openSecondStore(t *testing.T, store *storage.JSONStore) *storage.JSONStore {
	t.Helper()
	other := storage.NewJSONStore(store.GetConfigPath())
	if err := other.Load(); err != nil {
		t.Fatalf("failed to load second store: %v", err)
	}
	return other
}

func TestTickPicksUpExternalWrites(t *testing.T) {
	store := setupTestStore(t)
	m, session := newTestModel(t, store, models.EvaluationPositive)
	seeded := session.Events()[0]

	other := openSecondStore(t, store)
	if err := other.DeleteEvent(seeded.ID); err != nil {
		t.Fatalf("external delete failed: %v", err)
	}
	external := models.NewEvent(testNow.Add(-time.Minute), models.EvaluationNegative)
	if err := other.SaveEvent(external); err != nil {
		t.Fatalf("external save failed: %v", err)
	}

	m, _ = send(m, track.TickMsg(testNow))
	events := session.Events()
	if len(events) != 1 || events[0].ID != external.ID {
		t.Fatalf("expected only the external event after tick, got %+v", events)
	}
	if strings.Contains(m.View(), "100.00%") {
		t.Errorf("rate still reflects the deleted event:\n%s", m.View())
	}

	m, _ = send(m, keyPress('p'))
	if m.err != nil {
		t.Fatalf("record failed: %v", m.err)
	}

	reopened := openSecondStore(t, store)
	all, err := reopened.GetAllEventsIncludingDeleted()
	if err != nil {
		t.Fatalf("GetAllEventsIncludingDeleted failed: %v", err)
	}
	if len(all) != 3 || !all[0].IsDeleted() || all[1].ID != external.ID {
		t.Errorf("recording from the TUI lost external changes: %+v", all)
	}
}

func TestTabPicksUpExternalWrites(t *testing.T) {
	store := setupTestStore(t)
	m, session := newTestModel(t, store)

	if err := openSecondStore(t, store).SaveEvent(models.NewEvent(testNow, models.EvaluationPositive)); err != nil {
		t.Fatalf("external save failed: %v", err)
	}

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
	if session.Len() != 1 {
		t.Fatalf("expected the external event after switching tabs, got %d", session.Len())
	}
	if m.history.Len() != 1 {
		t.Errorf("expected history to list the external event, got %d", m.history.Len())
	}
}

func TestDeleteOfExternallyDeletedEvent(t *testing.T) {
	store := setupTestStore(t)
	m, session := newTestModel(t, store, models.EvaluationPositive, models.EvaluationNegative)

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
	m = pressAndDispatch(t, m, 'd')
	target := m.pendingDelete
	if target == "" {
		t.Fatal("expected a pending delete")
	}

	if err := openSecondStore(t, store).DeleteEvent(target); err != nil {
		t.Fatalf("external delete failed: %v", err)
	}

	m.resolveDelete(true)
	if !errors.Is(m.err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound in status, got %v", m.err)
	}
	if !strings.Contains(m.View(), "already deleted elsewhere") {
		t.Errorf("expected explanation in status line, got:\n%s", m.View())
	}
	if session.Len() != 1 {
		t.Errorf("expected stale event dropped from the cache, got %d events", session.Len())
	}
	for _, e := range session.Events() {
		if e.ID == target {
			t.Error("deleted event still cached")
		}
	}
}

// failingStore rejects every write.
type failingStore struct {
	storage.Provider
}

func (failingStore) SaveEvent(models.Event) error { return errors.New("disk full") }

func TestStoreErrorShownInStatus(t *testing.T) {
	m, session := newTestModel(t, failingStore{Provider: setupTestStore(t)})

	m, _ = send(m, keyPress('p'))
	if session.Len() != 0 {
		t.Errorf("failed write should not be cached, got %d events", session.Len())
	}
	view := m.View()
	if !strings.Contains(view, "disk full") {
		t.Errorf("expected store error in view, got:\n%s", view)
	}
	if !strings.Contains(view, stats.NoDataLabel) {
		t.Errorf("rate should stay empty, got:\n%s", view)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, setupTestStore(t))

	m, cmd := send(m, keyPress('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if m.View() != "" {
		t.Error("expected empty view after quitting")
	}
}

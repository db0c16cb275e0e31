package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/stats"
	"github.com/julianstephens/moodlit/internal/storage"
	"github.com/julianstephens/moodlit/internal/storage/sqlite"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	settings := storage.DefaultSettings()
	settings.Timezone = "UTC"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Store: store,
		Out:   out,
		Now:   func() time.Time { return testNow },
	}
	return ctx, out
}

func seed(t *testing.T, ctx *cli.Context, ago time.Duration, evaluation bool) models.Event {
	t.Helper()
	e := models.NewEvent(testNow.Add(-ago), evaluation)
	if err := ctx.Store.SaveEvent(e); err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	return e
}

func TestPositiveAndNegativeCmd(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&PositiveCmd{}).Run(ctx); err != nil {
		t.Fatalf("positive failed: %v", err)
	}
	if err := (&NegativeCmd{}).Run(ctx); err != nil {
		t.Fatalf("negative failed: %v", err)
	}

	events, err := ctx.Store.GetAllEvents()
	if err != nil {
		t.Fatalf("GetAllEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if !events[0].Evaluation || events[1].Evaluation {
		t.Errorf("expected positive then negative, got %v then %v", events[0].Label(), events[1].Label())
	}
	if !events[0].Date.Equal(testNow) {
		t.Errorf("expected event dated %v, got %v", testNow, events[0].Date)
	}

	output := out.String()
	if !strings.Contains(output, "Recorded positive event at 2024-06-01 12:00:00") {
		t.Errorf("missing positive confirmation in output:\n%s", output)
	}
	if !strings.Contains(output, "Positive rate (All time): 50.00%") {
		t.Errorf("missing running rate in output:\n%s", output)
	}
}

func TestRateCmd(t *testing.T) {
	ctx, out := setupTestDB(t)
	seed(t, ctx, 3*time.Hour, true)
	seed(t, ctx, 2*time.Hour, false)
	seed(t, ctx, time.Hour, true)

	if err := (&RateCmd{}).Run(ctx); err != nil {
		t.Fatalf("rate failed: %v", err)
	}

	output := out.String()
	for _, want := range []string{"Entries:  3 (2 positive, 1 negative)", "Positive: 66.67%", "Negative: 33.33%"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestRateCmd_EmptyWindow(t *testing.T) {
	ctx, out := setupTestDB(t)
	seed(t, ctx, 10*24*time.Hour, true)

	if err := (&RateCmd{Filter: "day"}).Run(ctx); err != nil {
		t.Fatalf("rate failed: %v", err)
	}

	if !strings.Contains(out.String(), "Positive: --%") {
		t.Errorf("expected no-data label, got:\n%s", out.String())
	}
}

func TestRateCmd_UnknownFilter(t *testing.T) {
	ctx, _ := setupTestDB(t)

	if err := (&RateCmd{Filter: "fortnight"}).Run(ctx); err == nil {
		t.Error("expected an error for an unknown filter")
	}
}

func TestHistoryCmd(t *testing.T) {
	ctx, out := setupTestDB(t)
	old := seed(t, ctx, 40*24*time.Hour, true)
	mid := seed(t, ctx, 2*24*time.Hour, false)
	latest := seed(t, ctx, time.Hour, true)

	if err := (&HistoryCmd{Filter: "week", ShowIDs: true}).Run(ctx); err != nil {
		t.Fatalf("history failed: %v", err)
	}

	output := out.String()
	if strings.Contains(output, old.ID) {
		t.Errorf("event outside the week window was listed:\n%s", output)
	}
	latestIdx := strings.Index(output, latest.ID)
	midIdx := strings.Index(output, mid.ID)
	if latestIdx < 0 || midIdx < 0 || latestIdx > midIdx {
		t.Errorf("expected newest event first:\n%s", output)
	}
	if !strings.Contains(output, "(1h ago)") {
		t.Errorf("expected relative age in output:\n%s", output)
	}
}

func TestHistoryCmd_Limit(t *testing.T) {
	ctx, out := setupTestDB(t)
	for i := 1; i <= 5; i++ {
		seed(t, ctx, time.Duration(i)*time.Hour, true)
	}

	if err := (&HistoryCmd{Limit: 2}).Run(ctx); err != nil {
		t.Fatalf("history failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Errorf("expected 2 lines, got %d:\n%s", len(lines), out.String())
	}
}

func TestHistoryCmd_Empty(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&HistoryCmd{}).Run(ctx); err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out.String(), "No events") {
		t.Errorf("expected empty message, got:\n%s", out.String())
	}
}

func TestDeleteAndRestoreCmd(t *testing.T) {
	ctx, out := setupTestDB(t)
	keep := seed(t, ctx, 2*time.Hour, true)
	target := seed(t, ctx, time.Hour, false)

	if err := (&DeleteCmd{ID: target.ID}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	events, err := ctx.Store.GetAllEvents()
	if err != nil {
		t.Fatalf("GetAllEvents failed: %v", err)
	}
	if len(events) != 1 || events[0].ID != keep.ID {
		t.Fatalf("expected only %s to remain, got %+v", keep.ID, events)
	}

	out.Reset()
	if err := (&HistoryCmd{Deleted: true, ShowIDs: true}).Run(ctx); err != nil {
		t.Fatalf("history --deleted failed: %v", err)
	}
	if !strings.Contains(out.String(), target.ID) {
		t.Errorf("expected deleted event listed:\n%s", out.String())
	}

	if err := (&RestoreCmd{ID: target.ID}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	events, err = ctx.Store.GetAllEvents()
	if err != nil {
		t.Fatalf("GetAllEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 events after restore, got %d", len(events))
	}
}

func TestHistoryCmd_DeletedHonoursFilter(t *testing.T) {
	ctx, out := setupTestDB(t)
	old := seed(t, ctx, 10*24*time.Hour, true)
	recent := seed(t, ctx, time.Hour, false)
	for _, e := range []models.Event{old, recent} {
		if err := ctx.Store.DeleteEvent(e.ID); err != nil {
			t.Fatalf("failed to delete event: %v", err)
		}
	}

	if err := (&HistoryCmd{Deleted: true, ShowIDs: true, Filter: "week"}).Run(ctx); err != nil {
		t.Fatalf("history --deleted --filter week failed: %v", err)
	}
	if !strings.Contains(out.String(), recent.ID) {
		t.Errorf("expected recent deleted event listed:\n%s", out.String())
	}
	if strings.Contains(out.String(), old.ID) {
		t.Errorf("event outside the week was listed:\n%s", out.String())
	}

	out.Reset()
	if err := (&HistoryCmd{Deleted: true, Filter: "day", Limit: 5}).Run(ctx); err != nil {
		t.Fatalf("history --deleted --filter day failed: %v", err)
	}
	if strings.Count(out.String(), "\n") != 1 {
		t.Errorf("expected one deleted event in the last day:\n%s", out.String())
	}

	if err := (&HistoryCmd{Deleted: true, Filter: "fortnight"}).Run(ctx); !errors.Is(err, stats.ErrUnknownWindow) {
		t.Errorf("expected ErrUnknownWindow, got %v", err)
	}
}

func TestDeleteCmd_Errors(t *testing.T) {
	ctx, _ := setupTestDB(t)
	e := seed(t, ctx, time.Hour, true)

	err := (&DeleteCmd{ID: "missing"}).Run(ctx)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown ID, got %v", err)
	}

	if err := (&DeleteCmd{ID: e.ID}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	err = (&DeleteCmd{ID: e.ID}).Run(ctx)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestRestoreCmd_LiveEvent(t *testing.T) {
	ctx, _ := setupTestDB(t)
	e := seed(t, ctx, time.Hour, true)

	err := (&RestoreCmd{ID: e.ID}).Run(ctx)
	if !errors.Is(err, storage.ErrNotDeleted) {
		t.Errorf("expected ErrNotDeleted, got %v", err)
	}
}

func TestExportCmd_File(t *testing.T) {
	ctx, out := setupTestDB(t)
	seed(t, ctx, 2*time.Hour, true)
	seed(t, ctx, time.Hour, false)
	path := filepath.Join(t.TempDir(), "export.json")

	if err := (&ExportCmd{Format: "json", Filter: "all", Output: path}).Run(ctx); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(out.String(), "Exported 2 events") {
		t.Errorf("expected confirmation, got:\n%s", out.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	var doc struct {
		Window  string `json:"window"`
		Summary struct {
			Total int    `json:"total"`
			Rate  string `json:"positive_rate"`
		} `json:"summary"`
		Events []struct {
			Evaluation string `json:"evaluation"`
		} `json:"events"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not valid json: %v", err)
	}
	if doc.Window != "all" || doc.Summary.Total != 2 || doc.Summary.Rate != "50.00%" {
		t.Errorf("unexpected export summary: %+v", doc)
	}
	if len(doc.Events) != 2 || doc.Events[0].Evaluation != "positive" {
		t.Errorf("unexpected exported events: %+v", doc.Events)
	}
}

func TestExportCmd_YAMLStdout(t *testing.T) {
	ctx, out := setupTestDB(t)
	seed(t, ctx, time.Hour, true)

	if err := (&ExportCmd{Format: "yaml", Filter: "day"}).Run(ctx); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(out.String(), "window: day") {
		t.Errorf("expected yaml output, got:\n%s", out.String())
	}
}

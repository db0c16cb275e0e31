package system

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/config"
	"github.com/julianstephens/moodlit/internal/storage"
	"github.com/julianstephens/moodlit/internal/storage/sqlite"
)

// newContext wires store into a context that captures output.
func newContext(store storage.Provider) (*cli.Context, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &cli.Context{
		Store:  store,
		Target: config.Target{Value: store.GetConfigPath(), Source: config.SourceFlag},
		Config: config.DefaultConfig(),
		Out:    out,
	}, out
}

func setupTestDB(t *testing.T) (*cli.Context, *sqlite.Store, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx, out := newContext(store)
	return ctx, store, out
}

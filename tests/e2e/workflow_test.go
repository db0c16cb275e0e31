package e2e

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var idPattern = regexp.MustCompile(`ID: ([0-9a-f-]{36})`)

// findBinary locates the moodlit build, skipping when it has not been built.
func findBinary(t *testing.T) string {
	t.Helper()

	binDir := os.Getenv("MOODLIT_BIN_DIR")
	if binDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			t.Fatalf("Failed to get cwd: %v", err)
		}
		// Default to ../../bin relative to tests/e2e
		binDir = filepath.Join(cwd, "..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)

	cliPath := filepath.Join(binDir, "moodlit")
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("CLI binary not found at %s; build it with 'go build -o bin/moodlit ./cmd/moodlit'", cliPath)
	}
	return cliPath
}

// isolatedEnv points HOME at tempDir and drops any inherited database override.
func isolatedEnv(tempDir string) []string {
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "HOME=") || strings.HasPrefix(e, "XDG_CONFIG_HOME=") || strings.HasPrefix(e, "MOODLIT_DB_CONNECTION=") {
			continue
		}
		env = append(env, e)
	}
	return append(env,
		fmt.Sprintf("HOME=%s", tempDir),
		fmt.Sprintf("XDG_CONFIG_HOME=%s", tempDir),
	)
}

func TestEndToEndWorkflow(t *testing.T) {
	cliPath := findBinary(t)

	tempDir := t.TempDir()
	t.Logf("Running test in temp dir: %s", tempDir)
	env := isolatedEnv(tempDir)
	dbPath := filepath.Join(tempDir, "moodlit", "moodlit.db")

	run := func(args ...string) string {
		t.Helper()
		return runCmd(t, cliPath, env, append([]string{"--config", dbPath}, args...)...)
	}

	t.Log("Initializing CLI...")
	run("init")
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database not created: %v", err)
	}

	t.Log("Recording events...")
	run("positive")
	run("positive")
	out := run("negative")
	matches := idPattern.FindStringSubmatch(out)
	if matches == nil {
		t.Fatalf("no event ID in output: %s", out)
	}
	negativeID := matches[1]

	out = run("rate")
	for _, want := range []string{"Entries:  3", "66.67%", "33.33%"} {
		if !strings.Contains(out, want) {
			t.Errorf("rate output missing %q:\n%s", want, out)
		}
	}

	out = run("history", "--show-ids")
	if strings.Count(out, "positive") != 2 || !strings.Contains(out, negativeID) {
		t.Errorf("unexpected history:\n%s", out)
	}

	t.Log("Deleting and restoring...")
	run("delete", negativeID)
	if out := run("rate"); !strings.Contains(out, "100.00%") {
		t.Errorf("expected 100.00%% after delete:\n%s", out)
	}
	if out := run("history", "--deleted", "--show-ids"); !strings.Contains(out, negativeID) {
		t.Errorf("deleted event not listed:\n%s", out)
	}
	run("restore", negativeID)
	if out := run("rate"); !strings.Contains(out, "66.67%") {
		t.Errorf("expected 66.67%% after restore:\n%s", out)
	}

	t.Log("Exporting...")
	exportPath := filepath.Join(tempDir, "export.json")
	run("export", "--output", exportPath)
	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("export file not written: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if events, ok := doc["events"].([]any); !ok || len(events) != 3 {
		t.Errorf("expected 3 exported events, got %v", doc["events"])
	}

	t.Log("Backups and diagnostics...")
	run("backup", "create")
	if out := run("backup", "list"); !strings.Contains(out, "1 total") {
		t.Errorf("unexpected backup list:\n%s", out)
	}
	run("settings", "--default-filter", "week", "--history-limit", "5")
	if out := run("settings", "--list"); !strings.Contains(out, "week") {
		t.Errorf("settings not updated:\n%s", out)
	}
	run("doctor")
}

func TestUnknownFilterFails(t *testing.T) {
	cliPath := findBinary(t)

	tempDir := t.TempDir()
	env := isolatedEnv(tempDir)
	dbPath := filepath.Join(tempDir, "moodlit.db")

	runCmd(t, cliPath, env, "--config", dbPath, "init")

	cmd := exec.Command(cliPath, "--config", dbPath, "rate", "--filter", "fortnight")
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("expected failure for unknown filter, got:\n%s", out)
	}
	if !strings.Contains(string(out), "Error:") {
		t.Errorf("expected formatted error, got:\n%s", out)
	}
}

func runCmd(t *testing.T, path string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return string(out)
}

package system

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/storage/sqlite"
	"github.com/julianstephens/moodlit/internal/validation"
)

// errSkipped marks a check that does not apply to the current backend.
var errSkipped = errors.New("skipped")

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	d := &diagnostics{ctx: ctx}

	// Check 1: DB reachable
	dbReachable := d.check("Database reachable", checkDBReachable(ctx))

	// Checks that need a loaded database
	dbChecks := []struct {
		name string
		fn   func(*cli.Context) error
	}{
		{"Schema version", checkSchemaVersion},
		{"Migrations complete", checkMigrationsComplete},
		{"Event validation", checkEvents},
		{"Settings validation", checkSettings},
	}
	for _, c := range dbChecks {
		if !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		d.check(c.name, c.fn(ctx))
	}

	// Backups present (warning only)
	if err := checkBackupsPresent(ctx); errors.Is(err, errSkipped) {
		ctx.Printf("⊘ Backups present: SKIPPED (backups are only kept for SQLite)\n")
	} else if err != nil {
		ctx.Printf("⚠ Backups present: WARNING\n")
		ctx.Printf("   %v\n", err)
	} else {
		ctx.Printf("✓ Backups present: OK\n")
	}

	d.check("Clock/timezone", checkClockTimezone())

	ctx.Println()
	if d.failed {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

type diagnostics struct {
	ctx    *cli.Context
	failed bool
}

// check prints the outcome of one check and reports whether it passed.
func (d *diagnostics) check(name string, err error) bool {
	switch {
	case errors.Is(err, errSkipped):
		d.ctx.Printf("⊘ %s: SKIPPED (not applicable to this storage backend)\n", name)
		return true
	case err != nil:
		d.ctx.Printf("❌ %s: FAIL\n", name)
		for _, line := range strings.Split(strings.TrimRight(err.Error(), "\n"), "\n") {
			d.ctx.Printf("   %s\n", line)
		}
		d.failed = true
		return false
	default:
		d.ctx.Printf("✓ %s: OK\n", name)
		return true
	}
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	// For SQLite, also try a simple query
	if sqliteStore, ok := ctx.Store.(*sqlite.Store); ok {
		db := sqliteStore.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}

	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		// JSON store doesn't have schema version
		return errSkipped
	}

	status, err := m.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if status.Current > status.Latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", status.Current, status.Latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return errSkipped
	}

	status, err := m.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if pending := status.Pending(); pending > 0 {
		return fmt.Errorf("migrations incomplete: %d pending, run '%s migrate'", pending, constants.AppName)
	}
	return nil
}

func checkEvents(ctx *cli.Context) error {
	events, err := ctx.Store.GetAllEventsIncludingDeleted()
	if err != nil {
		return fmt.Errorf("failed to get events: %w", err)
	}

	result := validation.New().ValidateEvents(events)
	if result.HasConflicts() {
		return errors.New(result.FormatReport())
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	result := validation.New().ValidateSettings(settings)
	if result.HasConflicts() {
		return errors.New(result.FormatReport())
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if errors.Is(err, cli.ErrBackupUnsupported) {
		return errSkipped
	}
	if err != nil {
		return err
	}

	latest, ok, err := mgr.Latest()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if !ok {
		return fmt.Errorf("no backups found - consider creating one with '%s backup create'", constants.AppName)
	}

	if age := time.Since(latest.Timestamp); age > 7*24*time.Hour {
		return fmt.Errorf("latest backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

func checkClockTimezone() error {
	now := time.Now()

	// Check if time is in a reasonable range (after 2020 and before 2100)
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

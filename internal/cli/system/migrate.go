package system

import (
	"fmt"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/migration"
)

// migrator is implemented by the SQL backends.
type migrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaStatus() (migration.Status, error)
}

type MigrateCmd struct {
	Status bool `help:"Only report the schema version without applying migrations."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	m, ok := ctx.Store.(migrator)
	if !ok {
		return fmt.Errorf("migrate command only supports SQLite and PostgreSQL storage")
	}

	if c.Status {
		status, err := m.SchemaStatus()
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		ctx.Printf("Schema version: %d (latest %d, %d pending)\n", status.Current, status.Latest, status.Pending())
		return nil
	}

	count, err := m.Migrate(func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}

	return nil
}

package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/config"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/storage"
	"github.com/julianstephens/moodlit/internal/storage/postgres"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy events and settings from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	// If force flag is provided, delete existing database
	if c.Force {
		if _, ok := ctx.Store.(*postgres.Store); ok {
			return errors.New("--force is not supported for PostgreSQL; drop the moodlit tables manually, then run init again")
		}
		dbPath := ctx.Store.GetConfigPath()
		// Don't delete if it's the source (user error protection)
		if c.Source != "" {
			absDbPath, err := filepath.Abs(dbPath)
			if err == nil {
				dbPath = absDbPath
			}
			absSource, err := filepath.Abs(c.Source)
			if err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			// Close first to release the file handle
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized moodlit storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyData(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
	}

	return nil
}

func (c *InitCmd) copyData(ctx *cli.Context) error {
	source := config.Target{Value: c.Source, Source: config.SourceFlag}
	if source.IsPostgres() {
		if err := postgres.ValidateConnString(c.Source); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return err
		}
	}

	sourceStore := cli.OpenStore(source)
	if err := sourceStore.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer sourceStore.Close()

	ctx.Println("  Copying settings...")
	settings, err := sourceStore.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	ctx.Println("  Copying events...")
	events, err := sourceStore.GetAllEventsIncludingDeleted()
	if err != nil {
		return fmt.Errorf("failed to get events from source: %w", err)
	}
	deleted := 0
	for _, event := range events {
		if err := copyEvent(ctx.Store, event); err != nil {
			return err
		}
		if event.IsDeleted() {
			deleted++
		}
	}
	ctx.Printf("    Copied %d events (%d deleted)\n", len(events), deleted)

	return nil
}

// copyEvent saves event as live, then soft-deletes it again if needed so
// every backend records the deletion its own way.
func copyEvent(dst storage.Provider, event models.Event) error {
	wasDeleted := event.IsDeleted()
	event.DeletedAt = nil
	if err := dst.SaveEvent(event); err != nil {
		return fmt.Errorf("failed to copy event %s: %w", event.ID, err)
	}
	if wasDeleted {
		if err := dst.DeleteEvent(event.ID); err != nil {
			return fmt.Errorf("failed to mark event %s deleted: %w", event.ID, err)
		}
	}
	return nil
}

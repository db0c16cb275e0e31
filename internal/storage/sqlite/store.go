package sqlite

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/logger"
	"github.com/julianstephens/moodlit/internal/migration"
	"github.com/julianstephens/moodlit/internal/storage"
	"github.com/julianstephens/moodlit/migrations"
)

type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.open(); err != nil {
		return err
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	if _, err := runner.ApplyMigrations(func(msg string) {
		logger.Info(msg, "backend", "sqlite")
	}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Seed settings on a fresh database; keep existing ones on re-init
	if _, err := s.GetSettings(); err != nil {
		if err := s.SaveSettings(defaultSettings()); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
	}

	if err := s.open(); err != nil {
		return err
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps writes serialized and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("failed to configure database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) runner() (*migration.Runner, error) {
	if s.db == nil {
		return nil, storage.ErrNotLoaded
	}
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, migration.DialectSQLite), nil
}

// Migrate applies pending migrations to an already loaded database.
func (s *Store) Migrate(logFn func(string)) (int, error) {
	runner, err := s.runner()
	if err != nil {
		return 0, err
	}
	return runner.ApplyMigrations(logFn)
}

// SchemaStatus reports the applied and available schema versions.
func (s *Store) SchemaStatus() (migration.Status, error) {
	runner, err := s.runner()
	if err != nil {
		return migration.Status{}, err
	}
	return runner.Status()
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying connection, or nil before Init/Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

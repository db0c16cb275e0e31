package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/logger"
	"github.com/julianstephens/moodlit/internal/migration"
	"github.com/julianstephens/moodlit/internal/storage"
	"github.com/julianstephens/moodlit/migrations"
)

type Store struct {
	connStr string
	db      *sql.DB
}

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// IsConnString reports whether target looks like a PostgreSQL URL or a
// key=value DSN naming a host or database.
func IsConnString(target string) bool {
	if isURL(target) {
		return true
	}
	return hasParam(target, "host") || hasParam(target, "dbname")
}

func isURL(target string) bool {
	return strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://")
}

func New(connStr string) *Store {
	return &Store{
		connStr: withSearchPath(connStr),
	}
}

// withSearchPath pins search_path to the application schema unless the
// caller already chose one.
func withSearchPath(connStr string) string {
	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return connStr
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
		}
		return u.String()
	}

	if hasParam(connStr, "search_path") {
		return connStr
	}
	return strings.TrimSpace(connStr) + " search_path=" + constants.AppName
}

// hasParam reports whether a connection string carries key, in either URL
// query or space separated key=value form. Keys match case-insensitively.
func hasParam(connStr, key string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for k := range u.Query() {
			if strings.EqualFold(k, key) {
				return true
			}
		}
	}

	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], key) {
			return true
		}
	}
	return false
}

// ValidateConnString checks that connStr parses as a PostgreSQL URL or DSN
// and carries no password. It guards values that end up in flags or config
// files; secrets belong in the keyring, the environment or .pgpass.
func ValidateConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: invalid connection string format: %v", ErrInvalidConnectionString, err)
	}

	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}
		if _, isSet := u.User.Password(); isSet {
			return ErrEmbeddedCredentials
		}
		if u.Host == "" && u.User == nil && (u.Path == "" || u.Path == "/") {
			return fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
		return nil
	}

	if hasParam(connStr, "password") {
		return ErrEmbeddedCredentials
	}
	return nil
}

func (s *Store) open() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasParam(s.connStr, "sslmode") {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	s.db = db
	return nil
}

func (s *Store) Init() error {
	if err := s.open(); err != nil {
		return err
	}

	if _, err := s.db.Exec("CREATE SCHEMA IF NOT EXISTS " + pq.QuoteIdentifier(constants.AppName)); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	if _, err := runner.ApplyMigrations(func(msg string) {
		logger.Info(msg, "backend", "postgres")
	}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if _, err := s.GetSettings(); err != nil {
		if err := s.SaveSettings(storage.DefaultSettings()); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
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
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, migration.DialectPostgres), nil
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
	// Never echo the connection string
	return "postgresql"
}

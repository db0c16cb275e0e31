package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/moodlit/internal/backup"
	"github.com/julianstephens/moodlit/internal/config"
	"github.com/julianstephens/moodlit/internal/logger"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/stats"
	"github.com/julianstephens/moodlit/internal/storage"
	"github.com/julianstephens/moodlit/internal/storage/postgres"
	"github.com/julianstephens/moodlit/internal/storage/sqlite"
	"github.com/julianstephens/moodlit/internal/tracker"
	"github.com/julianstephens/moodlit/internal/utils"
)

// ErrBackupUnsupported is returned by backup commands on non-SQLite stores.
var ErrBackupUnsupported = errors.New("backups are only supported for SQLite storage")

type Context struct {
	Store  storage.Provider
	Target config.Target
	Config config.Config

	// Out and In default to stdout and stdin when nil.
	Out io.Writer
	In  io.Reader
	Now func() time.Time
}

// NewContext builds a context with the store selected by target.
func NewContext(target config.Target, cfg config.Config) *Context {
	return &Context{
		Store:  OpenStore(target),
		Target: target,
		Config: cfg,
		Out:    os.Stdout,
		In:     os.Stdin,
		Now:    time.Now,
	}
}

// OpenStore picks the backend for target. Nothing is opened until Init or
// Load is called on the result.
func OpenStore(target config.Target) storage.Provider {
	switch {
	case target.IsPostgres():
		return postgres.New(target.Value)
	case target.IsJSON():
		return storage.NewJSONStore(target.Value)
	default:
		return sqlite.NewStore(target.Value)
	}
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Stdout(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Stdout(), args...)
}

// Stdout is where command output goes.
func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) clock() func() time.Time {
	if c.Now == nil {
		return time.Now
	}
	return c.Now
}

// Confirm prints prompt and reads a y/N answer. Anything but y or yes,
// including EOF, is a no.
func (c *Context) Confirm(prompt string) (bool, error) {
	c.Printf("%s [y/N]: ", prompt)

	in := c.In
	if in == nil {
		in = os.Stdin
	}
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// Session loads the live events into a tracker session using the context clock.
func (c *Context) Session() (*tracker.Session, error) {
	return tracker.Open(c.Store, tracker.WithClock(c.clock()))
}

// Settings returns the stored preferences, falling back to defaults when
// the store has none.
func (c *Context) Settings() models.Settings {
	settings, err := c.Store.GetSettings()
	if err != nil {
		logger.Warn("Using default settings", "error", err)
		return storage.DefaultSettings()
	}
	return settings
}

// ResolveWindow parses flag, or the stored default filter when flag is empty.
func (c *Context) ResolveWindow(flag string) (stats.Window, error) {
	if flag != "" {
		return stats.ParseWindow(flag)
	}
	w, err := stats.ParseWindow(c.Settings().DefaultFilter)
	if err != nil {
		logger.Warn("Stored default filter is invalid, using all", "error", err)
		return stats.WindowAll, nil
	}
	return w, nil
}

// Location returns the timezone events are rendered in.
func (c *Context) Location() *time.Location {
	return utils.LocationFromSettings(c.Settings())
}

// BackupManager returns a manager for the SQLite database behind the store.
func (c *Context) BackupManager() (*backup.Manager, error) {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil, ErrBackupUnsupported
	}
	return backup.NewManager(c.Store.GetConfigPath(), backup.WithMaxBackups(c.Config.Backup.MaxBackups)), nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if !c.Config.Backup.Auto {
		logger.Debug("Automatic backup disabled")
		return
	}
	mgr, err := c.BackupManager()
	if err != nil {
		logger.Debug("Automatic backup skipped", "reason", err)
		return
	}
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

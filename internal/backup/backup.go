package backup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/logger"
)

const timestampLayout = "20060102-150405"

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64

	counter int
}

// Manager creates, rotates and restores copies of a SQLite database.
type Manager struct {
	dbPath     string
	backupDir  string
	maxBackups int
	now        func() time.Time
}

type Option func(*Manager)

// WithMaxBackups sets the retention limit. Values below 1 keep the default.
func WithMaxBackups(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxBackups = n
		}
	}
}

// WithClock overrides the timestamp source used for file names.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a manager storing backups next to dbPath.
func NewManager(dbPath string, opts ...Option) *Manager {
	m := &Manager{
		dbPath:     dbPath,
		backupDir:  filepath.Join(filepath.Dir(dbPath), constants.BackupDirName),
		maxBackups: constants.MaxBackups,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// CreateBackup snapshots the database and prunes old backups.
func (m *Manager) CreateBackup() (string, error) {
	path, err := m.createBackup()
	if err != nil {
		return "", err
	}

	if err := m.rotateBackups(); err != nil {
		// A failed rotation leaves extra files behind but the new backup is good
		logger.Warn("Failed to rotate old backups", "error", err)
	}
	return path, nil
}

func (m *Manager) createBackup() (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return "", fmt.Errorf("database does not exist: %s", m.dbPath)
	}

	backupPath, err := m.nextBackupPath()
	if err != nil {
		return "", err
	}

	if err := m.backupDatabase(backupPath); err != nil {
		return "", fmt.Errorf("failed to backup database: %w", err)
	}

	logger.Info("Backup created", "path", backupPath)
	return backupPath, nil
}

// nextBackupPath picks moodlit-YYYYMMDD-HHMMSS.db, adding -N on collision.
func (m *Manager) nextBackupPath() (string, error) {
	stamp := m.now().Format(timestampLayout)
	candidate := filepath.Join(m.backupDir, constants.BackupFilePrefix+stamp+constants.BackupFileSuffix)

	for counter := 1; ; counter++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		name := fmt.Sprintf("%s%s-%d%s", constants.BackupFilePrefix, stamp, counter, constants.BackupFileSuffix)
		candidate = filepath.Join(m.backupDir, name)
	}
}

func (m *Manager) backupDatabase(destPath string) error {
	srcDB, err := sql.Open("sqlite", m.dbPath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer srcDB.Close()

	var count int
	if err := srcDB.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}

	// VACUUM INTO writes a compact, consistent copy; fall back to a raw copy
	// on engines that lack it.
	if _, err := srcDB.Exec("VACUUM INTO ?", destPath); err != nil {
		logger.Debug("VACUUM INTO failed, copying file", "error", err)
		srcDB.Close()
		return copyFile(m.dbPath, destPath)
	}
	return nil
}

// parseBackupName extracts the timestamp and collision counter from a
// backup file name.
func parseBackupName(name string) (time.Time, int, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, 0, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)

	// YYYYMMDD-HHMMSS-N
	counter := 0
	if parts := strings.Split(stamp, "-"); len(parts) == 3 {
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return time.Time{}, 0, false
		}
		stamp, counter = parts[0]+"-"+parts[1], n
	}

	ts, err := time.ParseInLocation(timestampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	return ts, counter, true
}

// ListBackups returns all backups, newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, counter, ok := parseBackupName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:      filepath.Join(m.backupDir, entry.Name()),
			Timestamp: ts,
			Size:      info.Size(),
			counter:   counter,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		return backups[i].counter > backups[j].counter
	})

	return backups, nil
}

// Latest returns the newest backup, or false if there is none.
func (m *Manager) Latest() (BackupInfo, bool, error) {
	backups, err := m.ListBackups()
	if err != nil || len(backups) == 0 {
		return BackupInfo{}, false, err
	}
	return backups[0], true, nil
}

func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}

	for i := m.maxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
		logger.Debug("Removed old backup", "path", backups[i].Path)
	}
	return nil
}

// RestoreBackup replaces the database with backupPath. The current database
// is backed up first; its path is returned (empty when there was none).
// The database must not be open while restoring.
func (m *Manager) RestoreBackup(backupPath string) (string, error) {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return "", fmt.Errorf("backup file does not exist: %s", backupPath)
	}

	if err := verifyBackup(backupPath); err != nil {
		return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var preRestore string
	if _, err := os.Stat(m.dbPath); err == nil {
		// Not rotated, so the pre-restore copy cannot evict the backup being restored
		preRestore, err = m.createBackup()
		if err != nil {
			return "", fmt.Errorf("failed to backup current database before restore: %w", err)
		}
	}

	tempPath := m.dbPath + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		return "", fmt.Errorf("failed to copy backup file: %w", err)
	}

	if err := os.Rename(tempPath, m.dbPath); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			logger.Warn("Failed to remove temporary restore file", "path", tempPath, "error", removeErr)
		}
		return "", fmt.Errorf("failed to restore database: %w", err)
	}

	logger.Info("Database restored", "from", backupPath)
	return preRestore, nil
}

// verifyBackup checks that path is a SQLite database holding an events table.
func verifyBackup(path string) error {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='events'").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("no events table in %s", filepath.Base(path))
	}
	return nil
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := destFile.ReadFrom(sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

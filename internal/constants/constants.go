package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "moodlit"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/moodlit/moodlit.db"
	DefaultAppConfig   = "~/.config/moodlit/config.toml"
	Version            = "v0.1.0"

	// EnvDBConnection overrides the storage location when --config is not given
	EnvDBConnection = "MOODLIT_DB_CONNECTION"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DateTimeFormat is how event timestamps are shown to the user
	DateTimeFormat = "2006-01-02 15:04:05"

	// Event timestamps are stored with second precision
	EventPrecision = time.Second

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "moodlit-"
	BackupFileSuffix = ".db"

	// Lockfile
	LockfileName = "moodlit.lock"
)

// Session States
const (
	StateTrack SessionState = iota
	StateHistory
	StateSettings
	StateEditSettings
	StateConfirmDelete
)

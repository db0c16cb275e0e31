package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/moodlit/internal/constants"
)

var (
	// Logger is the global logger instance
	Logger *log.Logger

	rotator *lumberjack.Logger
)

// Config holds logger configuration
type Config struct {
	Debug     bool
	ConfigDir string
	// Console receives a copy of every record in debug mode. Defaults to stderr.
	Console io.Writer
}

// LogPath returns the log file location under configDir
func LogPath(configDir string) string {
	return filepath.Join(configDir, "logs", constants.AppName+".log")
}

// Init initializes the global logger with the given configuration
func Init(cfg Config) error {
	logFile := LogPath(cfg.ConfigDir)
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return err
	}

	// Release a rotator left over from a previous Init
	_ = Close()

	rotator = &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := log.InfoLevel
	var writer io.Writer = rotator
	if cfg.Debug {
		level = log.DebugLevel
		console := cfg.Console
		if console == nil {
			console = os.Stderr
		}
		writer = io.MultiWriter(console, rotator)
	}

	Logger = log.NewWithOptions(writer, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
	})

	return nil
}

// Close flushes and closes the rotating log file
func Close() error {
	if rotator == nil {
		return nil
	}
	err := rotator.Close()
	rotator = nil
	return err
}

// With returns a child logger carrying keyvals, or nil before Init
func With(keyvals ...interface{}) *log.Logger {
	if Logger == nil {
		return nil
	}
	return Logger.With(keyvals...)
}

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error message
func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/keyring"
	"github.com/julianstephens/moodlit/internal/logger"
	"github.com/julianstephens/moodlit/internal/storage/postgres"
	"github.com/julianstephens/moodlit/internal/utils"
)

// Source names where a database target came from.
type Source string

const (
	SourceFlag    Source = "flag"
	SourceEnv     Source = "environment"
	SourceKeyring Source = "keyring"
	SourceFile    Source = "config file"
	SourceDefault Source = "default"
)

// Target is the resolved database location.
type Target struct {
	Value  string
	Source Source
}

func (t Target) IsPostgres() bool {
	return postgres.IsConnString(t.Value)
}

func (t Target) IsJSON() bool {
	return !t.IsPostgres() && strings.EqualFold(filepath.Ext(t.Value), ".json")
}

// Display returns a value safe to print. Connection strings are reduced
// to their scheme so secrets from the keyring or environment never leak.
func (t Target) Display() string {
	if t.IsPostgres() {
		return "postgresql (" + string(t.Source) + ")"
	}
	return t.Value
}

// ConfigDir is where logs, backups and the lockfile live. File backends
// keep them beside the database; PostgreSQL uses the default directory.
func (t Target) ConfigDir() string {
	if t.IsPostgres() {
		path, err := utils.ExpandHome(constants.DefaultConfigPath)
		if err != nil {
			return "."
		}
		return filepath.Dir(path)
	}
	return filepath.Dir(t.Value)
}

// keyringLookup is swapped in tests.
var keyringLookup = keyring.GetConnectionString

// Resolve picks the database in priority order: flag, environment,
// keyring, config file, default path. Values from the flag or config file
// must not embed a PostgreSQL password.
func Resolve(flag string, cfg Config) (Target, error) {
	if flag != "" {
		return finalize(Target{Value: flag, Source: SourceFlag})
	}
	if env := os.Getenv(constants.EnvDBConnection); env != "" {
		return finalize(Target{Value: env, Source: SourceEnv})
	}

	connStr, err := keyringLookup()
	switch {
	case err == nil && connStr != "":
		return finalize(Target{Value: connStr, Source: SourceKeyring})
	case err != nil && !errors.Is(err, keyring.ErrNotFound):
		logger.Debug("Keyring lookup skipped", "error", err)
	}

	if cfg.Storage.Path != "" {
		return finalize(Target{Value: cfg.Storage.Path, Source: SourceFile})
	}
	return finalize(Target{Value: constants.DefaultConfigPath, Source: SourceDefault})
}

func finalize(t Target) (Target, error) {
	if t.IsPostgres() {
		if t.Source == SourceFlag || t.Source == SourceFile {
			if err := postgres.ValidateConnString(t.Value); err != nil {
				return Target{}, err
			}
		}
		return t, nil
	}

	path, err := utils.ExpandHome(t.Value)
	if err != nil {
		return Target{}, err
	}
	t.Value = path
	return t, nil
}

// Package config loads the optional TOML application config and resolves
// which database the process should open.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/utils"
)

type Config struct {
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
	Backup  BackupConfig  `toml:"backup"`
}

type StorageConfig struct {
	// Path is a SQLite file, a .json file or a PostgreSQL URL without password.
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Debug bool `toml:"debug"`
}

type BackupConfig struct {
	MaxBackups int  `toml:"max_backups"`
	Auto       bool `toml:"auto"`
}

type LoadResult struct {
	Config   Config
	Path     string
	Warnings []string
}

func DefaultConfig() Config {
	return Config{
		Backup: BackupConfig{
			MaxBackups: constants.MaxBackups,
			Auto:       true,
		},
	}
}

// DefaultPath returns the expanded location of config.toml.
func DefaultPath() string {
	path, err := utils.ExpandHome(constants.DefaultAppConfig)
	if err != nil {
		return ""
	}
	return path
}

// LoadFrom reads path over the defaults. A missing file is not an error.
// Unknown keys are reported as warnings rather than failures.
func LoadFrom(path string) (*LoadResult, error) {
	result := &LoadResult{Config: DefaultConfig(), Path: path}
	if path == "" {
		return result, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := decode(string(data), result); err != nil {
		return nil, err
	}
	return result, nil
}

func decode(data string, result *LoadResult) error {
	md, err := toml.Decode(data, &result.Config)
	if err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	for _, key := range md.Undecoded() {
		result.Warnings = append(result.Warnings, fmt.Sprintf("unknown config key: %q", key.String()))
	}
	sort.Strings(result.Warnings)

	return validate(&result.Config)
}

func validate(cfg *Config) error {
	var errs []string

	if cfg.Backup.MaxBackups < 1 {
		errs = append(errs, fmt.Sprintf("backup.max_backups must be positive, got %d", cfg.Backup.MaxBackups))
	}
	if cfg.Storage.Path != "" && strings.TrimSpace(cfg.Storage.Path) == "" {
		errs = append(errs, "storage.path must not be blank")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

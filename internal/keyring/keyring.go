// Package keyring keeps the PostgreSQL connection string in the OS keyring
// so it never has to live in a config file or shell history.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/moodlit/internal/constants"
)

var (
	// ErrNotFound is returned when no connection string is stored
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be reached
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

const checkUser = "availability-check"

// GetConnectionString returns the stored connection string or ErrNotFound.
func GetConnectionString() (string, error) {
	connStr, err := keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	switch {
	case err == nil:
		return connStr, nil
	case errors.Is(err, keyring.ErrNotFound):
		return "", ErrNotFound
	default:
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
}

// SetConnectionString stores connStr, replacing any previous value.
func SetConnectionString(connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(constants.AppName, constants.DefaultKeyringUser, connStr); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// DeleteConnectionString removes the stored connection string.
func DeleteConnectionString() error {
	err := keyring.Delete(constants.AppName, constants.DefaultKeyringUser)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, keyring.ErrNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
}

// IsAvailable reports whether a keyring read succeeds. A missing entry
// still counts as available.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, checkUser)
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

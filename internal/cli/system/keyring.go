package system

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/keyring"
	"github.com/julianstephens/moodlit/internal/storage/postgres"
)

// KeyringSetCmd stores database connection credentials in the OS keyring
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring"`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if !postgres.IsConnString(cmd.ConnectionString) {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// The keyring is encrypted, so a password is allowed here
		ctx.Println("⚠️  Warning: Connection string contains embedded credentials.")
		ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	ctx.Println("✓ Connection string stored successfully in OS keyring")
	ctx.Printf("  You can now use %s without the --config flag\n", constants.AppName)
	return nil
}

// KeyringGetCmd shows the stored connection string with its password masked
type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no connection string found in keyring. Use '%s keyring set' to store one", constants.AppName)
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}

	ctx.Printf("Connection string: %s\n", maskPassword(connStr))
	return nil
}

// KeyringDeleteCmd removes the stored connection string
type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	ctx.Println("✓ Connection string removed from OS keyring")
	return nil
}

// KeyringStatusCmd reports whether the keyring works and holds a value
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	ctx.Println("✓ OS keyring is available")

	_, err := keyring.GetConnectionString()
	switch {
	case err == nil:
		ctx.Println("✓ Connection string is stored in keyring")
	case errors.Is(err, keyring.ErrNotFound):
		ctx.Println("ℹ No connection string stored in keyring")
	default:
		return fmt.Errorf("failed to read keyring: %w", err)
	}
	return nil
}

// maskPassword hides the password of a URL or key=value connection string.
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil || u.User == nil {
			return connStr
		}
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "****")
			masked := u.String()
			// url escapes the mask characters
			return strings.Replace(masked, url.QueryEscape("****"), "****", 1)
		}
		return connStr
	}

	parts := strings.Fields(connStr)
	for i, part := range parts {
		if strings.HasPrefix(strings.ToLower(part), "password=") {
			parts[i] = "password=****"
		}
	}
	return strings.Join(parts, " ")
}

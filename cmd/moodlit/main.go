package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/cli/backups"
	"github.com/julianstephens/moodlit/internal/cli/events"
	"github.com/julianstephens/moodlit/internal/cli/settings"
	"github.com/julianstephens/moodlit/internal/cli/system"
	"github.com/julianstephens/moodlit/internal/config"
	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/errors"
	"github.com/julianstephens/moodlit/internal/logger"
)

var CLI struct {
	Version   kong.VersionFlag
	Config    string `help:"Database path (.db for SQLite, .json for JSON) or PostgreSQL connection string. PostgreSQL passwords must come from the environment, .pgpass or the OS keyring." type:"string"`
	AppConfig string `name:"app-config" help:"Path to the TOML application config." type:"path" default:"${app_config}"`
	Debug     bool   `help:"Log debug output to stderr."`

	Init     system.InitCmd       `cmd:"" help:"Initialize moodlit storage."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Positive events.PositiveCmd   `cmd:"" help:"Record a positive event now."`
	Negative events.NegativeCmd   `cmd:"" help:"Record a negative event now."`
	Rate     events.RateCmd       `cmd:"" help:"Show the positive rate for a window."`
	History  events.HistoryCmd    `cmd:"" help:"List recent events."`
	Delete   events.DeleteCmd     `cmd:"" help:"Delete an event."`
	Restore  events.RestoreCmd    `cmd:"" help:"Restore a deleted event."`
	Export   events.ExportCmd     `cmd:"" help:"Export events as JSON or YAML."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Report keyring availability." default:"1"`
	} `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
}

// Commands that open the store themselves or never touch it.
var selfLoading = []string{"init", "keyring", "migrate", "doctor"}

func needsLoad(command string) bool {
	for _, prefix := range selfLoading {
		if command == prefix || strings.HasPrefix(command, prefix+" ") {
			return false
		}
	}
	return true
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Log positive and negative moments and watch the ratio."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version, "app_config": config.DefaultPath()},
	)

	loaded, err := config.LoadFrom(CLI.AppConfig)
	if err != nil {
		errors.Fatal(err)
	}
	for _, warning := range loaded.Warnings {
		fmt.Fprintf(os.Stderr, "⚠ %s: %s\n", loaded.Path, warning)
	}

	target, err := config.Resolve(CLI.Config, loaded.Config)
	if err != nil {
		errors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug || loaded.Config.Logging.Debug,
		ConfigDir: target.ConfigDir(),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Logging disabled: %v\n", err)
	}
	defer logger.Close()

	logger.Debug("Resolved database", "target", target.Display(), "source", target.Source)

	appCtx := cli.NewContext(target, loaded.Config)

	if needsLoad(ctx.Command()) {
		if err := appCtx.Store.Load(); err != nil {
			logger.Close()
			errors.Fatal(err)
		}
	}
	defer appCtx.Store.Close()

	if err := ctx.Run(appCtx); err != nil {
		appCtx.Store.Close()
		logger.Close()
		errors.Fatal(err)
	}
}

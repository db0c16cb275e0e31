package backups

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/logger"
)

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	ctx.Printf("✓ Backup created: %s\n", filepath.Base(backupPath))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.GetBackupDir())
		return nil
	}

	ctx.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), maxBackups(ctx))
	for _, b := range backups {
		sizeKB := float64(b.Size) / 1024.0
		ctx.Printf("  %s  %s  (%.1f KB)\n", b.Timestamp.Format(constants.DateTimeFormat), filepath.Base(b.Path), sizeKB)
	}
	ctx.Printf("\nBackup directory: %s\n", mgr.GetBackupDir())

	return nil
}

func maxBackups(ctx *cli.Context) int {
	if ctx.Config.Backup.MaxBackups > 0 {
		return ctx.Config.Backup.MaxBackups
	}
	return constants.MaxBackups
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}

	backupPath, err := c.resolve(mgr.GetBackupDir())
	if err != nil {
		return err
	}

	if !c.Yes {
		ctx.Println("⚠️  WARNING: This will replace your current database with the backup.")
		ctx.Println("⚠️  IMPORTANT: All moodlit processes (including the TUI) must be stopped before restore.")
		ctx.Println("A backup of your current database will be created before restoring.")
		ctx.Printf("\nRestore from: %s\n", backupPath)
		ok, err := ctx.Confirm("Continue?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	// Close the current store connection before restoring
	if err := ctx.Store.Close(); err != nil {
		logger.Warn("Failed to close database before restore", "error", err)
	}

	preRestore, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	ctx.Println("✓ Database restored successfully!")
	if preRestore != "" {
		ctx.Printf("  Previous database saved as: %s\n", filepath.Base(preRestore))
	}
	return nil
}

// resolve finds the backup file: absolute path, then the working
// directory, then the backup directory.
func (c *BackupRestoreCmd) resolve(backupDir string) (string, error) {
	if filepath.IsAbs(c.BackupFile) {
		if _, err := os.Stat(c.BackupFile); os.IsNotExist(err) {
			return "", fmt.Errorf("backup file not found: %s", c.BackupFile)
		}
		return c.BackupFile, nil
	}

	if _, err := os.Stat(c.BackupFile); err == nil {
		absPath, err := filepath.Abs(c.BackupFile)
		if err != nil {
			return "", fmt.Errorf("failed to resolve backup path: %w", err)
		}
		return absPath, nil
	}

	possiblePath := filepath.Join(backupDir, c.BackupFile)
	if _, err := os.Stat(possiblePath); err == nil {
		return possiblePath, nil
	}
	return "", fmt.Errorf("backup file not found: tried current directory and %s", backupDir)
}

package system

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/lockfile"
	"github.com/julianstephens/moodlit/internal/logger"
	"github.com/julianstephens/moodlit/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	lock, err := lockfile.Acquire(ctx.Target.ConfigDir())
	if err != nil {
		if errors.Is(err, lockfile.ErrLocked) {
			return fmt.Errorf("%w; close the other session or remove %s if it crashed",
				err, lockfile.Path(ctx.Target.ConfigDir()))
		}
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("Failed to release lockfile", "error", err)
		}
	}()

	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	session, err := ctx.Session()
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(session), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}

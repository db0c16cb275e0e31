package events

import (
	"fmt"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/tracker"
	"github.com/julianstephens/moodlit/internal/utils"
)

type DeleteCmd struct {
	ID string `arg:"" help:"Event ID to delete."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	// Check if event exists first
	event, err := ctx.Store.GetEvent(c.ID)
	if err != nil {
		return fmt.Errorf("failed to find event with ID %s: %w", c.ID, err)
	}

	if err := tracker.New(ctx.Store).Delete(c.ID); err != nil {
		return err
	}

	ctx.Printf("Deleted %s event from %s (ID: %s)\n",
		event.Label(), utils.FormatEventTime(event.Date, ctx.Location()), c.ID)
	return nil
}

type RestoreCmd struct {
	ID string `arg:"" help:"Event ID to restore."`
}

func (c *RestoreCmd) Run(ctx *cli.Context) error {
	if err := tracker.New(ctx.Store).Restore(c.ID); err != nil {
		return err
	}

	ctx.Printf("Restored event with ID: %s\n", c.ID)
	return nil
}

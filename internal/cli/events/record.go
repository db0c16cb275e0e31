package events

import (
	"errors"
	"fmt"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/stats"
	"github.com/julianstephens/moodlit/internal/utils"
)

type PositiveCmd struct{}

func (c *PositiveCmd) Run(ctx *cli.Context) error {
	return record(ctx, models.EvaluationPositive)
}

type NegativeCmd struct{}

func (c *NegativeCmd) Run(ctx *cli.Context) error {
	return record(ctx, models.EvaluationNegative)
}

func record(ctx *cli.Context, evaluation bool) error {
	session, err := ctx.Session()
	if err != nil {
		return err
	}

	event, err := session.Record(evaluation)
	if err != nil {
		return err
	}

	ctx.Printf("✓ Recorded %s event at %s (ID: %s)\n",
		event.Label(), utils.FormatEventTime(event.Date, ctx.Location()), event.ID)

	w, err := ctx.ResolveWindow("")
	if err != nil {
		return err
	}
	rate, err := session.Rate(w)
	if err != nil {
		if errors.Is(err, stats.ErrNoEvents) {
			return nil
		}
		return fmt.Errorf("failed to compute rate: %w", err)
	}
	ctx.Printf("  Positive rate (%s): %s\n", w.Label(), rate.FormatPositive())
	return nil
}

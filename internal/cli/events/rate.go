package events

import (
	"errors"
	"fmt"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/stats"
)

type RateCmd struct {
	Filter string `help:"Time window (all, day, week, month, year). Defaults to the stored setting." short:"f"`
}

func (c *RateCmd) Run(ctx *cli.Context) error {
	w, err := ctx.ResolveWindow(c.Filter)
	if err != nil {
		return err
	}

	session, err := ctx.Session()
	if err != nil {
		return err
	}

	rate, err := session.Rate(w)
	if err != nil && !errors.Is(err, stats.ErrNoEvents) {
		return fmt.Errorf("failed to compute rate: %w", err)
	}

	ctx.Printf("Window:   %s\n", w.Label())
	if rate.Total == 0 {
		ctx.Println("Entries:  0")
		ctx.Printf("Positive: %s\n", stats.NoDataLabel)
		ctx.Printf("Negative: %s\n", stats.NoDataLabel)
		return nil
	}

	ctx.Printf("Entries:  %d (%d positive, %d negative)\n", rate.Total, rate.Positive, rate.Negative)
	ctx.Printf("Positive: %s\n", rate.FormatPositive())
	ctx.Printf("Negative: %s\n", rate.FormatNegative())
	return nil
}

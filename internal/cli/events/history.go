package events

import (
	"fmt"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/utils"
)

type HistoryCmd struct {
	Filter  string `help:"Time window (all, day, week, month, year). Defaults to the stored setting." short:"f"`
	Limit   int    `help:"Maximum number of events to show. Defaults to the stored history limit." short:"n"`
	ShowIDs bool   `help:"Show event IDs." name:"show-ids"`
	Deleted bool   `help:"List deleted events instead of live ones."`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	w, err := ctx.ResolveWindow(c.Filter)
	if err != nil {
		return err
	}

	limit := c.Limit
	if limit <= 0 {
		limit = ctx.Settings().HistoryLimit
	}

	session, err := ctx.Session()
	if err != nil {
		return err
	}

	var events []models.Event
	if c.Deleted {
		events, err = session.Deleted(w)
		if err == nil && limit > 0 && len(events) > limit {
			events = events[:limit]
		}
	} else {
		events, err = session.Recent(w, limit)
	}
	if err != nil {
		return err
	}

	if len(events) == 0 {
		if c.Deleted {
			ctx.Printf("No deleted events in window: %s\n", w.Label())
		} else {
			ctx.Printf("No events in window: %s\n", w.Label())
		}
		return nil
	}

	loc := ctx.Location()
	now := session.Now()
	for _, e := range events {
		line := fmt.Sprintf("%s  %-8s  (%s)", utils.FormatEventTime(e.Date, loc), e.Label(), utils.RelativeAge(e.Date, now))
		if c.ShowIDs {
			line += "  " + e.ID
		}
		ctx.Println(line)
	}
	return nil
}

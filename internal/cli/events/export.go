package events

import (
	"fmt"
	"os"

	"github.com/julianstephens/moodlit/internal/cli"
	"github.com/julianstephens/moodlit/internal/export"
	"github.com/julianstephens/moodlit/internal/logger"
)

type ExportCmd struct {
	Format string `help:"Output format (json or yaml)." default:"json" enum:"json,yaml,yml"`
	Filter string `help:"Time window (all, day, week, month, year). Defaults to all." short:"f" default:"all"`
	Output string `help:"Write to this file instead of stdout." short:"o" type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	w, err := ctx.ResolveWindow(c.Filter)
	if err != nil {
		return err
	}

	session, err := ctx.Session()
	if err != nil {
		return err
	}
	events, err := session.Filtered(w)
	if err != nil {
		return err
	}

	doc := export.Build(events, w, session.Now())

	if c.Output == "" {
		return export.Write(ctx.Stdout(), doc, format)
	}

	f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := export.Write(f, doc, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}

	logger.Info("Events exported", "path", c.Output, "format", format, "count", len(doc.Events))
	ctx.Printf("✓ Exported %d events to %s\n", len(doc.Events), c.Output)
	return nil
}

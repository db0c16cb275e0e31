// Package export writes events and their rate summary as JSON or YAML.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/stats"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrUnknownFormat = errors.New("unknown export format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q (expected json or yaml)", ErrUnknownFormat, s)
	}
}

type Event struct {
	ID         string `json:"id" yaml:"id"`
	Date       string `json:"date" yaml:"date"`
	Evaluation string `json:"evaluation" yaml:"evaluation"`
}

// Summary mirrors stats.Rate with display strings. Percentages are empty
// when the window holds no events.
type Summary struct {
	Total    int    `json:"total" yaml:"total"`
	Positive int    `json:"positive" yaml:"positive"`
	Negative int    `json:"negative" yaml:"negative"`
	Rate     string `json:"positive_rate,omitempty" yaml:"positive_rate,omitempty"`
	Inverse  string `json:"negative_rate,omitempty" yaml:"negative_rate,omitempty"`
}

type Document struct {
	ExportedAt string  `json:"exported_at" yaml:"exported_at"`
	Window     string  `json:"window" yaml:"window"`
	Summary    Summary `json:"summary" yaml:"summary"`
	Events     []Event `json:"events" yaml:"events"`
}

// Build assembles an export of events, which should already be filtered
// to w. Event order is preserved.
func Build(events []models.Event, w stats.Window, exportedAt time.Time) Document {
	doc := Document{
		ExportedAt: exportedAt.UTC().Format(time.RFC3339),
		Window:     w.String(),
		Events:     make([]Event, 0, len(events)),
	}

	for _, e := range events {
		doc.Events = append(doc.Events, Event{
			ID:         e.ID,
			Date:       e.Date.UTC().Format(time.RFC3339),
			Evaluation: e.Label(),
		})
	}

	rate, err := stats.CalculateRate(events)
	if err == nil {
		doc.Summary = Summary{
			Total:    rate.Total,
			Positive: rate.Positive,
			Negative: rate.Negative,
			Rate:     rate.FormatPositive(),
			Inverse:  rate.FormatNegative(),
		}
	}
	return doc
}

// Write encodes doc to w in the requested format.
func Write(w io.Writer, doc Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return nil
}

package stats

import (
	"sort"

	"github.com/julianstephens/moodlit/internal/models"
)

// Recent returns at most n events, newest first. Events with the same
// timestamp keep their input order. n <= 0 means no limit.
func Recent(events []models.Event, n int) []models.Event {
	sorted := append([]models.Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

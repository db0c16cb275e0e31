package models

// Settings holds user preferences persisted alongside the events.
type Settings struct {
	DefaultFilter string `json:"default_filter"`
	HistoryLimit  int    `json:"history_limit"`
	Timezone      string `json:"timezone"`
}

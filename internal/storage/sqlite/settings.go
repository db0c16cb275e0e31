package sqlite

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/storage"
)

func defaultSettings() models.Settings {
	return storage.DefaultSettings()
}

func (s *Store) GetSettings() (models.Settings, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	settings := defaultSettings()
	count := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		switch key {
		case constants.SettingDefaultFilter:
			settings.DefaultFilter = value
		case constants.SettingHistoryLimit:
			n, err := strconv.Atoi(value)
			if err != nil {
				return models.Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.HistoryLimit = n
		case constants.SettingTimezone:
			settings.Timezone = value
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}

	if count == 0 {
		return models.Settings{}, fmt.Errorf("settings not found")
	}

	return settings, nil
}

func (s *Store) SaveSettings(settings models.Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	values := [][2]string{
		{constants.SettingDefaultFilter, settings.DefaultFilter},
		{constants.SettingHistoryLimit, strconv.Itoa(settings.HistoryLimit)},
		{constants.SettingTimezone, settings.Timezone},
	}
	for _, kv := range values {
		if _, err := stmt.Exec(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", kv[0], err)
		}
	}

	return tx.Commit()
}

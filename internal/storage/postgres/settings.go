package postgres

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/storage"
)

func (s *Store) GetSettings() (models.Settings, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	settings := storage.DefaultSettings()
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

	stmt, err := tx.Prepare(`
INSERT INTO settings (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for key, value := range map[string]string{
		constants.SettingDefaultFilter: settings.DefaultFilter,
		constants.SettingHistoryLimit:  strconv.Itoa(settings.HistoryLimit),
		constants.SettingTimezone:      settings.Timezone,
	} {
		if _, err := stmt.Exec(key, value); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}

	return tx.Commit()
}

package database

import (
	"database/sql"
	"fmt"
	"strconv"
)

// Well-known settings keys
const (
	SettingShowDetails  = "show_details"
	SettingShowLocation = "show_location"
)

var _ SettingsRepository = (*SettingsRepo)(nil)

// SettingsRepo persists user display preferences as a key-value table.
type SettingsRepo struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

func (r *SettingsRepo) GetBool(key string, defaultValue bool) (bool, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = $1`, key).Scan(&value)

	if err == sql.ErrNoRows {
		return defaultValue, nil
	}
	if err != nil {
		return defaultValue, fmt.Errorf("failed to get setting %s: %w", key, err)
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue, nil
	}

	return parsed, nil
}

func (r *SettingsRepo) SetBool(key string, value bool) error {
	_, err := r.db.Exec(`
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = $2
	`, key, strconv.FormatBool(value))

	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}

	return nil
}

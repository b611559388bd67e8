package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/lyra/internal/models"
	"github.com/desertthunder/lyra/internal/shared"
)

// SettingsRepository persists per-user extraction settings.
//
// The table holds at most one row per user. A missing row is not an error:
// Get returns (nil, nil) and callers apply the default policy.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new [SettingsRepository] with the given database connection
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get retrieves the settings row for a user, or nil when none exists.
func (r *SettingsRepository) Get(userID string) (*models.UserSettings, error) {
	query := `
		SELECT user_id, language, level, max_words, min_length, updated_at
		FROM user_settings
		WHERE user_id = ?
	`

	var settings models.UserSettings
	err := r.db.QueryRow(query, userID).Scan(
		&settings.UserID,
		&settings.Language,
		&settings.Level,
		&settings.MaxWords,
		&settings.MinLength,
		&settings.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}

	return &settings, nil
}

// Put inserts or replaces the settings row for a user. Values are stored as
// given; coercion to the allowed ranges happens at resolution time.
func (r *SettingsRepository) Put(settings *models.UserSettings) error {
	if settings.UserID == "" {
		return fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}

	settings.UpdatedAt = time.Now()

	query := `
		INSERT INTO user_settings (user_id, language, level, max_words, min_length, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			language = excluded.language,
			level = excluded.level,
			max_words = excluded.max_words,
			min_length = excluded.min_length,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		settings.UserID,
		settings.Language,
		settings.Level,
		settings.MaxWords,
		settings.MinLength,
		settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}

	return nil
}

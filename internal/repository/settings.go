package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avolkov/taskboard/internal/models"
	"github.com/jmoiron/sqlx"
)

// PostgresSettingsRepository implements user settings persistence against
// a PostgreSQL database.
type PostgresSettingsRepository struct {
	// DB is the database handle for executing queries.
	DB *sqlx.DB
}

// NewPostgresSettingsRepository creates a new PostgresSettingsRepository
// using the provided *sqlx.DB.
func NewPostgresSettingsRepository(db *sqlx.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{DB: db}
}

// GetSettings fetches the settings row for a user. Returns ErrNotFound
// when the user has none yet.
func (r *PostgresSettingsRepository) GetSettings(ctx context.Context, userID string) (*models.Settings, error) {
	var s models.Settings
	err := r.DB.QueryRowContext(ctx, `
		SELECT user_id, theme, font_size, high_contrast, reduced_motion
		FROM user_settings WHERE user_id = $1
	`, userID).Scan(&s.UserID, &s.Theme, &s.FontSize, &s.HighContrast, &s.ReducedMotion)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetSettings: %w", err)
	}
	return &s, nil
}

// SaveSettings upserts the full settings row. Concurrent writers race with
// last-write-wins semantics; there is no version token.
func (r *PostgresSettingsRepository) SaveSettings(ctx context.Context, s models.Settings) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, theme, font_size, high_contrast, reduced_motion)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			theme = EXCLUDED.theme,
			font_size = EXCLUDED.font_size,
			high_contrast = EXCLUDED.high_contrast,
			reduced_motion = EXCLUDED.reduced_motion
	`, s.UserID, s.Theme, s.FontSize, s.HighContrast, s.ReducedMotion)
	if err != nil {
		return fmt.Errorf("SaveSettings: %w", err)
	}
	return nil
}

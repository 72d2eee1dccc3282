package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/embercortex/embercortex/internal/domain"
)

// SettingRepository implements domain.SettingRepository
type SettingRepository struct {
	db *DB
}

// NewSettingRepository creates a new setting repository
func NewSettingRepository(db *DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get retrieves a setting by key; a missing key returns (nil, nil)
func (r *SettingRepository) Get(ctx context.Context, key string) (*domain.Setting, error) {
	query := `SELECT key, value, updated_at FROM settings WHERE key = ?`

	var s domain.Setting
	var value, updatedAt string
	err := r.db.conn.QueryRowContext(ctx, query, key).Scan(&s.Key, &value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}

	s.Value = json.RawMessage(value)
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &s, nil
}

// Set stores a setting, overwriting any previous value
func (r *SettingRepository) Set(ctx context.Context, key string, value json.RawMessage) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	_, err := r.db.conn.ExecContext(ctx, query, key, string(value), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}

package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Setting is a small persisted key/value preference. The value is an
// arbitrary JSON document.
type Setting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SettingRepository defines the interface for settings storage
type SettingRepository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
}

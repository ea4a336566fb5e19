package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// MetadataRepository is the key-value system table; it holds at minimum
// the last successful sync time.
type MetadataRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type metadataRepository struct {
	ex Execer
}

// Get returns the empty string when the key has never been set.
func (r *metadataRepository) Get(ctx context.Context, key string) (string, error) {
	var value sql.NullString
	err := r.ex.QueryRowContext(ctx, "SELECT value FROM app_metadata WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to read metadata %q: %w", key, err)
	}
	return value.String, nil
}

func (r *metadataRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.ex.ExecContext(ctx, `
		INSERT INTO app_metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write metadata %q: %w", key, err)
	}
	return nil
}

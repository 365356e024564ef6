package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SnapshotStore persists exported conversation snapshots as opaque blobs,
// one row per conversation key.
type SnapshotStore struct {
	db *sqlx.DB
}

// NewSnapshotStore creates a snapshot store over an open connection.
func NewSnapshotStore(db *sqlx.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save upserts the snapshot blob for a conversation key.
func (s *SnapshotStore) Save(ctx context.Context, key string, data json.RawMessage) error {
	query := `
		INSERT INTO conversation_snapshots (id, data)
		VALUES ($1, $2)
		ON CONFLICT (id)
		DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := s.db.ExecContext(ctx, query, key, data); err != nil {
		return fmt.Errorf("failed to save conversation snapshot: %w", err)
	}
	return nil
}

// Load returns the stored blob for a key, or nil when nothing was persisted
// yet.
func (s *SnapshotStore) Load(ctx context.Context, key string) (json.RawMessage, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data, `SELECT data FROM conversation_snapshots WHERE id = $1`, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load conversation snapshot: %w", err)
	}
	return data, nil
}

// Delete removes a stored snapshot. Deleting a missing key is not an error.
func (s *SnapshotStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM conversation_snapshots WHERE id = $1`, key); err != nil {
		return fmt.Errorf("failed to delete conversation snapshot: %w", err)
	}
	return nil
}

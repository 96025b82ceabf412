package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sadopc/focusnest/internal/identity"
)

// LoadAttributes returns the user's attribute document. A user with no
// stored attributes gets an empty document.
func (s *Store) LoadAttributes(ctx context.Context, userID string) (identity.Attributes, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM user_attributes WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("load attributes: %w", err)
	}
	defer rows.Close()

	attrs := identity.Attributes{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		attrs[key] = json.RawMessage(value)
	}
	return attrs, rows.Err()
}

// UpdateAttributes replaces every key in patch in one transaction.
func (s *Store) UpdateAttributes(ctx context.Context, userID string, patch identity.Attributes) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, key := range patch.Keys() {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO user_attributes (user_id, key, value, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			userID, key, string(patch[key]), now,
		)
		if err != nil {
			return fmt.Errorf("update attribute %q: %w", key, err)
		}
	}
	return tx.Commit()
}

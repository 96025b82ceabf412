package pgstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sadopc/focusnest/internal/identity"
)

func (s *Store) LoadAttributes(ctx context.Context, userID string) (identity.Attributes, error) {
	rows, err := s.pool.Query(ctx, `SELECT key, value::text FROM user_attributes WHERE user_id=$1`, userID)
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
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, key := range patch.Keys() {
		_, err := tx.Exec(ctx,
			`INSERT INTO user_attributes (user_id, key, value, updated_at) VALUES ($1, $2, $3::jsonb, now())
			 ON CONFLICT (user_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			userID, key, string(patch[key]),
		)
		if err != nil {
			return fmt.Errorf("update attribute %q: %w", key, err)
		}
	}
	return tx.Commit(ctx)
}

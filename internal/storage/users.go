package storage

import (
	"context"
	"fmt"
)

// GetOrCreateUser finds or creates a user by login name and returns its ID.
// Updates last_seen, display_name and the admin flag on each call.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string, isAdmin bool) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name, is_admin)
		VALUES ($1, $2, $3)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(),
			    display_name = COALESCE(NULLIF($2, ''), users.display_name),
			    is_admin = $3
		RETURNING id
	`, login, displayName, isAdmin).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting user %q: %w", login, err)
	}
	return id, nil
}

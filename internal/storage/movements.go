package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/claude/fitlg/internal/models"
)

// ListMovements returns the movement catalog ordered by name, each with its
// equipment and setting names.
func (db *DB) ListMovements(ctx context.Context) ([]models.CatalogEntry, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT m.id, m.name, e.name,
		       COALESCE(array_agg(s.name ORDER BY l.position, s.name) FILTER (WHERE s.id IS NOT NULL), '{}')
		FROM movements m
		JOIN equipment e ON e.id = m.equipment_id
		LEFT JOIN movement_setting_links l ON l.movement_id = m.id
		LEFT JOIN movement_settings s ON s.id = l.setting_id
		GROUP BY m.id, m.name, e.name
		ORDER BY m.name`)
	if err != nil {
		return nil, fmt.Errorf("querying movements: %w", err)
	}
	defer rows.Close()

	var result []models.CatalogEntry
	for rows.Next() {
		var e models.CatalogEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Equipment, &e.Settings); err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// UpsertCatalog loads seeds into the catalog in one transaction. Existing
// movements get their equipment and settings replaced. Returns the number
// of movements written.
func (db *DB) UpsertCatalog(ctx context.Context, seeds []models.CatalogSeed) (int, error) {
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		for _, s := range seeds {
			if err := upsertMovement(ctx, tx, s); err != nil {
				return fmt.Errorf("movement %q: %w", s.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(seeds), nil
}

func upsertMovement(ctx context.Context, tx pgx.Tx, s models.CatalogSeed) error {
	var equipmentID int
	err := tx.QueryRow(ctx, `
		INSERT INTO equipment (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, s.Equipment).Scan(&equipmentID)
	if err != nil {
		return fmt.Errorf("upserting equipment %q: %w", s.Equipment, err)
	}

	var movementID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO movements (name, equipment_id) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET equipment_id = EXCLUDED.equipment_id
		RETURNING id`, s.Name, equipmentID).Scan(&movementID)
	if err != nil {
		return fmt.Errorf("upserting movement: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM movement_setting_links WHERE movement_id = $1`, movementID); err != nil {
		return fmt.Errorf("clearing settings: %w", err)
	}
	for i, name := range s.Settings {
		var settingID int
		err := tx.QueryRow(ctx, `
			INSERT INTO movement_settings (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`, name).Scan(&settingID)
		if err != nil {
			return fmt.Errorf("upserting setting %q: %w", name, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO movement_setting_links (movement_id, setting_id, position)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`, movementID, settingID, i)
		if err != nil {
			return fmt.Errorf("linking setting %q: %w", name, err)
		}
	}
	return nil
}

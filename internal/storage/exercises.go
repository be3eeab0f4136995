package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/claude/fitlg/internal/models"
)

// CreateExercise inserts an exercise with its movements and setting values
// in one transaction. Movements and settings are resolved by name.
func (db *DB) CreateExercise(ctx context.Context, rec *models.ExerciseRecord) (int64, error) {
	var id int64
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO exercises (founder_id, name, exercise_type, description, goal_type, goal_value, is_default)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			rec.FounderID, rec.Name, string(rec.ExerciseType), rec.Description,
			rec.GoalType, rec.GoalValue, rec.IsDefault).Scan(&id)
		if err != nil {
			return fmt.Errorf("inserting exercise: %w", err)
		}
		for _, mv := range rec.Movements {
			if err := insertExerciseMovement(ctx, tx, id, mv); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func insertExerciseMovement(ctx context.Context, tx pgx.Tx, exerciseID int64, mv models.ExerciseMovementRecord) error {
	var linkID int64
	err := tx.QueryRow(ctx, `
		INSERT INTO exercise_movements (exercise_id, movement_id, movement_number)
		SELECT $1, id, $3 FROM movements WHERE name = $2
		RETURNING id`, exerciseID, mv.Name, mv.Order).Scan(&linkID)
	if noRows(err) {
		return fmt.Errorf("movement %q not in catalog", mv.Name)
	}
	if err != nil {
		return fmt.Errorf("inserting movement %q: %w", mv.Name, err)
	}

	for _, s := range mv.Settings {
		tag, err := tx.Exec(ctx, `
			INSERT INTO exercise_movement_settings (exercise_movement_id, setting_id, setting_value)
			SELECT $1, id, $3 FROM movement_settings WHERE name = $2`,
			linkID, s.Name, s.Value)
		if err != nil {
			return fmt.Errorf("inserting setting %q of %q: %w", s.Name, mv.Name, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("setting %q of %q not in catalog", s.Name, mv.Name)
		}
	}
	return nil
}

const exerciseColumns = `id, founder_id, name, exercise_type, description, goal_type, goal_value, is_default`

func scanExercise(row pgx.Row) (models.ExerciseRecord, error) {
	var rec models.ExerciseRecord
	var exType string
	err := row.Scan(&rec.ID, &rec.FounderID, &rec.Name, &exType, &rec.Description,
		&rec.GoalType, &rec.GoalValue, &rec.IsDefault)
	rec.ExerciseType = models.ExerciseType(exType)
	return rec, err
}

// GetExercise returns an exercise with its movements, or nil if it does not exist.
func (db *DB) GetExercise(ctx context.Context, id int64) (*models.ExerciseRecord, error) {
	rec, err := scanExercise(db.Pool.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = $1`, id))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}

	movements, err := db.exerciseMovements(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	rec.Movements = movements[id]
	return &rec, nil
}

// ListExercises returns the exercises created by the user plus the default ones.
func (db *DB) ListExercises(ctx context.Context, userID int) ([]models.ExerciseRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseColumns+` FROM exercises
		 WHERE founder_id = $1 OR is_default
		 ORDER BY is_default, name, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.ExerciseRecord
	var ids []int64
	for rows.Next() {
		rec, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, rec)
		ids = append(ids, rec.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return result, nil
	}

	movements, err := db.exerciseMovements(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Movements = movements[result[i].ID]
	}
	return result, nil
}

// DeleteExercise removes an exercise and everything linked to it. Returns
// false if it did not exist.
func (db *DB) DeleteExercise(ctx context.Context, id int64) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM exercises WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting exercise: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// movementSettingRow is one row of the exercise movements join: a movement
// of an exercise with at most one of its setting values.
type movementSettingRow struct {
	ExerciseID   int64
	LinkID       int64
	MovementID   int64
	Name         string
	Order        int
	SettingName  *string
	SettingValue *int
}

func (db *DB) exerciseMovements(ctx context.Context, exerciseIDs []int64) (map[int64][]models.ExerciseMovementRecord, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT em.exercise_id, em.id, m.id, m.name, em.movement_number, s.name, ems.setting_value
		FROM exercise_movements em
		JOIN movements m ON m.id = em.movement_id
		LEFT JOIN exercise_movement_settings ems ON ems.exercise_movement_id = em.id
		LEFT JOIN movement_settings s ON s.id = ems.setting_id
		LEFT JOIN movement_setting_links l ON l.movement_id = m.id AND l.setting_id = s.id
		WHERE em.exercise_id = ANY($1)
		ORDER BY em.exercise_id, em.movement_number, em.id, l.position, s.name`, exerciseIDs)
	if err != nil {
		return nil, fmt.Errorf("querying exercise movements: %w", err)
	}
	defer rows.Close()

	var flat []movementSettingRow
	for rows.Next() {
		var r movementSettingRow
		if err := rows.Scan(&r.ExerciseID, &r.LinkID, &r.MovementID, &r.Name, &r.Order,
			&r.SettingName, &r.SettingValue); err != nil {
			return nil, fmt.Errorf("scanning exercise movement: %w", err)
		}
		flat = append(flat, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groupMovements(flat), nil
}

// groupMovements folds ordered join rows into movements per exercise.
// Consecutive rows with the same link id belong to the same movement.
func groupMovements(rows []movementSettingRow) map[int64][]models.ExerciseMovementRecord {
	out := make(map[int64][]models.ExerciseMovementRecord)
	var lastLink int64 = -1
	for _, r := range rows {
		mvs := out[r.ExerciseID]
		if r.LinkID != lastLink {
			mvs = append(mvs, models.ExerciseMovementRecord{
				MovementID: r.MovementID,
				Name:       r.Name,
				Order:      r.Order,
				Settings:   []models.MovementSettingRecord{},
			})
			lastLink = r.LinkID
		}
		if r.SettingName != nil {
			cur := &mvs[len(mvs)-1]
			v := 0
			if r.SettingValue != nil {
				v = *r.SettingValue
			}
			cur.Settings = append(cur.Settings, models.MovementSettingRecord{Name: *r.SettingName, Value: v})
		}
		out[r.ExerciseID] = mvs
	}
	return out
}

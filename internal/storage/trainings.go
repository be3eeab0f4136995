package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/claude/fitlg/internal/models"
)

// CreateTraining inserts a pending training. The date defaults to now.
func (db *DB) CreateTraining(ctx context.Context, t *models.TrainingRow) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO trainings (user_id, exercise_id, performance_type)
		VALUES ($1, $2, $3)
		RETURNING id`, t.UserID, t.ExerciseID, t.PerformanceType).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting training: %w", err)
	}
	return id, nil
}

const trainingColumns = `id, user_id, exercise_id, date, done, performance_type, performance_value`

func scanTraining(row pgx.Row) (models.TrainingRow, error) {
	var t models.TrainingRow
	err := row.Scan(&t.ID, &t.UserID, &t.ExerciseID, &t.Date, &t.Done, &t.PerformanceType, &t.PerformanceValue)
	return t, err
}

// GetTraining returns a training, or nil if it does not exist.
func (db *DB) GetTraining(ctx context.Context, id int64) (*models.TrainingRow, error) {
	t, err := scanTraining(db.Pool.QueryRow(ctx,
		`SELECT `+trainingColumns+` FROM trainings WHERE id = $1`, id))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying training: %w", err)
	}
	return &t, nil
}

// ListTrainings returns the user's trainings, newest first, optionally
// restricted to one exercise.
func (db *DB) ListTrainings(ctx context.Context, userID int, exerciseID int64) ([]models.TrainingRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+trainingColumns+` FROM trainings
		 WHERE user_id = $1 AND ($2::bigint = 0 OR exercise_id = $2::bigint)
		 ORDER BY date DESC, id DESC`, userID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying trainings: %w", err)
	}
	defer rows.Close()

	var result []models.TrainingRow
	for rows.Next() {
		t, err := scanTraining(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning training: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// SetTrainingPerformance records the performance of a training and marks it done.
func (db *DB) SetTrainingPerformance(ctx context.Context, id int64, value int) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE trainings SET performance_value = $2, done = TRUE WHERE id = $1`, id, value)
	if err != nil {
		return fmt.Errorf("updating training: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("training %d does not exist", id)
	}
	return nil
}

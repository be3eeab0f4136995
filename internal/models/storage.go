package models

import "time"

// ExerciseRecord is an exercise as stored in the exercises table, with its
// movements and integer setting values.
type ExerciseRecord struct {
	ID           int64                    `json:"id"`
	FounderID    int                      `json:"founder_id"`
	Name         string                   `json:"name"`
	ExerciseType ExerciseType             `json:"exercise_type"`
	Description  string                   `json:"description"`
	GoalType     string                   `json:"goal_type"`
	GoalValue    *int                     `json:"goal_value"`
	IsDefault    bool                     `json:"is_default"`
	Movements    []ExerciseMovementRecord `json:"movements"`
}

// ExerciseMovementRecord is a row of exercise_movements with its settings.
type ExerciseMovementRecord struct {
	MovementID int64                   `json:"id"`
	Name       string                  `json:"name"`
	Order      int                     `json:"order"`
	Settings   []MovementSettingRecord `json:"settings"`
}

// MovementSettingRecord is the value of one setting for a movement in an exercise.
type MovementSettingRecord struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// TrainingRow is a row of the trainings table.
type TrainingRow struct {
	ID               int64     `json:"id"`
	UserID           int       `json:"user_id"`
	ExerciseID       int64     `json:"exercise_id"`
	Date             time.Time `json:"date"`
	Done             bool      `json:"done"`
	PerformanceType  string    `json:"performance_type"`
	PerformanceValue *int      `json:"performance_value"`
}

// CatalogSeed is a movement to load into the catalog, with its equipment
// and setting names.
type CatalogSeed struct {
	Name      string
	Equipment string
	Settings  []string
}

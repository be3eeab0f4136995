// Package program implements the exercise and training operations behind the
// JSON endpoints, the pages and the MCP tools.
package program

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/claude/fitlg/internal/models"
)

// Store is the persistence the service needs. *storage.DB satisfies it.
// Getters return nil and no error when the row does not exist.
type Store interface {
	ListMovements(ctx context.Context) ([]models.CatalogEntry, error)
	CreateExercise(ctx context.Context, rec *models.ExerciseRecord) (int64, error)
	GetExercise(ctx context.Context, id int64) (*models.ExerciseRecord, error)
	ListExercises(ctx context.Context, userID int) ([]models.ExerciseRecord, error)
	DeleteExercise(ctx context.Context, id int64) (bool, error)
	CreateTraining(ctx context.Context, t *models.TrainingRow) (int64, error)
	GetTraining(ctx context.Context, id int64) (*models.TrainingRow, error)
	// ListTrainings returns the user's trainings, newest first. A non-zero
	// exerciseID restricts them to that exercise.
	ListTrainings(ctx context.Context, userID int, exerciseID int64) ([]models.TrainingRow, error)
	SetTrainingPerformance(ctx context.Context, id int64, value int) error
}

// MaxValue is the largest goal or setting value, the range of the INTEGER
// columns they are stored in.
const MaxValue = math.MaxInt32

// Service holds the program rules on top of a Store.
type Service struct {
	store Store
	log   *slog.Logger
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

// ExerciseDetail is an exercise with the user's personal best on it.
type ExerciseDetail struct {
	models.ExerciseRecord
	PB int `json:"pb"`
}

// ExerciseList is the exercise list page: the exercises visible to a user
// with the counters shown above it.
type ExerciseList struct {
	Exercises   []ExerciseDetail `json:"exercises"`
	CustomCount int              `json:"custom_count"`
	PBCount     int              `json:"pb_count"`
}

// TrainingDetail is a training with its exercise embedded.
type TrainingDetail struct {
	models.TrainingRow
	Exercise ExerciseDetail `json:"exercise"`
}

// TrainingList is the trainings page.
type TrainingList struct {
	Trainings []TrainingDetail `json:"trainings"`
	DoneCount int              `json:"done_count"`
	PBCount   int              `json:"pb_count"`
}

// Catalog returns the movement catalog ordered by name.
func (s *Service) Catalog(ctx context.Context) ([]models.CatalogEntry, error) {
	entries, err := s.store.ListMovements(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}
	if entries == nil {
		entries = []models.CatalogEntry{}
	}
	return entries, nil
}

// RegisterExercise validates ex and stores it for founderID. Exercises
// created by admins are default exercises, visible to everyone.
func (s *Service) RegisterExercise(ctx context.Context, ex models.Exercise, founderID int, isAdmin bool) (int64, error) {
	name := strings.TrimSpace(ex.Name)
	if name == "" {
		return 0, invalid("name", "must not be empty")
	}
	if !ex.ExerciseType.Valid() {
		return 0, invalid("exerciseType", "unknown type %q", ex.ExerciseType)
	}
	if math.IsNaN(ex.GoalValue) || math.IsInf(ex.GoalValue, 0) {
		return 0, invalid("goalValue", "must be a finite number")
	}
	if ex.GoalValue < 0 {
		return 0, invalid("goalValue", "must not be negative")
	}
	if ex.GoalValue > MaxValue {
		return 0, invalid("goalValue", "must not exceed %d", MaxValue)
	}

	goal := int(ex.GoalValue)
	if ex.GoalType == models.GoalLabelDistance && ex.GoalValue < 100 {
		goal = models.KmToMeters(ex.GoalValue)
	}

	catalog, err := s.Catalog(ctx)
	if err != nil {
		return 0, err
	}

	rec := &models.ExerciseRecord{
		FounderID:    founderID,
		Name:         name,
		ExerciseType: ex.ExerciseType,
		Description:  ex.Description,
		GoalType:     models.GoalKind(ex.ExerciseType),
		GoalValue:    &goal,
		IsDefault:    isAdmin,
	}
	for _, mv := range ex.Movements {
		m, err := movementRecord(catalog, mv)
		if err != nil {
			return 0, err
		}
		rec.Movements = append(rec.Movements, m)
	}

	id, err := s.store.CreateExercise(ctx, rec)
	if err != nil {
		return 0, fmt.Errorf("creating exercise %q: %w", name, err)
	}
	s.log.Info("exercise registered", "id", id, "name", name, "type", ex.ExerciseType,
		"movements", len(rec.Movements), "default", isAdmin)
	return id, nil
}

func movementRecord(catalog []models.CatalogEntry, mv models.Movement) (models.ExerciseMovementRecord, error) {
	entry, ok := models.FindCatalogEntry(catalog, mv.Name)
	if !ok {
		return models.ExerciseMovementRecord{}, invalid("movements", "unknown movement %q", mv.Name)
	}
	if mv.Order < 1 {
		return models.ExerciseMovementRecord{}, invalid("movements", "%s: order must be at least 1", mv.Name)
	}
	rec := models.ExerciseMovementRecord{MovementID: entry.ID, Name: entry.Name, Order: mv.Order}
	for _, st := range mv.Settings {
		if !slices.Contains(entry.Settings, st.Name) {
			return models.ExerciseMovementRecord{}, invalid("settings", "%s has no setting %q", mv.Name, st.Name)
		}
		v, err := strconv.Atoi(strings.TrimSpace(st.Value))
		if err != nil || v < 0 {
			return models.ExerciseMovementRecord{}, invalid("settings", "%s %s: %q is not a non-negative integer", mv.Name, st.Name, st.Value)
		}
		if v > MaxValue {
			return models.ExerciseMovementRecord{}, invalid("settings", "%s %s: %d exceeds %d", mv.Name, st.Name, v, MaxValue)
		}
		rec.Settings = append(rec.Settings, models.MovementSettingRecord{Name: st.Name, Value: v})
	}
	return rec, nil
}

// visible reports whether userID may see rec.
func visible(rec *models.ExerciseRecord, userID int) bool {
	return rec.IsDefault || rec.FounderID == userID
}

// Exercise returns one exercise with the user's personal best.
func (s *Service) Exercise(ctx context.Context, id int64, userID int) (*ExerciseDetail, error) {
	rec, err := s.store.GetExercise(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting exercise %d: %w", id, err)
	}
	if rec == nil || !visible(rec, userID) {
		return nil, fmt.Errorf("exercise %d: %w", id, ErrNotFound)
	}
	return s.detail(ctx, *rec, userID)
}

func (s *Service) detail(ctx context.Context, rec models.ExerciseRecord, userID int) (*ExerciseDetail, error) {
	trainings, err := s.store.ListTrainings(ctx, userID, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("listing trainings of exercise %d: %w", rec.ID, err)
	}
	if rec.Movements == nil {
		rec.Movements = []models.ExerciseMovementRecord{}
	}
	return &ExerciseDetail{ExerciseRecord: rec, PB: PersonalBest(rec.GoalType, trainings)}, nil
}

// PersonalBest is the best performance among trainings: the highest for a
// duration goal, the lowest non-zero for round and distance goals, 0 for
// anything else or when nothing was recorded.
func PersonalBest(goalType string, trainings []models.TrainingRow) int {
	pb := 0
	for _, t := range trainings {
		if t.PerformanceValue == nil || *t.PerformanceValue == 0 {
			continue
		}
		v := *t.PerformanceValue
		switch goalType {
		case models.KindDuration:
			if v > pb {
				pb = v
			}
		case models.KindRound, models.KindDistance:
			if pb == 0 || v < pb {
				pb = v
			}
		}
	}
	return pb
}

// Exercises returns the user's exercises and the default ones.
func (s *Service) Exercises(ctx context.Context, userID int) (*ExerciseList, error) {
	recs, err := s.store.ListExercises(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing exercises: %w", err)
	}
	list := &ExerciseList{Exercises: make([]ExerciseDetail, 0, len(recs))}
	for _, rec := range recs {
		d, err := s.detail(ctx, rec, userID)
		if err != nil {
			return nil, err
		}
		list.Exercises = append(list.Exercises, *d)
		if !d.IsDefault {
			list.CustomCount++
		}
		if d.PB != 0 {
			list.PBCount++
		}
	}
	return list, nil
}

// DeleteExercise removes an exercise the user created. Default exercises
// can only be removed by their founder.
func (s *Service) DeleteExercise(ctx context.Context, id int64, userID int) error {
	rec, err := s.store.GetExercise(ctx, id)
	if err != nil {
		return fmt.Errorf("getting exercise %d: %w", id, err)
	}
	if rec == nil || rec.FounderID != userID {
		return fmt.Errorf("exercise %d: %w", id, ErrNotFound)
	}
	ok, err := s.store.DeleteExercise(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting exercise %d: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("exercise %d: %w", id, ErrNotFound)
	}
	s.log.Info("exercise deleted", "id", id, "user_id", userID)
	return nil
}

// StartTraining creates a pending training on an exercise.
func (s *Service) StartTraining(ctx context.Context, exerciseID int64, userID int) (int64, error) {
	rec, err := s.store.GetExercise(ctx, exerciseID)
	if err != nil {
		return 0, fmt.Errorf("getting exercise %d: %w", exerciseID, err)
	}
	if rec == nil || !visible(rec, userID) {
		return 0, fmt.Errorf("exercise %d: %w", exerciseID, ErrNotFound)
	}
	id, err := s.store.CreateTraining(ctx, &models.TrainingRow{
		UserID:          userID,
		ExerciseID:      exerciseID,
		PerformanceType: models.PerformanceType(rec.ExerciseType),
	})
	if err != nil {
		return 0, fmt.Errorf("creating training: %w", err)
	}
	return id, nil
}

// Trainings returns the user's trainings, newest first. A training counts
// as a personal best when its performance equals the exercise's.
func (s *Service) Trainings(ctx context.Context, userID int) (*TrainingList, error) {
	rows, err := s.store.ListTrainings(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("listing trainings: %w", err)
	}

	exercises := make(map[int64]*ExerciseDetail)
	list := &TrainingList{Trainings: make([]TrainingDetail, 0, len(rows))}
	for _, row := range rows {
		ex, ok := exercises[row.ExerciseID]
		if !ok {
			rec, err := s.store.GetExercise(ctx, row.ExerciseID)
			if err != nil {
				return nil, fmt.Errorf("getting exercise %d: %w", row.ExerciseID, err)
			}
			if rec == nil {
				s.log.Warn("training without exercise", "training_id", row.ID, "exercise_id", row.ExerciseID)
				continue
			}
			if ex, err = s.detail(ctx, *rec, userID); err != nil {
				return nil, err
			}
			exercises[row.ExerciseID] = ex
		}

		list.Trainings = append(list.Trainings, TrainingDetail{TrainingRow: row, Exercise: *ex})
		if row.Done {
			list.DoneCount++
		}
		if row.PerformanceValue != nil && *row.PerformanceValue != 0 && *row.PerformanceValue == ex.PB {
			list.PBCount++
		}
	}
	return list, nil
}

// RecordPerformance stores the result of a training and marks it done.
// Duration trainings take "HH:MM:SS", the others an integer.
func (s *Service) RecordPerformance(ctx context.Context, trainingID int64, userID int, raw string) error {
	t, err := s.store.GetTraining(ctx, trainingID)
	if err != nil {
		return fmt.Errorf("getting training %d: %w", trainingID, err)
	}
	if t == nil || t.UserID != userID {
		return fmt.Errorf("training %d: %w", trainingID, ErrNotFound)
	}

	raw = strings.TrimSpace(raw)
	var value int
	if t.PerformanceType == models.KindDuration {
		value, err = models.ClockToSeconds(raw)
		if err != nil {
			return invalid("performance_value", "%v", err)
		}
	} else {
		value, err = strconv.Atoi(raw)
		if err != nil || value < 0 || value > MaxValue {
			return invalid("performance_value", "%q is not a non-negative integer", raw)
		}
	}

	if err := s.store.SetTrainingPerformance(ctx, trainingID, value); err != nil {
		return fmt.Errorf("recording performance of training %d: %w", trainingID, err)
	}
	return nil
}

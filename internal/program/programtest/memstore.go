// Package programtest provides an in-memory program store for tests.
package programtest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/claude/fitlg/internal/models"
)

// Epoch is the date of training 0. Training n is dated n hours later.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// MemStore is an in-memory program.Store. Exercises and trainings share
// one id sequence.
type MemStore struct {
	mu        sync.Mutex
	Catalog   []models.CatalogEntry
	Exercises map[int64]*models.ExerciseRecord
	Trainings map[int64]*models.TrainingRow
	nextID    int64
}

// NewMemStore returns a store with a two-movement catalog: burpees
// (repetitions) and deadlift (repetitions, poids).
func NewMemStore() *MemStore {
	return &MemStore{
		Catalog: []models.CatalogEntry{
			{ID: 1, Name: "burpees", Equipment: "aucun", Settings: []string{"repetitions"}},
			{ID: 2, Name: "deadlift", Equipment: "barre", Settings: []string{"repetitions", "poids"}},
		},
		Exercises: make(map[int64]*models.ExerciseRecord),
		Trainings: make(map[int64]*models.TrainingRow),
	}
}

func (m *MemStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MemStore) ListMovements(context.Context) ([]models.CatalogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.CatalogEntry(nil), m.Catalog...), nil
}

func (m *MemStore) CreateExercise(_ context.Context, rec *models.ExerciseRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	cp.ID = m.id()
	m.Exercises[cp.ID] = &cp
	return cp.ID, nil
}

func (m *MemStore) GetExercise(_ context.Context, id int64) (*models.ExerciseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Exercises[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *MemStore) ListExercises(_ context.Context, userID int) ([]models.ExerciseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ExerciseRecord
	for _, rec := range m.Exercises {
		if rec.FounderID == userID || rec.IsDefault {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) DeleteExercise(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Exercises[id]; !ok {
		return false, nil
	}
	delete(m.Exercises, id)
	return true, nil
}

func (m *MemStore) CreateTraining(_ context.Context, t *models.TrainingRow) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	cp.ID = m.id()
	cp.Date = Epoch.Add(time.Duration(cp.ID) * time.Hour)
	m.Trainings[cp.ID] = &cp
	return cp.ID, nil
}

func (m *MemStore) GetTraining(_ context.Context, id int64) (*models.TrainingRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Trainings[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *MemStore) ListTrainings(_ context.Context, userID int, exerciseID int64) ([]models.TrainingRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TrainingRow
	for _, t := range m.Trainings {
		if t.UserID == userID && (exerciseID == 0 || t.ExerciseID == exerciseID) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *MemStore) SetTrainingPerformance(_ context.Context, id int64, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Trainings[id]
	if !ok {
		return errors.New("no training")
	}
	t.PerformanceValue = &value
	t.Done = true
	return nil
}

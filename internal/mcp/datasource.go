package mcp

import (
	"context"

	"github.com/claude/fitlg/internal/api"
	"github.com/claude/fitlg/internal/models"
	"github.com/claude/fitlg/internal/program"
)

// DataSource abstracts the data layer for MCP tools. Both *program.Service
// (local) and *api.Client (remote via the JSON endpoints) satisfy this
// interface.
type DataSource interface {
	Catalog(ctx context.Context) ([]models.CatalogEntry, error)
	Exercises(ctx context.Context, userID int) (*program.ExerciseList, error)
	Exercise(ctx context.Context, id int64, userID int) (*program.ExerciseDetail, error)
	RegisterExercise(ctx context.Context, ex models.Exercise, founderID int, isAdmin bool) (int64, error)
	Trainings(ctx context.Context, userID int) (*program.TrainingList, error)
}

// Compile-time checks.
var (
	_ DataSource = (*program.Service)(nil)
	_ DataSource = (*api.Client)(nil)
)

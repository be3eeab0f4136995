package wizard

import (
	"context"

	"github.com/claude/fitlg/internal/models"
)

// Backend is what the wizard talks to: the movement catalog and the exercise
// endpoint. The in-process program service and the HTTP API client both
// satisfy it.
type Backend interface {
	Movements(ctx context.Context) ([]models.CatalogEntry, error)
	AddExercise(ctx context.Context, ex models.Exercise) (int64, error)
}

package program

import (
	"context"

	"github.com/claude/fitlg/internal/models"
)

// UserBackend is the service seen by one user. It is what the exercise
// wizard uses when the service runs in the same process.
type UserBackend struct {
	svc     *Service
	userID  int
	isAdmin bool
}

// ForUser binds the service to a user for the wizard.
func (s *Service) ForUser(userID int, isAdmin bool) *UserBackend {
	return &UserBackend{svc: s, userID: userID, isAdmin: isAdmin}
}

func (b *UserBackend) Movements(ctx context.Context) ([]models.CatalogEntry, error) {
	return b.svc.Catalog(ctx)
}

func (b *UserBackend) AddExercise(ctx context.Context, ex models.Exercise) (int64, error) {
	return b.svc.RegisterExercise(ctx, ex, b.userID, b.isAdmin)
}

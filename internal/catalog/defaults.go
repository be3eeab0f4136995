package catalog

import "github.com/claude/fitlg/internal/models"

// Setting names of the default catalog.
const (
	Repetitions = "repetitions"
	Weight      = "poids"
	Distance    = "distance"
	Calories    = "calories"
	Lest        = "lestes"
)

// Defaults returns the catalog a fresh installation starts with.
func Defaults() []models.CatalogSeed {
	return []models.CatalogSeed{
		{Name: "squats", Equipment: "kettlebell", Settings: []string{Repetitions, Lest}},
		{Name: "pushups", Equipment: "aucun", Settings: []string{Repetitions, Lest}},
		{Name: "wallballs", Equipment: "wallball", Settings: []string{Repetitions, Weight}},
		{Name: "pullups", Equipment: "barre de traction", Settings: []string{Repetitions, Lest}},
		{Name: "burpees", Equipment: "aucun", Settings: []string{Repetitions, Lest}},
		{Name: "situps", Equipment: "aucun", Settings: []string{Repetitions, Lest}},
		{Name: "box jumps", Equipment: "box", Settings: []string{Repetitions, Lest}},
		{Name: "run", Equipment: "aucun", Settings: []string{Distance, Lest}},
		{Name: "deadlift", Equipment: "barre olympique", Settings: []string{Repetitions, Weight}},
		{Name: "handstand pushup", Equipment: "aucun", Settings: []string{Repetitions, Lest}},
		{Name: "clean", Equipment: "barre olympique", Settings: []string{Repetitions, Weight}},
		{Name: "ring dips", Equipment: "anneaux", Settings: []string{Repetitions, Lest}},
		{Name: "thruster", Equipment: "barre olympique", Settings: []string{Repetitions, Weight}},
		{Name: "clean and jerk", Equipment: "barre olympique", Settings: []string{Repetitions, Weight}},
		{Name: "kettlebell swing", Equipment: "kettlebell", Settings: []string{Repetitions, Weight}},
		{Name: "snatch", Equipment: "barre olympique", Settings: []string{Repetitions, Weight}},
		{Name: "rameur", Equipment: "rameur", Settings: []string{Distance, Calories}},
		{Name: "pistol", Equipment: "aucun", Settings: []string{Repetitions, Lest}},
		{Name: "overhead squat", Equipment: "barre olympique", Settings: []string{Repetitions, Weight}},
		{Name: "double-unders", Equipment: "corde à sauter", Settings: []string{Repetitions, Lest}},
	}
}

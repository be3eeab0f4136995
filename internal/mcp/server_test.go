package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/fitlg/internal/models"
	"github.com/claude/fitlg/internal/program"
	"github.com/claude/fitlg/internal/program/programtest"
)

// TestUserFromContextDefault verifies the default user (1, not admin) when
// no value is set in the context.
func TestUserFromContextDefault(t *testing.T) {
	id, admin := UserFromContext(context.Background())
	if id != 1 || admin {
		t.Errorf("UserFromContext(empty) = %d, %v, want 1, false", id, admin)
	}
}

// TestUserFromContextSet verifies the user is extracted from context after
// being set by WithUser.
func TestUserFromContextSet(t *testing.T) {
	id, admin := UserFromContext(WithUser(context.Background(), 42, true))
	if id != 42 || !admin {
		t.Errorf("UserFromContext = %d, %v, want 42, true", id, admin)
	}
}

func newTestHandlers(t *testing.T) (*handlers, *programtest.MemStore) {
	t.Helper()
	store := programtest.NewMemStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &handlers{ds: program.NewService(store, log), log: log}, store
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want TextContent", res.Content[0])
	}
	return text.Text
}

// TestCreateExercise verifies the tool registers the exercise for the
// context user with movements given as JSON.
func TestCreateExercise(t *testing.T) {
	h, store := newTestHandlers(t)
	ctx := WithUser(context.Background(), 7, false)

	res, err := h.createExercise(ctx, callRequest(map[string]any{
		"name":          "Cindy",
		"exercise_type": "amrap",
		"goal_value":    1200.0,
		"movements":     `[{"name":"burpees","settings":[{"name":"repetitions","value":10}]},{"name":"deadlift","order":3,"settings":[{"name":"repetitions","value":"5"},{"name":"poids","value":100}]}]`,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}

	var out map[string]int64
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	rec := store.Exercises[out["id"]]
	if rec == nil {
		t.Fatalf("exercise %d not stored", out["id"])
	}
	if rec.FounderID != 7 || rec.ExerciseType != models.AMRAP || *rec.GoalValue != 1200 {
		t.Errorf("stored = %+v", rec)
	}
	if len(rec.Movements) != 2 || rec.Movements[0].Order != 1 || rec.Movements[1].Order != 3 {
		t.Fatalf("movements = %+v", rec.Movements)
	}
	if v := rec.Movements[1].Settings[1].Value; v != 100 {
		t.Errorf("poids = %d, want 100", v)
	}
}

// TestCreateExerciseErrors verifies bad arguments come back as tool errors.
func TestCreateExerciseErrors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing name", map[string]any{"exercise_type": "AMRAP"}},
		{"missing type", map[string]any{"name": "x"}},
		{"unknown type", map[string]any{"name": "x", "exercise_type": "YOGA"}},
		{"bad movements JSON", map[string]any{"name": "x", "exercise_type": "AMRAP", "movements": "{"}},
		{"unknown movement", map[string]any{"name": "x", "exercise_type": "AMRAP", "movements": `[{"name":"yoga"}]`}},
		{"undeclared setting", map[string]any{"name": "x", "exercise_type": "AMRAP", "movements": `[{"name":"burpees","settings":[{"name":"poids","value":1}]}]`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store := newTestHandlers(t)
			res, err := h.createExercise(context.Background(), callRequest(tt.args))
			if err != nil {
				t.Fatal(err)
			}
			if !res.IsError {
				t.Errorf("IsError = false, result %s", resultText(t, res))
			}
			if len(store.Exercises) != 0 {
				t.Error("exercise stored")
			}
		})
	}
}

// TestGetExercise verifies lookups are scoped to the context user.
func TestGetExercise(t *testing.T) {
	h, _ := newTestHandlers(t)
	svc := h.ds.(*program.Service)
	id, err := svc.RegisterExercise(context.Background(), models.Exercise{Name: "Fran", ExerciseType: models.ForTime}, 2, false)
	if err != nil {
		t.Fatal(err)
	}

	res, _ := h.getExercise(WithUser(context.Background(), 2, false), callRequest(map[string]any{"id": float64(id)}))
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	var ex program.ExerciseDetail
	if err := json.Unmarshal([]byte(resultText(t, res)), &ex); err != nil {
		t.Fatal(err)
	}
	if ex.Name != "Fran" {
		t.Errorf("name = %q", ex.Name)
	}

	res, _ = h.getExercise(WithUser(context.Background(), 3, false), callRequest(map[string]any{"id": float64(id)}))
	if !res.IsError {
		t.Error("another user's exercise was returned")
	}
	res, _ = h.getExercise(context.Background(), callRequest(nil))
	if !res.IsError {
		t.Error("missing id accepted")
	}
}

// TestListMovementsAndCatalog verifies the tool and the resource serve the
// same catalog.
func TestListMovementsAndCatalog(t *testing.T) {
	h, _ := newTestHandlers(t)
	ctx := context.Background()

	res, _ := h.listMovements(ctx, callRequest(nil))
	var entries []models.CatalogEntry
	if err := json.Unmarshal([]byte(resultText(t, res)), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("entries = %d, want 2", len(entries))
	}

	var req mcp.ReadResourceRequest
	req.Params.URI = resMovementCatalog.URI
	contents, err := h.movementCatalog(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents = %T", contents[0])
	}
	if text.URI != "fitlg://movement_catalog" || text.MIMEType != "application/json" {
		t.Errorf("resource = %s %s", text.URI, text.MIMEType)
	}
	var fromResource []models.CatalogEntry
	if err := json.Unmarshal([]byte(text.Text), &fromResource); err != nil {
		t.Fatal(err)
	}
	if len(fromResource) != len(entries) {
		t.Errorf("resource entries = %d, tool entries = %d", len(fromResource), len(entries))
	}
}

// TestListExercisesAndTrainings verifies both listings for the context user.
func TestListExercisesAndTrainings(t *testing.T) {
	h, _ := newTestHandlers(t)
	svc := h.ds.(*program.Service)
	ctx := WithUser(context.Background(), 4, false)
	id, _ := svc.RegisterExercise(ctx, models.Exercise{Name: "Annie", ExerciseType: models.ForTime}, 4, false)
	if _, err := svc.StartTraining(ctx, id, 4); err != nil {
		t.Fatal(err)
	}

	res, _ := h.listExercises(ctx, callRequest(nil))
	var exercises program.ExerciseList
	if err := json.Unmarshal([]byte(resultText(t, res)), &exercises); err != nil {
		t.Fatal(err)
	}
	if len(exercises.Exercises) != 1 || exercises.CustomCount != 1 {
		t.Errorf("exercises = %+v", exercises)
	}

	res, _ = h.listTrainings(ctx, callRequest(nil))
	var trainings program.TrainingList
	if err := json.Unmarshal([]byte(resultText(t, res)), &trainings); err != nil {
		t.Fatal(err)
	}
	if len(trainings.Trainings) != 1 || trainings.Trainings[0].Exercise.Name != "Annie" {
		t.Errorf("trainings = %+v", trainings)
	}
}

func TestNewRegistersCapabilities(t *testing.T) {
	h, _ := newTestHandlers(t)
	if s := New(h.ds, "test", h.log); s == nil {
		t.Fatal("New returned nil")
	}
}

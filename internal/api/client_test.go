package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/fitlg/internal/models"
	"github.com/claude/fitlg/internal/program"
)

// newTestServer creates an httptest server that routes requests to handler
// functions keyed by path.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestMovements verifies the catalog is fetched with the API key and decoded.
func TestMovements(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/app/get-all-movements/": func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("method = %s, want GET", r.Method)
			}
			if got := r.Header.Get(APIKeyHeader); got != "secret" {
				t.Errorf("api key = %q, want secret", got)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `[{"id":3,"name":"deadlift","equipment":"barre","settings":["repetitions","poids"]}]`)
		},
	})
	defer ts.Close()

	entries, err := NewClient(ts.URL+"/", "secret").Movements(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.ID != 3 || e.Name != "deadlift" || len(e.Settings) != 2 || e.Settings[1] != "poids" {
		t.Errorf("entry = %+v", e)
	}
}

// TestAddExercise verifies the posted camelCase body and the decoded id.
func TestAddExercise(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/app/add-exercise/": func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			for _, key := range []string{"name", "exerciseType", "description", "founder", "goalType", "goalValue", "movements"} {
				if _, ok := body[key]; !ok {
					t.Errorf("body missing %q", key)
				}
			}
			if body["goalValue"] != 5.5 {
				t.Errorf("goalValue = %v", body["goalValue"])
			}
			writeTestJSON(t, w, 17)
		},
	})
	defer ts.Close()

	id, err := NewClient(ts.URL, "").AddExercise(context.Background(), models.Exercise{
		Name:         "5k",
		ExerciseType: models.Running,
		GoalType:     "Distance",
		GoalValue:    5.5,
		Movements:    []models.Movement{},
	})
	if err != nil {
		t.Fatal(err)
	}
	if id != 17 {
		t.Errorf("id = %d, want 17", id)
	}
}

// TestStatusError verifies non-2xx answers surface status and body.
func TestStatusError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/app/get-all-movements/": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
		},
	})
	defer ts.Close()

	_, err := NewClient(ts.URL, "").Movements(context.Background())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StatusError", err)
	}
	if se.Status != http.StatusServiceUnavailable || se.Body != "maintenance" {
		t.Errorf("StatusError = %+v", se)
	}
}

// TestAddExerciseRejected verifies a 400 answer becomes a validation error
// carrying the server's message.
func TestAddExerciseRejected(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/app/add-exercise/": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"invalid goalValue: must not exceed 2147483647"}`)
		},
	})
	defer ts.Close()

	_, err := NewClient(ts.URL, "").AddExercise(context.Background(), models.Exercise{Name: "x", ExerciseType: models.ForTime, GoalValue: 3e9})
	var verr *program.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Message != "invalid goalValue: must not exceed 2147483647" {
		t.Errorf("message = %q", verr.Message)
	}
}

func TestExercise(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/app/exercise/4/": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("format"); got != "json" {
				t.Errorf("format = %q, want json", got)
			}
			writeTestJSON(t, w, map[string]any{"id": 4, "name": "Fran", "goal_type": "round", "pb": 250})
		},
		"/app/exercise/5/": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			writeTestJSON(t, w, map[string]string{"error": "not found"})
		},
	})
	defer ts.Close()
	c := NewClient(ts.URL, "")

	ex, err := c.Exercise(context.Background(), 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	if ex.Name != "Fran" || ex.PB != 250 {
		t.Errorf("exercise = %+v", ex)
	}

	if _, err := c.Exercise(context.Background(), 5, 0); !errors.Is(err, program.ErrNotFound) {
		t.Errorf("missing exercise err = %v, want ErrNotFound", err)
	}
}

func TestExercises(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/app/exercices/": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, program.ExerciseList{
				Exercises:   []program.ExerciseDetail{{PB: 1}, {}},
				CustomCount: 2,
				PBCount:     1,
			})
		},
	})
	defer ts.Close()

	list, err := NewClient(ts.URL, "").Exercises(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Exercises) != 2 || list.CustomCount != 2 || list.PBCount != 1 {
		t.Errorf("list = %+v", list)
	}
}

// TestTrainings verifies the trainings list is read from the JSON variant
// of the trainings page.
func TestTrainings(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/app/trainings/": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("format"); got != "json" {
				t.Errorf("format = %q, want json", got)
			}
			writeTestJSON(t, w, program.TrainingList{
				Trainings: []program.TrainingDetail{{TrainingRow: models.TrainingRow{ID: 9, ExerciseID: 2, Done: true}}},
				DoneCount: 1,
			})
		},
	})
	defer ts.Close()

	list, err := NewClient(ts.URL, "").Trainings(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Trainings) != 1 || list.Trainings[0].ID != 9 || list.DoneCount != 1 {
		t.Errorf("list = %+v", list)
	}
}

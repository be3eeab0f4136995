package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/claude/fitlg/internal/models"
	"github.com/claude/fitlg/internal/program"
)

const maxExerciseBody = 1 << 20

func (s *Server) handleMovements(w http.ResponseWriter, r *http.Request) {
	entries, err := s.programs.Catalog(r.Context())
	if err != nil {
		s.log.Error("listing movements", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleAddExercise registers the posted exercise for the caller and answers
// its id. The founder field of the body is ignored.
func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxExerciseBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading body: " + err.Error()})
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty body"})
		return
	}

	var ex models.Exercise
	if err := json.Unmarshal(body, &ex); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	id, err := s.programs.RegisterExercise(r.Context(), ex, user.ID, user.IsAdmin)
	if err != nil {
		s.writeError(w, "registering exercise", err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// writeError maps service errors to JSON statuses.
func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	var verr *program.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Error()})
	case errors.Is(err, program.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		s.log.Error(op, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// errorStatus is the page status for a service error.
func errorStatus(err error) int {
	var verr *program.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, program.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/claude/fitlg/internal/dialog"
	"github.com/claude/fitlg/internal/models"
)

//go:embed templates/*.tmpl
var pageFS embed.FS

var pageTemplates = template.Must(template.Must(dialog.Templates()).Funcs(template.FuncMap{
	"value": formatValue,
	"ptr":   func(v int) *int { return &v },
}).ParseFS(pageFS, "templates/*.tmpl"))

// formatValue renders a goal or performance of the given kind.
func formatValue(kind string, v *int) string {
	if v == nil {
		return "-"
	}
	switch kind {
	case models.KindDuration:
		return models.SecondsToClock(*v)
	case models.KindDistance:
		return strconv.Itoa(*v) + " m"
	default:
		return strconv.Itoa(*v)
	}
}

// pageData is what every page template receives.
type pageData struct {
	Title string
	User  UserInfo
	CSRF  string
	Error string
	Data  any
}

// renderPage executes the page template name into a buffer first so a
// template failure still yields a clean 500.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, p pageData) {
	p.User, _ = userInfoFromContext(r)
	p.CSRF = csrfToken(r)

	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, p); err != nil {
		s.log.Error("rendering page", "page", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (s *Server) pageError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error(op, "error", err)
	}
	s.renderPage(w, r, status, "error", pageData{Title: "Erreur", Error: http.StatusText(status)})
}

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	list, err := s.programs.Exercises(r.Context(), user.ID)
	if wantsJSON(r) {
		if err != nil {
			s.writeError(w, "listing exercises", err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}
	if err != nil {
		s.pageError(w, r, "listing exercises", err)
		return
	}
	s.renderPage(w, r, http.StatusOK, "exercises", pageData{Title: "Exercices", Data: list})
}

func (s *Server) handleExercise(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	ex, err := s.programs.Exercise(r.Context(), id, user.ID)
	if wantsJSON(r) {
		if err != nil {
			s.writeError(w, "getting exercise", err)
			return
		}
		writeJSON(w, http.StatusOK, ex)
		return
	}
	if err != nil {
		s.pageError(w, r, "getting exercise", err)
		return
	}
	s.renderPage(w, r, http.StatusOK, "exercise", pageData{Title: ex.Name, Data: ex})
}

// handleStartTraining creates a training on the exercise and goes to the
// trainings page.
func (s *Server) handleStartTraining(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if _, err := s.programs.StartTraining(r.Context(), id, user.ID); err != nil {
		s.pageError(w, r, "starting training", err)
		return
	}
	http.Redirect(w, r, "/app/trainings/", http.StatusSeeOther)
}

// handleDeleteExercise deletes the exercise and goes back where the user
// came from, unless that is the deleted exercise's own page.
func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := s.programs.DeleteExercise(r.Context(), id, user.ID); err != nil {
		s.pageError(w, r, "deleting exercise", err)
		return
	}
	http.Redirect(w, r, deleteRedirect(r.Referer(), id), http.StatusSeeOther)
}

func deleteRedirect(referer string, id int64) string {
	const fallback = "/app/exercices/"
	if referer == "" {
		return fallback
	}
	u, err := url.Parse(referer)
	if err != nil || strings.HasPrefix(u.Path, "/app/exercise/"+strconv.FormatInt(id, 10)+"/") {
		return fallback
	}
	return referer
}

func (s *Server) handleTrainings(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	list, err := s.programs.Trainings(r.Context(), user.ID)
	if wantsJSON(r) {
		if err != nil {
			s.writeError(w, "listing trainings", err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}
	if err != nil {
		s.pageError(w, r, "listing trainings", err)
		return
	}
	s.renderPage(w, r, http.StatusOK, "trainings", pageData{Title: "Entrainements", Data: list})
}

// handleRecordPerformance stores training_pk's performance_value. A bad
// value re-renders the trainings page with the error.
func (s *Server) handleRecordPerformance(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	trainingID, err := strconv.ParseInt(r.PostFormValue("training_pk"), 10, 64)
	if err != nil {
		http.Error(w, "invalid training_pk", http.StatusBadRequest)
		return
	}

	err = s.programs.RecordPerformance(r.Context(), trainingID, user.ID, r.PostFormValue("performance_value"))
	if err == nil {
		http.Redirect(w, r, "/app/trainings/", http.StatusSeeOther)
		return
	}
	if errorStatus(err) != http.StatusBadRequest {
		s.pageError(w, r, "recording performance", err)
		return
	}

	list, lerr := s.programs.Trainings(r.Context(), user.ID)
	if lerr != nil {
		s.pageError(w, r, "listing trainings", lerr)
		return
	}
	s.renderPage(w, r, http.StatusBadRequest, "trainings", pageData{Title: "Entrainements", Error: err.Error(), Data: list})
}

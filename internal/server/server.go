package server

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/fitlg/internal/config"
	"github.com/claude/fitlg/internal/program"
	"github.com/claude/fitlg/internal/session"
	"github.com/claude/fitlg/internal/wizard"
)

// UserStore resolves a login to a user id, creating the user on first sight.
type UserStore interface {
	GetOrCreateUser(ctx context.Context, login, displayName string, isAdmin bool) (int, error)
}

// BackendFunc returns the wizard backend acting for a user.
type BackendFunc func(user UserInfo) wizard.Backend

// LocalBackend serves the wizard from the in-process program service.
func LocalBackend(svc *program.Service) BackendFunc {
	return func(user UserInfo) wizard.Backend {
		return svc.ForUser(user.ID, user.IsAdmin)
	}
}

// StaticBackend serves every user's wizard from the same backend, such as a
// remote API client.
func StaticBackend(b wizard.Backend) BackendFunc {
	return func(UserInfo) wizard.Backend { return b }
}

// Deps are the collaborators of a Server.
type Deps struct {
	Programs *program.Service
	Users    UserStore
	Sessions session.Store
	// Backend defaults to LocalBackend(Programs).
	Backend BackendFunc
	Auth    config.AuthConfig
	Log     *slog.Logger
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	programs  *program.Service
	users     UserStore
	sessions  session.Store
	backend   BackendFunc
	auth      config.AuthConfig
	tailscale WhoIsClient
	pages     *template.Template
	wizards   keyedMutex
	log       *slog.Logger
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(deps Deps) *Server {
	s := &Server{
		programs: deps.Programs,
		users:    deps.Users,
		sessions: deps.Sessions,
		backend:  deps.Backend,
		auth:     deps.Auth,
		pages:    pageTemplates,
		log:      deps.Log,
		router:   chi.NewRouter(),
	}
	if s.backend == nil {
		s.backend = LocalBackend(deps.Programs)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale enables identity lookups through the tailnet. Without it
// every request runs as the configured dev user.
func (s *Server) SetTailscale(c WhoIsClient) {
	s.tailscale = c
}

// MountMCP serves h under /mcp with the caller's identity in its context.
func (s *Server) MountMCP(h http.Handler) {
	s.router.With(APIKeyAuth(s.auth.APIKey), s.identity).Handle("/mcp", h)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/app/trainings/", http.StatusFound)
	})

	// JSON endpoints used by the wizard and remote clients.
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.auth.APIKey))
		r.Use(s.identity)
		r.Get("/app/get-all-movements/", s.handleMovements)
		r.Post("/app/add-exercise/", s.handleAddExercise)
		r.Get("/app/me/", s.handleMe)
	})

	// Pages. ?format=json variants are API endpoints too.
	s.router.Group(func(r chi.Router) {
		r.Use(whenJSON(APIKeyAuth(s.auth.APIKey)))
		r.Use(s.identity)
		r.Use(s.csrf)
		r.Get("/app/exercices/", s.handleExercises)
		r.Get("/app/exercise/{id}/", s.handleExercise)
		r.Post("/app/exercise/{id}/", s.handleStartTraining)
		r.Post("/app/delete-exercise/{id}/", s.handleDeleteExercise)
		r.Get("/app/trainings/", s.handleTrainings)
		r.Post("/app/trainings/", s.handleRecordPerformance)

		r.Get("/app/exercices/new/", s.handleWizardNew)
		r.Post(wizard.Step1Path, s.handleWizardStep1)
		r.Post(wizard.Step2Path, s.handleWizardStep2)
	})
}

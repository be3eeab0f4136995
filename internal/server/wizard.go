package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/claude/fitlg/internal/dialog"
	"github.com/claude/fitlg/internal/program"
	"github.com/claude/fitlg/internal/session"
	"github.com/claude/fitlg/internal/wizard"
)

const (
	wizardCookie = "fitlg_wizard"
	wizardPath   = "/app/exercices/new/"
)

type wizardView struct {
	Step1 *dialog.Dialog
	Step2 *dialog.Dialog
}

// handleWizardNew starts a fresh wizard session with step 1 shown. The
// session of a previous run is dropped.
func (s *Server) handleWizardNew(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	if old := wizardID(r); old != "" {
		unlock := s.wizards.Lock(old)
		if err := s.sessions.Delete(r.Context(), old); err != nil {
			s.log.Warn("deleting previous wizard session", "error", err)
		}
		unlock()
	}
	id := uuid.NewString()
	c := wizard.New(s.backend(user), csrfToken(r), s.log)
	if err := s.saveWizard(r.Context(), id, c); err != nil {
		s.pageError(w, r, "saving wizard", err)
		return
	}
	setWizardCookie(w, id)
	s.renderWizard(w, r, http.StatusOK, c)
}

// handleWizardStep1 submits step 1. An expired or missing session starts
// over from a fresh wizard.
func (s *Server) handleWizardStep1(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	id := wizardID(r)
	if id != "" {
		defer s.wizards.Lock(id)()
	}
	c, err := s.loadWizard(r, user, id)
	if errors.Is(err, session.ErrNotFound) {
		id = uuid.NewString()
		c = wizard.New(s.backend(user), csrfToken(r), s.log)
		setWizardCookie(w, id)
	} else if err != nil {
		s.pageError(w, r, "loading wizard", err)
		return
	}

	err = c.SubmitStep1(r.Context(), r.PostForm)
	s.finishWizard(w, r, id, c, err)
}

// handleWizardStep2 dispatches a step 2 post on its action field.
func (s *Server) handleWizardStep2(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	id := wizardID(r)
	if id != "" {
		defer s.wizards.Lock(id)()
	}
	c, err := s.loadWizard(r, user, id)
	if errors.Is(err, session.ErrNotFound) {
		http.Redirect(w, r, wizardPath, http.StatusSeeOther)
		return
	}
	if err != nil {
		s.pageError(w, r, "loading wizard", err)
		return
	}

	switch action := r.PostFormValue("action"); action {
	case "", wizard.ActionSelect:
		err = c.Update(r.PostForm)
	case wizard.ActionAddMovement:
		err = c.AddMovement(r.PostForm)
	case wizard.ActionRetryCatalog:
		err = c.RetryCatalog(r.Context(), r.PostForm)
	case wizard.ActionSubmit:
		var next string
		next, err = c.SubmitStep2(r.Context(), r.PostForm)
		if err == nil {
			if derr := s.sessions.Delete(r.Context(), id); derr != nil {
				s.log.Warn("deleting wizard session", "error", derr)
			}
			http.SetCookie(w, &http.Cookie{Name: wizardCookie, Path: wizardPath, MaxAge: -1})
			http.Redirect(w, r, next, http.StatusSeeOther)
			return
		}
	default:
		http.Error(w, fmt.Sprintf("unknown action %q", action), http.StatusBadRequest)
		return
	}
	s.finishWizard(w, r, id, c, err)
}

// finishWizard saves the wizard and renders it with the status of err.
func (s *Server) finishWizard(w http.ResponseWriter, r *http.Request, id string, c *wizard.Controller, err error) {
	if serr := s.saveWizard(r.Context(), id, c); serr != nil {
		s.pageError(w, r, "saving wizard", serr)
		return
	}
	status := http.StatusOK
	var verr *program.ValidationError
	switch {
	case err == nil:
	case errors.Is(err, wizard.ErrInvalid), errors.Is(err, dialog.ErrNoMovementBlock), errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
	default:
		// Backend failures are shown on the dialog with a retry control.
		s.log.Warn("wizard backend call failed", "error", err)
		status = http.StatusBadGateway
	}
	s.renderWizard(w, r, status, c)
}

func (s *Server) renderWizard(w http.ResponseWriter, r *http.Request, status int, c *wizard.Controller) {
	s.renderPage(w, r, status, "wizard", pageData{
		Title: "Nouvel exercice",
		Data:  wizardView{Step1: c.Step1(), Step2: c.Step2()},
	})
}

func wizardID(r *http.Request) string {
	c, err := r.Cookie(wizardCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// loadWizard restores the wizard saved under id. The forms take the
// current anti-forgery token.
func (s *Server) loadWizard(r *http.Request, user UserInfo, id string) (*wizard.Controller, error) {
	if id == "" {
		return nil, session.ErrNotFound
	}
	data, err := s.sessions.Load(r.Context(), id)
	if err != nil {
		return nil, err
	}
	var snap wizard.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding wizard snapshot: %w", err)
	}
	c, err := wizard.Restore(snap, s.backend(user), s.log)
	if err != nil {
		return nil, fmt.Errorf("restoring wizard: %w", err)
	}
	c.SetCSRF(csrfToken(r))
	return c, nil
}

func (s *Server) saveWizard(ctx context.Context, id string, c *wizard.Controller) error {
	data, err := json.Marshal(c.Snapshot())
	if err != nil {
		return fmt.Errorf("encoding wizard snapshot: %w", err)
	}
	return s.sessions.Save(ctx, id, data)
}

func setWizardCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     wizardCookie,
		Value:    id,
		Path:     wizardPath,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/claude/fitlg/internal/models"
	"github.com/claude/fitlg/internal/session"
	"github.com/claude/fitlg/internal/wizard"
)

// TestWizardFlow walks the two steps over HTTP: step 1, a movement
// selection, then the submit and its redirect to the new exercise.
func TestWizardFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	b := newBrowser(t, env.srv)

	rec := b.get("/app/exercices/new/")
	if rec.Code != http.StatusOK {
		t.Fatalf("new = %d, want 200", rec.Code)
	}
	doc := parseHTML(t, rec)
	if !doc.Find("#exerciseModalStep1").HasClass("show") {
		t.Error("step 1 not shown")
	}
	if b.cookies[wizardCookie] == nil {
		t.Fatal("no wizard session cookie")
	}

	rec = b.post(wizard.Step1Path, url.Values{"name": {"Cindy"}, "exercise_type": {"AMRAP"}, "description": {"20 min"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("step1 = %d, want 200", rec.Code)
	}
	doc = parseHTML(t, rec)
	if doc.Find("#exerciseModalStep1").HasClass("show") {
		t.Error("step 1 still shown")
	}
	if !doc.Find("#exerciseModalStep2").HasClass("show") {
		t.Error("step 2 not shown")
	}
	if got := doc.Find("#exerciseModalStep2Label").Text(); got != "Cindy" {
		t.Errorf("step 2 title = %q", got)
	}
	if n := doc.Find("#select1 option").Length(); n != 3 {
		t.Errorf("movement options = %d, want 3", n)
	}

	rec = b.post(wizard.Step2Path, url.Values{"action": {"select"}, wizard.GoalInputID: {"1200"}, "select1": {"deadlift"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("select = %d, want 200", rec.Code)
	}
	doc = parseHTML(t, rec)
	if n := doc.Find("#settings1 input[required]").Length(); n != 2 {
		t.Errorf("settings inputs = %d, want 2", n)
	}
	if v, _ := doc.Find("#" + wizard.GoalInputID).Attr("value"); v != "1200" {
		t.Errorf("goal kept = %q", v)
	}

	rec = b.post(wizard.Step2Path, url.Values{
		"action":           {"submit"},
		wizard.GoalInputID: {"1200"},
		"select1":          {"deadlift"},
		"repetitions":      {"5"},
		"poids":            {"100"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("submit = %d, want 303 (body %s)", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/app/exercise/1/" {
		t.Errorf("Location = %q", loc)
	}
	if b.cookies[wizardCookie] != nil {
		t.Error("wizard cookie not cleared")
	}

	ex := env.store.Exercises[1]
	if ex == nil {
		t.Fatal("exercise not stored")
	}
	if ex.Name != "Cindy" || ex.GoalType != models.KindDuration || *ex.GoalValue != 1200 {
		t.Errorf("exercise = %+v", ex)
	}
	if len(ex.Movements) != 1 || len(ex.Movements[0].Settings) != 2 || ex.Movements[0].Settings[1].Value != 100 {
		t.Errorf("movements = %+v", ex.Movements)
	}
}

// TestWizardAddMovement verifies "+ Mouvement" appends a sub-form that
// survives the session round trip.
func TestWizardAddMovement(t *testing.T) {
	env := newTestEnv(t, nil)
	b := newBrowser(t, env.srv)
	b.get("/app/exercices/new/")
	b.post(wizard.Step1Path, url.Values{"name": {"Chipper"}, "exercise_type": {"FORTIME"}})

	rec := b.post(wizard.Step2Path, url.Values{"action": {"add-movement"}, "select1": {"burpees"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("add = %d, want 200", rec.Code)
	}
	doc := parseHTML(t, rec)
	if doc.Find("#select2").Length() != 1 {
		t.Error("second sub-form missing")
	}
	if v, _ := doc.Find("#select1 option[selected]").Attr("value"); v != "burpees" {
		t.Errorf("first selection = %q, want burpees", v)
	}
}

// TestWizardInvalidSubmit verifies a failed validation keeps step 2 shown
// with its error and posts nothing.
func TestWizardInvalidSubmit(t *testing.T) {
	env := newTestEnv(t, nil)
	b := newBrowser(t, env.srv)
	b.get("/app/exercices/new/")
	b.post(wizard.Step1Path, url.Values{"name": {"Run"}, "exercise_type": {"RUNNING"}})

	rec := b.post(wizard.Step2Path, url.Values{"action": {"submit"}, wizard.GoalInputID: {"5.25"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	doc := parseHTML(t, rec)
	if !doc.Find("#exerciseModalStep2").HasClass("show") {
		t.Error("step 2 hidden after a failed submit")
	}
	if doc.Find("#submitError").Length() != 1 {
		t.Error("missing submit error")
	}
	if len(env.store.Exercises) != 0 {
		t.Error("exercise stored")
	}

	rec = b.post(wizard.Step2Path, url.Values{"action": {"submit"}, wizard.GoalInputID: {"5.2"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("retry = %d, want 303", rec.Code)
	}
	if got := *env.store.Exercises[1].GoalValue; got != 5200 {
		t.Errorf("goal = %d, want 5200 m", got)
	}
}

// TestWizardStep1RequiresName verifies a blank name keeps step 1 shown.
func TestWizardStep1RequiresName(t *testing.T) {
	env := newTestEnv(t, nil)
	b := newBrowser(t, env.srv)
	b.get("/app/exercices/new/")

	rec := b.post(wizard.Step1Path, url.Values{"name": {"  "}, "exercise_type": {"AMRAP"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !parseHTML(t, rec).Find("#exerciseModalStep1").HasClass("show") {
		t.Error("step 1 hidden")
	}
}

// TestWizardStep2WithoutSession verifies an expired session restarts the wizard.
func TestWizardStep2WithoutSession(t *testing.T) {
	env := newTestEnv(t, nil)
	b := newBrowser(t, env.srv)

	rec := b.post(wizard.Step2Path, url.Values{"action": {"submit"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/app/exercices/new/" {
		t.Errorf("Location = %q", loc)
	}
}

// TestWizardUnknownAction verifies unknown actions are refused.
func TestWizardUnknownAction(t *testing.T) {
	env := newTestEnv(t, nil)
	b := newBrowser(t, env.srv)
	b.get("/app/exercices/new/")
	b.post(wizard.Step1Path, url.Values{"name": {"x"}, "exercise_type": {"AMRAP"}})

	if rec := b.post(wizard.Step2Path, url.Values{"action": {"explode"}}); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// flakyBackend fails its catalog fetches until healed.
type flakyBackend struct {
	healed bool
}

func (f *flakyBackend) Movements(context.Context) ([]models.CatalogEntry, error) {
	if !f.healed {
		return nil, errors.New("connection refused")
	}
	return []models.CatalogEntry{{ID: 1, Name: "burpees", Settings: []string{"repetitions"}}}, nil
}

func (f *flakyBackend) AddExercise(context.Context, models.Exercise) (int64, error) {
	return 0, errors.New("connection refused")
}

// TestWizardRemoteBackendFailures verifies backend failures are shown on
// step 2 with a retry control, and that retrying works once the backend
// answers.
func TestWizardRemoteBackendFailures(t *testing.T) {
	fb := &flakyBackend{}
	env := newTestEnv(t, func(d *Deps) { d.Backend = StaticBackend(fb) })
	b := newBrowser(t, env.srv)
	b.get("/app/exercices/new/")

	rec := b.post(wizard.Step1Path, url.Values{"name": {"Cindy"}, "exercise_type": {"AMRAP"}})
	doc := parseHTML(t, rec)
	if doc.Find("#catalogError").Length() != 1 {
		t.Error("missing catalog error")
	}
	if doc.Find(`button[value="retry-catalog"]`).Length() != 1 {
		t.Fatal("missing retry control")
	}

	fb.healed = true
	rec = b.post(wizard.Step2Path, url.Values{"action": {"retry-catalog"}, wizard.GoalInputID: {"600"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("retry = %d, want 200", rec.Code)
	}
	doc = parseHTML(t, rec)
	if doc.Find("#select1").Length() != 1 {
		t.Error("movement block missing after retry")
	}
	if v, _ := doc.Find("#" + wizard.GoalInputID).Attr("value"); v != "600" {
		t.Errorf("goal after retry = %q", v)
	}

	b.post(wizard.Step2Path, url.Values{"action": {"select"}, wizard.GoalInputID: {"600"}, "select1": {"burpees"}})
	rec = b.post(wizard.Step2Path, url.Values{"action": {"submit"}, wizard.GoalInputID: {"600"}, "select1": {"burpees"}, "repetitions": {"10"}})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("submit = %d, want 502", rec.Code)
	}
	doc = parseHTML(t, rec)
	if !doc.Find("#exerciseModalStep2").HasClass("show") || doc.Find("#submitError").Length() != 1 {
		t.Error("failed submit should keep step 2 shown with its error")
	}
}

// TestWizardNewDropsPreviousSession verifies reopening the wizard deletes
// the session of the previous run.
func TestWizardNewDropsPreviousSession(t *testing.T) {
	env := newTestEnv(t, nil)
	b := newBrowser(t, env.srv)
	ctx := context.Background()

	b.get("/app/exercices/new/")
	old := b.cookies[wizardCookie].Value
	b.get("/app/exercices/new/")
	cur := b.cookies[wizardCookie].Value

	if cur == old {
		t.Fatal("wizard session id reused")
	}
	if _, err := env.sessions.Load(ctx, old); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("previous session Load err = %v, want ErrNotFound", err)
	}
	if _, err := env.sessions.Load(ctx, cur); err != nil {
		t.Errorf("current session Load: %v", err)
	}
}

// TestWizardRetryCatalogOnRun verifies a run refuses a catalog retry and
// still posts no movements.
func TestWizardRetryCatalogOnRun(t *testing.T) {
	env := newTestEnv(t, nil)
	b := newBrowser(t, env.srv)
	b.get("/app/exercices/new/")
	b.post(wizard.Step1Path, url.Values{"name": {"10k"}, "exercise_type": {"RUNNING"}})

	rec := b.post(wizard.Step2Path, url.Values{"action": {"retry-catalog"}, wizard.GoalInputID: {"10"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("retry = %d, want 422", rec.Code)
	}
	doc := parseHTML(t, rec)
	if doc.Find("#select1").Length() != 0 || doc.Find(`button[value="add-movement"]`).Length() != 0 {
		t.Error("movement block rendered for a run")
	}

	rec = b.post(wizard.Step2Path, url.Values{"action": {"submit"}, wizard.GoalInputID: {"10"}, "select1": {"burpees"}, "repetitions": {"3"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("submit = %d, want 303", rec.Code)
	}
	for _, ex := range env.store.Exercises {
		if len(ex.Movements) != 0 {
			t.Errorf("run stored with movements %+v", ex.Movements)
		}
	}
}

// TestWizardBackendValidationError verifies an exercise the service refuses
// answers 422 with its reason instead of a retryable 502.
func TestWizardBackendValidationError(t *testing.T) {
	env := newTestEnv(t, nil)
	b := newBrowser(t, env.srv)
	b.get("/app/exercices/new/")
	b.post(wizard.Step1Path, url.Values{"name": {"Murph"}, "exercise_type": {"FORTIME"}})

	rec := b.post(wizard.Step2Path, url.Values{"action": {"submit"}, wizard.GoalInputID: {"3000000000"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("submit = %d, want 422", rec.Code)
	}
	msg := parseHTML(t, rec).Find("#submitError").Text()
	if !strings.Contains(msg, "must not exceed") {
		t.Errorf("submit error = %q", msg)
	}
	if len(env.store.Exercises) != 0 {
		t.Error("exercise stored")
	}
}

// Package wizard drives the two-step exercise creation dialog. Step 1 reads
// the name, type and description; step 2 asks for the goal and, unless the
// exercise is a run, the movements with their settings.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/claude/fitlg/internal/dialog"
	"github.com/claude/fitlg/internal/models"
	"github.com/claude/fitlg/internal/program"
)

const (
	Step1ID     = "exerciseModalStep1"
	Step2ID     = "exerciseModalStep2"
	GoalInputID = "modalStep2Goal"

	Step1Path = "/app/exercices/new/step1"
	Step2Path = "/app/exercices/new/step2"
)

// Step 2 form actions, posted as "action".
const (
	ActionSelect       = "select"
	ActionAddMovement  = "add-movement"
	ActionRetryCatalog = "retry-catalog"
	ActionSubmit       = "submit"
)

const (
	step1AlertID   = "step1Error"
	catalogAlertID = "catalogError"
	submitAlertID  = "submitError"
)

// ErrInvalid wraps every input validation failure.
var ErrInvalid = errors.New("invalid input")

// State is the wizard's position in the flow.
type State int

const (
	Step1 State = iota
	Step2
)

func (s State) String() string {
	if s == Step2 {
		return "step2"
	}
	return "step1"
}

// Controller owns one run of the wizard: both dialogs and the exercise
// being composed. It is not safe for concurrent use; callers serialize
// requests per session.
type Controller struct {
	backend Backend
	log     *slog.Logger

	state    State
	step1    *dialog.Dialog
	step2    *dialog.Builder
	exercise models.Exercise
	catalog  []models.CatalogEntry
	// catalogErr and submitErr are the user-visible failures of the two
	// backend calls, empty when the last call succeeded.
	catalogErr string
	submitErr  string
}

// New returns a wizard in Step1 with the step 1 dialog shown.
func New(backend Backend, csrfToken string, log *slog.Logger) *Controller {
	c := &Controller{
		backend: backend,
		log:     log,
		step1:   newStep1Dialog(csrfToken),
		step2:   dialog.NewBuilder(dialog.New(Step2ID)),
	}
	c.step2.Dialog().Form.Action = Step2Path
	c.step2.SetCSRF(csrfToken)
	c.step1.Show()
	return c
}

func newStep1Dialog(csrfToken string) *dialog.Dialog {
	d := dialog.New(Step1ID)
	d.SetTitle("Nouvel exercice")
	d.Form.Action = Step1Path

	opts := make([]dialog.Option, 0, len(models.ExerciseTypes))
	for _, t := range models.ExerciseTypes {
		opts = append(opts, dialog.Option{Value: string(t), Text: t.Label()})
	}

	d.Form.Append(&dialog.Hidden{Name: dialog.CSRFField, Value: csrfToken})
	d.Form.Append(&dialog.Input{ID: "id_name", Name: "name", Label: "Nom", Type: "text", Required: true})
	d.Form.Append(&dialog.Select{
		ID:       "id_exercise_type",
		Name:     "exercise_type",
		Label:    "Type",
		Required: true,
		Options:  opts,
		Value:    string(models.ExerciseTypes[0]),
	})
	d.Form.Append(&dialog.TextArea{ID: "id_description", Name: "description", Label: "Description", Rows: 3})
	d.Form.Append(&dialog.Submit{Label: "Suivant"})
	return d
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Step1() *dialog.Dialog { return c.step1 }

func (c *Controller) Step2() *dialog.Dialog { return c.step2.Dialog() }

// Exercise returns the exercise as composed so far. After a successful
// submit it carries the id assigned by the backend.
func (c *Controller) Exercise() models.Exercise { return c.exercise }

// SetCSRF replaces the anti-forgery token of both forms.
func (c *Controller) SetCSRF(token string) {
	c.step1.Form.SetCSRF(token)
	c.step2.SetCSRF(token)
}

// SubmitStep1 reads step 1, rebuilds step 2 from scratch and moves to Step2.
// It may be called again from Step2 when the user goes back.
func (c *Controller) SubmitStep1(ctx context.Context, values url.Values) error {
	c.step1.Bind(values)

	name := strings.TrimSpace(c.step1.TextInput("id_name"))
	if name == "" {
		c.step1.Form.SetAlert(step1AlertID, "Le nom est obligatoire.")
		return fmt.Errorf("%w: empty exercise name", ErrInvalid)
	}
	exType := models.ExerciseType(c.step1.SelectInput("id_exercise_type"))
	if !exType.Valid() {
		c.step1.Form.SetAlert(step1AlertID, "Type d'exercice inconnu.")
		return fmt.Errorf("%w: exercise type %q", ErrInvalid, exType)
	}
	c.step1.Form.SetAlert(step1AlertID, "")

	c.exercise = models.Exercise{
		Name:         name,
		ExerciseType: exType,
		Description:  c.step1.TextInput("id_description"),
		GoalType:     models.GoalTypeLabel(exType),
	}
	c.catalog = nil
	c.catalogErr = ""
	c.submitErr = ""

	c.buildStep2()
	if exType != models.Running {
		// A catalog failure leaves step 2 shown with its retry control.
		_ = c.fetchCatalog(ctx)
	}

	c.step1.Hide()
	c.step2.Dialog().Show()
	c.state = Step2
	return nil
}

// buildStep2 lays out step 2 up to the goal input. For a run it completes
// the form; otherwise the movement part is added once the catalog is known.
func (c *Controller) buildStep2() {
	b := c.step2
	b.Clean()
	b.Dialog().SetTitle(c.exercise.Name)
	b.AddSection("Type: " + string(c.exercise.ExerciseType))

	if c.exercise.ExerciseType == models.Running {
		b.AddNumberInput(GoalInputID, c.exercise.GoalType, true)
		b.AddSeparator()
		b.AddSubmit("Créer")
		return
	}
	b.AddNumberInput(GoalInputID, c.exercise.GoalType, false)
}

func (c *Controller) fetchCatalog(ctx context.Context) error {
	catalog, err := c.backend.Movements(ctx)
	if err != nil {
		c.log.Error("fetching movement catalog", "error", err)
		c.showCatalogError("Impossible de charger les mouvements.")
		return fmt.Errorf("fetching movement catalog: %w", err)
	}
	c.catalog = catalog
	c.catalogErr = ""
	c.addMovementPart()
	return nil
}

func (c *Controller) showCatalogError(msg string) {
	c.catalogErr = msg
	c.step2.Dialog().Form.SetAlert(catalogAlertID, msg)
	c.step2.AddAction(ActionRetryCatalog, "Réessayer")
}

func (c *Controller) addMovementPart() {
	form := c.step2.Dialog().Form
	form.SetAlert(catalogAlertID, "")
	form.RemoveActions()
	c.step2.AddMovementBlock(c.catalog)
	c.step2.AddSeparator()
	c.step2.AddSubmit("CREER")
}

// RetryCatalog fetches the catalog again after a failure, keeping the goal
// value already entered. Runs have no movements and never retry.
func (c *Controller) RetryCatalog(ctx context.Context, values url.Values) error {
	if c.state != Step2 {
		return fmt.Errorf("%w: retry outside step 2", ErrInvalid)
	}
	if c.exercise.ExerciseType == models.Running || c.catalogErr == "" {
		return fmt.Errorf("%w: no catalog failure to retry", ErrInvalid)
	}
	c.step2.BindStep2(values)
	goal := c.step2.Dialog().TextInput(GoalInputID)
	c.buildStep2()
	c.step2.Dialog().SetValue(GoalInputID, goal)
	return c.fetchCatalog(ctx)
}

// Update copies a posted step 2 form into the model, applying any movement
// selection change.
func (c *Controller) Update(values url.Values) error {
	if c.state != Step2 {
		return fmt.Errorf("%w: update outside step 2", ErrInvalid)
	}
	c.step2.BindStep2(values)
	return nil
}

// AddMovement syncs the posted form then appends a movement sub-form.
func (c *Controller) AddMovement(values url.Values) error {
	if err := c.Update(values); err != nil {
		return err
	}
	if _, err := c.step2.AddMovementForm(); err != nil {
		return fmt.Errorf("adding movement form: %w", err)
	}
	return nil
}

// SubmitStep2 composes the exercise from the step 2 model and posts it. It
// returns the page to redirect to. On failure the dialog stays shown with an
// error and the submit can be retried.
func (c *Controller) SubmitStep2(ctx context.Context, values url.Values) (string, error) {
	if c.state != Step2 {
		return "", fmt.Errorf("%w: submit outside step 2", ErrInvalid)
	}
	c.step2.BindStep2(values)

	ex, err := c.compose()
	if err != nil {
		c.setSubmitError("Formulaire incomplet: " + strings.TrimPrefix(err.Error(), ErrInvalid.Error()+": "))
		return "", err
	}

	id, err := c.backend.AddExercise(ctx, ex)
	var verr *program.ValidationError
	if errors.As(err, &verr) {
		c.setSubmitError("Exercice refusé: " + verr.Message)
		return "", fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err != nil {
		c.log.Error("posting exercise", "name", ex.Name, "error", err)
		c.setSubmitError("L'exercice n'a pas pu être créé, réessayez.")
		return "", fmt.Errorf("posting exercise: %w", err)
	}

	c.setSubmitError("")
	c.exercise = ex
	c.exercise.ID = id
	c.step2.Dialog().Hide()
	return "/app/exercise/" + strconv.FormatInt(id, 10) + "/", nil
}

func (c *Controller) setSubmitError(msg string) {
	c.submitErr = msg
	c.step2.Dialog().Form.SetAlert(submitAlertID, msg)
}

// compose builds the exercise to post from the current model. Sub-forms
// left on "none" are skipped; kept movements keep their form position as
// order.
func (c *Controller) compose() (models.Exercise, error) {
	ex := c.exercise
	ex.Movements = []models.Movement{}

	d := c.step2.Dialog()
	goal, err := parseGoal(d.TextInput(GoalInputID), ex.ExerciseType == models.Running)
	if err != nil {
		return models.Exercise{}, err
	}
	ex.GoalValue = goal

	blk := c.step2.Block()
	if blk == nil {
		if ex.ExerciseType != models.Running {
			return models.Exercise{}, fmt.Errorf("%w: movements are not loaded", ErrInvalid)
		}
		return ex, nil
	}
	for _, f := range blk.Forms {
		if f.Select.Value == models.NoMovement {
			continue
		}
		mv := models.Movement{Name: f.Select.Value, Order: f.Index, Settings: []models.Setting{}}
		for _, in := range d.InputsWithin(f.SettingsID()) {
			if err := checkSetting(in.Value); err != nil {
				return models.Exercise{}, fmt.Errorf("%w: %s %s: %v", ErrInvalid, mv.Name, in.Name, err)
			}
			mv.Settings = append(mv.Settings, models.Setting{Name: in.Name, Value: strings.TrimSpace(in.Value)})
		}
		ex.Movements = append(ex.Movements, mv)
	}
	return ex, nil
}

var (
	integerValue = regexp.MustCompile(`^[0-9]+$`)
	decimalValue = regexp.MustCompile(`^[0-9]+(\.[0-9])?$`)
)

// parseGoal accepts plain digits, with one decimal place when decimal is
// set. Signs, exponents and hex forms are refused.
func parseGoal(raw string, decimal bool) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: goal value is required", ErrInvalid)
	}
	pattern, want := integerValue, "a non-negative integer"
	if decimal {
		pattern, want = decimalValue, "a non-negative number with at most one decimal"
	}
	if !pattern.MatchString(raw) {
		return 0, fmt.Errorf("%w: goal value %q is not %s", ErrInvalid, raw, want)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: goal value %q", ErrInvalid, raw)
	}
	return v, nil
}

func checkSetting(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("value is required")
	}
	if !integerValue.MatchString(raw) {
		return fmt.Errorf("%q is not a non-negative integer", raw)
	}
	return nil
}

package wizard

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/claude/fitlg/internal/dialog"
	"github.com/claude/fitlg/internal/models"
)

// Snapshot is the serializable state of a wizard run, kept in a session
// store between requests. Restoring it never calls the backend.
type Snapshot struct {
	State        State                 `json:"state"`
	CSRF         string                `json:"csrf"`
	Name         string                `json:"name"`
	ExerciseType string                `json:"exerciseType"`
	Description  string                `json:"description"`
	Step1Visible bool                  `json:"step1Visible"`
	Step2Visible bool                  `json:"step2Visible"`
	Exercise     models.Exercise       `json:"exercise"`
	Goal         string                `json:"goal"`
	Catalog      []models.CatalogEntry `json:"catalog,omitempty"`
	CatalogErr   string                `json:"catalogError,omitempty"`
	SubmitErr    string                `json:"submitError,omitempty"`
	// MovementForms is nil when step 2 has no movement block.
	MovementForms []MovementSnapshot `json:"movementForms,omitempty"`
}

// MovementSnapshot is one movement sub-form.
type MovementSnapshot struct {
	Index         int      `json:"index"`
	Selected      string   `json:"selected"`
	SettingsShown bool     `json:"settingsShown"`
	Values        []string `json:"values,omitempty"`
}

// Snapshot captures the current state.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		State:        c.state,
		CSRF:         csrfOf(c.step1.Form),
		Name:         c.step1.TextInput("id_name"),
		ExerciseType: c.step1.SelectInput("id_exercise_type"),
		Description:  c.step1.TextInput("id_description"),
		Step1Visible: c.step1.Visible(),
		Step2Visible: c.step2.Dialog().Visible(),
		Exercise:     c.exercise,
		Goal:         c.step2.Dialog().TextInput(GoalInputID),
		Catalog:      c.catalog,
		CatalogErr:   c.catalogErr,
		SubmitErr:    c.submitErr,
	}
	if blk := c.step2.Block(); blk != nil {
		s.MovementForms = make([]MovementSnapshot, 0, len(blk.Forms))
		for _, f := range blk.Forms {
			ms := MovementSnapshot{
				Index:         f.Index,
				Selected:      f.Select.Value,
				SettingsShown: f.SettingsShown,
			}
			for _, in := range f.Settings {
				ms.Values = append(ms.Values, in.Value)
			}
			s.MovementForms = append(s.MovementForms, ms)
		}
	}
	return s
}

// Restore rebuilds a wizard from a snapshot.
func Restore(s Snapshot, backend Backend, log *slog.Logger) (*Controller, error) {
	c := New(backend, s.CSRF, log)
	c.step1.Bind(map[string][]string{
		"name":          {s.Name},
		"exercise_type": {s.ExerciseType},
		"description":   {s.Description},
	})
	c.exercise = s.Exercise
	c.state = s.State

	if s.State == Step2 {
		if err := c.restoreStep2(s); err != nil {
			return nil, err
		}
	}

	c.step1.Hide()
	if s.Step1Visible {
		c.step1.Show()
	}
	if s.Step2Visible {
		c.step2.Dialog().Show()
	}
	return c, nil
}

func (c *Controller) restoreStep2(s Snapshot) error {
	c.buildStep2()
	c.step2.Dialog().SetValue(GoalInputID, s.Goal)

	switch {
	case s.CatalogErr != "":
		c.showCatalogError(s.CatalogErr)
	case s.MovementForms != nil:
		c.catalog = s.Catalog
		c.addMovementPart()
		blk := c.step2.Block()
		for i := 1; i < len(s.MovementForms); i++ {
			if _, err := c.step2.AddMovementForm(); err != nil {
				return fmt.Errorf("restoring movement forms: %w", err)
			}
		}
		for i, ms := range s.MovementForms {
			f := blk.Forms[i]
			if f.Index != ms.Index {
				return fmt.Errorf("restoring movement form %d: index mismatch %d", ms.Index, f.Index)
			}
			if !ms.SettingsShown {
				continue
			}
			if err := c.step2.SelectMovement(f.Index, ms.Selected); err != nil {
				return fmt.Errorf("restoring movement form %d: %w", f.Index, err)
			}
			for j, in := range f.Settings {
				if j < len(ms.Values) {
					in.Value = ms.Values[j]
				}
			}
		}
	}

	if s.SubmitErr != "" {
		c.setSubmitError(s.SubmitErr)
	}
	return nil
}

// MarshalJSON encodes the state as its name.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "step1":
		*s = Step1
	case "step2":
		*s = Step2
	default:
		return fmt.Errorf("unknown wizard state %q", name)
	}
	return nil
}

func csrfOf(f *dialog.Form) string {
	for _, e := range f.Elements {
		if h, ok := e.(*dialog.Hidden); ok && h.Name == dialog.CSRFField {
			return h.Value
		}
	}
	return ""
}

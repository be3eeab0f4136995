package dialog

import (
	"net/url"
	"testing"
)

func newStep1() *Dialog {
	d := New("exerciseModalStep1")
	d.Form.Append(&Hidden{Name: CSRFField, Value: "tok"})
	d.Form.Append(&Input{ID: "id_name", Name: "name", Label: "Nom", Type: "text", Required: true})
	d.Form.Append(&Select{ID: "id_exercise_type", Name: "exercise_type", Options: []Option{
		{Value: "RUNNING", Text: "RUNNING"},
		{Value: "AMRAP", Text: "AMRAP"},
	}, Value: "RUNNING"})
	d.Form.Append(&TextArea{ID: "id_description", Name: "description", Rows: 3})
	d.Form.Append(&Checkbox{ID: "eq1", Name: "equipment", Value: "kettlebell"})
	d.Form.Append(&Checkbox{ID: "eq2", Name: "equipment", Value: "box"})
	d.Form.Append(&Checkbox{ID: "eq3", Name: "equipment", Value: "rameur"})
	return d
}

func TestNewDialogIDs(t *testing.T) {
	d := New("exerciseModalStep2")
	if d.TitleID() != "exerciseModalStep2Label" {
		t.Errorf("TitleID() = %q", d.TitleID())
	}
	if d.Form.ID != "exerciseModalStep2Form" {
		t.Errorf("Form.ID = %q", d.Form.ID)
	}
}

// TestBindAndRead verifies posted values reach the accessors.
func TestBindAndRead(t *testing.T) {
	d := newStep1()
	d.Bind(url.Values{
		"name":          {"Cindy"},
		"exercise_type": {"AMRAP"},
		"description":   {"20 min"},
		"equipment":     {"kettlebell", "rameur"},
		CSRFField:       {"forged"},
	})

	if got := d.TextInput("id_name"); got != "Cindy" {
		t.Errorf("name = %q", got)
	}
	if got := d.SelectInput("id_exercise_type"); got != "AMRAP" {
		t.Errorf("type = %q", got)
	}
	if got := d.TextInput("id_description"); got != "20 min" {
		t.Errorf("description = %q", got)
	}
	got := d.CheckedValues("equipment")
	if len(got) != 2 || got[0] != "kettlebell" || got[1] != "rameur" {
		t.Errorf("checked = %v", got)
	}
	if h := d.Form.Elements[0].(*Hidden); h.Value != "tok" {
		t.Errorf("hidden overwritten: %q", h.Value)
	}
}

// TestBindIgnoresUnknownOption keeps the select unchanged when the posted
// value is not one of its options.
func TestBindIgnoresUnknownOption(t *testing.T) {
	d := newStep1()
	d.Bind(url.Values{"exercise_type": {"YOGA"}})
	if got := d.SelectInput("id_exercise_type"); got != "RUNNING" {
		t.Errorf("type = %q, want RUNNING", got)
	}
}

func TestMissingIDs(t *testing.T) {
	d := newStep1()
	if got := d.TextInput("nope"); got != "" {
		t.Errorf("TextInput(nope) = %q", got)
	}
	if got := d.SelectInput("nope"); got != "" {
		t.Errorf("SelectInput(nope) = %q", got)
	}
	if got := d.InputsWithin("settings1"); got != nil {
		t.Errorf("InputsWithin(settings1) = %v", got)
	}
}

func TestShowHideTitle(t *testing.T) {
	d := New("m")
	if d.Visible() {
		t.Error("new dialog should be hidden")
	}
	d.Show()
	if !d.Visible() {
		t.Error("Show() did not show the dialog")
	}
	d.Hide()
	if d.Visible() {
		t.Error("Hide() did not hide the dialog")
	}
	d.SetTitle("Fran")
	if d.Title != "Fran" {
		t.Errorf("Title = %q", d.Title)
	}
}

// TestSetAlert verifies alerts sit after the anti-forgery field and can be
// replaced or removed by id.
func TestSetAlert(t *testing.T) {
	d := newStep1()
	d.Form.SetAlert("err", "Nom requis")
	a, ok := d.Form.Elements[1].(*Alert)
	if !ok || a.Text != "Nom requis" {
		t.Fatalf("element 1 = %#v, want alert", d.Form.Elements[1])
	}
	n := len(d.Form.Elements)

	d.Form.SetAlert("err", "Type inconnu")
	if len(d.Form.Elements) != n || a.Text != "Type inconnu" {
		t.Errorf("SetAlert did not replace in place")
	}

	d.Form.SetAlert("err", "")
	if len(d.Form.Elements) != n-1 {
		t.Errorf("SetAlert(\"\") did not remove the alert")
	}
	if _, ok := d.Form.Elements[1].(*Alert); ok {
		t.Error("alert still present")
	}
}

func TestSetValue(t *testing.T) {
	d := newStep1()
	if !d.SetValue("id_description", "EMOM 10") {
		t.Fatal("SetValue(id_description) = false")
	}
	if got := d.TextInput("id_description"); got != "EMOM 10" {
		t.Errorf("description = %q", got)
	}
	if d.SetValue("missing", "x") {
		t.Error("SetValue(missing) = true")
	}
}

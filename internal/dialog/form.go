package dialog

import "slices"

// CSRFField is the name of the anti-forgery hidden field. Its value is owned
// by the server and survives every rebuild of a form.
const CSRFField = "csrf_token"

// Element kinds, as switched on by the templates.
const (
	KindHidden    = "hidden"
	KindInput     = "input"
	KindTextArea  = "textarea"
	KindSelect    = "select"
	KindCheckbox  = "checkbox"
	KindSection   = "section"
	KindSeparator = "separator"
	KindMovements = "movements"
	KindSubmit    = "submit"
	KindAction    = "action"
	KindAlert     = "alert"
)

// Element is one node of a form.
type Element interface {
	Kind() string
}

// Form is the ordered element list of a dialog's form.
type Form struct {
	ID       string
	Action   string
	Elements []Element
}

// Append adds e at the end of the form.
func (f *Form) Append(e Element) {
	f.Elements = append(f.Elements, e)
}

// walk visits every element in document order, descending into movement
// blocks. It stops when fn returns false.
func (f *Form) walk(fn func(Element) bool) {
	for _, e := range f.Elements {
		if !fn(e) {
			return
		}
		b, ok := e.(*MovementBlock)
		if !ok {
			continue
		}
		for _, mf := range b.Forms {
			if !fn(mf.Select) {
				return
			}
			for _, s := range mf.Settings {
				if !fn(s) {
					return
				}
			}
		}
	}
}

type Hidden struct {
	Name  string
	Value string
}

func (*Hidden) Kind() string { return KindHidden }

// Input is a text or number input with its label.
type Input struct {
	ID       string
	Name     string
	Label    string
	Type     string
	Required bool
	// Decimal widens a number input to one decimal place (step=0.1).
	Decimal bool
	Small   bool
	Value   string
}

func (*Input) Kind() string { return KindInput }

type TextArea struct {
	ID    string
	Name  string
	Label string
	Rows  int
	Value string
}

func (*TextArea) Kind() string { return KindTextArea }

type Option struct {
	Value string
	Text  string
}

type Select struct {
	ID       string
	Name     string
	Label    string
	Required bool
	Options  []Option
	Value    string
}

func (*Select) Kind() string { return KindSelect }

func (s *Select) hasOption(v string) bool {
	for _, o := range s.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

type Checkbox struct {
	ID      string
	Name    string
	Value   string
	Label   string
	Checked bool
}

func (*Checkbox) Kind() string { return KindCheckbox }

// Section is a plain text heading.
type Section struct {
	Text string
}

func (*Section) Kind() string { return KindSection }

type Separator struct{}

func (*Separator) Kind() string { return KindSeparator }

type Submit struct {
	Label string
}

func (*Submit) Kind() string { return KindSubmit }

// Action is a secondary submit control posting action=Value without
// triggering browser validation.
type Action struct {
	Value string
	Label string
}

func (*Action) Kind() string { return KindAction }

// Alert is a user-visible error line.
type Alert struct {
	ID   string
	Text string
}

func (*Alert) Kind() string { return KindAlert }

// SetCSRF sets the anti-forgery field, adding it at the top of the form if missing.
func (f *Form) SetCSRF(token string) {
	for _, e := range f.Elements {
		if h, ok := e.(*Hidden); ok && h.Name == CSRFField {
			h.Value = token
			return
		}
	}
	f.Elements = slices.Insert(f.Elements, 0, Element(&Hidden{Name: CSRFField, Value: token}))
}

// SetAlert shows text in the alert id, placed right after the anti-forgery
// field. An empty text removes the alert.
func (f *Form) SetAlert(id, text string) {
	for i, e := range f.Elements {
		a, ok := e.(*Alert)
		if !ok || a.ID != id {
			continue
		}
		if text == "" {
			f.Elements = append(f.Elements[:i], f.Elements[i+1:]...)
			return
		}
		a.Text = text
		return
	}
	if text == "" {
		return
	}
	at := 0
	if len(f.Elements) > 0 {
		if h, ok := f.Elements[0].(*Hidden); ok && h.Name == CSRFField {
			at = 1
		}
	}
	f.Elements = slices.Insert(f.Elements, at, Element(&Alert{ID: id, Text: text}))
}

// RemoveActions drops every secondary action control.
func (f *Form) RemoveActions() {
	f.Elements = slices.DeleteFunc(f.Elements, func(e Element) bool {
		_, ok := e.(*Action)
		return ok
	})
}

// Package dialog models the wizard's modal dialogs as explicit form state.
// Handlers mutate the model on each user action and render it to HTML; the
// submitted object is always composed from the model, never from markup.
package dialog

import (
	"net/url"
	"slices"
)

// Dialog is a named modal with a title and a form. Lookups of ids that do
// not exist return zero values.
type Dialog struct {
	ID      string
	Title   string
	Form    *Form
	visible bool
}

// New creates the dialog id with its title element <id>Label and its form
// <id>Form.
func New(id string) *Dialog {
	return &Dialog{
		ID:   id,
		Form: &Form{ID: id + "Form"},
	}
}

// TitleID is the id of the title element.
func (d *Dialog) TitleID() string { return d.ID + "Label" }

// TextInput returns the current value of the text, number or textarea input id.
func (d *Dialog) TextInput(id string) string {
	var v string
	d.Form.walk(func(e Element) bool {
		switch el := e.(type) {
		case *Input:
			if el.ID == id {
				v = el.Value
				return false
			}
		case *TextArea:
			if el.ID == id {
				v = el.Value
				return false
			}
		}
		return true
	})
	return v
}

// SelectInput returns the selected value of the select id.
func (d *Dialog) SelectInput(id string) string {
	var v string
	d.Form.walk(func(e Element) bool {
		if s, ok := e.(*Select); ok && s.ID == id {
			v = s.Value
			return false
		}
		return true
	})
	return v
}

// Selects returns every select of the form in document order.
func (d *Dialog) Selects() []*Select {
	var out []*Select
	d.Form.walk(func(e Element) bool {
		if s, ok := e.(*Select); ok {
			out = append(out, s)
		}
		return true
	})
	return out
}

// CheckedValues returns the values of the checked checkboxes named name.
func (d *Dialog) CheckedValues(name string) []string {
	var out []string
	d.Form.walk(func(e Element) bool {
		if c, ok := e.(*Checkbox); ok && c.Name == name && c.Checked {
			out = append(out, c.Value)
		}
		return true
	})
	return out
}

// InputsWithin returns the inputs of the settings container id
// ("settings<n>"), in document order.
func (d *Dialog) InputsWithin(containerID string) []*Input {
	for _, e := range d.Form.Elements {
		b, ok := e.(*MovementBlock)
		if !ok {
			continue
		}
		for _, mf := range b.Forms {
			if mf.SettingsShown && mf.SettingsID() == containerID {
				return mf.Settings
			}
		}
	}
	return nil
}

// SetValue sets the value of the input or textarea id. It reports whether
// the element exists.
func (d *Dialog) SetValue(id, value string) bool {
	found := false
	d.Form.walk(func(e Element) bool {
		switch el := e.(type) {
		case *Input:
			if el.ID == id {
				el.Value, found = value, true
			}
		case *TextArea:
			if el.ID == id {
				el.Value, found = value, true
			}
		}
		return !found
	})
	return found
}

func (d *Dialog) Show()         { d.visible = true }
func (d *Dialog) Hide()         { d.visible = false }
func (d *Dialog) Visible() bool { return d.visible }

func (d *Dialog) SetTitle(title string) { d.Title = title }

// Bind copies posted values into the top-level fields of the form. Hidden
// fields are never overwritten and movement blocks are left to the builder.
func (d *Dialog) Bind(values url.Values) {
	for _, e := range d.Form.Elements {
		switch el := e.(type) {
		case *Input:
			if vs, ok := values[el.Name]; ok && len(vs) > 0 {
				el.Value = vs[0]
			}
		case *TextArea:
			if vs, ok := values[el.Name]; ok && len(vs) > 0 {
				el.Value = vs[0]
			}
		case *Select:
			if vs, ok := values[el.Name]; ok && len(vs) > 0 && el.hasOption(vs[0]) {
				el.Value = vs[0]
			}
		case *Checkbox:
			el.Checked = slices.Contains(values[el.Name], el.Value)
		}
	}
}

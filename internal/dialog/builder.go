package dialog

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/claude/fitlg/internal/models"
)

var (
	// ErrNoMovementBlock is returned by movement operations before a block exists.
	ErrNoMovementBlock = errors.New("dialog has no movement block")
	// ErrUnknownMovement is returned when a selector is set to a name missing from the catalog.
	ErrUnknownMovement = errors.New("movement not in catalog")
)

// Builder constructs a dialog's form. It holds the dialog it builds instead
// of extending it.
type Builder struct {
	dialog *Dialog
	block  *MovementBlock
}

// NewBuilder returns a builder for d.
func NewBuilder(d *Dialog) *Builder {
	return &Builder{dialog: d}
}

// Dialog returns the dialog under construction.
func (b *Builder) Dialog() *Dialog { return b.dialog }

// Block returns the movement block, or nil if none was added.
func (b *Builder) Block() *MovementBlock { return b.block }

// Clean removes every element but the anti-forgery field.
func (b *Builder) Clean() {
	kept := b.dialog.Form.Elements[:0]
	for _, e := range b.dialog.Form.Elements {
		if h, ok := e.(*Hidden); ok && h.Name == CSRFField {
			kept = append(kept, e)
		}
	}
	clear(b.dialog.Form.Elements[len(kept):])
	b.dialog.Form.Elements = kept
	b.block = nil
}

func (b *Builder) SetCSRF(token string) {
	b.dialog.Form.SetCSRF(token)
}

func (b *Builder) AddSection(text string) {
	b.dialog.Form.Append(&Section{Text: text})
}

func (b *Builder) AddSeparator() {
	b.dialog.Form.Append(&Separator{})
}

// AddNumberInput appends a required, non-negative number input labelled
// label. decimal allows one decimal place.
func (b *Builder) AddNumberInput(id, label string, decimal bool) {
	b.dialog.Form.Append(&Input{
		ID:       id,
		Name:     id,
		Label:    label,
		Type:     "number",
		Required: true,
		Decimal:  decimal,
	})
}

func (b *Builder) AddSubmit(label string) {
	b.dialog.Form.Append(&Submit{Label: label})
}

func (b *Builder) AddAction(value, label string) {
	b.dialog.Form.Append(&Action{Value: value, Label: label})
}

// AddMovementBlock appends the movement section with a first sub-form.
func (b *Builder) AddMovementBlock(catalog []models.CatalogEntry) *MovementBlock {
	blk := &MovementBlock{Catalog: catalog}
	blk.addForm()
	b.dialog.Form.Append(blk)
	b.block = blk
	return blk
}

// AddMovementForm appends another sub-form to the block and returns its index.
func (b *Builder) AddMovementForm() (int, error) {
	if b.block == nil {
		return 0, ErrNoMovementBlock
	}
	return b.block.addForm().Index, nil
}

// SelectMovement changes the selector of sub-form index to name and rebuilds
// its settings inputs. "none" clears them.
func (b *Builder) SelectMovement(index int, name string) error {
	if b.block == nil {
		return ErrNoMovementBlock
	}
	f := b.block.form(index)
	if f == nil {
		return fmt.Errorf("movement form %d: not found", index)
	}
	if name != models.NoMovement {
		if _, ok := models.FindCatalogEntry(b.block.Catalog, name); !ok {
			return fmt.Errorf("selecting %q: %w", name, ErrUnknownMovement)
		}
	}
	b.block.selectMovement(f, name)
	return nil
}

// BindStep2 copies a posted step 2 form into the model. Settings values are
// consumed per name in document order, then any selector whose posted value
// differs from the model is applied as a selection change.
func (b *Builder) BindStep2(values url.Values) {
	b.dialog.Bind(values)
	if b.block == nil {
		return
	}

	queues := make(map[string][]string, len(values))
	for k, v := range values {
		queues[k] = v
	}
	take := func(name string) string {
		q := queues[name]
		if len(q) == 0 {
			return ""
		}
		queues[name] = q[1:]
		return q[0]
	}

	for _, f := range b.block.Forms {
		for _, s := range f.Settings {
			s.Value = take(s.Name)
		}
		posted, ok := values[f.Select.Name]
		if !ok || len(posted) == 0 || posted[0] == f.Select.Value {
			continue
		}
		b.block.selectMovement(f, posted[0])
	}
}

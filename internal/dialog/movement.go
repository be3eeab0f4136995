package dialog

import (
	"strconv"

	"github.com/claude/fitlg/internal/models"
)

// noMovementText is the label of the placeholder option.
const noMovementText = "Sélectionnez un mouvement"

// MovementBlock is the repeatable movement section of step 2: a header, one
// sub-form per movement, and the "+ Mouvement" control.
type MovementBlock struct {
	Catalog []models.CatalogEntry
	Forms   []*MovementForm
	// next is the number of sub-forms added so far. Sub-form indexes come
	// from it and it is never decremented.
	next int
}

func (*MovementBlock) Kind() string { return KindMovements }

// Next returns the number of sub-forms added to the block so far.
func (b *MovementBlock) Next() int { return b.next }

// MovementForm is one movement selector with its settings inputs.
type MovementForm struct {
	Index  int
	Select *Select
	// Settings is empty until the selector changes; SettingsShown records
	// that a settings container was rendered, possibly with no inputs.
	Settings      []*Input
	SettingsShown bool
}

// SettingsID is the id of the settings container of this sub-form.
func (f *MovementForm) SettingsID() string {
	return "settings" + strconv.Itoa(f.Index)
}

func (b *MovementBlock) addForm() *MovementForm {
	b.next++
	id := "select" + strconv.Itoa(b.next)

	opts := make([]Option, 0, len(b.Catalog)+1)
	opts = append(opts, Option{Value: models.NoMovement, Text: noMovementText})
	for _, e := range b.Catalog {
		// Options are keyed by movement name.
		opts = append(opts, Option{Value: e.Name, Text: e.Name})
	}

	f := &MovementForm{
		Index: b.next,
		Select: &Select{
			ID:      id,
			Name:    id,
			Options: opts,
			Value:   models.NoMovement,
		},
	}
	b.Forms = append(b.Forms, f)
	return f
}

func (b *MovementBlock) form(index int) *MovementForm {
	for _, f := range b.Forms {
		if f.Index == index {
			return f
		}
	}
	return nil
}

// selectMovement replaces the settings of f with one required number input
// per setting of the catalog entry named name.
func (b *MovementBlock) selectMovement(f *MovementForm, name string) {
	entry, ok := models.FindCatalogEntry(b.Catalog, name)
	if !ok {
		name = models.NoMovement
	}
	f.Select.Value = name

	idx := strconv.Itoa(f.Index)
	settings := make([]*Input, 0, len(entry.Settings))
	for _, s := range entry.Settings {
		settings = append(settings, &Input{
			ID:       s + idx,
			Name:     s,
			Label:    s,
			Type:     "number",
			Required: true,
			Small:    true,
		})
	}
	f.Settings = settings
	f.SettingsShown = true
}

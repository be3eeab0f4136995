package dialog

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Templates returns a clone of the dialog templates so pages can define
// their own templates around {{template "dialog" .}}.
func Templates() (*template.Template, error) {
	return templates.Clone()
}

// Render writes d as a modal dialog.
func Render(w io.Writer, d *Dialog) error {
	if err := templates.ExecuteTemplate(w, "dialog", d); err != nil {
		return fmt.Errorf("rendering dialog %s: %w", d.ID, err)
	}
	return nil
}

// Package templates renders dashboard views. Views are html/template
// definitions embedded at build time and exposed as templ components so
// handlers serve them through templ.Handler. Shared pieces such as the
// progress bar are templ components embedded back into the views.
package templates

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"finitefield.org/artist-dashboard/internal/dashboard/templates/helpers"
)

//go:embed html/*.html
var files embed.FS

var views = template.Must(template.New("_root").Funcs(templateFuncs()).ParseFS(files, "html/*.html"))

func templateFuncs() template.FuncMap {
	funcs := helpers.FuncMap()
	funcs["progressBar"] = progressHTML
	funcs["panelData"] = func(chrome Chrome, v any) map[string]any {
		return map[string]any{"Chrome": chrome, "View": v}
	}
	return funcs
}

// Render returns a component executing the named view with data.
func Render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if views.Lookup(name) == nil {
			return fmt.Errorf("templates: unknown view %q", name)
		}
		if err := views.ExecuteTemplate(w, name, data); err != nil {
			return fmt.Errorf("templates: render %s: %w", name, err)
		}
		return nil
	})
}

// Index renders the full dashboard document.
func Index(p Page) templ.Component {
	return Render("page", p)
}

// PanelSwap renders the active panel for an htmx navigation, with the
// section title and navigation bar swapped out of band.
func PanelSwap(p Page) templ.Component {
	return Render("panel-swap", p)
}

// Checklist renders the task list and both progress bars.
func Checklist(u ChecklistUpdate) templ.Component {
	return Render("checklist-update", u)
}

// Collection renders one portfolio collection.
func Collection(u CollectionUpdate) templ.Component {
	return Render("collection-update", u)
}

// Profile renders the profile panel body.
func Profile(u ProfileUpdate) templ.Component {
	return Render("profile-update", u)
}

// Avatar renders the avatar preview.
func Avatar(u AvatarUpdate) templ.Component {
	return Render("avatar-update", u)
}

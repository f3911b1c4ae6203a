// Package views holds the page templates and the data they render.
package views

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/a-h/templ"

	"hesapvitrini.com/vitrine/internal/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by Renderer.Page.
const (
	PageHome            = "home"
	PageDetail          = "detail"
	PageLogin           = "login"
	PageRegister        = "register"
	PageOrders          = "orders"
	PageAdminDashboard  = "admin_dashboard"
	PageAdminAccounts   = "admin_accounts"
	PageAdminCategories = "admin_categories"
	PageAdminSettings   = "admin_settings"
)

var pages = []string{
	PageHome, PageDetail, PageLogin, PageRegister, PageOrders,
	PageAdminDashboard, PageAdminAccounts, PageAdminCategories, PageAdminSettings,
}

var shared = []string{"templates/layout.html", "templates/partials.html"}

// Renderer turns page data into templ components.
type Renderer struct {
	sets map[string]*template.Template
}

// New parses every page against the shared layout. Messages are looked up in bundle.
func New(bundle *i18n.Bundle) (*Renderer, error) {
	if bundle == nil {
		return nil, fmt.Errorf("views: i18n bundle is required")
	}
	funcs := template.FuncMap{
		"t": func(lang, key string, args ...any) string {
			return bundle.T(lang, key, args...)
		},
	}

	r := &Renderer{sets: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		files := append(append([]string(nil), shared...), "templates/"+name+".html")
		set, err := template.New(name).Funcs(funcs).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("views: parse %s: %w", name, err)
		}
		r.sets[name] = set
	}
	return r, nil
}

// Page renders a full document.
func (r *Renderer) Page(name string, data any) (templ.Component, error) {
	return r.Fragment(name, "base", data)
}

// Fragment renders one named template of a page, for htmx swaps.
func (r *Renderer) Fragment(page, name string, data any) (templ.Component, error) {
	set, ok := r.sets[page]
	if !ok {
		return nil, fmt.Errorf("views: unknown page %q", page)
	}
	tmpl := set.Lookup(name)
	if tmpl == nil {
		return nil, fmt.Errorf("views: page %q has no template %q", page, name)
	}
	return templ.FromGoHTML(tmpl, data), nil
}

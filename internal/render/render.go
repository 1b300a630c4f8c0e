// Package render provides HTML template rendering for the asset-library
// pages. Pages render into the base layout; list pages that open posts
// in an overlay also serve the overlay fragment for HTMX requests.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"

	"layerary/internal/models"
	"layerary/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData holds all data passed to page templates.
type PageData struct {
	Title      string
	Category   *models.Category
	Categories []models.Category // top navigation
	Session    *session.Data     // nil if unauthenticated
	Data       map[string]any    // page-specific data
}

// Renderer parses the embedded templates once and executes them by name.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// standalone lists templates that render as full HTML pages without the
// base layout.
var standalone = map[string]bool{
	"login":        true,
	"twofa_setup":  true,
	"twofa_verify": true,
}

// New creates a Renderer by parsing all page templates from the embedded
// filesystem, each paired with the base layout.
func New(devMode bool) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			"isDev": func() bool {
				return devMode
			},
			// thumb picks a post's display thumbnail.
			"thumb": func(p models.Post) string {
				return p.Thumbnail()
			},
		},
	}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || e.Name() == "base.html" {
			continue
		}
		name := e.Name()
		tmplName := name[:len(name)-len(filepath.Ext(name))]

		var tmpl *template.Template
		var parseErr error
		if standalone[tmplName] {
			tmpl, parseErr = template.New(name).Funcs(r.funcMap).ParseFS(
				templateFS, "templates/"+name,
			)
		} else {
			tmpl, parseErr = template.New("base.html").Funcs(r.funcMap).ParseFS(
				templateFS, "templates/base.html", "templates/"+name,
			)
		}
		if parseErr != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, parseErr)
		}
		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// HTML renders a page to bytes. Handlers use this when the output also
// feeds the rendered-page cache.
func (rn *Renderer) HTML(name string, data *PageData) ([]byte, error) {
	tmpl, ok := rn.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}

	execName := "base.html"
	if standalone[name] {
		execName = name + ".html"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Page renders a full page to the response.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	out, err := rn.HTML(name, data)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(out)
}

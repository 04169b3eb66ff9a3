package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
)

// Renderer executes the server-rendered page templates. Templates are parsed
// once at startup; a missing template is a deployment error, not a runtime
// condition.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses every template under dir.
func NewRenderer(dir string) (*Renderer, error) {
	templates, err := template.ParseGlob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: templates}, nil
}

// Render writes a page. Errors after the header is written can only be
// logged.
func (rd *Renderer) Render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := rd.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()))
	}
}

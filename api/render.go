package main

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"
)

//go:embed templates
var templateFS embed.FS

var pages = []string{
	"login.html",
	"sign_up.html",
	"home.html",
	"note.html",
	"tasks.html",
	"dashboard.html",
}

type templateData struct {
	Account *account
	Flashes []flashMessage
	Notes   []note
	Tasks   []task
	Note    *note
	Form    map[string]string
}

var templateFuncs = template.FuncMap{
	"formatDate": func(t time.Time) string {
		return t.Format(exportDateLayout)
	},
}

func newTemplateCache() (map[string]*template.Template, error) {
	cache := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		ts, err := template.New(page).Funcs(templateFuncs).ParseFS(templateFS, "templates/base.html", "templates/partials.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		cache[page] = ts
	}
	return cache, nil
}

func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page string, data templateData) {
	ts, ok := app.templates[page]
	if !ok {
		app.serverError(w, r, fmt.Errorf("template %s does not exist", page))
		return
	}

	data.Flashes = takeFlashes(w, r)

	var buf bytes.Buffer
	if err := ts.ExecuteTemplate(&buf, "base", data); err != nil {
		app.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

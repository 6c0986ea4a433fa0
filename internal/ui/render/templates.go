// Package render executes the embedded page templates.
package render

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/petervdpas/codeseed/internal/ui"
)

var (
	tmpl    *template.Template
	once    sync.Once
	initErr error
)

func funcs() template.FuncMap {
	return template.FuncMap{
		"shortID":  shortID,
		"rfc3339":  func(t time.Time) string { return t.Format(time.RFC3339) },
		"ago":      ago,
		"isActive": func(active, key string) bool { return active == key },
		// include lets the layout pull in the page body named by .ContentTmpl.
		"include": func(name string, data any) template.HTML {
			var b bytes.Buffer
			if err := tmpl.ExecuteTemplate(&b, name, data); err != nil {
				return template.HTML(`<pre class="err">` + html.EscapeString(err.Error()) + `</pre>`)
			}
			return template.HTML(b.String())
		},
	}
}

func InitTemplates() error {
	once.Do(func() {
		tmpl, initErr = template.New("root").Funcs(funcs()).ParseFS(ui.TemplatesFS, "templates/*.html")
	})
	return initErr
}

// shortID keeps the first uuid group of a project id.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "…"
}

func ago(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d h ago", int(d.Hours()))
	}
	return t.Format("2006-01-02")
}

// execute buffers the page; nothing but the 500 is written when the template
// fails.
func execute(w http.ResponseWriter, status int, name string, data any) {
	if err := InitTemplates(); err != nil {
		http.Error(w, "template init: "+err.Error(), http.StatusInternalServerError)
		return
	}
	var b bytes.Buffer
	if err := tmpl.ExecuteTemplate(&b, name, data); err != nil {
		http.Error(w, "template "+name+": "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = b.WriteTo(w)
}

// RenderStandalone executes a named template without the layout.
func RenderStandalone(w http.ResponseWriter, status int, name string, data any) {
	execute(w, status, name, data)
}

// Render executes the shared layout, which picks the page body via
// .ContentTmpl.
func Render(w http.ResponseWriter, data any) {
	execute(w, http.StatusOK, "layout", data)
}

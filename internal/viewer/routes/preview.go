package routes

import (
	"net/http"
	"net/url"

	"github.com/petervdpas/codeseed/internal/errs"
	"github.com/petervdpas/codeseed/internal/preview"
	"github.com/petervdpas/codeseed/internal/workspace"
)

func registerPreviewRoutes(mux *http.ServeMux, d Deps) {
	// The composed document itself, for opening in a tab.
	handleGet(mux, "/preview", func(w http.ResponseWriter, r *http.Request) {
		project, err := projectParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		files, err := d.Remote.LoadEntries(r.Context(), project)
		if err != nil {
			writeError(w, err)
			return
		}
		doc, _, err := d.Composer.Render(files, r.URL.Query().Get("html"))
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		sandbox(w, d)
		_, _ = w.Write([]byte(doc))
	})

	handleGet(mux, "/preview/frame", func(w http.ResponseWriter, r *http.Request) {
		project, err := projectParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		files, err := d.Remote.LoadEntries(r.Context(), project)
		if err != nil {
			writeError(w, err)
			return
		}
		doc, root, err := d.Composer.Render(files, r.URL.Query().Get("html"))
		if err != nil {
			writeError(w, err)
			return
		}
		data := preview.FrameData{Title: root.Name(), Sandbox: d.Composer.Sandbox(), Doc: doc}
		// Live updates are composed from the default root only.
		if def, ok := preview.SelectRoot(files); ok && def.Path == root.Path {
			data.LiveURL = "/preview/live?project=" + url.QueryEscape(project)
		}
		page, err := preview.Frame(data)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	})

	// Raw project files, for documents that reference assets by URL.
	handleGet(mux, "/preview/file", func(w http.ResponseWriter, r *http.Request) {
		project, err := projectParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		f, err := lookupEntry(r, d, project, r.URL.Query().Get("path"))
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", contentTypeForPath(f.Path, []byte(f.Content)))
		w.Header().Set("X-Content-Type-Options", "nosniff")
		sandbox(w, d)
		_, _ = w.Write([]byte(f.Content))
	})

	handleGet(mux, "/source", func(w http.ResponseWriter, r *http.Request) {
		project, err := projectParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		f, err := lookupEntry(r, d, project, r.URL.Query().Get("file"))
		if err != nil {
			writeError(w, err)
			return
		}
		out, err := preview.SourceView(f)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		sandbox(w, d)
		_, _ = w.Write([]byte(out))
	})
}

// sandbox confines project content served from the viewer origin the same
// way the preview iframe does.
func sandbox(w http.ResponseWriter, d Deps) {
	w.Header().Set("Content-Security-Policy", "sandbox "+d.Composer.Sandbox())
}

func lookupEntry(r *http.Request, d Deps, project, p string) (workspace.Entry, error) {
	if p == "" {
		return workspace.Entry{}, errs.Invalid("path", "required")
	}
	files, err := d.Remote.LoadEntries(r.Context(), project)
	if err != nil {
		return workspace.Entry{}, err
	}
	for _, f := range files {
		if f.Path == p {
			return f, nil
		}
	}
	return workspace.Entry{}, errs.NotFound("file", p)
}

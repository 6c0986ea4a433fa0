package routes

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/petervdpas/codeseed/internal/archive"
	"github.com/petervdpas/codeseed/internal/errs"
	"github.com/petervdpas/codeseed/internal/sitetemplates"
)

// maxImportSize bounds an uploaded project archive.
const maxImportSize = 50 << 20

type fileRequest struct {
	Project  string `json:"project"`
	Filename string `json:"filename"`
	Content  string `json:"content,omitempty"`
}

type projectRequest struct {
	Project string `json:"project"`
}

func registerProjectRoutes(mux *http.ServeMux, d Deps) {
	handleGet(mux, "/api/projects", func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Remote.ListProjects(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"projects": list})
	})

	handleGet(mux, "/api/projects/files", func(w http.ResponseWriter, r *http.Request) {
		project, err := projectParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		recs, err := d.Remote.LoadProject(r.Context(), project)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"project_id": project, "files": recs})
	})

	handleGet(mux, "/api/projects/export", func(w http.ResponseWriter, r *http.Request) {
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
		var buf bytes.Buffer
		if _, err := d.Remote.ExportProject(&buf, files); err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="`+archive.FileName(project)+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		_, _ = w.Write(buf.Bytes())
	})

	mux.HandleFunc("/api/projects/import", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxImportSize+1024)
		if err := r.ParseMultipartForm(maxImportSize); err != nil {
			writeError(w, errs.Invalid("file", "archive too large or bad form"))
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, errs.Invalid("file", "missing archive"))
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			writeError(w, errs.Invalid("file", err.Error()))
			return
		}
		id, n, err := d.Remote.ImportArchive(r.Context(), data)
		if err != nil {
			writeError(w, err)
			return
		}
		log.Infof("imported %d files as project %s", n, id)
		writeJSON(w, map[string]any{"project_id": id, "files": n})
	})

	handleGet(mux, "/api/templates", func(w http.ResponseWriter, r *http.Request) {
		list, err := sitetemplates.List()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"templates": list})
	})

	// New project from a starter template.
	handlePost(mux, "/api/projects/new", func(w http.ResponseWriter, r *http.Request, req struct {
		Template string `json:"template"`
	}) {
		if req.Template == "" {
			req.Template = "blank"
		}
		files, err := sitetemplates.SiteFiles(req.Template)
		if err != nil {
			writeError(w, err)
			return
		}
		id, err := d.Remote.CreateProject(r.Context(), files)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"project_id": id, "files": len(files)})
	})

	handlePost(mux, "/api/projects/file/save", func(w http.ResponseWriter, r *http.Request, req fileRequest) {
		if req.Project == "" {
			writeError(w, errs.Invalid("project", "required"))
			return
		}
		rec, err := d.Remote.SaveFile(r.Context(), req.Project, req.Filename, req.Content)
		if err != nil {
			writeError(w, err)
			return
		}
		d.Sessions.Drop(sessionKey(r, req.Project))
		publishPreview(r.Context(), d, req.Project, req.Filename)
		writeJSON(w, rec)
	})

	handlePost(mux, "/api/projects/file/delete", func(w http.ResponseWriter, r *http.Request, req fileRequest) {
		if req.Project == "" {
			writeError(w, errs.Invalid("project", "required"))
			return
		}
		if err := d.Remote.DeleteFile(r.Context(), req.Project, req.Filename); err != nil {
			writeError(w, err)
			return
		}
		d.Sessions.Drop(sessionKey(r, req.Project))
		publishPreview(r.Context(), d, req.Project, req.Filename)
		writeJSON(w, map[string]string{"status": "deleted"})
	})

	handlePost(mux, "/api/projects/delete", func(w http.ResponseWriter, r *http.Request, req projectRequest) {
		if req.Project == "" {
			writeError(w, errs.Invalid("project", "required"))
			return
		}
		n, err := d.Remote.DeleteProject(r.Context(), req.Project)
		if err != nil {
			writeError(w, err)
			return
		}
		d.Sessions.DropFunc(func(key string) bool {
			return strings.HasSuffix(key, "/"+req.Project)
		})
		log.Infof("deleted project %s (%d records)", req.Project, n)
		writeJSON(w, map[string]string{"status": "deleted"})
	})
}

// publishPreview pushes the recomposed document of project to live
// subscribers.
func publishPreview(ctx context.Context, d Deps, project, changed string) {
	if d.Hub == nil || d.Hub.Subscribers(project) == 0 {
		return
	}
	files, err := d.Remote.LoadEntries(ctx, project)
	if err != nil {
		log.Debugf("live preview %s: %v", project, err)
		return
	}
	n, err := d.Hub.Push(d.Composer, project, files, changed)
	if err != nil {
		log.Debugf("live preview %s: %v", project, err)
		return
	}
	log.Debugf("live preview %s: pushed to %d", project, n)
}

package routes

import (
	"net/http"
	"path"
	"strings"

	"github.com/petervdpas/codeseed/internal/editor"
	"github.com/petervdpas/codeseed/internal/errs"
	"github.com/petervdpas/codeseed/internal/workspace"
)

type editorRequest struct {
	Project string   `json:"project"`
	Name    string   `json:"name,omitempty"`
	Content string   `json:"content,omitempty"`
	Path    []string `json:"path,omitempty"`
	Kind    string   `json:"kind,omitempty"` // "file" or "folder"
}

func registerEditorRoutes(mux *http.ServeMux, d Deps) {
	// withSession runs fn on the caller's session for project and answers
	// with the resulting state.
	withSession := func(w http.ResponseWriter, r *http.Request, project string, fn func(*editor.Session) error) {
		if project == "" {
			writeError(w, errs.Invalid("project", "required"))
			return
		}
		var st editor.State
		load := func() (*editor.Session, error) {
			files, err := d.Remote.LoadEntries(r.Context(), project)
			if err != nil {
				return nil, err
			}
			return editor.NewSession(workspace.FromFiles(files)), nil
		}
		err := d.Sessions.Do(sessionKey(r, project), load, func(s *editor.Session) error {
			if err := fn(s); err != nil {
				return err
			}
			st = s.State()
			return nil
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, st)
	}

	handleGet(mux, "/api/editor/state", func(w http.ResponseWriter, r *http.Request) {
		withSession(w, r, r.URL.Query().Get("project"), func(*editor.Session) error { return nil })
	})

	handlePost(mux, "/api/editor/open", func(w http.ResponseWriter, r *http.Request, req editorRequest) {
		withSession(w, r, req.Project, func(s *editor.Session) error {
			return s.Open(req.Name)
		})
	})

	handlePost(mux, "/api/editor/close", func(w http.ResponseWriter, r *http.Request, req editorRequest) {
		withSession(w, r, req.Project, func(s *editor.Session) error {
			s.CloseTab(req.Name)
			return nil
		})
	})

	handlePost(mux, "/api/editor/edit", func(w http.ResponseWriter, r *http.Request, req editorRequest) {
		withSession(w, r, req.Project, func(s *editor.Session) error {
			return s.Edit(req.Name, req.Content)
		})
	})

	// Save persists the buffer before committing it, so a failed store
	// leaves the tab dirty.
	handlePost(mux, "/api/editor/save", func(w http.ResponseWriter, r *http.Request, req editorRequest) {
		var saved string
		withSession(w, r, req.Project, func(s *editor.Session) error {
			buf, ok := s.Buffer(req.Name)
			if !ok {
				return errs.Invalid("file", "\""+req.Name+"\" has no edits")
			}
			p, ok := workspace.FindPath(s.Tree(), req.Name)
			if !ok {
				return errs.NotFound("file", req.Name)
			}
			if _, err := d.Remote.SaveFile(r.Context(), req.Project, p, buf); err != nil {
				return err
			}
			if _, err := s.Save(req.Name); err != nil {
				return err
			}
			saved = p
			return nil
		})
		if saved != "" {
			publishPreview(r.Context(), d, req.Project, saved)
		}
	})

	handlePost(mux, "/api/editor/toggle", func(w http.ResponseWriter, r *http.Request, req editorRequest) {
		withSession(w, r, req.Project, func(s *editor.Session) error {
			s.Toggle(req.Path)
			return nil
		})
	})

	handlePost(mux, "/api/editor/insert", func(w http.ResponseWriter, r *http.Request, req editorRequest) {
		var created string
		withSession(w, r, req.Project, func(s *editor.Session) error {
			var node workspace.Node
			switch req.Kind {
			case "", "file":
				node = workspace.NewFileNode(req.Name)
			case "folder":
				node = workspace.Folder(req.Name, false)
			default:
				return errs.Invalid("kind", "must be file or folder")
			}
			ok, err := s.Insert(req.Path, node)
			if err != nil {
				return err
			}
			if !ok {
				return errs.NotFound("folder", strings.Join(req.Path, "/"))
			}
			if node.IsFolder() {
				return nil
			}
			full := strings.Join(append(append([]string(nil), req.Path...), req.Name), "/")
			if _, err := d.Remote.SaveFile(r.Context(), req.Project, full, node.Content); err != nil {
				s.Remove(append(append([]string(nil), req.Path...), req.Name))
				return err
			}
			created = full
			return nil
		})
		if created != "" {
			publishPreview(r.Context(), d, req.Project, created)
		}
	})

	handlePost(mux, "/api/editor/remove", func(w http.ResponseWriter, r *http.Request, req editorRequest) {
		var removed []string
		withSession(w, r, req.Project, func(s *editor.Session) error {
			n, ok := workspace.Lookup(s.Tree(), req.Path)
			if !ok {
				return errs.NotFound("node", strings.Join(req.Path, "/"))
			}
			parent := path.Join(req.Path[:len(req.Path)-1]...)
			for _, f := range workspace.Files([]workspace.Node{n}) {
				p := path.Join(parent, f.Path)
				if err := d.Remote.DeleteFile(r.Context(), req.Project, p); err != nil && !errs.IsNotFound(err) {
					// Keep the tree in step with the records already gone.
					for _, gone := range removed {
						s.Remove(strings.Split(gone, "/"))
					}
					return err
				}
				removed = append(removed, p)
			}
			s.Remove(req.Path)
			return nil
		})
		if len(removed) > 0 {
			publishPreview(r.Context(), d, req.Project, "")
		}
	})
}

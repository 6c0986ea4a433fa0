package routes

import (
	"net/http"

	"github.com/petervdpas/codeseed/internal/auth"
	"github.com/petervdpas/codeseed/internal/editor"
	"github.com/petervdpas/codeseed/internal/errs"
	"github.com/petervdpas/codeseed/internal/sitetemplates"
	"github.com/petervdpas/codeseed/internal/ui/assets"
	"github.com/petervdpas/codeseed/internal/ui/render"
	"github.com/petervdpas/codeseed/internal/ui/viewmodels"
)

func baseVM(r *http.Request, d Deps, title, active, content string) viewmodels.BaseVM {
	vm := viewmodels.BaseVM{
		Title:       title,
		Active:      active,
		ContentTmpl: content,
		BaseURL:     d.BaseURL,
		Debug:       d.Debug,
	}
	if s, ok := auth.FromContext(r.Context()); ok {
		vm.UserName = firstNonEmpty(s.User.Metadata.FullName, s.User.Metadata.PreferredUsername, s.User.Email)
	}
	return vm
}

func renderError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Errorf("internal error: %v", err)
		msg = "internal error"
	}
	render.RenderStandalone(w, status, "error", viewmodels.ErrorVM{Title: http.StatusText(status), Message: msg})
}

func registerHomeRoutes(mux *http.ServeMux, d Deps) {
	mux.Handle("/assets/", http.StripPrefix("/assets/", assets.Handler()))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			renderError(w, errs.NotFound("page", r.URL.Path))
			return
		}
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		list, err := d.Remote.ListProjects(r.Context())
		if err != nil {
			renderError(w, err)
			return
		}
		tpls, err := sitetemplates.List()
		if err != nil {
			renderError(w, err)
			return
		}
		render.Render(w, viewmodels.GalleryVM{
			BaseVM:    baseVM(r, d, "Projects", "gallery", "page.gallery"),
			Projects:  viewmodels.BuildProjectRows(list),
			Templates: tpls,
		})
	})

	handleGet(mux, "/project", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			renderError(w, errs.Invalid("id", "required"))
			return
		}
		files, err := d.Remote.LoadEntries(r.Context(), id)
		if err != nil {
			renderError(w, err)
			return
		}
		v := editor.NewFlatView(files)
		if file := r.URL.Query().Get("file"); file != "" {
			if err := v.Select(file); err != nil {
				renderError(w, err)
				return
			}
		}
		render.Render(w, viewmodels.BuildProjectVM(baseVM(r, d, "Project", "project", "page.project"), id, v))
	})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

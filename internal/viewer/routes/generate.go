package routes

import (
	"net/http"
	"sync"

	"github.com/petervdpas/codeseed/internal/errs"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	ProjectID  string            `json:"project_id,omitempty"`
	Files      map[string]string `json:"files,omitempty"`
	PreviewURL string            `json:"preview_url,omitempty"`
	Status     string            `json:"status"`
}

func registerGenerateRoutes(mux *http.ServeMux, d Deps) {
	var inflight sync.Map // session scope -> struct{}

	handlePost(mux, "/api/generate", func(w http.ResponseWriter, r *http.Request, req generateRequest) {
		scope := sessionScope(r)
		if _, busy := inflight.LoadOrStore(scope, struct{}{}); busy {
			writeJSONStatus(w, http.StatusConflict, map[string]string{"error": "A generation is already running."})
			return
		}
		defer inflight.Delete(scope)

		res, err := d.Remote.GenerateCode(r.Context(), req.Prompt)
		if err != nil {
			if !errs.IsValidation(err) {
				log.Warnf("generate: %v", err)
			}
			writeError(w, err)
			return
		}

		out := generateResponse{
			ProjectID:  res.ProjectID,
			Files:      res.Files,
			PreviewURL: res.PreviewURL,
			Status:     "generated",
		}
		if len(res.Files) > 0 {
			id, err := d.Remote.CreateProject(r.Context(), res.Files)
			if err != nil {
				writeError(w, err)
				return
			}
			out.ProjectID = id
			out.Status = "stored"
			log.Infof("generated project %s (%d files)", id, len(res.Files))
		} else if res.Stored {
			out.Status = "stored"
		}
		writeJSON(w, out)
	})
}

// Package routes holds the HTTP handlers of the viewer.
package routes

import (
	"net/http"
	"strings"

	logging "github.com/ipfs/go-log/v2"

	"github.com/petervdpas/codeseed/internal/auth"
	"github.com/petervdpas/codeseed/internal/editor"
	"github.com/petervdpas/codeseed/internal/preview"
	"github.com/petervdpas/codeseed/internal/remote"
)

var log = logging.Logger("codeseed/routes")

type Logs interface {
	ServeLogsJSON(w http.ResponseWriter, r *http.Request)
	ServeLogsSSE(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Remote   *remote.Adapter
	Sessions *editor.Sessions
	Composer *preview.Composer
	Hub      *preview.Hub
	Auth     *auth.Provider // nil disables sign-in
	Logs     Logs

	BaseURL string
	Debug   bool
}

func Register(mux *http.ServeMux, d Deps) {
	registerDocsRoutes(mux)
	registerAPILogRoutes(mux, d)
	registerAuthRoutes(mux, d)
	registerHomeRoutes(mux, d)

	registerProjectRoutes(mux, d)
	registerGenerateRoutes(mux, d)
	registerEditorRoutes(mux, d)
	registerPreviewRoutes(mux, d)
	registerLiveRoutes(mux, d)
}

// WithSession resolves the session cookie into the request context. When
// sign-in is enabled, API calls without a session get 401 and pages are
// redirected to the login flow.
func WithSession(d Deps, next http.Handler) http.Handler {
	if d.Auth == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(auth.SessionCookie); err == nil {
			if s, ok := d.Auth.Lookup(c.Value); ok {
				next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), s)))
				return
			}
		}
		if publicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/api/") {
			writeJSONStatus(w, http.StatusUnauthorized, map[string]string{"error": "Sign in required."})
			return
		}
		http.Redirect(w, r, "/auth/login", http.StatusFound)
	})
}

func publicPath(p string) bool {
	return strings.HasPrefix(p, "/auth/") || strings.HasPrefix(p, "/assets/") ||
		p == "/api/openapi.json" || p == "/api/me"
}

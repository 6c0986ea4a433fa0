// Package viewer serves the codeseed HTTP API, the preview pages and the log
// tail.
package viewer

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/petervdpas/codeseed/internal/auth"
	"github.com/petervdpas/codeseed/internal/editor"
	"github.com/petervdpas/codeseed/internal/preview"
	"github.com/petervdpas/codeseed/internal/remote"
	"github.com/petervdpas/codeseed/internal/viewer/routes"
)

var log = logging.Logger("codeseed/viewer")

type Viewer struct {
	Remote   *remote.Adapter
	Sessions *editor.Sessions
	Composer *preview.Composer
	Hub      *preview.Hub
	Auth     *auth.Provider // nil when sign-in is disabled
	Logs     *LogBuffer

	// canonical base URL, e.g. http://127.0.0.1:8080
	BaseURL string
	Debug   bool
}

// Handler builds the full route table.
func Handler(v Viewer) http.Handler {
	if v.Sessions == nil {
		v.Sessions = editor.NewSessions()
	}
	if v.Composer == nil {
		v.Composer = preview.NewComposer(preview.Options{})
	}
	if v.Hub == nil {
		v.Hub = preview.NewHub()
	}

	mux := http.NewServeMux()
	deps := routes.Deps{
		Remote:   v.Remote,
		Sessions: v.Sessions,
		Composer: v.Composer,
		Hub:      v.Hub,
		Auth:     v.Auth,
		BaseURL:  v.BaseURL,
		Debug:    v.Debug,
	}
	if v.Logs != nil {
		deps.Logs = v.Logs
	}
	routes.Register(mux, deps)
	return noCache(routes.WithSession(deps, mux))
}

// Start serves Handler(v) on addr until ctx is done, then shuts down
// gracefully.
func Start(ctx context.Context, addr string, v Viewer) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return Serve(ctx, ln, v)
}

// Serve is Start on an existing listener.
func Serve(ctx context.Context, ln net.Listener, v Viewer) error {
	srv := &http.Server{
		Handler:           Handler(v),
		ReadHeaderTimeout: 10 * time.Second,
		// requests, websockets included, end with ctx
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	log.Infof("listening on http://%s", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

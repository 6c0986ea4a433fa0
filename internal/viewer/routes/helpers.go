package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/petervdpas/codeseed/internal/auth"
	"github.com/petervdpas/codeseed/internal/errs"
)

// maxJSONBody caps request bodies decoded by handlePost.
const maxJSONBody = 12 << 20

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func handleGet(mux *http.ServeMux, path string, fn http.HandlerFunc) {
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		fn(w, r)
	})
}

// handlePost decodes the JSON body into T before calling fn.
func handlePost[T any](mux *http.ServeMux, path string, fn func(w http.ResponseWriter, r *http.Request, req T)) {
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var req T
		if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&req); err != nil {
			writeError(w, errs.Invalid("body", "invalid json: "+err.Error()))
			return
		}
		fn(w, r, req)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errs.IsValidation(err):
		return http.StatusBadRequest
	case errs.IsNotFound(err):
		return http.StatusNotFound
	case errs.IsTransport(err):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// writeError sends {"error": msg}. Transport errors carry their user-facing
// message; unexpected errors are logged and answered generically.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Errorf("internal error: %v", err)
		msg = "internal error"
	}
	writeJSONStatus(w, status, map[string]string{"error": msg})
}

func projectParam(r *http.Request) (string, error) {
	p := strings.TrimSpace(r.URL.Query().Get("project"))
	if p == "" {
		return "", errs.Invalid("project", "required")
	}
	return p, nil
}

// sessionKey scopes editor state to the signed-in session and project.
// Without sign-in every browser shares the "local" scope.
func sessionKey(r *http.Request, project string) string {
	return sessionScope(r) + project
}

func sessionScope(r *http.Request) string {
	if s, ok := auth.FromContext(r.Context()); ok {
		return s.ID + "/"
	}
	return "local/"
}

package routes

import (
	"net/http"
	"strings"

	"github.com/petervdpas/codeseed/internal/auth"
	"github.com/petervdpas/codeseed/internal/errs"
)

// stateCookieName binds a pending login to the browser that started it.
const (
	stateCookieName = "codeseed_oauth_state"
	stateCookieAge  = 600
)

func registerAuthRoutes(mux *http.ServeMux, d Deps) {
	handleGet(mux, "/api/me", func(w http.ResponseWriter, r *http.Request) {
		if d.Auth == nil {
			writeJSON(w, map[string]any{"auth_enabled": false})
			return
		}
		s, ok := auth.FromContext(r.Context())
		if !ok {
			writeJSON(w, map[string]any{"auth_enabled": true, "signed_in": false})
			return
		}
		writeJSON(w, map[string]any{"auth_enabled": true, "signed_in": true, "user": s.User})
	})

	if d.Auth == nil {
		return
	}
	secure := strings.HasPrefix(d.BaseURL, "https://")

	stateCookie := func(value string, maxAge int) *http.Cookie {
		return &http.Cookie{
			Name:     stateCookieName,
			Value:    value,
			Path:     "/auth/",
			MaxAge:   maxAge,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		}
	}

	handleGet(mux, "/auth/login", func(w http.ResponseWriter, r *http.Request) {
		u, state := d.Auth.Begin()
		http.SetCookie(w, stateCookie(state, stateCookieAge))
		http.Redirect(w, r, u, http.StatusFound)
	})

	handleGet(mux, "/auth/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			writeError(w, errs.Invalid("login", e))
			return
		}
		state := q.Get("state")
		c, err := r.Cookie(stateCookieName)
		if err != nil || state == "" || c.Value != state {
			writeError(w, errs.Invalid("state", "does not match this browser"))
			return
		}
		http.SetCookie(w, stateCookie("", -1))
		s, err := d.Auth.Complete(r.Context(), state, q.Get("code"))
		if err != nil {
			log.Warnf("sign-in: %v", err)
			writeError(w, err)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     auth.SessionCookie,
			Value:    s.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
		log.Infof("signed in %s", s.User.Email)
		http.Redirect(w, r, "/", http.StatusFound)
	})

	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		if c, err := r.Cookie(auth.SessionCookie); err == nil && d.Auth.SignOut(c.Value) {
			n := d.Sessions.DropPrefix(c.Value + "/")
			log.Debugf("signed out, dropped %d editor sessions", n)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     auth.SessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, map[string]string{"status": "signed_out"})
	})
}

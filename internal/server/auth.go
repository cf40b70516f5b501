package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/teemow/inboxsort/internal/google"
	"github.com/teemow/inboxsort/internal/logging"
)

const (
	stateCookieName   = "inboxsort_oauth_state"
	stateCookieMaxAge = 600
)

// handleGoogleAuth serves GET /auth/google by redirecting to the consent page.
func (a *api) handleGoogleAuth(w http.ResponseWriter, r *http.Request) {
	flow := a.sc.OAuth()
	if flow == nil {
		writeError(w, http.StatusServiceUnavailable, "Google OAuth is not configured")
		return
	}

	state, err := google.NewState()
	if err != nil {
		a.sc.Logger().Error("failed to create oauth state", logging.Err(err))
		http.Error(w, "Auth failed", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/auth",
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, flow.AuthURL(state), http.StatusFound)
}

// handleGoogleCallback serves GET /auth/google/callback. The access token is
// passed to the frontend in the redirect URL and not kept.
func (a *api) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	logger := logging.WithOperation(a.sc.Logger(), "oauth.callback")

	flow := a.sc.OAuth()
	if flow == nil {
		writeError(w, http.StatusServiceUnavailable, "Google OAuth is not configured")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing code", http.StatusBadRequest)
		return
	}

	cookie, err := r.Cookie(stateCookieName)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		http.Error(w, "Invalid state", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Path: "/auth", MaxAge: -1})

	tok, err := flow.Exchange(r.Context(), code)
	if err != nil {
		logger.Error("oauth code exchange failed", logging.Err(err))
		http.Error(w, "Auth callback failed", http.StatusInternalServerError)
		return
	}

	logger.Info("oauth tokens fetched",
		slog.Bool("has_refresh_token", tok.RefreshToken != ""))
	http.Redirect(w, r, google.DashboardURL(a.sc.FrontendURL(), tok.AccessToken), http.StatusFound)
}

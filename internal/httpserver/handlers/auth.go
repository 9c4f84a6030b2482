package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/session"
)

const stateCookieName = "linkdeck_oauth_state"

// Login starts the interactive sign-in flow: it parks a state nonce in
// a short-lived cookie and hands control to the OAuth provider.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Already signed in: nothing to do.
		if _, ok := session.PrincipalFromContext(r.Context()); ok {
			http.Redirect(w, r, d.PostLoginRedirect, http.StatusSeeOther)
			return
		}

		state := newState()
		http.SetCookie(w, &http.Cookie{
			Name:     stateCookieName,
			Value:    state,
			Path:     "/",
			HttpOnly: true,
			Secure:   d.SecureCookies,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   300,
		})

		http.Redirect(w, r, d.OAuth.AuthCodeURL(state), http.StatusFound)
	}
}

// Callback resumes the sign-in flow: it verifies the state nonce,
// exchanges the code for the user's profile and establishes a session.
func Callback(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(stateCookieName)
		if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
			d.Logger.Warn("oauth callback with bad state",
				logger.String("remote_ip", r.RemoteAddr))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		// State is single-use.
		http.SetCookie(w, &http.Cookie{Name: stateCookieName, Path: "/", MaxAge: -1})

		code := r.URL.Query().Get("code")
		if code == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		user, err := session.FetchGoogleUser(r.Context(), d.OAuth, code)
		if err != nil {
			d.Logger.Warn("oauth exchange failed", logger.Error(err))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		rec, err := d.Sessions.Establish(r.Context(), w, user)
		if err != nil {
			d.Logger.Error("failed to establish session", logger.Error(err))
			http.Error(w, "sign-in failed", http.StatusBadGateway)
			return
		}

		d.Logger.Info("session established",
			logger.String("user_id", rec.UserID),
			logger.String("session_id", rec.ID))
		http.Redirect(w, r, d.PostLoginRedirect, http.StatusSeeOther)
	}
}

// Logout ends the caller's session. Open views are closed first so no
// subscription outlives its authorization context, then the session
// record is deleted and the browser redirected to the sign-in page.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := session.PrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		d.Views.CloseAll(p.SessionID)

		if err := d.Sessions.Destroy(r.Context(), w, p.SessionID); err != nil {
			d.Logger.Warn("failed to delete session record",
				logger.String("session_id", p.SessionID),
				logger.Error(err))
		}

		d.Logger.Info("session ended", logger.String("session_id", p.SessionID))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

func newState() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

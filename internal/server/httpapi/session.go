package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/confidant/internal/server/auth"
	"github.com/dmitrijs2005/confidant/internal/server/sessions"
)

// session resolves the browser session from the signed cookie, creating a
// fresh one when the cookie is absent, expired, tampered with, or points at
// a session this process no longer knows.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *sessions.Session {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		if id, err := auth.GetSessionIDFromToken(c.Value, s.jwtSecret); err == nil {
			if sess := s.sessions.Get(id); sess != nil {
				return sess
			}
		}
	}

	sess := s.sessions.Create()

	token, err := auth.GenerateToken(sess.ID, s.jwtSecret, s.sessionValidity)
	if err != nil {
		// Without a cookie the session dies with this response; the visitor
		// just starts over on the next request.
		s.logger.Error(r.Context(), "error signing session cookie", "error", err)
		return sess
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return sess
}

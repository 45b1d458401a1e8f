package web

import (
	"net/http"

	"github.com/google/uuid"

	"tryon-studio/internal/form"
)

const sessionCookie = "tryon_session"

// controller returns the caller's form controller, starting a new session
// (and setting its cookie) when the request carries none.
func (s *Server) controller(w http.ResponseWriter, r *http.Request) *form.Controller {
	if id, ok := sessionID(r); ok {
		return s.store.Get(id)
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s.store.Get(id)
}

// lookup finds an existing session without creating one.
func (s *Server) lookup(r *http.Request) (*form.Controller, bool) {
	id, ok := sessionID(r)
	if !ok {
		return nil, false
	}
	return s.store.Lookup(id)
}

func sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

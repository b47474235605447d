package auth

import (
	"net/http"
	"strings"
	"time"
)

const (
	CookieName = "batchdesk_session"
	LoginPath  = "/login"
)

// RequireSession lets requests with a live session through, with the session
// in their context. Browsers are redirected to the login page; HTMX and JSON
// clients get 401 and an HX-Redirect header.
func RequireSession(g *Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(CookieName); err == nil {
				if s, ok := g.Lookup(c.Value); ok {
					next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
					return
				}
			}
			if r.Header.Get("HX-Request") == "true" || strings.Contains(r.Header.Get("Accept"), "application/json") {
				w.Header().Set("HX-Redirect", LoginPath)
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		})
	}
}

// SetCookie writes the session cookie. A ttl of zero makes it a browser-session cookie.
func SetCookie(w http.ResponseWriter, r *http.Request, s Session, ttl time.Duration) {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	}
	if ttl > 0 {
		c.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, c)
}

func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

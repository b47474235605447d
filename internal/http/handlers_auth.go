package http

import (
	"errors"
	"net/http"

	"batchdesk/internal/auth"
	"batchdesk/internal/core"
	applog "batchdesk/internal/log"
)

type loginView struct {
	Username string
	Error    string
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, view loginView) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "login.html", view); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Login template execution failed",
			applog.FieldError, err, applog.FieldOperation, applog.OpRender)
	}
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(auth.CookieName); err == nil {
		if _, ok := s.gate.Lookup(c.Value); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}
	s.renderLogin(w, r, http.StatusOK, loginView{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderLogin(w, r, http.StatusBadRequest, loginView{Error: "Invalid request format"})
		return
	}
	username := sanitizeInput(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	sess, err := s.gate.Login(r.Context(), username, password)
	if err != nil {
		if !errors.Is(err, core.ErrInvalidCredentials) {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Login failed",
				applog.FieldError, err, applog.FieldOperation, applog.OpLogin)
		}
		s.renderLogin(w, r, http.StatusUnauthorized, loginView{Username: username, Error: "Invalid username or password"})
		return
	}

	s.loginLimiter.Reset(s.securityDetector.ExtractClientIP(r))
	auth.SetCookie(w, r, sess, s.sessionTTL)
	if r.Header.Get("HX-Request") == "true" {
		NewHTMXResponse(http.StatusOK).Redirect("/").Write(w)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLoginThrottled(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Login rate limit exceeded",
		applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		applog.FieldComponent, applog.ComponentRateLimit)
	s.renderLogin(w, r, http.StatusTooManyRequests, loginView{Error: "Too many attempts. Please wait a minute and try again."})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := auth.FromContext(r.Context()); ok {
		s.gate.Logout(r.Context(), sess.ID)
	}
	auth.ClearCookie(w)
	if r.Header.Get("HX-Request") == "true" {
		NewHTMXResponse(http.StatusOK).Redirect(auth.LoginPath).Write(w)
		return
	}
	http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
}

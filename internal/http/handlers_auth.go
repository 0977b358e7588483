package http

import (
	"errors"
	"net/http"
	"net/url"

	"bizai/internal/api"
	"bizai/internal/core"
	"bizai/internal/log"
	"bizai/internal/session"
)

// Demo credentials prefilled on the login form.
const (
	demoEmail    = "demo@business.ai"
	demoPassword = "demo123"
)

// currentSession returns the visitor's session, creating one and setting the
// cookie when the request carries none or an expired one.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) session.Session {
	var id string
	if c, err := r.Cookie(session.CookieName); err == nil {
		id = c.Value
	}
	sess, created := s.sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     session.CookieName,
			Value:    sess.ID,
			Path:     "/",
			MaxAge:   int(s.cfg.SessionTTL.Seconds()),
			HttpOnly: true,
			Secure:   s.cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

func (s *Server) nav(sess session.Session, active core.Module) navView {
	return navView{
		Modules:       s.catalog.All(),
		Active:        active,
		User:          sess.User,
		Authenticated: sess.Authenticated(),
		RequireLogin:  s.cfg.RequireLogin,
	}
}

// requireLogin redirects anonymous visitors to the login page when login is
// enforced. It reports whether the handler may continue.
func (s *Server) requireLogin(w http.ResponseWriter, r *http.Request, sess session.Session) bool {
	if !s.cfg.RequireLogin || sess.Authenticated() {
		return true
	}
	s.redirectToLogin(w, r, r.URL.Path)
	return false
}

func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request, next string) {
	target := "/login"
	if next != "" {
		target += "?next=" + url.QueryEscape(next)
	}
	if isHTMX(r) {
		NewHTMXResponse().Redirect(target).Write(w)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(w, r)
	s.writePage(w, r, http.StatusOK, "login.html", loginPage{
		Nav:      s.nav(sess, ""),
		Email:    demoEmail,
		Password: demoPassword,
		Next:     SafeNext(r.URL.Query().Get("next"), "/dashboard"),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(w, r)
	logger := log.FromContext(r.Context())

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	email := parser.Get("email")
	password := parser.Get("password")
	next := SafeNext(parser.Get("next"), "/dashboard")

	result, err := s.api.Login(r.Context(), email, password)
	if err != nil {
		logger.WarnContext(r.Context(), "Login failed", log.FieldError, err, log.FieldOperation, log.OpLogin)
		status := http.StatusBadGateway
		if errors.Is(err, api.ErrUnauthorized) {
			status = http.StatusUnauthorized
		}
		s.writePage(w, r, status, "login.html", loginPage{
			Nav:   s.nav(sess, ""),
			Email: email,
			Next:  next,
			Error: loginErrorMessage(err),
		})
		return
	}

	if _, ok := s.sessions.Update(sess.ID, func(cur *session.Session) {
		cur.Token = result.AccessToken
		cur.User = result.User
	}); !ok {
		// expired between the two calls; start over with a fresh session
		s.redirectToLogin(w, r, next)
		return
	}
	logger.InfoContext(r.Context(), "User logged in", "email", result.User.Email, log.FieldOperation, log.OpLogin)

	if isHTMX(r) {
		NewHTMXResponse().Redirect(next).Write(w)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// loginErrorMessage is the backend's message when it sent one.
func loginErrorMessage(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return "Login failed"
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if c, err := r.Cookie(session.CookieName); err == nil {
		s.sessions.Update(c.Value, func(cur *session.Session) { cur.SignOut() })
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "User logged out", log.FieldOperation, log.OpLogout)

	if isHTMX(r) {
		NewHTMXResponse().Redirect("/").Write(w)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

package controller

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"benchshare/internal/auth"
	"benchshare/internal/session"
	"benchshare/internal/web/viewmodels"

	"go.uber.org/zap"
)

// Auth provides auth handlers
type Auth struct {
	AuthService *auth.Service
	Sessions    *session.Manager
	Templates   map[string]*template.Template
	Logger      *zap.Logger
}

// Register registers the auth routes
func (a *Auth) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /login", a.loginGet)
	mux.HandleFunc("POST /login", a.loginPost)
	mux.HandleFunc("GET /logout", a.logout)
	mux.HandleFunc("GET /register", a.registerGet)
	mux.HandleFunc("POST /register", a.registerPost)
}

func (a *Auth) render(w http.ResponseWriter, name string, status int, data viewmodels.Form) {
	var buf bytes.Buffer
	if err := a.Templates[name].ExecuteTemplate(&buf, "layout.html", data); err != nil {
		a.Logger.Error("template failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (a *Auth) loginGet(w http.ResponseWriter, r *http.Request) {
	a.render(w, "login.html", http.StatusOK, viewmodels.Form{Authorized: currentSession(r).Authenticated()})
}

func (a *Auth) loginPost(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	user, err := a.AuthService.Authenticate(r.Context(), username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		a.render(w, "login.html", http.StatusUnauthorized, viewmodels.Form{
			Values: map[string]string{"username": username},
			Errors: map[string]string{"form": "Invalid credentials"},
		})
		return
	}
	if err != nil {
		a.Logger.Error("login failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sessionID, err := a.Sessions.Renew(w, r, currentSession(r))
	if err == nil {
		err = a.AuthService.Login(r.Context(), sessionID, user)
	}
	if err != nil {
		a.Logger.Error("login failed", zap.String("username", username), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (a *Auth) logout(w http.ResponseWriter, r *http.Request) {
	if err := a.AuthService.Logout(r.Context(), currentSession(r).ID); err != nil {
		a.Logger.Error("logout failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (a *Auth) registerGet(w http.ResponseWriter, r *http.Request) {
	a.render(w, "register.html", http.StatusOK, viewmodels.Form{Authorized: currentSession(r).Authenticated()})
}

func (a *Auth) registerPost(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	displayName := r.FormValue("display_name")
	password := r.FormValue("password")

	_, err := a.AuthService.RegisterUser(r.Context(), username, displayName, password, false)
	if err != nil {
		a.render(w, "register.html", http.StatusBadRequest, viewmodels.Form{
			Values: map[string]string{"username": username, "display_name": displayName},
			Errors: map[string]string{"form": "Registration failed: " + err.Error()},
		})
		return
	}

	http.Redirect(w, r, "/login", http.StatusFound)
}

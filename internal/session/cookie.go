package session

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	cookieName  = "benchshare-session"
	idValueName = "sid"
)

// NewCookieStore creates the cookie store that carries session ids.
func NewCookieStore(sessionKey string, secure bool) (*sessions.CookieStore, error) {
	if len(sessionKey) < 32 {
		return nil, errors.New("session key must be at least 32 characters long")
	}
	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options.HttpOnly = true
	store.Options.Path = "/"
	store.Options.MaxAge = 86400 * 30
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	return store, nil
}

// Manager ties the session cookie to the server-side value store.
type Manager struct {
	Cookies sessions.Store
	Values  Store
}

// NewManager creates a new session manager.
func NewManager(cookies sessions.Store, values Store) *Manager {
	return &Manager{Cookies: cookies, Values: values}
}

// Identify returns the session id of the request, issuing a new cookie when
// the visitor has none. It must run before the response is written.
func (m *Manager) Identify(w http.ResponseWriter, r *http.Request) (string, error) {
	// A cookie that fails to decode yields a fresh session.
	s, _ := m.Cookies.Get(r, cookieName)
	if id, ok := s.Values[idValueName].(string); ok && id != "" {
		return id, nil
	}
	return m.issue(w, r)
}

// issue stores a fresh session id in the cookie.
func (m *Manager) issue(w http.ResponseWriter, r *http.Request) (string, error) {
	s, _ := m.Cookies.Get(r, cookieName)
	id := uuid.NewString()
	s.Values[idValueName] = id
	if r.Header.Get("X-Forwarded-Proto") == "https" {
		s.Options.Secure = true
	}
	if err := s.Save(r, w); err != nil {
		return "", err
	}
	return id, nil
}

// Renew moves the visitor to a new session id, carrying over owned pages and
// counted views. The user and admin values stay behind with the old id.
func (m *Manager) Renew(w http.ResponseWriter, r *http.Request, st State) (string, error) {
	id, err := m.issue(w, r)
	if err != nil {
		return "", err
	}
	if err := m.Values.Set(r.Context(), id, ValueOwn, st.Own); err != nil {
		return "", fmt.Errorf("carry session own: %w", err)
	}
	if err := m.Values.Set(r.Context(), id, ValueHits, st.Hits); err != nil {
		return "", fmt.Errorf("carry session hits: %w", err)
	}
	return id, nil
}

// Load identifies the request and reads its State.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) (State, error) {
	id, err := m.Identify(w, r)
	if err != nil {
		return State{}, err
	}
	return Load(r.Context(), m.Values, id)
}

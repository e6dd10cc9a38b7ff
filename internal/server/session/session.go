package session

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName   = "ph_session"
	userIDKey     = "user_id"
	oauthStateKey = "oauth_state"
)

// Manager оборачивает cookie-backed сессию.
// Хранит id залогиненного пользователя и одноразовый OAuth state.
type Manager struct {
	store *sessions.CookieStore
	ttl   int
}

// NewManager creates a cookie session manager.
// secret authenticates the cookie; ttlSeconds bounds the session lifetime.
func NewManager(secret string, ttlSeconds int) *Manager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   ttlSeconds,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{store: store, ttl: ttlSeconds}
}

// UserID возвращает id пользователя из сессии, пустую строку если сессии нет
func (m *Manager) UserID(r *http.Request) string {
	sess, err := m.store.Get(r, sessionName)
	if err != nil {
		// Поврежденная cookie равносильна отсутствию сессии
		return ""
	}

	userID, _ := sess.Values[userIDKey].(string)
	return userID
}

// SetUserID привязывает пользователя к сессии
func (m *Manager) SetUserID(w http.ResponseWriter, r *http.Request, userID string) error {
	sess, _ := m.store.Get(r, sessionName)
	sess.Values[userIDKey] = userID

	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// SetOAuthState сохраняет anti-forgery state для OAuth редиректа
func (m *Manager) SetOAuthState(w http.ResponseWriter, r *http.Request, state string) error {
	sess, _ := m.store.Get(r, sessionName)
	sess.Values[oauthStateKey] = state

	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// ConsumeOAuthState возвращает сохраненный state и сразу удаляет его:
// значение одноразовое независимо от исхода проверки
func (m *Manager) ConsumeOAuthState(w http.ResponseWriter, r *http.Request) string {
	sess, err := m.store.Get(r, sessionName)
	if err != nil {
		return ""
	}

	state, _ := sess.Values[oauthStateKey].(string)
	delete(sess.Values, oauthStateKey)
	_ = sess.Save(r, w)

	return state
}

// Clear завершает сессию пользователя
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, sessionName)

	delete(sess.Values, userIDKey)
	delete(sess.Values, oauthStateKey)
	sess.Options.MaxAge = -1

	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	return nil
}

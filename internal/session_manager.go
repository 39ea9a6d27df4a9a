package internal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/laika-mvc/laika/pkg/session"
)

// Default session configuration.
const (
	defaultSessionCookieName = "laika_session"
	defaultSessionMaxAge     = 2 * time.Hour
)

// SessionManager loads and persists cookie-identified sessions.
type SessionManager struct {
	store      session.Store
	logger     *slog.Logger
	cookieName string
	domain     string
	path       string
	maxAge     time.Duration
	sameSite   http.SameSite
	secure     bool
	httpOnly   bool
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// NewSessionManager creates a SessionManager backed by store.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:      store,
		cookieName: defaultSessionCookieName,
		maxAge:     defaultSessionMaxAge,
		path:       "/",
		httpOnly:   true,
		sameSite:   http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookieName = name
		}
	}
}

// WithSessionMaxAge sets the session lifetime.
func WithSessionMaxAge(d time.Duration) SessionOption {
	return func(sm *SessionManager) {
		if d > 0 {
			sm.maxAge = d
		}
	}
}

// WithSessionDomain sets the session cookie domain.
func WithSessionDomain(domain string) SessionOption {
	return func(sm *SessionManager) {
		sm.domain = domain
	}
}

// WithSessionSecure sets the session cookie Secure flag.
func WithSessionSecure(secure bool) SessionOption {
	return func(sm *SessionManager) {
		sm.secure = secure
	}
}

// WithSessionSameSite sets the session cookie SameSite attribute.
func WithSessionSameSite(sameSite http.SameSite) SessionOption {
	return func(sm *SessionManager) {
		sm.sameSite = sameSite
	}
}

// SetLogger sets the logger for session events.
func (sm *SessionManager) SetLogger(l *slog.Logger) {
	if l != nil {
		sm.logger = l
	}
}

// Load returns the session named by the request cookie, or a new one when
// the cookie is missing, unknown or expired.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*session.Session, error) {
	if cookie, err := r.Cookie(sm.cookieName); err == nil && cookie.Value != "" {
		sess, err := sm.store.Get(ctx, cookie.Value)
		switch {
		case err == nil:
			return sess, nil
		case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		default:
			return nil, err
		}
	}

	id, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	return session.New(id, sm.maxAge), nil
}

// Persist saves a new or modified session and writes its cookie.
func (sm *SessionManager) Persist(ctx context.Context, w http.ResponseWriter, sess *session.Session) error {
	if !sess.IsDirty() && !sess.IsNew() {
		return nil
	}
	sess.ExpiresAt = time.Now().Add(sm.maxAge)
	if err := sm.store.Save(ctx, sess); err != nil {
		return err
	}
	sess.ClearDirty()
	sess.ClearNew()
	http.SetCookie(w, sm.cookie(sess.ID, int(sm.maxAge.Seconds())))
	return nil
}

// Regenerate moves the session to a fresh id, deleting the old record.
func (sm *SessionManager) Regenerate(ctx context.Context, sess *session.Session) error {
	id, err := generateToken()
	if err != nil {
		return fmt.Errorf("generate session id: %w", err)
	}
	if !sess.IsNew() {
		if err := sm.store.Delete(ctx, sess.ID); err != nil {
			return err
		}
	}
	sess.ID = id
	sess.MarkDirty()
	return nil
}

// Destroy deletes the session and expires its cookie.
func (sm *SessionManager) Destroy(ctx context.Context, w http.ResponseWriter, sess *session.Session) error {
	if err := sm.store.Delete(ctx, sess.ID); err != nil {
		return err
	}
	http.SetCookie(w, sm.cookie("", -1))
	return nil
}

func (sm *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sm.cookieName,
		Value:    value,
		Path:     sm.path,
		Domain:   sm.domain,
		MaxAge:   maxAge,
		Secure:   sm.secure,
		HttpOnly: sm.httpOnly,
		SameSite: sm.sameSite,
	}
}

// generateToken creates a cryptographically secure random token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

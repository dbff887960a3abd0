package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CookieName is the session cookie identifier, shared with the stored
// payload key prefix so both sides stay on the same version.
const CookieName = "wims-session-v4"

// User roles.
const (
	RoleAdmin    = "admin"
	RoleSalesman = "salesman"
)

// SessionUser is the user identity carried by a session.
type SessionUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Session holds one authenticated session.
type Session struct {
	ID        string      `json:"id"`
	User      SessionUser `json:"user"`
	Timestamp time.Time   `json:"timestamp"`
	Remember  bool        `json:"remember"`
}

// SessionManager orchestrates cookie based sessions backed by Redis.
// Manual logins expire after ttl; "remembered" logins after rememberTTL.
type SessionManager struct {
	client      *redis.Client
	ttl         time.Duration
	rememberTTL time.Duration
	secure      bool
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, ttl, rememberTTL time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:      client,
		ttl:         ttl,
		rememberTTL: rememberTTL,
		secure:      secure,
	}
}

// Create issues a new session for user, persists it and writes the cookie.
func (sm *SessionManager) Create(ctx context.Context, w http.ResponseWriter, user SessionUser, remember bool) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		User:      user,
		Timestamp: time.Now().UTC(),
		Remember:  remember,
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	ttl := sm.lifetime(remember)
	if err := sm.client.Set(ctx, sm.redisKey(sess.ID), data, ttl).Err(); err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(ttl),
	})
	return sess, nil
}

// Load resolves the session referenced by the request cookie. A missing
// cookie or an expired session yields (nil, nil).
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}
	data, err := sm.client.Get(ctx, sm.redisKey(cookie.Value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Destroy deletes the stored session and expires the cookie.
func (sm *SessionManager) Destroy(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return nil
	}
	if err := sm.client.Del(ctx, sm.redisKey(sess.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// TTL exposes the configured session lifetime for the given remember flag.
func (sm *SessionManager) TTL(remember bool) time.Duration {
	return sm.lifetime(remember)
}

func (sm *SessionManager) lifetime(remember bool) time.Duration {
	if remember && sm.rememberTTL > 0 {
		return sm.rememberTTL
	}
	return sm.ttl
}

func (sm *SessionManager) redisKey(id string) string {
	return CookieName + ":" + id
}

// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/dalemusser/applyhub/internal/app/system/webutil"
)

// Session value keys.
const (
	adminAuthKey = "admin_authenticated"
	adminUserKey = "admin_username"
	userIDKey    = "user_id"
	userEmailKey = "user_email"
	userNameKey  = "user_name"
	userRoleKey  = "user_role"
)

// SessionUser is the member identity cached in the session and injected
// into r.Context().
type SessionUser struct {
	ID       string
	Email    string
	FullName string
	Role     string
}

type ctxKey string

const (
	currentUserKey ctxKey = "currentUser"
	adminCtxKey    ctxKey = "adminUser"
)

// SessionManager owns the cookie store and the auth middleware. Handlers
// receive it by injection so tests can construct their own with a fixed key.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager creates a SessionManager backed by a cookie store.
// If sessionKey is empty a random key is generated, which invalidates all
// sessions on restart; a warning is logged so operators notice.
//
// In production (secure=true) cookies are Secure + SameSite=None for
// cross-site HTTPS use. In local dev over http use secure=false so the
// browser accepts the cookie.
func NewSessionManager(sessionKey, sessionName, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		sessionKey = string(securecookie.GenerateRandomKey(32))
		logger.Warn("no session key configured, generated a random one; sessions will not survive restarts")
	} else if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{
		store: store,
		name:  sessionName,
		log:   logger,
	}, nil
}

// SetAdmin marks the session as an authenticated admin.
func (sm *SessionManager) SetAdmin(w http.ResponseWriter, r *http.Request, username string) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[adminAuthKey] = true
	sess.Values[adminUserKey] = username
	return sess.Save(r, w)
}

// SetUser marks the session as an authenticated member.
func (sm *SessionManager) SetUser(w http.ResponseWriter, r *http.Request, u SessionUser) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[userIDKey] = u.ID
	sess.Values[userEmailKey] = u.Email
	sess.Values[userNameKey] = u.FullName
	sess.Values[userRoleKey] = u.Role
	return sess.Save(r, w)
}

// Clear destroys the session.
func (sm *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSession injects the session identity (admin username and/or member
// user) into the request context. Must be installed before any handler that
// calls IsAdmin or CurrentUser.
func (sm *SessionManager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sm.store.Get(r, sm.name)

		if isAdmin, _ := sess.Values[adminAuthKey].(bool); isAdmin {
			username := getString(sess, adminUserKey)
			r = r.WithContext(context.WithValue(r.Context(), adminCtxKey, username))
		}

		if id := getString(sess, userIDKey); id != "" {
			u := &SessionUser{
				ID:       id,
				Email:    getString(sess, userEmailKey),
				FullName: getString(sess, userNameKey),
				Role:     getString(sess, userRoleKey),
			}
			r = r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
		}

		next.ServeHTTP(w, r)
	})
}

// IsAdmin reports whether the request carries an authenticated admin
// session and returns the admin username.
func IsAdmin(r *http.Request) (string, bool) {
	username, ok := r.Context().Value(adminCtxKey).(string)
	return username, ok
}

// CurrentUser returns the member user and a "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// RequireAdmin rejects requests without an admin session.
// API callers get a 403 with {"error":"Authentication required"}.
func (sm *SessionManager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IsAdmin(r); !ok {
			webutil.JSON(w, http.StatusForbidden, map[string]any{"error": "Authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects requests without a member session.
func (sm *SessionManager) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			webutil.JSON(w, http.StatusForbidden, map[string]any{"error": "Authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithTestAdmin injects an admin identity into the request context.
// For handler tests; production code goes through LoadSession.
func WithTestAdmin(r *http.Request, username string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), adminCtxKey, username))
}

// WithTestUser injects a member user into the request context.
// For handler tests; production code goes through LoadSession.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

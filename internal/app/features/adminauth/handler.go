// internal/app/features/adminauth/handler.go
package adminauth

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dalemusser/applyhub/internal/app/store/audit"
	"github.com/dalemusser/applyhub/internal/app/system/auditlog"
	"github.com/dalemusser/applyhub/internal/app/system/auth"
	"github.com/dalemusser/applyhub/internal/app/system/ratelimit"
	"github.com/dalemusser/applyhub/internal/app/system/timeouts"
	"github.com/dalemusser/applyhub/internal/app/system/webutil"
)

// Credentials is the configured admin identity. PasswordHash is the bcrypt
// hash of the admin password, computed at startup.
type Credentials struct {
	Username     string
	PasswordHash string
}

// Handler serves the admin login/logout/status endpoints and the audit
// trail views.
type Handler struct {
	Sessions *auth.SessionManager
	Limiter  *ratelimit.LoginLimiter
	Creds    Credentials
	Audit    *auditlog.Logger
	Events   *audit.Store
	Errs     *webutil.ErrorLogger
	Log      *zap.Logger
}

// NewHandler constructs an adminauth Handler.
func NewHandler(sessions *auth.SessionManager, limiter *ratelimit.LoginLimiter, creds Credentials, auditLog *auditlog.Logger, events *audit.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Sessions: sessions,
		Limiter:  limiter,
		Creds:    creds,
		Audit:    auditLog,
		Events:   events,
		Errs:     webutil.NewErrorLogger(logger),
		Log:      logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/admin/login.
//
// On success: {"success":true}. On bad credentials: 401. Attempts are rate
// limited per IP and per username.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webutil.Fail(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if ok, reason := h.Limiter.Check(r, req.Username); !ok {
		h.Audit.LoginRateLimited(r.Context(), r, req.Username)
		webutil.Fail(w, http.StatusTooManyRequests, reason)
		return
	}

	if req.Username != h.Creds.Username ||
		bcrypt.CompareHashAndPassword([]byte(h.Creds.PasswordHash), []byte(req.Password)) != nil {
		h.Audit.AdminLoginFailed(r.Context(), r, req.Username, "invalid credentials")
		webutil.Fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := h.Sessions.SetAdmin(w, r, req.Username); err != nil {
		h.Log.Error("failed to save admin session", zap.Error(err))
		webutil.Fail(w, http.StatusInternalServerError, "Session error")
		return
	}

	h.Limiter.ResetEmail(req.Username)
	h.Audit.AdminLoginSuccess(r.Context(), r, req.Username)
	webutil.JSON(w, http.StatusOK, map[string]any{"success": true})
}

// Logout handles POST /api/admin/logout. Always succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.IsAdmin(r)
	if err := h.Sessions.Clear(w, r); err != nil {
		h.Log.Error("session destruction error", zap.Error(err))
	}
	if username != "" {
		h.Audit.AdminLogout(r.Context(), r, username)
	}
	webutil.JSON(w, http.StatusOK, map[string]any{"success": true})
}

// Status handles GET /api/admin/status. Reports whether the caller has an
// admin session; never an error.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	_, authenticated := auth.IsAdmin(r)
	webutil.JSON(w, http.StatusOK, map[string]any{"authenticated": authenticated})
}

// RecentActivity handles GET /api/admin/audit.
//
// Without query parameters it returns the most recent events. Optional
// filters: category, event, actor, limit (capped at 500).
func (h *Handler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := audit.QueryFilter{
		Category:  q.Get("category"),
		EventType: q.Get("event"),
		Actor:     q.Get("actor"),
		Limit:     parseLimit(q.Get("limit"), 100),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var events []audit.Event
	var err error
	if filter.Category == "" && filter.EventType == "" && filter.Actor == "" {
		events, err = h.Events.GetRecent(ctx, filter.Limit)
	} else {
		events, err = h.Events.Query(ctx, filter)
	}
	if err != nil {
		h.Errs.ServerError(w, r, "audit query failed", err, "Failed to fetch audit events")
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	webutil.JSON(w, http.StatusOK, map[string]any{"success": true, "data": events})
}

// FailedLogins handles GET /api/admin/audit/failed-logins.
//
// Returns failed admin and member login attempts within the lookback
// window. Optional parameters: since (a duration such as "24h", default
// 24h) and limit.
func (h *Handler) FailedLogins(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	window := 24 * time.Hour
	if raw := q.Get("since"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			webutil.Fail(w, http.StatusBadRequest, "Invalid since duration")
			return
		}
		window = d
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Events.GetFailedLogins(ctx, time.Now().Add(-window), parseLimit(q.Get("limit"), 100))
	if err != nil {
		h.Errs.ServerError(w, r, "failed-login query failed", err, "Failed to fetch audit events")
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	webutil.JSON(w, http.StatusOK, map[string]any{"success": true, "data": events})
}

func parseLimit(raw string, def int64) int64 {
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	if n > 500 {
		return 500
	}
	return n
}

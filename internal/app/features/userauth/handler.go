// internal/app/features/userauth/handler.go
package userauth

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dalemusser/applyhub/internal/app/store/accounts"
	"github.com/dalemusser/applyhub/internal/app/system/auditlog"
	"github.com/dalemusser/applyhub/internal/app/system/auth"
	"github.com/dalemusser/applyhub/internal/app/system/credentials"
	"github.com/dalemusser/applyhub/internal/app/system/ratelimit"
	"github.com/dalemusser/applyhub/internal/app/system/timeouts"
	"github.com/dalemusser/applyhub/internal/app/system/webutil"
)

// Handler serves the member login/logout endpoints.
type Handler struct {
	Accounts *accounts.Store
	Sessions *auth.SessionManager
	Limiter  *ratelimit.LoginLimiter
	Audit    *auditlog.Logger
	Errs     *webutil.ErrorLogger
	Log      *zap.Logger
}

// NewHandler constructs a userauth Handler.
func NewHandler(accts *accounts.Store, sessions *auth.SessionManager, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts: accts,
		Sessions: sessions,
		Limiter:  limiter,
		Audit:    audit,
		Errs:     webutil.NewErrorLogger(logger),
		Log:      logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/user/login.
//
// On success: {"success":true,"user":{...}}. Unknown email and wrong
// password both answer 401 "Invalid credentials" so the endpoint does not
// leak which emails have accounts.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webutil.Fail(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if ok, reason := h.Limiter.Check(r, req.Email); !ok {
		h.Audit.LoginRateLimited(r.Context(), r, req.Email)
		webutil.Fail(w, http.StatusTooManyRequests, reason)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct, err := h.Accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == accounts.ErrNotFound {
			h.Audit.MemberLoginFailed(ctx, r, req.Email, "account not found")
			webutil.Fail(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.Errs.ServerError(w, r, "lookup account", err, "Database error")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(req.Password)) != nil {
		h.Audit.MemberLoginFailed(ctx, r, req.Email, "wrong password")
		webutil.Fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	err = h.Sessions.SetUser(w, r, auth.SessionUser{
		ID:       acct.ID.Hex(),
		Email:    acct.Email,
		FullName: acct.FullName,
		Role:     acct.Role,
	})
	if err != nil {
		h.Log.Error("failed to save member session", zap.Error(err))
		webutil.Fail(w, http.StatusInternalServerError, "Session error")
		return
	}

	h.Limiter.ResetEmail(acct.Email)
	h.Audit.MemberLoginSuccess(ctx, r, acct.Email)

	webutil.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user": map[string]any{
			"email":    acct.Email,
			"fullName": acct.FullName,
			"role":     acct.Role,
		},
	})
}

// Logout handles POST /api/user/logout. Always succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var email string
	if u, ok := auth.CurrentUser(r); ok {
		email = u.Email
	}
	if err := h.Sessions.Clear(w, r); err != nil {
		h.Log.Error("session destruction error", zap.Error(err))
	}
	if email != "" {
		h.Audit.MemberLogout(r.Context(), r, email)
	}
	webutil.JSON(w, http.StatusOK, map[string]any{"success": true})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword handles POST /api/user/change-password (requires a member
// session). The current password must verify before the new one is stored;
// the new password replaces the one-time credential from the approval
// email.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		webutil.JSON(w, http.StatusForbidden, map[string]any{"error": "Authentication required"})
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webutil.Fail(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if len(req.NewPassword) < 8 {
		webutil.Fail(w, http.StatusBadRequest, "New password must be at least 8 characters long")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct, err := h.Accounts.GetByEmail(ctx, u.Email)
	if err != nil {
		if err == accounts.ErrNotFound {
			webutil.Fail(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.Errs.ServerError(w, r, "lookup account", err, "Database error")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(req.CurrentPassword)) != nil {
		webutil.Fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), credentials.BcryptCost)
	if err != nil {
		h.Errs.ServerError(w, r, "hash password", err, "Server error")
		return
	}
	if err := h.Accounts.UpdatePassword(ctx, u.Email, string(hash)); err != nil {
		h.Errs.ServerError(w, r, "update password", err, "Database error")
		return
	}

	h.Log.Info("member changed password", zap.String("email", acct.Email))
	webutil.JSON(w, http.StatusOK, map[string]any{"success": true})
}

// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/dalemusser/applyhub/internal/app/store/audit"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (admin and member login/logout).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Review controls logging for intake and review events (submissions received,
	// status changes, deletes, exports, provisioning).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Review string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for reverse proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	// Fall back to RemoteAddr
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.SubmissionID != "" {
		fields = append(fields, zap.String("submission_id", event.SubmissionID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	// Determine which config setting applies based on event category
	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryIntake, audit.CategoryReview:
		setting = l.config.Review
	default:
		setting = "all" // Default to logging everything for unknown categories
	}

	// Check if logging is disabled for this category
	if setting == "off" {
		return
	}

	// Log to zap if configured
	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	// Log to MongoDB if configured
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

// AdminLoginSuccess logs a successful admin login.
func (l *Logger) AdminLoginSuccess(ctx context.Context, r *http.Request, username string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventAdminLoginSuccess,
		Actor:     username,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// AdminLoginFailed logs a failed admin login attempt.
func (l *Logger) AdminLoginFailed(ctx context.Context, r *http.Request, attemptedUsername, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventAdminLoginFailed,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
		Details: map[string]string{
			"attempted_username": attemptedUsername,
		},
	})
}

// AdminLogout logs an admin logout.
func (l *Logger) AdminLogout(ctx context.Context, r *http.Request, username string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventAdminLogout,
		Actor:     username,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// MemberLoginSuccess logs a successful member login.
func (l *Logger) MemberLoginSuccess(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventMemberLoginSuccess,
		Actor:     email,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// MemberLoginFailed logs a failed member login attempt.
func (l *Logger) MemberLoginFailed(ctx context.Context, r *http.Request, attemptedEmail, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventMemberLoginFailed,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
		Details: map[string]string{
			"attempted_email": attemptedEmail,
		},
	})
}

// MemberLogout logs a member logout.
func (l *Logger) MemberLogout(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventMemberLogout,
		Actor:     email,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// LoginRateLimited logs a login blocked by the rate limiter.
func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, attemptedIdentity string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedRateLimit,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "rate limit exceeded",
		Details: map[string]string{
			"attempted_identity": attemptedIdentity,
		},
	})
}

// --- Intake Events ---

// SubmissionReceived logs an accepted application submission.
func (l *Logger) SubmissionReceived(ctx context.Context, r *http.Request, submissionID, email string) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryIntake,
		EventType:    audit.EventSubmissionReceived,
		SubmissionID: submissionID,
		IP:           getClientIP(r),
		UserAgent:    r.UserAgent(),
		Success:      true,
		Details: map[string]string{
			"email": email,
		},
	})
}

// SubmissionRateLimited logs a submission blocked by the daily limit.
func (l *Logger) SubmissionRateLimited(ctx context.Context, r *http.Request) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryIntake,
		EventType:     audit.EventSubmissionRateLimited,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "daily submission limit",
	})
}

// --- Review Events ---

// StatusChanged logs an admin changing one submission's status.
func (l *Logger) StatusChanged(ctx context.Context, r *http.Request, actor, submissionID, status string) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryReview,
		EventType:    audit.EventStatusChanged,
		Actor:        actor,
		SubmissionID: submissionID,
		IP:           getClientIP(r),
		UserAgent:    r.UserAgent(),
		Success:      true,
		Details: map[string]string{
			"status": status,
		},
	})
}

// BulkStatusChanged logs a bulk status update.
func (l *Logger) BulkStatusChanged(ctx context.Context, r *http.Request, actor, status string, count int64) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryReview,
		EventType: audit.EventBulkStatusChanged,
		Actor:     actor,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"status": status,
			"count":  int64ToString(count),
		},
	})
}

// SubmissionDeleted logs an admin deleting one submission.
func (l *Logger) SubmissionDeleted(ctx context.Context, r *http.Request, actor, submissionID string) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryReview,
		EventType:    audit.EventSubmissionDeleted,
		Actor:        actor,
		SubmissionID: submissionID,
		IP:           getClientIP(r),
		UserAgent:    r.UserAgent(),
		Success:      true,
	})
}

// BulkDeleted logs a bulk delete.
func (l *Logger) BulkDeleted(ctx context.Context, r *http.Request, actor string, count int64) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryReview,
		EventType: audit.EventBulkDeleted,
		Actor:     actor,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"count": int64ToString(count),
		},
	})
}

// Exported logs a CSV export of submissions.
func (l *Logger) Exported(ctx context.Context, r *http.Request, actor string, count int) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryReview,
		EventType: audit.EventExported,
		Actor:     actor,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"count": intToString(count),
		},
	})
}

// AccountProvisioned logs a member account created for an approved applicant.
func (l *Logger) AccountProvisioned(ctx context.Context, submissionID, email string) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryReview,
		EventType:    audit.EventAccountProvisioned,
		SubmissionID: submissionID,
		Success:      true,
		Details: map[string]string{
			"email": email,
		},
	})
}

// --- Helper functions ---

func intToString(i int) string {
	return strconv.Itoa(i)
}

func int64ToString(i int64) string {
	return strconv.FormatInt(i, 10)
}

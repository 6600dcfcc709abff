// internal/app/system/ratelimit/middleware.go
package ratelimit

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/dalemusser/applyhub/internal/app/system/webutil"
)

// SubmitLimitMessage is the exact message returned when an IP exhausts its
// daily submission allowance.
const SubmitLimitMessage = "You have reached the maximum number of submissions allowed per day (3). Please try again tomorrow."

// Middleware wraps a handler with per-IP rate limiting. Requests for which
// skip returns true bypass the limiter entirely (e.g. an authenticated
// admin testing the form). Rejected requests get a 429 with the given
// message in the standard failure envelope; onLimit, when non-nil, is
// called for each rejection (audit trail).
func Middleware(l *Limiter, logger *zap.Logger, msg string, skip func(*http.Request) bool, onLimit func(*http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip != nil && skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			ip := ClientIP(r)
			if !l.Allow(ip) {
				logger.Warn("rate limit exceeded",
					zap.String("ip", ip),
					zap.String("path", r.URL.Path))
				if onLimit != nil {
					onLimit(r)
				}
				webutil.Fail(w, http.StatusTooManyRequests, msg)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

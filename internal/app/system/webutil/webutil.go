// internal/app/system/webutil/webutil.go
package webutil

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Fail writes the standard failure envelope {"success":false,"error":msg}.
func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]any{"success": false, "error": msg})
}

// ErrorLogger pairs structured server-side logging with generic
// client-facing JSON errors. Handlers hold one so the zap detail stays out
// of individual call sites.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// ServerError logs the operation and underlying error at Error level, then
// responds 500 with a generic message. The underlying error text is never
// sent to the client.
func (e *ErrorLogger) ServerError(w http.ResponseWriter, r *http.Request, op string, err error, clientMsg string) {
	e.log.Error(op,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	Fail(w, http.StatusInternalServerError, clientMsg)
}

// BadRequest logs at Warn level and responds 400 with the given message.
// Used for malformed payloads where the message is safe to surface.
func (e *ErrorLogger) BadRequest(w http.ResponseWriter, r *http.Request, op string, err error, clientMsg string) {
	e.log.Warn(op,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	Fail(w, http.StatusBadRequest, clientMsg)
}

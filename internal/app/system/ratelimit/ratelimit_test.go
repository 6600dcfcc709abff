// internal/app/system/ratelimit/ratelimit_test.go
package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLimiterAllowsUpToLimit(t *testing.T) {
	l := New(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Error("4th request should be blocked")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l := New(1, time.Hour)

	if !l.Allow("a") {
		t.Fatal("first request for key a should be allowed")
	}
	if !l.Allow("b") {
		t.Error("key b should not be affected by key a")
	}
	if l.Allow("a") {
		t.Error("second request for key a should be blocked")
	}
}

func TestLimiterWindowExpiry(t *testing.T) {
	l := New(1, 20*time.Millisecond)

	if !l.Allow("x") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("x") {
		t.Fatal("second request inside window should be blocked")
	}

	time.Sleep(30 * time.Millisecond)

	if !l.Allow("x") {
		t.Error("request after window expiry should be allowed")
	}
}

func TestLimiterReset(t *testing.T) {
	l := New(1, time.Hour)

	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("should be blocked before reset")
	}

	l.Reset("k")
	if !l.Allow("k") {
		t.Error("should be allowed after reset")
	}
}

func TestRemaining(t *testing.T) {
	l := New(3, time.Hour)

	if got := l.Remaining("k"); got != 3 {
		t.Errorf("fresh key remaining = %d, want 3", got)
	}
	l.Allow("k")
	l.Allow("k")
	if got := l.Remaining("k"); got != 1 {
		t.Errorf("after 2 requests remaining = %d, want 1", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"remote addr with port", "10.0.0.1:54321", "", "", "10.0.0.1"},
		{"x-forwarded-for single", "10.0.0.1:54321", "203.0.113.7", "", "203.0.113.7"},
		{"x-forwarded-for list", "10.0.0.1:54321", "203.0.113.7, 10.0.0.2", "", "203.0.113.7"},
		{"x-real-ip", "10.0.0.1:54321", "", "198.51.100.4", "198.51.100.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginLimiterBlocksAfterIPLimit(t *testing.T) {
	ll := NewLoginLimiterWithConfig(2, time.Hour, 100, time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", nil)
	req.RemoteAddr = "10.0.0.9:1234"

	for i := 0; i < 2; i++ {
		if ok, _ := ll.Check(req, "user@example.com"); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if ok, reason := ll.Check(req, "user@example.com"); ok || reason == "" {
		t.Errorf("3rd attempt should be blocked with a reason, got ok=%v reason=%q", ok, reason)
	}
}

func TestLoginLimiterResetEmail(t *testing.T) {
	ll := NewLoginLimiterWithConfig(100, time.Hour, 1, time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/api/user/login", nil)
	req.RemoteAddr = "10.0.0.9:1234"

	ll.Check(req, "Member@Example.com")
	if ok, _ := ll.Check(req, "member@example.com"); ok {
		t.Fatal("second attempt for same email should be blocked")
	}

	ll.ResetEmail("MEMBER@example.com")
	if ok, _ := ll.Check(req, "member@example.com"); !ok {
		t.Error("attempt after reset should be allowed")
	}
}

func TestMiddlewareBlocksAndSkips(t *testing.T) {
	l := New(1, time.Hour)
	var limited int
	mw := Middleware(l, zap.NewNop(), SubmitLimitMessage, func(r *http.Request) bool {
		return r.Header.Get("X-Test-Admin") == "1"
	}, func(*http.Request) {
		limited++
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := mw(next)

	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/submit", nil)
		req.RemoteAddr = "10.1.1.1:5000"
		return req
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newReq())
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, newReq())
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal 429 body: %v", err)
	}
	if body["error"] != SubmitLimitMessage {
		t.Errorf("429 error = %v, want %q", body["error"], SubmitLimitMessage)
	}
	if limited != 1 {
		t.Errorf("onLimit called %d times, want 1", limited)
	}

	// Admin-flagged request bypasses the limiter even when exhausted.
	req := newReq()
	req.Header.Set("X-Test-Admin", "1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("skipped request status = %d, want 200", rec.Code)
	}
}

package auditlog_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/applyhub/internal/app/store/audit"
	"github.com/dalemusser/applyhub/internal/app/system/auditlog"
	"github.com/dalemusser/applyhub/internal/testutil"
)

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	// These should all be no-ops, not panic
	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.AdminLoginSuccess(ctx, req, "admin")
	logger.SubmissionReceived(ctx, req, "abc", "a@example.com")
}

func TestLogger_Log_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	zapLog := zap.NewNop()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zapLog, auditlog.Config{
		Auth:   "off",
		Review: "off",
	})

	logger.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventAdminLoginSuccess,
		Success:   true,
	})

	// Verify nothing was logged to DB
	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 0 {
		t.Error("expected no events when config is 'off'")
	}
}

func TestLogger_Log_ConfigDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	zapLog := zap.NewNop()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zapLog, auditlog.Config{
		Auth:   "db",
		Review: "db",
	})

	logger.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventAdminLoginSuccess,
		Actor:     "admin",
		Success:   true,
	})

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 event, got %d", len(events))
	}
}

func TestLogger_Log_ConfigLogOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	zapLog := zap.NewNop()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zapLog, auditlog.Config{
		Auth:   "log",
		Review: "log",
	})

	logger.Log(ctx, audit.Event{
		Category:  audit.CategoryReview,
		EventType: audit.EventStatusChanged,
		Success:   true,
	})

	// zap-only config must not write to the DB
	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected 0 events in DB, got %d", len(events))
	}
}

func TestLogger_AdminLoginFailed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	zapLog := zap.NewNop()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zapLog, auditlog.Config{Auth: "db", Review: "db"})

	req := httptest.NewRequest("POST", "/api/admin/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	logger.AdminLoginFailed(ctx, req, "intruder", "wrong password")

	events, err := store.GetFailedLogins(ctx, time.Now().Add(-time.Minute), 10)
	if err != nil {
		t.Fatalf("GetFailedLogins failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 failed login, got %d", len(events))
	}
	if events[0].IP != "203.0.113.5" {
		t.Errorf("expected forwarded IP, got %q", events[0].IP)
	}
	if events[0].Details["attempted_username"] != "intruder" {
		t.Errorf("expected attempted username in details, got %v", events[0].Details)
	}
}

func TestLogger_ReviewEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	zapLog := zap.NewNop()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zapLog, auditlog.Config{Auth: "db", Review: "db"})

	req := httptest.NewRequest("PUT", "/api/submissions/abc", nil)
	logger.StatusChanged(ctx, req, "admin", "abc", "approved")
	logger.BulkDeleted(ctx, req, "admin", 3)
	logger.AccountProvisioned(ctx, "abc", "new@example.com")

	events, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryReview})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("expected 3 review events, got %d", len(events))
	}
}

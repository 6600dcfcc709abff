package submissions_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/applyhub/internal/app/features/submissions"
	"github.com/dalemusser/applyhub/internal/app/store/accounts"
	substore "github.com/dalemusser/applyhub/internal/app/store/submissions"
	"github.com/dalemusser/applyhub/internal/app/system/auth"
	"github.com/dalemusser/applyhub/internal/app/system/mailer"
	"github.com/dalemusser/applyhub/internal/app/system/notify"
	"github.com/dalemusser/applyhub/internal/app/system/provision"
	"github.com/dalemusser/applyhub/internal/domain/models"
	"github.com/dalemusser/applyhub/internal/testutil"
)

type captureSender struct {
	mu   sync.Mutex
	sent []mailer.Email
}

func (c *captureSender) Send(_ context.Context, email mailer.Email) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, email)
	return true
}

func (c *captureSender) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

type testEnv struct {
	router   chi.Router
	store    *substore.Store
	accounts *accounts.Store
	sender   *captureSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	store := substore.New(db)
	accts := accounts.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := accts.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	sender := &captureSender{}
	dispatcher := notify.NewDispatcher(sender, logger, 16, time.Second)
	dispatcher.Start()
	t.Cleanup(dispatcher.Stop)

	prov := provision.New(accts, dispatcher, nil, logger, provision.Config{
		OrgName:  "Science Society",
		LoginURL: "https://example.com/login",
	})

	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	h := submissions.NewHandler(store, prov, nil, logger)
	return &testEnv{
		router:   submissions.Routes(h, sm),
		store:    store,
		accounts: accts,
		sender:   sender,
	}
}

// do performs an authenticated admin request against the review routes.
func (env *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req = auth.WithTestAdmin(req, "council")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) insert(t *testing.T, mutate func(*models.Submission)) *models.Submission {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	sub := testutil.NewSubmission(mutate)
	id, err := env.store.Insert(ctx, sub)
	if err != nil {
		t.Fatalf("insert submission: %v", err)
	}
	sub.ID = id
	return sub
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return resp
}

func TestRoutes_RequireAdmin(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp["error"] != "Authentication required" {
		t.Errorf("unexpected error message: %v", resp["error"])
	}
}

func TestList_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	env.insert(t, func(s *models.Submission) { s.Email = "first@example.com" })
	time.Sleep(5 * time.Millisecond)
	env.insert(t, func(s *models.Submission) { s.Email = "second@example.com" })

	rec := env.do(t, "GET", "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	if resp["success"] != true {
		t.Errorf("expected success true, got %v", resp["success"])
	}
	data, ok := resp["data"].([]any)
	if !ok || len(data) != 2 {
		t.Fatalf("expected 2 submissions, got %v", resp["data"])
	}
	first := data[0].(map[string]any)
	if first["email"] != "second@example.com" {
		t.Errorf("expected newest submission first, got %v", first["email"])
	}
}

func TestList_Empty(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if data, ok := resp["data"].([]any); !ok || len(data) != 0 {
		t.Errorf("expected empty data array, got %v", resp["data"])
	}
}

func TestSetStatus_Updates(t *testing.T) {
	env := newTestEnv(t)
	sub := env.insert(t, nil)

	rec := env.do(t, "PUT", "/"+sub.ID.Hex(), map[string]any{
		"status": "rejected",
		"notes":  "incomplete application",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	if resp["updated"] != float64(1) {
		t.Errorf("expected updated 1, got %v", resp["updated"])
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	got, err := env.store.GetByID(ctx, sub.ID.Hex())
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.StatusRejected || got.Notes != "incomplete application" {
		t.Errorf("status/notes not persisted: %q %q", got.Status, got.Notes)
	}
}

func TestSetStatus_MissingIDReportsZero(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "PUT", "/"+primitive.NewObjectID().Hex(), map[string]any{
		"status": "approved",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	if resp["updated"] != float64(0) {
		t.Errorf("expected updated 0, got %v", resp["updated"])
	}
}

func TestSetStatus_InvalidStatus(t *testing.T) {
	env := newTestEnv(t)
	sub := env.insert(t, nil)

	rec := env.do(t, "PUT", "/"+sub.ID.Hex(), map[string]any{"status": "archived"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp["error"] != "Invalid status" {
		t.Errorf("unexpected error message: %v", resp["error"])
	}
}

func TestSetStatus_ApprovalProvisionsAccount(t *testing.T) {
	env := newTestEnv(t)
	sub := env.insert(t, func(s *models.Submission) {
		s.Email = "approved@example.com"
	})

	rec := env.do(t, "PUT", "/"+sub.ID.Hex(), map[string]any{"status": "approved"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	acct := waitForAccount(t, env.accounts, "approved@example.com")
	if acct.Role != models.RoleMember {
		t.Errorf("expected role %q, got %q", models.RoleMember, acct.Role)
	}
	waitFor(t, func() bool { return env.sender.count() == 1 }, "credential email")
}

func TestBulkUpdate_InvalidIDs(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "PUT", "/bulk-update", map[string]any{"status": "approved"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp["error"] != "Invalid submission IDs" {
		t.Errorf("unexpected error message: %v", resp["error"])
	}
}

func TestBulkUpdate_InvalidStatus(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "PUT", "/bulk-update", map[string]any{
		"ids":    []string{primitive.NewObjectID().Hex()},
		"status": "deleted",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp["error"] != "Invalid status" {
		t.Errorf("unexpected error message: %v", resp["error"])
	}
}

func TestBulkUpdate_RejectsMany(t *testing.T) {
	env := newTestEnv(t)
	a := env.insert(t, nil)
	b := env.insert(t, func(s *models.Submission) { s.Email = "other@example.com" })

	rec := env.do(t, "PUT", "/bulk-update", map[string]any{
		"ids":    []string{a.ID.Hex(), b.ID.Hex(), primitive.NewObjectID().Hex()},
		"status": "rejected",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	if resp["updated"] != float64(2) {
		t.Errorf("expected updated 2, got %v", resp["updated"])
	}
}

func TestBulkUpdate_ApprovalProvisionsEach(t *testing.T) {
	env := newTestEnv(t)
	a := env.insert(t, func(s *models.Submission) { s.Email = "bulk-a@example.com" })
	b := env.insert(t, func(s *models.Submission) { s.Email = "bulk-b@example.com" })

	rec := env.do(t, "PUT", "/bulk-update", map[string]any{
		"ids":    []string{a.ID.Hex(), b.ID.Hex()},
		"status": "approved",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	waitForAccount(t, env.accounts, "bulk-a@example.com")
	waitForAccount(t, env.accounts, "bulk-b@example.com")
	waitFor(t, func() bool { return env.sender.count() == 2 }, "credential emails")
}

func TestDeleteOne(t *testing.T) {
	env := newTestEnv(t)
	sub := env.insert(t, nil)

	rec := env.do(t, "DELETE", "/"+sub.ID.Hex(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, "DELETE", "/"+sub.ID.Hex(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 on second delete, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp["error"] != "Submission not found" {
		t.Errorf("unexpected error message: %v", resp["error"])
	}
}

func TestBulkDelete_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "DELETE", "/bulk-delete", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for missing ids, got %d", rec.Code)
	}
	if resp := decode(t, rec); resp["error"] != "IDs must be provided as an array" {
		t.Errorf("unexpected error message: %v", resp["error"])
	}

	rec = env.do(t, "DELETE", "/bulk-delete", map[string]any{"ids": []string{"  ", ""}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for blank ids, got %d", rec.Code)
	}
	if resp := decode(t, rec); resp["error"] != "No valid IDs provided" {
		t.Errorf("unexpected error message: %v", resp["error"])
	}
}

func TestBulkDelete_RemovesMatching(t *testing.T) {
	env := newTestEnv(t)
	a := env.insert(t, nil)
	b := env.insert(t, func(s *models.Submission) { s.Email = "other@example.com" })
	env.insert(t, func(s *models.Submission) { s.Email = "keep@example.com" })

	rec := env.do(t, "DELETE", "/bulk-delete", map[string]any{
		"ids": []string{a.ID.Hex(), b.ID.Hex()},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	if resp["deleted"] != float64(2) {
		t.Errorf("expected deleted 2, got %v", resp["deleted"])
	}
	if resp["message"] != "Deleted 2 submissions" {
		t.Errorf("unexpected message: %v", resp["message"])
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	remaining, err := env.store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("expected 1 remaining submission, got %d", len(remaining))
	}
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t)
	env.insert(t, func(s *models.Submission) {
		s.FullName = `Ada "The Countess" Lovelace`
		s.Email = "ada@example.com"
		s.IsBhStudent = false
		s.Country = "United Kingdom"
		s.School = "St. Mary's"
		s.Subjects = []string{"Math", "Physics"}
		s.Motivation = "Numbers, engines,\nand everything in between."
	})

	rec := env.do(t, "GET", "/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("unexpected Content-Type: %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, `attachment; filename="submissions-`) {
		t.Errorf("unexpected Content-Disposition: %q", cd)
	}

	body := rec.Body.Bytes()
	if !bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatal("expected UTF-8 BOM prefix")
	}

	cr := csv.NewReader(bytes.NewReader(body[3:]))
	header, err := cr.Read()
	if err != nil {
		t.Fatalf("read CSV header: %v", err)
	}
	wantHeader := []string{
		"Full Name", "Email", "Country Code", "Phone Number", "Date of Birth",
		"Grade", "Is BH Student", "Country", "School Name", "Subjects", "Motivation",
	}
	if len(header) != len(wantHeader) {
		t.Fatalf("expected %d columns, got %d", len(wantHeader), len(header))
	}
	for i := range wantHeader {
		if header[i] != wantHeader[i] {
			t.Errorf("column %d: expected %q, got %q", i, wantHeader[i], header[i])
		}
	}

	row, err := cr.Read()
	if err != nil {
		t.Fatalf("read CSV row: %v", err)
	}
	if row[0] != `Ada "The Countess" Lovelace` {
		t.Errorf("quoting not round-tripped: %q", row[0])
	}
	if row[6] != "No" {
		t.Errorf("expected Is BH Student %q, got %q", "No", row[6])
	}
	if row[9] != "Math; Physics" {
		t.Errorf("expected joined subjects, got %q", row[9])
	}
	if !strings.Contains(row[10], "\n") {
		t.Errorf("expected newline preserved in motivation, got %q", row[10])
	}
}

func waitForAccount(t *testing.T, store *accounts.Store, email string) *models.Account {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		acct, err := store.GetByEmail(ctx, email)
		cancel()
		if err == nil {
			return acct
		}
		if !errors.Is(err, accounts.ErrNotFound) {
			t.Fatalf("GetByEmail(%q): %v", email, err)
		}
		if time.Now().After(deadline) {
			t.Fatalf("account for %q never provisioned", email)
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func TestSetStatus_NormalizesCase(t *testing.T) {
	env := newTestEnv(t)
	sub := env.insert(t, nil)

	rec := env.do(t, "PUT", "/"+sub.ID.Hex(), map[string]any{"status": " Rejected "})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	got, err := env.store.GetByID(ctx, sub.ID.Hex())
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.StatusRejected {
		t.Errorf("expected stored status %q, got %q", models.StatusRejected, got.Status)
	}
}

func TestBulkDelete_MalformedIDsRejected(t *testing.T) {
	env := newTestEnv(t)
	env.insert(t, nil)

	rec := env.do(t, "DELETE", "/bulk-delete", map[string]any{
		"ids": []string{"not-an-object-id", "12345"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp := decode(t, rec); resp["error"] != "No valid IDs provided" {
		t.Errorf("unexpected error message: %v", resp["error"])
	}
}

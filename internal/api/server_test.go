package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"scriptqueue/internal/api"
	"scriptqueue/internal/dashboard"
	"scriptqueue/internal/identity"
	"scriptqueue/internal/policy"
	"scriptqueue/internal/queue"
	"scriptqueue/internal/testsupport"
	"scriptqueue/internal/watch"
)

type harness struct {
	t      *testing.T
	router http.Handler
	store  *queue.Store
	ident  *identity.Service
	broker *watch.Broker

	adminToken  string
	workerToken string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	broker := watch.NewBroker()
	t.Cleanup(broker.Close)
	store.SetNotifier(broker)

	ident := identity.NewService(store.DB(), cfg)

	snap, err := dashboard.New(context.Background(), store, broker, nil)
	if err != nil {
		t.Fatalf("dashboard.New failed: %v", err)
	}
	t.Cleanup(snap.Close)

	server := api.NewServer(store, ident, snap, broker, nil, nil)

	h := &harness{
		t:      t,
		router: server.Router(),
		store:  store,
		ident:  ident,
		broker: broker,
	}
	h.adminToken = h.registerAccount("admin@example.com", "boss", policy.RoleAdmin)
	h.workerToken = h.registerAccount("w1@example.com", "w1", policy.RoleUser)
	return h
}

// registerAccount signs up, optionally approves, and returns a bearer token.
func (h *harness) registerAccount(email, username string, role policy.Role) string {
	h.t.Helper()
	ctx := context.Background()
	user, err := h.ident.SignUp(ctx, email, username, "long enough pw")
	if err != nil {
		h.t.Fatalf("SignUp failed: %v", err)
	}
	if role != policy.RoleNone {
		if err := h.ident.Approve(ctx, user.ID, role); err != nil {
			h.t.Fatalf("Approve failed: %v", err)
		}
	}
	token, _, err := h.ident.SignIn(ctx, email, "long enough pw")
	if err != nil {
		h.t.Fatalf("SignIn failed: %v", err)
	}
	return token
}

func (h *harness) request(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			h.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return out
}

type itemJSON struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	ClaimedBy   string `json:"claimedBy"`
	Permissions struct {
		CanClaim             bool `json:"canClaim"`
		CanComplete          bool `json:"canComplete"`
		CanEdit              bool `json:"canEdit"`
		CanDelete            bool `json:"canDelete"`
		CanViewScriptHistory bool `json:"canViewScriptHistory"`
	} `json:"permissions"`
}

func (h *harness) createItem(title string, price float64) itemJSON {
	h.t.Helper()
	rec := h.request(http.MethodPost, "/v1/queue", h.adminToken, map[string]any{
		"title":       title,
		"description": "a job",
		"price":       price,
	})
	if rec.Code != http.StatusCreated {
		h.t.Fatalf("create item returned %d: %s", rec.Code, rec.Body.String())
	}
	return decode[itemJSON](h.t, rec)
}

func TestHealthIsOpen(t *testing.T) {
	h := newHarness(t)
	rec := h.request(http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestQueueRequiresAuth(t *testing.T) {
	h := newHarness(t)
	rec := h.request(http.MethodGet, "/v1/queue", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec = h.request(http.MethodGet, "/v1/queue", "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", rec.Code)
	}
}

func TestPendingAccountIsGated(t *testing.T) {
	h := newHarness(t)
	pendingToken := h.registerAccount("new@example.com", "newbie", policy.RoleNone)

	rec := h.request(http.MethodGet, "/v1/queue", pendingToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unapproved account, got %d", rec.Code)
	}
	// But the account can still see itself.
	rec = h.request(http.MethodGet, "/v1/auth/me", pendingToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for /auth/me, got %d", rec.Code)
	}
	me := decode[map[string]any](t, rec)
	if me["role"] != "none" {
		t.Fatalf("expected role none, got %v", me["role"])
	}
}

func TestSignUpAndSignInFlow(t *testing.T) {
	h := newHarness(t)

	rec := h.request(http.MethodPost, "/v1/auth/signup", "", map[string]string{
		"email":    "flow@example.com",
		"username": "flow",
		"password": "long enough pw",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = h.request(http.MethodPost, "/v1/auth/signup", "", map[string]string{
		"email":    "flow@example.com",
		"username": "flow2",
		"password": "long enough pw",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup returned %d", rec.Code)
	}

	rec = h.request(http.MethodPost, "/v1/auth/signin", "", map[string]string{
		"email":    "flow@example.com",
		"password": "long enough pw",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("signin returned %d: %s", rec.Code, rec.Body.String())
	}
	body := decode[map[string]any](t, rec)
	if body["token"] == "" {
		t.Fatal("expected token in signin response")
	}

	rec = h.request(http.MethodPost, "/v1/auth/signin", "", map[string]string{
		"email":    "flow@example.com",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad signin returned %d", rec.Code)
	}
}

func TestWorkerCannotManageQueue(t *testing.T) {
	h := newHarness(t)
	item := h.createItem("Job", 100)

	rec := h.request(http.MethodPost, "/v1/queue", h.workerToken, map[string]any{
		"title": "x", "description": "y", "price": 1.0,
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("worker create returned %d", rec.Code)
	}
	rec = h.request(http.MethodDelete, "/v1/queue/"+item.ID, h.workerToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("worker delete returned %d", rec.Code)
	}
}

func TestClaimAndCompleteOverHTTP(t *testing.T) {
	h := newHarness(t)
	item := h.createItem("Job", 100)

	rec := h.request(http.MethodPost, "/v1/queue/"+item.ID+"/claim", h.workerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("claim returned %d: %s", rec.Code, rec.Body.String())
	}
	claimed := decode[itemJSON](t, rec)
	if claimed.Status != "in-progress" || claimed.ClaimedBy != "w1" {
		t.Fatalf("unexpected claimed item: %#v", claimed)
	}
	if !claimed.Permissions.CanComplete {
		t.Fatal("claimer should be allowed to complete")
	}

	// Second claim loses the race.
	rec = h.request(http.MethodPost, "/v1/queue/"+item.ID+"/claim", h.adminToken, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("double claim returned %d", rec.Code)
	}

	rec = h.request(http.MethodPost, "/v1/queue/"+item.ID+"/complete", h.workerToken, map[string]string{
		"scriptContent": "print(1)",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete returned %d: %s", rec.Code, rec.Body.String())
	}
	done := decode[itemJSON](t, rec)
	if done.Status != "completed" {
		t.Fatalf("expected completed, got %s", done.Status)
	}
}

func TestCompleteRequiresOwnershipOrAdmin(t *testing.T) {
	h := newHarness(t)
	otherToken := h.registerAccount("w2@example.com", "w2", policy.RoleUser)

	item := h.createItem("Job", 100)
	rec := h.request(http.MethodPost, "/v1/queue/"+item.ID+"/claim", h.workerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("claim returned %d", rec.Code)
	}

	rec = h.request(http.MethodPost, "/v1/queue/"+item.ID+"/complete", otherToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign complete returned %d", rec.Code)
	}

	rec = h.request(http.MethodPost, "/v1/queue/"+item.ID+"/complete", h.adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin complete returned %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCompletePendingItemIsInvalidState(t *testing.T) {
	h := newHarness(t)
	item := h.createItem("Job", 100)

	rec := h.request(http.MethodPost, "/v1/queue/"+item.ID+"/complete", h.adminToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("completing a pending item returned %d", rec.Code)
	}
}

func TestDeleteMissingItemIs404(t *testing.T) {
	h := newHarness(t)
	rec := h.request(http.MethodDelete, "/v1/queue/no-such-id", h.adminToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateCompletedItemIs422(t *testing.T) {
	h := newHarness(t)
	item := h.createItem("Job", 100)
	h.request(http.MethodPost, "/v1/queue/"+item.ID+"/claim", h.workerToken, nil)
	h.request(http.MethodPost, "/v1/queue/"+item.ID+"/complete", h.workerToken, nil)

	rec := h.request(http.MethodPut, "/v1/queue/"+item.ID, h.adminToken, map[string]any{
		"title": "T2", "description": "d", "price": 1.0,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestScriptVisibility(t *testing.T) {
	h := newHarness(t)
	otherToken := h.registerAccount("w2@example.com", "w2", policy.RoleUser)

	item := h.createItem("Job", 100)
	h.request(http.MethodPost, "/v1/queue/"+item.ID+"/claim", h.workerToken, nil)
	h.request(http.MethodPost, "/v1/queue/"+item.ID+"/complete", h.workerToken, map[string]string{
		"scriptContent": "v1 body",
	})

	// Admin resubmit adds a version.
	rec := h.request(http.MethodPost, "/v1/queue/"+item.ID+"/scripts", h.adminToken, map[string]string{
		"content": "v2 body",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("append script returned %d: %s", rec.Code, rec.Body.String())
	}

	// Admin sees the full history.
	rec = h.request(http.MethodGet, "/v1/queue/"+item.ID+"/scripts", h.adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin scripts returned %d", rec.Code)
	}
	all := decode[[]map[string]any](t, rec)
	if len(all) != 2 {
		t.Fatalf("expected 2 versions for admin, got %d", len(all))
	}

	// The claiming worker sees only the latest version.
	rec = h.request(http.MethodGet, "/v1/queue/"+item.ID+"/scripts", h.workerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("worker scripts returned %d", rec.Code)
	}
	mine := decode[[]map[string]any](t, rec)
	if len(mine) != 1 || mine[0]["content"] != "v2 body" {
		t.Fatalf("expected only latest version for worker, got %#v", mine)
	}

	// Unrelated workers see nothing.
	rec = h.request(http.MethodGet, "/v1/queue/"+item.ID+"/scripts", otherToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign worker scripts returned %d", rec.Code)
	}

	// Workers cannot resubmit.
	rec = h.request(http.MethodPost, "/v1/queue/"+item.ID+"/scripts", h.workerToken, map[string]string{
		"content": "v3 body",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("worker append returned %d", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	h := newHarness(t)
	item := h.createItem("Job", 150)
	h.request(http.MethodPost, "/v1/queue/"+item.ID+"/claim", h.workerToken, nil)
	h.request(http.MethodPost, "/v1/queue/"+item.ID+"/complete", h.workerToken, map[string]string{
		"scriptContent": "body",
	})
	h.createItem("Open job", 50)

	waitForHTTP(t, func() bool {
		rec := h.request(http.MethodGet, "/v1/stats", h.workerToken, nil)
		if rec.Code != http.StatusOK {
			return false
		}
		body := decode[map[string]any](t, rec)
		return body["totalJobs"] == float64(2) && body["completedJobs"] == float64(1)
	})

	rec := h.request(http.MethodGet, "/v1/stats", h.workerToken, nil)
	body := decode[struct {
		TotalRevenue   float64 `json:"totalRevenue"`
		PendingRevenue float64 `json:"pendingRevenue"`
		Leaderboard    []struct {
			Name          string  `json:"name"`
			CompletedJobs int     `json:"completedJobs"`
			TotalEarnings float64 `json:"totalEarnings"`
		} `json:"leaderboard"`
	}](t, rec)
	if body.TotalRevenue != 150 || body.PendingRevenue != 50 {
		t.Fatalf("unexpected revenue: %+v", body)
	}
	if len(body.Leaderboard) != 1 || body.Leaderboard[0].Name != "w1" || body.Leaderboard[0].TotalEarnings != 150 {
		t.Fatalf("unexpected leaderboard: %#v", body.Leaderboard)
	}
}

func TestApproveUserOverHTTP(t *testing.T) {
	h := newHarness(t)
	h.registerAccount("new@example.com", "newbie", policy.RoleNone)

	rec := h.request(http.MethodGet, "/v1/users/pending", h.adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pending users returned %d", rec.Code)
	}
	pending := decode[[]map[string]any](t, rec)
	if len(pending) != 1 || pending[0]["username"] != "newbie" {
		t.Fatalf("unexpected pending accounts: %#v", pending)
	}
	id, _ := pending[0]["id"].(string)

	rec = h.request(http.MethodPost, fmt.Sprintf("/v1/users/%s/approve", id), h.adminToken, map[string]string{
		"role": "user",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("approve returned %d: %s", rec.Code, rec.Body.String())
	}
	approved := decode[map[string]any](t, rec)
	if approved["role"] != "user" {
		t.Fatalf("expected role user, got %v", approved["role"])
	}

	// Workers may not approve.
	rec = h.request(http.MethodGet, "/v1/users/pending", h.workerToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("worker pending users returned %d", rec.Code)
	}
}

func waitForHTTP(t *testing.T, cond func() bool) {
	t.Helper()
	for i := 0; i < 200; i++ {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

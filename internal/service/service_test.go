package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"eventreg/internal/api/api"
	"eventreg/internal/audit"
	"eventreg/internal/database"
	"eventreg/internal/model"
	"eventreg/internal/repo"
	"eventreg/internal/service"
)

const testSecret = "test-secret"

var eventFixture = model.Event{
	Title:         "Robotics Workshop",
	Type:          "workshop",
	StartDatetime: "2026-11-05T10:00",
	Venue:         "Lab 3",
}

type envelope struct {
	Status string `json:"status"`
	Error  *struct {
		Code string `json:"code"`
		Desc string `json:"desc"`
	} `json:"error"`
	Data json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*ginext.Engine, repo.Repository) {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(filepath.Join(dir, "registrations.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	logger := zerolog.Nop()
	r, err := repo.NewRepository(db, audit.NewWriter(filepath.Join(dir, "registrations.sql")), &logger)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	if err := r.Initialize(context.Background(), "admin", "admin"); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	svc := service.NewService(r, &logger, nil, testSecret, time.Hour)
	app := api.NewRouters(&api.Routers{Service: svc, JWTSecret: testSecret})
	return app, r
}

func doJSON(t *testing.T, app *ginext.Engine, method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func adminToken(t *testing.T, app *ginext.Engine) string {
	t.Helper()

	w, env := doJSON(t, app, http.MethodPost, "/api/admin/login",
		map[string]string{"username": "admin", "password": "admin"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &resp); err != nil || resp.Token == "" {
		t.Fatalf("no token in login response: %s", w.Body.String())
	}
	return resp.Token
}

func TestHealth(t *testing.T) {
	app, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
}

func TestRegisterCoercesTickets(t *testing.T) {
	app, r := newTestServer(t)

	w, _ := doJSON(t, app, http.MethodPost, "/api/register", map[string]any{
		"student_name": "Alice",
		"event_name":   "Hackathon",
		"tickets":      0,
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}

	regs, err := r.AllRegistrations(context.Background())
	if err != nil {
		t.Fatalf("all registrations: %v", err)
	}
	if len(regs) != 1 || regs[0].Tickets != 1 {
		t.Fatalf("zero tickets must be stored as 1: %+v", regs)
	}
}

func TestRegisterStoresSuppliedTickets(t *testing.T) {
	app, r := newTestServer(t)

	w, _ := doJSON(t, app, http.MethodPost, "/api/register", map[string]any{
		"student_name": "Bob",
		"event_name":   "Hackathon",
		"tickets":      5,
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}

	regs, err := r.AllRegistrations(context.Background())
	if err != nil {
		t.Fatalf("all registrations: %v", err)
	}
	if len(regs) != 1 || regs[0].Tickets != 5 {
		t.Fatalf("supplied tickets must be stored as-is: %+v", regs)
	}
}

func TestRegisterRequiresNameAndEvent(t *testing.T) {
	app, _ := newTestServer(t)

	w, env := doJSON(t, app, http.MethodPost, "/api/register", map[string]any{
		"student_name": "   ",
		"event_name":   "Hackathon",
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank name: want 400, got %d", w.Code)
	}
	if env.Error == nil {
		t.Fatalf("expected error envelope: %s", w.Body.String())
	}

	w, _ = doJSON(t, app, http.MethodPost, "/api/register", map[string]any{
		"student_name": "Alice",
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing event: want 400, got %d", w.Code)
	}
}

func TestRegisterAgainstKnownEventUsesTitle(t *testing.T) {
	app, r := newTestServer(t)

	eventID, err := r.CreateEvent(context.Background(), &eventFixture)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	w, _ := doJSON(t, app, http.MethodPost, "/api/register", map[string]any{
		"student_name": "Carol",
		"event_id":     eventID,
		"tickets":      2,
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}

	regs, err := r.RegistrationsForEvent(context.Background(), eventID)
	if err != nil {
		t.Fatalf("registrations for event: %v", err)
	}
	if len(regs) != 1 {
		t.Fatalf("expected 1 registration, got %d", len(regs))
	}
	if regs[0].EventName != eventFixture.Title {
		t.Fatalf("event name must come from the event row, got %q", regs[0].EventName)
	}
}

func TestRegisterUnknownEventID(t *testing.T) {
	app, _ := newTestServer(t)

	w, env := doJSON(t, app, http.MethodPost, "/api/register", map[string]any{
		"student_name": "Dave",
		"event_id":     4242,
	}, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown event: want 404, got %d %s", w.Code, w.Body.String())
	}
	if env.Error == nil || env.Error.Code != "EVENT_NOT_FOUND" {
		t.Fatalf("expected EVENT_NOT_FOUND, got %s", w.Body.String())
	}
}

func TestRecentRegistrationsEndpoint(t *testing.T) {
	app, _ := newTestServer(t)

	for i := 0; i < 3; i++ {
		w, _ := doJSON(t, app, http.MethodPost, "/api/register", map[string]any{
			"student_name": fmt.Sprintf("Student %d", i),
			"event_name":   "E",
		}, "")
		if w.Code != http.StatusCreated {
			t.Fatalf("register %d: %d", i, w.Code)
		}
	}

	w, env := doJSON(t, app, http.MethodGet, "/api/registrations?limit=2", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("recent: %d", w.Code)
	}
	var regs []struct {
		StudentName string `json:"student_name"`
	}
	if err := json.Unmarshal(env.Data, &regs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(regs) != 2 {
		t.Fatalf("expected 2 registrations, got %d", len(regs))
	}
	if regs[0].StudentName != "Student 2" {
		t.Fatalf("most recent first, got %q", regs[0].StudentName)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app, _ := newTestServer(t)

	w, _ := doJSON(t, app, http.MethodPost, "/api/admin/login",
		map[string]string{"username": "admin", "password": "wrong"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: want 401, got %d", w.Code)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	app, _ := newTestServer(t)

	w, _ := doJSON(t, app, http.MethodPost, "/api/admin/events", map[string]any{"title": "X"}, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("no token: want 403, got %d", w.Code)
	}

	w, _ = doJSON(t, app, http.MethodPost, "/api/admin/events", map[string]any{"title": "X"}, "garbage")
	if w.Code != http.StatusForbidden {
		t.Fatalf("bad token: want 403, got %d", w.Code)
	}
}

func TestAdminEventLifecycleOverHTTP(t *testing.T) {
	app, _ := newTestServer(t)
	token := adminToken(t, app)

	w, env := doJSON(t, app, http.MethodPost, "/api/admin/events", map[string]any{
		"title": "Tech Fest",
		"venue": "Main Hall",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create event: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil || created.ID <= 0 {
		t.Fatalf("no event id in response: %s", w.Body.String())
	}

	w, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/events/%d", created.ID), nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get event: %d", w.Code)
	}

	w, _ = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/admin/events/%d", created.ID), map[string]any{
		"title": "Tech Fest",
		"venue": "Auditorium",
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("update event: %d %s", w.Code, w.Body.String())
	}

	w, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/admin/events/%d", created.ID), nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("delete event: %d", w.Code)
	}

	w, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/events/%d", created.ID), nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("deleted event still served: %d", w.Code)
	}
}

package api_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"loom/internal/api"
	"loom/internal/checkpoint"
	"loom/internal/generator/staticgen"
	"loom/internal/learning"
	"loom/internal/library"
	"loom/internal/session"
	"loom/internal/workflow"
)

func newTestServer(t *testing.T, store checkpoint.Store, token string) (*api.Server, *library.Store) {
	t.Helper()
	catalog, err := library.Open(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("open library: %v", err)
	}
	t.Cleanup(func() { _ = catalog.Close() })

	suite := staticgen.New()
	engine, err := workflow.New(workflow.Generators{
		Analyzer:     suite,
		Planner:      suite,
		Content:      suite,
		Assessment:   suite,
		Orchestrator: suite,
	}, store)
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}

	server := api.NewServer(api.NewStatusService(store), engine, catalog, api.ServerOptions{
		Bind:  "127.0.0.1:0",
		Token: token,
	})
	return server, catalog
}

func seedSession(t *testing.T, store checkpoint.Store) *session.State {
	t.Helper()
	state := session.New(learning.LearnerProfile{Name: "Ada", Subject: "Go programming", KnowledgeLevel: 2})
	state.CurrentStage = session.StagePathPlanning
	state.RetryCount = 1
	if err := store.Save(context.Background(), state); err != nil {
		t.Fatalf("seed Save failed: %v", err)
	}
	return state
}

func TestSessionStatusEndpoint(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	server, _ := newTestServer(t, store, "")
	state := seedSession(t, store)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+state.SessionID+"/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, body %s", rec.Code, rec.Body.String())
	}

	var report api.StatusReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.SessionID != state.SessionID {
		t.Errorf("SessionID = %q, want %q", report.SessionID, state.SessionID)
	}
	if report.CurrentStage != string(session.StagePathPlanning) {
		t.Errorf("CurrentStage = %q, want path_planning", report.CurrentStage)
	}
	if report.Progress != 40 {
		t.Errorf("Progress = %d, want 40", report.Progress)
	}
	if report.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", report.RetryCount)
	}
}

func TestSessionStatusNotFound(t *testing.T) {
	server, _ := newTestServer(t, checkpoint.NewMemoryStore(), "")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/ghost/status", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status code = %d, want 404", rec.Code)
	}
}

func TestListSessionsEndpoint(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	server, _ := newTestServer(t, store, "")
	seedSession(t, store)
	seedSession(t, store)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}
	var payload api.SessionListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Sessions) != 2 {
		t.Errorf("session count = %d, want 2", len(payload.Sessions))
	}
}

func TestRunEndpointCompletesAndCatalogsPackage(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	server, catalog := newTestServer(t, store, "")

	body, _ := json.Marshal(api.RunRequest{Profile: learning.LearnerProfile{
		Name:           "Ada",
		Subject:        "Go programming",
		LearningStyle:  "visual",
		KnowledgeLevel: 2,
	}})
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/runs", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, body %s", rec.Code, rec.Body.String())
	}

	var response api.RunResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !response.Completed {
		t.Fatalf("run not completed: %v", response.Errors)
	}
	if response.Package == nil {
		t.Fatal("response carries no package")
	}

	stored, err := catalog.GetPackage(context.Background(), response.Package.PackageID)
	if err != nil {
		t.Fatalf("package not catalogued: %v", err)
	}
	if stored.LearnerID != response.Package.LearnerID {
		t.Errorf("catalogued learner = %q, want %q", stored.LearnerID, response.Package.LearnerID)
	}

	// The run's terminal state must be visible through the status route.
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+response.SessionID+"/status", nil))
	var report api.StatusReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !report.Completed || report.Progress != 100 {
		t.Errorf("terminal report = %+v, want completed at 100%%", report)
	}
}

func TestRunEndpointRejectsEmptySubject(t *testing.T) {
	server, _ := newTestServer(t, checkpoint.NewMemoryStore(), "")
	body, _ := json.Marshal(api.RunRequest{Profile: learning.LearnerProfile{Name: "Ada"}})
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/runs", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status code = %d, want 400", rec.Code)
	}
}

func TestTokenGateProtectsAPIRoutes(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	server, _ := newTestServer(t, store, "secret")

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d, want 200", rec.Code)
	}

	// healthz stays open.
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rec.Code)
	}
}

func TestPackageRoutes(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	server, catalog := newTestServer(t, store, "")

	pkg := &learning.Package{PackageID: "pkg-1", LearnerID: "learner-1"}
	if err := catalog.SavePackage(context.Background(), pkg); err != nil {
		t.Fatalf("SavePackage failed: %v", err)
	}

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/packages/pkg-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get package status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/packages/pkg-404", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing package status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/packages?learner=learner-1", nil))
	var payload api.PackageListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Packages) != 1 {
		t.Errorf("package count = %d, want 1", len(payload.Packages))
	}
}

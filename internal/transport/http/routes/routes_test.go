package routes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/infra/config"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/infra/security"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/repository/memory"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/transport/http/middleware"
	httproutes "github.com/Kashawn-Brown/Career-Tracker-sub001/internal/transport/http/routes"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/usecase"
)

func testDependencies(t *testing.T) httproutes.Dependencies {
	t.Helper()

	logger := zaptest.NewLogger(t)

	limiter, err := usecase.NewLimiter(memory.NewAttemptStore(), logger)
	if err != nil {
		t.Fatalf("NewLimiter returned error: %v", err)
	}

	gates, err := middleware.NewGates(limiter, security.NewCSRFCodec(), logger)
	if err != nil {
		t.Fatalf("NewGates returned error: %v", err)
	}

	return httproutes.Dependencies{
		Config: &config.AppConfig{App: config.AppSettings{Env: "test"}},
		Logger: logger,
		Gates:  gates,
	}
}

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := httproutes.Register(testDependencies(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestCSRFTokenIssuanceEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	deps := testDependencies(t)
	r := httproutes.Register(deps)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/csrf-token", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var body struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.CSRFToken == "" {
		t.Fatal("expected a non-empty token")
	}

	if !deps.Gates.Codec().Validate(body.CSRFToken, 0) {
		t.Fatal("expected issued token to validate")
	}
}

func TestGateStatusEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := httproutes.Register(testDependencies(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/gate/status?gate=login&key=198.51.100.7", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var body struct {
		Attempts int  `json:"attempts"`
		Locked   bool `json:"locked"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Attempts != 0 || body.Locked {
		t.Fatalf("expected fresh status, got %+v", body)
	}
}

func TestGateStatusUnknownGate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := httproutes.Register(testDependencies(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/gate/status?gate=nonsense", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestLoginRouteRequiresCSRFToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	deps := testDependencies(t)
	deps.Endpoints = httproutes.ProtectedEndpoints{
		Login: func(c *gin.Context) { c.Status(http.StatusOK) },
	}
	r := httproutes.Register(deps)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without token, got %d", w.Code)
	}
}

func TestLoginRoutePassesWithToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	deps := testDependencies(t)
	deps.Endpoints = httproutes.ProtectedEndpoints{
		Login: func(c *gin.Context) { c.Status(http.StatusOK) },
	}
	r := httproutes.Register(deps)

	token, err := deps.Gates.Codec().Issue()
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.Header.Set("x-csrf-token", token)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", w.Code)
	}
}

func TestUnregisteredProtectedRoutesAbsent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := httproutes.Register(testDependencies(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unwired endpoint, got %d", w.Code)
	}
}

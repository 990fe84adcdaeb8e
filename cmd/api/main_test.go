package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/loginapp/internal/auth"
	"github.com/yourusername/loginapp/internal/config"
)

func testConfig(driver string) *config.Config {
	return &config.Config{
		Port:               "0",
		GinMode:            gin.TestMode,
		CORSAllowedOrigins: "http://localhost:3000",
		StoreDriver:        driver,
		JWTSecret:          "test-secret",
		TokenTTL:           time.Hour,
		BcryptCost:         4,
		ServeFrontend:      true,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, closeStore, err := setupStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("setupStore returned error: %v", err)
	}
	t.Cleanup(closeStore)

	svc, err := setupAuth(cfg, store)
	if err != nil {
		t.Fatalf("setupAuth returned error: %v", err)
	}
	return newRouter(cfg, auth.NewHandler(svc, auth.HandlerOptions{UnifyLoginErrors: cfg.UnifyLoginErrors}))
}

func request(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	payload := map[string]string{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("failed to parse response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, payload
}

func TestHelloEndpoint(t *testing.T) {
	router := newTestServer(t, testConfig(config.StoreDriverMemory))

	rec, payload := request(t, router, http.MethodGet, "/api/hello", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if payload["message"] != "Hello from backend!" {
		t.Fatalf("unexpected message: %q", payload["message"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestServer(t, testConfig(config.StoreDriverMemory))

	rec, payload := request(t, router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || payload["status"] != "ok" {
		t.Fatalf("unexpected health response: %d %v", rec.Code, payload)
	}
}

func TestFrontendPage(t *testing.T) {
	router := newTestServer(t, testConfig(config.StoreDriverMemory))

	rec, _ := request(t, router, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content-type: %s", ct)
	}

	cfg := testConfig(config.StoreDriverMemory)
	cfg.ServeFrontend = false
	rec, _ = request(t, newTestServer(t, cfg), http.MethodGet, "/", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when frontend is disabled, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestServer(t, testConfig(config.StoreDriverMemory))

	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected Access-Control-Allow-Origin: %q", got)
	}
}

func TestAuthFlowOverRedis(t *testing.T) {
	server := miniredis.RunT(t)
	cfg := testConfig(config.StoreDriverRedis)
	cfg.RedisURL = "redis://" + server.Addr() + "/0"
	router := newTestServer(t, cfg)

	creds := `{"username":"alice","password":"pw1"}`
	for i := 0; i < 2; i++ {
		rec, payload := request(t, router, http.MethodPost, "/signup", creds)
		if rec.Code != http.StatusOK || payload["message"] != "User created" {
			t.Fatalf("signup #%d failed: %d %v", i+1, rec.Code, payload)
		}
	}

	rec, payload := request(t, router, http.MethodPost, "/login", creds)
	if rec.Code != http.StatusOK || payload["token"] == "" {
		t.Fatalf("login failed: %d %v", rec.Code, payload)
	}

	rec, payload = request(t, router, http.MethodPost, "/login", `{"username":"alice","password":"wrong"}`)
	if rec.Code != http.StatusBadRequest || payload["error"] != "Invalid password" {
		t.Fatalf("unexpected wrong-password response: %d %v", rec.Code, payload)
	}

	rec, payload = request(t, router, http.MethodPost, "/login", `{"username":"bob","password":"x"}`)
	if rec.Code != http.StatusBadRequest || payload["error"] != "User not found" {
		t.Fatalf("unexpected unknown-user response: %d %v", rec.Code, payload)
	}

	server.Close()
	rec, payload = request(t, router, http.MethodPost, "/signup", creds)
	if rec.Code != http.StatusInternalServerError || payload["code"] != "INTERNAL_ERROR" {
		t.Fatalf("expected internal error when redis is down: %d %v", rec.Code, payload)
	}
}

func TestSetupStoreRedisUnreachable(t *testing.T) {
	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	cfg := testConfig(config.StoreDriverRedis)
	cfg.RedisURL = "redis://" + addr + "/0"
	if _, _, err := setupStore(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unreachable redis")
	}
}

func TestSetupStoreUnknownDriver(t *testing.T) {
	if _, _, err := setupStore(context.Background(), testConfig("mongo")); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

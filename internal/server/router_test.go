package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexedwards/scs/v2"

	"qcs/internal/handlers"
)

func TestNewRouterRegistersHealthRoute(t *testing.T) {
	router := newRouter("")
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected /healthz to return 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json content type, got %q", ct)
	}
}

func TestNewRouterProtectsAPI(t *testing.T) {
	sm := scs.New()
	handlers.Configure(sm, nil)
	t.Cleanup(func() { handlers.Configure(nil, nil) })
	router := sm.LoadAndSave(newRouter(""))

	for _, target := range []string{"/api/suppliers", "/api/batches/1/coa", "/api/schema", "/api/unknown"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", target, rr.Code)
		}
	}
}

func TestNewRouterServesAssets(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatalf("failed to write asset: %v", err)
	}
	router := newRouter(dir)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/assets/app.css", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "body{}" {
		t.Fatalf("expected asset served, got %d %q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown page, got %d", rr.Code)
	}
}

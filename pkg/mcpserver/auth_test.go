package mcpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wilhg/dahua-mcp/pkg/config"
	"github.com/wilhg/dahua-mcp/pkg/gateway"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireBearerEmptyTokenPassesThrough(t *testing.T) {
	h := requireBearer("", okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d", rec.Code)
	}
}

func TestRequireBearerRejectsMissingHeader(t *testing.T) {
	h := requireBearer("s3cret", okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code=%d", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Fatal("missing WWW-Authenticate")
	}
}

func TestRequireBearerRejectsWrongToken(t *testing.T) {
	h := requireBearer("s3cret", okHandler())
	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code=%d", rec.Code)
	}
}

func TestRequireBearerAcceptsToken(t *testing.T) {
	h := requireBearer("s3cret", okHandler())
	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d", rec.Code)
	}
}

func TestHTTPHandlerHealthzUnauthenticated(t *testing.T) {
	s := newTestServer(t, gateway.Rules{})
	h, err := s.HTTPHandler(config.Transport{Type: config.TransportHTTP, BearerToken: "s3cret"})
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d", rec.Code)
	}
}

func TestHTTPHandlerMCPRequiresToken(t *testing.T) {
	s := newTestServer(t, gateway.Rules{})
	h, err := s.HTTPHandler(config.Transport{Type: config.TransportHTTP, BearerToken: "s3cret"})
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code=%d", rec.Code)
	}
}

func TestHTTPHandlerRejectsStdio(t *testing.T) {
	s := newTestServer(t, gateway.Rules{})
	if _, err := s.HTTPHandler(config.Transport{Type: config.TransportStdio}); err == nil {
		t.Fatal("expected error for stdio transport")
	}
}

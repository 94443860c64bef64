package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clovermart/storefront/pkg/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSPreflight(t *testing.T) {
	h := NewCORS([]string{"https://shop.example.com"}).Handler(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/product/all", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Fatalf("allow-origin %q", got)
	}
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	h := NewCORS([]string{"https://shop.example.com"}).Handler(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/product/all", nil)
	req.Header.Set("Origin", "https://evil.example.net")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}

func TestRateLimiterThrottlesPerClient(t *testing.T) {
	h := NewRateLimiter(1, 2, logger.Discard()).Handler(okHandler())

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/product/all", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("first request: %d", code)
	}
	if code := send("10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("burst request: %d", code)
	}
	if code := send("10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	// A different client has its own budget.
	if code := send("10.0.0.2:1234"); code != http.StatusOK {
		t.Fatalf("other client throttled: %d", code)
	}
}

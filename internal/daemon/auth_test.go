package daemon

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuthMiddlewareEmptyTokenPassesThrough(t *testing.T) {
	called := false
	handler := authMiddleware("", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if !called {
		t.Fatal("handler not called with auth disabled")
	}
}

func TestAuthMiddlewareRejectsBadCredentials(t *testing.T) {
	cases := map[string]string{
		"missing-header": "",
		"wrong-scheme":   "Basic c2VjcmV0",
		"wrong-token":    "Bearer wrong",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			called := false
			handler := authMiddleware("secret", func(w http.ResponseWriter, r *http.Request) {
				called = true
			})

			req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			if called {
				t.Fatal("handler called despite bad credentials")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	called := false
	handler := authMiddleware("secret", func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if !called {
		t.Fatal("handler not called with valid token")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

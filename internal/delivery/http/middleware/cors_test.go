package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null}`))
	})

	tests := []struct {
		name       string
		allowed    []string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
		wantMethod string
	}{
		{"preflight allowed", []string{"http://localhost:3000/"}, http.MethodOptions, "http://localhost:3000", http.StatusNoContent, "http://localhost:3000", corsAllowMethods},
		{"preflight unknown origin", []string{"http://localhost:3000"}, http.MethodOptions, "http://evil.test", http.StatusNoContent, "", ""},
		{"simple request allowed", []string{"http://localhost:3000"}, http.MethodGet, "http://localhost:3000", http.StatusOK, "http://localhost:3000", ""},
		{"simple request unknown origin", []string{"http://localhost:3000"}, http.MethodGet, "http://evil.test", http.StatusOK, "", ""},
		{"wildcard", []string{"*"}, http.MethodGet, "http://any.test", http.StatusOK, "http://any.test", ""},
		{"no origin header", []string{"*"}, http.MethodGet, "", http.StatusOK, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/events", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()

			CORS(tt.allowed, next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantMethod, rr.Header().Get("Access-Control-Allow-Methods"))
			assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

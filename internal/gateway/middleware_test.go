package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/soyeahso/evaluet/internal/logging"
	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

func TestLoggingMiddleware(t *testing.T) {
	handler := loggingMiddleware(logging.New(nil, "silent"))(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestRequestIDHeader(t *testing.T) {
	handler := middleware.RequestID(requestIDHeader(okHandler()))

	req := httptest.NewRequest("GET", "/test", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))

	req = httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(middleware.RequestIDHeader, "custom-id-123")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "custom-id-123", rr.Header().Get(middleware.RequestIDHeader))
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{"deny when unconfigured", nil, "https://app.example", ""},
		{"wildcard", []string{"*"}, "https://app.example", "https://app.example"},
		{"specific match", []string{"https://app.example"}, "https://app.example", "https://app.example"},
		{"specific mismatch", []string{"https://app.example"}, "https://other.example", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := corsMiddleware(tt.allowed)(okHandler())
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Origin", tt.origin)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	handler := corsMiddleware([]string{"*"})(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/interviews", nil)
	req.Header.Set("Origin", "https://app.example")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCheckWebSocketOrigin(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws/interview/s1", nil)
	assert.True(t, checkWebSocketOrigin(nil)(req), "no Origin header")

	req.Header.Set("Origin", "https://app.example")
	assert.False(t, checkWebSocketOrigin(nil)(req))
	assert.True(t, checkWebSocketOrigin([]string{"*"})(req))
	assert.True(t, checkWebSocketOrigin([]string{"https://x", "https://app.example"})(req))
}

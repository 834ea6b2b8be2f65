package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/experiencepoints/api/internal/ctxkeys"
	"github.com/experiencepoints/api/internal/model"
	"github.com/experiencepoints/api/internal/service"
)

type fakeAuth map[string]error

func (f fakeAuth) Authenticate(_ context.Context, token string) (*model.User, error) {
	if err, ok := f[token]; ok {
		return nil, err
	}
	return &model.User{ID: 42, Username: "alice123"}, nil
}

var tokens = fakeAuth{
	"expired": service.ErrTokenExpired,
	"garbage": service.ErrTokenInvalid,
	"orphan":  service.ErrUserNotFound,
}

func whoAmI(w http.ResponseWriter, r *http.Request) {
	if user := ctxkeys.User(r.Context()); user != nil {
		_, _ = w.Write([]byte(user.Username))
		return
	}
	_, _ = w.Write([]byte("anonymous"))
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(tokens)(http.HandlerFunc(whoAmI))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer good", http.StatusOK, "alice123"},
		{"lowercase scheme", "bearer good", http.StatusOK, "alice123"},
		{"missing", "", http.StatusUnauthorized, `{"error":"Token is missing"}`},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, `{"error":"Token is missing"}`},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, `{"error":"Token is invalid"}`},
		{"expired", "Bearer expired", http.StatusUnauthorized, `{"error":"Token has expired"}`},
		{"invalid", "Bearer garbage", http.StatusUnauthorized, `{"error":"Token is invalid"}`},
		{"deleted user", "Bearer orphan", http.StatusUnauthorized, `{"error":"User not found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, rec.Body.String())
			} else {
				assert.JSONEq(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	handler := OptionalAuth(tokens)(http.HandlerFunc(whoAmI))

	for header, want := range map[string]string{
		"":               "anonymous",
		"Bearer garbage": "anonymous",
		"Bearer good":    "alice123",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/profile/abc", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, rec.Body.String(), header)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send("203.0.113.7"))
	assert.Equal(t, http.StatusNoContent, send("203.0.113.7"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.7"))
	assert.Equal(t, http.StatusNoContent, send("198.51.100.2"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientIP(req))

	req.Header.Set("X-Real-IP", " 192.0.2.9 ")
	assert.Equal(t, "192.0.2.9", clientIP(req))
}

func TestRequestLoggingKeepsStatus(t *testing.T) {
	handler := RequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/goals", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

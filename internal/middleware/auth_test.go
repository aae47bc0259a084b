package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "ledger-test-secret"

func newActorRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(StructuredLoggingMiddleware(discardLogger()))
	r.Use(ActorMiddleware(secret))
	r.GET("/whoami", func(c *gin.Context) {
		actor, _ := GetActorFromContext(c)
		c.String(http.StatusOK, actor)
	})
	return r
}

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestActorMiddleware_HeaderMode(t *testing.T) {
	r := newActorRouter("")

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "actor header", header: "user-7", wantStatus: http.StatusOK, wantBody: "user-7"},
		{name: "trimmed", header: "  user-7 ", wantStatus: http.StatusOK, wantBody: "user-7"},
		{name: "missing", header: "", wantStatus: http.StatusUnauthorized},
		{name: "blank", header: "   ", wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set(ActorHeader, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestActorMiddleware_BearerMode(t *testing.T) {
	r := newActorRouter(testSecret)
	now := time.Now()

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantBody   string
	}{
		{
			name: "valid token",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.RegisteredClaims{
				Subject:   "user-42",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			}),
			wantStatus: http.StatusOK,
			wantBody:   "user-42",
		},
		{
			name: "expired token",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.RegisteredClaims{
				Subject:   "user-42",
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
			}),
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Token has expired",
		},
		{
			name: "wrong secret",
			authHeader: "Bearer " + signToken(t, "someone-else", jwt.RegisteredClaims{
				Subject: "user-42",
			}),
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Invalid token",
		},
		{
			name:       "no subject",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}),
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Invalid token claims",
		},
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantBody: "Authorization header required"},
		{name: "not bearer", authHeader: "Basic abc", wantStatus: http.StatusUnauthorized, wantBody: "Bearer {token}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			// the header is ignored once a secret is configured
			req.Header.Set(ActorHeader, "spoofed")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			assert.NotContains(t, w.Body.String(), "spoofed")
		})
	}
}

func TestStructuredLoggingMiddleware_RequestID(t *testing.T) {
	r := newActorRouter("")

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(ActorHeader, "user-1")
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(ActorHeader, "user-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewLimiter_RejectsBadRate(t *testing.T) {
	_, err := NewLimiter("lots-per-minute", nil)
	assert.Error(t, err)
}

func TestRateLimit_PerActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lim, err := NewLimiter("2-M", nil)
	require.NoError(t, err)

	r := gin.New()
	r.Use(ActorMiddleware(""), RateLimit(lim))
	r.POST("/submit", func(c *gin.Context) { c.Status(http.StatusCreated) })

	call := func(actor string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.Header.Set(ActorHeader, actor)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := call("billing")
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusCreated, call("billing").Code)
	assert.Equal(t, http.StatusTooManyRequests, call("billing").Code)

	// counters are per actor
	assert.Equal(t, http.StatusCreated, call("payroll").Code)
}

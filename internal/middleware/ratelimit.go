package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// NewLimiter builds a limiter from a formatted rate such as "100-M".
// The counters live in redis when a client is given, so every replica shares them.
func NewLimiter(rate string, redisClient *redis.Client) (*limiter.Limiter, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}
	if redisClient == nil {
		return limiter.New(memory.NewStore(), parsed), nil
	}
	store, err := redisstore.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: "gl_ratelimit"})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
	}
	return limiter.New(store, parsed), nil
}

// RateLimit creates a Gin middleware for rate limiting requests.
// Requests are keyed by actor when one is known, otherwise by client IP.
func RateLimit(limiterInstance *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if actor, ok := GetActorFromContext(c); ok {
			key = "actor:" + actor
		}

		context, err := limiterInstance.Get(c.Request.Context(), key)
		if err != nil {
			GetLoggerFromCtx(c.Request.Context()).Error("Failed to get rate limit context", slog.String("key", key), slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error during rate limit check"})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(context.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(context.Remaining, 10))
		if context.Reached {
			GetLoggerFromCtx(c.Request.Context()).Warn("Rate limit exceeded", slog.String("key", key), slog.Int64("limit", context.Limit))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			return
		}

		c.Next()
	}
}

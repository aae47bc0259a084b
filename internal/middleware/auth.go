package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ActorHeader carries the actor id when no token verification is configured (trusted gateway, local dev).
const ActorHeader = "X-Actor-ID"

// ActorMiddleware resolves the actor every mutating ledger call is attributed to.
// With a jwtSecret the actor is the subject of an HMAC-signed bearer token issued upstream;
// without one it is taken from the X-Actor-ID header. Requests with no actor are rejected.
func ActorMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		var actor string
		if jwtSecret != "" {
			subject, msg := actorFromBearer(c.GetHeader("Authorization"), jwtSecret)
			if msg != "" {
				logger.Warn("Rejected bearer token", slog.String("reason", msg))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
				return
			}
			actor = subject
		} else {
			actor = strings.TrimSpace(c.GetHeader(ActorHeader))
			if actor == "" {
				logger.Warn("Actor header missing")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ActorHeader + " header required"})
				return
			}
		}

		ctx := WithActor(c.Request.Context(), actor)
		ctx = WithLogger(ctx, logger.With(slog.String("actor", actor)))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// actorFromBearer validates the token and returns its subject, or a client-facing reason for rejecting it.
func actorFromBearer(authHeader, jwtSecret string) (string, string) {
	if authHeader == "" {
		return "", "Authorization header required"
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", "Authorization header format must be Bearer {token}"
	}

	token, err := jwt.ParseWithClaims(parts[1], &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", "Token has expired"
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return "", "Token not valid yet"
		}
		return "", "Invalid token"
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", "Invalid token claims"
	}
	return claims.Subject, ""
}

package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// actorKey stores the id of whoever is performing the request.
const actorKey = contextKey("actor")

// WithActor returns a copy of ctx carrying the actor id.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActorFromContext retrieves the actor resolved by ActorMiddleware.
// It returns the actor and a boolean indicating if it was found.
func GetActorFromContext(c *gin.Context) (string, bool) {
	actor, ok := c.Request.Context().Value(actorKey).(string)
	if !ok || actor == "" {
		return "", false
	}
	return actor, true
}

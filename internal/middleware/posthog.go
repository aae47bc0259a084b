package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/general_ledger/internal/events"
	"github.com/gin-gonic/gin"
)

// pathsToSkip contains paths that should not be tracked
var pathsToSkip = map[string]bool{
	"/health": true,
}

// EventTrackingMiddleware publishes one event per successful API call, named after its route
// (e.g. "/api/v1/journals/:id/post" -> "api_v1_journals_:id_post").
func EventTrackingMiddleware(sink events.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sink == nil || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		actor, ok := GetActorFromContext(c)
		if !ok {
			return
		}
		eventName := strings.ReplaceAll(strings.TrimPrefix(c.FullPath(), "/"), "/", "_")
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
		}
		if len(c.Params) > 0 {
			params := make(map[string]string, len(c.Params))
			for _, param := range c.Params {
				params[param.Key] = param.Value
			}
			props["params"] = params
		}
		sink.Publish(c.Request.Context(), events.Event{Name: eventName, DistinctID: actor, Properties: props})
	}
}

package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/landbroker/api/internal/logger"
	"github.com/stwalsh4118/landbroker/api/internal/metrics"
)

// Recovery turns a handler panic into a 500 response carrying the request ID.
// The panic value and stack are logged with the route and acting identity; m may be nil.
func Recovery(log *logger.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			reqLog := GetLogger(c)
			if reqLog == nil {
				reqLog = log
			}

			fields := map[string]interface{}{
				"method": c.Request.Method,
				"route":  c.FullPath(),
				"stack":  string(debug.Stack()),
			}
			if actor, ok := GetActor(c); ok {
				fields["actor_id"] = actor.ID
			}
			reqLog.Error("Handler panicked", fmt.Errorf("panic: %v", rec), fields)
			m.IncrementPanics(c.FullPath())

			// internal/errors imports this package, so the envelope is written here.
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":       "INTERNAL_SERVER_ERROR",
					"message":    "An unexpected error occurred",
					"request_id": GetRequestID(c),
				},
			})
		}()

		c.Next()
	}
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/landbroker/api/internal/models"
)

const (
	// ActorKey is the context key for the authenticated actor
	ActorKey = "actor"
	// ActorIDHeader carries the actor ID set by the authentication gateway
	ActorIDHeader = "X-Actor-ID"
	// ActorRoleHeader carries the actor role set by the authentication gateway
	ActorRoleHeader = "X-Actor-Role"
)

// Actor reads the gateway identity headers into the Gin context.
// Requests without an actor ID pass through with no actor set; handlers for
// mutating routes reject them.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(ActorIDHeader))
		if id != "" {
			c.Set(ActorKey, models.Actor{
				ID:   id,
				Role: models.Role(strings.ToLower(strings.TrimSpace(c.GetHeader(ActorRoleHeader)))),
			})
		}
		c.Next()
	}
}

// GetActor retrieves the actor from the Gin context.
func GetActor(c *gin.Context) (models.Actor, bool) {
	if v, exists := c.Get(ActorKey); exists {
		if actor, ok := v.(models.Actor); ok {
			return actor, true
		}
	}
	return models.Actor{}, false
}

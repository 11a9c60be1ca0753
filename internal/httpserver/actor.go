package httpserver

import (
	"strings"

	"customer-accounts/internal/authz"
	"customer-accounts/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const actorKey = "actor"

// actorMiddleware reads the caller identity set by the gateway. A missing
// header, or one that is not a UUID, is the anonymous actor.
func actorMiddleware(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := authz.Anonymous
		if raw := strings.TrimSpace(c.GetHeader(header)); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				actor = authz.Actor{CustomerID: id.String()}
			} else {
				logger.FromGin(c).Debug("ignoring malformed actor header", zap.String("header", header))
			}
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// permit gates routes whose rule does not depend on a stored owner.
// Owner-bound writes are checked by the services once the owner is known.
func permit(resource authz.Resource, action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authz.Check(actorFrom(c), resource, action, ""); err != nil {
			writeError(c, err)
			return
		}
		c.Next()
	}
}

func actorFrom(c *gin.Context) authz.Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(authz.Actor); ok {
			return a
		}
	}
	return authz.Anonymous
}

// pathID returns the :id parameter in canonical UUID form when it parses,
// so it compares equal to stored ids and actor ids.
func pathID(c *gin.Context) string {
	raw := c.Param("id")
	if id, err := uuid.Parse(raw); err == nil {
		return id.String()
	}
	return raw
}

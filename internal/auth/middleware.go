package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/approvalhq/workflow-service/internal/domain/entity"
)

const actorContextKey = "actor"

// Middleware resolves the Authorization header into an actor and stores it
// on the request context. Requests without a resolvable credential are
// rejected with 401 before reaching any handler.
func Middleware(authenticator *Authenticator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "missing authorization header",
			})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		actor, err := authenticator.Resolve(tokenString)
		if err != nil {
			logger.Warn("Authentication failed", zap.String("ip", c.ClientIP()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "invalid token",
			})
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// ActorFrom retrieves the authenticated actor stored by Middleware
func ActorFrom(c *gin.Context) (entity.Actor, bool) {
	value, exists := c.Get(actorContextKey)
	if !exists {
		return entity.Actor{}, false
	}
	actor, ok := value.(entity.Actor)
	return actor, ok
}

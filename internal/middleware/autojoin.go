package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AutoJoin enrolls the user into every organization whose work email
// domain matches the user's email domain. Failures are logged and the
// request proceeds; membership enrollment must never take down an
// unrelated endpoint.
func AutoJoin(orgs OrgService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		joined, err := orgs.AutoJoinByDomain(c.Request.Context(), user.ID, user.Email)
		if err != nil {
			logger.Warn("auto-join by domain", zap.Error(err), zap.String("user_id", user.ID.String()))
		} else if joined > 0 {
			logger.Info("auto-joined organizations",
				zap.Int("count", joined),
				zap.String("user_id", user.ID.String()),
			)
		}
		c.Next()
	}
}

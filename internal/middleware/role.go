package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/office-lunch/backend/internal/models"
	"github.com/office-lunch/backend/pkg/response"
)

// RequireSystemAdmin allows only users holding the platform-wide admin
// role. Organization roles do not count here.
func RequireSystemAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c).Role != models.RoleAdmin {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireActiveOrgAdmin allows system admins and users who administer
// the request's active organization. Guards writes scoped to that org
// so an admin of one tenant cannot edit another tenant they merely
// belong to.
func RequireActiveOrgAdmin(orgs OrgService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user.Role == models.RoleAdmin {
			c.Next()
			return
		}
		orgID, ok := ActiveOrgID(c)
		if !ok {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}
		isAdmin, err := orgs.IsOrgAdmin(c.Request.Context(), user.ID, orgID)
		if err != nil {
			logger.Error("org admin check", zap.Error(err), zap.String("user_id", user.ID.String()))
			response.Internal(c, "authorization check failed")
			c.Abort()
			return
		}
		if !isAdmin {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAnyOrgAdmin allows system admins and users who are admin or
// owner of at least one organization.
func RequireAnyOrgAdmin(orgs OrgService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user.Role == models.RoleAdmin {
			c.Next()
			return
		}
		ok, err := orgs.IsAdminAnywhere(c.Request.Context(), user.ID)
		if err != nil {
			logger.Error("org admin check", zap.Error(err), zap.String("user_id", user.ID.String()))
			response.Internal(c, "authorization check failed")
			c.Abort()
			return
		}
		if !ok {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

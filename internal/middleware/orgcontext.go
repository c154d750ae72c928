package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/office-lunch/backend/internal/models"
)

// SessionWriter persists the active-organization choice on a session.
// Implemented by the auth repository.
type SessionWriter interface {
	SetActiveOrganization(ctx context.Context, sessionID, orgID uuid.UUID) error
}

// OrgService is the slice of the organizations service the middleware
// depends on. Declared here so middleware does not import the
// organizations package, which imports middleware for its handlers.
type OrgService interface {
	IsMember(ctx context.Context, userID, orgID uuid.UUID) (bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.OrganizationWithRole, error)
	CreateForUser(ctx context.Context, userID uuid.UUID, email, name string) (*models.Organization, error)
	IsOrgAdmin(ctx context.Context, userID, orgID uuid.UUID) (bool, error)
	IsAdminAnywhere(ctx context.Context, userID uuid.UUID) (bool, error)
	AutoJoinByDomain(ctx context.Context, userID uuid.UUID, email string) (int, error)
}

// OrgContext resolves which organization this request operates on. A
// session's stored choice wins when the user is still a member of it;
// otherwise the user's first organization is used and, for sessions,
// persisted. A first-time user with no organizations gets a personal
// one created on the spot. All failures here are logged and the request
// continues; org-scoped handlers reject it themselves when no active
// org could be resolved.
func OrgContext(orgs OrgService, sessions SessionWriter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		session := CurrentSession(c)
		ctx := c.Request.Context()

		if session != nil && session.ActiveOrganizationID != nil {
			ok, err := orgs.IsMember(ctx, user.ID, *session.ActiveOrganizationID)
			if err != nil {
				logger.Error("active org membership check", zap.Error(err), zap.String("user_id", user.ID.String()))
			} else if ok {
				c.Set(ContextActiveOrgID, *session.ActiveOrganizationID)
				c.Next()
				return
			}
			// Stored choice is stale (membership revoked); fall back.
		}

		list, err := orgs.ListForUser(ctx, user.ID)
		if err != nil {
			logger.Error("list organizations", zap.Error(err), zap.String("user_id", user.ID.String()))
			c.Next()
			return
		}
		var orgID uuid.UUID
		if len(list) == 0 {
			org, err := orgs.CreateForUser(ctx, user.ID, user.Email, user.Name)
			if err != nil {
				logger.Error("create personal organization", zap.Error(err), zap.String("user_id", user.ID.String()))
				c.Next()
				return
			}
			logger.Info("personal organization created",
				zap.String("user_id", user.ID.String()),
				zap.String("slug", org.Slug),
			)
			orgID = org.ID
		} else {
			orgID = list[0].ID
		}
		c.Set(ContextActiveOrgID, orgID)
		if session != nil {
			if err := sessions.SetActiveOrganization(ctx, session.ID, orgID); err != nil {
				logger.Warn("persist active organization", zap.Error(err), zap.String("session_id", session.ID.String()))
			}
		}
		c.Next()
	}
}

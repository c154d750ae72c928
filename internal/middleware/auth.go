package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/office-lunch/backend/internal/models"
	"github.com/office-lunch/backend/pkg/response"
)

const (
	// ContextUser is the key for the authenticated *models.User.
	ContextUser = "current_user"
	// ContextSession is the key for the *models.Session. Absent for
	// API token authentication.
	ContextSession = "session"
	// ContextActiveOrgID is the key for the resolved active organization ID.
	ContextActiveOrgID = "active_org_id"

	// SessionCookie is the cookie carrying the opaque session token.
	SessionCookie = "session_token"
)

// SessionSource resolves session tokens and user IDs. Implemented by the
// auth repository.
type SessionSource interface {
	GetSessionByToken(ctx context.Context, token string) (*models.Session, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenValidator resolves API tokens to their owning user. Implemented by
// the tokens service.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (uuid.UUID, error)
	Prefix() string
}

// Authenticate resolves the request's credential into a user and, for
// session logins, a session. Two credential kinds are accepted: the
// session cookie (or the same opaque token as a bearer), and API tokens
// recognized by their prefix. Banned users are rejected with 403 unless
// the ban has expired.
func Authenticate(sessions SessionSource, tokens TokenValidator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cred := extractCredential(c)
		if cred == "" {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}
		ctx := c.Request.Context()

		var user *models.User
		if strings.HasPrefix(cred, tokens.Prefix()) {
			userID, err := tokens.Validate(ctx, cred)
			if err != nil {
				response.Unauthorized(c, "invalid or expired token")
				c.Abort()
				return
			}
			user, err = sessions.GetUserByID(ctx, userID)
			if err != nil {
				response.Unauthorized(c, "invalid or expired token")
				c.Abort()
				return
			}
		} else {
			session, err := sessions.GetSessionByToken(ctx, cred)
			if err != nil {
				response.Unauthorized(c, "invalid or expired session")
				c.Abort()
				return
			}
			user, err = sessions.GetUserByID(ctx, session.UserID)
			if err != nil {
				logger.Error("session user lookup", zap.Error(err), zap.String("user_id", session.UserID.String()))
				response.Unauthorized(c, "invalid or expired session")
				c.Abort()
				return
			}
			c.Set(ContextSession, session)
		}

		if user.BanActive(time.Now()) {
			response.Forbidden(c, "account is banned")
			c.Abort()
			return
		}

		c.Set(ContextUser, user)
		c.Next()
	}
}

// extractCredential pulls the session cookie or Authorization header
// value. Bearer prefix is optional.
func extractCredential(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return header
}

// CurrentUser returns the authenticated user set by Authenticate.
func CurrentUser(c *gin.Context) *models.User {
	return c.MustGet(ContextUser).(*models.User)
}

// CurrentSession returns the session, or nil for API token requests.
func CurrentSession(c *gin.Context) *models.Session {
	if v, ok := c.Get(ContextSession); ok {
		return v.(*models.Session)
	}
	return nil
}

// ActiveOrgID returns the active organization resolved by OrgContext.
// ok is false when the user has no organizations.
func ActiveOrgID(c *gin.Context) (uuid.UUID, bool) {
	if v, ok := c.Get(ContextActiveOrgID); ok {
		return v.(uuid.UUID), true
	}
	return uuid.Nil, false
}

package users

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/office-lunch/backend/internal/middleware"
	"github.com/office-lunch/backend/internal/organizations"
	"github.com/office-lunch/backend/pkg/response"
)

// Handler handles admin user provisioning endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a users handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// List handles GET /api/admin/users. ?scope=unassigned switches to users
// belonging to no organization.
func (h *Handler) List(c *gin.Context) {
	admin := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	var (
		list any
		err  error
	)
	switch c.Query("scope") {
	case "":
		list, err = h.svc.List(ctx, admin.ID)
	case "unassigned":
		list, err = h.svc.ListUnassigned(ctx)
	default:
		response.BadRequest(c, "unknown scope")
		return
	}
	if err != nil {
		h.fail(c, err, "list users")
		return
	}
	response.OK(c, list)
}

// CreateRequest is the body for POST /api/admin/users.
type CreateRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Create handles POST /api/admin/users: provision a user into the
// admin's active organization.
func (h *Handler) Create(c *gin.Context) {
	orgID, ok := middleware.ActiveOrgID(c)
	if !ok {
		response.NotFound(c, "you belong to no organizations")
		return
	}
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "email required")
		return
	}
	u, err := h.svc.Create(c.Request.Context(), orgID, CreateInput{Email: body.Email, Name: body.Name, Role: body.Role})
	if err != nil {
		h.fail(c, err, "create user")
		return
	}
	response.Created(c, u.ToPublic())
}

// UpdateRequest is the body for PATCH /api/admin/users/:id.
type UpdateRequest struct {
	Name    string `json:"name"`
	OrgRole string `json:"member_role"`
}

// Update handles PATCH /api/admin/users/:id.
func (h *Handler) Update(c *gin.Context) {
	admin := middleware.CurrentUser(c)
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var body UpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "nothing to update")
		return
	}
	if err := h.svc.Update(c.Request.Context(), admin.ID, targetID, UpdateInput{Name: body.Name, OrgRole: body.OrgRole}); err != nil {
		h.fail(c, err, "update user")
		return
	}
	response.Message(c, "user updated")
}

// Delete handles DELETE /api/admin/users/:id: revoke the target's
// memberships in organizations shared with the admin.
func (h *Handler) Delete(c *gin.Context) {
	admin := middleware.CurrentUser(c)
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	n, err := h.svc.Remove(c.Request.Context(), admin.ID, targetID)
	if err != nil {
		h.fail(c, err, "remove user")
		return
	}
	response.OK(c, gin.H{"memberships_removed": n})
}

func (h *Handler) fail(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrInvalidRole), errors.Is(err, ErrSelfRemoval):
		response.BadRequest(c, err.Error())
	case errors.Is(err, organizations.ErrInvalidRole):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, err.Error())
	default:
		h.logger.Error(op, zap.Error(err))
		response.Internal(c, "something went wrong")
	}
}

package organizations

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/office-lunch/backend/internal/middleware"
	"github.com/office-lunch/backend/internal/models"
	"github.com/office-lunch/backend/pkg/response"
	"github.com/office-lunch/backend/pkg/storage"
)

// Handler handles organization HTTP endpoints.
type Handler struct {
	svc      *Service
	repo     *Repository
	sessions middleware.SessionWriter
	s3       *storage.S3
	logger   *zap.Logger
}

// NewHandler creates an organizations handler. s3 may be nil; logo
// uploads then report the feature as unavailable.
func NewHandler(svc *Service, repo *Repository, sessions middleware.SessionWriter, s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, repo: repo, sessions: sessions, s3: s3, logger: logger}
}

// ListMine handles GET /api/organizations: the caller's organizations
// with membership role, the active one flagged.
func (h *Handler) ListMine(c *gin.Context) {
	user := middleware.CurrentUser(c)
	list, err := h.svc.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("list organizations", zap.Error(err))
		response.Internal(c, "failed to load organizations")
		return
	}
	activeID, _ := middleware.ActiveOrgID(c)
	type orgWithActive struct {
		models.OrganizationWithRole
		Active bool `json:"active"`
	}
	out := make([]orgWithActive, 0, len(list))
	for _, o := range list {
		out = append(out, orgWithActive{OrganizationWithRole: o, Active: o.ID == activeID})
	}
	response.OK(c, out)
}

// SwitchRequest is the body for POST /api/organization/switch.
type SwitchRequest struct {
	OrganizationID uuid.UUID `json:"organization_id" binding:"required"`
}

// Switch handles POST /api/organization/switch. Membership is verified
// before the session is touched, so a rejected switch leaves the prior
// active organization in place.
func (h *Handler) Switch(c *gin.Context) {
	user := middleware.CurrentUser(c)
	session := middleware.CurrentSession(c)
	if session == nil {
		response.BadRequest(c, "switching requires a session login")
		return
	}
	var body SwitchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "organization_id required")
		return
	}
	ctx := c.Request.Context()
	ok, err := h.svc.IsMember(ctx, user.ID, body.OrganizationID)
	if err != nil {
		h.logger.Error("switch membership check", zap.Error(err))
		response.Internal(c, "failed to switch organization")
		return
	}
	if !ok {
		response.Forbidden(c, "you are not a member of this organization")
		return
	}
	if err := h.sessions.SetActiveOrganization(ctx, session.ID, body.OrganizationID); err != nil {
		h.logger.Error("persist active organization", zap.Error(err))
		response.Internal(c, "failed to switch organization")
		return
	}
	response.OK(c, gin.H{"active_organization_id": body.OrganizationID})
}

// SettingsRequest is the body for PATCH settings.
type SettingsRequest struct {
	WorkEmailDomain *string `json:"work_email_domain" binding:"required"`
}

// UpdateSettings handles PATCH /api/admin/organizations/:id/settings.
// Allowed for the org's admins/owner and for system admins.
func (h *Handler) UpdateSettings(c *gin.Context) {
	orgID, ok := h.authorizeOrgAdmin(c)
	if !ok {
		return
	}
	var body SettingsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "work_email_domain required (empty string clears it)")
		return
	}
	if err := h.svc.UpdateWorkEmailDomain(c.Request.Context(), orgID, *body.WorkEmailDomain); err != nil {
		switch {
		case errors.Is(err, ErrInvalidDomain):
			response.BadRequest(c, err.Error())
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, err.Error())
		default:
			h.logger.Error("update work email domain", zap.Error(err))
			response.Internal(c, "failed to update settings")
		}
		return
	}
	response.Message(c, "settings updated")
}

// ListAll handles GET /api/admin/organizations: every organization with
// its members. System admins only (gated in the router).
func (h *Handler) ListAll(c *gin.Context) {
	list, err := h.repo.ListAllWithMembers(c.Request.Context())
	if err != nil {
		h.logger.Error("list all organizations", zap.Error(err))
		response.Internal(c, "failed to load organizations")
		return
	}
	response.OK(c, list)
}

// UploadLogo handles POST /api/admin/organizations/:id/logo (multipart
// field "logo"). The object key is stored; the response carries a
// pre-signed URL for immediate display.
func (h *Handler) UploadLogo(c *gin.Context) {
	orgID, ok := h.authorizeOrgAdmin(c)
	if !ok {
		return
	}
	if h.s3 == nil {
		response.ServiceUnavailable(c, "logo storage not configured")
		return
	}
	file, err := c.FormFile("logo")
	if err != nil {
		response.BadRequest(c, "multipart field \"logo\" required")
		return
	}
	if file.Size > storage.MaxLogoFileSize {
		response.BadRequest(c, "logo must be 2MB or smaller")
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !storage.ValidateLogoFileType(contentType, file.Filename) {
		response.BadRequest(c, "logo must be a jpg, png, webp or svg image")
		return
	}
	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "could not read upload")
		return
	}
	defer src.Close()

	ctx := c.Request.Context()
	key, err := h.s3.UploadLogo(ctx, orgID, file.Filename, contentType, src)
	if err != nil {
		h.logger.Error("upload logo", zap.Error(err), zap.String("org_id", orgID.String()))
		response.Internal(c, "failed to upload logo")
		return
	}
	if err := h.repo.UpdateLogo(ctx, orgID, key); err != nil {
		h.logger.Error("store logo key", zap.Error(err), zap.String("org_id", orgID.String()))
		response.Internal(c, "failed to store logo")
		return
	}
	url, err := h.s3.PresignLogoURL(ctx, key)
	if err != nil {
		h.logger.Warn("presign logo url", zap.Error(err))
		url = ""
	}
	response.OK(c, gin.H{"logo": key, "url": url})
}

// authorizeOrgAdmin parses :id and checks the caller administers that
// organization or is a system admin.
func (h *Handler) authorizeOrgAdmin(c *gin.Context) (uuid.UUID, bool) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return uuid.Nil, false
	}
	user := middleware.CurrentUser(c)
	if user.Role == models.RoleAdmin {
		return orgID, true
	}
	ok, err := h.svc.IsOrgAdmin(c.Request.Context(), user.ID, orgID)
	if err != nil {
		h.logger.Error("org admin check", zap.Error(err))
		response.Internal(c, "authorization check failed")
		return uuid.Nil, false
	}
	if !ok {
		response.Forbidden(c, "you do not administer this organization")
		return uuid.Nil, false
	}
	return orgID, true
}

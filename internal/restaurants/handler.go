package restaurants

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/office-lunch/backend/internal/middleware"
	"github.com/office-lunch/backend/internal/models"
	"github.com/office-lunch/backend/pkg/response"
)

// Handler handles restaurant catalog HTTP endpoints. All routes are
// scoped to the caller's active organization; writes sit behind the org
// admin gate in the router.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a restaurants handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /api/restaurants.
func (h *Handler) List(c *gin.Context) {
	orgID, ok := middleware.ActiveOrgID(c)
	if !ok {
		response.NotFound(c, "you belong to no organizations")
		return
	}
	list, err := h.repo.ListByOrg(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("list restaurants", zap.Error(err))
		response.Internal(c, "failed to load restaurants")
		return
	}
	response.OK(c, list)
}

// UpsertRequest is the body for POST and PATCH.
type UpsertRequest struct {
	Name     string `json:"name" binding:"required"`
	MenuLink string `json:"menu_link" binding:"required"`
}

func validateUpsert(body *UpsertRequest) string {
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return "name required"
	}
	body.MenuLink = strings.TrimSpace(body.MenuLink)
	if body.MenuLink == "" {
		return "menu_link required"
	}
	u, err := url.Parse(body.MenuLink)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "menu_link must be a valid http(s) URL"
	}
	return ""
}

// Create handles POST /api/restaurants.
func (h *Handler) Create(c *gin.Context) {
	orgID, ok := middleware.ActiveOrgID(c)
	if !ok {
		response.NotFound(c, "you belong to no organizations")
		return
	}
	var body UpsertRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name and menu_link required")
		return
	}
	if msg := validateUpsert(&body); msg != "" {
		response.BadRequest(c, msg)
		return
	}
	rt := &models.Restaurant{OrganizationID: orgID, Name: body.Name, MenuLink: body.MenuLink}
	if err := h.repo.Create(c.Request.Context(), rt); err != nil {
		h.logger.Error("create restaurant", zap.Error(err))
		response.Internal(c, "failed to create restaurant")
		return
	}
	response.Created(c, rt)
}

// Update handles PATCH /api/restaurants/:id.
func (h *Handler) Update(c *gin.Context) {
	rt, ok := h.loadScoped(c)
	if !ok {
		return
	}
	var body UpsertRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name and menu_link required")
		return
	}
	if msg := validateUpsert(&body); msg != "" {
		response.BadRequest(c, msg)
		return
	}
	if _, err := h.repo.Update(c.Request.Context(), rt.ID, body.Name, body.MenuLink); err != nil {
		h.logger.Error("update restaurant", zap.Error(err))
		response.Internal(c, "failed to update restaurant")
		return
	}
	response.Message(c, "restaurant updated")
}

// Delete handles DELETE /api/restaurants/:id.
func (h *Handler) Delete(c *gin.Context) {
	rt, ok := h.loadScoped(c)
	if !ok {
		return
	}
	if _, err := h.repo.Delete(c.Request.Context(), rt.ID); err != nil {
		h.logger.Error("delete restaurant", zap.Error(err))
		response.Internal(c, "failed to delete restaurant")
		return
	}
	response.Message(c, "restaurant deleted")
}

// loadScoped parses :id and checks the restaurant belongs to the active
// organization. A foreign restaurant reads as not found, not forbidden,
// so tenants cannot probe each other's catalogs.
func (h *Handler) loadScoped(c *gin.Context) (*models.Restaurant, bool) {
	orgID, ok := middleware.ActiveOrgID(c)
	if !ok {
		response.NotFound(c, "you belong to no organizations")
		return nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid restaurant id")
		return nil, false
	}
	rt, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, ErrNotFound.Error())
		return nil, false
	}
	if err != nil {
		h.logger.Error("load restaurant", zap.Error(err))
		response.Internal(c, "failed to load restaurant")
		return nil, false
	}
	if rt.OrganizationID != orgID {
		response.NotFound(c, ErrNotFound.Error())
		return nil, false
	}
	return rt, true
}

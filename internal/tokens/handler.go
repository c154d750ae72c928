package tokens

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/office-lunch/backend/internal/middleware"
	"github.com/office-lunch/backend/pkg/queue"
	"github.com/office-lunch/backend/pkg/response"
)

// Handler handles personal API token endpoints.
type Handler struct {
	svc    *Service
	queue  *queue.Queue
	logger *zap.Logger
}

// NewHandler creates a tokens handler. q may be nil; the sweep endpoint
// then runs the purge inline instead of enqueueing it.
func NewHandler(svc *Service, q *queue.Queue, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, queue: q, logger: logger}
}

// List handles GET /api/tokens.
func (h *Handler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	list, err := h.svc.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("list tokens", zap.Error(err))
		response.Internal(c, "failed to load tokens")
		return
	}
	response.OK(c, list)
}

// CreateRequest is the body for POST /api/tokens.
type CreateRequest struct {
	Name          string `json:"name" binding:"required"`
	ExpiresInDays int    `json:"expires_in_days"`
}

// Create handles POST /api/tokens. The plaintext secret appears in this
// response and nowhere else except the reveal endpoint.
func (h *Handler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	if body.ExpiresInDays < 0 {
		response.BadRequest(c, "expires_in_days must not be negative")
		return
	}
	var expiresAt *time.Time
	if body.ExpiresInDays > 0 {
		t := time.Now().AddDate(0, 0, body.ExpiresInDays)
		expiresAt = &t
	}
	created, err := h.svc.Create(c.Request.Context(), user.ID, body.Name, expiresAt)
	if err != nil {
		h.logger.Error("create token", zap.Error(err))
		response.Internal(c, "failed to create token")
		return
	}
	response.Created(c, created)
}

// Delete handles DELETE /api/tokens/:id.
func (h *Handler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid token id")
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, user.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		h.logger.Error("delete token", zap.Error(err))
		response.Internal(c, "failed to delete token")
		return
	}
	response.Message(c, "token deleted")
}

// DeleteAll handles DELETE /api/tokens.
func (h *Handler) DeleteAll(c *gin.Context) {
	user := middleware.CurrentUser(c)
	n, err := h.svc.DeleteAllForUser(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("delete all tokens", zap.Error(err))
		response.Internal(c, "failed to delete tokens")
		return
	}
	response.OK(c, gin.H{"deleted": n})
}

// Reveal handles GET /api/tokens/:id/reveal.
func (h *Handler) Reveal(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid token id")
		return
	}
	plaintext, err := h.svc.Reveal(c.Request.Context(), id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, ErrRevealUnavailable):
			response.NotFound(c, err.Error())
		default:
			h.logger.Error("reveal token", zap.Error(err))
			response.Internal(c, "failed to reveal token")
		}
		return
	}
	response.OK(c, gin.H{"token": plaintext})
}

// Sweep handles POST /api/admin/tokens/sweep: hand the expired-token
// purge to the maintenance worker. System admins only (gated in the
// router).
func (h *Handler) Sweep(c *gin.Context) {
	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()
	if h.queue != nil {
		if err := h.queue.EnqueueTokenSweep(ctx, queue.TokenSweepPayload{RequestedBy: user.ID}); err != nil {
			h.logger.Error("enqueue token sweep", zap.Error(err))
			response.Internal(c, "failed to schedule sweep")
			return
		}
		response.Message(c, "sweep scheduled")
		return
	}
	n, err := h.svc.Sweep(ctx)
	if err != nil {
		h.logger.Error("token sweep", zap.Error(err))
		response.Internal(c, "failed to sweep tokens")
		return
	}
	response.OK(c, gin.H{"purged": n})
}

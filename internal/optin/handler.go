package optin

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/office-lunch/backend/internal/middleware"
	"github.com/office-lunch/backend/pkg/response"
)

// Handler handles opt-in HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an opt-in handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// ToggleRequest is the body for POST /api/v1/opt-in.
type ToggleRequest struct {
	Action string `json:"action" binding:"required"`
	Date   string `json:"date"`
}

// statusBody is the GET /api/v1/opt-in response.
type statusBody struct {
	OptedIn   bool       `json:"opted_in"`
	Date      string     `json:"date"`
	OptedInAt *time.Time `json:"opted_in_at,omitempty"`
}

// Status handles GET /api/v1/opt-in. Reports the caller's status for the
// active organization and the given date (default today).
func (h *Handler) Status(c *gin.Context) {
	user := middleware.CurrentUser(c)
	orgID, ok := middleware.ActiveOrgID(c)
	if !ok {
		response.NotFound(c, "you belong to no organizations")
		return
	}
	date := c.Query("date")
	optedIn, at, err := h.svc.Status(c.Request.Context(), user.ID, orgID, date)
	if err != nil {
		h.fail(c, err, "load opt-in status")
		return
	}
	if date == "" {
		date = h.svc.Today()
	}
	response.OK(c, statusBody{OptedIn: optedIn, Date: date, OptedInAt: at})
}

// Toggle handles POST /api/v1/opt-in. Accepts session and API token
// credentials alike.
func (h *Handler) Toggle(c *gin.Context) {
	var body ToggleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "action required: \"in\" or \"out\"")
		return
	}
	h.toggle(c, body.Action, body.Date)
}

// ToggleQuery handles GET /api/opt-in?action=in|out&date=. A convenience
// variant for email and chat links.
func (h *Handler) ToggleQuery(c *gin.Context) {
	h.toggle(c, c.Query("action"), c.Query("date"))
}

func (h *Handler) toggle(c *gin.Context, action, date string) {
	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()
	switch action {
	case "in":
		n, err := h.svc.OptIn(ctx, user.ID, date)
		if err != nil {
			h.fail(c, err, "opt in")
			return
		}
		response.OK(c, gin.H{"opted_in": true, "organizations": n})
	case "out":
		_, err := h.svc.OptOut(ctx, user.ID, date)
		if err != nil {
			h.fail(c, err, "opt out")
			return
		}
		response.OK(c, gin.H{"opted_in": false})
	default:
		response.BadRequest(c, "action must be \"in\" or \"out\"")
	}
}

// AdminList handles GET /api/admin/opt-ins?date&listType=. listType
// "not-opted-in" flips the report to members missing for the date.
func (h *Handler) AdminList(c *gin.Context) {
	admin := middleware.CurrentUser(c)
	date := c.Query("date")
	ctx := c.Request.Context()

	var (
		list any
		err  error
	)
	switch c.Query("listType") {
	case "", "opted-in":
		list, err = h.svc.OptedInUsers(ctx, admin.ID, date)
	case "not-opted-in":
		list, err = h.svc.NotOptedInUsers(ctx, admin.ID, date)
	default:
		response.BadRequest(c, "listType must be \"opted-in\" or \"not-opted-in\"")
		return
	}
	if err != nil {
		h.fail(c, err, "opt-in report")
		return
	}
	response.OK(c, list)
}

// AdminListOptOuts handles GET /api/admin/opt-outs?date: the members who
// have not opted in for the date.
func (h *Handler) AdminListOptOuts(c *gin.Context) {
	admin := middleware.CurrentUser(c)
	list, err := h.svc.NotOptedInUsers(c.Request.Context(), admin.ID, c.Query("date"))
	if err != nil {
		h.fail(c, err, "opt-out report")
		return
	}
	response.OK(c, list)
}

// AdminToggleRequest is the body for POST /api/admin/opt-ins.
type AdminToggleRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Action string    `json:"action" binding:"required"`
	Date   string    `json:"date"`
}

// AdminToggle handles POST /api/admin/opt-ins: set another user's status.
func (h *Handler) AdminToggle(c *gin.Context) {
	admin := middleware.CurrentUser(c)
	var body AdminToggleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "user_id and action required")
		return
	}
	ctx := c.Request.Context()
	switch body.Action {
	case "in":
		n, err := h.svc.OptInForUser(ctx, admin.ID, body.UserID, body.Date)
		if err != nil {
			h.fail(c, err, "admin opt in")
			return
		}
		response.OK(c, gin.H{"opted_in": true, "organizations": n})
	case "out":
		_, err := h.svc.OptOutForUser(ctx, admin.ID, body.UserID, body.Date)
		if err != nil {
			h.fail(c, err, "admin opt out")
			return
		}
		response.OK(c, gin.H{"opted_in": false})
	default:
		response.BadRequest(c, "action must be \"in\" or \"out\"")
	}
}

func (h *Handler) fail(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, ErrInvalidDate):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrNoOrganizations):
		response.NotFound(c, err.Error())
	case errors.Is(err, ErrNotAuthorized):
		response.Forbidden(c, err.Error())
	default:
		h.logger.Error(op, zap.Error(err))
		response.Internal(c, "something went wrong")
	}
}

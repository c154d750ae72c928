package orders

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/office-lunch/backend/internal/middleware"
	"github.com/office-lunch/backend/pkg/response"
)

// Handler handles order HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an orders handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// List handles GET /api/orders?restaurantId=.
func (h *Handler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	var restaurantID *uuid.UUID
	if raw := c.Query("restaurantId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid restaurantId")
			return
		}
		restaurantID = &id
	}
	list, err := h.svc.ListForUser(c.Request.Context(), user.ID, restaurantID)
	if err != nil {
		h.fail(c, err, "list orders")
		return
	}
	response.OK(c, list)
}

// CreateRequest is the body for POST /api/orders.
type CreateRequest struct {
	RestaurantID uuid.UUID `json:"restaurant_id" binding:"required"`
	OrderDetails string    `json:"order_details" binding:"required"`
}

// Create handles POST /api/orders: place or replace the caller's order
// for a restaurant.
func (h *Handler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	orgID, ok := middleware.ActiveOrgID(c)
	if !ok {
		response.NotFound(c, "you belong to no organizations")
		return
	}
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "restaurant_id and order_details required")
		return
	}
	order, err := h.svc.Upsert(c.Request.Context(), user.ID, orgID, body.RestaurantID, body.OrderDetails)
	if err != nil {
		h.fail(c, err, "place order")
		return
	}
	response.OK(c, order)
}

// Delete handles DELETE /api/orders?restaurantId=.
func (h *Handler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	restaurantID, err := uuid.Parse(c.Query("restaurantId"))
	if err != nil {
		response.BadRequest(c, "restaurantId required")
		return
	}
	if err := h.svc.Delete(c.Request.Context(), user.ID, restaurantID); err != nil {
		h.fail(c, err, "delete order")
		return
	}
	response.Message(c, "order deleted")
}

// AdminList handles GET /api/admin/orders?restaurantId=: a restaurant's
// orders with the ordering users.
func (h *Handler) AdminList(c *gin.Context) {
	orgID, ok := middleware.ActiveOrgID(c)
	if !ok {
		response.NotFound(c, "you belong to no organizations")
		return
	}
	restaurantID, err := uuid.Parse(c.Query("restaurantId"))
	if err != nil {
		response.BadRequest(c, "restaurantId required")
		return
	}
	list, err := h.svc.ListForRestaurant(c.Request.Context(), orgID, restaurantID)
	if err != nil {
		h.fail(c, err, "list restaurant orders")
		return
	}
	response.OK(c, list)
}

// AdminCreateRequest is the body for POST /api/admin/orders.
type AdminCreateRequest struct {
	UserID       uuid.UUID `json:"user_id" binding:"required"`
	RestaurantID uuid.UUID `json:"restaurant_id" binding:"required"`
	OrderDetails string    `json:"order_details" binding:"required"`
}

// AdminCreate handles POST /api/admin/orders: place an order on behalf
// of another user, restricted to the admin's active organization.
func (h *Handler) AdminCreate(c *gin.Context) {
	orgID, ok := middleware.ActiveOrgID(c)
	if !ok {
		response.NotFound(c, "you belong to no organizations")
		return
	}
	var body AdminCreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "user_id, restaurant_id and order_details required")
		return
	}
	order, err := h.svc.UpsertForUser(c.Request.Context(), orgID, body.UserID, body.RestaurantID, body.OrderDetails)
	if err != nil {
		h.fail(c, err, "admin place order")
		return
	}
	response.OK(c, order)
}

// UpdateRequest is the body for PATCH /api/admin/orders/:id.
type UpdateRequest struct {
	OrderDetails string `json:"order_details" binding:"required"`
}

// AdminUpdate handles PATCH /api/admin/orders/:id.
func (h *Handler) AdminUpdate(c *gin.Context) {
	orgID, ok := middleware.ActiveOrgID(c)
	if !ok {
		response.NotFound(c, "you belong to no organizations")
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	var body UpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "order_details required")
		return
	}
	if err := h.svc.UpdateByID(c.Request.Context(), orgID, orderID, body.OrderDetails); err != nil {
		h.fail(c, err, "admin update order")
		return
	}
	response.Message(c, "order updated")
}

// AdminDelete handles DELETE /api/admin/orders/:id.
func (h *Handler) AdminDelete(c *gin.Context) {
	orgID, ok := middleware.ActiveOrgID(c)
	if !ok {
		response.NotFound(c, "you belong to no organizations")
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	if err := h.svc.DeleteByID(c.Request.Context(), orgID, orderID); err != nil {
		h.fail(c, err, "admin delete order")
		return
	}
	response.Message(c, "order deleted")
}

// UserOrders handles GET /api/admin/user-orders?userId=.
func (h *Handler) UserOrders(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		response.BadRequest(c, "userId required")
		return
	}
	list, err := h.svc.ListForUserWithRestaurants(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "user orders report")
		return
	}
	response.OK(c, list)
}

func (h *Handler) fail(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, ErrEmptyDetails):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrRestaurantNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, ErrWrongOrganization):
		response.Forbidden(c, err.Error())
	case errors.Is(err, ErrDuplicate):
		response.Conflict(c, err.Error())
	default:
		h.logger.Error(op, zap.Error(err))
		response.Internal(c, "something went wrong")
	}
}

// internal/interfaces/http/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/order"
)

// OrderHandler handles order status and admin order endpoints
type OrderHandler struct {
	orderService *order.Service
	config       *config.Config
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, cfg *config.Config) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		config:       cfg,
	}
}

// UpdateStatusRequest moves an order to another status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetStatuses handles GET /orders/statuses
func (h *OrderHandler) GetStatuses(c *gin.Context) {
	respond(c, nil, "Order statuses", order.Options())
}

// GetOrder handles GET /admin/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	sess := currentSession(c, h.config)

	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	res := h.orderService.Details(c.Request.Context(), sess.Credentials, orderID)
	respond(c, sess, "Order details", res)
}

// UpdateOrderStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	sess := currentSession(c, h.config)

	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res := h.orderService.UpdateStatus(c.Request.Context(), sess.Credentials, orderID, req.Status)
	respond(c, sess, "Order status", res)
}

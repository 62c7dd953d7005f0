// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/cart"
	"github.com/sirupsen/logrus"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
	logger      *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, cfg *config.Config, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		config:      cfg,
		logger:      logger,
	}
}

// MountRequest carries the lines a rendered cart page shows
type MountRequest struct {
	Lines []cart.LineItem `json:"lines" binding:"dive"`
}

// AddItemRequest adds one unit of a product
type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// QuantityRequest moves a line's quantity
type QuantityRequest struct {
	Delta     int  `json:"delta" binding:"required,oneof=-1 1"`
	Confirmed bool `json:"confirmed"`
}

// RemoveRequest removes a line once confirmed
type RemoveRequest struct {
	Confirmed bool `json:"confirmed"`
}

// ShippingRequest asks for a freight quote
type ShippingRequest struct {
	PostalCode string `json:"cep"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	sess := currentSession(c, h.config)

	res, err := h.cartService.Refresh(c.Request.Context(), sess)
	if err != nil {
		internalError(c, h.logger, err, "Failed to retrieve cart")
		return
	}

	respond(c, sess, "Cart retrieved successfully", res)
}

// Mount handles POST /cart/mount
func (h *CartHandler) Mount(c *gin.Context) {
	sess := currentSession(c, h.config)

	var req MountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.cartService.Mount(c.Request.Context(), sess, req.Lines)
	if err != nil {
		internalError(c, h.logger, err, "Failed to mount cart")
		return
	}

	respond(c, sess, "Cart mounted", res)
}

// Unmount handles DELETE /cart/mount
func (h *CartHandler) Unmount(c *gin.Context) {
	sess := currentSession(c, h.config)

	if err := h.cartService.Unmount(c.Request.Context(), sess); err != nil {
		internalError(c, h.logger, err, "Failed to unmount cart")
		return
	}

	respond(c, sess, "Cart unmounted", nil)
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	sess := currentSession(c, h.config)

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.cartService.AddItem(c.Request.Context(), sess, req.ProductID)
	if err != nil {
		internalError(c, h.logger, err, "Failed to add item to cart")
		return
	}

	respond(c, sess, "Cart updated", res)
}

// ChangeQuantity handles POST /cart/items/:id/quantity
func (h *CartHandler) ChangeQuantity(c *gin.Context) {
	sess := currentSession(c, h.config)

	itemID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.cartService.ChangeQuantity(c.Request.Context(), sess, itemID, req.Delta, req.Confirmed)
	if err != nil {
		internalError(c, h.logger, err, "Failed to update cart item")
		return
	}

	respond(c, sess, "Cart updated", res)
}

// RemoveItem handles POST /cart/items/:id/remove
func (h *CartHandler) RemoveItem(c *gin.Context) {
	sess := currentSession(c, h.config)

	itemID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req RemoveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	res, err := h.cartService.RemoveItem(c.Request.Context(), sess, itemID, req.Confirmed)
	if err != nil {
		internalError(c, h.logger, err, "Failed to remove cart item")
		return
	}

	respond(c, sess, "Cart updated", res)
}

// EstimateShipping handles POST /cart/shipping
func (h *CartHandler) EstimateShipping(c *gin.Context) {
	sess := currentSession(c, h.config)

	var req ShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.cartService.EstimateShipping(c.Request.Context(), sess, req.PostalCode)
	if err != nil {
		internalError(c, h.logger, err, "Failed to estimate shipping")
		return
	}

	respond(c, sess, "Shipping estimated", res)
}

// ClearShipping handles DELETE /cart/shipping
func (h *CartHandler) ClearShipping(c *gin.Context) {
	sess := currentSession(c, h.config)

	res, err := h.cartService.ClearShipping(c.Request.Context(), sess)
	if err != nil {
		internalError(c, h.logger, err, "Failed to clear shipping")
		return
	}

	respond(c, sess, "Shipping cleared", res)
}

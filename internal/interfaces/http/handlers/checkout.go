// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/checkout"
	"github.com/sirupsen/logrus"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
	config          *config.Config
	logger          *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, cfg *config.Config, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		config:          cfg,
		logger:          logger,
	}
}

// Initiate handles POST /checkout
func (h *CheckoutHandler) Initiate(c *gin.Context) {
	sess := currentSession(c, h.config)

	var req checkout.Request
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	if req.ReturnURL == "" {
		req.ReturnURL = c.GetHeader("X-Return-To")
	}

	res, err := h.checkoutService.Initiate(c.Request.Context(), sess, req)
	if err != nil {
		internalError(c, h.logger, err, "Failed to process checkout")
		return
	}

	respond(c, sess, "Checkout "+string(res.State), res)
}

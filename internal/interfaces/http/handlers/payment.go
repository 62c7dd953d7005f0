// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/payment"
	"github.com/sirupsen/logrus"
)

// PaymentHandler handles the payment dialog endpoints
type PaymentHandler struct {
	paymentService *payment.Service
	config         *config.Config
	logger         *logrus.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *payment.Service, cfg *config.Config, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		config:         cfg,
		logger:         logger,
	}
}

// CopyCode handles POST /payments/:transaction_id/copy
func (h *PaymentHandler) CopyCode(c *gin.Context) {
	sess := currentSession(c, h.config)

	clipboard := &payment.BrowserClipboard{}
	res, err := h.paymentService.CopyPaymentCode(c.Request.Context(), sess, clipboard, c.Param("transaction_id"))
	if err != nil {
		internalError(c, h.logger, err, "Failed to copy payment code")
		return
	}
	res.Clipboard = clipboard.Effect()

	respond(c, sess, "Payment code", res)
}

// Approve handles POST /payments/:transaction_id/approve
func (h *PaymentHandler) Approve(c *gin.Context) {
	sess := currentSession(c, h.config)

	res, err := h.paymentService.SimulateApproval(c.Request.Context(), sess, c.Param("transaction_id"))
	if err != nil {
		internalError(c, h.logger, err, "Failed to approve payment")
		return
	}

	respond(c, sess, "Payment approval", res)
}

// Close handles DELETE /payments/:transaction_id
func (h *PaymentHandler) Close(c *gin.Context) {
	sess := currentSession(c, h.config)

	res, err := h.paymentService.Close(c.Request.Context(), sess, c.Param("transaction_id"))
	if err != nil {
		internalError(c, h.logger, err, "Failed to close payment")
		return
	}

	respond(c, sess, "Payment closed", res)
}

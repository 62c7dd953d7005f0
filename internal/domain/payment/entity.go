// internal/domain/payment/entity.go
package payment

import (
	"errors"
	"time"

	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/view"
)

var (
	// ErrUnknownPayment is returned for transactions not presented in this session
	ErrUnknownPayment = errors.New("payment not presented in this session")
	// ErrNotSimulated is returned when approving a real payment from the browser
	ErrNotSimulated = errors.New("payment is not simulated")
	// ErrSimulationDisabled is returned when simulated approvals are turned off
	ErrSimulationDisabled = errors.New("simulated approval disabled")
)

// ModalKind identifies the PIX payment dialog
const ModalKind = "pix_payment"

// Modal action ids
const (
	ActionCopy    = "copy"
	ActionApprove = "approve"
	ActionOrders  = "orders"
)

// SimulatedPayment is a PIX payment shown to the shopper. It exists only
// while the payment dialog is open.
type SimulatedPayment struct {
	TransactionID string    `json:"transaction_id"`
	Code          string    `json:"payment_code"`
	QRCode        string    `json:"qr_code,omitempty"`
	Simulated     bool      `json:"simulated"`
	OrderID       uint      `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	PresentedAt   time.Time `json:"presented_at"`
}

// Result is the outcome of a payment operation
type Result struct {
	view.Effects
}

// internal/domain/checkout/entity.go
package checkout

import (
	"errors"

	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/view"
	"github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/platform"
)

// ErrInvalidTaxID is returned for taxpayer ids without exactly 11 digits
var ErrInvalidTaxID = errors.New("taxpayer id must have 11 digits")

// State is a step of the checkout flow
type State string

const (
	StateIdle              State = "IDLE"
	StateValidatingCart    State = "VALIDATING_CART"
	StateEmpty             State = "EMPTY"
	StateCheckingAuth      State = "CHECKING_AUTH"
	StateUnauthenticated   State = "UNAUTHENTICATED"
	StateCollectingInfo    State = "COLLECTING_RECIPIENT_INFO"
	StateRecipientDeclined State = "RECIPIENT_DECLINED"
	StateSubmittingOrder   State = "SUBMITTING_ORDER"
	StateServerError       State = "SERVER_ERROR"
	StateOrderCreated      State = "ORDER_CREATED"
	StatePaymentPresented  State = "PAYMENT_PRESENTED"
	StateRedirected        State = "REDIRECTED"
	StateBusy              State = "BUSY"
	StateValidationFailed  State = "VALIDATION_FAILED"
)

const (
	// ModalKindAuthRequired is the dialog asking the shopper to log in
	ModalKindAuthRequired = "auth_required"
	// PromptFieldTaxID is the prompt asking for the taxpayer id
	PromptFieldTaxID = "cpf"
)

// transitions lists the states each state may move to
var transitions = map[State][]State{
	StateIdle:            {StateValidatingCart, StateBusy},
	StateValidatingCart:  {StateEmpty, StateCheckingAuth, StateValidationFailed},
	StateCheckingAuth:    {StateUnauthenticated, StateCollectingInfo},
	StateCollectingInfo:  {StateRecipientDeclined, StateSubmittingOrder},
	StateSubmittingOrder: {StateServerError, StateOrderCreated},
	StateOrderCreated:    {StatePaymentPresented, StateRedirected},
}

// CanTransition reports whether the flow may move from one state to another
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no state follows s
func IsTerminal(s State) bool {
	return len(transitions[s]) == 0
}

// Request carries what the browser knows when checkout starts
type Request struct {
	TaxID     string            `json:"cpf"`
	Address   *platform.Address `json:"endereco_entrega"`
	ReturnURL string            `json:"return_url"`
}

// OrderRef identifies the created order
type OrderRef struct {
	ID     uint   `json:"id"`
	Number string `json:"number"`
}

// Result is the outcome of a checkout attempt
type Result struct {
	view.Effects
	State State     `json:"state"`
	Trace []State   `json:"trace"`
	Order *OrderRef `json:"order,omitempty"`
}

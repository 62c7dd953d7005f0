// internal/infrastructure/platform/checkout.go
package platform

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
)

// ShippingQuote is the platform's freight simulation
type ShippingQuote struct {
	Success    bool                `json:"success"`
	Error      string              `json:"error,omitempty"`
	Fee        decimal.NullDecimal `json:"frete"`
	Service    string              `json:"servico"`
	ETADays    int                 `json:"prazo_dias"`
	Subtotal   decimal.NullDecimal `json:"subtotal"`
	TotalQuote decimal.NullDecimal `json:"total_com_frete"`
}

// AuthStatus answers whether the shopper is logged in
type AuthStatus struct {
	Authenticated bool  `json:"authenticated"`
	IsAdmin       bool  `json:"is_admin"`
	User          *User `json:"user,omitempty"`
}

// User is the logged-in shopper
type User struct {
	ID        uint   `json:"id,omitempty"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	TaxID     string `json:"cpf,omitempty"`
}

// Address is a delivery address
type Address struct {
	Street     string `json:"rua,omitempty"`
	Number     string `json:"numero,omitempty"`
	Complement string `json:"complemento,omitempty"`
	District   string `json:"bairro,omitempty"`
	City       string `json:"cidade,omitempty"`
	State      string `json:"estado,omitempty"`
	PostalCode string `json:"cep"`
}

// OrderRequest creates an order from the current cart
type OrderRequest struct {
	PaymentMethod string  `json:"metodo_pagamento"`
	Address       Address `json:"endereco_entrega"`
	TaxID         string  `json:"cpf,omitempty"`
}

// OrderCreated is the answer to a successful order creation
type OrderCreated struct {
	OrderID     uint         `json:"pedido_id"`
	OrderNumber string       `json:"numero_pedido"`
	Payment     *PaymentInfo `json:"pagamento,omitempty"`
}

// PaymentInfo describes the payment attached to a new order
type PaymentInfo struct {
	Code          string `json:"codigo_pagamento"`
	TransactionID string `json:"id_transacao"`
	Status        string `json:"status"`
	Simulated     bool   `json:"simulado"`
	QRCode        string `json:"qr_code,omitempty"`
}

// WebhookEvent is the payment gateway notification format
type WebhookEvent struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	DevMode   bool   `json:"dev_mode"`
	Simulated bool   `json:"simulado"`
}

type shippingRequest struct {
	PostalCode string `json:"cep_destino"`
}

// QuoteShipping simulates freight for an 8-digit postal code
func (c *Client) QuoteShipping(ctx context.Context, creds *Credentials, postalCode string) (*ShippingQuote, error) {
	var quote ShippingQuote
	if err := c.do(ctx, creds, http.MethodPost, "/api/carrinho/simular-frete/", shippingRequest{PostalCode: postalCode}, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// CheckAuth reports the shopper's authentication state. The answer carries
// the user's name and email only.
func (c *Client) CheckAuth(ctx context.Context, creds *Credentials) (*AuthStatus, error) {
	var status AuthStatus
	if err := c.do(ctx, creds, http.MethodGet, "/api/check-auth/", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// CheckAdmin reports the authentication state with the user's id and
// whether the user administers the store
func (c *Client) CheckAdmin(ctx context.Context, creds *Credentials) (*AuthStatus, error) {
	var status AuthStatus
	if err := c.do(ctx, creds, http.MethodGet, "/api/auth/check/", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// CreateOrder turns the cart into an order
func (c *Client) CreateOrder(ctx context.Context, creds *Credentials, req OrderRequest) (*OrderCreated, error) {
	var created OrderCreated
	if err := c.do(ctx, creds, http.MethodPost, "/api/pedido/criar/", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// SendPaymentWebhook delivers a payment notification to the platform
func (c *Client) SendPaymentWebhook(ctx context.Context, creds *Credentials, event WebhookEvent) error {
	return c.do(ctx, creds, http.MethodPost, "/pagamento/abacatepay/webhook/", event, nil)
}

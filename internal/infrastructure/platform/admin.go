// internal/infrastructure/platform/admin.go
package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// AdminOrder is the order as shown in the admin panel
type AdminOrder struct {
	ID            uint            `json:"id"`
	Number        string          `json:"numero_pedido"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"status_pagamento,omitempty"`
	Customer      string          `json:"cliente,omitempty"`
	Total         decimal.Decimal `json:"total_final"`
	Shipping      decimal.Decimal `json:"total_frete"`
	CreatedAt     string          `json:"data_criacao,omitempty"`
}

// OrderDetails wraps the admin order details answer
type OrderDetails struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Order   *AdminOrder `json:"pedido,omitempty"`
}

// StatusUpdate is the answer to an order status change
type StatusUpdate struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
	NewStatus string `json:"novo_status,omitempty"`
	Color     string `json:"cor_status,omitempty"`
}

// OrderDetails loads one order for the admin panel
func (c *Client) OrderDetails(ctx context.Context, creds *Credentials, orderID uint) (*OrderDetails, error) {
	var details OrderDetails
	path := fmt.Sprintf("/api/admin/pedidos/%d/detalhes/", orderID)
	if err := c.do(ctx, creds, http.MethodGet, path, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// UpdateOrderStatus moves an order to the status with the given platform id.
// The platform reads the id from a form field.
func (c *Client) UpdateOrderStatus(ctx context.Context, creds *Credentials, orderID, statusID uint) (*StatusUpdate, error) {
	var update StatusUpdate
	path := fmt.Sprintf("/api/admin/pedidos/%d/status/", orderID)
	form := url.Values{"status_id": {strconv.FormatUint(uint64(statusID), 10)}}
	if err := c.do(ctx, creds, http.MethodPost, path, form, &update); err != nil {
		return nil, err
	}
	return &update, nil
}

// DeleteUser removes a customer account
func (c *Client) DeleteUser(ctx context.Context, creds *Credentials, userID uint) (*MutationResult, error) {
	var result MutationResult
	path := fmt.Sprintf("/admin-panel/delete-user/%d/", userID)
	if err := c.do(ctx, creds, http.MethodPost, path, struct{}{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ToggleUserStatus activates or deactivates a customer account
func (c *Client) ToggleUserStatus(ctx context.Context, creds *Credentials, userID uint) (*MutationResult, error) {
	var result MutationResult
	path := fmt.Sprintf("/admin-panel/toggle-user-status/%d/", userID)
	if err := c.do(ctx, creds, http.MethodPost, path, struct{}{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

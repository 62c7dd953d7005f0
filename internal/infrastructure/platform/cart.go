// internal/infrastructure/platform/cart.go
package platform

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// CartState is the platform's cart summary
type CartState struct {
	Subtotal  decimal.Decimal     `json:"subtotal"`
	Shipping  decimal.NullDecimal `json:"frete"`
	Total     decimal.NullDecimal `json:"total"`
	ItemCount int                 `json:"total_itens"`
	Items     []CartStateItem     `json:"itens,omitempty"`
}

// CartStateItem is one line of the cart as the platform reports it
type CartStateItem struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"produto_id"`
	ProductName string          `json:"produto_nome"`
	UnitPrice   decimal.Decimal `json:"preco_unitario"`
	Quantity    int             `json:"quantidade"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// MutationResult is the answer to cart and admin mutations
type MutationResult struct {
	Success      bool                `json:"success"`
	Error        string              `json:"error,omitempty"`
	Message      string              `json:"message,omitempty"`
	ItemCount    int                 `json:"total_itens"`
	ItemSubtotal decimal.NullDecimal `json:"subtotal_item"`
}

type quantityRequest struct {
	Quantity int `json:"quantidade"`
}

// CartState fetches the current cart summary
func (c *Client) CartState(ctx context.Context, creds *Credentials) (*CartState, error) {
	var state CartState
	if err := c.do(ctx, creds, http.MethodGet, "/carrinho-json/", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// AddItem adds one unit of a product to the cart
func (c *Client) AddItem(ctx context.Context, creds *Credentials, productID uint) (*MutationResult, error) {
	var result MutationResult
	path := fmt.Sprintf("/adicionar_carrinho/%d/", productID)
	if err := c.do(ctx, creds, http.MethodPost, path, struct{}{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ChangeQuantity sets the quantity of a cart line
func (c *Client) ChangeQuantity(ctx context.Context, creds *Credentials, itemID uint, quantity int) (*MutationResult, error) {
	var result MutationResult
	path := fmt.Sprintf("/alterar-quantidade/%d/", itemID)
	if err := c.do(ctx, creds, http.MethodPost, path, quantityRequest{Quantity: quantity}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RemoveItem deletes a cart line
func (c *Client) RemoveItem(ctx context.Context, creds *Credentials, itemID uint) (*MutationResult, error) {
	var result MutationResult
	path := fmt.Sprintf("/remover_carrinho/%d/", itemID)
	if err := c.do(ctx, creds, http.MethodPost, path, struct{}{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

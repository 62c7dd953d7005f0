// internal/domain/cart/entity.go
package cart

import (
	"fmt"
	"time"

	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/view"
	"github.com/shopspring/decimal"
)

// LineItem is one product row of the cart
type LineItem struct {
	ItemID       uint            `json:"item_id" binding:"required"`
	ProductID    uint            `json:"product_id,omitempty"`
	ProductName  string          `json:"product_name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity" binding:"min=1"`
	LineSubtotal decimal.Decimal `json:"line_subtotal"`
}

// Model is the gateway's record of the cart lines a page is showing.
// It lives from Mount to Unmount and only changes on confirmed answers.
type Model struct {
	SessionID string     `json:"session_id"`
	Lines     []LineItem `json:"lines"`
	Mounted   bool       `json:"mounted"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Line returns the line with itemID
func (m *Model) Line(itemID uint) (LineItem, bool) {
	for _, line := range m.Lines {
		if line.ItemID == itemID {
			return line, true
		}
	}
	return LineItem{}, false
}

// SetQuantity patches a line after the platform accepted a new quantity.
// The line subtotal comes from the platform when it sent one.
func (m *Model) SetQuantity(itemID uint, quantity int, lineSubtotal decimal.NullDecimal) bool {
	for i := range m.Lines {
		if m.Lines[i].ItemID != itemID {
			continue
		}
		m.Lines[i].Quantity = quantity
		if lineSubtotal.Valid {
			m.Lines[i].LineSubtotal = lineSubtotal.Decimal
		} else {
			m.Lines[i].LineSubtotal = m.Lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
		}
		m.touch()
		return true
	}
	return false
}

// Remove drops the line with itemID
func (m *Model) Remove(itemID uint) bool {
	for i := range m.Lines {
		if m.Lines[i].ItemID == itemID {
			m.Lines = append(m.Lines[:i], m.Lines[i+1:]...)
			m.touch()
			return true
		}
	}
	return false
}

// Replace swaps every line at once
func (m *Model) Replace(lines []LineItem) {
	m.Lines = append([]LineItem(nil), lines...)
	m.touch()
}

func (m *Model) touch() {
	m.UpdatedAt = time.Now().UTC()
}

// Summary is the money side of the cart. Shipping is nil until a quote applies.
type Summary struct {
	Subtotal    decimal.Decimal  `json:"subtotal"`
	ShippingFee *decimal.Decimal `json:"shipping_fee"`
	Total       decimal.Decimal  `json:"total"`
	ItemCount   int              `json:"item_count"`
}

// NewSummary computes the total from the subtotal and an optional fee.
// An empty cart always totals zero and never carries a fee.
func NewSummary(subtotal decimal.Decimal, itemCount int, fee *decimal.Decimal) Summary {
	if itemCount <= 0 {
		return Summary{Subtotal: decimal.Zero, Total: decimal.Zero}
	}
	summary := Summary{Subtotal: subtotal, Total: subtotal, ItemCount: itemCount}
	if fee != nil {
		f := *fee
		summary.ShippingFee = &f
		summary.Total = subtotal.Add(f)
	}
	return summary
}

// Quote is a shipping estimate bound to the cart it was computed for
type Quote struct {
	Fee         decimal.Decimal `json:"fee"`
	Service     string          `json:"service"`
	ETADays     int             `json:"eta_days"`
	PostalCode  string          `json:"postal_code"`
	Fingerprint string          `json:"fingerprint"`
	QuotedAt    time.Time       `json:"quoted_at"`
}

// ETALabel renders the delivery estimate
func (q Quote) ETALabel() string {
	if q.ETADays == 1 {
		return "1 dia útil"
	}
	return fmt.Sprintf("%d dias úteis", q.ETADays)
}

// View is what the cart page renders
type View struct {
	Summary       Summary        `json:"summary"`
	SubtotalText  string         `json:"subtotal_text"`
	ShippingText  string         `json:"shipping_text"`
	TotalText     string         `json:"total_text"`
	ItemCountText string         `json:"item_count_text"`
	Lines         []LineView     `json:"lines"`
	Empty         *EmptyState    `json:"empty,omitempty"`
	Shipping      *ShippingPanel `json:"shipping,omitempty"`
	Checkout      view.Control   `json:"checkout"`
}

// LineView is one rendered row
type LineView struct {
	LineItem
	UnitPriceText    string `json:"unit_price_text"`
	LineSubtotalText string `json:"line_subtotal_text"`
}

// EmptyState replaces the rows when nothing is left in the cart
type EmptyState struct {
	Message     string `json:"message"`
	ActionLabel string `json:"action_label"`
	ActionURL   string `json:"action_url"`
}

// ShippingPanel shows the applied quote
type ShippingPanel struct {
	Service    string `json:"service"`
	ETA        string `json:"eta"`
	PostalCode string `json:"postal_code"`
	FeeText    string `json:"fee_text"`
}

// Result is the outcome of a cart operation: the rendered cart, when it
// could be refreshed, plus the effects the browser must apply.
type Result struct {
	view.Effects
	Cart    *View  `json:"cart,omitempty"`
	Removed []uint `json:"removed,omitempty"`
}

// FormatMoney renders an amount the way the storefront shows prices
func FormatMoney(amount decimal.Decimal) string {
	return "R$ " + amount.StringFixed(2)
}

// ItemCountLabel renders the number of items in the cart
func ItemCountLabel(count int) string {
	if count == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d itens", count)
}

// internal/domain/order/entity.go
package order

import (
	"errors"
	"strings"

	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/view"
	"github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/platform"
)

var (
	// ErrUnknownStatus is returned for a status outside the platform's list
	ErrUnknownStatus = errors.New("unknown order status")
	// ErrFinalStatus is returned when changing an order that reached a final status
	ErrFinalStatus = errors.New("order status is final")
)

// Status represents the order status as named by the platform
type Status string

const (
	StatusPending    Status = "Pendente"
	StatusProcessing Status = "Processando"
	StatusShipped    Status = "Enviado"
	StatusDelivered  Status = "Entregue"
	StatusCancelled  Status = "Cancelado"
)

// PaymentStatus represents the payment status of an order
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pendente"
	PaymentStatusProcessing PaymentStatus = "processando"
	PaymentStatusApproved   PaymentStatus = "aprovado"
	PaymentStatusPaid       PaymentStatus = "pago"
	PaymentStatusRefused    PaymentStatus = "recusado"
	PaymentStatusCancelled  PaymentStatus = "cancelado"
	PaymentStatusError      PaymentStatus = "erro"
)

// Style is how a status is shown everywhere in the storefront
type Style struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Badge string `json:"badge"`
	Final bool   `json:"final"`
}

var unknownStyle = Style{Color: "#6B7280", Badge: "bg-gray-100 text-gray-800"}

// statuses is ordered the way the platform sorts them
var statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

var styles = map[string]Style{
	string(StatusPending):    {Label: "Pendente", Color: "#F59E0B", Badge: "bg-yellow-100 text-yellow-800"},
	string(StatusProcessing): {Label: "Processando", Color: "#F97316", Badge: "bg-orange-100 text-orange-800"},
	string(StatusShipped):    {Label: "Enviado", Color: "#3B82F6", Badge: "bg-blue-100 text-blue-800"},
	string(StatusDelivered):  {Label: "Entregue", Color: "#10B981", Badge: "bg-green-100 text-green-800", Final: true},
	string(StatusCancelled):  {Label: "Cancelado", Color: "#EF4444", Badge: "bg-red-100 text-red-800", Final: true},

	string(PaymentStatusPending):    {Label: "Pendente", Color: "#F59E0B", Badge: "bg-yellow-100 text-yellow-800"},
	string(PaymentStatusProcessing): {Label: "Processando", Color: "#3B82F6", Badge: "bg-blue-100 text-blue-800"},
	string(PaymentStatusApproved):   {Label: "Aprovado", Color: "#10B981", Badge: "bg-green-100 text-green-800", Final: true},
	string(PaymentStatusPaid):       {Label: "Pago", Color: "#10B981", Badge: "bg-green-100 text-green-800", Final: true},
	string(PaymentStatusRefused):    {Label: "Recusado", Color: "#EF4444", Badge: "bg-red-100 text-red-800", Final: true},
	string(PaymentStatusCancelled):  {Label: "Cancelado", Color: "#EF4444", Badge: "bg-red-100 text-red-800", Final: true},
	string(PaymentStatusError):      {Label: "Erro", Color: "#EF4444", Badge: "bg-red-100 text-red-800"},
}

// StyleFor returns the presentation of an order or payment status.
// Unknown statuses are shown in gray under their own name.
func StyleFor(status string) Style {
	status = strings.TrimSpace(status)
	if style, ok := styles[status]; ok {
		return style
	}
	style := unknownStyle
	style.Label = status
	return style
}

// ParseStatus accepts an order status name in any letter case
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	for _, status := range statuses {
		if strings.EqualFold(raw, string(status)) {
			return status, nil
		}
	}
	return "", ErrUnknownStatus
}

// ID is the platform's primary key for the status. The platform seeds its
// statuses in display order, so the ids follow that order starting at 1.
func (s Status) ID() uint {
	for i, status := range statuses {
		if status == s {
			return uint(i + 1)
		}
	}
	return 0
}

// IsFinal reports whether no further change is allowed
func (s Status) IsFinal() bool {
	return StyleFor(string(s)).Final
}

// CanChange checks an admin status change
func CanChange(from string, to Status) error {
	if StyleFor(from).Final {
		return ErrFinalStatus
	}
	_, err := ParseStatus(string(to))
	return err
}

// StatusOption is one entry of the status picker
type StatusOption struct {
	ID     uint   `json:"id"`
	Status Status `json:"status"`
	Style  Style  `json:"style"`
}

// Options returns the picker entries for the admin panel
func Options() []StatusOption {
	options := make([]StatusOption, 0, len(statuses))
	for _, status := range statuses {
		options = append(options, StatusOption{ID: status.ID(), Status: status, Style: StyleFor(string(status))})
	}
	return options
}

// View is an order with its status presentation
type View struct {
	platform.AdminOrder
	StatusStyle  Style `json:"status_style"`
	PaymentStyle Style `json:"payment_style"`
}

// NewView decorates a platform order with its styles
func NewView(o platform.AdminOrder) *View {
	return &View{
		AdminOrder:   o,
		StatusStyle:  StyleFor(o.Status),
		PaymentStyle: StyleFor(o.PaymentStatus),
	}
}

// Result is the outcome of an admin order operation
type Result struct {
	view.Effects
	Order *View `json:"order,omitempty"`
}

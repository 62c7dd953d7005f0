// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"net/http"

	"github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/platform"
	"github.com/sirupsen/logrus"
)

const (
	msgDetailsFailed   = "Erro ao carregar detalhes do pedido"
	msgUpdateFailed    = "Erro ao atualizar status"
	msgConnection      = "Erro de conexão ao atualizar status"
	msgInvalidStatus   = "Status inválido. Use uma das opções listadas."
	msgFinalStatus     = "Pedido em status final não pode ser alterado"
	msgStatusUpdatedTo = "Status atualizado para: "
)

// Platform is the part of the commerce platform order administration needs
type Platform interface {
	OrderDetails(ctx context.Context, creds *platform.Credentials, orderID uint) (*platform.OrderDetails, error)
	UpdateOrderStatus(ctx context.Context, creds *platform.Credentials, orderID, statusID uint) (*platform.StatusUpdate, error)
}

// Service handles admin order operations
type Service struct {
	platform Platform
	logger   *logrus.Logger
}

// NewService creates a new order service
func NewService(p Platform, logger *logrus.Logger) *Service {
	return &Service{
		platform: p,
		logger:   logger,
	}
}

// Details loads an order for the admin panel
func (s *Service) Details(ctx context.Context, creds *platform.Credentials, orderID uint) *Result {
	res := &Result{}
	o, err := s.load(ctx, creds, orderID)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("Failed to load order details")
		res.Error(failureMessage(err, msgDetailsFailed, msgDetailsFailed))
		return res
	}
	res.Order = NewView(*o)
	return res
}

// UpdateStatus moves an order to another status. Orders in a final status
// stay as they are.
func (s *Service) UpdateStatus(ctx context.Context, creds *platform.Credentials, orderID uint, rawStatus string) *Result {
	res := &Result{}
	logger := s.logger.WithFields(logrus.Fields{"order_id": orderID, "status": rawStatus})

	status, err := ParseStatus(rawStatus)
	if err != nil {
		res.Error(msgInvalidStatus)
		return res
	}

	current, err := s.load(ctx, creds, orderID)
	if err != nil {
		logger.WithError(err).Warn("Failed to load order before status change")
		res.Error(failureMessage(err, msgUpdateFailed, msgConnection))
		return res
	}

	switch err := CanChange(current.Status, status); {
	case errors.Is(err, ErrFinalStatus):
		res.Error(msgFinalStatus)
		res.Order = NewView(*current)
		return res
	case err != nil:
		res.Error(msgInvalidStatus)
		return res
	}

	update, err := s.platform.UpdateOrderStatus(ctx, creds, orderID, status.ID())
	if err == nil && !update.Success {
		err = &platform.Error{Status: http.StatusOK, Message: update.Error}
	}
	if err != nil {
		logger.WithError(err).Warn("Order status change failed")
		res.Error(failureMessage(err, msgUpdateFailed, msgConnection))
		return res
	}

	previous := current.Status
	current.Status = string(status)
	if update.NewStatus != "" {
		current.Status = update.NewStatus
	}
	res.Order = NewView(*current)
	res.Success(msgStatusUpdatedTo + current.Status)

	logger.WithField("previous", previous).Info("Order status updated")
	return res
}

func (s *Service) load(ctx context.Context, creds *platform.Credentials, orderID uint) (*platform.AdminOrder, error) {
	details, err := s.platform.OrderDetails(ctx, creds, orderID)
	if err != nil {
		return nil, err
	}
	if !details.Success || details.Order == nil {
		return nil, &platform.Error{Status: http.StatusOK, Message: details.Error}
	}
	return details.Order, nil
}

func failureMessage(err error, fallback, connection string) string {
	message := platform.UserMessage(err, "", "")
	if message != "" {
		return "Erro: " + message
	}
	var perr *platform.Error
	if errors.As(err, &perr) && perr.Status != http.StatusForbidden {
		return fallback
	}
	return connection
}

// internal/domain/payment/service.go
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/view"
	"github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/platform"
	"github.com/lucascapelli/O-Especialista.Carros/internal/pkg/session"
	"github.com/sirupsen/logrus"
)

const (
	msgTitleSimulated     = "Pagamento PIX (Modo Simulação)"
	msgTitle              = "Pagamento PIX"
	msgInstructions       = "Escaneie o QR Code ou copie o código PIX abaixo"
	msgCopyLabel          = "Copiar Código PIX"
	msgApproveLabel       = "Simular Pagamento Aprovado"
	msgOrdersLabel        = "Ver Meus Pedidos"
	msgCopied             = "Código PIX copiado!"
	msgCopyFailed         = "Erro ao copiar código"
	msgApproved           = "Pagamento simulado aprovado!"
	msgSimulationFailed   = "Erro na simulação"
	msgUnknownPayment     = "Pagamento não encontrado"
	msgNotSimulated       = "Este pagamento não pode ser aprovado pelo navegador"
	msgSimulationDisabled = "Aprovação simulada indisponível"
)

// Platform is the part of the commerce platform payments need
type Platform interface {
	SendPaymentWebhook(ctx context.Context, creds *platform.Credentials, event platform.WebhookEvent) error
}

// Clipboard receives copied text
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Service presents PIX payments and drives the simulated approval
type Service struct {
	platform Platform
	store    *Store
	config   *config.Config
	logger   *logrus.Logger
}

// NewService creates a new payment service
func NewService(p Platform, store *Store, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		platform: p,
		store:    store,
		config:   cfg,
		logger:   logger,
	}
}

// Present records the payment of a new order and builds its dialog
func (s *Service) Present(ctx context.Context, sess *session.Session, order *platform.OrderCreated) (*view.Modal, error) {
	info := order.Payment
	p := &SimulatedPayment{
		TransactionID: info.TransactionID,
		Code:          info.Code,
		QRCode:        info.QRCode,
		Simulated:     info.Simulated,
		OrderID:       order.OrderID,
		OrderNumber:   order.OrderNumber,
		PresentedAt:   time.Now().UTC(),
	}
	if p.TransactionID == "" {
		p.TransactionID = p.Code
	}
	if err := s.store.Save(ctx, sess.ID, p); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":     sess.ID,
		"transaction_id": p.TransactionID,
		"order_id":       p.OrderID,
		"simulated":      p.Simulated,
	}).Info("Payment presented")

	title := msgTitle
	if p.Simulated {
		title = msgTitleSimulated
	}

	actions := []view.Action{{ID: ActionCopy, Label: msgCopyLabel}}
	if s.canSimulate(p) {
		actions = append(actions, view.Action{ID: ActionApprove, Label: msgApproveLabel})
	}
	actions = append(actions, view.Action{ID: ActionOrders, Label: msgOrdersLabel, URL: s.config.Storefront.OrdersURL})

	return &view.Modal{
		Kind:    ModalKind,
		Title:   title,
		Message: msgInstructions,
		Data:    p,
		Actions: actions,
	}, nil
}

// Find returns a payment presented in this session
func (s *Service) Find(ctx context.Context, sess *session.Session, transactionID string) (*SimulatedPayment, error) {
	p, err := s.store.Load(ctx, sess.ID, transactionID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrUnknownPayment
	}
	return p, nil
}

// CopyCode writes a payment code to the clipboard
func (s *Service) CopyCode(ctx context.Context, clipboard Clipboard, code string) *Result {
	res := &Result{}
	if code == "" {
		res.Error(msgCopyFailed)
		return res
	}
	if err := clipboard.WriteText(ctx, code); err != nil {
		s.logger.WithError(err).Warn("Failed to copy payment code")
		res.Error(msgCopyFailed)
		return res
	}
	res.Success(msgCopied)
	return res
}

// CopyPaymentCode copies the code of a payment presented in this session
func (s *Service) CopyPaymentCode(ctx context.Context, sess *session.Session, clipboard Clipboard, transactionID string) (*Result, error) {
	p, err := s.Find(ctx, sess, transactionID)
	if errors.Is(err, ErrUnknownPayment) {
		res := &Result{}
		res.Error(msgUnknownPayment)
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	return s.CopyCode(ctx, clipboard, p.Code), nil
}

// SimulateApproval tells the platform a simulated payment was paid. It is a
// development stand-in for the payment provider's own notification.
func (s *Service) SimulateApproval(ctx context.Context, sess *session.Session, transactionID string) (*Result, error) {
	res := &Result{}
	logger := s.logger.WithFields(logrus.Fields{"session_id": sess.ID, "transaction_id": transactionID})

	p, err := s.approvable(ctx, sess, transactionID)
	switch {
	case errors.Is(err, ErrSimulationDisabled):
		res.Error(msgSimulationDisabled)
		return res, nil
	case errors.Is(err, ErrUnknownPayment):
		res.Error(msgUnknownPayment)
		return res, nil
	case errors.Is(err, ErrNotSimulated):
		res.Error(msgNotSimulated)
		return res, nil
	case err != nil:
		return nil, err
	}

	event := platform.WebhookEvent{
		ID:        p.TransactionID,
		Status:    s.config.Payments.WebhookApprovedStatus,
		DevMode:   true,
		Simulated: true,
	}
	if err := s.platform.SendPaymentWebhook(ctx, sess.Credentials, event); err != nil {
		logger.WithError(err).Warn("Simulated approval failed")
		res.Error(msgSimulationFailed)
		return res, nil
	}

	if err := s.store.Delete(ctx, sess.ID, transactionID); err != nil {
		return nil, err
	}

	logger.WithField("order_id", p.OrderID).Info("Simulated payment approved")
	res.Success(msgApproved)
	res.CloseModal = true
	res.Redirect = view.RedirectTo(s.config.Storefront.OrdersURL, s.config.Payments.ApprovalRedirectDelay)
	return res, nil
}

// Close dismisses the payment dialog and sends the shopper to their orders
func (s *Service) Close(ctx context.Context, sess *session.Session, transactionID string) (*Result, error) {
	if err := s.store.Delete(ctx, sess.ID, transactionID); err != nil {
		return nil, err
	}
	res := &Result{}
	res.CloseModal = true
	res.Redirect = view.RedirectTo(s.config.Storefront.OrdersURL, 0)
	return res, nil
}

func (s *Service) approvable(ctx context.Context, sess *session.Session, transactionID string) (*SimulatedPayment, error) {
	if !s.config.Payments.AllowSimulatedApproval {
		return nil, ErrSimulationDisabled
	}
	p, err := s.Find(ctx, sess, transactionID)
	if err != nil {
		return nil, err
	}
	if !p.Simulated {
		return nil, ErrNotSimulated
	}
	return p, nil
}

func (s *Service) canSimulate(p *SimulatedPayment) bool {
	return p.Simulated && s.config.Payments.AllowSimulatedApproval
}

// BrowserClipboard hands copied text to the browser as a clipboard effect
type BrowserClipboard struct {
	text string
}

// WriteText records text for the browser to copy
func (b *BrowserClipboard) WriteText(_ context.Context, text string) error {
	if text == "" {
		return errors.New("nothing to copy")
	}
	b.text = text
	return nil
}

// Effect returns the clipboard effect, or nil when nothing was written
func (b *BrowserClipboard) Effect() *view.Clipboard {
	if b.text == "" {
		return nil
	}
	return &view.Clipboard{Text: b.text}
}

// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/cart"
	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/view"
	"github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/platform"
	"github.com/lucascapelli/O-Especialista.Carros/internal/pkg/session"
	"github.com/sirupsen/logrus"
)

const defaultReturnURL = "/carrinho/"

const (
	msgInProgress        = "Pedido em processamento..."
	msgProcessingLabel   = "Processando..."
	msgCartCheckFailed   = "Erro ao verificar carrinho"
	msgEmptyCart         = "Seu carrinho está vazio!"
	msgAuthTitle         = "Login necessário"
	msgAuthMessage       = "Faça login ou crie uma conta para finalizar sua compra."
	msgLoginLabel        = "Fazer Login"
	msgContinueLabel     = "Continuar Comprando"
	msgRegisterLabel     = "Cadastre-se"
	msgTaxIDPrompt       = "Informe seu CPF (apenas números) para emissão do pedido:"
	msgInvalidTaxID      = "CPF inválido"
	msgAddressRequired   = "Informe o CEP de entrega"
	msgCreateFailed      = "Erro ao criar pedido"
	msgConnectionFailure = "Erro de conexão ao finalizar compra"
	msgOrderCreated      = "Pedido criado com sucesso!"
)

// Platform is the part of the commerce platform checkout needs
type Platform interface {
	CartState(ctx context.Context, creds *platform.Credentials) (*platform.CartState, error)
	CheckAuth(ctx context.Context, creds *platform.Credentials) (*platform.AuthStatus, error)
	CreateOrder(ctx context.Context, creds *platform.Credentials, req platform.OrderRequest) (*platform.OrderCreated, error)
}

// Cart exposes the gateway's cart state to checkout
type Cart interface {
	CurrentQuote(ctx context.Context, sessionID string) (*cart.Quote, error)
	Reset(ctx context.Context, sessionID string) error
}

// Payments presents the payment of a new order
type Payments interface {
	Present(ctx context.Context, sess *session.Session, order *platform.OrderCreated) (*view.Modal, error)
}

// Service drives checkout from the cart to a placed order
type Service struct {
	platform Platform
	cart     Cart
	payments Payments
	store    *Store
	config   *config.Config
	logger   *logrus.Logger
}

// NewService creates a new checkout service
func NewService(p Platform, c Cart, payments Payments, store *Store, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		platform: p,
		cart:     c,
		payments: payments,
		store:    store,
		config:   cfg,
		logger:   logger,
	}
}

// Initiate runs one checkout attempt. Every outcome leaves the checkout
// control enabled again; only one attempt per session runs at a time.
func (s *Service) Initiate(ctx context.Context, sess *session.Session, req Request) (*Result, error) {
	res := &Result{State: StateIdle, Trace: []State{StateIdle}}

	token, acquired, err := s.store.Acquire(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		res.moveTo(StateBusy)
		res.Info(msgInProgress)
		res.SetControl(s.control(true))
		return res, nil
	}
	defer func() {
		logger := s.logger.WithField("session_id", sess.ID)
		released, err := s.store.Release(context.WithoutCancel(ctx), sess.ID, token)
		if err != nil {
			logger.WithError(err).Warn("Failed to release checkout lock")
			return
		}
		if !released {
			logger.Warn("Checkout lock expired before checkout finished")
		}
	}()

	// The attempt may not outlive the lock that keeps a second one out
	attempt, cancel := context.WithTimeout(ctx, s.config.Storefront.CheckoutLockTTL)
	defer cancel()

	res.SetControl(s.control(false))
	if err := s.run(attempt, sess, req, res); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"state":      res.State,
	}).Info("Checkout finished")
	return res, nil
}

func (s *Service) run(ctx context.Context, sess *session.Session, req Request, res *Result) error {
	logger := s.logger.WithField("session_id", sess.ID)

	res.moveTo(StateValidatingCart)
	state, err := s.platform.CartState(ctx, sess.Credentials)
	if err != nil {
		logger.WithError(err).Warn("Checkout could not read the cart")
		res.moveTo(StateValidationFailed)
		res.Error(msgCartCheckFailed)
		return nil
	}
	if state.ItemCount <= 0 {
		res.moveTo(StateEmpty)
		res.Error(msgEmptyCart)
		return nil
	}

	res.moveTo(StateCheckingAuth)
	auth, err := s.platform.CheckAuth(ctx, sess.Credentials)
	if err != nil {
		// An unanswered auth check means the shopper must log in again
		logger.WithError(err).Warn("Auth check failed during checkout")
		auth = nil
	}
	if auth == nil || !auth.Authenticated {
		res.moveTo(StateUnauthenticated)
		res.Modal = s.authModal(req.ReturnURL)
		return nil
	}

	res.moveTo(StateCollectingInfo)
	taxID, err := s.resolveTaxID(ctx, sess, req, auth)
	switch {
	case errors.Is(err, ErrInvalidTaxID):
		res.moveTo(StateRecipientDeclined)
		res.Error(msgInvalidTaxID)
		return nil
	case err != nil:
		return err
	case taxID == "":
		res.moveTo(StateRecipientDeclined)
		res.Prompt = &view.Prompt{Field: PromptFieldTaxID, Message: msgTaxIDPrompt}
		return nil
	}

	address, ok, err := s.resolveAddress(ctx, sess, req)
	if err != nil {
		return err
	}
	if !ok {
		res.moveTo(StateRecipientDeclined)
		res.InlineError(cart.TargetShipping, msgAddressRequired)
		return nil
	}

	res.moveTo(StateSubmittingOrder)
	created, err := s.platform.CreateOrder(ctx, sess.Credentials, platform.OrderRequest{
		PaymentMethod: s.config.Storefront.PaymentMethod,
		Address:       address,
		TaxID:         taxID,
	})
	if err != nil {
		logger.WithError(err).Warn("Order creation failed")
		res.moveTo(StateServerError)
		res.Error(orderFailureMessage(err))
		return nil
	}

	res.moveTo(StateOrderCreated)
	res.Success(msgOrderCreated)
	res.Order = &OrderRef{ID: created.OrderID, Number: created.OrderNumber}
	logger.WithFields(logrus.Fields{
		"order_id":     created.OrderID,
		"order_number": created.OrderNumber,
	}).Info("Order created")

	if err := s.cart.Reset(ctx, sess.ID); err != nil {
		logger.WithError(err).Warn("Failed to reset cart after order")
	}

	if created.Payment != nil {
		modal, err := s.payments.Present(ctx, sess, created)
		if err == nil {
			res.moveTo(StatePaymentPresented)
			res.Modal = modal
			return nil
		}
		logger.WithError(err).Error("Failed to present payment, redirecting to orders")
	}

	res.moveTo(StateRedirected)
	res.Redirect = view.RedirectTo(s.config.Storefront.OrdersURL, 0)
	return nil
}

// resolveTaxID picks the taxpayer id from the request, the platform user or
// an earlier checkout of this session, in that order.
func (s *Service) resolveTaxID(ctx context.Context, sess *session.Session, req Request, auth *platform.AuthStatus) (string, error) {
	raw := strings.TrimSpace(req.TaxID)
	if raw == "" && auth.User != nil {
		raw = strings.TrimSpace(auth.User.TaxID)
	}
	if raw == "" {
		remembered, err := s.store.TaxID(ctx, sess.ID)
		if err != nil {
			return "", err
		}
		raw = remembered
	}
	if raw == "" {
		return "", nil
	}

	taxID, err := NormalizeTaxID(raw)
	if err != nil {
		return "", err
	}
	if err := s.store.RememberTaxID(ctx, sess.ID, taxID); err != nil {
		return "", err
	}
	return taxID, nil
}

// resolveAddress uses the request's address, falling back to the postal
// code of the applied shipping quote.
func (s *Service) resolveAddress(ctx context.Context, sess *session.Session, req Request) (platform.Address, bool, error) {
	if req.Address != nil {
		if postalCode, ok := cart.NormalizePostalCode(req.Address.PostalCode); ok {
			address := *req.Address
			address.PostalCode = cart.FormatPostalCode(postalCode)
			return address, true, nil
		}
	}

	quote, err := s.cart.CurrentQuote(ctx, sess.ID)
	if err != nil {
		return platform.Address{}, false, err
	}
	if quote == nil || quote.PostalCode == "" {
		return platform.Address{}, false, nil
	}

	address := platform.Address{PostalCode: cart.FormatPostalCode(quote.PostalCode)}
	if req.Address != nil {
		address = *req.Address
		address.PostalCode = cart.FormatPostalCode(quote.PostalCode)
	}
	return address, true, nil
}

func (s *Service) authModal(returnURL string) *view.Modal {
	loginURL := s.config.Storefront.LoginURL + "?next=" + url.QueryEscape(safeReturnURL(returnURL))
	return &view.Modal{
		Kind:    ModalKindAuthRequired,
		Title:   msgAuthTitle,
		Message: msgAuthMessage,
		Actions: []view.Action{
			{ID: "login", Label: msgLoginLabel, URL: loginURL},
			{ID: "continue", Label: msgContinueLabel, Dismiss: true},
			{ID: "register", Label: msgRegisterLabel, URL: s.config.Storefront.RegisterURL},
		},
	}
}

func (s *Service) control(busy bool) view.Control {
	if busy {
		return view.Control{ID: view.CheckoutControlID, Label: msgProcessingLabel, Busy: true, Disabled: true}
	}
	return view.Control{ID: view.CheckoutControlID, Label: s.config.Storefront.CheckoutLabel}
}

func (r *Result) moveTo(next State) {
	r.State = next
	r.Trace = append(r.Trace, next)
}

// NormalizeTaxID strips punctuation from a CPF and requires 11 digits
func NormalizeTaxID(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == ' ' || r == '/':
		default:
			return "", fmt.Errorf("%w: unexpected %q", ErrInvalidTaxID, r)
		}
	}
	if b.Len() != 11 {
		return "", fmt.Errorf("%w: got %d digits", ErrInvalidTaxID, b.Len())
	}
	return b.String(), nil
}

// safeReturnURL only allows paths on this site
func safeReturnURL(raw string) string {
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return defaultReturnURL
	}
	return raw
}

func orderFailureMessage(err error) string {
	message := platform.UserMessage(err, msgCreateFailed, "")
	if message == "" {
		return msgConnectionFailure
	}
	return "Erro: " + message
}

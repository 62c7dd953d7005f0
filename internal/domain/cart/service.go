// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/view"
	"github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/platform"
	"github.com/lucascapelli/O-Especialista.Carros/internal/pkg/session"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrItemBusy is returned while another update of the same line is running
	ErrItemBusy = errors.New("cart item has a pending update")
	// ErrInvalidPostalCode is returned for postal codes without exactly 8 digits
	ErrInvalidPostalCode = errors.New("postal code must have 8 digits")
)

// TargetShipping is the page region showing the shipping estimate
const TargetShipping = "shipping"

// ActionRemoveItem is the confirmation asked before removing a line
const ActionRemoveItem = "remove_item"

const (
	msgConnection        = "Erro de conexão"
	msgRefreshFailed     = "Erro ao atualizar carrinho"
	msgAdded             = "Produto adicionado ao carrinho!"
	msgAddFailed         = "Erro ao adicionar produto"
	msgQuantityUpdated   = "Quantidade atualizada!"
	msgQuantityFailed    = "Erro ao atualizar quantidade"
	msgItemNotFound      = "Item não encontrado no carrinho"
	msgItemBusy          = "Aguarde, atualizando item..."
	msgConfirmRemove     = "Tem certeza que deseja remover este item do carrinho?"
	msgRemoved           = "Item removido do carrinho"
	msgRemoveFailed      = "Erro ao remover item"
	msgInvalidPostalCode = "CEP inválido"
	msgShippingFailed    = "Não foi possível calcular o frete"
	msgQuoteStale        = "O carrinho mudou. Calcule o frete novamente."
	msgEmptyCart         = "Seu carrinho está vazio"
	msgEmptyAction       = "Ver produtos"
	msgShippingPending   = "A calcular"
)

// Platform is the part of the commerce platform the cart needs
type Platform interface {
	CartState(ctx context.Context, creds *platform.Credentials) (*platform.CartState, error)
	AddItem(ctx context.Context, creds *platform.Credentials, productID uint) (*platform.MutationResult, error)
	ChangeQuantity(ctx context.Context, creds *platform.Credentials, itemID uint, quantity int) (*platform.MutationResult, error)
	RemoveItem(ctx context.Context, creds *platform.Credentials, itemID uint) (*platform.MutationResult, error)
	QuoteShipping(ctx context.Context, creds *platform.Credentials, postalCode string) (*platform.ShippingQuote, error)
}

// Service handles cart business logic
type Service struct {
	platform  Platform
	store     *Store
	config    *config.Config
	logger    *logrus.Logger
	refreshes singleflight.Group
}

// NewService creates a new cart service
func NewService(p Platform, store *Store, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		platform: p,
		store:    store,
		config:   cfg,
		logger:   logger,
	}
}

// snapshot is the cart as the platform reports it, reconciled with the model
type snapshot struct {
	model       *Model
	state       *platform.CartState
	fingerprint string
}

type rendering struct {
	view  *View
	stale bool
}

// Refresh fetches the cart summary and renders it. Concurrent refreshes of
// one session share a single platform call.
func (s *Service) Refresh(ctx context.Context, sess *session.Session) (*Result, error) {
	res := &Result{}
	shared := s.refreshes.DoChan(sess.ID, func() (interface{}, error) {
		// Detached so one caller going away does not fail the others
		detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.Platform.Timeout)
		defer cancel()
		return s.render(detached, sess)
	})

	var r singleflight.Result
	select {
	case r = <-shared:
	case <-ctx.Done():
		res.Error(msgRefreshFailed)
		return res, nil
	}
	if err := s.apply(sess, res, r.Val, r.Err); err != nil {
		return nil, err
	}
	return res, nil
}

// Mount records the lines a freshly rendered cart page shows
func (s *Service) Mount(ctx context.Context, sess *session.Session, lines []LineItem) (*Result, error) {
	model := &Model{SessionID: sess.ID, Mounted: true}
	for i := range lines {
		if lines[i].LineSubtotal.IsZero() {
			lines[i].LineSubtotal = lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(lines[i].Quantity)))
		}
	}
	model.Replace(lines)
	if err := s.store.SaveModel(ctx, model); err != nil {
		return nil, err
	}

	res := &Result{}
	if err := s.refreshInto(ctx, sess, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Unmount forgets the cart model when the page goes away
func (s *Service) Unmount(ctx context.Context, sess *session.Session) error {
	return s.store.DeleteModel(ctx, sess.ID)
}

// AddItem adds one unit of a product to the cart
func (s *Service) AddItem(ctx context.Context, sess *session.Session, productID uint) (*Result, error) {
	res := &Result{}
	logger := s.logger.WithFields(logrus.Fields{"session_id": sess.ID, "product_id": productID})

	mutation, err := s.platform.AddItem(ctx, sess.Credentials, productID)
	if err != nil {
		logger.WithError(err).Warn("Failed to add item to cart")
		res.Error(platform.UserMessage(err, msgAddFailed, msgConnection))
		return res, nil
	}
	if !mutation.Success {
		res.Error(firstNonEmpty(mutation.Error, msgAddFailed))
		return res, nil
	}

	logger.WithField("item_count", mutation.ItemCount).Info("Item added to cart")
	res.Success(msgAdded)
	if err := s.refreshInto(ctx, sess, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ChangeQuantity moves a line's quantity by delta. Going below one turns
// into a removal, which needs confirmation first.
func (s *Service) ChangeQuantity(ctx context.Context, sess *session.Session, itemID uint, delta int, confirmed bool) (*Result, error) {
	res := &Result{}
	logger := s.logger.WithFields(logrus.Fields{"session_id": sess.ID, "item_id": itemID})

	model, err := s.store.LoadModel(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	line, ok := model.Line(itemID)
	if !ok {
		res.Error(msgItemNotFound)
		return res, nil
	}
	if delta == 0 {
		if err := s.refreshInto(ctx, sess, res); err != nil {
			return nil, err
		}
		return res, nil
	}
	if line.Quantity+delta < 1 {
		return s.RemoveItem(ctx, sess, itemID, confirmed)
	}

	ctx, release, err := s.guard(ctx, sess, itemID)
	if errors.Is(err, ErrItemBusy) {
		res.Info(msgItemBusy)
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	defer release()

	// The line may have moved while we waited for the guard
	model, err = s.store.LoadModel(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	line, ok = model.Line(itemID)
	if !ok {
		res.Error(msgItemNotFound)
		return res, nil
	}
	next := line.Quantity + delta
	if next < 1 {
		s.askRemoval(res, itemID)
		return res, nil
	}

	mutation, err := s.platform.ChangeQuantity(ctx, sess.Credentials, itemID, next)
	if err != nil {
		logger.WithError(err).Warn("Failed to change item quantity")
		res.Error(platform.UserMessage(err, msgQuantityFailed, msgConnection))
		return res, nil
	}
	if !mutation.Success {
		res.Error(firstNonEmpty(mutation.Error, msgQuantityFailed))
		return res, nil
	}

	model.SetQuantity(itemID, next, mutation.ItemSubtotal)
	if err := s.store.SaveModel(ctx, model); err != nil {
		return nil, err
	}

	logger.WithField("quantity", next).Info("Item quantity updated")
	res.Success(msgQuantityUpdated)
	if err := s.refreshInto(ctx, sess, res); err != nil {
		return nil, err
	}
	return res, nil
}

// RemoveItem deletes a line once the shopper confirmed it
func (s *Service) RemoveItem(ctx context.Context, sess *session.Session, itemID uint, confirmed bool) (*Result, error) {
	res := &Result{}
	if !confirmed {
		s.askRemoval(res, itemID)
		return res, nil
	}
	logger := s.logger.WithFields(logrus.Fields{"session_id": sess.ID, "item_id": itemID})

	ctx, release, err := s.guard(ctx, sess, itemID)
	if errors.Is(err, ErrItemBusy) {
		res.Info(msgItemBusy)
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	defer release()

	mutation, err := s.platform.RemoveItem(ctx, sess.Credentials, itemID)
	if err != nil {
		logger.WithError(err).Warn("Failed to remove cart item")
		res.Error(platform.UserMessage(err, msgRemoveFailed, msgConnection))
		return res, nil
	}
	if !mutation.Success {
		res.Error(firstNonEmpty(mutation.Error, msgRemoveFailed))
		return res, nil
	}

	model, err := s.store.LoadModel(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	model.Remove(itemID)
	if err := s.store.SaveModel(ctx, model); err != nil {
		return nil, err
	}

	logger.Info("Item removed from cart")
	res.Removed = []uint{itemID}
	res.Success(msgRemoved)
	if err := s.refreshInto(ctx, sess, res); err != nil {
		return nil, err
	}
	return res, nil
}

// EstimateShipping quotes freight for a postal code and folds the fee into
// the total. A failed estimate drops any earlier quote.
func (s *Service) EstimateShipping(ctx context.Context, sess *session.Session, rawPostalCode string) (*Result, error) {
	res := &Result{}
	logger := s.logger.WithField("session_id", sess.ID)

	postalCode, err := ParsePostalCode(rawPostalCode)
	if err != nil {
		res.InlineError(TargetShipping, msgInvalidPostalCode)
		return res, nil
	}

	quoted, err := s.platform.QuoteShipping(ctx, sess.Credentials, postalCode)
	if err != nil || !quoted.Success || !quoted.Fee.Valid {
		message := msgShippingFailed
		if err != nil {
			logger.WithError(err).Warn("Shipping estimate failed")
			message = platform.UserMessage(err, msgShippingFailed, msgShippingFailed)
		} else if quoted.Error != "" {
			message = quoted.Error
		}

		if err := s.store.DeleteQuote(ctx, sess.ID); err != nil {
			return nil, err
		}
		res.InlineError(TargetShipping, message)
		if err := s.refreshInto(ctx, sess, res); err != nil {
			return nil, err
		}
		return res, nil
	}

	snap, err := s.snapshot(ctx, sess)
	if err != nil {
		if platform.IsPlatformError(err) {
			logger.WithError(err).Warn("Cart refresh after shipping estimate failed")
			res.Error(msgRefreshFailed)
			return res, nil
		}
		return nil, err
	}

	var quote *Quote
	if snap.state.ItemCount > 0 {
		quote = &Quote{
			Fee:         quoted.Fee.Decimal,
			Service:     quoted.Service,
			ETADays:     quoted.ETADays,
			PostalCode:  postalCode,
			Fingerprint: snap.fingerprint,
			QuotedAt:    time.Now().UTC(),
		}
		if err := s.store.SaveQuote(ctx, sess.ID, quote); err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{
			"postal_code": postalCode,
			"fee":         quote.Fee.StringFixed(2),
			"service":     quote.Service,
		}).Info("Shipping quote stored")
	}

	cartView, err := s.compose(ctx, snap, quote)
	if err != nil {
		return nil, err
	}
	res.Cart = cartView
	return res, nil
}

// ClearShipping removes the applied quote
func (s *Service) ClearShipping(ctx context.Context, sess *session.Session) (*Result, error) {
	if err := s.store.DeleteQuote(ctx, sess.ID); err != nil {
		return nil, err
	}
	res := &Result{}
	if err := s.refreshInto(ctx, sess, res); err != nil {
		return nil, err
	}
	return res, nil
}

// CurrentQuote returns the stored shipping quote for a session, if any
func (s *Service) CurrentQuote(ctx context.Context, sessionID string) (*Quote, error) {
	return s.store.LoadQuote(ctx, sessionID)
}

// Reset forgets the model and quote once the cart became an order
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	if err := s.store.DeleteQuote(ctx, sessionID); err != nil {
		return err
	}
	return s.store.DeleteModel(ctx, sessionID)
}

// ParsePostalCode normalizes a postal code typed by the shopper
func ParsePostalCode(raw string) (string, error) {
	postalCode, ok := NormalizePostalCode(raw)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPostalCode, raw)
	}
	return postalCode, nil
}

func (s *Service) askRemoval(res *Result, itemID uint) {
	res.Confirm = &view.Confirm{
		Action:  ActionRemoveItem,
		Subject: strconv.FormatUint(uint64(itemID), 10),
		Message: msgConfirmRemove,
	}
}

// guard takes the in-flight lock of a line. The returned context ends when
// the lock expires, so the guarded work cannot outlive its guard.
func (s *Service) guard(ctx context.Context, sess *session.Session, itemID uint) (context.Context, func(), error) {
	token, ok, err := s.store.AcquireItem(ctx, sess.ID, itemID)
	if err != nil {
		return ctx, nil, err
	}
	if !ok {
		return ctx, nil, ErrItemBusy
	}

	guarded, cancel := context.WithTimeout(ctx, s.config.Storefront.InflightTTL)
	return guarded, func() {
		cancel()
		logger := s.logger.WithFields(logrus.Fields{"session_id": sess.ID, "item_id": itemID})
		// Release even when the request was cancelled
		released, err := s.store.ReleaseItem(context.WithoutCancel(ctx), sess.ID, itemID, token)
		if err != nil {
			logger.WithError(err).Warn("Failed to release item guard")
			return
		}
		if !released {
			logger.Warn("Item guard expired before the update finished")
		}
	}, nil
}

// refreshInto renders the cart into res after a mutation. Platform
// failures become a toast; infrastructure failures are returned.
func (s *Service) refreshInto(ctx context.Context, sess *session.Session, res *Result) error {
	r, err := s.render(ctx, sess)
	return s.apply(sess, res, r, err)
}

func (s *Service) apply(sess *session.Session, res *Result, value interface{}, err error) error {
	if err != nil {
		if platform.IsPlatformError(err) {
			s.logger.WithError(err).WithField("session_id", sess.ID).Warn("Cart refresh failed")
			res.Error(msgRefreshFailed)
			return nil
		}
		return err
	}

	r, ok := value.(*rendering)
	if !ok || r == nil {
		return fmt.Errorf("unexpected cart rendering %T", value)
	}
	res.Cart = r.view
	if r.stale {
		res.InlineInfo(TargetShipping, msgQuoteStale)
	}
	return nil
}

func (s *Service) render(ctx context.Context, sess *session.Session) (*rendering, error) {
	snap, err := s.snapshot(ctx, sess)
	if err != nil {
		return nil, err
	}

	quote, stale, err := s.validQuote(ctx, sess.ID, snap)
	if err != nil {
		return nil, err
	}

	cartView, err := s.compose(ctx, snap, quote)
	if err != nil {
		return nil, err
	}
	return &rendering{view: cartView, stale: stale}, nil
}

func (s *Service) snapshot(ctx context.Context, sess *session.Session) (*snapshot, error) {
	state, err := s.platform.CartState(ctx, sess.Credentials)
	if err != nil {
		return nil, fmt.Errorf("fetch cart state: %w", err)
	}

	model, err := s.store.LoadModel(ctx, sess.ID)
	if err != nil {
		return nil, err
	}

	switch {
	case state.ItemCount <= 0:
		if len(model.Lines) > 0 {
			model.Replace(nil)
		}
	case state.Items != nil:
		model.Replace(linesFromPlatform(state.Items))
	}

	return &snapshot{
		model:       model,
		state:       state,
		fingerprint: Fingerprint(model.Lines, state.ItemCount, state.Subtotal),
	}, nil
}

// validQuote returns the stored quote if it still belongs to this cart.
// A quote computed for different contents is deleted and reported stale.
func (s *Service) validQuote(ctx context.Context, sessionID string, snap *snapshot) (*Quote, bool, error) {
	quote, err := s.store.LoadQuote(ctx, sessionID)
	if err != nil || quote == nil {
		return nil, false, err
	}
	if snap.state.ItemCount > 0 && quote.Fingerprint == snap.fingerprint {
		return quote, false, nil
	}

	if err := s.store.DeleteQuote(ctx, sessionID); err != nil {
		return nil, false, err
	}
	s.logger.WithField("session_id", sessionID).Debug("Shipping quote invalidated by cart change")
	return nil, snap.state.ItemCount > 0, nil
}

func (s *Service) compose(ctx context.Context, snap *snapshot, quote *Quote) (*View, error) {
	if err := s.store.SaveModel(ctx, snap.model); err != nil {
		return nil, err
	}

	var fee *decimal.Decimal
	if quote != nil {
		f := quote.Fee
		fee = &f
	}
	summary := NewSummary(snap.state.Subtotal, snap.state.ItemCount, fee)
	return s.buildView(snap.model, summary, quote), nil
}

func (s *Service) buildView(model *Model, summary Summary, quote *Quote) *View {
	v := &View{
		Summary:       summary,
		SubtotalText:  FormatMoney(summary.Subtotal),
		ShippingText:  msgShippingPending,
		TotalText:     FormatMoney(summary.Total),
		ItemCountText: ItemCountLabel(summary.ItemCount),
		Lines:         []LineView{},
		Checkout: view.Control{
			ID:     view.CheckoutControlID,
			Label:  s.config.Storefront.CheckoutLabel,
			Hidden: summary.ItemCount == 0,
		},
	}

	if summary.ItemCount == 0 {
		v.Empty = &EmptyState{
			Message:     msgEmptyCart,
			ActionLabel: msgEmptyAction,
			ActionURL:   s.config.Storefront.EmptyCartURL,
		}
		return v
	}

	for _, line := range model.Lines {
		v.Lines = append(v.Lines, LineView{
			LineItem:         line,
			UnitPriceText:    FormatMoney(line.UnitPrice),
			LineSubtotalText: FormatMoney(line.LineSubtotal),
		})
	}

	if summary.ShippingFee != nil && quote != nil {
		v.ShippingText = FormatMoney(*summary.ShippingFee)
		v.Shipping = &ShippingPanel{
			Service:    quote.Service,
			ETA:        quote.ETALabel(),
			PostalCode: FormatPostalCode(quote.PostalCode),
			FeeText:    v.ShippingText,
		}
	}
	return v
}

func linesFromPlatform(items []platform.CartStateItem) []LineItem {
	lines := make([]LineItem, 0, len(items))
	for _, item := range items {
		subtotal := item.Subtotal
		if subtotal.IsZero() {
			subtotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		lines = append(lines, LineItem{
			ItemID:       item.ID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			UnitPrice:    item.UnitPrice,
			Quantity:     item.Quantity,
			LineSubtotal: subtotal,
		})
	}
	return lines
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

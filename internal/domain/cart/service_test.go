package cart

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/view"
	redisdb "github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/database/redis"
	"github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/platform/platformtest"
	"github.com/lucascapelli/O-Especialista.Carros/internal/pkg/logging"
	"github.com/lucascapelli/O-Especialista.Carros/internal/pkg/session"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srv   *platformtest.Server
	redis *miniredis.Miniredis
	cfg   *config.Config
	store *Store
	svc   *Service
	sess  *session.Session

	mu   sync.Mutex
	cart map[string]interface{}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := platformtest.New(t)
	cfg := platformtest.Config(srv.URL)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewStore(redisdb.Wrap(rdb), cfg)
	f := &fixture{
		srv:   srv,
		redis: mr,
		cfg:   cfg,
		store: store,
		svc:   NewService(srv.Client(cfg), store, cfg, logging.Discard()),
		sess: session.New("session-1", []*http.Cookie{
			{Name: "sessionid", Value: "platform"},
			{Name: "csrftoken", Value: "tok"},
		}, cfg.Session.CookieName),
	}
	f.setCart("0.00", 0)
	srv.Handle(http.MethodGet, "/carrinho-json/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		body := f.cart
		f.mu.Unlock()
		platformtest.JSON(http.StatusOK, body)(w, r)
	})
	return f
}

func (f *fixture) setCart(subtotal string, count int, items ...map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cart = map[string]interface{}{"subtotal": subtotal, "total_itens": count}
	if items != nil {
		f.cart["itens"] = items
	}
}

func (f *fixture) mount(t *testing.T, lines ...LineItem) {
	t.Helper()
	_, err := f.svc.Mount(context.Background(), f.sess, lines)
	require.NoError(t, err)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(id uint, unit string, qty int) LineItem {
	return LineItem{ItemID: id, ProductName: "Filtro de óleo", UnitPrice: money(unit), Quantity: qty}
}

func TestRefreshRendersSummary(t *testing.T) {
	f := newFixture(t)
	f.setCart("150.00", 3)

	res, err := f.svc.Refresh(context.Background(), f.sess)
	require.NoError(t, err)
	require.NotNil(t, res.Cart)

	assert.Equal(t, "R$ 150.00", res.Cart.SubtotalText)
	assert.Equal(t, "R$ 150.00", res.Cart.TotalText)
	assert.Equal(t, "A calcular", res.Cart.ShippingText)
	assert.Equal(t, "3 itens", res.Cart.ItemCountText)
	assert.Nil(t, res.Cart.Summary.ShippingFee)
	assert.False(t, res.Cart.Checkout.Hidden)
	assert.Equal(t, "Finalizar Compra", res.Cart.Checkout.Label)
	assert.Nil(t, res.Cart.Empty)
	assert.Empty(t, res.Toasts)
}

func TestRefreshSingularLabel(t *testing.T) {
	f := newFixture(t)
	f.setCart("50.00", 1)

	res, err := f.svc.Refresh(context.Background(), f.sess)
	require.NoError(t, err)
	assert.Equal(t, "1 item", res.Cart.ItemCountText)
}

func TestRefreshEmptyCart(t *testing.T) {
	f := newFixture(t)
	f.setCart("0", 0)

	res, err := f.svc.Refresh(context.Background(), f.sess)
	require.NoError(t, err)
	require.NotNil(t, res.Cart.Empty)

	assert.Equal(t, "Seu carrinho está vazio", res.Cart.Empty.Message)
	assert.Equal(t, "Ver produtos", res.Cart.Empty.ActionLabel)
	assert.Equal(t, "/home/#products", res.Cart.Empty.ActionURL)
	assert.True(t, res.Cart.Checkout.Hidden)
	assert.Equal(t, "R$ 0.00", res.Cart.TotalText)
	assert.Empty(t, res.Cart.Lines)
}

func TestRefreshFailureLeavesPreviousView(t *testing.T) {
	f := newFixture(t)
	f.srv.Handle(http.MethodGet, "/carrinho-json/", platformtest.JSON(http.StatusInternalServerError, map[string]string{"error": "db down"}))

	res, err := f.svc.Refresh(context.Background(), f.sess)
	require.NoError(t, err)
	assert.Nil(t, res.Cart)

	toast, ok := res.LastToast()
	require.True(t, ok)
	assert.Equal(t, view.Toast{Kind: view.KindError, Message: "Erro ao atualizar carrinho"}, toast)
	assert.Equal(t, 1, f.srv.Count(http.MethodGet, "/carrinho-json/"))
}

func TestRefreshIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.setCart("150.00", 2)
	f.mount(t, line(1, "75.00", 2))

	first, err := f.svc.Refresh(context.Background(), f.sess)
	require.NoError(t, err)
	second, err := f.svc.Refresh(context.Background(), f.sess)
	require.NoError(t, err)

	assert.Equal(t, first.Cart, second.Cart)
}

func TestCoalescedRefreshOutlivesFirstCaller(t *testing.T) {
	f := newFixture(t)

	arrived := make(chan struct{}, 2)
	unblock := make(chan struct{})
	f.srv.Handle(http.MethodGet, "/carrinho-json/", func(w http.ResponseWriter, r *http.Request) {
		arrived <- struct{}{}
		<-unblock
		platformtest.JSON(http.StatusOK, map[string]interface{}{"subtotal": "150.00", "total_itens": 3})(w, r)
	})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstDone := make(chan *Result, 1)
	go func() {
		res, err := f.svc.Refresh(firstCtx, f.sess)
		assert.NoError(t, err)
		firstDone <- res
	}()
	<-arrived

	// The first shopper leaves while the shared call is in flight
	cancelFirst()
	first := <-firstDone
	assert.Nil(t, first.Cart)

	secondDone := make(chan *Result, 1)
	go func() {
		res, err := f.svc.Refresh(context.Background(), f.sess)
		assert.NoError(t, err)
		secondDone <- res
	}()
	time.Sleep(50 * time.Millisecond)
	close(unblock)

	second := <-secondDone
	require.NotNil(t, second.Cart)
	assert.Equal(t, "R$ 150.00", second.Cart.SubtotalText)
	assert.Empty(t, second.Toasts)
	assert.Equal(t, 1, f.srv.Count(http.MethodGet, "/carrinho-json/"))
}

func TestRefreshAdoptsPlatformLines(t *testing.T) {
	f := newFixture(t)
	f.mount(t, line(1, "75.00", 2))
	f.setCart("40.00", 2, map[string]interface{}{
		"id": 9, "produto_id": 3, "produto_nome": "Palheta", "preco_unitario": "20.00", "quantidade": 2, "subtotal": "40.00",
	})

	res, err := f.svc.Refresh(context.Background(), f.sess)
	require.NoError(t, err)
	require.Len(t, res.Cart.Lines, 1)
	assert.Equal(t, uint(9), res.Cart.Lines[0].ItemID)
	assert.Equal(t, "R$ 40.00", res.Cart.Lines[0].LineSubtotalText)

	model, err := f.store.LoadModel(context.Background(), f.sess.ID)
	require.NoError(t, err)
	_, ok := model.Line(1)
	assert.False(t, ok)
}

func TestChangeQuantityIncrement(t *testing.T) {
	f := newFixture(t)
	f.setCart("50.00", 1)
	f.mount(t, line(5, "50.00", 1))
	f.srv.Handle(http.MethodPost, "/alterar-quantidade/5/", func(w http.ResponseWriter, r *http.Request) {
		f.setCart("100.00", 2)
		platformtest.JSON(http.StatusOK, map[string]interface{}{
			"success": true, "subtotal_item": "100.00", "total_itens": 2,
		})(w, r)
	})

	res, err := f.svc.ChangeQuantity(context.Background(), f.sess, 5, 1, false)
	require.NoError(t, err)

	toast, ok := res.LastToast()
	require.True(t, ok)
	assert.Equal(t, "Quantidade atualizada!", toast.Message)

	require.Len(t, res.Cart.Lines, 1)
	assert.Equal(t, 2, res.Cart.Lines[0].Quantity)
	assert.True(t, money("100").Equal(res.Cart.Lines[0].LineSubtotal))
	assert.Equal(t, "R$ 100.00", res.Cart.TotalText)

	req, ok := f.srv.Last(http.MethodPost, "/alterar-quantidade/5/")
	require.True(t, ok)
	assert.JSONEq(t, `{"quantidade":2}`, string(req.Body))
	assert.Equal(t, "tok", req.Header.Get("X-CSRFToken"))
	assert.Equal(t, "XMLHttpRequest", req.Header.Get("X-Requested-With"))
}

func TestChangeQuantityComputesSubtotalWhenPlatformOmitsIt(t *testing.T) {
	f := newFixture(t)
	f.setCart("30.00", 3)
	f.mount(t, line(2, "10.00", 3))
	f.srv.Handle(http.MethodPost, "/alterar-quantidade/2/", platformtest.JSON(http.StatusOK, map[string]interface{}{
		"success": true, "total_itens": 2,
	}))

	_, err := f.svc.ChangeQuantity(context.Background(), f.sess, 2, -1, false)
	require.NoError(t, err)

	model, err := f.store.LoadModel(context.Background(), f.sess.ID)
	require.NoError(t, err)
	got, ok := model.Line(2)
	require.True(t, ok)
	assert.Equal(t, 2, got.Quantity)
	assert.True(t, money("20").Equal(got.LineSubtotal))
}

func TestDecrementAtOneAsksForConfirmation(t *testing.T) {
	f := newFixture(t)
	f.setCart("50.00", 1)
	f.mount(t, line(5, "50.00", 1))

	res, err := f.svc.ChangeQuantity(context.Background(), f.sess, 5, -1, false)
	require.NoError(t, err)
	require.NotNil(t, res.Confirm)

	assert.Equal(t, "Tem certeza que deseja remover este item do carrinho?", res.Confirm.Message)
	assert.Equal(t, ActionRemoveItem, res.Confirm.Action)
	assert.Equal(t, "5", res.Confirm.Subject)
	assert.Zero(t, f.srv.Count(http.MethodPost, "/alterar-quantidade/5/"))
	assert.Zero(t, f.srv.Count(http.MethodPost, "/remover_carrinho/5/"))
}

func TestConfirmedDecrementRemovesLastItem(t *testing.T) {
	f := newFixture(t)
	f.setCart("50.00", 1)
	f.mount(t, line(5, "50.00", 1))
	f.srv.Handle(http.MethodPost, "/remover_carrinho/5/", func(w http.ResponseWriter, r *http.Request) {
		f.setCart("0.00", 0)
		platformtest.JSON(http.StatusOK, map[string]interface{}{"success": true, "total_itens": 0})(w, r)
	})

	res, err := f.svc.ChangeQuantity(context.Background(), f.sess, 5, -1, true)
	require.NoError(t, err)

	assert.Equal(t, []uint{5}, res.Removed)
	toast, _ := res.LastToast()
	assert.Equal(t, "Item removido do carrinho", toast.Message)
	require.NotNil(t, res.Cart.Empty)
	assert.True(t, res.Cart.Checkout.Hidden)
	assert.Zero(t, f.srv.Count(http.MethodPost, "/alterar-quantidade/5/"))
}

func TestRemoveItemNeedsConfirmation(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.RemoveItem(context.Background(), f.sess, 8, false)
	require.NoError(t, err)
	require.NotNil(t, res.Confirm)
	assert.Nil(t, res.Cart)
	assert.Empty(t, f.srv.Requests())
}

func TestRemoveItemKeepsOtherLines(t *testing.T) {
	f := newFixture(t)
	f.setCart("80.00", 2)
	f.mount(t, line(1, "50.00", 1), line(2, "30.00", 1))
	f.srv.Handle(http.MethodPost, "/remover_carrinho/1/", func(w http.ResponseWriter, r *http.Request) {
		f.setCart("30.00", 1)
		platformtest.JSON(http.StatusOK, map[string]interface{}{"success": true, "total_itens": 1})(w, r)
	})

	res, err := f.svc.RemoveItem(context.Background(), f.sess, 1, true)
	require.NoError(t, err)
	require.Len(t, res.Cart.Lines, 1)
	assert.Equal(t, uint(2), res.Cart.Lines[0].ItemID)
	assert.Equal(t, "1 item", res.Cart.ItemCountText)
}

func TestChangeQuantityRejectedWhileInFlight(t *testing.T) {
	f := newFixture(t)
	f.setCart("50.00", 1)
	f.mount(t, line(5, "50.00", 1))

	token, ok, err := f.store.AcquireItem(context.Background(), f.sess.ID, 5)
	require.NoError(t, err)
	require.True(t, ok)

	res, err := f.svc.ChangeQuantity(context.Background(), f.sess, 5, 1, false)
	require.NoError(t, err)

	toast, _ := res.LastToast()
	assert.Equal(t, view.Toast{Kind: view.KindInfo, Message: "Aguarde, atualizando item..."}, toast)
	assert.Zero(t, f.srv.Count(http.MethodPost, "/alterar-quantidade/5/"))

	released, err := f.store.ReleaseItem(context.Background(), f.sess.ID, 5, token)
	require.NoError(t, err)
	require.True(t, released)
	f.srv.Handle(http.MethodPost, "/alterar-quantidade/5/", platformtest.JSON(http.StatusOK, map[string]interface{}{"success": true}))

	_, err = f.svc.ChangeQuantity(context.Background(), f.sess, 5, 1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, f.srv.Count(http.MethodPost, "/alterar-quantidade/5/"))

	// The guard is given back after the call
	_, ok, err = f.store.AcquireItem(context.Background(), f.sess.ID, 5)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExpiredGuardStaysWithItsNewOwner(t *testing.T) {
	f := newFixture(t)
	f.setCart("50.00", 1)
	f.mount(t, line(5, "50.00", 1))

	arrived := make(chan struct{}, 2)
	unblock := []chan struct{}{make(chan struct{}), make(chan struct{})}
	var calls int32
	f.srv.Handle(http.MethodPost, "/alterar-quantidade/5/", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1) - 1
		arrived <- struct{}{}
		<-unblock[n]
		platformtest.JSON(http.StatusOK, map[string]interface{}{"success": true})(w, r)
	})

	change := func(done chan<- struct{}) {
		defer close(done)
		_, err := f.svc.ChangeQuantity(context.Background(), f.sess, 5, 1, false)
		assert.NoError(t, err)
	}

	firstDone := make(chan struct{})
	go change(firstDone)
	<-arrived

	// The first update outlives its guard and a second click takes it
	f.redis.FastForward(f.cfg.Storefront.InflightTTL + time.Second)
	secondDone := make(chan struct{})
	go change(secondDone)
	<-arrived

	close(unblock[0])
	<-firstDone

	_, ok, err := f.store.AcquireItem(context.Background(), f.sess.ID, 5)
	require.NoError(t, err)
	assert.False(t, ok, "the late first update must not free the second update's guard")

	close(unblock[1])
	<-secondDone

	_, ok, err = f.store.AcquireItem(context.Background(), f.sess.ID, 5)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGuardedUpdateStopsWhenGuardExpires(t *testing.T) {
	f := newFixture(t)
	f.cfg.Storefront.InflightTTL = 50 * time.Millisecond
	f.setCart("50.00", 1)
	f.mount(t, line(5, "50.00", 1))

	f.srv.Handle(http.MethodPost, "/alterar-quantidade/5/", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	res, err := f.svc.ChangeQuantity(context.Background(), f.sess, 5, 1, false)
	require.NoError(t, err)

	toast, _ := res.LastToast()
	assert.Equal(t, view.KindError, toast.Kind)
	assert.False(t, f.redis.Exists("test:inflight:session-1:5"))
}

func TestChangeQuantityUnknownItem(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.ChangeQuantity(context.Background(), f.sess, 42, 1, false)
	require.NoError(t, err)
	toast, _ := res.LastToast()
	assert.Equal(t, "Item não encontrado no carrinho", toast.Message)
	assert.Empty(t, f.srv.Requests())
}

func TestChangeQuantityServerErrorIsVerbatim(t *testing.T) {
	f := newFixture(t)
	f.setCart("50.00", 1)
	f.mount(t, line(5, "50.00", 1))
	f.srv.Handle(http.MethodPost, "/alterar-quantidade/5/", platformtest.JSON(http.StatusBadRequest, map[string]interface{}{
		"success": false, "error": "Estoque insuficiente",
	}))

	res, err := f.svc.ChangeQuantity(context.Background(), f.sess, 5, 1, false)
	require.NoError(t, err)
	toast, _ := res.LastToast()
	assert.Equal(t, view.Toast{Kind: view.KindError, Message: "Estoque insuficiente"}, toast)

	model, err := f.store.LoadModel(context.Background(), f.sess.ID)
	require.NoError(t, err)
	got, _ := model.Line(5)
	assert.Equal(t, 1, got.Quantity)
}

func TestChangeQuantityForbiddenReadsAsConnectionError(t *testing.T) {
	f := newFixture(t)
	f.setCart("50.00", 1)
	f.mount(t, line(5, "50.00", 1))
	f.srv.Handle(http.MethodPost, "/alterar-quantidade/5/", platformtest.Raw(http.StatusForbidden, "CSRF"))

	res, err := f.svc.ChangeQuantity(context.Background(), f.sess, 5, 1, false)
	require.NoError(t, err)
	toast, _ := res.LastToast()
	assert.Equal(t, "Erro de conexão", toast.Message)
}

func TestAddItem(t *testing.T) {
	f := newFixture(t)
	f.srv.Handle(http.MethodPost, "/adicionar_carrinho/3/", func(w http.ResponseWriter, r *http.Request) {
		f.setCart("25.00", 1)
		platformtest.JSON(http.StatusOK, map[string]interface{}{"success": true, "total_itens": 1, "message": "ok"})(w, r)
	})
	f.srv.Handle(http.MethodPost, "/adicionar_carrinho/4/", platformtest.JSON(http.StatusOK, map[string]interface{}{
		"success": false, "error": "Produto indisponível",
	}))

	res, err := f.svc.AddItem(context.Background(), f.sess, 3)
	require.NoError(t, err)
	toast, _ := res.LastToast()
	assert.Equal(t, view.Toast{Kind: view.KindSuccess, Message: "Produto adicionado ao carrinho!"}, toast)
	assert.Equal(t, "1 item", res.Cart.ItemCountText)

	res, err = f.svc.AddItem(context.Background(), f.sess, 4)
	require.NoError(t, err)
	toast, _ = res.LastToast()
	assert.Equal(t, view.Toast{Kind: view.KindError, Message: "Produto indisponível"}, toast)
	assert.Nil(t, res.Cart)
}

func quoteHandler(fee string) http.HandlerFunc {
	return platformtest.JSON(http.StatusOK, map[string]interface{}{
		"success": true, "frete": fee, "servico": "PAC", "prazo_dias": 5,
	})
}

func TestEstimateShippingAppliesFee(t *testing.T) {
	f := newFixture(t)
	f.setCart("150.00", 2)
	f.srv.Handle(http.MethodPost, "/api/carrinho/simular-frete/", quoteHandler("19.90"))

	res, err := f.svc.EstimateShipping(context.Background(), f.sess, "01001-000")
	require.NoError(t, err)
	require.NotNil(t, res.Cart)

	assert.Equal(t, "R$ 169.90", res.Cart.TotalText)
	assert.Equal(t, "R$ 19.90", res.Cart.ShippingText)
	require.NotNil(t, res.Cart.Shipping)
	assert.Equal(t, "PAC", res.Cart.Shipping.Service)
	assert.Equal(t, "5 dias úteis", res.Cart.Shipping.ETA)
	assert.Equal(t, "01001-000", res.Cart.Shipping.PostalCode)
	assert.True(t, res.Cart.Summary.Total.Equal(res.Cart.Summary.Subtotal.Add(*res.Cart.Summary.ShippingFee)))

	req, ok := f.srv.Last(http.MethodPost, "/api/carrinho/simular-frete/")
	require.True(t, ok)
	assert.JSONEq(t, `{"cep_destino":"01001000"}`, string(req.Body))

	quote, err := f.store.LoadQuote(context.Background(), f.sess.ID)
	require.NoError(t, err)
	require.NotNil(t, quote)
	assert.Equal(t, "01001000", quote.PostalCode)

	// The quote survives a refresh while the cart is unchanged
	again, err := f.svc.Refresh(context.Background(), f.sess)
	require.NoError(t, err)
	assert.Equal(t, "R$ 169.90", again.Cart.TotalText)
	assert.Empty(t, again.Inline)
}

func TestEstimateShippingRejectsShortPostalCode(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.EstimateShipping(context.Background(), f.sess, "1234")
	require.NoError(t, err)

	require.Len(t, res.Inline, 1)
	assert.Equal(t, view.Inline{Target: TargetShipping, Kind: view.KindError, Message: "CEP inválido"}, res.Inline[0])
	assert.Empty(t, f.srv.Requests())
}

func TestEstimateShippingFailureClearsQuote(t *testing.T) {
	f := newFixture(t)
	f.setCart("150.00", 2)
	f.srv.Handle(http.MethodPost, "/api/carrinho/simular-frete/", platformtest.Sequence(
		quoteHandler("19.90"),
		platformtest.JSON(http.StatusBadRequest, map[string]interface{}{"success": false, "error": "CEP não atendido"}),
	))

	_, err := f.svc.EstimateShipping(context.Background(), f.sess, "01001000")
	require.NoError(t, err)

	res, err := f.svc.EstimateShipping(context.Background(), f.sess, "99999999")
	require.NoError(t, err)

	require.Len(t, res.Inline, 1)
	assert.Equal(t, "CEP não atendido", res.Inline[0].Message)
	assert.Equal(t, "R$ 150.00", res.Cart.TotalText)
	assert.Nil(t, res.Cart.Shipping)

	quote, err := f.store.LoadQuote(context.Background(), f.sess.ID)
	require.NoError(t, err)
	assert.Nil(t, quote)
}

func TestEstimateShippingInvalidResponse(t *testing.T) {
	f := newFixture(t)
	f.setCart("150.00", 2)
	f.srv.Handle(http.MethodPost, "/api/carrinho/simular-frete/", platformtest.JSON(http.StatusOK, map[string]interface{}{"success": true}))

	res, err := f.svc.EstimateShipping(context.Background(), f.sess, "01001000")
	require.NoError(t, err)
	require.Len(t, res.Inline, 1)
	assert.Equal(t, "Não foi possível calcular o frete", res.Inline[0].Message)
	assert.Equal(t, "R$ 150.00", res.Cart.TotalText)
}

func TestQuoteInvalidatedWhenCartChanges(t *testing.T) {
	f := newFixture(t)
	f.setCart("150.00", 2)
	f.mount(t, line(1, "75.00", 2))
	f.srv.Handle(http.MethodPost, "/api/carrinho/simular-frete/", quoteHandler("19.90"))
	f.srv.Handle(http.MethodPost, "/alterar-quantidade/1/", func(w http.ResponseWriter, r *http.Request) {
		f.setCart("225.00", 3)
		platformtest.JSON(http.StatusOK, map[string]interface{}{"success": true, "subtotal_item": "225.00"})(w, r)
	})

	_, err := f.svc.EstimateShipping(context.Background(), f.sess, "01001000")
	require.NoError(t, err)

	res, err := f.svc.ChangeQuantity(context.Background(), f.sess, 1, 1, false)
	require.NoError(t, err)

	assert.Nil(t, res.Cart.Summary.ShippingFee)
	assert.Equal(t, "R$ 225.00", res.Cart.TotalText)
	require.Len(t, res.Inline, 1)
	assert.Equal(t, view.KindInfo, res.Inline[0].Kind)
	assert.Equal(t, TargetShipping, res.Inline[0].Target)

	quote, err := f.store.LoadQuote(context.Background(), f.sess.ID)
	require.NoError(t, err)
	assert.Nil(t, quote)
}

func TestClearShipping(t *testing.T) {
	f := newFixture(t)
	f.setCart("150.00", 2)
	f.srv.Handle(http.MethodPost, "/api/carrinho/simular-frete/", quoteHandler("19.90"))

	_, err := f.svc.EstimateShipping(context.Background(), f.sess, "01001000")
	require.NoError(t, err)

	res, err := f.svc.ClearShipping(context.Background(), f.sess)
	require.NoError(t, err)
	assert.Equal(t, "R$ 150.00", res.Cart.TotalText)
	assert.Empty(t, res.Inline)
}

func TestResetForgetsModelAndQuote(t *testing.T) {
	f := newFixture(t)
	f.setCart("150.00", 2)
	f.mount(t, line(1, "75.00", 2))
	f.srv.Handle(http.MethodPost, "/api/carrinho/simular-frete/", quoteHandler("19.90"))
	_, err := f.svc.EstimateShipping(context.Background(), f.sess, "01001000")
	require.NoError(t, err)

	require.NoError(t, f.svc.Reset(context.Background(), f.sess.ID))

	quote, err := f.svc.CurrentQuote(context.Background(), f.sess.ID)
	require.NoError(t, err)
	assert.Nil(t, quote)
	model, err := f.store.LoadModel(context.Background(), f.sess.ID)
	require.NoError(t, err)
	assert.Empty(t, model.Lines)
}

func TestUnmountDropsModel(t *testing.T) {
	f := newFixture(t)
	f.setCart("75.00", 1)
	f.mount(t, line(1, "75.00", 1))

	require.NoError(t, f.svc.Unmount(context.Background(), f.sess))

	res, err := f.svc.ChangeQuantity(context.Background(), f.sess, 1, 1, false)
	require.NoError(t, err)
	toast, _ := res.LastToast()
	assert.Equal(t, "Item não encontrado no carrinho", toast.Message)
}

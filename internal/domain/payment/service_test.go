package payment

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	"github.com/lucascapelli/O-Especialista.Carros/internal/domain/view"
	redisdb "github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/database/redis"
	"github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/platform"
	"github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/platform/platformtest"
	"github.com/lucascapelli/O-Especialista.Carros/internal/pkg/logging"
	"github.com/lucascapelli/O-Especialista.Carros/internal/pkg/session"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	srv  *platformtest.Server
	cfg  *config.Config
	svc  *Service
	sess *session.Session
}

func newHarness(t *testing.T, allowSimulation bool) *harness {
	t.Helper()
	srv := platformtest.New(t)
	cfg := platformtest.Config(srv.URL)
	cfg.Payments.AllowSimulatedApproval = allowSimulation

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return &harness{
		srv:  srv,
		cfg:  cfg,
		svc:  NewService(srv.Client(cfg), NewStore(redisdb.Wrap(rdb), cfg), cfg, logging.Discard()),
		sess: session.New("session-1", []*http.Cookie{{Name: "csrftoken", Value: "tok"}}, cfg.Session.CookieName),
	}
}

func newOrder(simulated bool) *platform.OrderCreated {
	return &platform.OrderCreated{
		OrderID:     42,
		OrderNumber: "PED-0042",
		Payment: &platform.PaymentInfo{
			Code:          "00020126PIXCODE",
			TransactionID: "tx-1",
			Status:        "pendente",
			Simulated:     simulated,
		},
	}
}

func actionIDs(modal *view.Modal) []string {
	ids := make([]string, 0, len(modal.Actions))
	for _, action := range modal.Actions {
		ids = append(ids, action.ID)
	}
	return ids
}

type failingClipboard struct{}

func (failingClipboard) WriteText(context.Context, string) error {
	return errors.New("permission denied")
}

func TestPresentSimulatedPayment(t *testing.T) {
	h := newHarness(t, true)

	modal, err := h.svc.Present(context.Background(), h.sess, newOrder(true))
	require.NoError(t, err)

	assert.Equal(t, ModalKind, modal.Kind)
	assert.Equal(t, "Pagamento PIX (Modo Simulação)", modal.Title)
	assert.Equal(t, []string{ActionCopy, ActionApprove, ActionOrders}, actionIDs(modal))

	p, ok := modal.Data.(*SimulatedPayment)
	require.True(t, ok)
	assert.Equal(t, "00020126PIXCODE", p.Code)
	assert.Equal(t, uint(42), p.OrderID)

	found, err := h.svc.Find(context.Background(), h.sess, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, "PED-0042", found.OrderNumber)
}

func TestPresentHidesApprovalWhenDisabled(t *testing.T) {
	h := newHarness(t, false)

	modal, err := h.svc.Present(context.Background(), h.sess, newOrder(true))
	require.NoError(t, err)
	assert.Equal(t, []string{ActionCopy, ActionOrders}, actionIDs(modal))

	live, err := newHarness(t, true).svc.Present(context.Background(), h.sess, newOrder(false))
	require.NoError(t, err)
	assert.Equal(t, "Pagamento PIX", live.Title)
	assert.Equal(t, []string{ActionCopy, ActionOrders}, actionIDs(live))
}

func TestSimulateApproval(t *testing.T) {
	h := newHarness(t, true)
	h.srv.Handle(http.MethodPost, "/pagamento/abacatepay/webhook/", platformtest.JSON(http.StatusOK, map[string]string{"status": "ok"}))

	_, err := h.svc.Present(context.Background(), h.sess, newOrder(true))
	require.NoError(t, err)

	res, err := h.svc.SimulateApproval(context.Background(), h.sess, "tx-1")
	require.NoError(t, err)

	toast, ok := res.LastToast()
	require.True(t, ok)
	assert.Equal(t, view.Toast{Kind: view.KindSuccess, Message: "Pagamento simulado aprovado!"}, toast)
	assert.True(t, res.CloseModal)
	require.NotNil(t, res.Redirect)
	assert.Equal(t, "/meus-pedidos/", res.Redirect.URL)
	assert.Equal(t, int64(2000), res.Redirect.DelayMS)

	req, ok := h.srv.Last(http.MethodPost, "/pagamento/abacatepay/webhook/")
	require.True(t, ok)
	assert.JSONEq(t, `{"id":"tx-1","status":"approved","dev_mode":true,"simulado":true}`, string(req.Body))
	assert.Equal(t, "tok", req.Header.Get("X-CSRFToken"))

	// Approving twice finds nothing
	res, err = h.svc.SimulateApproval(context.Background(), h.sess, "tx-1")
	require.NoError(t, err)
	toast, _ = res.LastToast()
	assert.Equal(t, "Pagamento não encontrado", toast.Message)
	assert.Equal(t, 1, h.srv.Count(http.MethodPost, "/pagamento/abacatepay/webhook/"))
}

func TestSimulateApprovalRefusals(t *testing.T) {
	t.Run("unknown payment", func(t *testing.T) {
		h := newHarness(t, true)
		res, err := h.svc.SimulateApproval(context.Background(), h.sess, "nope")
		require.NoError(t, err)
		toast, _ := res.LastToast()
		assert.Equal(t, "Pagamento não encontrado", toast.Message)
		assert.Empty(t, h.srv.Requests())
	})

	t.Run("real payment", func(t *testing.T) {
		h := newHarness(t, true)
		_, err := h.svc.Present(context.Background(), h.sess, newOrder(false))
		require.NoError(t, err)

		res, err := h.svc.SimulateApproval(context.Background(), h.sess, "tx-1")
		require.NoError(t, err)
		assert.Nil(t, res.Redirect)
		assert.Empty(t, h.srv.Requests())
	})

	t.Run("disabled", func(t *testing.T) {
		h := newHarness(t, false)
		_, err := h.svc.Present(context.Background(), h.sess, newOrder(true))
		require.NoError(t, err)

		res, err := h.svc.SimulateApproval(context.Background(), h.sess, "tx-1")
		require.NoError(t, err)
		toast, _ := res.LastToast()
		assert.Equal(t, "Aprovação simulada indisponível", toast.Message)
		assert.Empty(t, h.srv.Requests())
	})
}

func TestSimulateApprovalFailureKeepsModal(t *testing.T) {
	h := newHarness(t, true)
	h.srv.Handle(http.MethodPost, "/pagamento/abacatepay/webhook/", platformtest.JSON(http.StatusBadRequest, map[string]string{"error": "Pagamento não encontrado"}))

	_, err := h.svc.Present(context.Background(), h.sess, newOrder(true))
	require.NoError(t, err)

	res, err := h.svc.SimulateApproval(context.Background(), h.sess, "tx-1")
	require.NoError(t, err)

	toast, _ := res.LastToast()
	assert.Equal(t, view.Toast{Kind: view.KindError, Message: "Erro na simulação"}, toast)
	assert.False(t, res.CloseModal)
	assert.Nil(t, res.Redirect)

	_, err = h.svc.Find(context.Background(), h.sess, "tx-1")
	assert.NoError(t, err)
}

func TestCopyCode(t *testing.T) {
	h := newHarness(t, true)

	clipboard := &BrowserClipboard{}
	res := h.svc.CopyCode(context.Background(), clipboard, "00020126PIXCODE")
	toast, _ := res.LastToast()
	assert.Equal(t, view.Toast{Kind: view.KindSuccess, Message: "Código PIX copiado!"}, toast)
	require.NotNil(t, clipboard.Effect())
	assert.Equal(t, "00020126PIXCODE", clipboard.Effect().Text)

	res = h.svc.CopyCode(context.Background(), failingClipboard{}, "00020126PIXCODE")
	toast, _ = res.LastToast()
	assert.Equal(t, view.Toast{Kind: view.KindError, Message: "Erro ao copiar código"}, toast)
}

func TestCopyPaymentCode(t *testing.T) {
	h := newHarness(t, true)
	_, err := h.svc.Present(context.Background(), h.sess, newOrder(true))
	require.NoError(t, err)

	clipboard := &BrowserClipboard{}
	res, err := h.svc.CopyPaymentCode(context.Background(), h.sess, clipboard, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, "Código PIX copiado!", res.Toasts[0].Message)
	assert.Equal(t, "00020126PIXCODE", clipboard.Effect().Text)

	res, err = h.svc.CopyPaymentCode(context.Background(), h.sess, &BrowserClipboard{}, "missing")
	require.NoError(t, err)
	assert.Equal(t, "Pagamento não encontrado", res.Toasts[0].Message)
}

func TestClose(t *testing.T) {
	h := newHarness(t, true)
	_, err := h.svc.Present(context.Background(), h.sess, newOrder(true))
	require.NoError(t, err)

	res, err := h.svc.Close(context.Background(), h.sess, "tx-1")
	require.NoError(t, err)
	assert.True(t, res.CloseModal)
	assert.Equal(t, int64(0), res.Redirect.DelayMS)

	_, err = h.svc.Find(context.Background(), h.sess, "tx-1")
	assert.ErrorIs(t, err, ErrUnknownPayment)
}

// Package platformtest provides an in-process stand-in for the commerce
// platform so gateway packages can be tested against real HTTP traffic.
package platformtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	"github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/platform"
	"github.com/lucascapelli/O-Especialista.Carros/internal/pkg/logging"
)

// Request is a call the fake platform received
type Request struct {
	Method  string
	Path    string
	Header  http.Header
	Body    []byte
	Cookies []*http.Cookie
}

// Decode unmarshals the request body into v
func (r Request) Decode(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// Server is a scripted platform
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
	handlers map[string]http.HandlerFunc
}

// New starts a fake platform that is closed when the test ends
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{handlers: make(map[string]http.HandlerFunc)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle scripts the answer for method and path
func (s *Server) Handle(method, path string, handler http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method+" "+path] = handler
}

// Requests returns every call received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many times method and path were called
func (s *Server) Count(method, path string) int {
	n := 0
	for _, req := range s.Requests() {
		if req.Method == method && req.Path == path {
			n++
		}
	}
	return n
}

// Last returns the most recent call to method and path
func (s *Server) Last(method, path string) (Request, bool) {
	requests := s.Requests()
	for i := len(requests) - 1; i >= 0; i-- {
		if requests[i].Method == method && requests[i].Path == path {
			return requests[i], true
		}
	}
	return Request{}, false
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:  r.Method,
		Path:    r.URL.Path,
		Header:  r.Header.Clone(),
		Body:    body,
		Cookies: r.Cookies(),
	})
	handler, ok := s.handlers[r.Method+" "+r.URL.Path]
	s.mu.Unlock()

	if !ok {
		JSON(http.StatusNotFound, map[string]string{"error": "not found"})(w, r)
		return
	}
	handler(w, r)
}

// JSON answers with status and body encoded as JSON
func JSON(status int, body interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

// Raw answers with status and an unmodified body
func Raw(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// Sequence answers successive calls with successive handlers, repeating
// the last one once exhausted.
func Sequence(handlers ...http.HandlerFunc) http.HandlerFunc {
	var mu sync.Mutex
	next := 0
	return func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		handler := handlers[next]
		if next < len(handlers)-1 {
			next++
		}
		mu.Unlock()
		handler(w, r)
	}
}

// Config returns a gateway configuration pointing at baseURL
func Config(baseURL string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "storefront-test", Environment: "test"},
		Redis: config.RedisConfig{
			KeyPrefix: "test",
		},
		Session: config.SessionConfig{
			Secret:     "test-session-secret-with-at-least-32-chars",
			CookieName: "sf_session",
			Expiry:     time.Hour,
		},
		Platform: config.PlatformConfig{
			BaseURL:            baseURL,
			CSRFCookieName:     "csrftoken",
			Timeout:            5 * time.Second,
			BreakerMaxFailures: 5,
			BreakerOpenTimeout: time.Minute,
		},
		Storefront: config.StorefrontConfig{
			EmptyCartURL:     "/home/#products",
			LoginURL:         "/login/",
			RegisterURL:      "/criar-conta/",
			OrdersURL:        "/meus-pedidos/",
			CheckoutLabel:    "Finalizar Compra",
			ShippingQuoteTTL: 24 * time.Hour,
			CartModelTTL:     24 * time.Hour,
			InflightTTL:      10 * time.Second,
			CheckoutLockTTL:  30 * time.Second,
			PaymentMethod:    "pix",
		},
		Payments: config.PaymentsConfig{
			AllowSimulatedApproval: true,
			ApprovalRedirectDelay:  2 * time.Second,
			ModalTTL:               30 * time.Minute,
			WebhookApprovedStatus:  "approved",
		},
		Security: config.SecurityConfig{
			RateLimitPerMinute: 1000,
		},
		Logging: config.LoggingConfig{Level: "error", Format: "json"},
	}
}

// Client returns a platform client wired to s with the given configuration
func (s *Server) Client(cfg *config.Config) *platform.Client {
	return platform.NewClientWithHTTP(cfg, s.Server.Client(), logging.Discard())
}

// Credentials returns shopper credentials with a session and token cookie
func Credentials(token string) *platform.Credentials {
	return platform.NewCredentials([]*http.Cookie{
		{Name: "sessionid", Value: "platform-session"},
		{Name: "csrftoken", Value: token},
	})
}

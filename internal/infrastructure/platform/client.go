// internal/infrastructure/platform/client.go
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 1 << 20

// Client talks to the commerce platform on behalf of a shopper
type Client struct {
	baseURL    string
	csrfCookie string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*response]
	logger     *logrus.Logger
}

type response struct {
	status int
	body   []byte
}

// NewClient creates a platform client with an instrumented transport
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	httpClient := &http.Client{
		Timeout:   cfg.Platform.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return NewClientWithHTTP(cfg, httpClient, logger)
}

// NewClientWithHTTP creates a platform client on top of httpClient
func NewClientWithHTTP(cfg *config.Config, httpClient *http.Client, logger *logrus.Logger) *Client {
	maxFailures := cfg.Platform.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	settings := gobreaker.Settings{
		Name:        "platform",
		MaxRequests: 1,
		Timeout:     cfg.Platform.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Platform circuit breaker changed state")
		},
		// Business rejections are answers, not outages
		IsSuccessful: func(err error) bool {
			var perr *Error
			if errors.As(err, &perr) {
				return perr.Status < http.StatusInternalServerError
			}
			return err == nil
		},
	}

	return &Client{
		baseURL:    cfg.Platform.BaseURL,
		csrfCookie: cfg.Platform.CSRFCookieName,
		httpClient: httpClient,
		breaker:    gobreaker.NewCircuitBreaker[*response](settings),
		logger:     logger,
	}
}

// do performs one call. Mutating methods carry the anti-forgery token and
// the AJAX marker the platform expects. out is filled from the JSON body of
// 2xx answers; non-2xx answers become *Error.
func (c *Client) do(ctx context.Context, creds *Credentials, method, path string, payload, out interface{}) error {
	var body io.Reader
	var contentType string
	switch p := payload.(type) {
	case nil:
	case url.Values:
		// Form views read request.POST
		body = strings.NewReader(p.Encode())
		contentType = "application/x-www-form-urlencoded"
	default:
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", path, err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if creds != nil {
		for _, cookie := range creds.Cookies() {
			req.AddCookie(cookie)
		}
		if method != http.MethodGet && method != http.MethodHead {
			req.Header.Set("X-CSRFToken", creds.AntiForgeryToken(c.csrfCookie))
			req.Header.Set("X-Requested-With", "XMLHttpRequest")
		}
	}

	start := time.Now()
	resp, err := c.breaker.Execute(func() (*response, error) {
		httpResp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
		}
		defer httpResp.Body.Close()

		if creds != nil {
			creds.absorb(httpResp.Cookies())
		}

		raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrTransport, path, err)
		}

		result := &response{status: httpResp.StatusCode, body: raw}
		if result.status >= http.StatusInternalServerError {
			return result, c.errorFrom(path, result)
		}
		return result, nil
	})

	entry := c.logger.WithFields(logrus.Fields{
		"method":  method,
		"path":    path,
		"latency": time.Since(start),
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		entry.Warn("Platform call short-circuited")
		return fmt.Errorf("%w: %s %s", ErrUnavailable, method, path)
	}
	if err != nil {
		entry.WithError(err).Error("Platform call failed")
		return err
	}

	entry = entry.WithField("status_code", resp.status)
	if resp.status >= http.StatusBadRequest {
		perr := c.errorFrom(path, resp)
		entry.WithError(perr).Warn("Platform rejected call")
		return perr
	}
	entry.Debug("Platform call completed")

	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, path, err)
	}
	return nil
}

// errorFrom extracts the platform's message from a failure body. The
// platform answers either {"error": ...}, {"erro": ...} or {"message": ...}.
func (c *Client) errorFrom(path string, resp *response) *Error {
	var body struct {
		Error   string `json:"error"`
		Erro    string `json:"erro"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(resp.body, &body)

	message := body.Error
	if message == "" {
		message = body.Erro
	}
	if message == "" {
		message = body.Message
	}
	return &Error{Status: resp.status, Message: message, Path: path}
}

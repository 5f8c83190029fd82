// Package client talks to the members book REST API. Every call sends
// the stored access token in the x-access-token header and runs behind
// a circuit breaker with retry and a concurrency bulkhead.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/clubbook/members-book-go/internal/domain"
	"github.com/clubbook/members-book-go/internal/infra/resilience"
)

var apiTracer = otel.Tracer("client/api")

// TokenSource supplies the stored access token and clears it when the
// backend reports the session as no longer valid.
type TokenSource interface {
	Token() (string, error)
	Clear() error
}

// NoToken is a TokenSource for anonymous calls, e.g. a server proxying
// public reads to an upstream API.
type NoToken struct{}

func (NoToken) Token() (string, error) { return "", nil }
func (NoToken) Clear() error           { return nil }

// APIClient is the HTTP client for the members book backend.
type APIClient struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
	logger     *zap.Logger
}

// New creates an APIClient. The http.Client carries the request
// deadline (10s by default, from config).
func New(httpClient *http.Client, baseURL string, tokens TokenSource, cfg resilience.Config, logger *zap.Logger) *APIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxConc := cfg.MaxConcurrency
	if maxConc <= 0 {
		maxConc = 8
	}
	if cfg.Retryable == nil {
		// Client errors are final; only transport failures and 5xx
		// responses get another attempt.
		cfg.Retryable = func(err error) bool {
			var status *statusError
			if errors.As(err, &status) {
				return status.code >= 500
			}
			return true
		}
	}
	return &APIClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		tokens:     tokens,
		cb:         resilience.NewCircuitBreaker("members-api"),
		bulkhead:   resilience.NewBulkhead(maxConc),
		cfg:        cfg,
		logger:     logger,
	}
}

// apiError is the error payload the backend returns on failures.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e apiError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// statusError carries a non-2xx response out of the retry loop so it
// can be mapped to the error taxonomy exactly once.
type statusError struct {
	code    int
	payload apiError
}

func (e *statusError) Error() string {
	return fmt.Sprintf("members API returned status %d: %s", e.code, e.payload.text())
}

// do performs one API call: bulkhead slot, circuit breaker, retry with
// backoff, auth header, and decoding of the response into out.
func (c *APIClient) do(ctx context.Context, op, method, path string, body, out any) error {
	ctx, span := apiTracer.Start(ctx, "APIClient."+op)
	defer span.End()
	span.SetAttributes(attribute.String("http.method", method), attribute.String("http.path", path))

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return c.mapError(op, err)
	}
	defer c.bulkhead.Release()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			return c.roundTrip(ctx, method, path, payload, out)
		})
	})
	if err != nil {
		return c.mapError(op, err)
	}
	return nil
}

func (c *APIClient) roundTrip(ctx context.Context, method, path string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token, tokErr := c.tokens.Token(); tokErr == nil && token != "" {
		req.Header.Set("x-access-token", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body apiError
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &statusError{code: resp.StatusCode, payload: body}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// mapError translates transport and status failures into the domain
// error taxonomy.
func (c *APIClient) mapError(op string, err error) error {
	var status *statusError
	if errors.As(err, &status) {
		switch status.code {
		case http.StatusUnauthorized:
			if clearErr := c.tokens.Clear(); clearErr != nil {
				c.logger.Warn("could not clear stored token", zap.Error(clearErr))
			}
			return &domain.ErrSessionExpired{}
		case http.StatusForbidden:
			return &domain.ErrForbidden{Action: status.payload.text()}
		case http.StatusNotFound:
			return &domain.ErrNotFound{Resource: op, ID: status.payload.text()}
		case http.StatusConflict:
			return &domain.ErrConflict{Message: status.payload.text()}
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return &domain.ErrValidation{Field: op, Message: status.payload.text()}
		default:
			return &domain.ErrExternalService{Service: "members-api", Err: status}
		}
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: "members-api"}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.ErrTimeout{Operation: op}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return &domain.ErrTimeout{Operation: op}
		}
		return &domain.ErrNetwork{Op: op, Err: urlErr}
	}

	return &domain.ErrNetwork{Op: op, Err: err}
}

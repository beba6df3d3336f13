package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payment"
)

// Client posts movements to the external cash ledger
type Client struct {
	baseURL         string
	apiToken        string
	httpClient      *http.Client
	maxRetries      uint64
	initialInterval time.Duration
	logger          *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithInitialInterval sets the first retry delay; tests shorten it.
func WithInitialInterval(d time.Duration) Option {
	return func(c *Client) { c.initialInterval = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(cfg config.LedgerConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		apiToken:        cfg.APIToken,
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		maxRetries:      uint64(cfg.MaxRetries),
		initialInterval: 500 * time.Millisecond,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError represents a rejection by the ledger service
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ledger API error [%d] %s: %s", e.StatusCode, e.Code, e.Message)
}

// Retryable reports whether the ledger may accept the same request later.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PostMovement sends one movement. 5xx, 429 and transport errors are retried
// with exponential backoff under the same Idempotency-Key; other 4xx are not.
func (c *Client) PostMovement(ctx context.Context, m payment.Movement) (payment.Receipt, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return payment.Receipt{}, fmt.Errorf("encode movement: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)

	var receipt payment.Receipt
	attempt := 0
	op := func() error {
		attempt++
		r, err := c.post(ctx, body, m.IdempotencyKey)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && !apiErr.Retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		receipt = r
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("ledger posting attempt failed, retrying",
			slog.String("idempotency_key", m.IdempotencyKey),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()),
		)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return payment.Receipt{}, err
	}
	return receipt, nil
}

func (c *Client) post(ctx context.Context, body []byte, idempotencyKey string) (payment.Receipt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/movements", bytes.NewReader(body))
	if err != nil {
		return payment.Receipt{}, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return payment.Receipt{}, fmt.Errorf("post movement: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return payment.Receipt{}, fmt.Errorf("read ledger response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		if eb.Message == "" {
			eb.Message = http.StatusText(resp.StatusCode)
		}
		return payment.Receipt{}, &APIError{StatusCode: resp.StatusCode, Code: eb.Code, Message: eb.Message}
	}

	var receipt payment.Receipt
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &receipt); err != nil {
			return payment.Receipt{}, backoff.Permanent(fmt.Errorf("decode ledger response: %w", err))
		}
	}
	return receipt, nil
}

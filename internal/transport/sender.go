// Package transport delivers a report to the receiver endpoint.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/breeze-rmm/system-reporter/internal/config"
	"github.com/breeze-rmm/system-reporter/internal/httputil"
	"github.com/breeze-rmm/system-reporter/internal/logging"
	"github.com/breeze-rmm/system-reporter/internal/report"
)

var log = logging.L("transport")

// DefaultTimeout bounds a send, retries included.
const DefaultTimeout = 30 * time.Second

// Header names set on every request.
const (
	HeaderAPIKey    = "x-api-key"
	HeaderRequestID = "X-Request-ID"
)

// Sender POSTs reports to one endpoint.
type Sender struct {
	creds     config.Credentials
	client    *http.Client
	timeout   time.Duration
	retry     httputil.RetryConfig
	userAgent string
}

// Option customizes a Sender.
type Option func(*Sender)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Sender) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRetries allows n additional attempts after a failed send.
func WithRetries(n int) Option {
	return func(s *Sender) {
		if n > 0 {
			s.retry.MaxRetries = n
		}
	}
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Sender) {
		if c != nil {
			s.client = c
		}
	}
}

// NewSender creates a Sender for creds. version is advertised in User-Agent.
func NewSender(creds config.Credentials, version string, opts ...Option) *Sender {
	s := &Sender{
		creds:     creds,
		client:    &http.Client{},
		timeout:   DefaultTimeout,
		retry:     httputil.DefaultRetryConfig(),
		userAgent: logging.AppName + "/" + version,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send POSTs r as JSON. Any network failure or non-2xx response is an error;
// the response body is not interpreted.
func (s *Sender) Send(ctx context.Context, r *report.Report) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send cancelled: %w", err)
	}

	body, err := report.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	requestID := uuid.NewString()
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("User-Agent", s.userAgent)
	headers.Set(HeaderAPIKey, s.creds.APIKey())
	headers.Set(HeaderRequestID, requestID)

	start := time.Now()
	code, err := httputil.Do(ctx, s.client, http.MethodPost, s.creds.Endpoint(), body, headers, s.retry)
	if err != nil {
		return fmt.Errorf("post report to %s: %w", s.creds.Endpoint(), err)
	}

	log.Info("report delivered",
		"hostname", r.Hostname,
		"status", code,
		"requestId", requestID,
		"bytes", len(body),
		logging.KeyDurationMs, time.Since(start).Milliseconds())
	return nil
}

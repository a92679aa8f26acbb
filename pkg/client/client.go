// Package client is the Go client for the QA testbed API. Every call runs
// through one pipeline: fault injection first, then the real HTTP exchange,
// then exactly one request-history entry, success or failure.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/qa-testbed/testbed-api/pkg/client/history"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:3001"

// APIError is returned when the server responded with a non-2xx status.
// By the time the caller sees it, the call has already been logged to
// history; callers must not log it again.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d", e.Status)
}

// FaultInjector runs before a request is dispatched and may delay it or
// abort it with a simulated failure.
type FaultInjector interface {
	Apply(ctx context.Context) error
}

// Recorder receives one history item per completed or failed call.
type Recorder interface {
	Add(item history.Item)
}

// Client issues requests against the testbed API. Construct with New; the
// zero value is not usable.
type Client struct {
	baseURL  string
	httpc    *http.Client
	injector FaultInjector
	recorder Recorder
	log      zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithInjector enables fault injection in front of every call.
func WithInjector(in FaultInjector) Option {
	return func(c *Client) { c.injector = in }
}

// WithRecorder enables request-history logging.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithLogger attaches a structured logger for client-internal events.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New builds a Client. An empty baseURL falls back to DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request runs the full pipeline for one call and decodes the response body
// into out (when out is non-nil). Failure modes:
//   - non-2xx response: *APIError, logged with the response status;
//   - injected or transport failure: plain error, logged with success=false
//     and no status.
func (c *Client) request(ctx context.Context, method, endpoint string, body, out any) error {
	requestID := uuid.NewString()
	fullURL := c.baseURL + endpoint
	start := time.Now()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	// Fault injection runs before any real network activity. A simulated
	// failure is logged and surfaced exactly like a transport failure.
	if c.injector != nil {
		if err := c.injector.Apply(ctx); err != nil {
			c.logFailure(method, endpoint, fullURL, payload, start, err)
			return err
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		c.logFailure(method, endpoint, fullURL, payload, start, err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logFailure(method, endpoint, fullURL, payload, start, err)
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logFailure(method, endpoint, fullURL, payload, start, err)
		return err
	}

	duration := durationMs(start)
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	c.record(history.Item{
		Method:       method,
		Endpoint:     endpoint,
		URL:          fullURL,
		Status:       resp.StatusCode,
		Success:      ok,
		DurationMs:   duration,
		RequestBody:  payload,
		ResponseBody: raw,
		Error:        responseError(ok, resp.StatusCode, raw),
	})

	// APIError is raised after logging; catch sites must not log it again.
	if !ok {
		return &APIError{Status: resp.StatusCode, Body: string(raw)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
	}
	return nil
}

// logFailure records a call that never produced a server response: injected
// failures, transport errors, cancelled contexts. No status is recorded.
func (c *Client) logFailure(method, endpoint, fullURL string, payload []byte, start time.Time, err error) {
	c.log.Debug().Err(err).Str("method", method).Str("endpoint", endpoint).Msg("request failed before response")
	c.record(history.Item{
		Method:      method,
		Endpoint:    endpoint,
		URL:         fullURL,
		Success:     false,
		DurationMs:  durationMs(start),
		RequestBody: payload,
		Error:       err.Error(),
	})
}

func (c *Client) record(item history.Item) {
	if c.recorder != nil {
		c.recorder.Add(item)
	}
}

// responseError derives the history error message for a server response:
// the body's error field when present, otherwise "HTTP <status>".
func responseError(ok bool, status int, raw []byte) string {
	if ok {
		return ""
	}
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return fmt.Sprintf("HTTP %d", status)
}

func durationMs(start time.Time) int64 {
	return int64(time.Since(start).Round(time.Millisecond) / time.Millisecond)
}

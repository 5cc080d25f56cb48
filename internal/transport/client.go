package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/events"
	"github.com/rehber360/rehber360-desktop/internal/logging"
)

// Toaster surfaces short user-facing messages. *events.EventBus implements it.
type Toaster interface {
	PublishToast(variant, title, description string)
}

// Client is the renderer-facing API client: verb helpers over a Transport,
// with toast surfacing of failures and optional success messages.
type Client struct {
	transport Transport
	toaster   Toaster
	logger    *logging.Logger

	// bridgeWarned ensures the "no bridge" toast is shown once, not per request.
	bridgeWarned atomic.Bool
}

// NewClient creates a client. toaster may be nil.
func NewClient(t Transport, toaster Toaster, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Client{transport: t, toaster: toaster, logger: logger}
}

// Transport returns the underlying transport.
func (c *Client) Transport() Transport {
	return c.transport
}

type callOptions struct {
	successMessage string
	errorMessage   string
	showErrorToast bool
	timeout        time.Duration
	headers        map[string]string
}

// Option customizes a single call.
type Option func(*callOptions)

// WithSuccessMessage shows a success toast when the call succeeds.
func WithSuccessMessage(msg string) Option {
	return func(o *callOptions) { o.successMessage = msg }
}

// WithErrorMessage replaces the error toast text.
func WithErrorMessage(msg string) Option {
	return func(o *callOptions) { o.errorMessage = msg }
}

// WithoutErrorToast suppresses the error toast for this call.
func WithoutErrorToast() Option {
	return func(o *callOptions) { o.showErrorToast = false }
}

// WithTimeout overrides the default 30s timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *callOptions) { o.timeout = d }
}

// WithHeaders adds request headers (HTTP transport only).
func WithHeaders(h map[string]string) Option {
	return func(o *callOptions) { o.headers = h }
}

// Get performs a GET and unwraps a {"data": ...} envelope when present.
func (c *Client) Get(ctx context.Context, endpoint string, opts ...Option) (json.RawMessage, error) {
	raw, err := c.Do(ctx, "GET", endpoint, nil, opts...)
	if err != nil {
		return nil, err
	}
	return unwrapData(raw), nil
}

// Post performs a POST.
func (c *Client) Post(ctx context.Context, endpoint string, body any, opts ...Option) (json.RawMessage, error) {
	return c.Do(ctx, "POST", endpoint, body, opts...)
}

// Put performs a PUT.
func (c *Client) Put(ctx context.Context, endpoint string, body any, opts ...Option) (json.RawMessage, error) {
	return c.Do(ctx, "PUT", endpoint, body, opts...)
}

// Patch performs a PATCH.
func (c *Client) Patch(ctx context.Context, endpoint string, body any, opts ...Option) (json.RawMessage, error) {
	return c.Do(ctx, "PATCH", endpoint, body, opts...)
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, endpoint string, opts ...Option) (json.RawMessage, error) {
	return c.Do(ctx, "DELETE", endpoint, nil, opts...)
}

// Do performs a request with the given method.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any, opts ...Option) (json.RawMessage, error) {
	o := callOptions{showErrorToast: true}
	for _, opt := range opts {
		opt(&o)
	}

	raw, err := c.transport.Request(ctx, endpoint, RequestConfig{
		Method:  method,
		Body:    body,
		Headers: o.headers,
		Timeout: o.timeout,
	})
	if err != nil {
		te := NormalizeError(EndpointToCommand(endpoint, method), err)
		c.surfaceError(te, o)
		return nil, te
	}

	if o.successMessage != "" {
		c.toast(events.ToastSuccess, o.successMessage, "")
	}
	return raw, nil
}

func (c *Client) surfaceError(err *Error, o callOptions) {
	if err.Code == CodeBridgeUnavailable {
		// Fallback path: one toast, afterwards only debug logs.
		if c.bridgeWarned.Swap(true) {
			c.logger.Debugf("Bridge unavailable for %s", err.Command)
			return
		}
		c.logger.Warnf("Native bridge unavailable, backend calls will fail until it is reachable")
	}

	if !o.showErrorToast {
		return
	}
	title := "Hata"
	description := UserMessage(err)
	if o.errorMessage != "" {
		description = o.errorMessage
	}
	c.toast(events.ToastDestructive, title, description)
}

func (c *Client) toast(variant, title, description string) {
	if c.toaster == nil {
		return
	}
	c.toaster.PublishToast(variant, title, description)
}

// unwrapData returns raw["data"] when raw is an object with a data key.
func unwrapData(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return raw
	}
	if data, ok := envelope["data"]; ok {
		return data
	}
	return raw
}

// Decode unmarshals a call result into T.
func Decode[T any](raw json.RawMessage, err error) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}

// SafeCall runs fn and returns fallback instead of an error. Used by views
// that should degrade to empty data rather than fail.
func SafeCall[T any](ctx context.Context, logger *logging.Logger, fn func(context.Context) (T, error), fallback T) T {
	result, err := fn(ctx)
	if err != nil {
		if logger != nil {
			logger.Warnf("API call failed, using fallback: %v", err)
		}
		return fallback
	}
	return result
}

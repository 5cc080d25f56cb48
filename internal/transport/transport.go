// Package transport lets the renderer call backend operations uniformly,
// either as native command invocations over the local bridge or as HTTP requests.
package transport

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/constants"
	"github.com/rehber360/rehber360-desktop/internal/logging"
)

// RequestConfig describes one logical API call.
type RequestConfig struct {
	Method  string
	Body    any
	Headers map[string]string
	Timeout time.Duration
}

// Transport performs a logical API call and returns the raw JSON result.
// Errors are always *Error.
type Transport interface {
	Request(ctx context.Context, endpoint string, cfg RequestConfig) (json.RawMessage, error)
	Name() string
}

// Invoker invokes a native command by name. Implemented by the IPC client
// and by the command router.
type Invoker interface {
	Invoke(ctx context.Context, command string, args map[string]any) (json.RawMessage, error)
}

// InvokerFunc adapts a function to Invoker.
type InvokerFunc func(ctx context.Context, command string, args map[string]any) (json.RawMessage, error)

// Invoke calls f.
func (f InvokerFunc) Invoke(ctx context.Context, command string, args map[string]any) (json.RawMessage, error) {
	return f(ctx, command, args)
}

// NativeTransport maps endpoints to commands and invokes them over the native bridge.
type NativeTransport struct {
	invoker Invoker
	mapper  *Mapper
	logger  *logging.Logger
}

// NewNativeTransport creates a native transport using the built-in route table.
func NewNativeTransport(invoker Invoker, logger *logging.Logger) *NativeTransport {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &NativeTransport{invoker: invoker, mapper: defaultMapper, logger: logger}
}

// Name returns "native".
func (t *NativeTransport) Name() string { return "native" }

// Request maps endpoint to a command, builds its arguments, and invokes it.
func (t *NativeTransport) Request(ctx context.Context, endpoint string, cfg RequestConfig) (json.RawMessage, error) {
	command, known := t.mapper.Resolve(endpoint, cfg.Method)
	if command == "" {
		return nil, &Error{
			Name:       ErrorName,
			Code:       CodeInvalidRequest,
			Message:    "empty endpoint",
			StatusCode: 400,
		}
	}
	if !known {
		t.logger.Debugf("No route for %s %s, using generated command %s", cfg.Method, endpoint, command)
	}

	args := t.mapper.Args(endpoint, cfg.Body)

	ctx, cancel := withTimeout(ctx, cfg.Timeout)
	defer cancel()

	result, err := t.invoker.Invoke(ctx, command, args)
	if err != nil {
		te := NormalizeError(command, err)
		t.logger.Warn().Str("command", command).Str("code", te.Code).Msg(te.Message)
		return nil, te
	}
	return result, nil
}

// unavailableTransport is used when neither a native bridge nor an HTTP backend is configured.
type unavailableTransport struct{}

// NewUnavailable returns a transport whose requests always fail with BRIDGE_UNAVAILABLE.
func NewUnavailable() Transport { return unavailableTransport{} }

func (unavailableTransport) Name() string { return "unavailable" }

func (unavailableTransport) Request(_ context.Context, endpoint string, cfg RequestConfig) (json.RawMessage, error) {
	return nil, NormalizeError(EndpointToCommand(endpoint, cfg.Method), ErrBridgeUnavailable)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// Pinger is implemented by invokers that can cheaply check reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Select picks the transport for a configured mode: "native", "http", or
// "auto" (native when the bridge answers a ping, else http). A nil native
// invoker or empty HTTP transport yields the unavailable transport.
func Select(ctx context.Context, mode string, native Invoker, httpT *HTTPTransport, logger *logging.Logger) Transport {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	switch strings.ToLower(mode) {
	case "http":
		if httpT != nil {
			return httpT
		}
	case "auto":
		if native != nil {
			if p, ok := native.(Pinger); !ok || p.Ping(ctx) == nil {
				return NewNativeTransport(native, logger)
			}
			logger.Infof("Native bridge did not answer, falling back to HTTP transport")
		}
		if httpT != nil {
			return httpT
		}
	default:
		if native != nil {
			return NewNativeTransport(native, logger)
		}
	}

	logger.Warnf("No transport available for mode %q", mode)
	return NewUnavailable()
}

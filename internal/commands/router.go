// Package commands routes native command invocations. Shell-local commands
// run in-process; everything else is forwarded to the backend.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rehber360/rehber360-desktop/internal/logging"
	"github.com/rehber360/rehber360-desktop/internal/transport"
)

// HandlerFunc runs a shell-local command. The result is JSON-encoded.
type HandlerFunc func(ctx context.Context, args Args) (any, error)

// Error is a command failure carrying a backend-style error kind.
type Error struct {
	Kind    string
	Message string
}

func (e *Error) Error() string     { return e.Message }
func (e *Error) ErrorKind() string { return e.Kind }

// Validationf returns a Validation-kind error.
func Validationf(format string, args ...any) error {
	return &Error{Kind: transport.KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Router dispatches commands to local handlers or the backend invoker.
// It implements transport.Invoker.
type Router struct {
	mu      sync.RWMutex
	local   map[string]HandlerFunc
	backend transport.Invoker
	logger  *logging.Logger
}

// NewRouter creates a router. backend may be nil until the backend is reachable.
func NewRouter(backend transport.Invoker, logger *logging.Logger) *Router {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Router{
		local:   make(map[string]HandlerFunc),
		backend: backend,
		logger:  logger,
	}
}

// Register adds a shell-local command, replacing any previous handler.
func (r *Router) Register(name string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.local[name] = fn
}

// SetBackend replaces the backend invoker.
func (r *Router) SetBackend(backend transport.Invoker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend = backend
}

// HasBackend reports whether a backend invoker is configured.
func (r *Router) HasBackend() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.backend != nil
}

// IsLocal reports whether name is handled in-process.
func (r *Router) IsLocal(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.local[name]
	return ok
}

// LocalCommands returns the registered local command names, sorted.
func (r *Router) LocalCommands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.local))
	for name := range r.local {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs command locally when registered, otherwise forwards it.
func (r *Router) Invoke(ctx context.Context, command string, args map[string]any) (json.RawMessage, error) {
	r.mu.RLock()
	fn, local := r.local[command]
	backend := r.backend
	r.mu.RUnlock()

	if local {
		result, err := fn(ctx, Args(args))
		if err != nil {
			r.logger.Debug().Err(err).Str("command", command).Msg("Local command failed")
			return nil, err
		}
		data, err := json.Marshal(result)
		if err != nil {
			return nil, &Error{Kind: transport.KindSerialization, Message: err.Error()}
		}
		return data, nil
	}

	if backend == nil {
		return nil, fmt.Errorf("%s: %w", command, transport.ErrBridgeUnavailable)
	}
	return backend.Invoke(ctx, command, args)
}

// Ping checks that the backend answers. Backends that cannot be pinged are
// assumed reachable.
func (r *Router) Ping(ctx context.Context) error {
	r.mu.RLock()
	backend := r.backend
	r.mu.RUnlock()

	if backend == nil {
		return transport.ErrBridgeUnavailable
	}
	if p, ok := backend.(transport.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Args are the named arguments of a command invocation.
type Args map[string]any

// String returns args[key] as a string, or "" when absent or not a string.
func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// RequireString returns a non-empty string argument or a Validation error.
func (a Args) RequireString(key string) (string, error) {
	s := a.String(key)
	if s == "" {
		return "", Validationf("%s is required", key)
	}
	return s, nil
}

// Bool returns args[key] as a bool.
func (a Args) Bool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// Decode unmarshals args[key] (or all args when key is empty) into v.
func (a Args) Decode(key string, v any) error {
	var src any = map[string]any(a)
	if key != "" {
		val, ok := a[key]
		if !ok {
			return Validationf("%s is required", key)
		}
		src = val
	}
	data, err := json.Marshal(src)
	if err != nil {
		return &Error{Kind: transport.KindSerialization, Message: err.Error()}
	}
	if err := json.Unmarshal(data, v); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return &Error{Kind: transport.KindSerialization, Message: err.Error()}
		}
		return Validationf("invalid %s: %v", keyOrArgs(key), err)
	}
	return nil
}

func keyOrArgs(key string) string {
	if key == "" {
		return "arguments"
	}
	return key
}

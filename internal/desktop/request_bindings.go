package desktop

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rehber360/rehber360-desktop/internal/transport"
	"github.com/rehber360/rehber360-desktop/internal/version"
)

// AppInfoDTO contains application version and transport information.
type AppInfoDTO struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Platform  string `json:"platform"`
	Transport string `json:"transport"`
	DevMode   bool   `json:"devMode"`
}

// GetAppInfo returns version, platform and the active transport.
func (a *App) GetAppInfo() AppInfoDTO {
	info := AppInfoDTO{
		Name:     "Rehber360",
		Version:  version.Version,
		Platform: version.Platform(),
	}
	if a.engine != nil {
		info.Transport = a.engine.Transport().Name()
		info.DevMode = a.engine.Config().DevMode
	}
	return info
}

// RequestResultDTO is the outcome of one API call. Exactly one of Data and
// Error is set.
type RequestResultDTO struct {
	Data  json.RawMessage  `json:"data,omitempty"`
	Error *transport.Error `json:"error,omitempty"`
}

// Request performs a logical API call ("GET", "/api/students") through the
// selected transport. Failures are returned in the result rather than as a
// rejected promise, so the renderer can branch on Error.Kind.
func (a *App) Request(endpoint, method string, body any) RequestResultDTO {
	if a.engine == nil {
		return RequestResultDTO{Error: transport.NormalizeError("", ErrNoEngine)}
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = "GET"
	}
	data, err := a.engine.Client().Do(a.bindingContext(), method, endpoint, body)
	if err != nil {
		var terr *transport.Error
		if !errors.As(err, &terr) {
			terr = transport.NormalizeError(transport.EndpointToCommand(endpoint, method), err)
		}
		return RequestResultDTO{Error: terr}
	}
	return RequestResultDTO{Data: data}
}

// Invoke calls a native command directly by name.
func (a *App) Invoke(command string, args map[string]any) (json.RawMessage, error) {
	if a.engine == nil {
		return nil, ErrNoEngine
	}
	return a.engine.Router().Invoke(a.bindingContext(), command, args)
}

// bindingContext returns the Wails context, or Background before startup.
func (a *App) bindingContext() context.Context {
	if a.ctx != nil {
		return a.ctx
	}
	return context.Background()
}

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"strings"

	"github.com/rehber360/rehber360-desktop/internal/logging"
)

// maxErrorBody bounds how much of an error response is read for its message.
const maxErrorBody = 64 * 1024

// HTTPTransport sends requests to a REST backend (the backend's own HTTP
// server or the development bridge).
type HTTPTransport struct {
	baseURL string
	client  *nethttp.Client
	logger  *logging.Logger
}

// NewHTTPTransport creates an HTTP transport. client is typically
// retryablehttp.Client.StandardClient().
func NewHTTPTransport(baseURL string, client *nethttp.Client, logger *logging.Logger) *HTTPTransport {
	if client == nil {
		client = nethttp.DefaultClient
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &HTTPTransport{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

// Name returns "http".
func (t *HTTPTransport) Name() string { return "http" }

// Request issues METHOD baseURL+endpoint with a JSON body.
func (t *HTTPTransport) Request(ctx context.Context, endpoint string, cfg RequestConfig) (json.RawMessage, error) {
	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = nethttp.MethodGet
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	url := t.baseURL + endpoint

	var body io.Reader
	if cfg.Body != nil {
		data, err := encodeBody(cfg.Body)
		if err != nil {
			return nil, &Error{Name: ErrorName, Code: CodeInvalidRequest, Message: err.Error(), StatusCode: 400, Err: err}
		}
		body = bytes.NewReader(data)
	}

	ctx, cancel := withTimeout(ctx, cfg.Timeout)
	defer cancel()

	req, err := nethttp.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, &Error{Name: ErrorName, Code: CodeInvalidRequest, Message: err.Error(), StatusCode: 400, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		te := t.networkError(endpoint, err)
		t.logger.Warn().Str("endpoint", endpoint).Str("code", te.Code).Msg(te.Message)
		return nil, te
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		te := &Error{
			Name:       "HTTPError",
			Code:       CodeHTTP,
			Message:    errorMessage(data, resp.Status),
			StatusCode: resp.StatusCode,
		}
		t.logger.Warn().Str("endpoint", endpoint).Int("status", resp.StatusCode).Msg(te.Message)
		return nil, te
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, t.networkError(endpoint, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(data), nil
}

func (t *HTTPTransport) networkError(endpoint string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Name: "HTTPError", Code: CodeTimeout, Message: "request timed out", StatusCode: 408, Err: err}
	}
	return &Error{
		Name:       "HTTPError",
		Code:       CodeNetwork,
		Message:    fmt.Sprintf("request to %s failed: %v", endpoint, err),
		StatusCode: 0,
		Err:        err,
	}
}

func encodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case json.RawMessage:
		return v, nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(body)
	}
}

// errorMessage extracts "error" or "message" from a JSON error body.
func errorMessage(data []byte, fallback string) string {
	var payload struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if s, ok := payload.Error.(string); ok && s != "" {
			return s
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if s := strings.TrimSpace(string(data)); s != "" && len(s) < 200 && !strings.HasPrefix(s, "<") {
		return s
	}
	return fallback
}

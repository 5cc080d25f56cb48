package http

import (
	"context"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/config"
)

func TestProxyFuncWithBypass_EmptyNoProxy(t *testing.T) {
	proxyURL, _ := url.Parse("http://proxy.okul.local:8080")
	proxyFunc := proxyFuncWithBypass(proxyURL, "", nil)

	req, _ := nethttp.NewRequest("GET", "https://api.example.com/data", nil)
	result, err := proxyFunc(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || result.Host != "proxy.okul.local:8080" {
		t.Fatalf("expected proxy host proxy.okul.local:8080, got %v", result)
	}
}

func TestProxyFuncWithBypass_Domain(t *testing.T) {
	proxyURL, _ := url.Parse("http://proxy.okul.local:8080")
	client, err := ConfigureHTTPClient(config.ProxyConfig{
		Mode:    config.ProxyBasic,
		Host:    "proxy.okul.local",
		NoProxy: "example.com",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr := client.Transport.(*nethttp.Transport)

	req, _ := nethttp.NewRequest("GET", "https://api.example.com/data", nil)
	result, err := tr.Proxy(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Errorf("expected bypass for api.example.com, got %v", result)
	}

	req2, _ := nethttp.NewRequest("GET", "https://rehber360.com/docs", nil)
	result2, err := tr.Proxy(req2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result2 == nil || result2.Host != proxyURL.Host {
		t.Errorf("expected proxy for rehber360.com, got %v", result2)
	}
}

func TestConfigureHTTPClient_Modes(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ProxyConfig
		wantErr bool
	}{
		{"none", config.ProxyConfig{Mode: config.ProxyNone}, false},
		{"system", config.ProxyConfig{Mode: config.ProxySystem}, false},
		{"basic without host falls back", config.ProxyConfig{Mode: config.ProxyBasic}, false},
		{"ntlm", config.ProxyConfig{Mode: config.ProxyNTLM, Host: "proxy", User: "u", Password: "p"}, false},
		{"unknown", config.ProxyConfig{Mode: "socks5"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := ConfigureHTTPClient(tt.cfg, nil)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil || client == nil {
				t.Fatalf("expected client, got err %v", err)
			}
		})
	}
}

func TestBuildProxyURL(t *testing.T) {
	u := buildProxyURL(config.ProxyConfig{Host: "proxy", User: "ali", Password: "gizli"})
	if u.Host != "proxy:8080" {
		t.Errorf("expected default port 8080, got %s", u.Host)
	}
	if u.User == nil || u.User.Username() != "ali" {
		t.Errorf("expected credentials embedded, got %v", u.User)
	}

	u2 := buildProxyURL(config.ProxyConfig{Host: "proxy", Port: 3128, User: "ali"})
	if u2.User != nil {
		t.Error("credentials must not be embedded without a password")
	}
}

func TestNeedsProxyPassword(t *testing.T) {
	if !NeedsProxyPassword(config.ProxyConfig{Mode: "NTLM", User: "u"}) {
		t.Error("expected password needed for ntlm with user and no password")
	}
	if NeedsProxyPassword(config.ProxyConfig{Mode: config.ProxySystem, User: "u"}) {
		t.Error("system mode never needs a password")
	}
	if NeedsProxyPassword(config.ProxyConfig{Mode: config.ProxyBasic, User: "u", Password: "p"}) {
		t.Error("password already provided")
	}
}

func TestNewRetryClient_PassesThroughErrorResponses(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusNotFound)
		io.WriteString(w, `{"error":"yok"}`)
	}))
	defer server.Close()

	rc, err := NewRetryClient(config.ProxyConfig{}, nil)
	if err != nil {
		t.Fatalf("NewRetryClient failed: %v", err)
	}
	resp, err := rc.StandardClient().Get(server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != nethttp.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorType
	}{
		{nil, ErrorTypeSuccess},
		{errors.New("read tcp: i/o timeout"), ErrorTypeNetwork},
		{errors.New("connection refused"), ErrorTypeNetwork},
		{errors.New("StatusCode: 503, ServerBusy"), ErrorTypeRetryable},
		{errors.New("AccessDenied: 403"), ErrorTypeFatal},
		{errors.New("no such bucket"), ErrorTypeFatal},
		{context.Canceled, ErrorTypeFatal},
	}
	for _, tt := range tests {
		if got := ClassifyError(tt.err); got != tt.want {
			t.Errorf("ClassifyError(%v): expected %s, got %s", tt.err, ErrorTypeName(tt.want), ErrorTypeName(got))
		}
	}
}

func TestExecuteWithRetry(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	attempts := 0
	err := ExecuteWithRetry(context.Background(), cfg, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("connection reset by peer")
		}
		return nil
	})
	if err != nil || attempts != 3 {
		t.Errorf("expected success on third attempt, got err=%v attempts=%d", err, attempts)
	}

	attempts = 0
	err = ExecuteWithRetry(context.Background(), cfg, func() error {
		attempts++
		return errors.New("invalid bucket name")
	})
	if err == nil || attempts != 1 {
		t.Errorf("fatal errors must not be retried, got err=%v attempts=%d", err, attempts)
	}

	attempts = 0
	err = ExecuteWithRetry(context.Background(), cfg, func() error {
		attempts++
		return errors.New("502 bad gateway")
	})
	if err == nil || attempts != 3 {
		t.Errorf("expected 3 attempts then failure, got err=%v attempts=%d", err, attempts)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := ExecuteWithRetry(ctx, cfg, func() error { return nil }); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

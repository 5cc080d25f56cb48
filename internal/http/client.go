// Package http builds the outbound HTTP clients used by the HTTP transport and the update checker.
package http

import (
	"fmt"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/rehber360/rehber360-desktop/internal/config"
	"github.com/rehber360/rehber360-desktop/internal/constants"
	"github.com/rehber360/rehber360-desktop/internal/logging"
)

// NewRetryClient returns a retrying client on top of the proxy-aware base client.
// Callers that need a plain *http.Client use StandardClient().
func NewRetryClient(proxy config.ProxyConfig, logger *logging.Logger) (*retryablehttp.Client, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	base, err := ConfigureHTTPClient(proxy, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = base
	retryClient.RetryMax = constants.RetryMax
	retryClient.RetryWaitMin = constants.RetryWaitMin
	retryClient.RetryWaitMax = constants.RetryWaitMax
	retryClient.Logger = logging.RetryLogger(logger)
	// Hand the final response back instead of a generic "giving up" error
	// so 4xx/5xx bodies reach error normalization.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return retryClient, nil
}

// Package clients wraps the HTTP collaborators of the order orchestrator:
// cart, product, profile and delivery services. Every call carries a
// connect timeout (dialer) and a per-request deadline; GET calls retry
// with backoff, mutations never do.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/localmart/order-service/pkg/httpx"
)

// ErrNotFound reports that the remote answered 404.
var ErrNotFound = errors.New("remote resource not found")

// NewHTTPClient builds the shared transport with an explicit connect
// timeout. Read deadlines come from the per-call context.
func NewHTTPClient(connectTimeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: connectTimeout,
			}).DialContext,
		},
	}
}

var defaultRetry = httpx.RetryConfig{
	MaxAttempts:  3,
	InitialDelay: 100 * time.Millisecond,
	Multiplier:   2,
}

type apiClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

func newAPIClient(baseURL string, httpClient *http.Client, timeout time.Duration) apiClient {
	return apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		timeout: timeout,
	}
}

func (c apiClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}

// get retries idempotent reads; a 404 is permanent and surfaces at once.
func (c apiClient) get(ctx context.Context, path string, query url.Values, out any) error {
	return httpx.Retry(defaultRetry, func() error {
		return c.do(ctx, http.MethodGet, path, query, nil, out)
	}, ErrNotFound, context.Canceled)
}

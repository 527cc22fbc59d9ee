// Package statsapi is the HTTP client the MCP bridge uses to reach the
// stats API server. Each call is exactly one health probe plus one POST; no
// retries, no caching. Retry policy belongs to the tool-calling client.
package statsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"statbridge/internal/config"
)

// Client wraps a resty client bound to the stats API base URL.
type Client struct {
	baseURL    string
	httpClient *resty.Client
}

// NewClient builds the client with the configured request and dial timeouts.
func NewClient(cfg *config.BridgeConfig) *Client {
	baseURL := strings.TrimRight(cfg.StatsAPIURL, "/")
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", config.BridgeServiceName+"/"+config.ServiceVersion).
		SetTimeout(cfg.RequestTimeout()).
		SetTransport(&http.Transport{
			DialContext: (&net.Dialer{Timeout: cfg.ConnectTimeout()}).DialContext,
		})
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// BaseURL returns the configured stats API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health probes GET /health and returns the decoded body.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var body map[string]any
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/health")
	if err != nil {
		return nil, fmt.Errorf("stats API is unreachable at %s: %w", c.baseURL, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("stats API health check failed (%d): %s", resp.StatusCode(), resp.String())
	}
	return body, nil
}

// Call health-gates, POSTs the payload to path and returns the decoded
// envelope. An error status with a well-formed failure envelope is not a Go
// error: the envelope's success flag and error message speak for themselves.
func (c *Client) Call(ctx context.Context, path string, payload any) (map[string]any, error) {
	if _, err := c.Health(ctx); err != nil {
		return nil, fmt.Errorf("stats API server is not running at %s: %w", c.baseURL, err)
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("stats API request to %s failed: %w", path, err)
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		if resp.IsError() {
			return map[string]any{
				"success": false,
				"error":   fmt.Sprintf("API error: %s", resp.String()),
			}, nil
		}
		return nil, fmt.Errorf("stats API returned a non-JSON response from %s: %w", path, err)
	}
	return body, nil
}

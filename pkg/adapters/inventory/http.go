package inventory

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"resty.dev/v3"
)

// DefaultTimeout bounds each request made by an HTTP inventory.
const DefaultTimeout = 5 * time.Second

// HTTP queries a remote inventory service:
//
//	GET {base}/assets/{type}/availability   -> {"available": bool}
//	GET {base}/assets/{type}/configurations -> {"configurations": [...]}
//
// A 404 maps to ErrUnknownAssetType.
type HTTP struct {
	client *resty.Client
}

type availabilityResponse struct {
	Available bool `json:"available"`
}

type configurationsResponse struct {
	Configurations []string `json:"configurations"`
}

// HTTPOption configures an HTTP inventory.
type HTTPOption func(*resty.Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *resty.Client) {
		c.SetTimeout(d)
	}
}

// WithHeader adds a header to every request, e.g. an API key.
func WithHeader(key, value string) HTTPOption {
	return func(c *resty.Client) {
		c.SetHeader(key, value)
	}
}

// NewHTTP creates an inventory client for baseURL.
func NewHTTP(baseURL string, opts ...HTTPOption) *HTTP {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "assetbot-inventory/1.0").
		SetTimeout(DefaultTimeout)
	for _, opt := range opts {
		opt(client)
	}
	return &HTTP{client: client}
}

func (h *HTTP) CheckAvailability(ctx context.Context, assetType string) (bool, error) {
	var out availabilityResponse
	if err := h.get(ctx, "/assets/{type}/availability", assetType, &out); err != nil {
		return false, err
	}
	return out.Available, nil
}

func (h *HTTP) GetConfigurations(ctx context.Context, assetType string) ([]string, error) {
	var out configurationsResponse
	if err := h.get(ctx, "/assets/{type}/configurations", assetType, &out); err != nil {
		return nil, err
	}
	return out.Configurations, nil
}

func (h *HTTP) get(ctx context.Context, path, assetType string, result any) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("type", normalize(assetType)).
		SetResult(result).
		Get(path)
	if err != nil {
		return fmt.Errorf("inventory request failed: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return ErrUnknownAssetType
	}
	if resp.IsError() {
		return fmt.Errorf("inventory error (%d): %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// Close releases idle connections.
func (h *HTTP) Close() error {
	return h.client.Close()
}

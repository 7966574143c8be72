// Package wc is a minimal WooCommerce REST API client covering the two
// create operations the upload stage replays.
package wc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/config"
)

// Result is the outcome of a create call. Success means HTTP 201.
type Result struct {
	ID         int64
	StatusCode int
}

// Created reports whether the remote resource was created.
func (r *Result) Created() bool {
	return r.StatusCode == http.StatusCreated
}

// Client talks to the WooCommerce products API.
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	apiVersion     string
	client         *http.Client
	logger         *slog.Logger
}

// New creates a new catalog client.
func New(cfg *config.CatalogConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:        cfg.BaseURL,
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
		apiVersion:     cfg.APIVersion,
		client:         &http.Client{Timeout: cfg.RequestTimeout},
		logger:         logger.With("component", "wc_client"),
	}
}

// CreateProduct creates a simple or variable product.
func (c *Client) CreateProduct(ctx context.Context, payload map[string]any) (*Result, error) {
	return c.post(ctx, "products", payload)
}

// CreateVariation creates a variation under an existing product.
func (c *Client) CreateVariation(ctx context.Context, productID int64, payload map[string]any) (*Result, error) {
	endpoint := "products/" + strconv.FormatInt(productID, 10) + "/variations"
	return c.post(ctx, endpoint, payload)
}

// createResponse is the subset of the API response we consume.
type createResponse struct {
	ID int64 `json:"id"`
}

func (c *Client) post(ctx context.Context, endpoint string, payload map[string]any) (*Result, error) {
	target, err := url.JoinPath(c.baseURL, "wp-json", c.apiVersion, endpoint)
	if err != nil {
		return nil, fmt.Errorf("build API URL: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	// WooCommerce accepts consumer credentials as query parameters over
	// HTTPS and rejects them otherwise.
	q := req.URL.Query()
	q.Set("consumer_key", c.consumerKey)
	q.Set("consumer_secret", c.consumerSecret)
	req.URL.RawQuery = q.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	result := &Result{StatusCode: resp.StatusCode}

	var created createResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&created); err == nil {
		result.ID = created.ID
	}

	c.logger.Debug("catalog call complete",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"remote_id", result.ID,
	)
	return result, nil
}

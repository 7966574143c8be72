package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"syscall"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/config"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/types"
)

// Page is a fetched HTML document.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Client fetches pages and raw files over HTTP.
type Client struct {
	client    *http.Client
	userAgent string
	maxBody   int64
	logger    *slog.Logger
}

// New creates a new HTTP fetch client.
func New(cfg *config.FetcherConfig, logger *slog.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 50,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true, // We handle decompression ourselves (including brotli)
	}

	client := &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   cfg.RequestTimeout,
	}

	return &Client{
		client:    client,
		userAgent: cfg.UserAgent,
		maxBody:   cfg.MaxBodySize,
		logger:    logger.With("component", "fetcher"),
	}, nil
}

// Fetch executes a GET request and returns the decoded page.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err, Retryable: false}
	}

	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")
	httpReq.Header.Set("Connection", "keep-alive")

	start := time.Now()
	httpResp, err := c.client.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		return nil, &types.FetchError{
			URL:       rawURL,
			Err:       err,
			Retryable: isRetryableError(err),
		}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, &types.FetchError{
			URL:        rawURL,
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("HTTP %d: %s", httpResp.StatusCode, string(body)),
			Retryable:  httpResp.StatusCode >= 500 || httpResp.StatusCode == 429,
		}
	}

	var reader io.Reader = httpResp.Body
	if c.maxBody > 0 {
		reader = io.LimitReader(reader, c.maxBody)
	}

	reader, err = decompressReader(httpResp, reader)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err, Retryable: false}
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err, Retryable: true}
	}

	c.logger.Debug("fetch complete",
		"url", rawURL,
		"status", httpResp.StatusCode,
		"size", len(body),
		"duration", duration,
	)

	return &Page{
		URL:        rawURL,
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Duration:   duration,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// decompressReader wraps a reader with the appropriate decompressor.
// Handles gzip, deflate, and brotli (br) encodings.
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}

// isRetryableError checks if a network error warrants a retry.
// Covers timeouts, connection resets, unexpected EOF, and connection refused.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	// Context cancellation is NOT retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	if netErr, ok := err.(net.Error); ok {
		if netErr.Timeout() {
			return true
		}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNRESET) ||
			errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return true
		}
	}
	return false
}

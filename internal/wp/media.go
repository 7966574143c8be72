// Package wp is a minimal WordPress media API client used to host
// product images.
package wp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/config"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/types"
)

// Client uploads files to the WordPress media endpoint with basic
// credential auth.
type Client struct {
	baseURL  string
	username string
	password string
	client   *http.Client
	logger   *slog.Logger
}

// New creates a new media client.
func New(cfg *config.MediaConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		password: cfg.Password,
		client:   &http.Client{Timeout: cfg.RequestTimeout},
		logger:   logger.With("component", "wp_media"),
	}
}

// mediaResponse is the subset of the media API response we consume.
type mediaResponse struct {
	SourceURL string `json:"source_url"`
}

// Upload pushes one local file and returns its hosted URL.
func (c *Client) Upload(ctx context.Context, imagePath string) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", imagePath, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read %s: %w", imagePath, err)
	}
	mw.WriteField("caption", "Uploaded using API")
	mw.WriteField("description", "Uploaded using API")
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	endpoint, err := url.JoinPath(c.baseURL, "media")
	if err != nil {
		return "", fmt.Errorf("build media URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filepath.Base(imagePath)))

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", &types.FetchError{URL: endpoint, Err: err, Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &types.FetchError{
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("media upload rejected: %s", string(msg)),
			Retryable:  resp.StatusCode >= 500,
		}
	}

	var media mediaResponse
	if err := json.NewDecoder(resp.Body).Decode(&media); err != nil {
		return "", fmt.Errorf("decode media response: %w", err)
	}
	if media.SourceURL == "" {
		return "", fmt.Errorf("media response missing source_url")
	}

	c.logger.Debug("image uploaded",
		"file", filepath.Base(imagePath),
		"url", media.SourceURL,
		"duration", time.Since(start),
	)
	return media.SourceURL, nil
}

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values. Stage-specific
// requirements (e.g. catalog credentials) are checked by ValidateStage so
// that a crawl-only run does not demand upload credentials.
func Validate(cfg *Config) error {
	if cfg.Crawl.Concurrency < 1 {
		return fmt.Errorf("crawl.concurrency must be >= 1, got %d", cfg.Crawl.Concurrency)
	}
	if cfg.Crawl.ProgressEvery < 1 {
		return fmt.Errorf("crawl.progress_every must be >= 1, got %d", cfg.Crawl.ProgressEvery)
	}
	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Images.DownloadConcurrency < 1 {
		return fmt.Errorf("images.download_concurrency must be >= 1, got %d", cfg.Images.DownloadConcurrency)
	}
	if cfg.Images.UploadConcurrency < 1 {
		return fmt.Errorf("images.upload_concurrency must be >= 1, got %d", cfg.Images.UploadConcurrency)
	}
	if cfg.Media.RetryAttempts < 1 {
		return fmt.Errorf("media.retry_attempts must be >= 1, got %d", cfg.Media.RetryAttempts)
	}
	if cfg.Media.RetryDelay < 0 {
		return fmt.Errorf("media.retry_delay must be >= 0")
	}
	if cfg.Catalog.Concurrency < 1 {
		return fmt.Errorf("catalog.concurrency must be >= 1, got %d", cfg.Catalog.Concurrency)
	}
	if cfg.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir must not be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateCrawl checks the settings the crawl and scrape stages require.
func ValidateCrawl(cfg *Config) error {
	if err := ValidateURL(cfg.Crawl.SeedURL); err != nil {
		return fmt.Errorf("crawl.seed_url: %w", err)
	}
	if cfg.Crawl.CategoryPrefix == "" {
		return fmt.Errorf("crawl.category_prefix must not be empty")
	}
	if !strings.HasPrefix(cfg.Crawl.CategoryPrefix, "http") && !strings.HasPrefix(cfg.Crawl.CategoryPrefix, "/") {
		return fmt.Errorf("crawl.category_prefix must be an absolute URL or path, got %q", cfg.Crawl.CategoryPrefix)
	}
	return nil
}

// ValidateMedia checks the settings the image upload stage requires.
func ValidateMedia(cfg *Config) error {
	if err := ValidateURL(cfg.Media.BaseURL); err != nil {
		return fmt.Errorf("media.base_url: %w", err)
	}
	if cfg.Media.Username == "" || cfg.Media.Password == "" {
		return fmt.Errorf("media.username and media.password are both required")
	}
	return nil
}

// ValidateCatalog checks the settings the product upload stage requires.
func ValidateCatalog(cfg *Config) error {
	if err := ValidateURL(cfg.Catalog.BaseURL); err != nil {
		return fmt.Errorf("catalog.base_url: %w", err)
	}
	if cfg.Catalog.ConsumerKey == "" || cfg.Catalog.ConsumerSecret == "" {
		return fmt.Errorf("catalog.consumer_key and catalog.consumer_secret are both required")
	}
	if cfg.Catalog.RequestTimeout <= 0 {
		return fmt.Errorf("catalog.request_timeout must be > 0")
	}
	return nil
}

// ValidateURL checks if a URL string is usable as a network endpoint.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

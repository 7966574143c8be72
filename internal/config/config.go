package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for the catalog pipeline.
type Config struct {
	Crawl   CrawlConfig   `mapstructure:"crawl"   yaml:"crawl"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Images  ImagesConfig  `mapstructure:"images"  yaml:"images"`
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
	Media   MediaConfig   `mapstructure:"media"   yaml:"media"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// CrawlConfig controls URL discovery.
type CrawlConfig struct {
	SeedURL        string `mapstructure:"seed_url"        yaml:"seed_url"`
	CategoryPrefix string `mapstructure:"category_prefix" yaml:"category_prefix"`
	Concurrency    int    `mapstructure:"concurrency"     yaml:"concurrency"`
	ProgressEvery  int    `mapstructure:"progress_every"  yaml:"progress_every"`
}

// FetcherConfig controls page and image fetching.
type FetcherConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	MaxBodySize    int64         `mapstructure:"max_body_size"   yaml:"max_body_size"`
	UserAgent      string        `mapstructure:"user_agent"      yaml:"user_agent"`
}

// ImagesConfig controls image download and upload.
type ImagesConfig struct {
	DownloadConcurrency int `mapstructure:"download_concurrency" yaml:"download_concurrency"`
	UploadConcurrency   int `mapstructure:"upload_concurrency"   yaml:"upload_concurrency"`
}

// CatalogConfig holds the WooCommerce REST API surface.
type CatalogConfig struct {
	BaseURL        string        `mapstructure:"base_url"       yaml:"base_url"`
	ConsumerKey    string        `mapstructure:"consumer_key"   yaml:"consumer_key"`
	ConsumerSecret string        `mapstructure:"consumer_secret" yaml:"consumer_secret"`
	APIVersion     string        `mapstructure:"api_version"    yaml:"api_version"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	Concurrency    int           `mapstructure:"concurrency"    yaml:"concurrency"`
}

// MediaConfig holds the WordPress media API surface.
type MediaConfig struct {
	BaseURL        string        `mapstructure:"base_url"        yaml:"base_url"`
	Username       string        `mapstructure:"username"        yaml:"username"`
	Password       string        `mapstructure:"password"        yaml:"password"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	RetryAttempts  int           `mapstructure:"retry_attempts"  yaml:"retry_attempts"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"     yaml:"retry_delay"`
}

// StorageConfig controls where pipeline artifacts live.
type StorageConfig struct {
	// DataDir is the root under which tables/, images/ and logs/ are kept.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`

	// ArchiveURI enables the optional MongoDB record archive when set.
	ArchiveURI        string `mapstructure:"archive_uri"        yaml:"archive_uri"`
	ArchiveDatabase   string `mapstructure:"archive_database"   yaml:"archive_database"`
	ArchiveCollection string `mapstructure:"archive_collection" yaml:"archive_collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Crawl: CrawlConfig{
			Concurrency:   8,
			ProgressEvery: 500,
		},
		Fetcher: FetcherConfig{
			RequestTimeout: 30 * time.Second,
			MaxBodySize:    10 * 1024 * 1024, // 10MB
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Images: ImagesConfig{
			DownloadConcurrency: 4,
			UploadConcurrency:   4,
		},
		Catalog: CatalogConfig{
			APIVersion:     "wc/v3",
			RequestTimeout: 20 * time.Second,
			Concurrency:    4,
		},
		Media: MediaConfig{
			RequestTimeout: 60 * time.Second,
			RetryAttempts:  3,
			RetryDelay:     2 * time.Second,
		},
		Storage: StorageConfig{
			DataDir:           "./data",
			ArchiveDatabase:   "wooscraper",
			ArchiveCollection: "products",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
// CLI flag overrides are applied by the caller after Load.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("WOOSCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("wooscraper")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".wooscraper"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("crawl.seed_url", cfg.Crawl.SeedURL)
	v.SetDefault("crawl.category_prefix", cfg.Crawl.CategoryPrefix)
	v.SetDefault("crawl.concurrency", cfg.Crawl.Concurrency)
	v.SetDefault("crawl.progress_every", cfg.Crawl.ProgressEvery)

	v.SetDefault("fetcher.request_timeout", cfg.Fetcher.RequestTimeout)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.user_agent", cfg.Fetcher.UserAgent)

	v.SetDefault("images.download_concurrency", cfg.Images.DownloadConcurrency)
	v.SetDefault("images.upload_concurrency", cfg.Images.UploadConcurrency)

	v.SetDefault("catalog.base_url", cfg.Catalog.BaseURL)
	v.SetDefault("catalog.consumer_key", cfg.Catalog.ConsumerKey)
	v.SetDefault("catalog.consumer_secret", cfg.Catalog.ConsumerSecret)
	v.SetDefault("catalog.api_version", cfg.Catalog.APIVersion)
	v.SetDefault("catalog.request_timeout", cfg.Catalog.RequestTimeout)
	v.SetDefault("catalog.concurrency", cfg.Catalog.Concurrency)

	v.SetDefault("media.base_url", cfg.Media.BaseURL)
	v.SetDefault("media.username", cfg.Media.Username)
	v.SetDefault("media.password", cfg.Media.Password)
	v.SetDefault("media.request_timeout", cfg.Media.RequestTimeout)
	v.SetDefault("media.retry_attempts", cfg.Media.RetryAttempts)
	v.SetDefault("media.retry_delay", cfg.Media.RetryDelay)

	v.SetDefault("storage.data_dir", cfg.Storage.DataDir)
	v.SetDefault("storage.archive_uri", cfg.Storage.ArchiveURI)
	v.SetDefault("storage.archive_database", cfg.Storage.ArchiveDatabase)
	v.SetDefault("storage.archive_collection", cfg.Storage.ArchiveCollection)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}

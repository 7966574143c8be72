// Package wooscraper provides a public API for embedding the catalog
// pipeline as a library.
//
// Example usage:
//
//	client, err := wooscraper.New(
//	    wooscraper.WithSeed("https://shop.example/", "https://shop.example/collections/all"),
//	    wooscraper.WithDataDir("./data"),
//	    wooscraper.WithCatalogCredentials("https://store.example", "ck_xxx", "cs_xxx"),
//	    wooscraper.WithMediaCredentials("https://store.example/wp-json/wp/v2", "editor", "app-pass"),
//	)
//
//	summary, err := client.Run(ctx)
package wooscraper

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/config"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/fetcher"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/pipeline"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/storage"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/uploader"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/wc"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/wp"
)

// Option configures the client.
type Option func(*settings)

type settings struct {
	cfg    *config.Config
	logger *slog.Logger
}

// WithSeed sets the crawl seed URL and category prefix.
func WithSeed(seed, prefix string) Option {
	return func(s *settings) {
		s.cfg.Crawl.SeedURL = seed
		s.cfg.Crawl.CategoryPrefix = prefix
	}
}

// WithDataDir sets the directory holding tables, images and logs.
func WithDataDir(dir string) Option {
	return func(s *settings) { s.cfg.Storage.DataDir = dir }
}

// WithConcurrency sets the crawl fetch concurrency.
func WithConcurrency(n int) Option {
	return func(s *settings) { s.cfg.Crawl.Concurrency = n }
}

// WithCatalogCredentials sets the store API surface.
func WithCatalogCredentials(baseURL, consumerKey, consumerSecret string) Option {
	return func(s *settings) {
		s.cfg.Catalog.BaseURL = baseURL
		s.cfg.Catalog.ConsumerKey = consumerKey
		s.cfg.Catalog.ConsumerSecret = consumerSecret
	}
}

// WithMediaCredentials sets the media API surface.
func WithMediaCredentials(baseURL, username, password string) Option {
	return func(s *settings) {
		s.cfg.Media.BaseURL = baseURL
		s.cfg.Media.Username = username
		s.cfg.Media.Password = password
	}
}

// WithRecordArchive enables archiving assembled records to MongoDB.
func WithRecordArchive(uri, database, collection string) Option {
	return func(s *settings) {
		s.cfg.Storage.ArchiveURI = uri
		s.cfg.Storage.ArchiveDatabase = database
		s.cfg.Storage.ArchiveCollection = collection
	}
}

// WithLogger replaces the default stderr logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// Client runs the catalog pipeline with the configured options.
type Client struct {
	pipe    *pipeline.Pipeline
	fetch   *fetcher.Client
	archive *storage.MongoArchive
}

// New builds a client. The data directory layout is created eagerly so
// a misconfigured path fails here rather than mid-pipeline.
func New(opts ...Option) (*Client, error) {
	s := &settings{
		cfg:    config.DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := config.Validate(s.cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	store, err := storage.NewFileStore(s.cfg.Storage.DataDir, s.logger)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	httpClient, err := fetcher.New(&s.cfg.Fetcher, s.logger)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}

	deps := pipeline.Deps{
		Config:  s.cfg,
		Logger:  s.logger,
		Store:   store,
		Pages:   httpClient,
		Files:   httpClient,
		Media:   wp.New(&s.cfg.Media, s.logger),
		Catalog: wc.New(&s.cfg.Catalog, s.logger),
	}

	c := &Client{fetch: httpClient}
	if s.cfg.Storage.ArchiveURI != "" {
		archive, err := storage.NewMongoArchive(s.cfg.Storage.ArchiveURI, s.cfg.Storage.ArchiveDatabase, s.cfg.Storage.ArchiveCollection, s.logger)
		if err != nil {
			httpClient.Close()
			return nil, fmt.Errorf("connect archive: %w", err)
		}
		c.archive = archive
		deps.Archive = archive
	}

	c.pipe = pipeline.New(deps)
	return c, nil
}

// Crawl discovers catalog URLs. Returns the number of URLs kept.
func (c *Client) Crawl(ctx context.Context) (int, error) {
	return c.pipe.Crawl(ctx)
}

// Scrape extracts and assembles catalog records from the discovered
// URLs. Returns the number of records.
func (c *Client) Scrape(ctx context.Context) (int, error) {
	return c.pipe.Scrape(ctx)
}

// ReconcileImages uploads gallery images and rewrites gallery cells
// with hosted URLs. Returns the number of uploaded images.
func (c *Client) ReconcileImages(ctx context.Context) (int, error) {
	return c.pipe.ReconcileImages(ctx)
}

// Upload posts the finished catalog to the store.
func (c *Client) Upload(ctx context.Context) (uploader.Summary, error) {
	return c.pipe.Upload(ctx)
}

// Run executes the full pipeline.
func (c *Client) Run(ctx context.Context) (uploader.Summary, error) {
	return c.pipe.Run(ctx)
}

// Close releases the client's connections.
func (c *Client) Close() error {
	c.fetch.Close()
	if c.archive != nil {
		return c.archive.Close()
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/config"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/fetcher"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/pipeline"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/storage"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/wc"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/wp"
)

var (
	cfgFile     string
	verbose     bool
	dataDir     string
	seedURL     string
	prefix      string
	concurrency int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wooscraper",
		Short: "WooScraper - merchant catalog construction pipeline",
		Long: `WooScraper turns a merchant website into a WooCommerce catalog.

Stages:
  crawl    discover product URLs under a category prefix
  scrape   extract product data and download galleries
  images   rename, upload and reconcile gallery images
  upload   post the finished catalog to the store
  run      all of the above, in order

Each stage reads its input from and writes its output to the data
directory, so stages can be re-run individually.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "pipeline data directory (default ./data)")

	rootCmd.AddCommand(crawlCmd())
	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(imagesCmd())
	rootCmd.AddCommand(uploadCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// crawlCmd creates the "crawl" subcommand.
func crawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Discover catalog URLs",
		Long:  "Traverse the merchant site from the seed URL collecting every page under the category prefix, then save the cleaned URL table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage("crawl", config.ValidateCrawl, func(ctx context.Context, p *pipeline.Pipeline) error {
				n, err := p.Crawl(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Discovered %d catalog URLs\n", n)
				return nil
			})
		},
	}
	addCrawlFlags(cmd)
	return cmd
}

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Extract product data and download galleries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage("scrape", nil, func(ctx context.Context, p *pipeline.Pipeline) error {
				n, err := p.Scrape(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Assembled %d catalog records\n", n)
				return nil
			})
		},
	}
}

// imagesCmd creates the "images" subcommand.
func imagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "images",
		Short: "Upload gallery images and reconcile hosted URLs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage("images", config.ValidateMedia, func(ctx context.Context, p *pipeline.Pipeline) error {
				n, err := p.ReconcileImages(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Uploaded %d images\n", n)
				return nil
			})
		},
	}
}

// uploadCmd creates the "upload" subcommand.
func uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Post the finished catalog to the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage("upload", config.ValidateCatalog, func(ctx context.Context, p *pipeline.Pipeline) error {
				summary, err := p.Upload(ctx)
				if err != nil {
					return err
				}
				printSummary(summary.Attempted, summary.Created, len(summary.Failures))
				return nil
			})
		},
	}
}

// runCmd creates the "run" subcommand executing the full pipeline.
func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: crawl, scrape, images, upload",
		RunE: func(cmd *cobra.Command, args []string) error {
			validate := func(cfg *config.Config) error {
				if err := config.ValidateCrawl(cfg); err != nil {
					return err
				}
				if err := config.ValidateMedia(cfg); err != nil {
					return err
				}
				return config.ValidateCatalog(cfg)
			}
			return runStage("run", validate, func(ctx context.Context, p *pipeline.Pipeline) error {
				start := time.Now()
				summary, err := p.Run(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Pipeline finished in %s\n", time.Since(start).Round(time.Millisecond))
				printSummary(summary.Attempted, summary.Created, len(summary.Failures))
				return nil
			})
		},
	}
	addCrawlFlags(cmd)
	return cmd
}

func addCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&seedURL, "seed", "", "seed URL to start discovery from")
	cmd.Flags().StringVar(&prefix, "prefix", "", "category prefix URLs must start with")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "n", 0, "concurrent page fetches (0 = config default)")
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("WooScraper %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			applyCLIOverrides(cfg)
			fmt.Printf("Crawl:\n")
			fmt.Printf("  Seed URL:         %s\n", cfg.Crawl.SeedURL)
			fmt.Printf("  Category Prefix:  %s\n", cfg.Crawl.CategoryPrefix)
			fmt.Printf("  Concurrency:      %d\n", cfg.Crawl.Concurrency)
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Request Timeout:  %s\n", cfg.Fetcher.RequestTimeout)
			fmt.Printf("  Max Body Size:    %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Printf("\nImages:\n")
			fmt.Printf("  Download Workers: %d\n", cfg.Images.DownloadConcurrency)
			fmt.Printf("  Upload Workers:   %d\n", cfg.Images.UploadConcurrency)
			fmt.Printf("\nCatalog:\n")
			fmt.Printf("  Base URL:         %s\n", cfg.Catalog.BaseURL)
			fmt.Printf("  API Version:      %s\n", cfg.Catalog.APIVersion)
			fmt.Printf("  Credentials set:  %v\n", cfg.Catalog.ConsumerKey != "")
			fmt.Printf("\nMedia:\n")
			fmt.Printf("  Base URL:         %s\n", cfg.Media.BaseURL)
			fmt.Printf("  Retry Attempts:   %d\n", cfg.Media.RetryAttempts)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Data Dir:         %s\n", cfg.Storage.DataDir)
			fmt.Printf("  Archive:          %v\n", cfg.Storage.ArchiveURI != "")
			return nil
		},
	}
}

// runStage loads and validates configuration, wires the pipeline
// dependencies and executes one stage with graceful shutdown.
func runStage(stage string, validate func(*config.Config) error, fn func(context.Context, *pipeline.Pipeline) error) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if validate != nil {
		if err := validate(cfg); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}

	logger, closeLog, err := setupLogger(cfg, stage)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := storage.NewFileStore(cfg.Storage.DataDir, logger)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}

	httpClient, err := fetcher.New(&cfg.Fetcher, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer httpClient.Close()

	deps := pipeline.Deps{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Pages:   httpClient,
		Files:   httpClient,
		Media:   wp.New(&cfg.Media, logger),
		Catalog: wc.New(&cfg.Catalog, logger),
	}

	if cfg.Storage.ArchiveURI != "" {
		archive, err := storage.NewMongoArchive(cfg.Storage.ArchiveURI, cfg.Storage.ArchiveDatabase, cfg.Storage.ArchiveCollection, logger)
		if err != nil {
			logger.Warn("record archive unavailable", "error", err)
		} else {
			deps.Archive = archive
			defer archive.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(deps)
	logger.Info("stage starting", "stage", stage)
	if err := fn(ctx, p); err != nil {
		logger.Error("stage failed", "stage", stage, "error", err)
		return err
	}
	return nil
}

// setupLogger creates a structured logger that writes to stderr and to
// the per-stage log file under the data directory.
func setupLogger(cfg *config.Config, stage string) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.Logging.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	logsDir := filepath.Join(cfg.Storage.DataDir, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", logsDir, err)
	}
	logFile, err := os.OpenFile(filepath.Join(logsDir, stage+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open stage log: %w", err)
	}

	out := io.MultiWriter(os.Stderr, logFile)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), func() { logFile.Close() }, nil
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if dataDir != "" {
		cfg.Storage.DataDir = dataDir
	}
	if seedURL != "" {
		cfg.Crawl.SeedURL = seedURL
	}
	if prefix != "" {
		cfg.Crawl.CategoryPrefix = prefix
	}
	if concurrency > 0 {
		cfg.Crawl.Concurrency = concurrency
	}
}

func printSummary(attempted, created, failed int) {
	fmt.Printf("Upload summary:\n")
	fmt.Printf("  Attempted: %d\n", attempted)
	fmt.Printf("  Created:   %d\n", created)
	fmt.Printf("  Failed:    %d\n", failed)
}

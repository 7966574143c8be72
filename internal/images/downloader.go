package images

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/fetcher"
)

// FileFetcher fetches one raw file by URL.
type FileFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.Page, error)
}

// Downloader saves gallery images to disk, one directory per product.
type Downloader struct {
	fetch       FileFetcher
	concurrency int
	logger      *slog.Logger
}

// NewDownloader creates a new image downloader.
func NewDownloader(fetch FileFetcher, concurrency int, logger *slog.Logger) *Downloader {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Downloader{
		fetch:       fetch,
		concurrency: concurrency,
		logger:      logger.With("component", "image_downloader"),
	}
}

// DownloadAll fetches every gallery image into destDir, naming files
// product_image_<n>.jpg by 1-based gallery position. Failed downloads
// are logged and skipped; the returned names keep gallery order.
func (d *Downloader) DownloadAll(ctx context.Context, imageURLs []string, destDir string) ([]string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", destDir, err)
	}

	names := make([]string, len(imageURLs))
	sem := make(chan struct{}, d.concurrency)
	var wg sync.WaitGroup

	for i, src := range imageURLs {
		wg.Add(1)
		go func(i int, src string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if strings.HasPrefix(src, "//") {
				src = "https:" + src
			}

			name := fmt.Sprintf("product_image_%d.jpg", i+1)
			if err := d.downloadOne(ctx, src, filepath.Join(destDir, name)); err != nil {
				d.logger.Error("error downloading image", "url", src, "error", err)
				return
			}
			names[i] = name
		}(i, src)
	}
	wg.Wait()

	// Compact, preserving gallery order.
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out, nil
}

func (d *Downloader) downloadOne(ctx context.Context, src, dest string) error {
	pg, err := d.fetch.Fetch(ctx, src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, pg.Body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

package pipeline

import (
	"context"
	"fmt"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/crawler"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/storage"
)

// Columns of the discovered-URL table. ColURL holds the URL as found on
// the page, ColCleanedURL its query-stripped form used for scraping.
const (
	ColURL        = "url"
	ColCleanedURL = "cleaned_url"
)

// Crawl discovers catalog URLs from the configured seed and saves them
// as the URL table. Returns the number of URLs kept after filtering.
func (p *Pipeline) Crawl(ctx context.Context) (int, error) {
	cfg := p.deps.Config.Crawl
	p.logger.Info("starting crawl", "seed", cfg.SeedURL, "prefix", cfg.CategoryPrefix)

	c := crawler.New(p.deps.Pages, cfg.Concurrency, cfg.ProgressEvery, p.deps.Logger)
	urls, err := c.Discover(ctx, cfg.SeedURL, cfg.CategoryPrefix)
	if err != nil {
		return 0, fmt.Errorf("discover: %w", err)
	}

	cleaned := crawler.FilterURLs(urls, cfg.CategoryPrefix)

	tbl := storage.NewTable([]string{ColURL, ColCleanedURL})
	for _, cu := range cleaned {
		tbl.Append([]string{cu.URL, cu.Cleaned})
	}

	if err := p.deps.Store.SaveTable(storage.URLsTable, tbl, nil); err != nil {
		return 0, err
	}

	p.logger.Info("crawl finished", "discovered", len(urls), "kept", tbl.Len())
	return tbl.Len(), nil
}

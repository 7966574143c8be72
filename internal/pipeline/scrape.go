package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/assembler"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/extractor"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/images"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/storage"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/types"
)

const scrapeProgressEvery = 50

// Scrape walks the URL table, extracting a snapshot from each product
// page, downloading its gallery and assembling catalog records. The
// product table and its description companion are saved at the end.
// Returns the number of records assembled.
//
// Page failures are isolated: a page that cannot be fetched or
// extracted is logged and skipped, and the batch continues.
func (p *Pipeline) Scrape(ctx context.Context) (int, error) {
	urls, err := p.deps.Store.LoadTable(storage.URLsTable)
	if err != nil {
		return 0, err
	}
	p.logger.Info("starting scrape", "urls", urls.Len())

	ext := extractor.New(p.deps.Logger)
	asm := assembler.New(p.deps.Logger)
	dl := images.NewDownloader(p.deps.Files, p.deps.Config.Images.DownloadConcurrency, p.deps.Logger)

	var records []types.ProductRecord
	seen := make(map[string]bool)

	for row := 0; row < urls.Len(); row++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		pageURL := urls.Get(row, ColCleanedURL)

		page, err := p.deps.Pages.Fetch(ctx, pageURL)
		if err != nil {
			p.logger.Warn("page fetch failed", "url", pageURL, "error", err)
			continue
		}

		snap, err := ext.Extract(page)
		if err != nil {
			p.logger.Warn("extraction failed", "url", pageURL, "error", err)
			continue
		}

		if len(snap.Variants) == 0 {
			p.logger.Warn("page declares no variants", "url", pageURL)
			continue
		}

		// Two cleaned URLs can resolve to the same product. Keep the
		// first occurrence of each base SKU.
		base := snap.Variants[0].SKU
		if seen[base] {
			p.logger.Debug("skipping duplicate product", "sku", base, "url", pageURL)
			continue
		}
		seen[base] = true

		destDir := filepath.Join(p.deps.Store.ImagesDir(), types.Slugify(snap.Title))
		names, err := dl.DownloadAll(ctx, snap.ImageURLs, destDir)
		if err != nil {
			p.logger.Warn("gallery download failed", "url", pageURL, "error", err)
			names = nil
		}

		recs, err := asm.Assemble(snap, names)
		if err != nil {
			p.logger.Warn("assembly failed", "url", pageURL, "error", err)
			continue
		}
		records = append(records, recs...)

		if (row+1)%scrapeProgressEvery == 0 {
			p.logger.Info("scrape progress", "pages", row+1, "total", urls.Len(), "records", len(records))
		}
	}

	if len(records) == 0 {
		return 0, fmt.Errorf("no products assembled from %d urls", urls.Len())
	}

	if p.deps.Archive != nil {
		if err := p.deps.Archive.InsertRecords(ctx, records); err != nil {
			p.logger.Warn("record archive failed", "error", err)
		}
	}

	products := assembler.BuildTable(records)
	if err := p.saveProductTables(products); err != nil {
		return 0, err
	}

	p.logger.Info("scrape finished", "pages", urls.Len(), "records", len(records))
	return len(records), nil
}

// saveProductTables splits descriptions into their companion table
// before saving. Descriptions carry raw HTML with embedded newlines
// and commas; keeping them out of the main table keeps it greppable.
func (p *Pipeline) saveProductTables(products *storage.Table) error {
	descriptions := products.DropColumn(assembler.ColDescription)

	descTbl := storage.NewTable([]string{assembler.ColDescription})
	for _, d := range descriptions {
		descTbl.Append([]string{d})
	}

	if err := p.deps.Store.SaveTable(storage.ProductsTable, products, assembler.CanonicalColumn); err != nil {
		return err
	}
	return p.deps.Store.SaveTable(storage.DescriptionsCSV, descTbl, nil)
}

// loadProductTable reads the product table and rejoins descriptions at
// their fixed position.
func (p *Pipeline) loadProductTable(name string) (*storage.Table, error) {
	products, err := p.deps.Store.LoadTable(name)
	if err != nil {
		return nil, err
	}

	descTbl, err := p.deps.Store.LoadTable(storage.DescriptionsCSV)
	if err != nil {
		return nil, err
	}

	values := make([]string, products.Len())
	for i := 0; i < products.Len() && i < descTbl.Len(); i++ {
		values[i] = descTbl.Get(i, assembler.ColDescription)
	}
	products.InsertColumn(assembler.DescriptionIndex(), assembler.ColDescription, values)
	return products, nil
}

package pipeline

import (
	"context"
	"sync"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/assembler"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/images"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/retry"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/storage"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/types"
)

// ReconcileImages renames every downloaded gallery image to carry its
// product SKU, uploads the files to the media host and rewrites the
// gallery cells of the product table with the hosted URLs. The result
// is saved as the updated product table. Returns the number of images
// successfully uploaded.
func (p *Pipeline) ReconcileImages(ctx context.Context) (int, error) {
	products, err := p.loadProductTable(storage.ProductsTable)
	if err != nil {
		return 0, err
	}

	rec := images.NewReconciler(p.deps.Store.ImagesDir(), p.deps.Logger)
	entries := rec.BuildPathTable(products)
	p.logger.Info("starting image upload", "images", len(entries))

	policy := retry.Policy{
		Attempts: p.deps.Config.Media.RetryAttempts,
		Delay:    p.deps.Config.Media.RetryDelay,
	}

	sem := make(chan struct{}, max(1, p.deps.Config.Images.UploadConcurrency))
	var wg sync.WaitGroup
	var mu sync.Mutex
	uploaded := 0

	for i := range entries {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(e *types.ImagePathEntry) {
			defer wg.Done()
			defer func() { <-sem }()

			var hosted string
			err := policy.Do(ctx, func(ctx context.Context) error {
				u, err := p.deps.Media.Upload(ctx, e.LocalPath)
				if err != nil {
					return err
				}
				hosted = u
				return nil
			})
			if err != nil {
				p.logger.Warn("image upload failed", "path", e.LocalPath, "sku", e.SKU, "error", err)
				return
			}

			e.RemoteURL = hosted
			mu.Lock()
			uploaded++
			mu.Unlock()
		}(&entries[i])
	}
	wg.Wait()

	rec.BackfillURLs(products, entries)

	if err := p.deps.Store.SaveTable(storage.UpdatedTable, products, assembler.CanonicalColumn); err != nil {
		return 0, err
	}

	p.logger.Info("image upload finished", "uploaded", uploaded, "total", len(entries))
	return uploaded, nil
}

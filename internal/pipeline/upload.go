package pipeline

import (
	"context"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/storage"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/uploader"
)

// Upload posts the updated product table to the remote store and
// returns the per-phase outcome.
func (p *Pipeline) Upload(ctx context.Context) (uploader.Summary, error) {
	tbl, err := p.deps.Store.LoadTable(storage.UpdatedTable)
	if err != nil {
		return uploader.Summary{}, err
	}

	products := uploader.Prepare(tbl)
	orc := uploader.New(p.deps.Catalog, p.deps.Config.Catalog.Concurrency, p.deps.Logger)
	return orc.Upload(ctx, products), nil
}

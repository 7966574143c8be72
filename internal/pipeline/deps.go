package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/config"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/crawler"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/images"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/storage"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/types"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/uploader"
)

// MediaUploader posts one local image to the media host and returns its
// hosted URL.
type MediaUploader interface {
	Upload(ctx context.Context, imagePath string) (string, error)
}

// RecordArchiver persists assembled records to secondary storage.
type RecordArchiver interface {
	InsertRecords(ctx context.Context, records []types.ProductRecord) error
	Close() error
}

// Deps is the explicit dependency set for a pipeline run. Every
// collaborator is passed here; stages never construct their own
// network clients.
type Deps struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   *storage.FileStore
	Pages   crawler.PageFetcher
	Files   images.FileFetcher
	Media   MediaUploader
	Catalog uploader.CatalogClient

	// Archive is optional. When nil, assembled records are only kept
	// as CSV artifacts.
	Archive RecordArchiver
}

// Pipeline runs the catalog construction stages. Each stage reads its
// input artifact from the store and writes its output artifact back,
// so stages can be run individually or chained.
type Pipeline struct {
	deps   Deps
	runID  string
	logger *slog.Logger
}

// New creates a pipeline with a fresh run ID.
func New(deps Deps) *Pipeline {
	runID := uuid.NewString()
	return &Pipeline{
		deps:   deps,
		runID:  runID,
		logger: deps.Logger.With("component", "pipeline", "run_id", runID),
	}
}

// RunID identifies this pipeline instance in logs.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Run executes the full pipeline: discover, scrape, reconcile images,
// upload. It stops at the first failing stage.
func (p *Pipeline) Run(ctx context.Context) (uploader.Summary, error) {
	if _, err := p.Crawl(ctx); err != nil {
		return uploader.Summary{}, err
	}
	if _, err := p.Scrape(ctx); err != nil {
		return uploader.Summary{}, err
	}
	if _, err := p.ReconcileImages(ctx); err != nil {
		return uploader.Summary{}, err
	}
	return p.Upload(ctx)
}

package uploader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/types"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/wc"
)

// CatalogClient creates products and variations on the remote store.
type CatalogClient interface {
	CreateProduct(ctx context.Context, payload map[string]any) (*wc.Result, error)
	CreateVariation(ctx context.Context, productID int64, payload map[string]any) (*wc.Result, error)
}

// SkuFailure records one product that could not be created.
type SkuFailure struct {
	SKU string
	Err error
}

// Summary reports both how many creates were attempted and how many
// the store confirmed. A run where the two differ is a partial upload.
type Summary struct {
	Attempted int
	Created   int
	Failures  []SkuFailure
}

// Orchestrator uploads a prepared catalog in three ordered phases:
// variable parents first, then their variations, then simple products.
// Failures are isolated per product; one rejected item never aborts
// the run.
type Orchestrator struct {
	catalog       CatalogClient
	concurrency   int
	progressEvery int
	logger        *slog.Logger
}

// New returns an orchestrator posting through the given client.
func New(catalog CatalogClient, concurrency int, logger *slog.Logger) *Orchestrator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Orchestrator{
		catalog:       catalog,
		concurrency:   concurrency,
		progressEvery: 50,
		logger:        logger.With("component", "uploader"),
	}
}

// Upload posts every product in the prepared catalog. Parents complete
// before any variation is attempted so that each variation can resolve
// its parent's remote ID.
func (o *Orchestrator) Upload(ctx context.Context, products []Product) Summary {
	var parents, variations, simples []Product
	for _, p := range products {
		switch p.Type {
		case types.TypeVariable:
			parents = append(parents, p)
		case types.TypeVariation:
			variations = append(variations, p)
		default:
			simples = append(simples, p)
		}
	}

	o.logger.Info("starting upload",
		"parents", len(parents),
		"variations", len(variations),
		"simples", len(simples))

	tally := newTally()
	parentIDs := o.uploadParents(ctx, parents, tally)
	o.uploadVariations(ctx, variations, parentIDs, tally)
	o.uploadSimples(ctx, simples, tally)

	summary := tally.summary()
	o.logger.Info("upload finished",
		"attempted", summary.Attempted,
		"created", summary.Created,
		"failed", len(summary.Failures))
	return summary
}

// --- Phase 1: variable parents ---

func (o *Orchestrator) uploadParents(ctx context.Context, parents []Product, tally *tally) map[string]int64 {
	parentIDs := make(map[string]int64, len(parents))
	var mu sync.Mutex

	o.forEach(ctx, parents, func(ctx context.Context, p Product) {
		remoteSKU := p.SKU + types.ParentSKUMarker
		tally.attempt()

		result, err := o.catalog.CreateProduct(ctx, parentPayload(p, remoteSKU))
		if err != nil {
			tally.fail(remoteSKU, err)
			o.logger.Warn("parent create failed", "sku", remoteSKU, "error", err)
			return
		}
		if !result.Created() {
			tally.fail(remoteSKU, &types.UploadError{SKU: remoteSKU, StatusCode: result.StatusCode})
			o.logger.Warn("parent rejected", "sku", remoteSKU, "status", result.StatusCode)
			return
		}
		tally.confirm()

		mu.Lock()
		parentIDs[remoteSKU] = result.ID
		mu.Unlock()

		// The first option of the parent becomes a purchasable
		// variation carrying the base SKU.
		o.createDefaultVariant(ctx, p, result.ID, tally)
	})

	return parentIDs
}

func (o *Orchestrator) createDefaultVariant(ctx context.Context, p Product, parentID int64, tally *tally) {
	tally.attempt()
	result, err := o.catalog.CreateVariation(ctx, parentID, defaultVariantPayload(p))
	if err != nil {
		tally.fail(p.SKU, err)
		o.logger.Warn("default variant create failed", "sku", p.SKU, "error", err)
		return
	}
	if !result.Created() {
		tally.fail(p.SKU, &types.UploadError{SKU: p.SKU, StatusCode: result.StatusCode})
		o.logger.Warn("default variant rejected", "sku", p.SKU, "status", result.StatusCode)
		return
	}
	tally.confirm()
}

// --- Phase 2: variations ---

func (o *Orchestrator) uploadVariations(ctx context.Context, variations []Product, parentIDs map[string]int64, tally *tally) {
	o.forEach(ctx, variations, func(ctx context.Context, p Product) {
		parentID, ok := parentIDs[p.ParentSKU+types.ParentSKUMarker]
		if !ok {
			tally.fail(p.SKU, &types.IntegrityError{SKU: p.SKU, ParentSKU: p.ParentSKU})
			o.logger.Warn("skipping variation without parent", "sku", p.SKU, "parent_sku", p.ParentSKU)
			return
		}

		tally.attempt()
		result, err := o.catalog.CreateVariation(ctx, parentID, variationPayload(p))
		if err != nil {
			tally.fail(p.SKU, err)
			o.logger.Warn("variation create failed", "sku", p.SKU, "error", err)
			return
		}
		if !result.Created() {
			tally.fail(p.SKU, &types.UploadError{SKU: p.SKU, StatusCode: result.StatusCode})
			o.logger.Warn("variation rejected", "sku", p.SKU, "status", result.StatusCode)
			return
		}
		tally.confirm()
	})
}

// --- Phase 3: simple products ---

func (o *Orchestrator) uploadSimples(ctx context.Context, simples []Product, tally *tally) {
	o.forEach(ctx, simples, func(ctx context.Context, p Product) {
		tally.attempt()
		result, err := o.catalog.CreateProduct(ctx, simplePayload(p))
		if err != nil {
			tally.fail(p.SKU, err)
			o.logger.Warn("simple create failed", "sku", p.SKU, "error", err)
			return
		}
		if !result.Created() {
			tally.fail(p.SKU, &types.UploadError{SKU: p.SKU, StatusCode: result.StatusCode})
			o.logger.Warn("simple rejected", "sku", p.SKU, "status", result.StatusCode)
			return
		}
		tally.confirm()
	})
}

// forEach runs fn over products with bounded concurrency and waits for
// all of them, logging progress at a fixed interval.
func (o *Orchestrator) forEach(ctx context.Context, products []Product, fn func(ctx context.Context, p Product)) {
	if len(products) == 0 {
		return
	}

	sem := make(chan struct{}, o.concurrency)
	var wg sync.WaitGroup
	var done int
	var mu sync.Mutex

	for _, p := range products {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(p Product) {
			defer wg.Done()
			defer func() { <-sem }()

			fn(ctx, p)

			mu.Lock()
			done++
			if done%o.progressEvery == 0 {
				o.logger.Info("upload progress", "done", done, "total", len(products))
			}
			mu.Unlock()
		}(p)
	}
	wg.Wait()
}

// --- Payloads ---

func parentPayload(p Product, remoteSKU string) map[string]any {
	payload := map[string]any{
		"name":          p.Name,
		"type":          "variable",
		"sku":           remoteSKU,
		"regular_price": p.RegularPrice,
		"description":   p.Description,
		"status":        "publish",
		"images":        imagePayload(p.GalleryRefs()),
	}
	if attrs := attributePayload(p.Attributes); attrs != nil {
		payload["attributes"] = attrs
	}
	if defs := defaultAttributePayload(p.DefaultAttributes); defs != nil {
		payload["default_attributes"] = defs
	}
	return payload
}

func defaultVariantPayload(p Product) map[string]any {
	payload := map[string]any{
		"sku":           p.SKU,
		"regular_price": p.RegularPrice,
		"status":        "publish",
		"purchasable":   true,
	}
	if refs := p.GalleryRefs(); len(refs) > 0 {
		payload["image"] = map[string]any{"src": refs[0]}
	}
	if defs := defaultAttributePayload(p.DefaultAttributes); defs != nil {
		payload["attributes"] = defs
	}
	return payload
}

func variationPayload(p Product) map[string]any {
	payload := map[string]any{
		"sku":           p.SKU,
		"regular_price": p.RegularPrice,
		"status":        "publish",
		"purchasable":   true,
	}
	if refs := p.GalleryRefs(); len(refs) > 0 {
		payload["image"] = map[string]any{"src": refs[0]}
	}
	if len(p.Attributes) > 0 && len(p.Attributes[0].Options) > 0 {
		payload["attributes"] = []map[string]any{{
			"name":   p.Attributes[0].Name,
			"option": p.Attributes[0].Options[0],
		}}
	}
	return payload
}

func simplePayload(p Product) map[string]any {
	return map[string]any{
		"name":          p.Name,
		"type":          "simple",
		"sku":           p.SKU,
		"regular_price": p.RegularPrice,
		"description":   p.Description,
		"status":        "publish",
		"images":        imagePayload(p.GalleryRefs()),
	}
}

func imagePayload(refs []string) []map[string]any {
	images := make([]map[string]any, 0, len(refs))
	for _, ref := range refs {
		images = append(images, map[string]any{"src": ref})
	}
	return images
}

func attributePayload(attrs []Attribute) []map[string]any {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, map[string]any{
			"name":      a.Name,
			"options":   a.Options,
			"visible":   a.Visible,
			"variation": a.Variation,
		})
	}
	return out
}

func defaultAttributePayload(defs []DefaultAttribute) []map[string]any {
	if len(defs) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(defs))
	for _, d := range defs {
		out = append(out, map[string]any{
			"name":   d.Name,
			"option": d.Option,
		})
	}
	return out
}

// --- Tally ---

type tally struct {
	mu        sync.Mutex
	attempted int
	created   int
	failures  []SkuFailure
}

func newTally() *tally {
	return &tally{}
}

func (t *tally) attempt() {
	t.mu.Lock()
	t.attempted++
	t.mu.Unlock()
}

func (t *tally) confirm() {
	t.mu.Lock()
	t.created++
	t.mu.Unlock()
}

func (t *tally) fail(sku string, err error) {
	t.mu.Lock()
	t.failures = append(t.failures, SkuFailure{SKU: sku, Err: err})
	t.mu.Unlock()
}

func (t *tally) summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Summary{
		Attempted: t.attempted,
		Created:   t.created,
		Failures:  append([]SkuFailure(nil), t.failures...),
	}
}

// String renders the summary for the run log.
func (s Summary) String() string {
	return fmt.Sprintf("attempted=%d created=%d failed=%d", s.Attempted, s.Created, len(s.Failures))
}

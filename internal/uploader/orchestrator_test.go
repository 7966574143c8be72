package uploader

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/assembler"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/storage"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/types"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/wc"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeCatalog records create calls and assigns sequential remote IDs.
type fakeCatalog struct {
	mu         sync.Mutex
	nextID     int64
	products   []map[string]any
	variations map[int64][]map[string]any
	rejectSKUs map[string]bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		variations: make(map[int64][]map[string]any),
		rejectSKUs: make(map[string]bool),
	}
}

func (f *fakeCatalog) CreateProduct(_ context.Context, payload map[string]any) (*wc.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sku, _ := payload["sku"].(string); f.rejectSKUs[sku] {
		return &wc.Result{StatusCode: http.StatusBadRequest}, nil
	}
	f.nextID++
	f.products = append(f.products, payload)
	return &wc.Result{ID: f.nextID, StatusCode: http.StatusCreated}, nil
}

func (f *fakeCatalog) CreateVariation(_ context.Context, productID int64, payload map[string]any) (*wc.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sku, _ := payload["sku"].(string); f.rejectSKUs[sku] {
		return &wc.Result{StatusCode: http.StatusBadRequest}, nil
	}
	f.nextID++
	f.variations[productID] = append(f.variations[productID], payload)
	return &wc.Result{ID: f.nextID, StatusCode: http.StatusCreated}, nil
}

func (f *fakeCatalog) productSKUs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var skus []string
	for _, p := range f.products {
		sku, _ := p["sku"].(string)
		skus = append(skus, sku)
	}
	return skus
}

func testProducts() []Product {
	return []Product{
		{
			Type:         types.TypeVariable,
			SKU:          "100",
			Name:         "Facial Serum",
			RegularPrice: "450.00",
			Gallery:      "https://media.example/u1.jpg, https://media.example/u2.jpg",
			Attributes: []Attribute{{
				Name:      "Size",
				Options:   []string{"30ml", "50ml"},
				Visible:   true,
				Variation: true,
			}},
			DefaultAttributes: []DefaultAttribute{{Name: "Size", Option: "30ml"}},
		},
		{
			Type:         types.TypeVariation,
			SKU:          "101",
			ParentSKU:    "100",
			Name:         "Facial Serum - 50ml",
			RegularPrice: "650.00",
			Gallery:      "https://media.example/u2.jpg",
			Attributes:   []Attribute{{Name: "Size", Options: []string{"50ml"}}},
		},
		{
			Type:         types.TypeSimple,
			SKU:          "200",
			Name:         "Soap Bar",
			RegularPrice: "80.00",
			Gallery:      "https://media.example/u3.jpg",
		},
	}
}

func TestUploadPhases(t *testing.T) {
	catalog := newFakeCatalog()
	o := New(catalog, 2, testLogger)

	summary := o.Upload(context.Background(), testProducts())

	// Parent, its default variant, the variation and the simple.
	if summary.Attempted != 4 {
		t.Errorf("attempted = %d", summary.Attempted)
	}
	if summary.Created != 4 {
		t.Errorf("created = %d", summary.Created)
	}
	if len(summary.Failures) != 0 {
		t.Errorf("failures = %+v", summary.Failures)
	}

	skus := catalog.productSKUs()
	if len(skus) != 2 {
		t.Fatalf("products = %v", skus)
	}
	found := map[string]bool{}
	for _, s := range skus {
		found[s] = true
	}
	if !found["100v"] {
		t.Errorf("parent pushed without marker: %v", skus)
	}
	if !found["200"] {
		t.Errorf("simple missing: %v", skus)
	}
}

func TestUploadDefaultVariantAndVariation(t *testing.T) {
	catalog := newFakeCatalog()
	o := New(catalog, 1, testLogger)

	o.Upload(context.Background(), testProducts())

	// Parent got remote ID 1; both its variants hang off it.
	vars := catalog.variations[1]
	if len(vars) != 2 {
		t.Fatalf("expected default variant + variation, got %d", len(vars))
	}
	if sku, _ := vars[0]["sku"].(string); sku != "100" {
		t.Errorf("default variant sku = %q", sku)
	}
	if sku, _ := vars[1]["sku"].(string); sku != "101" {
		t.Errorf("variation sku = %q", sku)
	}
}

func TestUploadSkipsVariationWithoutParent(t *testing.T) {
	catalog := newFakeCatalog()
	o := New(catalog, 2, testLogger)

	orphan := Product{Type: types.TypeVariation, SKU: "301", ParentSKU: "999"}
	summary := o.Upload(context.Background(), []Product{orphan})

	if summary.Attempted != 0 {
		t.Errorf("attempted = %d, orphan must not reach the API", summary.Attempted)
	}
	if len(summary.Failures) != 1 {
		t.Fatalf("failures = %+v", summary.Failures)
	}

	var integrity *types.IntegrityError
	if !errors.As(summary.Failures[0].Err, &integrity) {
		t.Fatalf("expected IntegrityError, got %v", summary.Failures[0].Err)
	}
	if integrity.ParentSKU != "999" {
		t.Errorf("parent sku = %q", integrity.ParentSKU)
	}
}

func TestUploadRejectedParentCascades(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.rejectSKUs["100v"] = true
	o := New(catalog, 1, testLogger)

	summary := o.Upload(context.Background(), testProducts()[:2])

	// The parent was attempted and rejected; the variation is skipped
	// because no remote parent exists.
	if summary.Attempted != 1 {
		t.Errorf("attempted = %d", summary.Attempted)
	}
	if summary.Created != 0 {
		t.Errorf("created = %d", summary.Created)
	}
	if len(summary.Failures) != 2 {
		t.Fatalf("failures = %+v", summary.Failures)
	}
}

func TestUploadIsolatesFailures(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.rejectSKUs["200"] = true
	o := New(catalog, 2, testLogger)

	products := append(testProducts(), Product{
		Type: types.TypeSimple, SKU: "201", Name: "Candle", RegularPrice: "120.00",
	})
	summary := o.Upload(context.Background(), products)

	if summary.Created != 4 {
		t.Errorf("created = %d", summary.Created)
	}
	if len(summary.Failures) != 1 || summary.Failures[0].SKU != "200" {
		t.Fatalf("failures = %+v", summary.Failures)
	}

	var uploadErr *types.UploadError
	if !errors.As(summary.Failures[0].Err, &uploadErr) {
		t.Fatalf("expected UploadError, got %v", summary.Failures[0].Err)
	}
	if uploadErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", uploadErr.StatusCode)
	}
}

// --- Prepare Tests ---

func TestPrepare(t *testing.T) {
	tbl := storage.NewTable(assembler.Columns())
	cells := map[string]string{
		assembler.ColType:              "variable",
		assembler.ColSKU:               "100",
		assembler.ColName:              "Facial Serum",
		assembler.ColRegularPrice:      "450.00",
		assembler.ColDescription:       "Hydrating serum.",
		assembler.ColGallery:           "https://media.example/u1.jpg, https://media.example/u2.jpg",
		assembler.ColBrand:             "Acme",
		assembler.ColAttributeName:     "Size",
		assembler.ColAttributeOptions:  "30ml, 50ml",
		assembler.ColDefaultAttributes: "30ml",
		assembler.ColAttributeVisible:  "1",
	}
	row := make([]string, 0, len(assembler.Columns()))
	for _, col := range assembler.Columns() {
		row = append(row, cells[col])
	}
	tbl.Append(row)

	products := Prepare(tbl)
	if len(products) != 1 {
		t.Fatalf("products = %+v", products)
	}

	p := products[0]
	if p.Type != types.TypeVariable || p.SKU != "100" {
		t.Errorf("product = %+v", p)
	}
	if len(p.Attributes) != 1 {
		t.Fatalf("attributes = %+v", p.Attributes)
	}
	attr := p.Attributes[0]
	if attr.Name != "Size" || len(attr.Options) != 2 || attr.Options[1] != "50ml" {
		t.Errorf("attribute = %+v", attr)
	}
	if !attr.Visible || !attr.Variation {
		t.Errorf("attribute flags = %+v", attr)
	}
	if len(p.DefaultAttributes) != 1 || p.DefaultAttributes[0].Option != "30ml" {
		t.Errorf("defaults = %+v", p.DefaultAttributes)
	}
	if refs := p.GalleryRefs(); len(refs) != 2 || refs[0] != "https://media.example/u1.jpg" {
		t.Errorf("gallery refs = %v", refs)
	}
}

func TestPrepareNoAttribute(t *testing.T) {
	tbl := storage.NewTable(assembler.Columns())
	cells := map[string]string{
		assembler.ColType: "simple",
		assembler.ColSKU:  "200",
		assembler.ColName: "Soap Bar",
	}
	row := make([]string, 0, len(assembler.Columns()))
	for _, col := range assembler.Columns() {
		row = append(row, cells[col])
	}
	tbl.Append(row)

	products := Prepare(tbl)
	if len(products[0].Attributes) != 0 {
		t.Errorf("attributes = %+v", products[0].Attributes)
	}
	if len(products[0].DefaultAttributes) != 0 {
		t.Errorf("defaults = %+v", products[0].DefaultAttributes)
	}
}

package assembler

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func variableSnapshot() *types.ProductSnapshot {
	return &types.ProductSnapshot{
		SourceURL:     "https://shop.example/products/serum",
		Title:         "Facial Serum",
		Price:         "450.00",
		Brand:         "Acme",
		Description:   "Hydrating serum.",
		Tags:          []string{"33", "35"},
		AttributeName: "Size",
		Variants: []types.Variant{
			{SKU: "100", ComparePriceCents: 45000, PublicTitle: "30ml"},
			{SKU: "101", ComparePriceCents: 65000, PublicTitle: "50ml"},
			{SKU: "102", ComparePriceCents: 85000, PublicTitle: "100ml"},
		},
	}
}

func TestAssembleSimple(t *testing.T) {
	a := New(testLogger)
	snap := &types.ProductSnapshot{
		Title:         "Soap Bar",
		Price:         "80.00",
		Brand:         "Acme",
		AttributeName: "Size",
		Variants:      []types.Variant{{SKU: "200", ComparePriceCents: 8000}},
	}

	records, err := a.Assemble(snap, []string{"product_image_1.jpg", "product_image_2.jpg"})
	if err != nil {
		t.Fatalf("assemble error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Type != types.TypeSimple {
		t.Errorf("type = %q", rec.Type)
	}
	if rec.SKU != "200" {
		t.Errorf("sku = %q", rec.SKU)
	}
	if !rec.Featured {
		t.Error("simple record should be featured")
	}
	if rec.Gallery != "product_image_1.jpg, product_image_2.jpg" {
		t.Errorf("gallery = %q", rec.Gallery)
	}
	if rec.AttributeName != "" {
		t.Errorf("simple record carries attribute %q", rec.AttributeName)
	}
}

func TestAssembleVariable(t *testing.T) {
	a := New(testLogger)
	images := []string{"product_image_1.jpg", "product_image_2.jpg", "product_image_3.jpg"}

	records, err := a.Assemble(variableSnapshot(), images)
	if err != nil {
		t.Fatalf("assemble error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected parent + 2 variations, got %d", len(records))
	}

	parent := records[0]
	if parent.Type != types.TypeVariable {
		t.Errorf("parent type = %q", parent.Type)
	}
	if parent.SKU != "100" {
		t.Errorf("parent sku = %q", parent.SKU)
	}
	if parent.AttributeOptions != "30ml, 50ml, 100ml" {
		t.Errorf("options = %q", parent.AttributeOptions)
	}
	if parent.DefaultAttribute != "30ml" {
		t.Errorf("default = %q", parent.DefaultAttribute)
	}
	if parent.Gallery != "product_image_1.jpg, product_image_2.jpg, product_image_3.jpg" {
		t.Errorf("parent gallery = %q", parent.Gallery)
	}
	if parent.Price != "450.00" {
		t.Errorf("parent price = %q", parent.Price)
	}

	v1 := records[1]
	if v1.Type != types.TypeVariation || v1.SKU != "101" {
		t.Errorf("variation 1 = %+v", v1)
	}
	if v1.ParentSKU != "100" {
		t.Errorf("variation parent = %q", v1.ParentSKU)
	}
	if v1.Name != "Facial Serum - 50ml" {
		t.Errorf("variation name = %q", v1.Name)
	}
	if v1.Price != "650.00" {
		t.Errorf("variation price = %q", v1.Price)
	}
	if v1.Gallery != "product_image_2.jpg" {
		t.Errorf("variation gallery = %q", v1.Gallery)
	}
	if v1.AttributeOptions != "50ml" {
		t.Errorf("variation option = %q", v1.AttributeOptions)
	}

	v2 := records[2]
	if v2.SKU != "102" || v2.Gallery != "product_image_3.jpg" {
		t.Errorf("variation 2 = %+v", v2)
	}
}

func TestAssembleVariationWithoutImage(t *testing.T) {
	a := New(testLogger)

	// Only one image downloaded; the second variation gets none.
	records, err := a.Assemble(variableSnapshot(), []string{"product_image_1.jpg", "product_image_2.jpg"})
	if err != nil {
		t.Fatalf("assemble error: %v", err)
	}
	if records[2].Gallery != "" {
		t.Errorf("expected empty gallery, got %q", records[2].Gallery)
	}
}

func TestAssembleNoVariants(t *testing.T) {
	a := New(testLogger)
	if _, err := a.Assemble(&types.ProductSnapshot{Title: "Ghost"}, nil); !errors.Is(err, types.ErrNoVariants) {
		t.Fatalf("expected ErrNoVariants, got %v", err)
	}
}

// --- Table Tests ---

func TestBuildTable(t *testing.T) {
	a := New(testLogger)
	records, err := a.Assemble(variableSnapshot(), []string{"product_image_1.jpg"})
	if err != nil {
		t.Fatalf("assemble error: %v", err)
	}

	tbl := BuildTable(records)
	if tbl.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", tbl.Len())
	}
	if len(tbl.Columns) != len(Columns()) {
		t.Fatalf("expected %d columns, got %d", len(Columns()), len(tbl.Columns))
	}

	if got := tbl.Get(0, ColType); got != "variable" {
		t.Errorf("type cell = %q", got)
	}
	if got := tbl.Get(0, ColStatus); got != "publish" {
		t.Errorf("status cell = %q", got)
	}
	if got := tbl.Get(0, ColStockStatus); got != "instock" {
		t.Errorf("stock cell = %q", got)
	}
	if got := tbl.Get(0, ColAttributeName); got != "Size" {
		t.Errorf("attribute cell = %q", got)
	}
	if got := tbl.Get(0, ColAttributeVisible); got != "1" {
		t.Errorf("visible cell = %q", got)
	}
	if got := tbl.Get(0, ColDefaultAttributes); got != "30ml" {
		t.Errorf("default cell = %q", got)
	}
	if got := tbl.Get(1, ColParentID); got != "100" {
		t.Errorf("parent cell = %q", got)
	}
	if got := tbl.Get(1, ColDefaultAttributes); got != "" {
		t.Errorf("variation default cell = %q", got)
	}
}

func TestBuildTableSimpleGallerySplit(t *testing.T) {
	rec := types.ProductRecord{
		Type:    types.TypeSimple,
		SKU:     "200",
		Name:    "Soap Bar",
		Gallery: "product_image_1.jpg, product_image_2.jpg, product_image_3.jpg",
	}

	tbl := BuildTable([]types.ProductRecord{rec})
	if got := tbl.Get(0, ColGalleryExtra); got != "product_image_2.jpg, product_image_3.jpg" {
		t.Errorf("gallery extra = %q", got)
	}
}

func TestCanonicalColumn(t *testing.T) {
	cases := []struct{ in, want string }{
		{ColAttributeOptions, "attributes"},
		{ColAttributeVisible, "attributes"},
		{ColAttributeVariation, "attributes"},
		{ColAttributeName, "attributes"},
		{ColSKU, "sku"},
	}
	for _, c := range cases {
		if got := CanonicalColumn(c.in); got != c.want {
			t.Errorf("CanonicalColumn(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

package assembler

import (
	"log/slog"
	"strings"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/types"
)

// Assembler converts product snapshots into catalog records.
type Assembler struct {
	logger *slog.Logger
}

// New creates a new Assembler.
func New(logger *slog.Logger) *Assembler {
	return &Assembler{
		logger: logger.With("component", "assembler"),
	}
}

// Assemble classifies a snapshot into catalog records. A snapshot with
// more than one variant yields one variable parent followed by one
// variation per remaining variant (the first variant is consumed by the
// parent); otherwise a single simple record is produced.
func (a *Assembler) Assemble(snap *types.ProductSnapshot, imageNames []string) ([]types.ProductRecord, error) {
	if len(snap.Variants) == 0 {
		return nil, types.ErrNoVariants
	}

	if !snap.HasVariants() {
		rec := a.simpleRecord(snap, imageNames)
		a.logger.Debug("assembled simple product", "sku", rec.SKU)
		return []types.ProductRecord{rec}, nil
	}

	records := make([]types.ProductRecord, 0, len(snap.Variants))
	parent := a.parentRecord(snap, imageNames)
	records = append(records, parent)

	// The first variant's SKU names the parent; the remaining variants
	// each become a variation row.
	for idx, variant := range snap.Variants[1:] {
		imageName := ""
		if idx+1 < len(imageNames) {
			imageName = imageNames[idx+1]
		}
		records = append(records, a.variationRecord(snap, variant, parent.SKU, imageName))
	}

	a.logger.Debug("assembled variable product",
		"sku", parent.SKU,
		"variations", len(records)-1,
	)
	return records, nil
}

// parentRecord builds the variable parent row. Its gallery holds every
// downloaded image; the first attribute option is the default.
func (a *Assembler) parentRecord(snap *types.ProductSnapshot, imageNames []string) types.ProductRecord {
	options := attributeOptions(snap.Variants)
	defaultOption := ""
	if len(options) > 0 {
		defaultOption = options[0]
	}

	return types.ProductRecord{
		Type:             types.TypeVariable,
		SKU:              snap.Variants[0].SKU,
		Name:             snap.Title,
		Price:            snap.Price,
		RegularPrice:     snap.Price,
		Description:      snap.Description,
		TagIDs:           strings.Join(snap.Tags, ", "),
		Gallery:          strings.Join(imageNames, ", "),
		Brand:            snap.Brand,
		Featured:         true,
		AttributeName:    snap.AttributeName,
		AttributeOptions: strings.Join(options, ", "),
		DefaultAttribute: defaultOption,
	}
}

// variationRecord builds one variation row. The gallery holds only the
// image at the variant's declaration position, when one was downloaded.
func (a *Assembler) variationRecord(snap *types.ProductSnapshot, variant types.Variant, parentSKU, imageName string) types.ProductRecord {
	price := variant.Price()
	return types.ProductRecord{
		Type:             types.TypeVariation,
		SKU:              variant.SKU,
		ParentSKU:        parentSKU,
		Name:             snap.Title + " - " + variant.PublicTitle,
		Price:            price,
		RegularPrice:     price,
		TagIDs:           strings.Join(snap.Tags, ", "),
		Gallery:          imageName,
		Brand:            snap.Brand,
		AttributeName:    snap.AttributeName,
		AttributeOptions: variant.PublicTitle,
	}
}

// simpleRecord builds the sole row for a product without variants.
func (a *Assembler) simpleRecord(snap *types.ProductSnapshot, imageNames []string) types.ProductRecord {
	return types.ProductRecord{
		Type:         types.TypeSimple,
		SKU:          snap.Variants[0].SKU,
		Name:         snap.Title,
		Price:        snap.Price,
		RegularPrice: snap.Price,
		Description:  snap.Description,
		TagIDs:       strings.Join(snap.Tags, ", "),
		Gallery:      strings.Join(imageNames, ", "),
		Brand:        snap.Brand,
		Featured:     true,
	}
}

// attributeOptions collects the non-empty variant titles, in declaration
// order.
func attributeOptions(variants []types.Variant) []string {
	options := make([]string, 0, len(variants))
	for _, v := range variants {
		if v.PublicTitle != "" {
			options = append(options, v.PublicTitle)
		}
	}
	return options
}

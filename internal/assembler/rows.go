package assembler

import (
	"strings"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/storage"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/types"
)

// BuildTable materializes records as a product table. Every schema
// column is present on every row; columns the record type does not use
// are empty, so a batch always has an identical column set regardless of
// the record types in it.
func BuildTable(records []types.ProductRecord) *storage.Table {
	tbl := storage.NewTable(Columns())
	for i := range records {
		tbl.Append(recordRow(&records[i]))
	}
	return tbl
}

// recordRow maps one record onto the schema columns.
func recordRow(rec *types.ProductRecord) []string {
	cells := map[string]string{
		ColType:              string(rec.Type),
		ColFeatured:          formatBool(rec.Featured),
		ColCatalogVisibility: "visible",
		ColTaxStatus:         "none",
		ColStockStatus:       "instock",
		ColBackorders:        "no",
		ColSoldIndividually:  formatBool(false),
		ColSKU:               rec.SKU,
		ColParentID:          rec.ParentSKU,
		ColName:              rec.Name,
		ColPrice:             rec.Price,
		ColRegularPrice:      rec.RegularPrice,
		ColDescription:       rec.Description,
		ColTagIDs:            rec.TagIDs,
		ColGallery:           rec.Gallery,
		ColBrand:             rec.Brand,
		ColStatus:            "publish",
		ColReviewsAllowed:    "1",
	}

	if rec.AttributeName != "" {
		cells[ColAttributeName] = rec.AttributeName
		cells[ColAttributeOptions] = rec.AttributeOptions
		cells[ColAttributeVisible] = "1"
		cells[ColAttributeVariation] = "1"
	}
	if rec.DefaultAttribute != "" {
		cells[ColDefaultAttributes] = rec.DefaultAttribute
	}
	if rec.Type == types.TypeSimple {
		refs := rec.GalleryRefs()
		if len(refs) > 1 {
			cells[ColGalleryExtra] = strings.Join(refs[1:], ", ")
		}
	}

	row := make([]string, 0, len(Columns()))
	for _, col := range Columns() {
		row = append(row, cells[col])
	}
	return row
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

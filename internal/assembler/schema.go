package assembler

import "strings"

// SchemaVersion identifies the embedded output schema. Bump when the
// column set changes.
const SchemaVersion = 1

// Column names of the product table. Repeated semantic roles (the four
// attribute columns) carry a numeric suffix internally so every column
// name is unique; the suffix is stripped on output (see CanonicalColumn)
// and restored on load (see storage.ReadTable).
const (
	ColType               = "type"
	ColFeatured           = "featured"
	ColCatalogVisibility  = "catalog_visibility"
	ColTaxStatus          = "tax_status"
	ColStockStatus        = "stock_status"
	ColBackorders         = "backorders"
	ColSoldIndividually   = "sold_individually"
	ColSKU                = "sku"
	ColParentID           = "parent_id"
	ColName               = "name"
	ColPrice              = "price"
	ColRegularPrice       = "regular_price"
	ColDescription        = "description"
	ColTagIDs             = "tag_ids"
	ColGallery            = "image_id/gallery_image_ids"
	ColGalleryExtra       = "gallery_image_ids"
	ColBrand              = "brand"
	ColStatus             = "status"
	ColReviewsAllowed     = "reviews_allowed"
	ColDownloadLimit      = "download_limit"
	ColDownloadExpiry     = "download_expiry"
	ColAttributeName      = "attributes"
	ColAttributeOptions   = "attributes.1"
	ColDefaultAttributes  = "default_attributes"
	ColAttributeVisible   = "attributes.2"
	ColAttributeVariation = "attributes.3"
)

// Columns returns the full fixed column set, in output order. Every
// assembled record carries every column; unset ones default to empty.
func Columns() []string {
	return []string{
		ColType,
		ColFeatured,
		ColCatalogVisibility,
		ColTaxStatus,
		ColStockStatus,
		ColBackorders,
		ColSoldIndividually,
		ColSKU,
		ColParentID,
		ColName,
		ColPrice,
		ColRegularPrice,
		ColDescription,
		ColTagIDs,
		ColGallery,
		ColGalleryExtra,
		ColBrand,
		ColStatus,
		ColReviewsAllowed,
		ColDownloadLimit,
		ColDownloadExpiry,
		ColAttributeName,
		ColAttributeOptions,
		ColDefaultAttributes,
		ColAttributeVisible,
		ColAttributeVariation,
	}
}

// DescriptionIndex is the fixed position of the description column, the
// insertion index used when re-joining the companion descriptions file.
func DescriptionIndex() int {
	for i, c := range Columns() {
		if c == ColDescription {
			return i
		}
	}
	return -1
}

// CanonicalColumn strips the disambiguating suffix from a repeated
// column role, producing the header name the importer expects.
func CanonicalColumn(name string) string {
	if idx := strings.LastIndex(name, "."); idx > 0 {
		suffix := name[idx+1:]
		if suffix == "1" || suffix == "2" || suffix == "3" {
			return name[:idx]
		}
	}
	return name
}

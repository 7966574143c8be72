package types

import "strconv"

// Variant is one purchasable option of a product, as declared in the
// page's embedded product JSON block.
type Variant struct {
	// SKU is the merchant's stock keeping unit for this variant.
	SKU string `json:"sku"`

	// ComparePriceCents is the variant price in cents.
	ComparePriceCents int64 `json:"compare_at_price"`

	// PublicTitle is the customer-facing option label (e.g. "Red / XL").
	PublicTitle string `json:"public_title"`
}

// Price returns the variant price as a decimal string.
func (v Variant) Price() string {
	whole := v.ComparePriceCents / 100
	frac := v.ComparePriceCents % 100
	if frac < 0 {
		frac = -frac
	}
	return strconv.FormatInt(whole, 10) + "." + pad2(frac)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// ProductSnapshot is the structured extraction of one product page.
// It lives only across one extraction→assembly call.
type ProductSnapshot struct {
	// SourceURL is the page this snapshot was extracted from.
	SourceURL string

	// Title is the product name.
	Title string

	// Price is the display price with currency symbol and thousands
	// separators already stripped.
	Price string

	// Brand is the product vendor.
	Brand string

	// Description is the long-form product description text.
	Description string

	// Tags are the merchant's product tags, in declaration order.
	Tags []string

	// AttributeName is the variation attribute label (e.g. "Size").
	// Extraction fails hard when it cannot be located.
	AttributeName string

	// Variants are the declared variants, in declaration order. The
	// embedded JSON block is the single source of truth for these.
	Variants []Variant

	// ImageURLs are the gallery image sources; index is gallery position.
	ImageURLs []string
}

// HasVariants reports whether the snapshot assembles into a variable
// product rather than a simple one.
func (s *ProductSnapshot) HasVariants() bool {
	return len(s.Variants) > 1
}

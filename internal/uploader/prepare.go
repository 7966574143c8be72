package uploader

import (
	"strings"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/assembler"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/storage"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/types"
)

// Attribute is one structured product attribute in API form.
type Attribute struct {
	Name      string
	Options   []string
	Visible   bool
	Variation bool
}

// DefaultAttribute is the option preselected on the storefront.
type DefaultAttribute struct {
	Name   string
	Option string
}

// Product is one catalog row prepared for the remote API.
type Product struct {
	Type              types.RecordType
	SKU               string
	ParentSKU         string
	Name              string
	RegularPrice      string
	Description       string
	Gallery           string
	Brand             string
	Attributes        []Attribute
	DefaultAttributes []DefaultAttribute
}

// GalleryRefs splits the gallery cell into its ordered references.
func (p *Product) GalleryRefs() []string {
	return types.SplitList(p.Gallery)
}

// Prepare converts the loaded product table into API-ready products,
// turning the flat attribute columns into structured attribute and
// default-attribute values.
func Prepare(tbl *storage.Table) []Product {
	products := make([]Product, 0, tbl.Len())

	for row := 0; row < tbl.Len(); row++ {
		p := Product{
			Type:         types.RecordType(tbl.Get(row, assembler.ColType)),
			SKU:          tbl.Get(row, assembler.ColSKU),
			ParentSKU:    tbl.Get(row, assembler.ColParentID),
			Name:         tbl.Get(row, assembler.ColName),
			RegularPrice: tbl.Get(row, assembler.ColRegularPrice),
			Description:  tbl.Get(row, assembler.ColDescription),
			Gallery:      tbl.Get(row, assembler.ColGallery),
			Brand:        tbl.Get(row, assembler.ColBrand),
		}

		attrName := tbl.Get(row, assembler.ColAttributeName)
		if attrName != "" {
			p.Attributes = []Attribute{{
				Name:      attrName,
				Options:   types.SplitList(tbl.Get(row, assembler.ColAttributeOptions)),
				Visible:   parseFlag(tbl.Get(row, assembler.ColAttributeVisible)),
				Variation: true,
			}}
		}

		if def := tbl.Get(row, assembler.ColDefaultAttributes); def != "" {
			p.DefaultAttributes = []DefaultAttribute{{
				Name:   attrName,
				Option: def,
			}}
		}

		products = append(products, p)
	}

	return products
}

func parseFlag(cell string) bool {
	cell = strings.TrimSpace(cell)
	return cell != "" && cell != "0" && !strings.EqualFold(cell, "false")
}

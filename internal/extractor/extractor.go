package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/fetcher"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/types"
)

// Field probes. Every probe except the attribute label degrades to an
// empty value when its target element is absent.
const (
	titleXPath       = "//article//div[contains(@class,'product-details')]/h1"
	priceXPath       = "//div[contains(@class,'price--compare-at')]//div[contains(@class,'money')]"
	brandXPath       = "//div[contains(@class,'product-vendor')]/a"
	descriptionXPath = "//article/div[contains(@class,'product-description')]"
	productJSONXPath = "//script[@data-section-type='static-product']"
	attributeXPath   = "//label[contains(@class,'form-field-title')]"
	imagesXPath      = "//img[@data-rimg='lazy']"
)

// productSection mirrors the page's embedded product JSON block, the
// single source of truth for variants and tags.
type productSection struct {
	Product struct {
		Tags     []string        `json:"tags"`
		Variants []types.Variant `json:"variants"`
	} `json:"product"`
}

// Extractor converts one fetched HTML document into a ProductSnapshot.
type Extractor struct {
	logger *slog.Logger
}

// New creates a new Extractor.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{
		logger: logger.With("component", "extractor"),
	}
}

// Extract probes the page for every snapshot field. It fails only when
// the mandatory attribute-name label cannot be located.
func (e *Extractor) Extract(page *fetcher.Page) (*types.ProductSnapshot, error) {
	doc, err := html.Parse(strings.NewReader(string(page.Body)))
	if err != nil {
		return nil, &types.ExtractionError{URL: page.URL, Field: "document", Err: err}
	}

	attributeName, err := e.extractAttribute(doc)
	if err != nil {
		return nil, &types.ExtractionError{URL: page.URL, Field: "attribute", Err: err}
	}

	snap := &types.ProductSnapshot{
		SourceURL:     page.URL,
		Title:         textOf(doc, titleXPath),
		Price:         normalizePrice(textOf(doc, priceXPath)),
		Brand:         attrOf(doc, brandXPath, "title"),
		Description:   textOf(doc, descriptionXPath),
		AttributeName: attributeName,
		ImageURLs:     e.extractImages(doc),
	}

	if err := e.extractProductJSON(doc, snap); err != nil {
		e.logger.Warn("product JSON block unreadable", "url", page.URL, "error", err)
	}

	e.logger.Debug("snapshot extracted",
		"url", page.URL,
		"title", snap.Title,
		"variants", len(snap.Variants),
		"images", len(snap.ImageURLs),
	)

	return snap, nil
}

// extractAttribute locates the mandatory variation attribute label.
func (e *Extractor) extractAttribute(doc *html.Node) (string, error) {
	node, err := htmlquery.Query(doc, attributeXPath)
	if err != nil {
		return "", err
	}
	if node == nil {
		return "", types.ErrMissingAttribute
	}
	name := strings.TrimSpace(htmlquery.InnerText(node))
	if name == "" {
		return "", types.ErrMissingAttribute
	}
	return name, nil
}

// extractProductJSON parses the embedded product data block into the
// snapshot's variants and tags.
func (e *Extractor) extractProductJSON(doc *html.Node, snap *types.ProductSnapshot) error {
	node, err := htmlquery.Query(doc, productJSONXPath)
	if err != nil {
		return err
	}
	if node == nil {
		return errors.New("product JSON block not found")
	}

	raw := strings.TrimSpace(htmlquery.InnerText(node))
	if raw == "" {
		return errors.New("product JSON block is empty")
	}

	var section productSection
	if err := json.Unmarshal([]byte(raw), &section); err != nil {
		return fmt.Errorf("decode product JSON: %w", err)
	}

	snap.Tags = section.Product.Tags
	snap.Variants = section.Product.Variants
	return nil
}

// extractImages collects the gallery image sources in gallery order.
func (e *Extractor) extractImages(doc *html.Node) []string {
	nodes, err := htmlquery.QueryAll(doc, imagesXPath)
	if err != nil {
		return nil
	}

	var sources []string
	for _, node := range nodes {
		src := htmlquery.SelectAttr(node, "src")
		if src == "" {
			src = htmlquery.SelectAttr(node, "data-src")
		}
		if src != "" {
			sources = append(sources, src)
		}
	}
	return sources
}

// textOf returns the trimmed inner text of the first XPath match, or "".
func textOf(doc *html.Node, expr string) string {
	node, err := htmlquery.Query(doc, expr)
	if err != nil || node == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(node))
}

// attrOf returns an attribute of the first XPath match, or "".
func attrOf(doc *html.Node, expr, attr string) string {
	node, err := htmlquery.Query(doc, expr)
	if err != nil || node == nil {
		return ""
	}
	return htmlquery.SelectAttr(node, attr)
}

// normalizePrice strips the currency symbol and thousands separators.
func normalizePrice(display string) string {
	display = strings.ReplaceAll(display, "$", "")
	display = strings.ReplaceAll(display, ",", "")
	return strings.TrimSpace(display)
}

package types

import "strings"

// RecordType classifies a catalog record.
type RecordType string

const (
	TypeSimple    RecordType = "simple"
	TypeVariable  RecordType = "variable"
	TypeVariation RecordType = "variation"
)

// ParentSKUMarker is appended to a variable parent's SKU before it is
// pushed to the remote catalog, keeping the locally assembled SKU out of
// the remote-created numeric ID namespace during parent→variation lookup.
const ParentSKUMarker = "v"

// ProductRecord is one row of the assembled catalog table.
type ProductRecord struct {
	Type         RecordType
	SKU          string
	ParentSKU    string // set for variations only; the parent's base SKU
	Name         string
	Price        string
	RegularPrice string
	Description  string
	TagIDs       string
	Gallery      string // comma-joined image identifiers, position 0 primary
	Brand        string
	Featured     bool

	// AttributeName/AttributeOptions describe the single variation
	// attribute; DefaultAttribute is the option preselected on the
	// storefront. All three are empty on simple records.
	AttributeName    string
	AttributeOptions string
	DefaultAttribute string
}

// GalleryRefs splits the gallery column into its ordered image identifiers.
func (r *ProductRecord) GalleryRefs() []string {
	return SplitList(r.Gallery)
}

// SplitList splits a comma-joined cell into trimmed, non-empty parts.
func SplitList(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.Split(cell, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ImagePathEntry maps one gallery reference of one record to a file on
// disk and, after the upload stage, to its remotely hosted URL.
type ImagePathEntry struct {
	SKU       string
	Slug      string // directory slug; variations borrow the parent's
	ImageID   string
	LocalPath string
	RemoteURL string
}

// Slugify converts a product name into its image directory name.
func Slugify(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

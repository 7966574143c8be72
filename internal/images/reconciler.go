package images

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/assembler"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/storage"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/types"
)

// Reconciler maps gallery references in the product table to files on
// disk, and writes remotely hosted URLs back into the table after the
// upload stage.
type Reconciler struct {
	baseDir string
	logger  *slog.Logger
}

// NewReconciler creates a reconciler rooted at the image directory.
func NewReconciler(baseDir string, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		baseDir: baseDir,
		logger:  logger.With("component", "reconciler"),
	}
}

// BuildPathTable derives one entry per gallery reference per record.
// Variations borrow the parent's name (looked up by parent_id) so
// sibling variants share one image directory. Duplicate routes are
// dropped keeping the last occurrence, then every file is renamed to
// <stem>_<sku>.jpg so SKUs sharing a source file name cannot overwrite
// each other.
func (r *Reconciler) BuildPathTable(tbl *storage.Table) []types.ImagePathEntry {
	var entries []types.ImagePathEntry

	for row := 0; row < tbl.Len(); row++ {
		name := tbl.Get(row, assembler.ColName)
		sku := tbl.Get(row, assembler.ColSKU)
		parentSKU := tbl.Get(row, assembler.ColParentID)

		if parentSKU != "" {
			if parentName := r.lookupParentName(tbl, parentSKU); parentName != "" {
				name = parentName
			}
		}

		slug := types.Slugify(name)
		for _, imageID := range types.SplitList(tbl.Get(row, assembler.ColGallery)) {
			entries = append(entries, types.ImagePathEntry{
				SKU:       sku,
				Slug:      slug,
				ImageID:   imageID,
				LocalPath: filepath.Join(r.baseDir, slug, imageID),
			})
		}
	}

	entries = dedupeRoutes(entries)
	r.logger.Info("paths table created", "entries", len(entries))

	return r.renameAll(entries)
}

// lookupParentName finds the parent record's name by SKU.
func (r *Reconciler) lookupParentName(tbl *storage.Table, parentSKU string) string {
	for row := 0; row < tbl.Len(); row++ {
		if tbl.Get(row, assembler.ColSKU) == parentSKU {
			return tbl.Get(row, assembler.ColName)
		}
	}
	return ""
}

// dedupeRoutes removes entries sharing a local path, keeping the last
// occurrence of each route.
func dedupeRoutes(entries []types.ImagePathEntry) []types.ImagePathEntry {
	last := make(map[string]int, len(entries))
	for i, e := range entries {
		last[e.LocalPath] = i
	}

	out := make([]types.ImagePathEntry, 0, len(last))
	for i, e := range entries {
		if last[e.LocalPath] == i {
			out = append(out, e)
		}
	}
	return out
}

// renameAll renames each entry's file to <stem>_<sku>.jpg inside its
// directory. An entry whose file cannot be renamed is dropped unless the
// destination already exists from an earlier run.
func (r *Reconciler) renameAll(entries []types.ImagePathEntry) []types.ImagePathEntry {
	out := make([]types.ImagePathEntry, 0, len(entries))
	for _, e := range entries {
		stem := strings.TrimSuffix(e.ImageID, filepath.Ext(e.ImageID))
		newPath := filepath.Join(r.baseDir, e.Slug, stem+"_"+e.SKU+".jpg")

		if err := os.Rename(e.LocalPath, newPath); err != nil {
			if _, statErr := os.Stat(newPath); statErr != nil {
				r.logger.Error("error renaming image", "from", e.LocalPath, "to", newPath, "error", err)
				continue
			}
			// Already renamed by a previous run.
		}

		e.LocalPath = newPath
		out = append(out, e)
	}
	return out
}

// BackfillURLs groups the entries' remote URLs by SKU and overwrites
// each matching record's gallery column with the comma-joined group.
// Empty URLs (failed uploads) are filtered out. Applying the backfill
// twice with the same entries produces the same table.
func (r *Reconciler) BackfillURLs(tbl *storage.Table, entries []types.ImagePathEntry) {
	grouped := make(map[string][]string)
	for _, e := range entries {
		if e.RemoteURL == "" {
			continue
		}
		grouped[e.SKU] = append(grouped[e.SKU], e.RemoteURL)
	}

	for row := 0; row < tbl.Len(); row++ {
		sku := tbl.Get(row, assembler.ColSKU)
		urls, ok := grouped[sku]
		if !ok {
			continue
		}
		tbl.Set(row, assembler.ColGallery, strings.Join(urls, ", "))
		r.logger.Debug("gallery updated", "sku", sku, "urls", len(urls))
	}
}

package images

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/assembler"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/fetcher"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/storage"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeFiles serves canned file bodies by absolute URL.
type fakeFiles struct {
	files map[string][]byte
}

func (f *fakeFiles) Fetch(_ context.Context, rawURL string) (*fetcher.Page, error) {
	body, ok := f.files[rawURL]
	if !ok {
		return nil, &types.FetchError{URL: rawURL, StatusCode: 404}
	}
	return &fetcher.Page{URL: rawURL, StatusCode: 200, Body: body}, nil
}

// --- Downloader Tests ---

func TestDownloadAll(t *testing.T) {
	files := &fakeFiles{files: map[string][]byte{
		"https://cdn.example/a.jpg": []byte("aaa"),
		"https://cdn.example/b.jpg": []byte("bbb"),
	}}
	d := NewDownloader(files, 2, testLogger)
	dest := t.TempDir()

	names, err := d.DownloadAll(context.Background(), []string{"//cdn.example/a.jpg", "https://cdn.example/b.jpg"}, dest)
	if err != nil {
		t.Fatalf("download error: %v", err)
	}

	want := []string{"product_image_1.jpg", "product_image_2.jpg"}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("name %d = %q, want %q", i, names[i], want[i])
		}
		if _, err := os.Stat(filepath.Join(dest, names[i])); err != nil {
			t.Errorf("file %s missing: %v", names[i], err)
		}
	}
}

func TestDownloadAllSkipsFailures(t *testing.T) {
	files := &fakeFiles{files: map[string][]byte{
		"https://cdn.example/b.jpg": []byte("bbb"),
	}}
	d := NewDownloader(files, 2, testLogger)

	names, err := d.DownloadAll(context.Background(), []string{"https://cdn.example/missing.jpg", "https://cdn.example/b.jpg"}, t.TempDir())
	if err != nil {
		t.Fatalf("download error: %v", err)
	}
	if len(names) != 1 || names[0] != "product_image_2.jpg" {
		t.Fatalf("names = %v", names)
	}
}

// --- Reconciler Tests ---

// productTable builds a parent+variation table sharing the parent's
// image directory.
func productTable() *storage.Table {
	tbl := storage.NewTable(assembler.Columns())
	tbl.Append(row(map[string]string{
		assembler.ColType:    "variable",
		assembler.ColSKU:     "100",
		assembler.ColName:    "Facial Serum",
		assembler.ColGallery: "product_image_1.jpg, product_image_2.jpg",
	}))
	tbl.Append(row(map[string]string{
		assembler.ColType:     "variation",
		assembler.ColSKU:      "101",
		assembler.ColParentID: "100",
		assembler.ColName:     "Facial Serum - 50ml",
		assembler.ColGallery:  "product_image_2.jpg",
	}))
	return tbl
}

func row(cells map[string]string) []string {
	out := make([]string, 0, len(assembler.Columns()))
	for _, col := range assembler.Columns() {
		out = append(out, cells[col])
	}
	return out
}

func seedImages(t *testing.T, baseDir string, names ...string) {
	t.Helper()
	dir := filepath.Join(baseDir, "Facial_Serum")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("img"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestBuildPathTable(t *testing.T) {
	baseDir := t.TempDir()
	seedImages(t, baseDir, "product_image_1.jpg", "product_image_2.jpg")

	r := NewReconciler(baseDir, testLogger)
	entries := r.BuildPathTable(productTable())

	// The parent's second reference and the variation's reference share
	// one route; the variation's wins, so its SKU claims the file.
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].SKU != "100" || filepath.Base(entries[0].LocalPath) != "product_image_1_100.jpg" {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].SKU != "101" || filepath.Base(entries[1].LocalPath) != "product_image_2_101.jpg" {
		t.Errorf("entry 1 = %+v", entries[1])
	}

	for _, e := range entries {
		if _, err := os.Stat(e.LocalPath); err != nil {
			t.Errorf("renamed file missing: %v", err)
		}
	}
}

func TestBuildPathTableVariationBorrowsParentSlug(t *testing.T) {
	baseDir := t.TempDir()
	seedImages(t, baseDir, "product_image_1.jpg", "product_image_2.jpg")

	r := NewReconciler(baseDir, testLogger)
	entries := r.BuildPathTable(productTable())

	for _, e := range entries {
		if e.Slug != "Facial_Serum" {
			t.Errorf("entry %s slug = %q, want Facial_Serum", e.SKU, e.Slug)
		}
	}
}

func TestBuildPathTableDropsMissingFiles(t *testing.T) {
	baseDir := t.TempDir()
	seedImages(t, baseDir, "product_image_1.jpg") // second image never downloaded

	r := NewReconciler(baseDir, testLogger)
	entries := r.BuildPathTable(productTable())

	if len(entries) != 1 || entries[0].SKU != "100" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestBuildPathTableIdempotentRename(t *testing.T) {
	baseDir := t.TempDir()
	seedImages(t, baseDir, "product_image_1.jpg", "product_image_2.jpg")

	r := NewReconciler(baseDir, testLogger)
	first := r.BuildPathTable(productTable())
	second := r.BuildPathTable(productTable())

	if len(second) != len(first) {
		t.Fatalf("second pass entries = %+v", second)
	}
	for i := range first {
		if second[i].LocalPath != first[i].LocalPath {
			t.Errorf("entry %d path changed: %q vs %q", i, first[i].LocalPath, second[i].LocalPath)
		}
	}
}

func TestBackfillURLs(t *testing.T) {
	baseDir := t.TempDir()
	seedImages(t, baseDir, "product_image_1.jpg", "product_image_2.jpg")

	r := NewReconciler(baseDir, testLogger)
	tbl := productTable()
	entries := r.BuildPathTable(tbl)

	entries[0].RemoteURL = "https://media.example/u1.jpg"
	entries[1].RemoteURL = "https://media.example/u2.jpg"

	r.BackfillURLs(tbl, entries)
	if got := tbl.Get(0, assembler.ColGallery); got != "https://media.example/u1.jpg" {
		t.Errorf("parent gallery = %q", got)
	}
	if got := tbl.Get(1, assembler.ColGallery); got != "https://media.example/u2.jpg" {
		t.Errorf("variation gallery = %q", got)
	}

	// A second application with the same entries must not change the table.
	r.BackfillURLs(tbl, entries)
	if got := tbl.Get(0, assembler.ColGallery); got != "https://media.example/u1.jpg" {
		t.Errorf("parent gallery after second pass = %q", got)
	}
}

func TestBackfillURLsSkipsFailedUploads(t *testing.T) {
	baseDir := t.TempDir()
	seedImages(t, baseDir, "product_image_1.jpg", "product_image_2.jpg")

	r := NewReconciler(baseDir, testLogger)
	tbl := productTable()
	entries := r.BuildPathTable(tbl)

	// Upload of entry 1 failed; its record keeps the local reference.
	entries[0].RemoteURL = "https://media.example/u1.jpg"

	r.BackfillURLs(tbl, entries)
	if got := tbl.Get(1, assembler.ColGallery); got != "product_image_2.jpg" {
		t.Errorf("variation gallery = %q", got)
	}
}

package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Artifact file names under <root>/tables/.
const (
	URLsTable       = "product-urls.csv"
	ProductsTable   = "products.csv"
	DescriptionsCSV = "descriptions.csv"
	UpdatedTable    = "products-updated.csv"
)

// FileStore owns the pipeline's on-disk layout: <root>/tables/*.csv for
// tabular artifacts, <root>/images/<slug>/ for downloads, <root>/logs/
// for stage logs.
type FileStore struct {
	root   string
	logger *slog.Logger
}

// NewFileStore creates the store, ensuring the layout directories exist.
func NewFileStore(root string, logger *slog.Logger) (*FileStore, error) {
	for _, dir := range []string{root, filepath.Join(root, "tables"), filepath.Join(root, "images"), filepath.Join(root, "logs")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return &FileStore{
		root:   root,
		logger: logger.With("component", "file_store"),
	}, nil
}

// TablePath returns the path of a tabular artifact.
func (s *FileStore) TablePath(name string) string {
	return filepath.Join(s.root, "tables", name)
}

// ImagesDir returns the image root directory.
func (s *FileStore) ImagesDir() string {
	return filepath.Join(s.root, "images")
}

// LogsDir returns the stage log directory.
func (s *FileStore) LogsDir() string {
	return filepath.Join(s.root, "logs")
}

// SaveTable writes a tabular artifact. headerOf, when non-nil,
// transforms column names on output.
func (s *FileStore) SaveTable(name string, tbl *Table, headerOf func(string) string) error {
	path := s.TablePath(name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := tbl.WriteCSV(f, headerOf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	s.logger.Info("table saved", "path", path, "rows", tbl.Len())
	return nil
}

// LoadTable reads a tabular artifact.
func (s *FileStore) LoadTable(name string) (*Table, error) {
	path := s.TablePath(name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	tbl, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return tbl, nil
}

package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrEmptyCatalog means discovery exhausted every prefix relaxation
	// without admitting a single URL. It aborts the crawl stage.
	ErrEmptyCatalog = errors.New("no catalog URLs found for any prefix")

	// ErrMissingAttribute means the mandatory attribute-name field could
	// not be located on a product page.
	ErrMissingAttribute = errors.New("attribute name not found on page")

	ErrInvalidURL = errors.New("invalid URL")
	ErrNoVariants = errors.New("product JSON block declares no variants")
)

// FetchError wraps a failed page or image fetch.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Retryable  bool
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// ExtractionError wraps a failed page extraction. Only the mandatory
// attribute probe produces one; every other probe degrades to empty.
type ExtractionError struct {
	URL   string
	Field string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error for %s (field=%q): %v", e.URL, e.Field, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// IntegrityError means a variation references a parent that was never
// created remotely. The variation is skipped, not retried.
type IntegrityError struct {
	SKU       string
	ParentSKU string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("variation %s references unresolved parent %s", e.SKU, e.ParentSKU)
}

// UploadError wraps a non-success response from the remote catalog or
// media API.
type UploadError struct {
	SKU        string
	StatusCode int
	Err        error
}

func (e *UploadError) Error() string {
	switch {
	case e.StatusCode > 0 && e.Err != nil:
		return fmt.Sprintf("upload error for %s (status %d): %v", e.SKU, e.StatusCode, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("upload error for %s (status %d)", e.SKU, e.StatusCode)
	default:
		return fmt.Sprintf("upload error for %s: %v", e.SKU, e.Err)
	}
}

func (e *UploadError) Unwrap() error { return e.Err }

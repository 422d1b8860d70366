package flipbook

import "image"

// PageSource opens paginated documents.
type PageSource interface {
	// Open opens the document at path. Failures are reported as *OpenError.
	Open(path string) (Document, error)
}

// Document is an opened paginated source.
//
// Rasterize may be called from a background goroutine while the render
// thread queries PageCount, so implementations must be safe for concurrent
// use.
type Document interface {
	// PageCount returns the number of pages; always positive.
	PageCount() int

	// Rasterize renders page at scale times its natural (72 DPI) size.
	Rasterize(page int, scale float64) (image.Image, error)

	// Close releases the document.
	Close() error
}

// Titler is implemented by documents that carry a title in their metadata.
type Titler interface {
	Title() string
}

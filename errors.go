package flipbook

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common errors returned by flipbook operations.
var (
	// ErrNoDocumentLoaded is returned by navigation when no document is open.
	ErrNoDocumentLoaded = errors.New("flipbook: no document loaded")

	// ErrPageOutOfRange is returned when a page index is outside [0, page_count).
	ErrPageOutOfRange = errors.New("flipbook: page index out of range")

	// ErrRasterize is wrapped by every failure reported by a Document's rasterizer.
	ErrRasterize = errors.New("flipbook: rasterize failed")

	// ErrTextureLoadFailed is wrapped by TextureLoadError.
	ErrTextureLoadFailed = errors.New("flipbook: texture load failed")

	// ErrOpen is wrapped by OpenError.
	ErrOpen = errors.New("flipbook: open failed")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("flipbook: invalid config")

	// ErrClosed is returned when a closed cache or viewer is used.
	ErrClosed = errors.New("flipbook: closed")
)

// OpenError reports a document that could not be opened.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("flipbook: open %s: %v", e.Path, e.Err)
}

// Unwrap returns both ErrOpen and the underlying cause so errors.Is
// matches either.
func (e *OpenError) Unwrap() []error { return []error{ErrOpen, e.Err} }

// TextureLoadError lists the page indices whose textures could not be
// produced. Slots for the other requested pages are still populated.
type TextureLoadError struct {
	// Failed maps each failed page index to its cause.
	Failed map[int]error
	// Loaded lists the page indices that were uploaded.
	Loaded []int
}

// Total reports whether no requested page could be loaded.
func (e *TextureLoadError) Total() bool { return len(e.Loaded) == 0 }

// Pages returns the failed page indices in ascending order.
func (e *TextureLoadError) Pages() []int {
	pages := make([]int, 0, len(e.Failed))
	for p := range e.Failed {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

func (e *TextureLoadError) Error() string {
	var b strings.Builder
	b.WriteString("flipbook: texture load failed for page")
	if len(e.Failed) > 1 {
		b.WriteString("s")
	}
	for i, p := range e.Pages() {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, " %d (%v)", p, e.Failed[p])
	}
	return b.String()
}

// Unwrap exposes ErrTextureLoadFailed and every per-page cause.
func (e *TextureLoadError) Unwrap() []error {
	errs := []error{ErrTextureLoadFailed}
	for _, p := range e.Pages() {
		errs = append(errs, e.Failed[p])
	}
	return errs
}

func rasterizeError(page int, err error) error {
	return fmt.Errorf("%w: page %d: %w", ErrRasterize, page, err)
}

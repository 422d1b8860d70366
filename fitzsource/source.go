// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package fitzsource opens PDF (and other MuPDF-supported) documents for
// flipbook through github.com/gen2brain/go-fitz.
//
// go-fitz needs cgo and links MuPDF.
package fitzsource

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/gen2brain/go-fitz"

	"github.com/gogpu/flipbook"
)

// pointsPerInch is the natural resolution of a PDF page.
const pointsPerInch = 72

// ErrDocumentClosed is returned by a Document used after Close.
var ErrDocumentClosed = errors.New("fitzsource: document closed")

// Source is a flipbook.PageSource backed by MuPDF.
type Source struct{}

// Open opens the document at path.
func (Source) Open(path string) (flipbook.Document, error) {
	return Open(path)
}

// Document is an open MuPDF document.
type Document struct {
	mu     sync.Mutex
	doc    *fitz.Document
	pages  int
	title  string
	closed bool
}

// Open opens the document at path. Errors are *flipbook.OpenError.
func Open(path string) (*Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, &flipbook.OpenError{Path: path, Err: err}
	}
	d := &Document{doc: doc, pages: doc.NumPage()}
	if meta := doc.Metadata(); meta != nil {
		d.title = metadataString(meta["title"])
	}
	flipbook.Logger().Debug("fitzsource: opened", "path", path, "pages", d.pages)
	return d, nil
}

// metadataString trims a MuPDF metadata value, which arrives as a
// NUL-padded C buffer.
func metadataString(v string) string {
	if i := strings.IndexByte(v, 0); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return d.pages }

// Title returns the title from the document metadata, or "".
func (d *Document) Title() string { return d.title }

// Rasterize renders page at scale times 72 DPI.
func (d *Document) Rasterize(page int, scale float64) (image.Image, error) {
	if page < 0 || page >= d.pages {
		return nil, fmt.Errorf("%w: %d of %d", flipbook.ErrPageOutOfRange, page, d.pages)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("fitzsource: scale %v must be positive", scale)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDocumentClosed
	}
	img, err := d.doc.ImageDPI(page, pointsPerInch*scale)
	if err != nil {
		return nil, fmt.Errorf("fitzsource: page %d: %w", page, err)
	}
	return img, nil
}

// Close releases the document. A Rasterize in progress finishes first.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.doc.Close()
}

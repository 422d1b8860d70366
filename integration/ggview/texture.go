// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggview

import (
	"errors"
	"image"
	"sync/atomic"

	"golang.org/x/image/draw"

	"github.com/gogpu/flipbook"
)

// ErrEmptyImage is returned when uploading an image with no pixels.
var ErrEmptyImage = errors.New("ggview: empty image")

// Texture is a page image owned by the surface side.
type Texture struct {
	img *image.RGBA
	up  *Uploader
}

// Size returns the texture size in pixels.
func (t *Texture) Size() (int, int) {
	if t.img == nil {
		return 0, 0
	}
	return t.img.Rect.Dx(), t.img.Rect.Dy()
}

// Image returns the pixels, or nil after Release.
func (t *Texture) Image() *image.RGBA { return t.img }

// Release drops the pixels. It is safe to call more than once.
func (t *Texture) Release() {
	if t.img == nil {
		return
	}
	t.img = nil
	t.up.live.Add(-1)
}

// Uploader copies prepared page images into textures.
type Uploader struct {
	live atomic.Int64
}

var _ flipbook.Uploader = (*Uploader)(nil)

// NewUploader returns an Uploader.
func NewUploader() *Uploader { return &Uploader{} }

// Upload copies img into a new Texture with its origin at (0, 0).
func (u *Uploader) Upload(img *image.RGBA) (flipbook.Texture, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	u.live.Add(1)
	return &Texture{img: dst, up: u}, nil
}

// Live returns the number of textures not yet released.
func (u *Uploader) Live() int { return int(u.live.Load()) }

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggview

import (
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/flipbook"
)

// DefaultStrips is the number of vertical strips a page is drawn with.
const DefaultStrips = 64

// Surface draws flipbook frames into a gg.Context.
//
// Page quads are composed into an offscreen frame, which is copied into
// the context before the overlay is drawn or the frame is presented. Call
// Begin with the context of each frame before handing the surface to the
// viewer. Surface is not safe for concurrent use.
type Surface struct {
	dc         *gg.Context
	camera     flipbook.Camera
	strips     int
	background color.RGBA
	present    func(*gg.Context) error
	frames     int

	frame   *image.RGBA
	flushed bool

	fonts fonts

	flatSrc *image.RGBA
	flatBuf *gg.ImageBuf
}

// SurfaceOption configures a Surface.
type SurfaceOption func(*Surface)

// WithCamera sets the camera the page quads are projected with.
func WithCamera(c flipbook.Camera) SurfaceOption {
	return func(s *Surface) {
		s.camera = c
	}
}

// WithStrips sets how many vertical strips a page is split into. More
// strips give a smoother perspective at a higher drawing cost.
func WithStrips(n int) SurfaceOption {
	return func(s *Surface) {
		if n > 0 {
			s.strips = n
		}
	}
}

// WithBackground sets the clear colour.
func WithBackground(c color.Color) SurfaceOption {
	return func(s *Surface) {
		s.background = color.RGBAModel.Convert(c).(color.RGBA)
	}
}

// WithFace sets the font face of the overlay. Without it the overlay uses
// Go Regular.
func WithFace(face text.Face) SurfaceOption {
	return func(s *Surface) {
		s.fonts.face = face
		s.fonts.loaded = true
	}
}

// WithPresent sets a function called by Present with the finished frame.
func WithPresent(fn func(*gg.Context) error) SurfaceOption {
	return func(s *Surface) {
		s.present = fn
	}
}

// NewSurface creates a surface with the default camera.
func NewSurface(opts ...SurfaceOption) *Surface {
	s := &Surface{
		camera:     flipbook.DefaultCamera(),
		strips:     DefaultStrips,
		background: color.RGBA{A: 255},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin sets the context the next frame is drawn into.
func (s *Surface) Begin(dc *gg.Context) {
	s.dc = dc
	s.flushed = true
}

// Context returns the current frame context.
func (s *Surface) Context() *gg.Context { return s.dc }

// Frames returns the number of frames presented.
func (s *Surface) Frames() int { return s.frames }

// Clear starts a frame filled with the background colour.
func (s *Surface) Clear() {
	if s.dc == nil {
		return
	}
	r := image.Rect(0, 0, s.dc.Width(), s.dc.Height())
	if s.frame == nil || s.frame.Rect != r {
		s.frame = image.NewRGBA(r)
	}
	draw.Draw(s.frame, r, image.NewUniform(s.background), image.Point{}, draw.Src)
	s.flushed = false
}

// Present copies the frame into the context and finishes it.
func (s *Surface) Present() error {
	s.flush()
	s.frames++
	if s.present == nil || s.dc == nil {
		return nil
	}
	return s.present(s.dc)
}

func (s *Surface) flush() {
	if s.flushed || s.dc == nil || s.frame == nil {
		return
	}
	s.flushed = true
	s.dc.DrawImage(gg.ImageBufFromImage(s.frame), 0, 0)
}

// DrawQuad draws a page quad in perspective. Quads with no texture, or
// with a texture from another uploader, are skipped.
func (s *Surface) DrawQuad(q flipbook.Quad) {
	if s.flushed || q.Texture == nil {
		return
	}
	tex, ok := q.Texture.(*Texture)
	if !ok || tex.img == nil {
		return
	}
	w, h := float64(s.frame.Rect.Dx()), float64(s.frame.Rect.Dy())
	tw, th := tex.img.Rect.Dx(), tex.img.Rect.Dy()

	n := min(s.strips, tw)
	span := q.Rect.X1 - q.Rect.X0
	for i := range n {
		c0, c1 := i*tw/n, (i+1)*tw/n
		if c1 <= c0 {
			continue
		}
		x0 := q.Rect.X0 + span*float64(c0)/float64(tw)
		x1 := q.Rect.X0 + span*float64(c1)/float64(tw)
		st, ok := s.project(q.Model, x0, x1, q.Rect.Y0, q.Rect.Y1, w, h)
		if !ok {
			continue
		}
		// Source columns c0..c1 land on screen columns left..right; a
		// strip turned past 90 degrees has right < left and is drawn
		// mirrored, showing the back of the page.
		sx := (st.right - st.left) / float64(c1-c0)
		sy := (st.bottom - st.top) / float64(th)
		aff := f64.Aff3{
			sx, 0, st.left - sx*float64(c0),
			0, sy, st.top,
		}
		src := image.Rect(c0, 0, c1, th)
		draw.ApproxBiLinear.Transform(s.frame, aff, tex.img, src, draw.Over, nil)
	}
}

type strip struct {
	left, right float64
	top, bottom float64
}

// project returns where the book-space strip between x0 and x1 lands on
// screen. The strip's edges stay vertical after a rotation about the
// spine, so its top and bottom are averaged across the two edges.
func (s *Surface) project(m flipbook.Matrix, x0, x1, y0, y1, w, h float64) (strip, bool) {
	var sx, top, bottom [2]float64
	for i, x := range [2]float64{x0, x1} {
		tx, ty, ok := s.camera.Project(m.TransformPoint(flipbook.Vec3{X: x, Y: y1}), w, h)
		if !ok {
			return strip{}, false
		}
		_, by, ok := s.camera.Project(m.TransformPoint(flipbook.Vec3{X: x, Y: y0}), w, h)
		if !ok {
			return strip{}, false
		}
		sx[i], top[i], bottom[i] = tx, ty, by
	}
	st := strip{
		left:   sx[0],
		right:  sx[1],
		top:    (top[0] + top[1]) / 2,
		bottom: (bottom[0] + bottom[1]) / 2,
	}
	// Edge-on strips cover no pixels.
	if math.Abs(st.right-st.left) < 1e-3 || st.bottom-st.top < 1 {
		return strip{}, false
	}
	return st, true
}

// DrawFlat draws img, the flat view of a spread, at the frame origin. The
// converted buffer is reused while img stays the same.
func (s *Surface) DrawFlat(img *image.RGBA) {
	if s.dc == nil || img == nil {
		return
	}
	if img != s.flatSrc {
		s.flatSrc = img
		s.flatBuf = gg.ImageBufFromImage(img)
	}
	s.dc.DrawImage(s.flatBuf, 0, 0)
}

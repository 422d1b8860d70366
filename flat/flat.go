package flat

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Background is the colour around and between the pages.
var Background = color.RGBA{R: 30, G: 30, B: 30, A: 255}

// ErrEmptyTarget is returned for a non-positive target size.
var ErrEmptyTarget = errors.New("flat: empty target size")

// Rasterizer renders one page at a scale factor.
type Rasterizer interface {
	Rasterize(page int, scale float64) (image.Image, error)
}

// PageError records which page failed to render.
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("flat: page %d: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// Compose renders pages (at most two, left then right) at scale and draws
// them into a new width x height image. Negative page indices are skipped.
func Compose(ctx context.Context, r Rasterizer, pages []int, width, height int, scale float64) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyTarget
	}
	if len(pages) > 2 {
		pages = pages[:2]
	}

	srcs := make([]image.Image, 0, len(pages))
	for _, p := range pages {
		if p < 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := r.Rasterize(p, scale)
		if err != nil {
			return nil, &PageError{Page: p, Err: err}
		}
		srcs = append(srcs, img)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	half := width / 2
	for i, src := range srcs {
		fit := Fit(src.Bounds().Size(), image.Pt(half, height))
		// Pages meet at the middle: the left one is right-aligned in its
		// half, the right one left-aligned.
		x := half - fit.X
		if i == 1 {
			x = half
		}
		y := (height - fit.Y) / 2
		rect := image.Rect(x, y, x+fit.X, y+fit.Y)
		draw.CatmullRom.Scale(dst, rect, src, src.Bounds(), draw.Over, nil)
	}
	return dst, nil
}

// Fit returns the largest size with the aspect ratio of src that fits in
// box. Degenerate inputs give the zero size.
func Fit(src, box image.Point) image.Point {
	if src.X <= 0 || src.Y <= 0 || box.X <= 0 || box.Y <= 0 {
		return image.Point{}
	}
	// Compare src.X/src.Y against box.X/box.Y without floating point.
	if src.X*box.Y >= box.X*src.Y {
		return image.Pt(box.X, max(1, src.Y*box.X/src.X))
	}
	return image.Pt(max(1, src.X*box.Y/src.Y), box.Y)
}

package flipbook

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/flipbook/internal/pool"
)

// Slot identifies one of the two page positions of a spread.
type Slot int

// Spread slots.
const (
	SlotLeft Slot = iota
	SlotRight

	slotCount = 2
)

func (s Slot) String() string {
	switch s {
	case SlotLeft:
		return "left"
	case SlotRight:
		return "right"
	default:
		return "unknown"
	}
}

// Texture is a drawable page image owned by the TextureCache.
type Texture interface {
	Size() (width, height int)
	// Release frees the texture's resources. The texture must not be used
	// afterwards.
	Release()
}

// Uploader turns prepared pixels into a Texture. Upload must not retain img
// after returning; the cache recycles the buffer.
type Uploader interface {
	Upload(img *image.RGBA) (Texture, error)
}

// Prepare resizes a rasterized page to a size x size texture buffer taken
// from p. The aspect ratio is not preserved: the quad it is mapped onto
// restores the page's proportions.
func Prepare(src image.Image, size int, p *pool.Pool) *image.RGBA {
	var dst *image.RGBA
	if p != nil {
		dst = p.Get(size, size)
	}
	if dst == nil {
		dst = image.NewRGBA(image.Rect(0, 0, size, size))
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

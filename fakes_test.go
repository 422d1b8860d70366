package flipbook

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
)

// fakeDoc is an in-memory Document whose pages are flat colours.
type fakeDoc struct {
	mu     sync.Mutex
	pages  int
	fail   map[int]error
	gate   chan struct{} // when set, Rasterize waits for a receive
	calls  []int
	closed bool
}

func newFakeDoc(pages int) *fakeDoc {
	return &fakeDoc{pages: pages, fail: make(map[int]error)}
}

func (d *fakeDoc) PageCount() int { return d.pages }

func (d *fakeDoc) Rasterize(page int, scale float64) (image.Image, error) {
	if d.gate != nil {
		<-d.gate
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, page)
	if err := d.fail[page]; err != nil {
		return nil, err
	}
	w, h := int(8*scale), int(11*scale)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	c := pageColor(page)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img, nil
}

func (d *fakeDoc) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDoc) Title() string { return "Fake Book" }

func (d *fakeDoc) rasterized() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.calls...)
}

func pageColor(page int) color.RGBA {
	return color.RGBA{R: uint8(10 * (page + 1)), G: 100, B: 200, A: 255}
}

// fakeSource opens fakeDocs by path.
type fakeSource struct {
	docs map[string]*fakeDoc
}

func (s *fakeSource) Open(path string) (Document, error) {
	d, ok := s.docs[path]
	if !ok {
		return nil, &OpenError{Path: path, Err: errors.New("no such file")}
	}
	return d, nil
}

// fakeTexture remembers the colour of its top-left pixel so tests can tell
// which page it came from.
type fakeTexture struct {
	id       int
	w, h     int
	color    color.RGBA
	released bool
}

func (t *fakeTexture) Size() (int, int) { return t.w, t.h }
func (t *fakeTexture) Release()         { t.released = true }

type fakeUploader struct {
	next     int
	fail     bool
	textures []*fakeTexture
}

func (u *fakeUploader) Upload(img *image.RGBA) (Texture, error) {
	if u.fail {
		return nil, fmt.Errorf("device lost")
	}
	u.next++
	t := &fakeTexture{id: u.next, w: img.Rect.Dx(), h: img.Rect.Dy(), color: img.RGBAAt(0, 0)}
	u.textures = append(u.textures, t)
	return t, nil
}

// live counts textures that were uploaded and not yet released.
func (u *fakeUploader) live() int {
	n := 0
	for _, t := range u.textures {
		if !t.released {
			n++
		}
	}
	return n
}

package pool

import (
	"image"
	"image/color"
	"sync"
	"testing"
)

func TestPool_GetPut(t *testing.T) {
	p := New(4)

	buf1 := p.Get(16, 8)
	if buf1 == nil {
		t.Fatal("Get returned nil")
	}
	if got := buf1.Bounds(); got != image.Rect(0, 0, 16, 8) {
		t.Errorf("bounds = %v, want 16x8", got)
	}

	buf1.Set(0, 0, color.RGBA{255, 128, 64, 200})
	p.Put(buf1)
	if got := p.Len(16, 8); got != 1 {
		t.Errorf("Len after Put = %d, want 1", got)
	}

	buf2 := p.Get(16, 8)
	if buf2 != buf1 {
		t.Error("Get did not reuse the pooled buffer")
	}
	if c := buf2.RGBAAt(0, 0); c != (color.RGBA{}) {
		t.Errorf("reused buffer not cleared: %v", c)
	}
}

func TestPool_InvalidDimensions(t *testing.T) {
	p := New(1)
	for _, dims := range [][2]int{{0, 10}, {10, 0}, {-1, 5}} {
		if got := p.Get(dims[0], dims[1]); got != nil {
			t.Errorf("Get(%d, %d) = %v, want nil", dims[0], dims[1], got.Bounds())
		}
	}
}

func TestPool_BucketLimit(t *testing.T) {
	p := New(2)
	for range 5 {
		p.Put(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	}
	if got := p.Len(4, 4); got != 2 {
		t.Errorf("Len = %d, want 2", got)
	}
}

func TestPool_RejectsOffsetBuffers(t *testing.T) {
	p := New(0)
	p.Put(image.NewRGBA(image.Rect(2, 2, 6, 6)))
	p.Put(nil)
	if got := p.Len(4, 4); got != 0 {
		t.Errorf("Len = %d, want 0", got)
	}
}

func TestPool_Concurrent(t *testing.T) {
	p := New(8)
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				p.Put(p.Get(8, 8))
			}
		}()
	}
	wg.Wait()
	if got := p.Len(8, 8); got > 8 {
		t.Errorf("Len = %d, exceeds limit", got)
	}
}

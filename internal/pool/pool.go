// Package pool recycles RGBA pixel buffers between texture loads.
package pool

import (
	"image"
	"sync"
)

// Pool is a thread-safe pool of *image.RGBA grouped by dimensions.
//
// Every page texture has the same size, so after the first spread is loaded
// each reload reuses the buffers of the spread it replaces.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[key][]*image.RGBA
	maxSize int // max buffers per bucket
}

type key struct {
	width  int
	height int
}

// New creates a pool keeping at most maxPerBucket buffers of each size.
// A maxPerBucket of 0 means unlimited.
func New(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[key][]*image.RGBA),
		maxSize: maxPerBucket,
	}
}

// Get returns a zeroed width x height buffer, reusing a pooled one when
// available. It returns nil for non-positive dimensions.
func (p *Pool) Get(width, height int) *image.RGBA {
	if width <= 0 || height <= 0 {
		return nil
	}
	k := key{width: width, height: height}

	p.mu.Lock()
	bucket := p.buckets[k]
	if n := len(bucket); n > 0 {
		img := bucket[n-1]
		p.buckets[k] = bucket[:n-1]
		p.mu.Unlock()
		clear(img.Pix)
		return img
	}
	p.mu.Unlock()

	return image.NewRGBA(image.Rect(0, 0, width, height))
}

// Put returns img to the pool. Buffers whose origin is not (0, 0) are
// dropped, as are buffers arriving at a full bucket.
func (p *Pool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Min != (image.Point{}) {
		return
	}
	k := key{width: img.Rect.Dx(), height: img.Rect.Dy()}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[k]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[k] = append(bucket, img)
}

// Len returns the number of pooled buffers of the given size.
func (p *Pool) Len(width, height int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets[key{width: width, height: height}])
}

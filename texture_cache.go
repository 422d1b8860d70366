package flipbook

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/flipbook/internal/pool"
)

// TextureCache owns the textures of the visible spread: at most one per
// slot, replaced (and the old one released) whenever a load commits.
//
// Loads come in two forms. Load rasterizes on the calling goroutine.
// Request rasterizes in the background and hands the pixels back through
// Poll, which uploads them on the render thread. Every load takes a new
// generation number; results from an older generation are dropped.
//
// Apart from the background rasterizing, TextureCache is NOT safe for
// concurrent use: all methods must be called from the render thread.
type TextureCache struct {
	cfg      Config
	uploader Uploader
	pool     *pool.Pool

	doc   Document
	slots [slotCount]Texture
	pages [slotCount]int

	gen     atomic.Uint64
	pending bool
	results chan loadResult

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// loadResult carries prepared pixels from a background load.
type loadResult struct {
	gen    uint64
	pages  []int
	images [slotCount]*image.RGBA
	failed map[int]error
}

// NewTextureCache creates an empty cache uploading through uploader.
func NewTextureCache(uploader Uploader, cfg Config) *TextureCache {
	ctx, cancel := context.WithCancel(context.Background())
	c := &TextureCache{
		cfg:      cfg,
		uploader: uploader,
		pool:     pool.New(2 * slotCount),
		results:  make(chan loadResult, 4),
		ctx:      ctx,
		cancel:   cancel,
	}
	c.pages = [slotCount]int{-1, -1}
	return c
}

// Bind switches the cache to doc, dropping current textures and any load
// in flight. A nil doc unbinds.
func (c *TextureCache) Bind(doc Document) {
	c.Release()
	c.doc = doc
}

// Texture returns the texture bound to slot, or nil when the slot is empty.
func (c *TextureCache) Texture(slot Slot) Texture {
	if slot < 0 || slot >= slotCount {
		return nil
	}
	return c.slots[slot]
}

// Page returns the page shown in slot.
func (c *TextureCache) Page(slot Slot) (int, bool) {
	if slot < 0 || slot >= slotCount || c.slots[slot] == nil {
		return 0, false
	}
	return c.pages[slot], true
}

// Pending reports whether a background load of the latest generation has
// not been committed yet.
func (c *TextureCache) Pending() bool { return c.pending }

// Generation returns the generation of the most recent load request.
func (c *TextureCache) Generation() uint64 { return c.gen.Load() }

// Load rasterizes, resizes and uploads indices into the slots in order
// (left, then right) and waits for the result. Out-of-range indices leave
// their slot empty. When some pages fail the others are still shown and a
// *TextureLoadError is returned; when every requested page fails the
// previous textures are kept.
func (c *TextureCache) Load(ctx context.Context, indices []int) error {
	if c.closed {
		return ErrClosed
	}
	if c.doc == nil {
		return ErrNoDocumentLoaded
	}
	gen := c.gen.Add(1)
	c.pending = false
	c.discard()
	return c.commit(c.rasterize(ctx, c.doc, gen, indices))
}

// Request starts a background load of indices and returns its generation.
// Any earlier request still in flight is superseded. The result is
// committed by Poll or Await.
func (c *TextureCache) Request(indices []int) (uint64, error) {
	if c.closed {
		return 0, ErrClosed
	}
	if c.doc == nil {
		return 0, ErrNoDocumentLoaded
	}
	gen := c.gen.Add(1)
	c.pending = true
	doc := c.doc
	indices = append([]int(nil), indices...)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		res := c.rasterize(c.ctx, doc, gen, indices)
		if c.gen.Load() != gen {
			c.recycle(res)
			return
		}
		select {
		case c.results <- res:
		case <-c.ctx.Done():
			c.recycle(res)
		}
	}()
	Logger().Debug("flipbook: texture load requested", "gen", gen, "pages", indices)
	return gen, nil
}

// Poll commits a finished background load without blocking. done is true
// when the latest request was committed during this call; err is its
// *TextureLoadError, if any.
func (c *TextureCache) Poll() (done bool, err error) {
	for {
		select {
		case res := <-c.results:
			if ok, err := c.accept(res); ok {
				return true, err
			}
		default:
			return false, nil
		}
	}
}

// Await blocks until the latest request is committed or ctx is done.
func (c *TextureCache) Await(ctx context.Context) error {
	for c.pending {
		select {
		case res := <-c.results:
			if ok, err := c.accept(res); ok {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Release frees both slots and supersedes any load in flight.
func (c *TextureCache) Release() {
	c.gen.Add(1)
	c.pending = false
	c.discard()
	for s := range Slot(slotCount) {
		c.replace(s, nil, -1)
	}
}

// Close releases all textures and waits for background loads to stop.
func (c *TextureCache) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.Release()
	c.cancel()
	c.wg.Wait()
	c.discard()
	return nil
}

// discard drops queued results without blocking. Superseded loads that
// have not finished yet skip the queue themselves.
func (c *TextureCache) discard() {
	for {
		select {
		case res := <-c.results:
			c.recycle(res)
		default:
			return
		}
	}
}

// rasterize produces the pixels for a load. It runs on the render thread
// for Load and on a background goroutine for Request, so it touches only
// its arguments, the pool and the generation counter.
func (c *TextureCache) rasterize(ctx context.Context, doc Document, gen uint64, indices []int) loadResult {
	res := loadResult{
		gen:    gen,
		pages:  indices[:min(len(indices), slotCount)],
		failed: make(map[int]error),
	}
	count := doc.PageCount()
	for i, page := range res.pages {
		if page < 0 || page >= count {
			continue
		}
		if c.gen.Load() != gen {
			// Superseded; the result will be dropped.
			break
		}
		if err := ctx.Err(); err != nil {
			res.failed[page] = err
			continue
		}
		img, err := doc.Rasterize(page, c.cfg.RenderScale)
		if err != nil {
			res.failed[page] = rasterizeError(page, err)
			continue
		}
		res.images[i] = Prepare(img, c.cfg.TextureSize, c.pool)
	}
	return res
}

func (c *TextureCache) accept(res loadResult) (bool, error) {
	if res.gen != c.gen.Load() {
		Logger().Debug("flipbook: dropping superseded texture load", "gen", res.gen, "latest", c.gen.Load())
		c.recycle(res)
		return false, nil
	}
	c.pending = false
	return true, c.commit(res)
}

// commit uploads res and swaps it into the slots.
func (c *TextureCache) commit(res loadResult) error {
	var (
		textures [slotCount]Texture
		loaded   []int
	)
	for i, page := range res.pages {
		img := res.images[i]
		if img == nil {
			continue
		}
		tex, err := c.uploader.Upload(img)
		c.pool.Put(img)
		if err != nil {
			res.failed[page] = fmt.Errorf("upload page %d: %w", page, err)
			continue
		}
		textures[i] = tex
		loaded = append(loaded, page)
	}

	if len(res.failed) > 0 && len(loaded) == 0 {
		Logger().Warn("flipbook: texture load failed, keeping previous spread", "pages", res.pages)
		return &TextureLoadError{Failed: res.failed}
	}

	for s := range Slot(slotCount) {
		page := -1
		if textures[s] != nil {
			page = res.pages[s]
		}
		c.replace(s, textures[s], page)
	}

	if len(res.failed) > 0 {
		err := &TextureLoadError{Failed: res.failed, Loaded: loaded}
		Logger().Warn("flipbook: partial texture load", "err", err)
		return err
	}
	Logger().Debug("flipbook: textures loaded", "gen", res.gen, "pages", loaded)
	return nil
}

func (c *TextureCache) replace(slot Slot, tex Texture, page int) {
	if old := c.slots[slot]; old != nil {
		old.Release()
	}
	c.slots[slot] = tex
	c.pages[slot] = page
}

func (c *TextureCache) recycle(res loadResult) {
	for _, img := range res.images {
		c.pool.Put(img)
	}
}

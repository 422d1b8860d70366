package flipbook

import (
	"context"
	"errors"
	"time"
)

// Event is an input event for the render loop.
type Event interface{}

// Click is a mouse press at viewport coordinates.
type Click struct {
	X, Y float64
}

// Flip starts a flip of one side, as a click on that side would.
type Flip struct {
	Side Side
}

// SwapPages shows the other page of the current pair. It is ignored while
// a flip is running.
type SwapPages struct{}

// Quit ends the render loop.
type Quit struct{}

// Resize reports a new viewport size in pixels.
type Resize struct {
	Width, Height int
}

// Quad is one page draw: the page rectangle in book space, the model
// transform applied to it and the texture mapped onto it. A nil Texture
// means the slot is empty.
type Quad struct {
	Slot    Slot
	Texture Texture
	Rect    Rect
	Model   Matrix
}

// Surface is the frame buffer the render loop draws into.
type Surface interface {
	Clear()
	DrawQuad(q Quad)
	Present() error
}

// Overlay is the 2D information drawn over a frame.
type Overlay struct {
	Title     string
	Spread    Spread
	PageCount int
	Loading   bool
	Notice    string
}

// OverlayDrawer is implemented by surfaces that can draw an Overlay. The
// loop calls DrawOverlay after the quads and before Present.
type OverlayDrawer interface {
	DrawOverlay(o Overlay)
}

// Loop is the fixed-rate driver of the 3D book view. Each tick drains the
// event queue, advances the flip animation by one step, and draws both page
// quads.
//
// Post may be called from any goroutine; everything else belongs to the
// render thread.
type Loop struct {
	cfg   Config
	nav   *Navigator
	cache *TextureCache
	anim  *Animator
	pacer *Pacer

	events  chan Event
	running bool
	width   float64
	height  float64

	onError  func(error)
	decorate func(*Overlay)
}

// NewLoop creates a stopped loop over nav and cache.
func NewLoop(nav *Navigator, cache *TextureCache, cfg Config) *Loop {
	buf := cfg.EventBuffer
	if buf <= 0 {
		buf = DefaultEventBuffer
	}
	l := &Loop{
		cfg:    cfg,
		nav:    nav,
		cache:  cache,
		pacer:  NewPacer(cfg.TickInterval(), cfg.MaxCatchUp),
		events: make(chan Event, buf),
	}
	l.anim = NewAnimator(nav, l, cfg.FlipStep)
	return l
}

// Animator returns the loop's flip animator.
func (l *Loop) Animator() *Animator { return l.anim }

// Running reports whether the loop has been started and not quit.
func (l *Loop) Running() bool { return l.running }

// OnError sets the function called with reload failures.
func (l *Loop) OnError(fn func(error)) { l.onError = fn }

// DecorateOverlay sets a function that completes each frame's Overlay.
func (l *Loop) DecorateOverlay(fn func(*Overlay)) { l.decorate = fn }

// SetViewport sets the viewport size used to classify clicks.
func (l *Loop) SetViewport(width, height int) {
	l.width, l.height = float64(width), float64(height)
}

// Post queues an event without blocking. It returns false when the queue
// is full and the event was dropped.
func (l *Loop) Post(ev Event) bool {
	if ev == nil {
		return false
	}
	select {
	case l.events <- ev:
		return true
	default:
		Logger().Debug("flipbook: event queue full, dropping event", "event", ev)
		return false
	}
}

// Start enters the loop: stale events are discarded and the current
// spread is loaded before the first frame. A load failure is returned but
// the loop still starts.
func (l *Loop) Start(ctx context.Context) error {
	l.discardEvents()
	l.anim.Reset()
	l.pacer.Reset()
	l.running = true
	if !l.nav.Loaded() {
		return ErrNoDocumentLoaded
	}
	return l.cache.Load(ctx, l.nav.Spread().Indices())
}

// Stop leaves the loop and releases the held textures.
func (l *Loop) Stop() {
	if !l.running {
		return
	}
	l.running = false
	l.anim.Reset()
	l.cache.Release()
	Logger().Info("flipbook: render loop stopped", "page", l.nav.Current())
}

// Advance runs the logic half of one tick: drain events, commit a finished
// background load and step the animation. A page held after its flip is
// settled once no load is pending.
func (l *Loop) Advance() {
	l.drain()
	if !l.running {
		return
	}
	if l.cache.Pending() {
		if done, err := l.cache.Poll(); done && err != nil {
			l.loadFailed(err)
		}
	}
	if !l.cache.Pending() {
		l.anim.Settle()
	}
	l.anim.Tick()
}

// Render draws one frame: clear, the two page quads (the turned one last
// so it stays on top), the overlay, then present.
func (l *Loop) Render(s Surface) error {
	s.Clear()
	order := [slotCount]Slot{SlotLeft, SlotRight}
	if side, ok := l.anim.TopSide(); ok && side == SideLeft {
		order = [slotCount]Slot{SlotRight, SlotLeft}
	}
	for _, slot := range order {
		s.DrawQuad(Quad{
			Slot:    slot,
			Texture: l.cache.Texture(slot),
			Rect:    PageRect(slot),
			Model:   l.anim.Transform(sideOf(slot)),
		})
	}
	if od, ok := s.(OverlayDrawer); ok {
		od.DrawOverlay(l.overlay())
	}
	return s.Present()
}

// Step runs one full tick.
func (l *Loop) Step(s Surface) error {
	l.Advance()
	if !l.running {
		return nil
	}
	return l.Render(s)
}

// Frame runs the ticks due at now and renders once. It is meant for hosts
// that own the frame clock (vsync). It returns false once the loop quit.
func (l *Loop) Frame(now time.Time, s Surface) (bool, error) {
	if !l.running {
		return false, nil
	}
	for range l.pacer.Due(now) {
		l.Advance()
		if !l.running {
			return false, nil
		}
	}
	return true, l.Render(s)
}

// Run starts the loop and ticks it at the configured rate until a Quit
// event arrives or ctx is done. Textures are released on return.
func (l *Loop) Run(ctx context.Context, s Surface) error {
	if err := l.Start(ctx); err != nil {
		l.report(err)
	}
	defer l.Stop()

	ticker := time.NewTicker(l.cfg.TickInterval())
	defer ticker.Stop()
	for {
		if err := l.Step(s); err != nil {
			return err
		}
		if !l.running {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Reload implements Reloader for the animator: the new spread is loaded in
// the background, or in place when AsyncLoad is off.
func (l *Loop) Reload(s Spread) bool {
	if l.cfg.AsyncLoad {
		if _, err := l.cache.Request(s.Indices()); err != nil {
			l.loadFailed(err)
			return false
		}
		return true
	}
	if err := l.cache.Load(context.Background(), s.Indices()); err != nil {
		l.loadFailed(err)
	}
	return false
}

func (l *Loop) drain() {
	for {
		select {
		case ev := <-l.events:
			l.handle(ev)
		default:
			return
		}
	}
}

func (l *Loop) discardEvents() {
	for {
		select {
		case <-l.events:
		default:
			return
		}
	}
}

func (l *Loop) handle(ev Event) {
	if !l.running {
		return
	}
	switch e := ev.(type) {
	case Click:
		side := ClassifyClick(l.width, e.X)
		if !l.anim.Start(side) {
			Logger().Debug("flipbook: flip in progress, click ignored", "side", side)
		}
	case Flip:
		if !l.anim.Start(e.Side) {
			Logger().Debug("flipbook: flip in progress, key ignored", "side", e.Side)
		}
	case SwapPages:
		if l.anim.Busy() {
			return
		}
		if err := l.nav.Swap(); err == nil {
			l.Reload(l.nav.Spread())
		}
	case Quit:
		l.Stop()
	case Resize:
		l.SetViewport(e.Width, e.Height)
	}
}

// loadFailed reports a reload failure. When nothing could be loaded the
// previous textures are still on screen, so the navigator is moved back
// to the page they show.
func (l *Loop) loadFailed(err error) {
	var loadErr *TextureLoadError
	if errors.As(err, &loadErr) && loadErr.Total() {
		if page, ok := l.cache.Page(SlotLeft); ok {
			_ = l.nav.SetPage(page)
		}
	}
	l.report(err)
}

func (l *Loop) report(err error) {
	Logger().Warn("flipbook: reload failed", "err", err)
	if l.onError != nil {
		l.onError(err)
	}
}

func (l *Loop) overlay() Overlay {
	o := Overlay{
		Spread:    l.nav.Spread(),
		PageCount: l.nav.PageCount(),
		Loading:   l.cache.Pending(),
	}
	if l.decorate != nil {
		l.decorate(&o)
	}
	return o
}

func sideOf(slot Slot) Side {
	if slot == SlotRight {
		return SideRight
	}
	return SideLeft
}

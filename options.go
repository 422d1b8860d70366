package flipbook

import (
	"fmt"
	"time"
)

// Defaults mirror the values the viewer was tuned with: scale 5 gives
// near-print output, 1024 square textures bound GPU memory, and 5 degree
// steps at 60 ticks per second finish a flip in 0.6s.
const (
	DefaultRenderScale  = 5.0
	DefaultPreviewScale = 2.0
	DefaultTextureSize  = 1024
	DefaultFlipStep     = 5
	DefaultTickRate     = 60
	DefaultEventBuffer  = 256
	DefaultMaxCatchUp   = 4
)

// Config holds viewer tuning. Build it with DefaultConfig and Options.
type Config struct {
	// RenderScale multiplies the page's natural size (72 DPI) when rasterizing.
	RenderScale float64

	// PreviewScale is the rasterizing scale of the flat two-page view.
	PreviewScale float64

	// TextureSize is the edge of the square texture every page is resized to.
	TextureSize int

	// FlipStep is the number of degrees a flip advances per tick.
	FlipStep int

	// TickRate is the number of animation ticks per second.
	TickRate int

	// EventBuffer is the capacity of the render loop's event queue.
	EventBuffer int

	// MaxCatchUp caps how many ticks a single host frame may run.
	MaxCatchUp int

	// AsyncLoad moves rasterizing off the render thread. When false a flip
	// completion blocks until the new spread is uploaded.
	AsyncLoad bool
}

// Option configures a Config.
//
// Example:
//
//	cfg := flipbook.NewConfig(
//	    flipbook.WithRenderScale(3),
//	    flipbook.WithFlipStep(10),
//	)
type Option func(*Config)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		RenderScale:  DefaultRenderScale,
		PreviewScale: DefaultPreviewScale,
		TextureSize:  DefaultTextureSize,
		FlipStep:     DefaultFlipStep,
		TickRate:     DefaultTickRate,
		EventBuffer:  DefaultEventBuffer,
		MaxCatchUp:   DefaultMaxCatchUp,
		AsyncLoad:    true,
	}
}

// NewConfig applies opts on top of DefaultConfig.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithRenderScale sets the rasterizing scale factor.
func WithRenderScale(scale float64) Option {
	return func(c *Config) {
		c.RenderScale = scale
	}
}

// WithPreviewScale sets the rasterizing scale of the flat view.
func WithPreviewScale(scale float64) Option {
	return func(c *Config) {
		c.PreviewScale = scale
	}
}

// WithTextureSize sets the square texture edge in pixels.
func WithTextureSize(size int) Option {
	return func(c *Config) {
		c.TextureSize = size
	}
}

// WithFlipStep sets the per-tick flip increment in degrees.
func WithFlipStep(deg int) Option {
	return func(c *Config) {
		c.FlipStep = deg
	}
}

// WithTickRate sets the number of ticks per second.
func WithTickRate(hz int) Option {
	return func(c *Config) {
		c.TickRate = hz
	}
}

// WithEventBuffer sets the event queue capacity.
func WithEventBuffer(n int) Option {
	return func(c *Config) {
		c.EventBuffer = n
	}
}

// WithMaxCatchUp sets the per-frame tick cap used by Loop.Frame.
func WithMaxCatchUp(n int) Option {
	return func(c *Config) {
		c.MaxCatchUp = n
	}
}

// WithSyncLoad makes reloads block the render thread.
func WithSyncLoad() Option {
	return func(c *Config) {
		c.AsyncLoad = false
	}
}

// TickInterval returns the duration of one tick.
func (c Config) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / DefaultTickRate
	}
	return time.Second / time.Duration(c.TickRate)
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.RenderScale <= 0:
		return fmt.Errorf("%w: render scale %v must be positive", ErrInvalidConfig, c.RenderScale)
	case c.PreviewScale <= 0:
		return fmt.Errorf("%w: preview scale %v must be positive", ErrInvalidConfig, c.PreviewScale)
	case c.TextureSize <= 0:
		return fmt.Errorf("%w: texture size %d must be positive", ErrInvalidConfig, c.TextureSize)
	case c.FlipStep <= 0 || c.FlipStep > flipLimit:
		return fmt.Errorf("%w: flip step %d must be in (0, %d]", ErrInvalidConfig, c.FlipStep, flipLimit)
	case c.TickRate <= 0:
		return fmt.Errorf("%w: tick rate %d must be positive", ErrInvalidConfig, c.TickRate)
	case c.EventBuffer < 0:
		return fmt.Errorf("%w: event buffer %d must not be negative", ErrInvalidConfig, c.EventBuffer)
	case c.MaxCatchUp <= 0:
		return fmt.Errorf("%w: max catch-up %d must be positive", ErrInvalidConfig, c.MaxCatchUp)
	}
	return nil
}

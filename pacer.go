package flipbook

import "time"

// Pacer converts host frame timestamps into a whole number of fixed ticks,
// so the animation runs at the configured rate whatever the display's
// refresh rate. Leftover time carries into the next frame; a long stall
// runs at most maxCatchUp ticks and forgets the rest.
type Pacer struct {
	interval   time.Duration
	maxCatchUp int

	last time.Time
	acc  time.Duration
}

// NewPacer returns a pacer for ticks of the given interval.
func NewPacer(interval time.Duration, maxCatchUp int) *Pacer {
	if interval <= 0 {
		interval = time.Second / DefaultTickRate
	}
	if maxCatchUp <= 0 {
		maxCatchUp = DefaultMaxCatchUp
	}
	return &Pacer{interval: interval, maxCatchUp: maxCatchUp}
}

// Due returns the number of ticks to run for a frame presented at now.
// The first frame after a Reset always runs exactly one tick.
func (p *Pacer) Due(now time.Time) int {
	if p.last.IsZero() {
		p.last = now
		return 1
	}
	if elapsed := now.Sub(p.last); elapsed > 0 {
		p.acc += elapsed
	}
	p.last = now

	n := int(p.acc / p.interval)
	if n > p.maxCatchUp {
		p.acc = 0
		return p.maxCatchUp
	}
	p.acc -= time.Duration(n) * p.interval
	return n
}

// Reset forgets the previous frame time.
func (p *Pacer) Reset() {
	p.last = time.Time{}
	p.acc = 0
}

package flipbook

// flipLimit is the angle, in degrees, at which a flip is complete.
const flipLimit = 180

// FlipState is the state of the page-flip state machine. At most one
// flip is in flight at any time.
type FlipState int

// Flip states.
const (
	Idle FlipState = iota
	FlippingLeft
	FlippingRight
)

func (s FlipState) String() string {
	switch s {
	case Idle:
		return "idle"
	case FlippingLeft:
		return "flipping-left"
	case FlippingRight:
		return "flipping-right"
	default:
		return "unknown"
	}
}

// Side is the half of the spread a click landed on.
type Side int

// Sides.
const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// Slot returns the page slot on this side.
func (s Side) Slot() Slot {
	if s == SideRight {
		return SlotRight
	}
	return SlotLeft
}

// ClassifyClick returns the side of a viewport of the given width that x
// falls on. The exact middle counts as left.
func ClassifyClick(width, x float64) Side {
	if x > width/2 {
		return SideRight
	}
	return SideLeft
}

// Reloader loads the textures of a newly committed spread. Reload reports
// true when the load continues in the background.
type Reloader interface {
	Reload(s Spread) (pending bool)
}

// Animator drives the page-flip animation. A right flip turns the right
// page over the spine towards the left (forward); a left flip turns the
// left page towards the right (back).
//
// Each Tick advances the active side by the step. When the angle reaches
// 180 degrees the flip completes: the navigator moves first and only then
// is the new spread handed to the reloader, so the reload never sees the
// old page. While that reload is still pending the turned page is held at
// its final angle, until Settle, so the old texture never flashes back
// flat.
type Animator struct {
	nav    *Navigator
	reload Reloader
	step   int

	state FlipState
	left  int // degrees, counts down to -180
	right int // degrees, counts up to 180

	held     bool
	heldSide Side
}

// NewAnimator returns an idle animator advancing step degrees per tick.
func NewAnimator(nav *Navigator, reload Reloader, step int) *Animator {
	if step <= 0 {
		step = DefaultFlipStep
	}
	return &Animator{nav: nav, reload: reload, step: step}
}

// State returns the current state.
func (a *Animator) State() FlipState { return a.state }

// Active reports whether a flip is in progress.
func (a *Animator) Active() bool { return a.state != Idle }

// Angle returns the last angle of side in degrees.
func (a *Animator) Angle(side Side) int {
	if side == SideRight {
		return a.right
	}
	return a.left
}

// ActiveSide returns the flipping side; ok is false when idle.
func (a *Animator) ActiveSide() (side Side, ok bool) {
	switch a.state {
	case FlippingLeft:
		return SideLeft, true
	case FlippingRight:
		return SideRight, true
	}
	return SideLeft, false
}

// Held reports whether a completed flip is waiting for its textures.
func (a *Animator) Held() bool { return a.held }

// Busy reports whether a flip is running or held.
func (a *Animator) Busy() bool { return a.state != Idle || a.held }

// TopSide returns the side drawn over the other: the flipping or held
// side. ok is false when neither page is turned.
func (a *Animator) TopSide() (side Side, ok bool) {
	if side, ok := a.ActiveSide(); ok {
		return side, true
	}
	return a.heldSide, a.held
}

// Settle releases a held page once the new spread's textures are in.
func (a *Animator) Settle() {
	if !a.held {
		return
	}
	a.held = false
	Logger().Debug("flipbook: flip settled", "side", a.heldSide, "page", a.nav.Current())
}

// Start begins a flip of side. It is rejected, changing nothing, while
// another flip is in progress or held.
func (a *Animator) Start(side Side) bool {
	if a.Busy() {
		return false
	}
	if side == SideRight {
		a.state = FlippingRight
		a.right = 0
	} else {
		a.state = FlippingLeft
		a.left = 0
	}
	Logger().Debug("flipbook: flip started", "side", side, "page", a.nav.Current())
	return true
}

// Tick advances the active flip by one step. It returns true on the tick
// that completes a flip.
func (a *Animator) Tick() bool {
	switch a.state {
	case FlippingRight:
		a.right += a.step
		if a.right >= flipLimit {
			a.complete(SideRight, a.nav.Next)
			return true
		}
	case FlippingLeft:
		a.left -= a.step
		if a.left <= -flipLimit {
			a.complete(SideLeft, a.nav.Previous)
			return true
		}
	}
	return false
}

func (a *Animator) complete(side Side, move func() error) {
	a.state = Idle
	if err := move(); err != nil {
		Logger().Warn("flipbook: flip completed without a document", "err", err)
		return
	}
	spread := a.nav.Spread()
	Logger().Debug("flipbook: flip completed", "page", spread.Left)
	if a.reload != nil && a.reload.Reload(spread) {
		a.held, a.heldSide = true, side
	}
}

// Transform returns the model transform of side's page quad: a rotation
// about the spine while that side flips or is held, identity otherwise.
func (a *Animator) Transform(side Side) Matrix {
	top, ok := a.TopSide()
	if !ok || top != side {
		return Identity()
	}
	return SpineRotation(SpineX, float64(a.Angle(side)))
}

// Reset abandons any flip, drops a held page and zeroes both angles.
func (a *Animator) Reset() {
	a.state = Idle
	a.held = false
	a.left, a.right = 0, 0
}

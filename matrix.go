package flipbook

import "math"

// Vec3 is a point in book space. The spine runs along the Y axis at X=0,
// the pages lie in the Z=0 plane and the camera looks down -Z.
type Vec3 struct {
	X, Y, Z float64
}

// Matrix is a 3D affine transformation in row-major order:
//
//	| a  b  c  d |
//	| e  f  g  h |
//	| i  j  k  l |
//
// The implicit fourth row is (0, 0, 0, 1).
type Matrix struct {
	A, B, C, D float64
	E, F, G, H float64
	I, J, K, L float64
}

// Identity returns the identity transformation.
func Identity() Matrix {
	return Matrix{
		A: 1, F: 1, K: 1,
	}
}

// Translate creates a translation matrix.
func Translate(x, y, z float64) Matrix {
	return Matrix{
		A: 1, D: x,
		F: 1, H: y,
		K: 1, L: z,
	}
}

// RotateY creates a rotation about the vertical axis. The angle is in
// degrees; positive angles turn +X towards -Z.
func RotateY(deg float64) Matrix {
	rad := deg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return Matrix{
		A: cos, C: sin,
		F: 1,
		I: -sin, K: cos,
	}
}

// Multiply returns m * other (other is applied first).
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.E + m.C*other.I,
		B: m.A*other.B + m.B*other.F + m.C*other.J,
		C: m.A*other.C + m.B*other.G + m.C*other.K,
		D: m.A*other.D + m.B*other.H + m.C*other.L + m.D,
		E: m.E*other.A + m.F*other.E + m.G*other.I,
		F: m.E*other.B + m.F*other.F + m.G*other.J,
		G: m.E*other.C + m.F*other.G + m.G*other.K,
		H: m.E*other.D + m.F*other.H + m.G*other.L + m.H,
		I: m.I*other.A + m.J*other.E + m.K*other.I,
		J: m.I*other.B + m.J*other.F + m.K*other.J,
		K: m.I*other.C + m.J*other.G + m.K*other.K,
		L: m.I*other.D + m.J*other.H + m.K*other.L + m.L,
	}
}

// TransformPoint applies the transformation to a point.
func (m Matrix) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		X: m.A*p.X + m.B*p.Y + m.C*p.Z + m.D,
		Y: m.E*p.X + m.F*p.Y + m.G*p.Z + m.H,
		Z: m.I*p.X + m.J*p.Y + m.K*p.Z + m.L,
	}
}

// IsIdentity reports whether m is exactly the identity.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// SpineRotation turns a page by deg degrees about a vertical axis through
// pivotX: translate the pivot to the origin, rotate, translate back.
func SpineRotation(pivotX, deg float64) Matrix {
	return Translate(pivotX, 0, 0).Multiply(RotateY(deg)).Multiply(Translate(-pivotX, 0, 0))
}

// Book geometry in world units. Each page is a PageWidth x PageHeight quad
// centred vertically on the X axis; the left page ends and the right page
// starts at the spine.
const (
	PageWidth  = 2.0
	PageHeight = 4.0
	SpineX     = 0.0
)

// Rect is an axis-aligned rectangle in the Z=0 plane.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// PageRect returns the untransformed quad of a slot.
func PageRect(slot Slot) Rect {
	if slot == SlotLeft {
		return Rect{X0: SpineX - PageWidth, Y0: -PageHeight / 2, X1: SpineX, Y1: PageHeight / 2}
	}
	return Rect{X0: SpineX, Y0: -PageHeight / 2, X1: SpineX + PageWidth, Y1: PageHeight / 2}
}

// Camera is a perspective camera on the +Z axis looking at the origin.
type Camera struct {
	// Distance from the camera to the page plane.
	Distance float64
	// FovY is the vertical field of view in degrees.
	FovY float64
	// Near is the near clipping distance; points closer are not projected.
	Near float64
}

// DefaultCamera frames a full spread with a little margin.
func DefaultCamera() Camera {
	return Camera{Distance: 5, FovY: 45, Near: 0.1}
}

// Project maps p to viewport pixel coordinates (origin top-left, Y down).
// ok is false when p lies behind the near plane.
func (c Camera) Project(p Vec3, width, height float64) (x, y float64, ok bool) {
	depth := c.Distance - p.Z
	if depth < c.Near || width <= 0 || height <= 0 {
		return 0, 0, false
	}
	halfH := depth * math.Tan(c.FovY*math.Pi/360)
	halfW := halfH * width / height
	ndcX := p.X / halfW
	ndcY := p.Y / halfH
	return (ndcX + 1) / 2 * width, (1 - ndcY) / 2 * height, true
}

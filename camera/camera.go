// Package camera contains a small interactive camera model and the projection of world points
// into its normalized view space.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"go.viam.com/meshpose/utils"
)

// Default camera parameters.
const (
	DefaultViewAngle = 30.0
	DefaultNear      = 0.01
	DefaultFar       = 1000.01
)

// A Camera is a mutable camera looking from a position at a focal point. Orientation is kept as a
// view-up vector; roll is read back from the view frame rather than stored.
type Camera struct {
	position   r3.Vector
	focalPoint r3.Vector
	viewUp     r3.Vector
	viewAngle  float64
	clipping   [2]float64
}

// NewCamera returns a camera at (0,0,1) looking at the origin with +y up.
func NewCamera() *Camera {
	return &Camera{
		position:  r3.Vector{X: 0, Y: 0, Z: 1},
		viewUp:    r3.Vector{X: 0, Y: 1, Z: 0},
		viewAngle: DefaultViewAngle,
		clipping:  [2]float64{DefaultNear, DefaultFar},
	}
}

// Clone returns an independent copy of the camera.
func (c *Camera) Clone() *Camera {
	cp := *c
	return &cp
}

// Position returns the camera position.
func (c *Camera) Position() r3.Vector { return c.position }

// SetPosition moves the camera, keeping the focal point.
func (c *Camera) SetPosition(p r3.Vector) { c.position = p }

// FocalPoint returns the point the camera looks at.
func (c *Camera) FocalPoint() r3.Vector { return c.focalPoint }

// SetFocalPoint changes the point the camera looks at, keeping the position.
func (c *Camera) SetFocalPoint(p r3.Vector) { c.focalPoint = p }

// ViewUp returns the unit view-up vector.
func (c *Camera) ViewUp() r3.Vector { return c.viewUp }

// SetViewUp sets the view-up vector. Non-zero vectors are normalized.
func (c *Camera) SetViewUp(up r3.Vector) {
	if up.Norm2() > 0 {
		up = up.Normalize()
	}
	c.viewUp = up
}

// ViewAngle returns the vertical view angle in degrees.
func (c *Camera) ViewAngle() float64 { return c.viewAngle }

// SetViewAngle sets the vertical view angle in degrees, clamped to [0.00000001, 179].
func (c *Camera) SetViewAngle(deg float64) {
	c.viewAngle = math.Min(math.Max(deg, 0.00000001), 179.0)
}

// ClippingRange returns the near and far clipping distances.
func (c *Camera) ClippingRange() (near, far float64) { return c.clipping[0], c.clipping[1] }

// SetClippingRange sets the near and far clipping distances.
func (c *Camera) SetClippingRange(near, far float64) { c.clipping = [2]float64{near, far} }

// Distance is the distance from the position to the focal point.
func (c *Camera) Distance() float64 {
	return c.focalPoint.Sub(c.position).Norm()
}

// DirectionOfProjection is the unit vector from the position to the focal point.
func (c *Camera) DirectionOfProjection() r3.Vector {
	return c.focalPoint.Sub(c.position).Normalize()
}

// Azimuth rotates the camera position about the view-up vector centered at the focal point.
func (c *Camera) Azimuth(deg float64) {
	c.position = rotateAbout(c.position, c.focalPoint, c.viewUp, deg)
}

// Elevation rotates the camera position and the view-up vector about the cross product of the
// negative direction of projection and the view-up vector, centered at the focal point. Any
// elevation therefore equals the same total taken in small steps.
func (c *Camera) Elevation(deg float64) {
	sideways, _, _ := frame(c.position, c.focalPoint, c.viewUp)
	axis := sideways.Mul(-1)
	c.position = rotateAbout(c.position, c.focalPoint, axis, deg)
	c.SetViewUp(rotate(c.viewUp, axis, deg))
}

// Roll rotates the view-up vector about the direction of projection.
func (c *Camera) Roll(deg float64) {
	c.SetViewUp(rotate(c.viewUp, c.DirectionOfProjection(), deg))
}

// RollAngle returns the current roll in degrees.
func (c *Camera) RollAngle() float64 {
	return rollOf(c.position, c.focalPoint, c.viewUp)
}

// SetRoll rolls the camera so that RollAngle reports deg.
func (c *Camera) SetRoll(deg float64) {
	delta := deg - c.RollAngle()
	if math.Abs(delta) < 0.00001 {
		return
	}
	c.Roll(delta)
}

// Zoom narrows the view angle by factor. Non-positive factors are ignored.
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.SetViewAngle(c.viewAngle / factor)
}

// OrthogonalizeViewUp recomputes the view-up vector so it is orthogonal to the direction of
// projection.
func (c *Camera) OrthogonalizeViewUp() {
	_, up, _ := frame(c.position, c.focalPoint, c.viewUp)
	c.viewUp = up
}

// ResetToBounds aims the camera at the center of the box spanned by lo and hi and backs it off
// along the current view direction until the box's bounding sphere fills the view angle.
func (c *Camera) ResetToBounds(lo, hi r3.Vector) {
	center := lo.Add(hi).Mul(0.5)
	radius := hi.Sub(lo).Norm() / 2
	if radius == 0 {
		radius = 0.5
	}
	distance := radius / math.Sin(utils.DegToRad(c.viewAngle)/2)

	_, _, normal := frame(c.position, c.focalPoint, c.viewUp)
	if normal.Norm2() == 0 {
		normal = r3.Vector{Z: 1}
	}
	if math.Abs(c.viewUp.Dot(normal)) > 0.999 {
		c.viewUp = r3.Vector{X: -c.viewUp.Z, Y: c.viewUp.X, Z: c.viewUp.Y}
	}
	c.focalPoint = center
	c.position = center.Add(normal.Mul(distance))
}

// State returns an immutable snapshot of the camera.
func (c *Camera) State() State {
	return State{
		Position:      c.position,
		FocalPoint:    c.focalPoint,
		ViewUp:        c.viewUp,
		Roll:          c.RollAngle(),
		Distance:      c.Distance(),
		ViewAngle:     c.viewAngle,
		ClippingRange: c.clipping,
	}
}

// frame returns the rows of the camera's view rotation: sideways, orthogonal view-up and the view
// plane normal (pointing from the focal point towards the position).
func frame(position, focal, up r3.Vector) (sideways, orthoUp, normal r3.Vector) {
	normal = position.Sub(focal).Normalize()
	sideways = up.Cross(normal).Normalize()
	orthoUp = normal.Cross(sideways)
	return sideways, orthoUp, normal
}

func rotate(v, axis r3.Vector, deg float64) r3.Vector {
	if axis.Norm2() == 0 {
		return v
	}
	a := axis.Normalize()
	q := mgl64.QuatRotate(utils.DegToRad(deg), mgl64.Vec3{a.X, a.Y, a.Z})
	out := q.Rotate(mgl64.Vec3{v.X, v.Y, v.Z})
	return r3.Vector{X: out[0], Y: out[1], Z: out[2]}
}

func rotateAbout(p, center, axis r3.Vector, deg float64) r3.Vector {
	return rotate(p.Sub(center), axis, deg).Add(center)
}

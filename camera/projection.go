package camera

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/meshpose/utils"
)

// ViewTransform is the composite projection and view matrix of one camera snapshot for one
// viewport aspect.
type ViewTransform struct {
	mat mgl64.Mat4
}

// NewViewTransform builds the world to view transform of state for a viewport of the given
// width over height aspect.
func NewViewTransform(state State, aspect float64) ViewTransform {
	near, far := state.ClippingRange[0], state.ClippingRange[1]
	if far <= near || near <= 0 {
		near, far = DefaultNear, DefaultFar
	}
	view := mgl64.LookAtV(toVec3(state.Position), toVec3(state.FocalPoint), toVec3(state.ViewUp))
	proj := mgl64.Perspective(utils.DegToRad(state.ViewAngle), aspect, near, far)
	return ViewTransform{mat: proj.Mul4(view)}
}

// ProjectToViewSpace maps a world point into normalized view coordinates, where the viewport spans
// [-1, 1] on both axes and the focal point lands on the origin. Points in the camera plane have no
// projection and come back as infinities or NaNs.
func ProjectToViewSpace(vt ViewTransform, p r3.Vector) r2.Point {
	h := vt.mat.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	return r2.Point{X: h[0] / h[3], Y: h[1] / h[3]}
}

func toVec3(v r3.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

package camera

import (
	"github.com/golang/geo/r3"

	"go.viam.com/meshpose/utils"
)

// State is a snapshot of a camera. It is a plain value; copies never share storage with the
// camera they came from.
type State struct {
	Position      r3.Vector
	FocalPoint    r3.Vector
	ViewUp        r3.Vector
	Roll          float64
	Distance      float64
	ViewAngle     float64
	ClippingRange [2]float64
}

// Camera returns a new camera positioned as described by the state.
func (s State) Camera() *Camera {
	c := NewCamera()
	c.SetPosition(s.Position)
	c.SetFocalPoint(s.FocalPoint)
	c.SetViewUp(s.ViewUp)
	if s.ViewAngle > 0 {
		c.SetViewAngle(s.ViewAngle)
	}
	if s.ClippingRange[1] > s.ClippingRange[0] {
		c.SetClippingRange(s.ClippingRange[0], s.ClippingRange[1])
	}
	return c
}

// Validate returns a precondition error when the snapshot cannot be projected.
func (s State) Validate() error {
	if !utils.IsFinite(s.Position.X, s.Position.Y, s.Position.Z,
		s.FocalPoint.X, s.FocalPoint.Y, s.FocalPoint.Z,
		s.ViewUp.X, s.ViewUp.Y, s.ViewUp.Z, s.Roll, s.Distance, s.ViewAngle) {
		return utils.NewPreconditionError("camera state has non-finite components")
	}
	if s.Position.Sub(s.FocalPoint).Norm2() == 0 {
		return utils.NewPreconditionError("camera position coincides with focal point %v", s.FocalPoint)
	}
	if s.Distance <= 0 {
		return utils.NewPreconditionError("camera distance must be positive, got %v", s.Distance)
	}
	if s.ViewAngle <= 0 || s.ViewAngle >= 180 {
		return utils.NewPreconditionError("camera view angle must be in (0, 180), got %v", s.ViewAngle)
	}
	if s.ViewUp.Cross(s.Position.Sub(s.FocalPoint)).Norm2() == 0 {
		return utils.NewPreconditionError("camera view-up %v is parallel to the direction of projection", s.ViewUp)
	}
	return nil
}

// ViewportSize is the size in pixels of the on-screen render surface. The scene occupies the top
// half of the surface; the bottom half holds the controls.
type ViewportSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SceneAspect is the width over height of the scene viewport.
func (v ViewportSize) SceneAspect() float64 {
	return float64(v.Width) / (float64(v.Height) / 2)
}

// Validate returns a precondition error for empty viewports.
func (v ViewportSize) Validate() error {
	if v.Width <= 0 || v.Height <= 0 {
		return utils.NewPreconditionError("viewport must be non-empty, got %dx%d", v.Width, v.Height)
	}
	return nil
}

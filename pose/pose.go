// Package pose derives a compact camera pose from a camera snapshot and reconstructs camera
// positions from stored poses.
package pose

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/meshpose/camera"
	"go.viam.com/meshpose/rimage"
	"go.viam.com/meshpose/utils"
)

// CameraPose describes where a camera looked from when an annotation was saved. Angles are in
// degrees. The principal point is the offset in pixels of the model from the image center, with x
// growing to the right and y growing upwards.
type CameraPose struct {
	Azimuth         float64
	Elevation       float64
	Distance        float64
	InplaneRotation float64
	PrincipalPoint  image.Point

	CameraPosition          r3.Vector
	CameraFocalPoint        r3.Vector
	ModelMassCenterPosition r3.Vector
}

// ComputePose derives the pose of a camera snapshot. displacement is how far the model was moved
// from its reference position, extent describes the photograph the model is aligned to and
// viewport is the size of the render surface whose top half shows the scene.
func ComputePose(
	state camera.State,
	displacement r3.Vector,
	extent rimage.Extent,
	viewport camera.ViewportSize,
) (CameraPose, error) {
	if err := state.Validate(); err != nil {
		return CameraPose{}, err
	}
	if !utils.IsFinite(displacement.X, displacement.Y, displacement.Z) {
		return CameraPose{}, utils.NewPreconditionError("displacement %v is not finite", displacement)
	}
	if err := extent.Validate(); err != nil {
		return CameraPose{}, err
	}
	if err := viewport.Validate(); err != nil {
		return CameraPose{}, err
	}

	v := state.Position.Sub(state.FocalPoint)
	massCenter := state.FocalPoint.Add(displacement)

	viewPoint := camera.ProjectToViewSpace(camera.NewViewTransform(state, viewport.SceneAspect()), massCenter)
	if !utils.IsFinite(viewPoint.X, viewPoint.Y) {
		return CameraPose{}, utils.NewPreconditionError("model mass center %v lies in the camera plane", massCenter)
	}

	return CameraPose{
		Azimuth:                 utils.RadToDeg(math.Atan2(v.Y, v.X)),
		Elevation:               utils.RadToDeg(math.Atan2(v.Z, math.Hypot(v.X, v.Y))),
		Distance:                state.Distance,
		InplaneRotation:         state.Roll,
		PrincipalPoint:          PrincipalPoint(viewPoint, extent, viewport),
		CameraPosition:          state.Position,
		CameraFocalPoint:        state.FocalPoint,
		ModelMassCenterPosition: massCenter,
	}, nil
}

// ViewToImage converts a point in the scene's normalized view space to a pixel offset from the
// image center. The photograph fills the scene viewport along its longer side, so the scale of
// the shorter axis is corrected by the ratio between the viewport and the image.
func ViewToImage(viewPoint r2.Point, extent rimage.Extent, viewport camera.ViewportSize) r2.Point {
	w, h := float64(extent.Width()), float64(extent.Height())
	sceneW, sceneH := float64(viewport.Width), float64(viewport.Height)/2.0

	if w >= h {
		y := h / 2.0
		xyFactor := sceneW / sceneH
		return r2.Point{X: viewPoint.X * xyFactor * y, Y: viewPoint.Y * y}
	}
	x := w / 2.0
	yxFactor := sceneH / sceneW
	return r2.Point{X: viewPoint.X * x, Y: viewPoint.Y * yxFactor * x}
}

// PrincipalPoint is ViewToImage with each component truncated towards zero.
func PrincipalPoint(viewPoint r2.Point, extent rimage.Extent, viewport camera.ViewportSize) image.Point {
	p := ViewToImage(viewPoint, extent, viewport)
	return image.Point{X: int(p.X), Y: int(p.Y)}
}

// ComputePosition returns the camera position relative to the focal point for the given azimuth
// and elevation in radians and distance.
func ComputePosition(azimuth, elevation, distance float64) r3.Vector {
	return r3.Vector{
		X: distance * math.Cos(elevation) * math.Cos(azimuth),
		Y: distance * math.Cos(elevation) * math.Sin(azimuth),
		Z: distance * math.Sin(elevation),
	}
}

// ComputePositionDegrees is ComputePosition with angles in degrees.
func ComputePositionDegrees(azimuth, elevation, distance float64) r3.Vector {
	return ComputePosition(utils.DegToRad(azimuth), utils.DegToRad(elevation), distance)
}

// ReconstructPosition returns the world position of the camera implied by the stored angles,
// distance and focal point.
func (p CameraPose) ReconstructPosition() r3.Vector {
	return p.CameraFocalPoint.Add(ComputePositionDegrees(p.Azimuth, p.Elevation, p.Distance))
}

// ReconstructionError is the distance between the stored camera position and the reconstructed
// one.
func (p CameraPose) ReconstructionError() float64 {
	return p.ReconstructPosition().Sub(p.CameraPosition).Norm()
}

// AlmostEqual compares two poses component-wise with an absolute tolerance. Principal points
// must match exactly.
func AlmostEqual(a, b CameraPose, epsilon float64) bool {
	if a.PrincipalPoint != b.PrincipalPoint {
		return false
	}
	scalars := [][2]float64{
		{a.Azimuth, b.Azimuth},
		{a.Elevation, b.Elevation},
		{a.Distance, b.Distance},
		{a.InplaneRotation, b.InplaneRotation},
	}
	for _, pair := range scalars {
		if !utils.Float64AlmostEqual(pair[0], pair[1], epsilon) {
			return false
		}
	}
	for _, pair := range [][2]r3.Vector{
		{a.CameraPosition, b.CameraPosition},
		{a.CameraFocalPoint, b.CameraFocalPoint},
		{a.ModelMassCenterPosition, b.ModelMassCenterPosition},
	} {
		if pair[0].Sub(pair[1]).Norm() > epsilon {
			return false
		}
	}
	return true
}

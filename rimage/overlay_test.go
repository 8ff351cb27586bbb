package rimage

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/meshpose/camera"
	"go.viam.com/meshpose/utils"
)

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestRenderOverlay(t *testing.T) {
	dir := t.TempDir()
	photoPath := filepath.Join(dir, "photo.png")
	test.That(t, SavePNG(photoPath, solidImage(64, 48, color.RGBA{R: 0xff, A: 0xff})), test.ShouldBeNil)

	cam := camera.NewCamera()
	cam.SetPosition(r3.Vector{Z: 10})
	viewport := camera.ViewportSize{Width: 640, Height: 480}
	test.That(t, SceneScale(ExtentFromSize(64, 48), viewport), test.ShouldEqual, 5.0)
	// Landscape images fit the scene height, even when that overflows the width; portrait images
	// fit the scene width.
	test.That(t, SceneScale(ExtentFromSize(200, 50), viewport), test.ShouldEqual, 4.8)
	test.That(t, SceneScale(ExtentFromSize(48, 64), viewport), test.ShouldAlmostEqual, 640.0/48, 1e-12)

	blue, err := ParseColor("#0000ff")
	test.That(t, err, test.ShouldBeNil)

	img, err := RenderOverlay(OverlayParams{
		ImagePath: photoPath,
		Viewport:  viewport,
		State:     cam.State(),
		Vertices:  []r3.Vector{{X: 1}},
		Color:     blue,
		Label:     "car",
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 640)
	test.That(t, img.Bounds().Dy(), test.ShouldEqual, 240)

	// The photograph is scaled to the scene height and centered.
	corner := rgbaAt(img, 630, 230)
	test.That(t, corner, test.ShouldResemble, color.RGBA{A: 0xff})
	inside := rgbaAt(img, 200, 200)
	test.That(t, int(inside.R), test.ShouldBeGreaterThan, 250)
	test.That(t, int(inside.B), test.ShouldBeLessThan, 5)

	// The principal point crosshair sits on the viewport center.
	center := rgbaAt(img, 320, 120)
	test.That(t, int(center.R), test.ShouldBeGreaterThan, 200)
	test.That(t, int(center.G), test.ShouldBeGreaterThan, 200)
	test.That(t, int(center.B), test.ShouldBeLessThan, 50)

	// The vertex right of the focal point is drawn right of the center.
	vertex := rgbaAt(img, 364, 120)
	test.That(t, int(vertex.B), test.ShouldBeGreaterThan, 200)
	test.That(t, int(vertex.R), test.ShouldBeLessThan, 50)

	out := filepath.Join(dir, "preview.png")
	test.That(t, SavePNG(out, img), test.ShouldBeNil)
	e, err := ReadExtent(out)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, e, test.ShouldResemble, ExtentFromSize(640, 240))
}

func TestRenderOverlayFaces(t *testing.T) {
	dir := t.TempDir()
	photoPath := filepath.Join(dir, "photo.png")
	test.That(t, SavePNG(photoPath, solidImage(64, 48, color.RGBA{R: 0xff, A: 0xff})), test.ShouldBeNil)

	cam := camera.NewCamera()
	cam.SetPosition(r3.Vector{Z: 10})
	blue, err := ParseColor("#0000ff")
	test.That(t, err, test.ShouldBeNil)
	params := OverlayParams{
		ImagePath: photoPath,
		Viewport:  camera.ViewportSize{Width: 640, Height: 480},
		State:     cam.State(),
		Vertices:  []r3.Vector{{X: 1, Y: 0.5}, {X: -1, Y: -0.5}, {X: 1, Y: -0.5}},
		Color:     blue,
	}

	// The first edge runs diagonally from (364.8, 97.6) to (275.2, 142.4). Without faces, only the
	// photograph shows on it.
	points, err := RenderOverlay(params)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, int(rgbaAt(points, 342, 108).B), test.ShouldBeLessThan, 5)

	params.Faces = [][]int{{0, 1, 2}, {0, 7}}
	outlined, err := RenderOverlay(params)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, int(rgbaAt(outlined, 342, 108).B), test.ShouldBeGreaterThan, 100)
}

func TestRenderOverlayErrors(t *testing.T) {
	cam := camera.NewCamera()
	_, err := RenderOverlay(OverlayParams{
		ImagePath: filepath.Join(t.TempDir(), "missing.png"),
		Viewport:  camera.ViewportSize{Width: 640, Height: 480},
		State:     cam.State(),
	})
	test.That(t, errors.Is(err, utils.ErrIO), test.ShouldBeTrue)

	_, err = RenderOverlay(OverlayParams{State: cam.State()})
	test.That(t, errors.Is(err, utils.ErrPrecondition), test.ShouldBeTrue)
}

package rimage

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/geo/r3"

	"go.viam.com/meshpose/camera"
	"go.viam.com/meshpose/utils"
)

// OverlayParams describes an overlay preview: a model seen through a camera drawn on top of the
// photograph it was aligned to.
type OverlayParams struct {
	ImagePath string
	Viewport  camera.ViewportSize
	State     camera.State
	Vertices  []r3.Vector
	// Faces index Vertices; each face is drawn as a closed outline.
	Faces [][]int
	// PrincipalPoint is the stored pixel offset of the model from the image center.
	PrincipalPoint image.Point
	Color          color.Color
	Label          string
}

// SceneScale is the factor that fits an image of the given extent into the scene viewport. A
// landscape or square image is scaled to the scene height, a portrait image to the scene width.
func SceneScale(extent Extent, viewport camera.ViewportSize) float64 {
	sceneW, sceneH := float64(viewport.Width), float64(viewport.Height)/2
	if extent.Width() >= extent.Height() {
		return sceneH / float64(extent.Height())
	}
	return sceneW / float64(extent.Width())
}

// RenderOverlay draws the scene viewport of params: the photograph scaled to the viewport, the
// projected model vertices and face outlines, their bounding box and a crosshair on the principal
// point. The
// crosshair lands on the model's mass center when the pose is consistent with the camera.
func RenderOverlay(params OverlayParams) (image.Image, error) {
	if err := params.Viewport.Validate(); err != nil {
		return nil, err
	}
	if err := params.State.Validate(); err != nil {
		return nil, err
	}

	photo, err := imaging.Open(params.ImagePath)
	if err != nil {
		return nil, utils.NewIOError("open", params.ImagePath, err)
	}
	bounds := photo.Bounds()
	extent := ExtentFromSize(bounds.Dx(), bounds.Dy())
	if err := extent.Validate(); err != nil {
		return nil, err
	}

	sceneW, sceneH := params.Viewport.Width, params.Viewport.Height/2
	scale := SceneScale(extent, params.Viewport)
	fitted := imaging.Resize(photo,
		int(math.Round(float64(extent.Width())*scale)),
		int(math.Round(float64(extent.Height())*scale)),
		imaging.Lanczos)
	canvas := imaging.PasteCenter(imaging.New(sceneW, sceneH, color.Black), fitted)

	c := params.Color
	if c == nil {
		c = color.RGBA{B: 0xff, A: 0xff}
	}

	dc := gg.NewContextForImage(canvas)
	toPixel := func(x, y float64) (float64, float64) {
		return (x + 1) / 2 * float64(sceneW), (1 - y) / 2 * float64(sceneH)
	}

	vt := camera.NewViewTransform(params.State, params.Viewport.SceneAspect())
	box := image.Rectangle{Min: image.Pt(math.MaxInt32, math.MaxInt32), Max: image.Pt(math.MinInt32, math.MinInt32)}
	type projected struct {
		x, y float64
		ok   bool
	}
	points := make([]projected, len(params.Vertices))
	drawn := 0
	dc.SetColor(c)
	for i, v := range params.Vertices {
		vp := camera.ProjectToViewSpace(vt, v)
		if !utils.IsFinite(vp.X, vp.Y) {
			continue
		}
		x, y := toPixel(vp.X, vp.Y)
		points[i] = projected{x: x, y: y, ok: true}
		dc.DrawCircle(x, y, 1.5)
		drawn++
		box.Min.X = min(box.Min.X, int(x))
		box.Min.Y = min(box.Min.Y, int(y))
		box.Max.X = max(box.Max.X, int(math.Ceil(x)))
		box.Max.Y = max(box.Max.Y, int(math.Ceil(y)))
	}
	dc.Fill()

	dc.SetLineWidth(1)
	for _, face := range params.Faces {
		for i, from := range face {
			to := face[(i+1)%len(face)]
			if from < 0 || from >= len(points) || to < 0 || to >= len(points) {
				continue
			}
			a, b := points[from], points[to]
			if a.ok && b.ok {
				dc.DrawLine(a.x, a.y, b.x, b.y)
			}
		}
	}
	dc.Stroke()

	if drawn > 0 {
		DrawRectangleEmpty(dc, box, c, 1)
	}

	marker := Complement(c)
	cx := float64(sceneW)/2 + float64(params.PrincipalPoint.X)*scale
	cy := float64(sceneH)/2 - float64(params.PrincipalPoint.Y)*scale
	DrawCrosshair(dc, cx, cy, 8, marker, 2)

	if params.Label != "" {
		DrawString(dc, params.Label, image.Pt(8, 8), marker, 14)
	}
	return dc.Image(), nil
}

// SavePNG writes img to path as a PNG, replacing any previous file atomically.
func SavePNG(path string, img image.Image) error {
	return utils.AtomicWriteFile(path, 0o644, func(w io.Writer) error {
		return imaging.Encode(w, img, imaging.PNG)
	})
}

package rimage

import (
	"image"
	// register image decoders for DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "github.com/lmittmann/ppm" // register ppm
	_ "github.com/xfmoulet/qoi"  // register qoi
	goutils "go.viam.com/utils"
	_ "golang.org/x/image/bmp"  // register bmp
	_ "golang.org/x/image/tiff" // register tiff
	_ "golang.org/x/image/webp" // register webp

	"go.viam.com/meshpose/utils"
)

// Extent is the inclusive pixel index range of an image, (x0, x1, y0, y1, z0, z1). A 2D image of
// width w and height h has the extent (0, w-1, 0, h-1, 0, 0).
type Extent struct {
	X0, X1 int
	Y0, Y1 int
	Z0, Z1 int
}

// ExtentFromSize returns the extent of a w by h image.
func ExtentFromSize(w, h int) Extent {
	return Extent{X1: w - 1, Y1: h - 1}
}

// Width is the number of pixel columns.
func (e Extent) Width() int {
	return e.X1 - e.X0 + 1
}

// Height is the number of pixel rows.
func (e Extent) Height() int {
	return e.Y1 - e.Y0 + 1
}

// Validate returns a precondition error for empty extents.
func (e Extent) Validate() error {
	if e.Width() <= 0 || e.Height() <= 0 {
		return utils.NewPreconditionError("image extent must be non-empty, got %dx%d", e.Width(), e.Height())
	}
	return nil
}

// ReadExtent reads the extent of the image at path from its header without decoding the pixels.
func ReadExtent(path string) (Extent, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return Extent{}, utils.NewIOError("open", path, err)
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Extent{}, utils.NewIOError("decode", path, err)
	}
	extent := ExtentFromSize(cfg.Width, cfg.Height)
	if err := extent.Validate(); err != nil {
		return Extent{}, utils.NewIOError("decode "+format, path, err)
	}
	return extent, nil
}

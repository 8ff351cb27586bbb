package rimage

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"go.viam.com/meshpose/utils"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestExtent(t *testing.T) {
	e := ExtentFromSize(640, 480)
	test.That(t, e, test.ShouldResemble, Extent{X1: 639, Y1: 479})
	test.That(t, e.Width(), test.ShouldEqual, 640)
	test.That(t, e.Height(), test.ShouldEqual, 480)
	test.That(t, e.Validate(), test.ShouldBeNil)

	shifted := Extent{X0: 10, X1: 19, Y0: -5, Y1: 4}
	test.That(t, shifted.Width(), test.ShouldEqual, 10)
	test.That(t, shifted.Height(), test.ShouldEqual, 10)

	err := ExtentFromSize(0, 10).Validate()
	test.That(t, errors.Is(err, utils.ErrPrecondition), test.ShouldBeTrue)
}

func TestReadExtent(t *testing.T) {
	dir := t.TempDir()
	img := solidImage(32, 20, color.White)

	pngPath := filepath.Join(dir, "a.png")
	test.That(t, SavePNG(pngPath, img), test.ShouldBeNil)

	bmpPath := filepath.Join(dir, "b.bmp")
	f, err := os.Create(bmpPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bmp.Encode(f, img), test.ShouldBeNil)
	test.That(t, f.Close(), test.ShouldBeNil)

	tiffPath := filepath.Join(dir, "c.tiff")
	f, err = os.Create(tiffPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tiff.Encode(f, img, nil), test.ShouldBeNil)
	test.That(t, f.Close(), test.ShouldBeNil)

	for _, path := range []string{pngPath, bmpPath, tiffPath} {
		e, err := ReadExtent(path)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, e, test.ShouldResemble, ExtentFromSize(32, 20))
	}

	_, err = ReadExtent(filepath.Join(dir, "missing.png"))
	test.That(t, errors.Is(err, utils.ErrIO), test.ShouldBeTrue)
	test.That(t, errors.Is(err, os.ErrNotExist), test.ShouldBeTrue)

	garbage := filepath.Join(dir, "garbage.png")
	test.That(t, os.WriteFile(garbage, []byte("not an image"), 0o600), test.ShouldBeNil)
	_, err = ReadExtent(garbage)
	test.That(t, errors.Is(err, utils.ErrIO), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "decode")
}

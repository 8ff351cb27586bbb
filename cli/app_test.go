package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.viam.com/test"

	"go.viam.com/meshpose/annotation"
	"go.viam.com/meshpose/logging"
	"go.viam.com/meshpose/rimage"
	"go.viam.com/meshpose/utils"
)

const tetrahedronPLY = `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
element face 2
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
0 1 0
1 1 2
3 0 1 2
3 1 3 2
`

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := NewApp(&out, &errOut)
	err := app.Run(append([]string{"meshpose"}, args...))
	return out.String(), errOut.String(), err
}

func writeInputs(t *testing.T) (dir, imagePath, meshPath string) {
	t.Helper()
	dir = t.TempDir()
	imagePath = filepath.Join(dir, "street.png")
	meshPath = filepath.Join(dir, "tetra.ply")
	test.That(t, rimage.SavePNG(imagePath, image.NewRGBA(image.Rect(0, 0, 640, 480))), test.ShouldBeNil)
	test.That(t, os.WriteFile(meshPath, []byte(tetrahedronPLY), 0o600), test.ShouldBeNil)
	return dir, imagePath, meshPath
}

func TestPoseCommand(t *testing.T) {
	out, _, err := runApp(t, "pose",
		"--position", "0,0,10", "--focal", "0,0,0", "--roll", "15", "--image-size", "640x480")
	test.That(t, err, test.ShouldBeNil)

	var doc annotation.CameraParametersDocument
	test.That(t, json.Unmarshal([]byte(out), &doc), test.ShouldBeNil)
	test.That(t, doc.Elevation, test.ShouldAlmostEqual, 90.0)
	test.That(t, doc.Azimuth, test.ShouldAlmostEqual, 0.0)
	test.That(t, doc.Distance, test.ShouldAlmostEqual, 10.0)
	test.That(t, doc.InplaneRotation, test.ShouldAlmostEqual, 15.0, 1e-6)
	test.That(t, doc.PrincipalPoint, test.ShouldResemble, [2]int{0, 0})
	test.That(t, doc.CameraPosition, test.ShouldResemble, [3]float64{0, 0, 10})

	_, imagePath, _ := writeInputs(t)
	out, _, err = runApp(t, "pose",
		"--position", "0,0,10", "--focal", "0,0,0", "--displacement", "1,0,0", "--image", imagePath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, json.Unmarshal([]byte(out), &doc), test.ShouldBeNil)
	test.That(t, doc.PrincipalPoint[0], test.ShouldBeGreaterThan, 0)
	test.That(t, doc.PrincipalPoint[1], test.ShouldEqual, 0)
	test.That(t, doc.ModelMassCenterPosition, test.ShouldResemble, [3]float64{1, 0, 0})
}

func TestPoseCommandErrors(t *testing.T) {
	_, _, err := runApp(t, "pose", "--position", "0,0,10", "--focal", "0,0,0")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "one of --image or --image-size")

	_, _, err = runApp(t, "pose", "--position", "0,0,10", "--focal", "0,0,0",
		"--image", "a.png", "--image-size", "10x10")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "mutually exclusive")

	_, _, err = runApp(t, "pose", "--position", "0,0", "--focal", "0,0,0", "--image-size", "10x10")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "--position")

	_, _, err = runApp(t, "pose", "--position", "0,0,0", "--focal", "0,0,0", "--image-size", "10x10")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, utils.ErrPrecondition), test.ShouldBeTrue)
}

func TestPositionCommand(t *testing.T) {
	out, _, err := runApp(t, "position", "--azimuth", "90", "--elevation", "0", "--distance", "2", "--focal", "1,1,1")
	test.That(t, err, test.ShouldBeNil)
	var xyz [3]float64
	test.That(t, json.Unmarshal([]byte(out), &xyz), test.ShouldBeNil)
	test.That(t, xyz[0], test.ShouldAlmostEqual, 1.0)
	test.That(t, xyz[1], test.ShouldAlmostEqual, 3.0)
	test.That(t, xyz[2], test.ShouldAlmostEqual, 1.0)

	_, _, err = runApp(t, "position", "--azimuth", "90")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestAnnotateShowVerify(t *testing.T) {
	dir, imagePath, meshPath := writeInputs(t)
	metricsPath := filepath.Join(dir, "street.txt")

	_, _, err := runApp(t, "annotate", "--image", imagePath, "--mesh", meshPath, "--category", "car")
	test.That(t, err, test.ShouldBeNil)
	out, _, err := runApp(t, "annotate", "--image", imagePath, "--mesh", meshPath,
		"--category", "car", "--azimuth", "30", "--elevation", "-20", "--rotation", "5", "--move", "1,0", "--truncated")
	test.That(t, err, test.ShouldBeNil)
	var doc annotation.CameraParametersDocument
	test.That(t, json.Unmarshal([]byte(out), &doc), test.ShouldBeNil)
	test.That(t, doc.InplaneRotation, test.ShouldAlmostEqual, 5.0, 1e-6)

	set, err := annotation.ReadFile(metricsPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, set.ImageName, test.ShouldEqual, "street")
	test.That(t, set.Metrics, test.ShouldHaveLength, 2)
	test.That(t, set.Metrics[1].Truncated, test.ShouldBeTrue)
	test.That(t, set.Metrics[1].ModelCategory, test.ShouldEqual, "car")

	out, _, err = runApp(t, "show", metricsPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "tetra")
	test.That(t, out, test.ShouldContainSubstring, "street")

	out, _, err = runApp(t, "verify", metricsPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "PASS")
	test.That(t, out, test.ShouldContainSubstring, "2 poses")

	tampered := set.Clone()
	tampered.Metrics[0].CameraParameters.Distance += 1
	tampered.Metrics[1].CameraParameters.Azimuth += 10
	badPath := filepath.Join(dir, "tampered.txt")
	test.That(t, annotation.WriteFile(badPath, tampered), test.ShouldBeNil)

	out, _, err = runApp(t, "verify", metricsPath, badPath)
	test.That(t, err, test.ShouldNotBeNil)
	var exitErr cli.ExitCoder
	test.That(t, errors.As(err, &exitErr), test.ShouldBeTrue)
	test.That(t, exitErr.ExitCode(), test.ShouldEqual, 1)
	test.That(t, out, test.ShouldContainSubstring, "FAIL")
	test.That(t, out, test.ShouldContainSubstring, "metrics[0] (tetra): distance")
	test.That(t, out, test.ShouldContainSubstring, "metrics[1] (tetra): azimuth")

	_, _, err = runApp(t, "verify", filepath.Join(dir, "missing.txt"))
	test.That(t, err, test.ShouldNotBeNil)
	_, _, err = runApp(t, "show")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestAnnotateOtherImage(t *testing.T) {
	dir, imagePath, meshPath := writeInputs(t)
	metricsPath := filepath.Join(dir, "shared.txt")
	test.That(t, annotation.WriteFile(metricsPath, annotation.NewSet("other", "/elsewhere/other.png")), test.ShouldBeNil)

	_, errOut, err := runApp(t, "annotate", "--image", imagePath, "--mesh", meshPath, "--metrics", metricsPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldContainSubstring, "metrics file belongs to another image")

	set, err := annotation.ReadFile(metricsPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, set.ImagePath, test.ShouldEqual, imagePath)
	test.That(t, set.Metrics, test.ShouldHaveLength, 1)
}

func TestPreviewCommand(t *testing.T) {
	dir, imagePath, meshPath := writeInputs(t)
	out := filepath.Join(dir, "preview.png")
	_, _, err := runApp(t, "preview", "--image", imagePath, "--mesh", meshPath, "--azimuth", "15", "--out", out)
	test.That(t, err, test.ShouldBeNil)

	extent, err := rimage.ReadExtent(out)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, extent.Width(), test.ShouldEqual, 640)
	test.That(t, extent.Height(), test.ShouldEqual, 240)
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "meshpose.json")
	test.That(t, os.WriteFile(cfgPath, []byte(`{"viewport": {"width": 800, "height": 600}}`), 0o600), test.ShouldBeNil)

	out, _, err := runApp(t, "--config", cfgPath, "pose",
		"--position", "0,0,10", "--focal", "0,0,0", "--displacement", "1,0,0", "--image-size", "640x480")
	test.That(t, err, test.ShouldBeNil)
	var fromConfig annotation.CameraParametersDocument
	test.That(t, json.Unmarshal([]byte(out), &fromConfig), test.ShouldBeNil)

	out, _, err = runApp(t, "pose", "--viewport", "800x600",
		"--position", "0,0,10", "--focal", "0,0,0", "--displacement", "1,0,0", "--image-size", "640x480")
	test.That(t, err, test.ShouldBeNil)
	var fromFlag annotation.CameraParametersDocument
	test.That(t, json.Unmarshal([]byte(out), &fromFlag), test.ShouldBeNil)
	test.That(t, fromConfig.PrincipalPoint, test.ShouldResemble, fromFlag.PrincipalPoint)

	test.That(t, os.WriteFile(cfgPath, []byte(`{"viewport": {"width": -1, "height": 600}}`), 0o600), test.ShouldBeNil)
	_, _, err = runApp(t, "--config", cfgPath, "pose",
		"--position", "0,0,10", "--focal", "0,0,0", "--image-size", "640x480")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "viewport")
}

func TestSchemaCommand(t *testing.T) {
	out, _, err := runApp(t, "schema")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, json.Valid([]byte(out)), test.ShouldBeTrue)
	test.That(t, out, test.ShouldContainSubstring, "model_mass_center_position")
}

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "street.txt")
	test.That(t, annotation.WriteFile(path, annotation.NewSet("street", "street.png")), test.ShouldBeNil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	names := make(chan string, 16)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, logging.NewTestLogger(t), func() error {
			set, err := annotation.ReadFile(path)
			if err != nil {
				return err
			}
			names <- set.ImageName
			return nil
		})
	}()

	waitFor := func(want string) {
		t.Helper()
		timeout := time.After(10 * time.Second)
		for {
			select {
			case got := <-names:
				if got == want {
					return
				}
			case <-timeout:
				t.Fatalf("timed out waiting for %q", want)
			}
		}
	}
	waitFor("street")
	test.That(t, annotation.WriteFile(path, annotation.NewSet("avenue", "avenue.png")), test.ShouldBeNil)
	waitFor("avenue")

	cancel()
	select {
	case err := <-done:
		test.That(t, err, test.ShouldBeNil)
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not stop")
	}
}

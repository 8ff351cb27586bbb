package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"

	"go.viam.com/meshpose/camera"
	"go.viam.com/meshpose/logging"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	test.That(t, cfg.Viewport, test.ShouldResemble, camera.ViewportSize{Width: 640, Height: 480})
	test.That(t, cfg.Camera.ViewAngle, test.ShouldEqual, 30.0)
	test.That(t, cfg.Camera.ClippingRange, test.ShouldResemble, [2]float64{0.01, 1000.01})
	test.That(t, cfg.ModelMoveResolution, test.ShouldEqual, 1.0)
	test.That(t, cfg.CameraMoveResolution, test.ShouldEqual, 1.0)
	test.That(t, cfg.MetricsExtension, test.ShouldEqual, ".txt")
	test.That(t, cfg.ModelColor, test.ShouldEqual, "#0000ff")
	test.That(t, cfg.Log.Level, test.ShouldEqual, logging.INFO)

	c := cfg.NewCamera()
	test.That(t, c.ViewAngle(), test.ShouldEqual, 30.0)
}

func TestRead(t *testing.T) {
	logger := logging.NewTestLogger(t)
	t.Setenv("MESHPOSE_TEST_COLOR", "#ff8800")

	path := filepath.Join(t.TempDir(), "meshpose.json")
	content := `{
		"viewport": {"width": 1280, "height": 960},
		"camera": {"view_angle": 45},
		"model_move_resolution": 0.25,
		"metrics_extension": ".json",
		"default_category": "car",
		"model_color": "${MESHPOSE_TEST_COLOR}",
		"log": {"level": "debug"}
	}`
	test.That(t, os.WriteFile(path, []byte(content), 0o600), test.ShouldBeNil)

	cfg, err := Read(path, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, path)
	test.That(t, cfg.Viewport, test.ShouldResemble, camera.ViewportSize{Width: 1280, Height: 960})
	test.That(t, cfg.Camera.ViewAngle, test.ShouldEqual, 45.0)
	test.That(t, cfg.Camera.ClippingRange, test.ShouldResemble, [2]float64{0.01, 1000.01})
	test.That(t, cfg.ModelMoveResolution, test.ShouldEqual, 0.25)
	test.That(t, cfg.CameraMoveResolution, test.ShouldEqual, 1.0)
	test.That(t, cfg.MetricsExtension, test.ShouldEqual, ".json")
	test.That(t, cfg.DefaultCategory, test.ShouldEqual, "car")
	test.That(t, cfg.ModelColor, test.ShouldEqual, "#ff8800")
	test.That(t, cfg.Log.Level, test.ShouldEqual, logging.DEBUG)

	_, err = Read(filepath.Join(t.TempDir(), "missing.json"), logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFromReaderErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)
	for _, tc := range []struct {
		name     string
		content  string
		contains string
	}{
		{"unknown field", `{"viewport_size": 3}`, "viewport_size"},
		{"bad json", `{`, "failed to decode"},
		{"bad level", `{"log": {"level": "loud"}}`, "loud"},
		{"bad viewport", `{"viewport": {"width": -1, "height": 480}}`, "viewport"},
		{"bad view angle", `{"camera": {"view_angle": 200}}`, "camera.view_angle"},
		{"bad clipping", `{"camera": {"clipping_range": [5, 1]}}`, "camera.clipping_range"},
		{"bad step", `{"camera_move_resolution": -2}`, "camera_move_resolution"},
		{"bad extension", `{"metrics_extension": "txt"}`, "metrics_extension"},
		{"bad color", `{"model_color": "blue"}`, "model_color"},
		{"log file without name", `{"log": {"file": {"max_size_mb": 3}}}`, "filename"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromReader("", strings.NewReader(tc.content), logger)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.contains)
		})
	}
}

// Package config defines the structures to configure an annotation session.
package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/meshpose/camera"
	"go.viam.com/meshpose/logging"
	"go.viam.com/meshpose/rimage"
)

// Defaults applied by Ensure to unset fields.
const (
	DefaultViewportWidth        = 640
	DefaultViewportHeight       = 480
	DefaultModelMoveResolution  = 1.0
	DefaultCameraMoveResolution = 1.0
	DefaultMetricsExtension     = ".txt"
	DefaultModelColor           = "#0000ff"
)

// A Config describes the configuration of the annotation tool.
type Config struct {
	ConfigFilePath string `json:"-"`

	// Viewport is the size of the render surface; the scene occupies its top half.
	Viewport camera.ViewportSize `json:"viewport"`
	Camera   CameraConfig        `json:"camera"`
	// ModelMoveResolution is how far in world units one move step displaces the model.
	ModelMoveResolution float64 `json:"model_move_resolution"`
	// CameraMoveResolution is how many degrees one camera step rotates.
	CameraMoveResolution float64   `json:"camera_move_resolution"`
	MetricsExtension     string    `json:"metrics_extension"`
	DefaultCategory      string    `json:"default_category"`
	ModelColor           string    `json:"model_color"`
	Log                  LogConfig `json:"log"`
}

// CameraConfig configures the initial camera lens.
type CameraConfig struct {
	ViewAngle     float64    `json:"view_angle"`
	ClippingRange [2]float64 `json:"clipping_range"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level logging.Level               `json:"level"`
	File  *logging.FileAppenderConfig `json:"file,omitempty"`
}

// Default returns a valid configuration with every field at its default.
func Default() *Config {
	cfg := &Config{}
	if err := cfg.Ensure(); err != nil {
		panic(err)
	}
	return cfg
}

// Ensure fills unset fields with their defaults and validates the result.
func (cfg *Config) Ensure() error {
	if cfg.Viewport.Width == 0 && cfg.Viewport.Height == 0 {
		cfg.Viewport = camera.ViewportSize{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if cfg.Camera.ViewAngle == 0 {
		cfg.Camera.ViewAngle = camera.DefaultViewAngle
	}
	if cfg.Camera.ClippingRange == [2]float64{} {
		cfg.Camera.ClippingRange = [2]float64{camera.DefaultNear, camera.DefaultFar}
	}
	if cfg.ModelMoveResolution == 0 {
		cfg.ModelMoveResolution = DefaultModelMoveResolution
	}
	if cfg.CameraMoveResolution == 0 {
		cfg.CameraMoveResolution = DefaultCameraMoveResolution
	}
	if cfg.MetricsExtension == "" {
		cfg.MetricsExtension = DefaultMetricsExtension
	}
	if cfg.ModelColor == "" {
		cfg.ModelColor = DefaultModelColor
	}
	return cfg.Validate("")
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.Viewport.Width <= 0 || cfg.Viewport.Height < 2 {
		return goutils.NewConfigValidationError(join(path, "viewport"),
			errors.Errorf("must be at least 1x2, got %dx%d", cfg.Viewport.Width, cfg.Viewport.Height))
	}
	if err := cfg.Camera.Validate(join(path, "camera")); err != nil {
		return err
	}
	if cfg.ModelMoveResolution <= 0 {
		return goutils.NewConfigValidationError(join(path, "model_move_resolution"), errors.New("must be positive"))
	}
	if cfg.CameraMoveResolution <= 0 {
		return goutils.NewConfigValidationError(join(path, "camera_move_resolution"), errors.New("must be positive"))
	}
	if cfg.MetricsExtension == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "metrics_extension")
	}
	if !strings.HasPrefix(cfg.MetricsExtension, ".") {
		return goutils.NewConfigValidationError(join(path, "metrics_extension"),
			errors.Errorf("%q must start with a dot", cfg.MetricsExtension))
	}
	if _, err := rimage.ParseColor(cfg.ModelColor); err != nil {
		return goutils.NewConfigValidationError(join(path, "model_color"), err)
	}
	if cfg.Log.File != nil && cfg.Log.File.Filename == "" {
		return goutils.NewConfigValidationFieldRequiredError(join(path, "log.file"), "filename")
	}
	return nil
}

// Validate ensures the lens is usable.
func (cfg *CameraConfig) Validate(path string) error {
	if cfg.ViewAngle <= 0 || cfg.ViewAngle >= 180 {
		return goutils.NewConfigValidationError(join(path, "view_angle"),
			errors.Errorf("must be in (0, 180), got %v", cfg.ViewAngle))
	}
	near, far := cfg.ClippingRange[0], cfg.ClippingRange[1]
	if near <= 0 || far <= near {
		return goutils.NewConfigValidationError(join(path, "clipping_range"),
			errors.Errorf("need 0 < near < far, got [%v, %v]", near, far))
	}
	return nil
}

// NewCamera returns the camera a session starts with.
func (cfg *Config) NewCamera() *camera.Camera {
	c := camera.NewCamera()
	c.SetViewAngle(cfg.Camera.ViewAngle)
	c.SetClippingRange(cfg.Camera.ClippingRange[0], cfg.Camera.ClippingRange[1])
	return c
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return fmt.Sprintf("%s.%s", path, field)
}

package cli

import (
	"fmt"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/urfave/cli/v2"

	"go.viam.com/meshpose/camera"
	"go.viam.com/meshpose/config"
	"go.viam.com/meshpose/logging"
	"go.viam.com/meshpose/utils"
)

// globals holds what every command needs: the configuration and a logger writing to the error
// stream.
type globals struct {
	cfg    *config.Config
	logger logging.Logger
}

func newGlobals(c *cli.Context) (*globals, error) {
	logger := logging.NewBlankLogger("meshpose")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	logger.SetLevel(logging.INFO)
	if c.Bool(generalFlagDebug) {
		logger.SetLevel(logging.DEBUG)
	}

	cfg := config.Default()
	if path := c.String(generalFlagConfig); path != "" {
		var err error
		if cfg, err = config.Read(path, logger); err != nil {
			return nil, err
		}
		if !c.Bool(generalFlagDebug) {
			logger.SetLevel(cfg.Log.Level)
		}
	}
	if cfg.Log.File != nil {
		logger.AddAppender(logging.NewFileAppender(*cfg.Log.File))
	}
	if c.Command != nil && c.Command.Name != "" {
		return &globals{cfg: cfg, logger: logger.Sublogger(c.Command.Name)}, nil
	}
	return &globals{cfg: cfg, logger: logger}, nil
}

// parseVector parses "x,y,z".
func parseVector(flag, value string) (r3.Vector, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return r3.Vector{}, errors.Errorf("--%s: expected X,Y,Z, got %q", flag, value)
	}
	var xyz [3]float64
	for i, part := range parts {
		f, err := cast.ToFloat64E(strings.TrimSpace(part))
		if err != nil {
			return r3.Vector{}, errors.Wrapf(err, "--%s", flag)
		}
		if !utils.IsFinite(f) {
			return r3.Vector{}, errors.Errorf("--%s: %q is not finite", flag, part)
		}
		xyz[i] = f
	}
	return r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// parseSize parses "WxH".
func parseSize(flag, value string) (width, height int, err error) {
	parts := strings.Split(strings.ToLower(value), "x")
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("--%s: expected WxH, got %q", flag, value)
	}
	if width, err = cast.ToIntE(strings.TrimSpace(parts[0])); err != nil {
		return 0, 0, errors.Wrapf(err, "--%s", flag)
	}
	if height, err = cast.ToIntE(strings.TrimSpace(parts[1])); err != nil {
		return 0, 0, errors.Wrapf(err, "--%s", flag)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, errors.Errorf("--%s: size must be positive, got %q", flag, value)
	}
	return width, height, nil
}

// parseStep parses "dx,dy".
func parseStep(flag, value string) (dx, dy float64, err error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("--%s: expected DX,DY, got %q", flag, value)
	}
	if dx, err = cast.ToFloat64E(strings.TrimSpace(parts[0])); err != nil {
		return 0, 0, errors.Wrapf(err, "--%s", flag)
	}
	if dy, err = cast.ToFloat64E(strings.TrimSpace(parts[1])); err != nil {
		return 0, 0, errors.Wrapf(err, "--%s", flag)
	}
	return dx, dy, nil
}

// cameraFromFlags builds the camera described by the camera flags.
func cameraFromFlags(c *cli.Context, cfg *config.Config) (*camera.Camera, error) {
	position, err := parseVector(cameraFlagPosition, c.String(cameraFlagPosition))
	if err != nil {
		return nil, err
	}
	focal, err := parseVector(cameraFlagFocal, c.String(cameraFlagFocal))
	if err != nil {
		return nil, err
	}
	up, err := parseVector(cameraFlagViewUp, c.String(cameraFlagViewUp))
	if err != nil {
		return nil, err
	}

	cam := cfg.NewCamera()
	cam.SetPosition(position)
	cam.SetFocalPoint(focal)
	cam.SetViewUp(up)
	if c.IsSet(cameraFlagViewAngle) {
		cam.SetViewAngle(c.Float64(cameraFlagViewAngle))
	}
	if err := cam.State().Validate(); err != nil {
		return nil, err
	}
	if c.IsSet(cameraFlagRoll) {
		cam.SetRoll(c.Float64(cameraFlagRoll))
	}
	return cam, nil
}

func printf(c *cli.Context, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(c.App.Writer, format+"\n", a...)
}

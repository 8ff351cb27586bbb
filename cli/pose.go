package cli

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/meshpose/annotation"
	"go.viam.com/meshpose/camera"
	"go.viam.com/meshpose/pose"
	"go.viam.com/meshpose/rimage"
	"go.viam.com/meshpose/utils"
)

// PoseAction is the corresponding Action for 'pose'.
func PoseAction(c *cli.Context) error {
	g, err := newGlobals(c)
	if err != nil {
		return err
	}
	cam, err := cameraFromFlags(c, g.cfg)
	if err != nil {
		return err
	}
	displacement, err := parseVector(cameraFlagDisplacement, c.String(cameraFlagDisplacement))
	if err != nil {
		return err
	}
	extent, err := extentFromFlags(c)
	if err != nil {
		return err
	}
	viewport := g.cfg.Viewport
	if c.IsSet(imageFlagViewport) {
		w, h, err := parseSize(imageFlagViewport, c.String(imageFlagViewport))
		if err != nil {
			return err
		}
		viewport = camera.ViewportSize{Width: w, Height: h}
	}

	p, err := pose.ComputePose(cam.State(), displacement, extent, viewport)
	if err != nil {
		return err
	}
	g.logger.Debugw("pose computed", "reconstruction_error", p.ReconstructionError())
	data, err := annotation.MarshalPose(p)
	if err != nil {
		return err
	}
	printf(c, "%s", data)
	return nil
}

func extentFromFlags(c *cli.Context) (rimage.Extent, error) {
	switch {
	case c.IsSet(imageFlagPath) && c.IsSet(imageFlagSize):
		return rimage.Extent{}, errors.Errorf("--%s and --%s are mutually exclusive", imageFlagPath, imageFlagSize)
	case c.IsSet(imageFlagPath):
		return rimage.ReadExtent(c.String(imageFlagPath))
	case c.IsSet(imageFlagSize):
		w, h, err := parseSize(imageFlagSize, c.String(imageFlagSize))
		if err != nil {
			return rimage.Extent{}, err
		}
		return rimage.ExtentFromSize(w, h), nil
	}
	return rimage.Extent{}, errors.Errorf("one of --%s or --%s is required", imageFlagPath, imageFlagSize)
}

// PositionAction is the corresponding Action for 'position'.
func PositionAction(c *cli.Context) error {
	focal, err := parseVector(cameraFlagFocal, c.String(cameraFlagFocal))
	if err != nil {
		return err
	}
	azimuth, elevation, distance := c.Float64(sessionFlagAzimuth), c.Float64(sessionFlagElevation), c.Float64(positionFlagDistance)
	if !utils.IsFinite(azimuth, elevation, distance) {
		return errors.New("pose values must be finite")
	}
	position := focal.Add(pose.ComputePositionDegrees(azimuth, elevation, distance))
	data, err := json.Marshal([3]float64{position.X, position.Y, position.Z})
	if err != nil {
		return err
	}
	printf(c, "%s", data)
	return nil
}

// SchemaAction is the corresponding Action for 'schema'.
func SchemaAction(c *cli.Context) error {
	data, err := json.MarshalIndent(annotation.Schema(), "", "    ")
	if err != nil {
		return err
	}
	printf(c, "%s", data)
	return nil
}

package cli

import (
	"os"

	"github.com/urfave/cli/v2"

	"go.viam.com/meshpose/annotation"
	"go.viam.com/meshpose/pose"
	"go.viam.com/meshpose/rimage"
	"go.viam.com/meshpose/session"
)

// runSession loads the image and mesh of the session flags and applies the camera and model
// manipulations they request to a locked overlay.
func runSession(c *cli.Context, g *globals) (*session.Session, error) {
	s := session.New(g.cfg, g.logger)
	if err := s.LoadImage(c.String(imageFlagPath)); err != nil {
		return nil, err
	}
	if err := s.LoadMesh(c.String(sessionFlagMesh)); err != nil {
		return nil, err
	}
	if err := s.LockOverlay(); err != nil {
		return nil, err
	}
	if err := s.SetAzimuth(c.Float64(sessionFlagAzimuth)); err != nil {
		return nil, err
	}
	if err := s.SetElevation(c.Float64(sessionFlagElevation)); err != nil {
		return nil, err
	}
	if err := s.SetInPlaneRotation(c.Float64(sessionFlagRotation)); err != nil {
		return nil, err
	}
	if err := s.SetZoom(c.Float64(sessionFlagZoom)); err != nil {
		return nil, err
	}
	if c.IsSet(sessionFlagMove) {
		dx, dy, err := parseStep(sessionFlagMove, c.String(sessionFlagMove))
		if err != nil {
			return nil, err
		}
		if err := s.MoveModel(dx, dy); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AnnotateAction is the corresponding Action for 'annotate'.
func AnnotateAction(c *cli.Context) error {
	g, err := newGlobals(c)
	if err != nil {
		return err
	}
	s, err := runSession(c, g)
	if err != nil {
		return err
	}
	if c.IsSet(sessionFlagMetrics) {
		s.SetOutputPath(c.String(sessionFlagMetrics))
	}

	// Append to the annotations already made for this image.
	if _, err := os.Stat(s.OutputPath()); err == nil {
		existing, err := annotation.ReadFile(s.OutputPath())
		if err != nil {
			return err
		}
		if existing.ImagePath == s.ImagePath() {
			if err := s.LoadMetrics(s.OutputPath()); err != nil {
				return err
			}
		} else {
			g.logger.Warnw("metrics file belongs to another image, overwriting",
				"path", s.OutputPath(), "image", existing.ImagePath)
		}
	}

	a, err := s.SaveAnnotation(c.String(sessionFlagCategory), c.Bool(sessionFlagTruncated), c.Bool(sessionFlagOccluded))
	if err != nil {
		return err
	}
	if err := s.WriteMetrics(); err != nil {
		return err
	}
	data, err := annotation.MarshalPose(a.CameraParameters)
	if err != nil {
		return err
	}
	printf(c, "%s", data)
	return nil
}

// PreviewAction is the corresponding Action for 'preview'.
func PreviewAction(c *cli.Context) error {
	g, err := newGlobals(c)
	if err != nil {
		return err
	}
	s, err := runSession(c, g)
	if err != nil {
		return err
	}
	state := s.SceneCamera().State()
	p, err := pose.ComputePose(state, s.Displacement(), s.Extent(), g.cfg.Viewport)
	if err != nil {
		return err
	}
	modelColor, err := rimage.ParseColor(g.cfg.ModelColor)
	if err != nil {
		return err
	}
	img, err := rimage.RenderOverlay(rimage.OverlayParams{
		ImagePath:      s.ImagePath(),
		Viewport:       g.cfg.Viewport,
		State:          state,
		Vertices:       s.Mesh().Vertices(),
		Faces:          s.Mesh().Faces(),
		PrincipalPoint: p.PrincipalPoint,
		Color:          modelColor,
		Label:          s.Mesh().Name(),
	})
	if err != nil {
		return err
	}
	out := c.String(sessionFlagOut)
	if err := rimage.SavePNG(out, img); err != nil {
		return err
	}
	g.logger.Infow("preview written", "path", out)
	return nil
}

// Package cli contains the meshpose command line: pose computation, annotation of photographs
// and inspection of metrics files.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	generalFlagConfig = "config"
	generalFlagDebug  = "debug"

	cameraFlagPosition     = "position"
	cameraFlagFocal        = "focal"
	cameraFlagViewUp       = "view-up"
	cameraFlagRoll         = "roll"
	cameraFlagViewAngle    = "view-angle"
	cameraFlagDisplacement = "displacement"

	imageFlagPath     = "image"
	imageFlagSize     = "image-size"
	imageFlagViewport = "viewport"

	sessionFlagMesh      = "mesh"
	sessionFlagAzimuth   = "azimuth"
	sessionFlagElevation = "elevation"
	sessionFlagRotation  = "rotation"
	sessionFlagZoom      = "zoom"
	sessionFlagMove      = "move"
	sessionFlagCategory  = "category"
	sessionFlagTruncated = "truncated"
	sessionFlagOccluded  = "occluded"
	sessionFlagMetrics   = "metrics"
	sessionFlagOut       = "out"

	positionFlagDistance = "distance"

	showFlagFollow      = "follow"
	verifyFlagTolerance = "tolerance"
)

var cameraFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     cameraFlagPosition,
		Usage:    "camera position as `X,Y,Z`",
		Required: true,
	},
	&cli.StringFlag{
		Name:     cameraFlagFocal,
		Usage:    "camera focal point as `X,Y,Z`",
		Required: true,
	},
	&cli.StringFlag{
		Name:  cameraFlagViewUp,
		Usage: "camera view-up vector as `X,Y,Z`",
		Value: "0,1,0",
	},
	&cli.Float64Flag{
		Name:  cameraFlagRoll,
		Usage: "roll the camera to `DEGREES`",
	},
	&cli.Float64Flag{
		Name:  cameraFlagViewAngle,
		Usage: "vertical view angle in `DEGREES` (default from config)",
	},
}

var sessionFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     imageFlagPath,
		Usage:    "photograph to annotate",
		Required: true,
	},
	&cli.StringFlag{
		Name:     sessionFlagMesh,
		Usage:    "model to align (.ply; anything else shows a sphere)",
		Required: true,
	},
	&cli.Float64Flag{
		Name:  sessionFlagAzimuth,
		Usage: "rotate the camera about the model by `DEGREES` of azimuth",
	},
	&cli.Float64Flag{
		Name:  sessionFlagElevation,
		Usage: "rotate the camera about the model by `DEGREES` of elevation",
	},
	&cli.Float64Flag{
		Name:  sessionFlagRotation,
		Usage: "in-plane rotation in `DEGREES`",
	},
	&cli.Float64Flag{
		Name:  sessionFlagZoom,
		Usage: "zoom `FACTOR`",
		Value: 1,
	},
	&cli.StringFlag{
		Name:  sessionFlagMove,
		Usage: "move the model by `DX,DY` steps",
	},
}

// NewApp returns the meshpose command line app writing to out and errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "meshpose",
		Usage:           "derive camera poses of 3D models aligned to photographs",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		// exit codes are handled by the caller
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    generalFlagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    generalFlagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "pose",
				Usage:     "compute the pose of a camera looking at a model",
				UsageText: "meshpose pose --position X,Y,Z --focal X,Y,Z (--image PATH | --image-size WxH) [options]",
				Flags: append(append([]cli.Flag{}, cameraFlags...),
					&cli.StringFlag{
						Name:  cameraFlagDisplacement,
						Usage: "model displacement from the focal point as `X,Y,Z`",
						Value: "0,0,0",
					},
					&cli.StringFlag{
						Name:  imageFlagPath,
						Usage: "photograph the model is aligned to",
					},
					&cli.StringFlag{
						Name:  imageFlagSize,
						Usage: "size of the photograph as `WxH`, instead of --image",
					},
					&cli.StringFlag{
						Name:  imageFlagViewport,
						Usage: "render surface size as `WxH` (default from config)",
					},
				),
				Action: PoseAction,
			},
			{
				Name:  "position",
				Usage: "reconstruct a camera position from azimuth, elevation and distance",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:     sessionFlagAzimuth,
						Usage:    "azimuth in `DEGREES`",
						Required: true,
					},
					&cli.Float64Flag{
						Name:     sessionFlagElevation,
						Usage:    "elevation in `DEGREES`",
						Required: true,
					},
					&cli.Float64Flag{
						Name:     positionFlagDistance,
						Usage:    "distance from the focal point",
						Required: true,
					},
					&cli.StringFlag{
						Name:  cameraFlagFocal,
						Usage: "focal point as `X,Y,Z`",
						Value: "0,0,0",
					},
				},
				Action: PositionAction,
			},
			{
				Name:  "annotate",
				Usage: "align a model to a photograph and append the pose to its metrics file",
				Flags: append(append([]cli.Flag{}, sessionFlags...),
					&cli.StringFlag{
						Name:  sessionFlagCategory,
						Usage: "model category (default from config)",
					},
					&cli.BoolFlag{
						Name:  sessionFlagTruncated,
						Usage: "the model is truncated by the image border",
					},
					&cli.BoolFlag{
						Name:  sessionFlagOccluded,
						Usage: "the model is occluded",
					},
					&cli.StringFlag{
						Name:  sessionFlagMetrics,
						Usage: "metrics `FILE` (default: the image path with the metrics extension)",
					},
				),
				Action: AnnotateAction,
			},
			{
				Name:  "preview",
				Usage: "render the aligned model over the photograph",
				Flags: append(append([]cli.Flag{}, sessionFlags...),
					&cli.StringFlag{
						Name:     sessionFlagOut,
						Usage:    "output PNG `FILE`",
						Required: true,
					},
				),
				Action: PreviewAction,
			},
			{
				Name:      "show",
				Usage:     "print a metrics file as a table",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    showFlagFollow,
						Aliases: []string{"f"},
						Usage:   "print the table again whenever the file changes",
					},
				},
				Action: ShowAction,
			},
			{
				Name:      "verify",
				Usage:     "check that every stored pose reconstructs its camera position",
				ArgsUsage: "<file> [<file>...]",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  verifyFlagTolerance,
						Usage: "allowed reconstruction error in world units",
						Value: defaultVerifyTolerance,
					},
				},
				Action: VerifyAction,
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of metrics files",
				Action: SchemaAction,
			},
		},
	}
}

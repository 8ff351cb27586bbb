package cli

import (
	"fmt"
	"math"

	"github.com/fatih/color"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats/scalar"

	"go.viam.com/meshpose/annotation"
	"go.viam.com/meshpose/utils"
)

const (
	defaultVerifyTolerance = 1e-6
	// angleTolerance bounds the disagreement in degrees between stored angles and the camera
	// position they were derived from.
	angleTolerance = 1e-6
)

// fileReport is the verification outcome of one metrics file.
type fileReport struct {
	path     string
	errs     []float64
	failures []string
}

// verifyFile checks that every pose of the file reconstructs its camera position and that its
// distance matches the position.
func verifyFile(path string, tolerance float64) (fileReport, error) {
	set, err := annotation.ReadFile(path)
	if err != nil {
		return fileReport{}, err
	}
	report := fileReport{path: path}
	for i, m := range set.Metrics {
		p := m.CameraParameters
		reconstruction := p.ReconstructionError()
		report.errs = append(report.errs, reconstruction)
		if !scalar.EqualWithinAbs(reconstruction, 0, tolerance) {
			report.failures = append(report.failures,
				fmt.Sprintf("metrics[%d] (%s): position is %g away from its reconstruction", i, m.ModelName, reconstruction))
		}
		v := p.CameraPosition.Sub(p.CameraFocalPoint)
		if actual := v.Norm(); !scalar.EqualWithinAbsOrRel(p.Distance, actual, tolerance, tolerance) {
			report.failures = append(report.failures,
				fmt.Sprintf("metrics[%d] (%s): distance %g does not match camera distance %g", i, m.ModelName, p.Distance, actual))
		}
		elevation := utils.RadToDeg(math.Atan2(v.Z, math.Hypot(v.X, v.Y)))
		if diff := utils.AngleDiffDeg(p.Elevation, elevation); diff > angleTolerance {
			report.failures = append(report.failures,
				fmt.Sprintf("metrics[%d] (%s): elevation %g is %g degrees off the camera position", i, m.ModelName, p.Elevation, diff))
		}
		// The azimuth of a camera straight above or below the focal point is arbitrary.
		if math.Hypot(v.X, v.Y) > tolerance {
			azimuth := utils.RadToDeg(math.Atan2(v.Y, v.X))
			if diff := utils.AngleDiffDeg(p.Azimuth, azimuth); diff > angleTolerance {
				report.failures = append(report.failures,
					fmt.Sprintf("metrics[%d] (%s): azimuth %g is %g degrees off the camera position", i, m.ModelName, p.Azimuth, diff))
			}
		}
	}
	return report, nil
}

// VerifyAction is the corresponding Action for 'verify'.
func VerifyAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("verify expects at least one metrics file")
	}
	g, err := newGlobals(c)
	if err != nil {
		return err
	}
	tolerance := c.Float64(verifyFlagTolerance)
	if tolerance < 0 {
		return errors.Errorf("--%s must not be negative", verifyFlagTolerance)
	}

	paths := c.Args().Slice()
	reports := make([]fileReport, len(paths))
	eg, ctx := errgroup.WithContext(c.Context)
	for i, path := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report, err := verifyFile(path, tolerance)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	pass := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()
	var all []float64
	failed := 0
	for _, report := range reports {
		all = append(all, report.errs...)
		if len(report.failures) == 0 {
			printf(c, "%s %s (%d poses)", pass("PASS"), report.path, len(report.errs))
			continue
		}
		failed++
		printf(c, "%s %s", fail("FAIL"), report.path)
		for _, failure := range report.failures {
			printf(c, "    %s", failure)
		}
	}

	if len(all) > 0 {
		mean, err := stats.Mean(all)
		if err != nil {
			return err
		}
		maxErr, err := stats.Max(all)
		if err != nil {
			return err
		}
		printf(c, "%d poses, reconstruction error mean %.3g max %.3g", len(all), mean, maxErr)
	}
	g.logger.Debugw("verification done", "files", len(paths), "failed", failed)
	if failed > 0 {
		return cli.Exit(errors.Errorf("%d of %d files failed verification", failed, len(paths)), 1)
	}
	return nil
}

package camera

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/meshpose/utils"
)

const axisEpsilon = 0.001

// rollOf decomposes the view rotation into Y, X and Z rotations applied in that order and
// returns the Z angle in degrees.
func rollOf(position, focal, up r3.Vector) float64 {
	_, orthoUp, normal := frame(position, focal, up)
	x2, y2, z2 := normal.X, normal.Y, normal.Z
	x3, y3, z3 := orthoUp.X, orthoUp.Y, orthoUp.Z

	// about y
	cosTheta, sinTheta := 1.0, 0.0
	d1 := math.Hypot(x2, z2)
	if d1 >= axisEpsilon {
		cosTheta, sinTheta = z2/d1, x2/d1
	}

	// about x
	sinPhi, cosPhi := 0.0, 1.0
	d := math.Sqrt(x2*x2 + y2*y2 + z2*z2)
	switch {
	case d < axisEpsilon:
	case d1 < axisEpsilon:
		sinPhi, cosPhi = y2/d, z2/d
	default:
		sinPhi, cosPhi = y2/d, (x2*x2+z2*z2)/(d1*d)
	}

	// about z
	x3p := x3*cosTheta - z3*sinTheta
	y3p := -sinPhi*sinTheta*x3 + cosPhi*y3 - sinPhi*cosTheta*z3
	if math.Hypot(x3p, y3p) < axisEpsilon {
		return 0
	}
	return utils.RadToDeg(math.Atan2(x3p, y3p))
}

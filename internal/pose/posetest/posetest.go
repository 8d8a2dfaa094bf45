// Package posetest builds synthetic skeletons for tests.
package posetest

import (
	"math"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/pose"
)

// WithAngle returns a complete skeleton in which the angle at b between a
// and c is deg degrees. Every other landmark sits at the origin.
func WithAngle(a, b, c pose.Landmark, deg float64) pose.Skeleton {
	sk := make(pose.Skeleton, pose.LandmarkCount)
	rad := deg * math.Pi / 180

	vertex := pose.Point{X: 0.1, Y: -0.4, Z: 0.05, Visibility: 1}
	sk[b] = vertex
	// a hangs straight down from the vertex; c is rotated away from it in the XY plane.
	sk[a] = pose.Point{X: vertex.X, Y: vertex.Y - 0.3, Z: vertex.Z, Visibility: 1}
	sk[c] = pose.Point{
		X:          vertex.X + 0.3*math.Sin(rad),
		Y:          vertex.Y - 0.3*math.Cos(rad),
		Z:          vertex.Z,
		Visibility: 1,
	}
	return sk
}

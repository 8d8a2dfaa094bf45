package pose

import "math"

// #region angle
// epsilon keeps the cosine denominator non-zero when two landmarks coincide.
const epsilon = 1e-6

// AngleBetween returns the angle in degrees at vertex b formed by the rays
// b→a and b→c. The result is always in [0, 180]; coincident points yield a
// defined angle instead of an error.
func AngleBetween(a, b, c Point) float64 {
	ba := sub(a, b)
	bc := sub(c, b)

	cos := dot(ba, bc) / (norm(ba)*norm(bc) + epsilon)
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi
}

// #endregion angle

// #region helpers
func sub(p, q Point) [3]float64 {
	return [3]float64{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

func dot(u, v [3]float64) float64 {
	return u[0]*v[0] + u[1]*v[1] + u[2]*v[2]
}

func norm(v [3]float64) float64 {
	return math.Sqrt(dot(v, v))
}

// #endregion helpers

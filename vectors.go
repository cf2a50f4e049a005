package danton

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	deg2rad = math.Pi / 180
	rad2deg = 1 / deg2rad
	vectorε = 1e-12
)

// Norm returns the Euclidean norm of a 3-vector.
func Norm(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Unit returns the unit vector of v, or the zero vector if v is ~0.
func Unit(v [3]float64) [3]float64 {
	n := Norm(v)
	if floats.EqualWithinAbs(n, 0, vectorε) {
		return [3]float64{}
	}
	return [3]float64{v[0] / n, v[1] / n, v[2] / n}
}

// Dot returns the inner product of two 3-vectors.
func Dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Cross returns a x b.
func Cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Scale returns v scaled by s.
func Scale(v [3]float64, s float64) [3]float64 {
	return [3]float64{v[0] * s, v[1] * s, v[2] * s}
}

// Add returns a + b.
func Add(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Sub returns a - b.
func Sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// IsUnit reports whether v has unit norm within the given tolerance.
func IsUnit(v [3]float64, eps float64) bool {
	return floats.EqualWithinAbs(Norm(v), 1, eps)
}

// R1 returns the rotation matrix about the first axis by angle x.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R2 returns the rotation matrix about the second axis by angle x.
func R2(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// R3 returns the rotation matrix about the third axis by angle x.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// MxV multiplies a 3x3 matrix with a 3-vector.
func MxV(m *mat.Dense, v [3]float64) [3]float64 {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(3, v[:]))
	return [3]float64{out.AtVec(0), out.AtVec(1), out.AtVec(2)}
}

// Deg2rad converts degrees to radians.
func Deg2rad(a float64) float64 { return a * deg2rad }

// Rad2deg converts radians to degrees.
func Rad2deg(a float64) float64 { return a * rad2deg }

// GeodeticToECEF converts (altitude in meters, latitude, longitude in
// radians) above the reference Earth radius to an Earth-centered,
// Earth-fixed Cartesian position in meters.
func GeodeticToECEF(altitude, latΦ, longθ, earthRadius float64) [3]float64 {
	r := earthRadius + altitude
	sLat, cLat := math.Sincos(latΦ)
	sLong, cLong := math.Sincos(longθ)
	return [3]float64{r * cLat * cLong, r * cLat * sLong, r * sLat}
}

// LocalHorizon returns the unit South-East-Zenith frame basis vectors at
// the given geodetic latitude/longitude, used to turn an elevation/azimuth
// draw into an Earth-centred direction vector.
func LocalHorizon(latΦ, longθ float64) (south, east, zenith [3]float64) {
	sLat, cLat := math.Sincos(latΦ)
	sLong, cLong := math.Sincos(longθ)
	south = [3]float64{sLat * cLong, sLat * sLong, -cLat}
	east = [3]float64{-sLong, cLong, 0}
	zenith = [3]float64{cLat * cLong, cLat * sLong, sLat}
	return
}

// DirectionFromElevation builds a unit direction vector pointing *into the
// sky* from a detector at the given geodetic position, for the provided
// elevation angle (radians above local horizontal) and azimuth (radians,
// measured from south towards east, a conventional SEZ topocentric frame).
func DirectionFromElevation(latΦ, longθ, elevation, azimuth float64) [3]float64 {
	south, east, zenith := LocalHorizon(latΦ, longθ)
	sEl, cEl := math.Sincos(elevation)
	sAz, cAz := math.Sincos(azimuth)
	dir := Add(Add(Scale(south, cEl*cAz), Scale(east, cEl*sAz)), Scale(zenith, sEl))
	return Unit(dir)
}

package latlon

import "math"

// LatLonSpherical does great circle computations on a sphere of radius R.
// Distances are in metres, bearings in degrees clockwise from north.
type LatLonSpherical struct{}

func (LatLonSpherical) DistanceTo(from, to LatLon) float64 {
	φ1 := toRadians(from.Lat)
	φ2 := toRadians(to.Lat)
	Δφ := φ2 - φ1

	Δλ := toRadians(to.Lon - from.Lon)

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	δ := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * δ
}

func (LatLonSpherical) BearingTo(from, to LatLon) float64 {
	φ1 := toRadians(from.Lat)
	φ2 := toRadians(to.Lat)

	Δλ := toRadians(to.Lon - from.Lon)
	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(Δλ)
	y := math.Sin(Δλ) * math.Cos(φ2)
	θ := math.Atan2(y, x)

	return wrap360(toDegrees(θ))
}

func (s LatLonSpherical) DistanceAndBearingTo(from, to LatLon) (float64, float64) {
	return s.DistanceTo(from, to), s.BearingTo(from, to)
}

func (LatLonSpherical) Destination(from LatLon, bearing float64, distance float64) LatLon {
	φ1 := toRadians(from.Lat)
	λ1 := toRadians(from.Lon)
	θ := toRadians(bearing)

	δ := distance / R

	φ2 := math.Asin(math.Sin(φ1)*math.Cos(δ) + math.Cos(φ1)*math.Sin(δ)*math.Cos(θ))
	λ2 := λ1 + math.Atan2(math.Sin(θ)*math.Sin(δ)*math.Cos(φ1), math.Cos(δ)-math.Sin(φ1)*math.Sin(φ2))

	return LatLon{Lat: toDegrees(φ2), Lon: WrapLon(toDegrees(λ2))}
}

// AlongTrackDistance is the distance from start, along the great circle
// start→end, to the point closest to p. Negative when p lies behind start.
func (s LatLonSpherical) AlongTrackDistance(start, end, p LatLon) float64 {
	δ13 := s.DistanceTo(start, p) / R
	θ13 := toRadians(s.BearingTo(start, p))
	θ12 := toRadians(s.BearingTo(start, end))

	δxt := math.Asin(math.Sin(δ13) * math.Sin(θ13-θ12))
	δat := math.Acos(math.Max(-1, math.Min(1, math.Cos(δ13)/math.Cos(δxt))))

	if math.Cos(θ12-θ13) < 0 {
		δat = -δat
	}
	return δat * R
}

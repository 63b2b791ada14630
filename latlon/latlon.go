package latlon

import "math"

const π = math.Pi

// R is the mean earth radius in metres
const R = 6371e3

type LatLonInterface interface {
	DistanceTo(from, to LatLon) float64
	BearingTo(from, to LatLon) float64
	DistanceAndBearingTo(from, to LatLon) (float64, float64)
	Destination(from LatLon, bearing float64, distance float64) LatLon
}

// LatLon is a WGS84 position in degrees
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (p LatLon) Equal(o LatLon) bool {
	return p.Lat == o.Lat && WrapLon(p.Lon) == WrapLon(o.Lon)
}

func toRadians(a float64) float64 {
	return a * π / 180.0
}

func toDegrees(a float64) float64 {
	return a * 180.0 / π
}

func wrap360(d float64) float64 {
	if 0.0 <= d && d < 360.0 {
		return d
	}
	d = math.Mod(d, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d
}

// WrapLon brings a longitude into [-180,180)
func WrapLon(lon float64) float64 {
	if -180.0 <= lon && lon < 180.0 {
		return lon
	}
	return wrap360(lon+180.0) - 180.0
}

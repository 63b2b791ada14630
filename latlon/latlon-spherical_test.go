package latlon

import (
	"math"
	"testing"
)

func TestWrap360(t *testing.T) {
	a := wrap360(-1.0)
	if a != 359.0 {
		t.Errorf("wrap360(-1) = %f; want 359.0", a)
	}
	b := wrap360(361.0)
	if b != 1.0 {
		t.Errorf("wrap360(361.0) = %f; want 1.0", b)
	}
}

func TestWrapLon(t *testing.T) {
	if l := WrapLon(190); l != -170 {
		t.Errorf("WrapLon(190) = %f; want -170", l)
	}
	if l := WrapLon(-190); l != 170 {
		t.Errorf("WrapLon(-190) = %f; want 170", l)
	}
	if l := WrapLon(45); l != 45 {
		t.Errorf("WrapLon(45) = %f; want 45", l)
	}
}

func TestDistanceTo(t *testing.T) {
	p1 := LatLon{Lat: 51.127, Lon: 1.338}
	p2 := LatLon{Lat: 50.964, Lon: 1.853}
	d := LatLonSpherical{}.DistanceTo(p1, p2)
	if math.Round(d) != 40308 {
		t.Errorf("{%f,%f}.DistanceTo({%f,%f}) = %f; want 40308", p1.Lat, p1.Lon, p2.Lat, p2.Lon, d)
	}

	p1 = LatLon{Lat: 0, Lon: 0}
	p2 = LatLon{Lat: 0, Lon: 1}
	d = LatLonSpherical{}.DistanceTo(p1, p2)
	if math.Abs(d-R*π/180) > 1e-6 {
		t.Errorf("{0,0}.DistanceTo({0,1}) = %f; want %f", d, R*π/180)
	}
}

func TestBearingTo(t *testing.T) {
	tests := []struct {
		from, to LatLon
		want     float64
	}{
		{LatLon{Lat: 0, Lon: 0}, LatLon{Lat: 1, Lon: 0}, 0},
		{LatLon{Lat: 0, Lon: 0}, LatLon{Lat: 0, Lon: 1}, 90},
		{LatLon{Lat: 0, Lon: 0}, LatLon{Lat: -1, Lon: 0}, 180},
		{LatLon{Lat: 0, Lon: 0}, LatLon{Lat: 0, Lon: -1}, 270},
		{LatLon{Lat: 0, Lon: 179.5}, LatLon{Lat: 0, Lon: -179.5}, 90},
	}
	for _, tt := range tests {
		b := LatLonSpherical{}.BearingTo(tt.from, tt.to)
		if math.Abs(b-tt.want) > 1e-9 {
			t.Errorf("{%f,%f}.BearingTo({%f,%f}) = %f; want %f", tt.from.Lat, tt.from.Lon, tt.to.Lat, tt.to.Lon, b, tt.want)
		}
	}
}

func TestDestination(t *testing.T) {
	s := LatLonSpherical{}
	from := LatLon{Lat: 46.5, Lon: -4.2}
	for b := 0.0; b < 360; b += 15 {
		to := s.Destination(from, b, 25000)
		d, az := s.DistanceAndBearingTo(from, to)
		if math.Abs(d-25000) > 0.01 {
			t.Errorf("Destination(%f, 25000) is at %f m; want 25000", b, d)
		}
		diff := math.Abs(az - b)
		if diff > 180 {
			diff = 360 - diff
		}
		if diff > 1e-6 {
			t.Errorf("Destination(%f, 25000) is at bearing %f; want %f", b, az, b)
		}
	}

	to := s.Destination(LatLon{Lat: 0, Lon: 179.9}, 90, 2*R*π/180*0.1)
	if math.Abs(to.Lon-(-179.9)) > 1e-6 {
		t.Errorf("Destination across antimeridian = %f; want -179.9", to.Lon)
	}
}

func TestAlongTrackDistance(t *testing.T) {
	s := LatLonSpherical{}
	start := LatLon{Lat: 0, Lon: 0}
	end := LatLon{Lat: 0, Lon: 10}

	at := s.AlongTrackDistance(start, end, LatLon{Lat: 1, Lon: 2})
	want := s.DistanceTo(start, LatLon{Lat: 0, Lon: 2})
	if math.Abs(at-want) > 1 {
		t.Errorf("AlongTrackDistance({1,2}) = %f; want %f", at, want)
	}

	at = s.AlongTrackDistance(start, end, LatLon{Lat: 0, Lon: -1})
	if at >= 0 {
		t.Errorf("AlongTrackDistance({0,-1}) = %f; want negative", at)
	}
}

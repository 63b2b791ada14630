package route

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/a-bouts/isoroute/latlon"
)

func TestBetter(t *testing.T) {
	base := Point{Progress: 100, Duration: time.Hour, Heading: 90, Parent: 3}

	tests := []struct {
		name string
		o    Point
		want bool
	}{
		{"more progress", Point{Progress: 101, Duration: 2 * time.Hour, Heading: 180, Parent: 9}, true},
		{"less progress", Point{Progress: 99, Duration: time.Minute, Heading: 0, Parent: 0}, false},
		{"sooner", Point{Progress: 100, Duration: time.Minute, Heading: 180, Parent: 9}, true},
		{"lower heading", Point{Progress: 100, Duration: time.Hour, Heading: 85, Parent: 9}, true},
		{"lower parent", Point{Progress: 100, Duration: time.Hour, Heading: 90, Parent: 2}, true},
		{"same", base, false},
	}

	for _, tt := range tests {
		if got := tt.o.better(&base); got != tt.want {
			t.Errorf("%s: better() = %t; want %t", tt.name, got, tt.want)
		}
	}
}

func TestBefore(t *testing.T) {
	a := Point{Duration: time.Hour, Heading: 90, Parent: 1}
	b := Point{Duration: time.Hour, Heading: 90, Parent: 2}
	c := Point{Duration: 30 * time.Minute, Heading: 270, Parent: 5}

	if !a.before(&b) || b.before(&a) {
		t.Error("lower parent should come first")
	}
	if !c.before(&a) {
		t.Error("earliest arrival should come first")
	}
}

func TestSector(t *testing.T) {
	p := Problem{Config: Config{Sectors: 120}}

	tests := []struct {
		az   float64
		want int
	}{
		{0, 0},
		{2.99, 0},
		{3, 1},
		{180, 60},
		{359.999, 119},
		{360, 119},
	}

	for _, tt := range tests {
		if got := p.sector(tt.az); got != tt.want {
			t.Errorf("sector(%f) = %d; want %d", tt.az, got, tt.want)
		}
	}
}

func TestPath(t *testing.T) {
	isochrones := []Isochrone{
		{Points: []Point{{Latlon: latlon.LatLon{Lat: 0, Lon: 0}, Parent: -1}}},
		{Points: []Point{
			{Latlon: latlon.LatLon{Lat: 1, Lon: 0}, Parent: 0, Duration: time.Hour},
			{Latlon: latlon.LatLon{Lat: 0, Lon: 1}, Parent: 0, Duration: time.Hour},
		}},
	}

	last := Point{Latlon: latlon.LatLon{Lat: 0, Lon: 2}, Parent: 1, Duration: 2 * time.Hour}
	got := path(isochrones, 1, last)
	want := []latlon.LatLon{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 0, Lon: 2}}
	if len(got) != len(want) {
		t.Fatalf("path() has %d points; want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Latlon.Equal(want[i]) {
			t.Errorf("path()[%d] = %v; want %v", i, got[i].Latlon, want[i])
		}
	}

	// arriving without sailing adds no waypoint
	same := Point{Latlon: latlon.LatLon{Lat: 0, Lon: 1}, Parent: 1, Duration: time.Hour}
	if got := path(isochrones, 1, same); len(got) != 2 {
		t.Errorf("path() has %d points; want 2", len(got))
	}
}

func TestNewRoute(t *testing.T) {
	points := []Point{
		{Latlon: latlon.LatLon{Lat: 0, Lon: 0}, Parent: -1},
		{Latlon: latlon.LatLon{Lat: 0, Lon: 1}, Duration: time.Hour, Heading: 90},
	}

	r := newRoute(departure, points)
	if len(r.Waypoints) != 2 {
		t.Fatalf("%d waypoints; want 2", len(r.Waypoints))
	}
	if r.Duration != time.Hour {
		t.Errorf("Duration = %s; want 1h", r.Duration)
	}
	if want := sphere.DistanceTo(points[0].Latlon, points[1].Latlon); r.Distance != want {
		t.Errorf("Distance = %f; want %f", r.Distance, want)
	}
	if !r.Waypoints[1].Time.Equal(departure.Add(time.Hour)) {
		t.Errorf("Time = %s", r.Waypoints[1].Time)
	}
}

func TestGreedy(t *testing.T) {
	req := farRequest()
	req.Config.MaxSteps = 5
	req.Progress = func(iso Isochrone, elapsed time.Duration) {
		if len(iso.Points) != 1 {
			t.Errorf("step %d has %d points; want 1", iso.Step, len(iso.Points))
		}
	}

	res, err := NewSession(GreedyRouter{}, req).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if len(res.Route.Waypoints) != 6 {
		t.Errorf("route has %d waypoints; want 6", len(res.Route.Waypoints))
	}
	last, _ := res.Route.Last()
	if last.Heading != 90 {
		t.Errorf("greedy heading = %f; want 90", last.Heading)
	}
}

func TestValidity(t *testing.T) {
	req := farRequest()
	req.Config.MaxSteps = 4
	req.Config.KeepIsochrones = true
	req.Config.Valid = All(nil, func(p latlon.LatLon) bool { return p.Lat >= 0 })

	res, err := Start(context.Background(), req)
	if err != nil {
		t.Fatalf("Start() = %v", err)
	}
	for _, iso := range res.Isochrones {
		for _, p := range iso.Points {
			if p.Latlon.Lat < 0 {
				t.Fatalf("step %d reached invalid %v", iso.Step, p.Latlon)
			}
		}
	}
}

func TestAll(t *testing.T) {
	if All() != nil || All(nil, nil) != nil {
		t.Error("All() of no check should be nil")
	}

	north := func(p latlon.LatLon) bool { return p.Lat > 0 }
	east := func(p latlon.LatLon) bool { return p.Lon > 0 }
	v := All(north, east)

	if !v(latlon.LatLon{Lat: 1, Lon: 1}) || v(latlon.LatLon{Lat: 1, Lon: -1}) || v(latlon.LatLon{Lat: -1, Lon: 1}) {
		t.Error("All() should pass only when every check passes")
	}
}

func TestDetourFactor(t *testing.T) {
	req := farRequest()
	req.Config.MaxSteps = 4
	req.Config.DetourFactor = 1.01
	req.Config.KeepIsochrones = true

	res, err := Start(context.Background(), req)
	if err != nil {
		t.Fatalf("Start() = %v", err)
	}
	limit := 1.01 * sphere.DistanceTo(req.Origin, req.Destination)
	for _, iso := range res.Isochrones[1:] {
		for _, p := range iso.Points {
			if p.FromDist+p.DistTo > limit {
				t.Errorf("step %d kept a %f m detour", iso.Step, p.FromDist+p.DistTo)
			}
		}
	}
}

func TestAlongTrackMetric(t *testing.T) {
	req := farRequest()
	req.Config.MaxSteps = 3
	req.Config.Metric = ProgressAlongTrack

	res, err := Start(context.Background(), req)
	if err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if res.Route.Distance <= 0 {
		t.Errorf("Distance = %f; want some progress", res.Route.Distance)
	}
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		s    string
		want Metric
	}{
		{"", ProgressDistance},
		{"distance", ProgressDistance},
		{"Along-Track", ProgressAlongTrack},
	}

	for _, tt := range tests {
		got, err := ParseMetric(tt.s)
		if err != nil || got != tt.want {
			t.Errorf("ParseMetric(%q) = %s, %v; want %s", tt.s, got, err, tt.want)
		}
	}
	if _, err := ParseMetric("vmg"); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("ParseMetric(vmg) = %v; want ErrInvalidRequest", err)
	}
}

func TestNewStrategy(t *testing.T) {
	s, err := NewStrategy("")
	if err != nil || s.Name() != "isochrone" {
		t.Errorf("NewStrategy(\"\") = %v, %v; want isochrone", s, err)
	}
	s, err = NewStrategy("greedy")
	if err != nil || s.Name() != "greedy" {
		t.Errorf("NewStrategy(greedy) = %v, %v; want greedy", s, err)
	}
	if _, err := NewStrategy("astar"); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("NewStrategy(astar) = %v; want ErrInvalidRequest", err)
	}

	if got, want := Strategies(), []string{"greedy", "isochrone"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Strategies() = %v; want %v", got, want)
	}
}

package wind

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/a-bouts/isoroute/latlon"
)

// testField is a 3x3 grid from 10N to 8N and from 0E to 2E, with a
// uniform wind given in m/s.
func testField(date time.Time, u, v float64) *Field {
	f := &Field{Date: date, File: date.Format("2006010215") + ".f000", Lat0: 10, Lon0: 0, ΔLat: -1, ΔLon: 1, NLat: 3, NLon: 3}
	f.U = make([][]float64, 3)
	f.V = make([][]float64, 3)
	for i := range f.U {
		f.U[i] = []float64{u, u, u}
		f.V[i] = []float64{v, v, v}
	}
	return f
}

func TestTwa(t *testing.T) {
	tests := []struct {
		heading, wind, want float64
	}{
		{90, 0, -90},
		{0, 90, 90},
		{350, 10, 20},
		{10, 350, -20},
		{0, 180, 180},
		{180, 0, 180},
	}
	for _, tt := range tests {
		if twa := Twa(tt.heading, tt.wind); twa != tt.want {
			t.Errorf("Twa(%f, %f) = %f; want %f", tt.heading, tt.wind, twa, tt.want)
		}
		if h := Heading(Twa(tt.heading, tt.wind), tt.wind); h != tt.heading {
			t.Errorf("Heading(Twa(%f, %f)) = %f; want %f", tt.heading, tt.wind, h, tt.heading)
		}
	}
}

func TestVectorToDegrees(t *testing.T) {
	tests := []struct {
		u, v, want float64
	}{
		{0, -1, 0},
		{-1, 0, 90},
		{0, 1, 180},
		{1, 0, 270},
	}
	for _, tt := range tests {
		if d := vectorToDegrees(tt.u, tt.v); math.Abs(d-tt.want) > 1e-9 {
			t.Errorf("vectorToDegrees(%f, %f) = %f; want %f", tt.u, tt.v, d, tt.want)
		}
	}
}

func TestFieldInterpolate(t *testing.T) {
	f := testField(time.Time{}, 0, 0)
	f.U[0][0], f.U[0][1], f.U[1][0], f.U[1][1] = 0, 2, 4, 6

	u, _, ok := f.interpolate(9.5, 0.5)
	if !ok || u != 3 {
		t.Errorf("interpolate(9.5, 0.5) = (%f, %t); want (3, true)", u, ok)
	}
	u, _, ok = f.interpolate(10, 0)
	if !ok || u != 0 {
		t.Errorf("interpolate(10, 0) = (%f, %t); want (0, true)", u, ok)
	}
	if _, _, ok = f.interpolate(8, 2); !ok {
		t.Errorf("interpolate(8, 2) = false; want true on the grid corner")
	}
	if _, _, ok = f.interpolate(11, 1); ok {
		t.Errorf("interpolate(11, 1) = true; want false")
	}
	if _, _, ok = f.interpolate(9, 3); ok {
		t.Errorf("interpolate(9, 3) = true; want false")
	}
}

func TestBuildGridContinuous(t *testing.T) {
	f := Field{NLat: 1, NLon: 4, ΔLon: 90}
	grid := f.buildGrid([]float64{1, 2, 3, 4})
	if len(grid[0]) != 5 || grid[0][4] != 1 {
		t.Errorf("buildGrid() = %v; want the first column repeated", grid)
	}
}

func TestForecastWindAt(t *testing.T) {
	t0 := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	fc := NewForecast("")
	fc.Add(testField(t0, 0, -10))
	fc.Add(testField(t0.Add(6*time.Hour), 0, -20))

	w, err := fc.WindAt(latlon.LatLon{Lat: 9, Lon: 1}, t0.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("WindAt() = %v", err)
	}
	if math.Abs(w.Direction) > 1e-9 || math.Abs(w.Speed-15*MsToKnots) > 1e-9 {
		t.Errorf("WindAt(+3h) = %+v; want from 0° at %f kt", w, 15*MsToKnots)
	}

	w, err = fc.WindAt(latlon.LatLon{Lat: 9, Lon: 1}, t0)
	if err != nil || math.Abs(w.Speed-10*MsToKnots) > 1e-9 {
		t.Errorf("WindAt(t0) = %+v, %v; want %f kt", w, err, 10*MsToKnots)
	}

	if _, err := fc.WindAt(latlon.LatLon{Lat: 9, Lon: 1}, t0.Add(-time.Minute)); !errors.Is(err, ErrNoForecastData) {
		t.Errorf("WindAt(before) = %v; want ErrNoForecastData", err)
	}
	if _, err := fc.WindAt(latlon.LatLon{Lat: 9, Lon: 1}, t0.Add(7*time.Hour)); !errors.Is(err, ErrNoForecastData) {
		t.Errorf("WindAt(after) = %v; want ErrNoForecastData", err)
	}
	if _, err := fc.WindAt(latlon.LatLon{Lat: 20, Lon: 1}, t0.Add(time.Hour)); !errors.Is(err, ErrNoForecastData) {
		t.Errorf("WindAt(outside) = %v; want ErrNoForecastData", err)
	}
	if _, err := NewForecast("").WindAt(latlon.LatLon{}, t0); !errors.Is(err, ErrNoForecastData) {
		t.Errorf("WindAt(empty) = %v; want ErrNoForecastData", err)
	}
}

func TestForecastMerge(t *testing.T) {
	dir := t.TempDir()
	touch := func(name string) {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	touch("2026101900.f000")
	touch("2026101900.f006")
	touch("2026101906.f000")
	touch("2026101906.f006.tmp")
	touch("README")

	fc := NewForecast(dir)
	var loads int32
	fc.load = func(path string, date time.Time) (*Field, error) {
		atomic.AddInt32(&loads, 1)
		f := testField(date, 0, -1)
		f.File = path
		return f, nil
	}

	changed, err := fc.Merge()
	if err != nil || !changed {
		t.Fatalf("Merge() = %t, %v; want true, nil", changed, err)
	}
	times := fc.Times()
	if len(times) != 2 || loads != 2 {
		t.Fatalf("Merge() loaded %d fields with %d loads; want 2 and 2", len(times), loads)
	}
	w, _, _, _ := fc.FindWinds(times[1])
	if filepath.Base(w.File) != "2026101906.f000" {
		t.Errorf("field valid at %s comes from %s; want the latest run", times[1], w.File)
	}

	changed, _ = fc.Merge()
	if changed || loads != 2 {
		t.Errorf("Merge() again = %t with %d loads; want false and 2", changed, loads)
	}

	os.Remove(filepath.Join(dir, "2026101900.f000"))
	changed, _ = fc.Merge()
	if !changed || len(fc.Times()) != 1 {
		t.Errorf("Merge() after removal = %t with %d fields; want true and 1", changed, len(fc.Times()))
	}
}

type countingProvider struct {
	calls int32
}

func (c *countingProvider) WindAt(p latlon.LatLon, t time.Time) (Wind, error) {
	atomic.AddInt32(&c.calls, 1)
	if p.Lat > 45 {
		return Wind{}, ErrNoForecastData
	}
	return Wind{Direction: p.Lon, Speed: 10}, nil
}

func TestCache(t *testing.T) {
	p := &countingProvider{}
	c := NewCache(p, 16, time.Hour)
	now := time.Date(2026, 10, 19, 12, 0, 30, 0, time.UTC)

	w1, err := c.WindAt(latlon.LatLon{Lat: 1, Lon: 2.00001}, now)
	if err != nil {
		t.Fatal(err)
	}
	w2, _ := c.WindAt(latlon.LatLon{Lat: 1, Lon: 1.99999}, now.Add(10*time.Second))
	if w1 != w2 || p.calls != 1 {
		t.Errorf("WindAt() twice = %+v %+v with %d calls; want equal and 1 call", w1, w2, p.calls)
	}
	if w1.Direction != 2 {
		t.Errorf("WindAt() = %+v; want the wind at the snapped position", w1)
	}

	if _, err := c.WindAt(latlon.LatLon{Lat: 50, Lon: 0}, now); !errors.Is(err, ErrNoForecastData) {
		t.Errorf("WindAt(50, 0) = %v; want ErrNoForecastData", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d; want errors not to be cached", c.Len())
	}

	c.Purge()
	c.WindAt(latlon.LatLon{Lat: 1, Lon: 2}, now)
	if p.calls != 3 {
		t.Errorf("calls after Purge() = %d; want 3", p.calls)
	}
}

func TestUniform(t *testing.T) {
	u := Uniform{Direction: 45, Speed: 12}
	w, err := u.WindAt(latlon.LatLon{Lat: 80, Lon: 170}, time.Time{})
	if err != nil || w.Direction != 45 || w.Speed != 12 {
		t.Errorf("WindAt() = %+v, %v; want {45 12}", w, err)
	}
}

func TestFinite(t *testing.T) {
	tests := []struct {
		w    Wind
		want bool
	}{
		{Wind{Direction: 45, Speed: 12}, true},
		{Wind{Direction: math.NaN(), Speed: 12}, false},
		{Wind{Direction: 45, Speed: math.NaN()}, false},
		{Wind{Direction: 45, Speed: math.Inf(1)}, false},
	}

	for _, tt := range tests {
		if got := tt.w.Finite(); got != tt.want {
			t.Errorf("%+v.Finite() = %t; want %t", tt.w, got, tt.want)
		}
	}
}

package route

import (
	"fmt"
	"sort"
	"time"

	"github.com/a-bouts/isoroute/latlon"
	"github.com/a-bouts/isoroute/polar"
	"github.com/a-bouts/isoroute/wind"
)

var sphere = latlon.LatLonSpherical{}

// KnotsToMs converts knots to metres per second
const KnotsToMs = 1852.0 / 3600.0

// Problem is what a strategy needs to advance a search. It is read only
// for the strategy.
type Problem struct {
	Origin      latlon.LatLon
	Destination latlon.LatLon
	Departure   time.Time
	Polar       polar.Polar
	Wind        wind.Provider
	Config      Config

	distance float64
	bearing  float64
}

func newProblem(req Request) Problem {
	p := Problem{
		Origin:      req.Origin,
		Destination: req.Destination,
		Departure:   req.Departure,
		Polar:       req.Polar,
		Wind:        req.Wind,
		Config:      req.Config,
	}
	p.distance, p.bearing = sphere.DistanceAndBearingTo(p.Origin, p.Destination)
	return p
}

// Distance is the great circle distance from origin to destination in metres
func (p *Problem) Distance() float64 {
	return p.distance
}

func (p *Problem) progress(to latlon.LatLon, distTo float64) float64 {
	if p.Config.Metric == ProgressAlongTrack {
		return sphere.AlongTrackDistance(p.Origin, p.Destination, to)
	}
	return p.distance - distTo
}

// sector is the bucket of a bearing from the origin
func (p *Problem) sector(az float64) int {
	n := p.Config.Sectors
	s := int(az * float64(n) / 360.0)
	if s >= n {
		s = n - 1
	}
	if s < 0 {
		s = 0
	}
	return s
}

func (p *Problem) origin() Point {
	return Point{
		Latlon:   p.Origin,
		Parent:   -1,
		DistTo:   p.distance,
		Progress: p.progress(p.Origin, p.distance),
	}
}

// Advance is the outcome of one step.
type Advance struct {
	// Next is the pruned isochrone one step after the frontier
	Next Isochrone
	// Arrival, when set, reaches the destination from a frontier point
	// within the step
	Arrival *Point
	// Discarded counts frontier points without wind
	Discarded int
}

// Strategy advances a search by one step from a frontier.
type Strategy interface {
	Name() string
	Step(p *Problem, frontier *Isochrone) (Advance, error)
}

var strategies = map[string]func() Strategy{
	"isochrone": func() Strategy { return IsochroneRouter{} },
	"greedy":    func() Strategy { return GreedyRouter{} },
}

// NewStrategy builds a strategy from its name, the isochrone router when
// name is empty.
func NewStrategy(name string) (Strategy, error) {
	if name == "" {
		name = "isochrone"
	}
	s, found := strategies[name]
	if !found {
		return nil, fmt.Errorf("%w: unknown algorithm '%s'", ErrInvalidRequest, name)
	}
	return s(), nil
}

// Strategies lists the known strategy names.
func Strategies() []string {
	names := make([]string, 0, len(strategies))
	for n := range strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

package model

import (
	"fmt"
	"time"

	"github.com/a-bouts/isoroute/latlon"
	"github.com/a-bouts/isoroute/race"
	"github.com/a-bouts/isoroute/route"
)

// Route is the body of a routing request. The course is Destination when
// set, the remaining marks of Race otherwise.
type Route struct {
	Params      Params         `json:"params"`
	StartTime   time.Time      `json:"startTime"`
	Start       latlon.LatLon  `json:"start"`
	Destination *latlon.LatLon `json:"destination"`
	Race        *race.Race     `json:"race"`
	Boat        string         `json:"boat"`
	// Boats are the models compared by the compare endpoint
	Boats     []string `json:"boats"`
	Algorithm string   `json:"algorithm"`
}

// Params tune the search. Zero values keep the defaults.
type Params struct {
	// Step between isochrones, in hours
	Step        float64 `json:"step"`
	Headings    int     `json:"headings"`
	Sectors     int     `json:"sectors"`
	StallWindow *int    `json:"stallWindow"`
	MaxSteps    int     `json:"maxSteps"`
	// MaxDuration in hours
	MaxDuration  float64 `json:"maxDuration"`
	Metric       string  `json:"metric"`
	DetourFactor float64 `json:"detourFactor"`
	Isochrones   bool    `json:"isochrones"`
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

func (p Params) Config() (route.Config, error) {
	c := route.DefaultConfig()
	if p.Step != 0 {
		c.Step = hours(p.Step)
	}
	if p.Headings != 0 {
		c.Headings = p.Headings
	}
	if p.Sectors != 0 {
		c.Sectors = p.Sectors
	}
	if p.StallWindow != nil {
		c.StallWindow = *p.StallWindow
	}
	if p.MaxSteps != 0 {
		c.MaxSteps = p.MaxSteps
	}
	c.MaxDuration = hours(p.MaxDuration)
	c.DetourFactor = p.DetourFactor
	c.KeepIsochrones = p.Isochrones

	m, err := route.ParseMetric(p.Metric)
	if err != nil {
		return c, err
	}
	c.Metric = m
	return c, nil
}

// Marks is the course to sail.
func (r Route) Marks() ([]latlon.LatLon, error) {
	if r.Destination != nil {
		return []latlon.LatLon{*r.Destination}, nil
	}
	if r.Race != nil {
		if err := r.Race.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", route.ErrInvalidRequest, err)
		}
		if marks := r.Race.Marks(); len(marks) > 0 {
			return marks, nil
		}
	}
	return nil, fmt.Errorf("%w: no destination", route.ErrInvalidRequest)
}

// BoatModel is the requested boat, the race one by default.
func (r Route) BoatModel() string {
	if r.Boat == "" && r.Race != nil {
		return r.Race.Boat
	}
	return r.Boat
}

type Result struct {
	Boat      string           `json:"boat,omitempty"`
	Status    route.Status     `json:"status"`
	Waypoints []route.Waypoint `json:"waypoints"`
	// Duration in hours
	Duration float64 `json:"duration"`
	// Distance in nautical miles
	Distance   float64           `json:"distance"`
	Steps      int               `json:"steps"`
	Legs       []route.Leg       `json:"legs,omitempty"`
	Isochrones []route.Isochrone `json:"isochrones,omitempty"`
}

func NewResult(boat string, res route.CourseResult) Result {
	return Result{
		Boat:       boat,
		Status:     res.Status,
		Waypoints:  res.Route.Waypoints,
		Duration:   res.Route.Duration.Hours(),
		Distance:   res.Route.Distance / 1852.0,
		Steps:      res.Steps,
		Legs:       res.Legs,
		Isochrones: res.Isochrones,
	}
}

type Sneak struct {
	StartTime time.Time     `json:"startTime"`
	Start     latlon.LatLon `json:"start"`
	Boat      string        `json:"boat"`
	// Duration and Step in hours
	Duration float64 `json:"duration"`
	Step     float64 `json:"step"`
	Every    int     `json:"every"`
}

type Wind struct {
	Time  time.Time `json:"time"`
	Wind  float64   `json:"wind"`
	Speed float64   `json:"speed"`
}

type Error struct {
	Error string `json:"error"`
}

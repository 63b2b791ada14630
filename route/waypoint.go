package route

import (
	"time"

	"github.com/a-bouts/isoroute/latlon"
)

// Waypoint is a committed position of a route. Heading and BoatSpeed are
// those of the leg ending at the waypoint; they are zero at departure.
type Waypoint struct {
	Latlon    latlon.LatLon `json:"latlon"`
	Time      time.Time     `json:"time"`
	Heading   float64       `json:"heading"`
	BoatSpeed float64       `json:"boatSpeed"`
	Twa       float64       `json:"twa"`
	Wind      float64       `json:"wind"`
	WindSpeed float64       `json:"windSpeed"`
	Duration  time.Duration `json:"duration"`
}

// Route is the ordered list of waypoints from departure to arrival, or to
// the point closest to the destination when the destination was not reached.
type Route struct {
	Waypoints []Waypoint    `json:"waypoints"`
	Duration  time.Duration `json:"duration"`
	// Distance sailed in metres
	Distance float64 `json:"distance"`
}

func (r Route) Last() (Waypoint, bool) {
	if len(r.Waypoints) == 0 {
		return Waypoint{}, false
	}
	return r.Waypoints[len(r.Waypoints)-1], true
}

func newRoute(departure time.Time, points []Point) Route {
	var r Route
	r.Waypoints = make([]Waypoint, 0, len(points))
	for i, p := range points {
		if i > 0 {
			r.Distance += sphere.DistanceTo(points[i-1].Latlon, p.Latlon)
		}
		r.Waypoints = append(r.Waypoints, Waypoint{
			Latlon:    p.Latlon,
			Time:      departure.Add(p.Duration),
			Heading:   p.Heading,
			BoatSpeed: p.BoatSpeed,
			Twa:       p.Twa,
			Wind:      p.Wind.Direction,
			WindSpeed: p.Wind.Speed,
			Duration:  p.Duration,
		})
	}
	if len(points) > 0 {
		r.Duration = points[len(points)-1].Duration
	}
	return r
}

// path walks back from last, whose parent lives in isochrones[level], to
// the origin.
func path(isochrones []Isochrone, level int, last Point) []Point {
	points := []Point{last}
	parent := last.Parent
	for l := level; l >= 0 && parent >= 0; l-- {
		p := isochrones[l].Points[parent]
		points = append(points, p)
		parent = p.Parent
	}

	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}

	// an arrival from a point already on the destination adds nothing
	if n := len(points); n > 1 && points[n-1].Duration <= points[n-2].Duration {
		points = points[:n-1]
	}
	return points
}

package route

import (
	"time"

	"github.com/a-bouts/isoroute/latlon"
	"github.com/a-bouts/isoroute/wind"
)

// Point is a position reached by the search. Parent is the index, in the
// previous isochrone, of the point it was expanded from (-1 for the
// origin). Heading, speed and wind describe the leg sailed from the parent.
type Point struct {
	Latlon    latlon.LatLon `json:"latlon"`
	Parent    int           `json:"-"`
	Heading   float64       `json:"heading"`
	BoatSpeed float64       `json:"boatSpeed"`
	Twa       float64       `json:"twa"`
	Wind      wind.Wind     `json:"wind"`
	Duration  time.Duration `json:"duration"`
	FromDist  float64       `json:"-"`
	DistTo    float64       `json:"distTo"`
	Progress  float64       `json:"-"`
}

// better orders candidates of a sector: greatest progress, then shortest
// duration, then lowest heading, then lowest parent.
func (p *Point) better(o *Point) bool {
	if p.Progress != o.Progress {
		return p.Progress > o.Progress
	}
	if p.Duration != o.Duration {
		return p.Duration < o.Duration
	}
	if p.Heading != o.Heading {
		return p.Heading < o.Heading
	}
	return p.Parent < o.Parent
}

// before orders arrivals: earliest, then lowest heading, then lowest parent.
func (p *Point) before(o *Point) bool {
	if p.Duration != o.Duration {
		return p.Duration < o.Duration
	}
	if p.Heading != o.Heading {
		return p.Heading < o.Heading
	}
	return p.Parent < o.Parent
}

// Isochrone is the pruned set of points reached after Elapsed.
type Isochrone struct {
	Step    int           `json:"step"`
	Elapsed time.Duration `json:"elapsed"`
	Time    time.Time     `json:"time"`
	Points  []Point       `json:"points"`
}

func (iso Isochrone) clone() Isochrone {
	iso.Points = append([]Point(nil), iso.Points...)
	return iso
}

// closest is the index of the point nearest to the destination, -1 when
// the isochrone is empty.
func (iso Isochrone) closest() int {
	best := -1
	for i := range iso.Points {
		if best < 0 || iso.Points[i].DistTo < iso.Points[best].DistTo {
			best = i
		}
	}
	return best
}

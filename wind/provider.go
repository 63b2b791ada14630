package wind

import (
	"errors"
	"math"
	"time"

	"github.com/a-bouts/isoroute/latlon"
)

// ErrNoForecastData is returned for queries outside the forecast coverage
var ErrNoForecastData = errors.New("no forecast data")

// MsToKnots converts metres per second to knots
const MsToKnots = 1.9438444924406

// Wind is a true wind: the direction it blows from in degrees and its
// speed in knots.
type Wind struct {
	Direction float64 `json:"wind"`
	Speed     float64 `json:"speed"`
}

// Finite is false for winds decoded from broken data.
func (w Wind) Finite() bool {
	return !math.IsNaN(w.Direction) && !math.IsInf(w.Direction, 0) && !math.IsNaN(w.Speed) && !math.IsInf(w.Speed, 0)
}

// Provider gives the wind at a position and time. Implementations do
// their own spatial and temporal interpolation and must be safe for
// concurrent use.
type Provider interface {
	WindAt(p latlon.LatLon, t time.Time) (Wind, error)
}

// Uniform is the same wind everywhere, at any time.
type Uniform Wind

func (u Uniform) WindAt(p latlon.LatLon, t time.Time) (Wind, error) {
	return Wind(u), nil
}

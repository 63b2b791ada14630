package route

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/isoroute/wind"
)

// IsochroneRouter expands every frontier point on every sampled heading
// and keeps, in each sector of bearing from the origin, the candidate that
// progressed most.
type IsochroneRouter struct{}

func (IsochroneRouter) Name() string {
	return "isochrone"
}

func (IsochroneRouter) Step(p *Problem, frontier *Isochrone) (Advance, error) {
	return expand(p, frontier, p.Config.Sectors, p.sector), nil
}

// GreedyRouter expands like the isochrone router but keeps a single
// point per step, the one that progressed most.
type GreedyRouter struct{}

func (GreedyRouter) Name() string {
	return "greedy"
}

func (GreedyRouter) Step(p *Problem, frontier *Isochrone) (Advance, error) {
	return expand(p, frontier, 1, func(float64) int { return 0 }), nil
}

func toDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// reach checks whether the destination can be sailed to directly from src
// within one step.
func reach(p *Problem, src *Point, index int, w wind.Wind, horizon time.Duration) (Point, bool) {
	dist, az := sphere.DistanceAndBearingTo(src.Latlon, p.Destination)

	twa := wind.Twa(az, w.Direction)
	boatSpeed := p.Polar.SpeedAt(twa, w.Speed)
	if boatSpeed <= 0 {
		return Point{}, false
	}

	seconds := dist / (boatSpeed * KnotsToMs)
	if seconds > p.Config.Step.Seconds() {
		return Point{}, false
	}

	return Point{
		Latlon:    p.Destination,
		Parent:    index,
		Heading:   az,
		BoatSpeed: boatSpeed,
		Twa:       twa,
		Wind:      w,
		Duration:  horizon + toDuration(seconds),
		FromDist:  p.distance,
		DistTo:    0,
		Progress:  p.progress(p.Destination, 0),
	}, true
}

func jump(p *Problem, src *Point, index int, heading float64, w wind.Wind, seconds float64, duration time.Duration) (Point, bool) {
	twa := wind.Twa(heading, w.Direction)
	boatSpeed := p.Polar.SpeedAt(twa, w.Speed)
	if boatSpeed <= 0 {
		return Point{}, false
	}

	to := sphere.Destination(src.Latlon, heading, boatSpeed*KnotsToMs*seconds)
	if p.Config.Valid != nil && !p.Config.Valid(to) {
		return Point{}, false
	}

	fromDist := sphere.DistanceTo(p.Origin, to)
	distTo := sphere.DistanceTo(to, p.Destination)
	if p.Config.DetourFactor > 0 && fromDist+distTo > p.Config.DetourFactor*p.distance {
		return Point{}, false
	}

	return Point{
		Latlon:    to,
		Parent:    index,
		Heading:   heading,
		BoatSpeed: boatSpeed,
		Twa:       twa,
		Wind:      w,
		Duration:  duration,
		FromDist:  fromDist,
		DistTo:    distTo,
		Progress:  p.progress(to, distTo),
	}, true
}

// expand runs one step from the frontier, keeping the best candidate of
// each of the n buckets.
func expand(p *Problem, frontier *Isochrone, n int, bucket func(az float64) int) Advance {
	cfg := p.Config
	now := p.Departure.Add(frontier.Elapsed)
	seconds := cfg.Step.Seconds()
	elapsed := frontier.Elapsed + cfg.Step

	slots := make([]Point, n)
	filled := make([]bool, n)
	var arrival *Point
	discarded := 0

	for i := range frontier.Points {
		src := &frontier.Points[i]

		w, err := p.Wind.WindAt(src.Latlon, now)
		if err == nil && !w.Finite() {
			err = fmt.Errorf("%w: non finite wind at (%f,%f)", wind.ErrNoForecastData, src.Latlon.Lat, src.Latlon.Lon)
		}
		if err != nil {
			if !errors.Is(err, wind.ErrNoForecastData) {
				log.WithError(err).Warnf("Wind at (%f,%f) failed", src.Latlon.Lat, src.Latlon.Lon)
			}
			discarded++
			continue
		}

		if a, ok := reach(p, src, i, w, frontier.Elapsed); ok && (arrival == nil || a.before(arrival)) {
			arrival = &a
		}

		for h := 0; h < cfg.Headings; h++ {
			heading := float64(h) * 360.0 / float64(cfg.Headings)
			c, ok := jump(p, src, i, heading, w, seconds, elapsed)
			if !ok {
				continue
			}
			b := bucket(sphere.BearingTo(p.Origin, c.Latlon))
			if !filled[b] || c.better(&slots[b]) {
				slots[b] = c
				filled[b] = true
			}
		}
	}

	next := Isochrone{
		Step:    frontier.Step + 1,
		Elapsed: elapsed,
		Time:    p.Departure.Add(elapsed),
		Points:  make([]Point, 0, n),
	}
	for b := range slots {
		if filled[b] {
			next.Points = append(next.Points, slots[b])
		}
	}

	return Advance{Next: next, Arrival: arrival, Discarded: discarded}
}

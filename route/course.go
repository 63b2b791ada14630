package route

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/isoroute/latlon"
)

// Leg is the outcome of routing between two consecutive marks.
type Leg struct {
	From     latlon.LatLon `json:"from"`
	To       latlon.LatLon `json:"to"`
	Status   Status        `json:"status"`
	Steps    int           `json:"steps"`
	Duration time.Duration `json:"duration"`
}

type CourseResult struct {
	Status Status `json:"status"`
	Route  Route  `json:"route"`
	Legs   []Leg  `json:"legs"`
	Steps  int    `json:"steps"`
	// Isochrones of every leg, when the configuration keeps them
	Isochrones []Isochrone `json:"isochrones,omitempty"`
}

// RunCourse routes from req.Origin through every mark in order, each leg
// departing when the previous one arrived. Without marks it routes to
// req.Destination. It stops on the first leg that does not arrive.
func RunCourse(ctx context.Context, algorithm string, req Request, marks []latlon.LatLon) (CourseResult, error) {
	if len(marks) == 0 {
		marks = []latlon.LatLon{req.Destination}
	}

	result := CourseResult{Status: Arrived}
	from := req.Origin
	departure := req.Departure

	for i, mark := range marks {
		if from.Equal(mark) && (i > 0 || len(marks) > 1) {
			continue
		}

		strategy, err := NewStrategy(algorithm)
		if err != nil {
			return CourseResult{Status: Failed}, err
		}

		leg := req
		leg.Origin = from
		leg.Destination = mark
		leg.Departure = departure

		log.Debugf("Go to mark %d (%f,%f)", i, mark.Lat, mark.Lon)
		res, err := NewSession(strategy, leg).Run(ctx)
		if err != nil {
			result.Status = Failed
			return result, err
		}

		result.Legs = append(result.Legs, Leg{
			From:     from,
			To:       mark,
			Status:   res.Status,
			Steps:    res.Steps,
			Duration: res.Route.Duration,
		})
		result.Route = appendRoute(result.Route, res.Route)
		result.Steps += res.Steps
		result.Isochrones = append(result.Isochrones, res.Isochrones...)

		if res.Status != Arrived {
			result.Status = res.Status
			return result, nil
		}

		from = mark
		departure = departure.Add(res.Route.Duration)
	}

	if len(result.Legs) == 0 {
		return CourseResult{Status: Failed}, fmt.Errorf("%w: origin equals every mark", ErrInvalidRequest)
	}
	return result, nil
}

// appendRoute stitches next after r. The first waypoint of next is the
// last of r and is dropped; durations of next are shifted by r's.
func appendRoute(r Route, next Route) Route {
	if len(r.Waypoints) == 0 {
		return next
	}

	offset := r.Duration
	for _, w := range next.Waypoints[1:] {
		w.Duration += offset
		r.Waypoints = append(r.Waypoints, w)
	}
	r.Duration = offset + next.Duration
	r.Distance += next.Distance
	return r
}

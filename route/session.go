package route

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/isoroute/latlon"
	"github.com/a-bouts/isoroute/polar"
	"github.com/a-bouts/isoroute/wind"
)

// ErrInvalidRequest is returned, before any step, for malformed requests
var ErrInvalidRequest = errors.New("invalid routing request")

// stallEpsilon is the improvement, in metres, below which a step does not
// count as getting closer
const stallEpsilon = 1.0

type Status int

const (
	Idle Status = iota
	Stepping
	Arrived
	Exhausted
	Cancelled
	Failed
)

var statusNames = [...]string{"idle", "stepping", "arrived", "exhausted", "cancelled", "failed"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal is true for the statuses a session ends in.
func (s Status) Terminal() bool {
	return s >= Arrived
}

// ProgressFunc is called once per completed step with a copy of the new
// isochrone. It must not block for long; a panic inside it is logged and
// ignored.
type ProgressFunc func(iso Isochrone, elapsed time.Duration)

type Request struct {
	Origin      latlon.LatLon
	Destination latlon.LatLon
	Departure   time.Time
	Polar       polar.Polar
	Wind        wind.Provider
	Config      Config
	Progress    ProgressFunc
}

type Result struct {
	Status Status `json:"status"`
	Route  Route  `json:"route"`
	// Steps is the number of steps run, the arrival one included
	Steps int `json:"steps"`
	// Discarded counts frontier points dropped for lack of wind
	Discarded  int         `json:"discarded"`
	Isochrones []Isochrone `json:"isochrones,omitempty"`
}

// Session is one routing run. It owns its isochrones; polar and wind
// provider are only read and may be shared between sessions.
type Session struct {
	strategy Strategy
	problem  Problem
	progress ProgressFunc
	log      *log.Entry

	status     Status
	isochrones []Isochrone
	bestLevel  int
	bestIndex  int
	bestDist   float64
	stepped    int
	stalled    int
	discarded  int
}

func NewSession(strategy Strategy, req Request) *Session {
	return &Session{
		strategy: strategy,
		problem:  newProblem(req),
		progress: req.Progress,
		log:      log.WithFields(log.Fields{"strategy": strategy.Name()}),
		status:   Idle,
	}
}

// Start routes req with the isochrone router.
func Start(ctx context.Context, req Request) (Result, error) {
	return NewSession(IsochroneRouter{}, req).Run(ctx)
}

func (s *Session) Status() Status {
	return s.status
}

func (s *Session) validate() error {
	p := &s.problem
	if p.Polar == nil {
		return fmt.Errorf("%w: no polar", ErrInvalidRequest)
	}
	if p.Wind == nil {
		return fmt.Errorf("%w: no wind provider", ErrInvalidRequest)
	}
	if err := p.Config.validate(); err != nil {
		return err
	}
	for _, ll := range []latlon.LatLon{p.Origin, p.Destination} {
		if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lon) || math.Abs(ll.Lat) > 90 {
			return fmt.Errorf("%w: bad position (%f,%f)", ErrInvalidRequest, ll.Lat, ll.Lon)
		}
	}
	if p.Origin.Equal(p.Destination) || p.distance == 0 {
		return fmt.Errorf("%w: origin equals destination", ErrInvalidRequest)
	}
	if v, ok := p.Polar.(polar.Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Run drives the strategy until arrival, exhaustion or cancellation of
// ctx. Exhaustion and cancellation are not errors: the route then ends on
// the point closest to the destination. An error is only returned, with a
// Failed status, for malformed requests.
func (s *Session) Run(ctx context.Context) (Result, error) {
	if s.status != Idle {
		return Result{Status: s.status}, fmt.Errorf("%w: session already %s", ErrInvalidRequest, s.status)
	}
	if err := s.validate(); err != nil {
		s.status = Failed
		s.log.WithError(err).Warn("Routing request rejected")
		return Result{Status: Failed}, err
	}

	p := &s.problem
	s.status = Stepping
	s.log.Debugf("Route from (%f,%f) to (%f,%f) (%.1f km) at %s", p.Origin.Lat, p.Origin.Lon, p.Destination.Lat, p.Destination.Lon, p.distance/1000.0, p.Departure.Format(time.RFC3339))

	s.bestDist = math.Inf(1)
	s.commit(Isochrone{Time: p.Departure, Points: []Point{p.origin()}})

	maxSteps := p.Config.maxSteps()
	for {
		if ctx.Err() != nil {
			return s.finish(Cancelled, nil), nil
		}
		if s.steps() >= maxSteps {
			s.log.Debugf("Step ceiling %d reached", maxSteps)
			return s.finish(Exhausted, nil), nil
		}

		frontier := &s.isochrones[len(s.isochrones)-1]
		adv, err := s.strategy.Step(p, frontier)
		if err != nil {
			s.status = Failed
			s.log.WithError(err).Error("Routing step failed")
			return Result{Status: Failed, Steps: s.stepped}, err
		}
		s.stepped++
		s.discarded += adv.Discarded

		if adv.Arrival != nil {
			if len(adv.Next.Points) > 0 {
				s.notify(adv.Next)
			}
			return s.finish(Arrived, adv.Arrival), nil
		}
		if len(adv.Next.Points) == 0 {
			s.log.Debug("No way found")
			return s.finish(Exhausted, nil), nil
		}

		if s.commit(adv.Next) {
			s.stalled = 0
		} else {
			s.stalled++
		}
		s.log.Debugf("Step %d %s - %d points (%d discarded), %.1f km to go", adv.Next.Step, adv.Next.Elapsed, len(adv.Next.Points), adv.Discarded, s.bestDist/1000.0)
		s.notify(adv.Next)

		if p.Config.StallWindow > 0 && s.stalled >= p.Config.StallWindow {
			s.log.Debugf("No progress for %d steps", s.stalled)
			return s.finish(Exhausted, nil), nil
		}
	}
}

func (s *Session) steps() int {
	return len(s.isochrones) - 1
}

// commit appends an isochrone and reports whether it got closer to the
// destination than all the previous ones.
func (s *Session) commit(iso Isochrone) bool {
	s.isochrones = append(s.isochrones, iso)
	level := len(s.isochrones) - 1

	i := iso.closest()
	if i < 0 {
		return false
	}
	d := iso.Points[i].DistTo
	improved := d < s.bestDist-stallEpsilon
	if d < s.bestDist {
		s.bestDist = d
		s.bestLevel = level
		s.bestIndex = i
	}
	return improved
}

func (s *Session) notify(iso Isochrone) {
	if s.progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Warnf("Progress callback failed: %v", r)
		}
	}()
	s.progress(iso.clone(), iso.Elapsed)
}

func (s *Session) finish(status Status, arrival *Point) Result {
	var points []Point
	if arrival != nil {
		points = path(s.isochrones, len(s.isochrones)-1, *arrival)
	} else {
		points = path(s.isochrones, s.bestLevel-1, s.isochrones[s.bestLevel].Points[s.bestIndex])
	}

	res := Result{
		Status:    status,
		Route:     newRoute(s.problem.Departure, points),
		Steps:     s.stepped,
		Discarded: s.discarded,
	}
	if s.problem.Config.KeepIsochrones {
		res.Isochrones = s.isochrones
	}

	s.status = status
	s.isochrones = nil

	s.log.Infof("Route %s after %d steps: %s, %.1f km sailed", status, res.Steps, res.Route.Duration, res.Route.Distance/1000.0)
	return res
}

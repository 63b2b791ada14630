package route

import (
	"fmt"
	"strings"
	"time"

	"github.com/a-bouts/isoroute/latlon"
)

// Metric measures how far a candidate went toward the destination. Within
// a sector the candidate with the greatest progress is kept.
type Metric int

const (
	// ProgressDistance is the reduction of the great circle distance to
	// the destination.
	ProgressDistance Metric = iota
	// ProgressAlongTrack is the distance covered along the great circle
	// from origin to destination.
	ProgressAlongTrack
)

func (m Metric) String() string {
	switch m {
	case ProgressAlongTrack:
		return "along-track"
	default:
		return "distance"
	}
}

func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(s) {
	case "", "distance":
		return ProgressDistance, nil
	case "along-track":
		return ProgressAlongTrack, nil
	}
	return ProgressDistance, fmt.Errorf("%w: unknown progress metric '%s'", ErrInvalidRequest, s)
}

// Validity tells whether a boat may be at a position (not on land, not
// past an ice limit...).
type Validity func(p latlon.LatLon) bool

// All returns a validity check passing only when every check passes.
func All(checks ...Validity) Validity {
	var kept []Validity
	for _, c := range checks {
		if c != nil {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return func(p latlon.LatLon) bool {
		for _, c := range kept {
			if !c(p) {
				return false
			}
		}
		return true
	}
}

type Config struct {
	// Step is the simulated time between two isochrones
	Step time.Duration
	// Headings is the number of headings tried from every frontier point,
	// evenly spread over 360°
	Headings int
	// Sectors is the number of buckets, by bearing from the origin, an
	// isochrone is pruned to
	Sectors int
	// StallWindow is the number of consecutive steps without getting
	// closer to the destination after which the search is exhausted. 0
	// disables stall detection.
	StallWindow int
	// MaxSteps bounds the number of steps of a session
	MaxSteps int
	// MaxDuration, when set, further bounds the simulated time
	MaxDuration time.Duration
	Metric      Metric
	// DetourFactor drops candidates whose distance from the origin plus
	// distance to the destination exceeds DetourFactor times the direct
	// distance. 0 disables it.
	DetourFactor float64
	// Valid, when set, rejects candidate positions
	Valid Validity
	// KeepIsochrones returns every committed isochrone with the result
	KeepIsochrones bool
}

func DefaultConfig() Config {
	return Config{
		Step:         time.Hour,
		Headings:     72,
		Sectors:      120,
		StallWindow:  6,
		MaxSteps:     480,
		Metric:       ProgressDistance,
		DetourFactor: 0,
	}
}

func (c Config) validate() error {
	if c.Step <= 0 {
		return fmt.Errorf("%w: non-positive step interval %s", ErrInvalidRequest, c.Step)
	}
	if c.Headings <= 0 {
		return fmt.Errorf("%w: %d heading samples", ErrInvalidRequest, c.Headings)
	}
	if c.Sectors <= 0 {
		return fmt.Errorf("%w: %d sectors", ErrInvalidRequest, c.Sectors)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("%w: %d maximum steps", ErrInvalidRequest, c.MaxSteps)
	}
	if c.StallWindow < 0 {
		return fmt.Errorf("%w: negative stall window", ErrInvalidRequest)
	}
	if c.MaxDuration < 0 {
		return fmt.Errorf("%w: negative maximum duration", ErrInvalidRequest)
	}
	if c.DetourFactor != 0 && c.DetourFactor < 1 {
		return fmt.Errorf("%w: detour factor %.2f below 1", ErrInvalidRequest, c.DetourFactor)
	}
	return nil
}

// maxSteps is the step ceiling of a session
func (c Config) maxSteps() int {
	n := c.MaxSteps
	if c.MaxDuration > 0 {
		m := int(c.MaxDuration / c.Step)
		if m < 1 {
			m = 1
		}
		if m < n {
			n = m
		}
	}
	return n
}

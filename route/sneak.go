package route

import (
	"context"
	"fmt"
	"time"

	"github.com/a-bouts/isoroute/latlon"
	"github.com/a-bouts/isoroute/polar"
	"github.com/a-bouts/isoroute/wind"
)

type SneakPosition struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Twa       float64 `json:"t"`
	Bearing   float64 `json:"b"`
	Wind      float64 `json:"w"`
	WindSpeed float64 `json:"ws"`
	BoatSpeed float64 `json:"bs"`
	Duration  float64 `json:"d"`
}

// Sneak holds the lines sailed from a start at a constant heading and at
// a constant true wind angle, keyed by that heading or angle.
type Sneak struct {
	StartTime time.Time               `json:"startTime"`
	Bearing   map[int][]SneakPosition `json:"bearing"`
	Twa       map[int][]SneakPosition `json:"twa"`
}

type SneakRequest struct {
	Start     latlon.LatLon
	StartTime time.Time
	Polar     polar.Polar
	Wind      wind.Provider
	Duration  time.Duration
	Step      time.Duration
	// Every is the spacing in degrees between two lines
	Every int
}

// EvalSneak projects the boat along every line. A line stops where the
// wind is missing or the boat can't move.
func EvalSneak(ctx context.Context, req SneakRequest) (Sneak, error) {
	if req.Polar == nil || req.Wind == nil {
		return Sneak{}, fmt.Errorf("%w: no polar or wind provider", ErrInvalidRequest)
	}
	if req.Step <= 0 || req.Duration <= 0 {
		return Sneak{}, fmt.Errorf("%w: non-positive step or duration", ErrInvalidRequest)
	}
	if req.Every <= 0 {
		req.Every = 1
	}

	sneak := Sneak{
		StartTime: req.StartTime,
		Bearing:   make(map[int][]SneakPosition),
		Twa:       make(map[int][]SneakPosition),
	}

	for b := 0; b < 360; b += req.Every {
		bearing := float64(b)
		line, err := sneakLine(ctx, req, func(w wind.Wind) float64 { return bearing })
		if err != nil {
			return Sneak{}, err
		}
		sneak.Bearing[b] = line
	}

	for t := -180 + req.Every; t <= 180; t += req.Every {
		twa := float64(t)
		line, err := sneakLine(ctx, req, func(w wind.Wind) float64 { return wind.Heading(twa, w.Direction) })
		if err != nil {
			return Sneak{}, err
		}
		sneak.Twa[t] = line
	}

	return sneak, nil
}

func sneakLine(ctx context.Context, req SneakRequest, heading func(wind.Wind) float64) ([]SneakPosition, error) {
	seconds := req.Step.Seconds()
	pos := req.Start
	line := []SneakPosition{{Lat: pos.Lat, Lon: pos.Lon}}

	for elapsed := time.Duration(0); elapsed < req.Duration; elapsed += req.Step {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		w, err := req.Wind.WindAt(pos, req.StartTime.Add(elapsed))
		if err != nil || !w.Finite() {
			break
		}
		b := heading(w)
		twa := wind.Twa(b, w.Direction)
		boatSpeed := req.Polar.SpeedAt(twa, w.Speed)
		if boatSpeed <= 0 {
			break
		}

		// the leg values belong to the point the leg starts from
		src := &line[len(line)-1]
		src.Bearing = b
		src.Twa = twa
		src.Wind = w.Direction
		src.WindSpeed = w.Speed
		src.BoatSpeed = boatSpeed

		pos = sphere.Destination(pos, b, boatSpeed*KnotsToMs*seconds)
		line = append(line, SneakPosition{
			Lat:      pos.Lat,
			Lon:      pos.Lon,
			Duration: (elapsed + req.Step).Hours(),
		})
	}
	return line, nil
}

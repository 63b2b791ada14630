package race

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/a-bouts/isoroute/latlon"
)

var sphere = latlon.LatLonSpherical{}

// Waypoint is a mark of the course: a buoy, or a gate when it has two
// positions.
type Waypoint struct {
	Name      string          `json:"name"`
	Latlons   []latlon.LatLon `json:"latlons"`
	Validated bool            `json:"validated"`
}

// IceLimits are the northern and southern lines a boat may not cross,
// given every 5° of longitude from -180.
type IceLimits struct {
	North  []latlon.LatLon `json:"north"`
	South  []latlon.LatLon `json:"south"`
	MaxLat float64         `json:"maxLat"`
	MinLat float64         `json:"minLat"`
}

type Race struct {
	Name      string        `json:"name"`
	Boat      string        `json:"boat"`
	Start     latlon.LatLon `json:"start"`
	Waypoints []Waypoint    `json:"waypoints"`
	IceLimits IceLimits     `json:"ice_limits"`
}

// Load decodes a list of races.
func Load(r io.Reader) ([]Race, error) {
	var races []Race
	if err := json.NewDecoder(r).Decode(&races); err != nil {
		return nil, fmt.Errorf("decode races: %w", err)
	}
	for _, race := range races {
		if err := race.Validate(); err != nil {
			return nil, err
		}
	}
	return races, nil
}

// Validate checks every waypoint has a position.
func (r Race) Validate() error {
	for _, w := range r.Waypoints {
		if len(w.Latlons) == 0 {
			return fmt.Errorf("race '%s': waypoint '%s' has no position", r.Name, w.Name)
		}
	}
	return nil
}

func LoadFile(file string) ([]Race, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Mark is the position to route to for a waypoint, the middle of a gate.
func (w Waypoint) Mark() latlon.LatLon {
	if len(w.Latlons) < 2 {
		return w.Latlons[0]
	}
	d, b := sphere.DistanceAndBearingTo(w.Latlons[0], w.Latlons[1])
	return sphere.Destination(w.Latlons[0], b, d/2)
}

// Marks lists the marks still to pass, in order. Waypoints without
// position are skipped, Validate reports them.
func (r Race) Marks() []latlon.LatLon {
	var marks []latlon.LatLon
	for _, w := range r.Waypoints {
		if w.Validated || len(w.Latlons) == 0 {
			continue
		}
		marks = append(marks, w.Mark())
	}
	return marks
}

// Navigable is the validity check of a route in the race: a boat can't be
// past the ice limits.
func (r Race) Navigable(p latlon.LatLon) bool {
	return !r.IceLimits.IsInIceLimits(p)
}

func (iceLimits *IceLimits) IsInIceLimits(latLon latlon.LatLon) bool {

	lon := latlon.WrapLon(latLon.Lon)

	if iceLimits.MinLat < latLon.Lat && latLon.Lat < iceLimits.MaxLat {
		return false
	}

	if latLon.Lat > 0.0 {
		lat, ok := limitAt(iceLimits.North, lon)
		return ok && latLon.Lat >= lat
	}
	lat, ok := limitAt(iceLimits.South, lon)
	return ok && latLon.Lat <= lat
}

// limitAt interpolates the latitude of a limit line at a longitude
func limitAt(limit []latlon.LatLon, lon float64) (float64, bool) {
	i := int((lon + 180) / 5)
	if i < 0 || i+1 >= len(limit) {
		return 0, false
	}
	a, b := limit[i], limit[i+1]
	if b.Lon == a.Lon {
		return a.Lat, true
	}
	return (lon-a.Lon)/(b.Lon-a.Lon)*(b.Lat-a.Lat) + a.Lat, true
}

package land

import (
	"fmt"
	"math"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/isoroute/latlon"
)

// DefaultStep is the resolution, in degrees, of the world land mask
const DefaultStep = 360.0 / 43200.0

// Land is a bitmap of the world, one bit per cell set when the cell is
// land. Rows go from latitude -90 to 90, columns from longitude -180
// eastward.
type Land struct {
	step float64
	lat0 float64
	lon0 float64
	nLat int
	nLon int
	data []byte
}

// New wraps a bitmap of the given resolution.
func New(step float64, data []byte) (*Land, error) {
	if step <= 0 {
		return nil, fmt.Errorf("non-positive land step %f", step)
	}
	l := &Land{
		step: step,
		lat0: -90.0,
		lon0: -180.0,
		nLat: int(math.Round(180.0/step)) + 1,
		nLon: int(math.Round(360.0 / step)),
		data: data,
	}
	if need := (l.nLat*l.nLon + 7) / 8; len(data) < need {
		return nil, fmt.Errorf("land mask has %d bytes, need %d for step %f", len(data), need, step)
	}
	return l, nil
}

// Load reads a world land mask at DefaultStep.
func Load(file string) (*Land, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		log.WithError(err).Errorf("Error reading file '%s'", file)
		return nil, err
	}
	l, err := New(DefaultStep, b)
	if err != nil {
		return nil, fmt.Errorf("load '%s': %w", file, err)
	}
	log.Infof("Land mask '%s' loaded (%dx%d)", file, l.nLat, l.nLon)
	return l, nil
}

// IsLand check if location is land or sea
func (l *Land) IsLand(lat float64, lon float64) bool {
	i := int(math.Round((lat - l.lat0) / l.step))
	j := int(math.Round((latlon.WrapLon(lon) - l.lon0) / l.step))
	if j == l.nLon {
		j = 0
	}
	if i < 0 || i >= l.nLat || j < 0 || j >= l.nLon {
		return false
	}

	p := i*l.nLon + j

	pB := p / 8
	pb := uint(p % 8)

	return ((l.data[pB] >> (7 - pb)) & 0x01) == 0x01
}

// Navigable is the validity check of a route: a boat can't be on land.
func (l *Land) Navigable(p latlon.LatLon) bool {
	return !l.IsLand(p.Lat, p.Lon)
}

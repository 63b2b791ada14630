package polar

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrInvalidPolarData is returned for tables interpolation is undefined on
	ErrInvalidPolarData = errors.New("invalid polar data")
	// ErrUnknownBoat is returned when a boat model can't be resolved
	ErrUnknownBoat = errors.New("unknown boat model")
)

// Polar gives the boat speed in knots for a true wind angle in degrees
// and a true wind speed in knots.
type Polar interface {
	SpeedAt(twa float64, tws float64) float64
}

// Validator is implemented by polars that can check their own data.
type Validator interface {
	Validate() error
}

// Entry is one measured point of a polar.
type Entry struct {
	Twa       float64 `json:"twa"`
	Tws       float64 `json:"tws"`
	BoatSpeed float64 `json:"boatSpeed"`
}

// Table is a dense polar: Speed[i][j] is the boat speed at Twa[i] and Tws[j].
// Only one tack is stored, angles are in [0,180].
type Table struct {
	Name  string      `json:"name"`
	Twa   []float64   `json:"twa"`
	Tws   []float64   `json:"tws"`
	Speed [][]float64 `json:"speed"`
}

// NewTable builds a table from unordered entries. Every (twa, tws) pair
// of the grid must be present.
func NewTable(name string, entries []Entry) (*Table, error) {
	twas := make(map[float64]int)
	twss := make(map[float64]int)
	for _, e := range entries {
		twas[e.Twa] = 0
		twss[e.Tws] = 0
	}

	t := &Table{Name: name, Twa: sortedKeys(twas), Tws: sortedKeys(twss)}
	for i, a := range t.Twa {
		twas[a] = i
	}
	for j, s := range t.Tws {
		twss[s] = j
	}

	t.Speed = make([][]float64, len(t.Twa))
	seen := make([][]bool, len(t.Twa))
	for i := range t.Speed {
		t.Speed[i] = make([]float64, len(t.Tws))
		seen[i] = make([]bool, len(t.Tws))
	}
	for _, e := range entries {
		i, j := twas[e.Twa], twss[e.Tws]
		if seen[i][j] {
			return nil, fmt.Errorf("%w: duplicate entry twa %.1f tws %.1f", ErrInvalidPolarData, e.Twa, e.Tws)
		}
		seen[i][j] = true
		t.Speed[i][j] = e.BoatSpeed
	}
	for i := range seen {
		for j := range seen[i] {
			if !seen[i][j] {
				return nil, fmt.Errorf("%w: missing entry twa %.1f tws %.1f", ErrInvalidPolarData, t.Twa[i], t.Tws[j])
			}
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func sortedKeys(m map[float64]int) []float64 {
	keys := make([]float64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}

// Validate checks the table can be interpolated.
func (t *Table) Validate() error {
	if len(t.Twa) < 2 {
		return fmt.Errorf("%w: %d angle rows, need at least 2", ErrInvalidPolarData, len(t.Twa))
	}
	if len(t.Tws) < 2 {
		return fmt.Errorf("%w: %d wind speed columns, need at least 2", ErrInvalidPolarData, len(t.Tws))
	}
	if len(t.Speed) != len(t.Twa) {
		return fmt.Errorf("%w: %d speed rows for %d angles", ErrInvalidPolarData, len(t.Speed), len(t.Twa))
	}
	for i, a := range t.Twa {
		if a < 0 || a > 180 {
			return fmt.Errorf("%w: angle %.1f out of [0,180]", ErrInvalidPolarData, a)
		}
		if i > 0 && a <= t.Twa[i-1] {
			return fmt.Errorf("%w: angles not strictly ascending at %.1f", ErrInvalidPolarData, a)
		}
		if len(t.Speed[i]) != len(t.Tws) {
			return fmt.Errorf("%w: row %.1f has %d speeds for %d wind speeds", ErrInvalidPolarData, a, len(t.Speed[i]), len(t.Tws))
		}
		for _, bs := range t.Speed[i] {
			if bs < 0 || math.IsNaN(bs) {
				return fmt.Errorf("%w: bad boat speed %f at %.1f", ErrInvalidPolarData, bs, a)
			}
		}
	}
	for j, s := range t.Tws {
		if s < 0 {
			return fmt.Errorf("%w: negative wind speed %.1f", ErrInvalidPolarData, s)
		}
		if j > 0 && s <= t.Tws[j-1] {
			return fmt.Errorf("%w: wind speeds not strictly ascending at %.1f", ErrInvalidPolarData, s)
		}
	}
	return nil
}

// Entries lists the table cells, angle major.
func (t *Table) Entries() []Entry {
	entries := make([]Entry, 0, len(t.Twa)*len(t.Tws))
	for i, a := range t.Twa {
		for j, s := range t.Tws {
			entries = append(entries, Entry{Twa: a, Tws: s, BoatSpeed: t.Speed[i][j]})
		}
	}
	return entries
}

// MaxSpeed is the best boat speed anywhere in the table.
func (t *Table) MaxSpeed() float64 {
	max := 0.0
	for _, row := range t.Speed {
		for _, bs := range row {
			if bs > max {
				max = bs
			}
		}
	}
	return max
}

// Reflect brings any angle into [0,180], port and starboard being mirrored.
func Reflect(twa float64) float64 {
	t := math.Mod(math.Abs(twa), 360)
	if t > 180 {
		t = 360 - t
	}
	return t
}

// interpolationIndex returns the two indexes bracketing value and the
// weight of the second one. Values past the last element clamp to it.
// Values before the first element return i0 = -1: the caller decides what
// lies below the table.
func interpolationIndex(values []float64, value float64) (int, int, float64) {
	n := len(values)
	if value >= values[n-1] {
		return n - 1, n - 1, 0
	}
	if value < values[0] {
		return -1, 0, value / values[0]
	}

	i := sort.SearchFloat64s(values, value)
	if values[i] == value {
		return i, i, 0
	}
	return i - 1, i, (value - values[i-1]) / (values[i] - values[i-1])
}

// SpeedAt interpolates bilinearly. Wind stronger than the last column is
// clamped to it. Below the first column and the first row the table
// fades linearly to zero speed at 0 kt and 0°. Non finite inputs give 0.
func (t *Table) SpeedAt(twa float64, tws float64) float64 {
	if tws <= 0 || math.IsInf(tws, 0) || math.IsNaN(tws) || math.IsInf(twa, 0) || math.IsNaN(twa) {
		return 0
	}
	a := Reflect(twa)

	a0, a1, fa := interpolationIndex(t.Twa, a)
	s0, s1, fs := interpolationIndex(t.Tws, tws)

	cell := func(i, j int) float64 {
		if i < 0 || j < 0 {
			return 0
		}
		return t.Speed[i][j]
	}
	row := func(i int) float64 {
		return cell(i, s0)*(1-fs) + cell(i, s1)*fs
	}

	return row(a0)*(1-fa) + row(a1)*fa
}

package wind

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/nilsmagnus/grib/griblib"
)

// Field is one forecast hour of 10 m wind: U and V grids in m/s indexed
// [lat][lon], starting at (Lat0, Lon0). ΔLat is negative when the grid is
// scanned from north to south.
type Field struct {
	Date time.Time
	File string
	Lat0 float64
	Lon0 float64
	ΔLat float64
	ΔLon float64
	NLat uint32
	NLon uint32
	U    [][]float64
	V    [][]float64
}

func (w Field) buildGrid(data []float64) [][]float64 {

	isContinuous := math.Floor(float64(w.NLon)*w.ΔLon) >= 360

	nLon := w.NLon
	if isContinuous {
		nLon++
	}

	grid := make([][]float64, w.NLat)

	p := 0
	for j := uint32(0); j < w.NLat; j++ {
		grid[j] = make([]float64, nLon)
		for i := uint32(0); i < w.NLon; i++ {
			grid[j][i] = data[p]
			p++
		}
		if isContinuous {
			grid[j][w.NLon] = grid[j][0]
		}
	}
	return grid
}

// LoadField decodes the 10 m U and V components of a GRIB2 file.
func LoadField(path string, date time.Time) (*Field, error) {
	w := &Field{Date: date, File: path}
	gribfile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer gribfile.Close()

	messages, err := griblib.ReadMessages(gribfile)
	if err != nil {
		return nil, err
	}
	for _, message := range messages {
		pdt := message.Section4.ProductDefinitionTemplate
		if message.Section0.Discipline != uint8(0) || pdt.ParameterCategory != uint8(2) || pdt.FirstSurface.Type != 103 || pdt.FirstSurface.Value != 10 {
			continue
		}
		grid0, ok := message.Section3.Definition.(*griblib.Grid0)
		if !ok {
			continue
		}
		w.Lat0 = float64(grid0.La1) / 1e6
		w.Lon0 = float64(grid0.Lo1) / 1e6
		w.ΔLat = float64(grid0.Dj) / 1e6
		if grid0.La2 < grid0.La1 {
			w.ΔLat = -w.ΔLat
		}
		w.ΔLon = float64(grid0.Di) / 1e6
		w.NLat = grid0.Nj
		w.NLon = grid0.Ni
		if pdt.ParameterNumber == 2 {
			w.U = w.buildGrid(message.Section7.Data)
		} else if pdt.ParameterNumber == 3 {
			w.V = w.buildGrid(message.Section7.Data)
		}
	}
	if w.U == nil || w.V == nil {
		return nil, fmt.Errorf("no 10 m wind in '%s'", path)
	}
	return w, nil
}

func floorMod(a float64, n float64) float64 {
	return a - n*math.Floor(a/n)
}

func bilinearInterpolate(x float64, y float64, g00 []float64, g10 []float64, g01 []float64, g11 []float64) (float64, float64) {

	rx := (1 - x)
	ry := (1 - y)

	a := rx * ry
	b := x * ry
	c := rx * y
	d := x * y

	u := g00[0]*a + g10[0]*b + g01[0]*c + g11[0]*d
	v := g00[1]*a + g10[1]*b + g01[1]*c + g11[1]*d

	return u, v
}

// vectorToDegrees gives the direction the wind blows from
func vectorToDegrees(u float64, v float64) float64 {
	if u == 0 && v == 0 {
		return 0
	}
	return floorMod(math.Atan2(u, v)*180/math.Pi+180, 360)
}

// interpolate returns the U and V components at a position, false when
// the position is outside the grid.
func (w *Field) interpolate(lat float64, lon float64) (float64, float64, bool) {
	if len(w.U) == 0 || len(w.V) == 0 {
		return 0, 0, false
	}

	i := (lat - w.Lat0) / w.ΔLat
	j := floorMod(lon-w.Lon0, 360.0) / w.ΔLon

	maxI := float64(len(w.U) - 1)
	maxJ := float64(len(w.U[0]) - 1)
	if i < 0 || i > maxI || j < 0 || j > maxJ {
		return 0, 0, false
	}

	fi := uint32(i)
	fj := uint32(j)
	fi1 := fi + 1
	if float64(fi1) > maxI {
		fi1 = fi
	}
	fj1 := fj + 1
	if float64(fj1) > maxJ {
		fj1 = fj
	}

	u, v := bilinearInterpolate(j-float64(fj), i-float64(fi),
		[]float64{w.U[fi][fj], w.V[fi][fj]},
		[]float64{w.U[fi][fj1], w.V[fi][fj1]},
		[]float64{w.U[fi1][fj], w.V[fi1][fj]},
		[]float64{w.U[fi1][fj1], w.V[fi1][fj1]})

	return u, v, true
}

func toWind(u, v float64) Wind {
	return Wind{
		Direction: vectorToDegrees(u, v),
		Speed:     math.Sqrt(u*u+v*v) * MsToKnots,
	}
}

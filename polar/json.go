package polar

import (
	"encoding/json"
	"fmt"
	"io"
)

// Boat is the json polar format: one speed grid per sail, indexed
// [twa][tws], and a global ratio applied to every speed.
type Boat struct {
	Label            string    `json:"label"`
	GlobalSpeedRatio float64   `json:"globalSpeedRatio"`
	Tws              []float64 `json:"tws"`
	Twa              []float64 `json:"twa"`
	Sail             []Sail    `json:"sail"`
}

type Sail struct {
	Id    int         `json:"id"`
	Name  string      `json:"name"`
	Speed [][]float64 `json:"speed"`
}

// ParseJSON reads a json polar, keeping for each cell the speed of the
// best sail.
func ParseJSON(name string, r io.Reader) (*Table, error) {
	var boat Boat
	if err := json.NewDecoder(r).Decode(&boat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolarData, err)
	}
	if len(boat.Sail) == 0 {
		return nil, fmt.Errorf("%w: no sail", ErrInvalidPolarData)
	}

	ratio := boat.GlobalSpeedRatio
	if ratio == 0 {
		ratio = 1
	}

	var entries []Entry
	for i, twa := range boat.Twa {
		for j, tws := range boat.Tws {
			max := 0.0
			for _, sail := range boat.Sail {
				if i >= len(sail.Speed) || j >= len(sail.Speed[i]) {
					return nil, fmt.Errorf("%w: sail %s has no speed at twa %.1f tws %.1f", ErrInvalidPolarData, sail.Name, twa, tws)
				}
				if sail.Speed[i][j] > max {
					max = sail.Speed[i][j]
				}
			}
			entries = append(entries, Entry{Twa: twa, Tws: tws, BoatSpeed: max * ratio})
		}
	}

	if name == "" {
		name = boat.Label
	}
	return NewTable(name, entries)
}

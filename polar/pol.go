package polar

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParsePol reads the common .pol format: a header line whose first cell is
// a label (TWA\TWS) followed by wind speeds, then one line per angle with
// the boat speeds. Cells are separated by tabs, semicolons or spaces.
func ParsePol(name string, r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)

	var tws []float64
	var entries []Entry
	header := true
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		cells := strings.FieldsFunc(text, func(c rune) bool {
			return c == '\t' || c == ';' || c == ' '
		})

		if header {
			header = false
			for _, c := range cells[1:] {
				s, err := strconv.ParseFloat(c, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: wind speed %q: %v", ErrInvalidPolarData, line, c, err)
				}
				tws = append(tws, s)
			}
			continue
		}

		if len(cells) != len(tws)+1 {
			return nil, fmt.Errorf("%w: line %d: %d cells, want %d", ErrInvalidPolarData, line, len(cells), len(tws)+1)
		}
		twa, err := strconv.ParseFloat(cells[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: angle %q: %v", ErrInvalidPolarData, line, cells[0], err)
		}
		for j, c := range cells[1:] {
			bs, err := strconv.ParseFloat(c, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: boat speed %q: %v", ErrInvalidPolarData, line, c, err)
			}
			entries = append(entries, Entry{Twa: twa, Tws: tws[j], BoatSpeed: bs})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return NewTable(name, entries)
}

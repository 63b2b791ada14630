package wind

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/isoroute/latlon"
)

// Forecast is a directory of GRIB2 files named YYYYMMDDHH.fHHH (run time
// and forecast hour). For each valid time the most recent run is kept.
type Forecast struct {
	dir    string
	load   func(path string, date time.Time) (*Field, error)
	fields map[time.Time]*Field
	times  []time.Time
	lock   sync.RWMutex
}

func NewForecast(dir string) *Forecast {
	return &Forecast{
		dir:    dir,
		load:   LoadField,
		fields: make(map[time.Time]*Field),
	}
}

// Add puts a field in the forecast, replacing the one valid at the same time.
func (f *Forecast) Add(field *Field) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.fields[field.Date.UTC()] = field
	f.sortTimes()
}

func (f *Forecast) sortTimes() {
	f.times = f.times[:0]
	for t := range f.fields {
		f.times = append(f.times, t)
	}
	sort.Slice(f.times, func(i, j int) bool { return f.times[i].Before(f.times[j]) })
}

// Times lists the valid times of the loaded fields.
func (f *Forecast) Times() []time.Time {
	f.lock.RLock()
	defer f.lock.RUnlock()

	return append([]time.Time(nil), f.times...)
}

// FindWinds returns the fields bracketing m and the weight of the second.
func (f *Forecast) FindWinds(m time.Time) (*Field, *Field, float64, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()

	m = m.UTC()
	n := len(f.times)
	if n == 0 || m.Before(f.times[0]) || m.After(f.times[n-1]) {
		return nil, nil, 0, fmt.Errorf("%w: %s", ErrNoForecastData, m.Format(time.RFC3339))
	}

	i := sort.Search(n, func(i int) bool { return !f.times[i].Before(m) })
	if f.times[i].Equal(m) {
		return f.fields[f.times[i]], nil, 0, nil
	}

	h := m.Sub(f.times[i-1]).Minutes()
	delta := f.times[i].Sub(f.times[i-1]).Minutes()
	return f.fields[f.times[i-1]], f.fields[f.times[i]], h / delta, nil
}

func (f *Forecast) WindAt(p latlon.LatLon, t time.Time) (Wind, error) {
	w, w1, x, err := f.FindWinds(t)
	if err != nil {
		return Wind{}, err
	}

	u, v, ok := w.interpolate(p.Lat, p.Lon)
	if !ok {
		return Wind{}, fmt.Errorf("%w: (%f,%f) outside '%s'", ErrNoForecastData, p.Lat, p.Lon, w.File)
	}
	if w1 != nil {
		u1, v1, ok := w1.interpolate(p.Lat, p.Lon)
		if !ok {
			return Wind{}, fmt.Errorf("%w: (%f,%f) outside '%s'", ErrNoForecastData, p.Lat, p.Lon, w1.File)
		}
		u = u1*x + u*(1-x)
		v = v1*x + v*(1-x)
	}

	return toWind(u, v), nil
}

type gribFile struct {
	name  string
	run   time.Time
	valid time.Time
}

func parseGribName(name string) (gribFile, error) {
	parts := strings.Split(name, ".")
	if len(parts) != 2 || len(parts[1]) < 2 || parts[1][0] != 'f' {
		return gribFile{}, fmt.Errorf("unexpected grib file name '%s'", name)
	}
	run, err := time.Parse("2006010215", parts[0])
	if err != nil {
		return gribFile{}, err
	}
	h, err := strconv.Atoi(parts[1][1:])
	if err != nil {
		return gribFile{}, err
	}
	return gribFile{name: name, run: run, valid: run.Add(time.Hour * time.Duration(h))}, nil
}

// Merge synchronizes the forecast with its directory: fields whose file
// disappeared are dropped and newer files are loaded. It returns whether
// anything changed.
func (f *Forecast) Merge() (bool, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		log.WithError(err).Error("Error walking grib files")
		return false, err
	}

	latest := make(map[time.Time]gribFile)
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasSuffix(e.Name(), ".tmp") || strings.HasSuffix(e.Name(), ".idx") {
			continue
		}
		g, err := parseGribName(e.Name())
		if err != nil {
			log.WithError(err).Debugf("Skip file '%s'", e.Name())
			continue
		}
		if prev, found := latest[g.valid]; !found || prev.run.Before(g.run) {
			latest[g.valid] = g
		}
	}

	f.lock.RLock()
	var toLoad []gribFile
	var toRemove []time.Time
	for t, field := range f.fields {
		if _, found := latest[t]; !found {
			toRemove = append(toRemove, t)
		} else if filepath.Base(field.File) != latest[t].name {
			toLoad = append(toLoad, latest[t])
		}
	}
	for t, g := range latest {
		if _, found := f.fields[t]; !found {
			toLoad = append(toLoad, g)
		}
	}
	f.lock.RUnlock()

	sort.Slice(toLoad, func(i, j int) bool { return toLoad[i].valid.Before(toLoad[j].valid) })

	loaded := make([]*Field, 0, len(toLoad))
	for _, g := range toLoad {
		field, err := f.load(filepath.Join(f.dir, g.name), g.valid)
		if err != nil {
			log.WithError(err).Errorf("Error loading grib file '%s'", g.name)
			continue
		}
		log.Debugf("Init %s %s", g.valid.Format("2006010215"), g.name)
		loaded = append(loaded, field)
	}

	if len(toRemove) == 0 && len(loaded) == 0 {
		return false, nil
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	for _, t := range toRemove {
		log.Infof("Remove from winds %s", t.Format("2006010215"))
		delete(f.fields, t)
	}
	for _, field := range loaded {
		f.fields[field.Date.UTC()] = field
	}
	f.sortTimes()

	return true, nil
}

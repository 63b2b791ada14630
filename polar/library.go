package polar

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Library resolves boat models from a directory of .pol and .json files.
// Parsed tables are kept, so a model is read at most once.
type Library struct {
	dir    string
	lock   sync.RWMutex
	tables map[string]*Table
}

func NewLibrary(dir string) *Library {
	return &Library{
		dir:    dir,
		tables: make(map[string]*Table),
	}
}

// Resolve returns the table of a boat model. Unknown models fail with
// ErrUnknownBoat, unreadable ones with ErrInvalidPolarData.
func (l *Library) Resolve(model string) (*Table, error) {
	if model == "" || strings.ContainsAny(model, `/\`) || strings.HasPrefix(model, ".") {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownBoat, model)
	}

	l.lock.RLock()
	t, found := l.tables[model]
	l.lock.RUnlock()
	if found {
		return t, nil
	}

	t, err := l.load(model)
	if err != nil {
		return nil, err
	}

	l.lock.Lock()
	l.tables[model] = t
	l.lock.Unlock()

	return t, nil
}

func (l *Library) load(model string) (*Table, error) {
	parsers := []struct {
		ext   string
		parse func(string, *os.File) (*Table, error)
	}{
		{".pol", func(n string, f *os.File) (*Table, error) { return ParsePol(n, f) }},
		{".json", func(n string, f *os.File) (*Table, error) { return ParseJSON(n, f) }},
	}

	for _, p := range parsers {
		file := filepath.Join(l.dir, model+p.ext)
		f, err := os.Open(file)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		t, err := p.parse(model, f)
		f.Close()
		if err != nil {
			log.WithError(err).Errorf("Error loading polar '%s'", file)
			return nil, err
		}
		log.Debugf("Load polar %s", file)
		return t, nil
	}

	return nil, fmt.Errorf("%w: '%s'", ErrUnknownBoat, model)
}

// Models lists the boat models available in the directory.
func (l *Library) Models() ([]string, error) {
	files, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var models []string
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		ext := filepath.Ext(f.Name())
		if ext != ".pol" && ext != ".json" {
			continue
		}
		m := strings.TrimSuffix(f.Name(), ext)
		if !seen[m] {
			seen[m] = true
			models = append(models, m)
		}
	}
	sort.Strings(models)
	return models, nil
}

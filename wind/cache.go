package wind

import (
	"math"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/a-bouts/isoroute/latlon"
)

const cacheResolution = 1e4

type cacheKey struct {
	lat, lon int64
	minute   int64
}

// Cache memoizes a provider. Queries are snapped to a 1e-4° grid and to the
// minute before reaching the provider, so cached and uncached answers are
// identical whatever the query order. Errors are not cached.
type Cache struct {
	provider Provider
	lru      *expirable.LRU[cacheKey, Wind]
}

func NewCache(provider Provider, size int, ttl time.Duration) *Cache {
	return &Cache{
		provider: provider,
		lru:      expirable.NewLRU[cacheKey, Wind](size, nil, ttl),
	}
}

func (c *Cache) WindAt(p latlon.LatLon, t time.Time) (Wind, error) {
	k := cacheKey{
		lat:    int64(math.Round(p.Lat * cacheResolution)),
		lon:    int64(math.Round(p.Lon * cacheResolution)),
		minute: t.Unix() / 60,
	}
	if w, ok := c.lru.Get(k); ok {
		return w, nil
	}

	w, err := c.provider.WindAt(
		latlon.LatLon{Lat: float64(k.lat) / cacheResolution, Lon: float64(k.lon) / cacheResolution},
		time.Unix(k.minute*60, 0).UTC())
	if err != nil {
		return Wind{}, err
	}
	c.lru.Add(k, w)
	return w, nil
}

// Purge empties the cache, after the underlying forecast changed.
func (c *Cache) Purge() {
	c.lru.Purge()
}

func (c *Cache) Len() int {
	return c.lru.Len()
}

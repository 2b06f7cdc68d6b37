package bracket

import "sync"

// StationCache remembers the last station each set was announced at, so a
// re-observed assignment produces no duplicate announcement. Entries never
// expire; the cache is rebuilt from the remote source after a restart.
//
// Mutated by both the poll loop and interaction handlers, so access is
// mutex-guarded.
type StationCache struct {
	mu       sync.RWMutex
	stations map[string]int
}

func NewStationCache() *StationCache {
	return &StationCache{
		stations: make(map[string]int),
	}
}

func (c *StationCache) Lookup(setID string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	station, ok := c.stations[setID]
	return station, ok
}

func (c *StationCache) Record(setID string, station int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stations[setID] = station
}

func (c *StationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.stations)
}

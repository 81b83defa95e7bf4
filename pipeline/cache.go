package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/sartorproj/epiwave/record"
)

// DefaultCacheSize is the number of results kept when Config.CacheSize is 0.
const DefaultCacheSize = 16

// cache memoizes results by a digest of the inputs and the configuration.
// Once full, the oldest entry is evicted.
type cache struct {
	mx      sync.RWMutex
	size    int
	order   []string
	results map[string]*Result
}

func newCache(size int) *cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &cache{size: size, results: make(map[string]*Result, size)}
}

type cacheInput struct {
	Records    []record.RawRecord
	HasPop     bool
	Population []record.BandPopulation
	Total      int64
	HasTotal   bool
	Config     Config
}

// key returns "" when the inputs cannot be encoded; such runs are not cached.
func (c *cache) key(records []record.RawRecord, pop *record.Population, config *Config) string {
	in := cacheInput{Records: records, Config: *config}
	if pop != nil {
		in.HasPop = true
		in.Population = pop.Bands()
		in.Total, in.HasTotal = pop.GrandTotal()
	}
	b, err := sonic.Marshal(in)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func (c *cache) get(key string) (*Result, bool) {
	if key == "" {
		return nil, false
	}
	c.mx.RLock()
	defer c.mx.RUnlock()
	res, ok := c.results[key]
	return res, ok
}

func (c *cache) put(key string, res *Result) {
	if key == "" {
		return
	}
	c.mx.Lock()
	defer c.mx.Unlock()
	if _, ok := c.results[key]; !ok {
		if len(c.order) == c.size {
			delete(c.results, c.order[0])
			c.order = c.order[1:]
		}
		c.order = append(c.order, key)
	}
	c.results[key] = res
}

func (c *cache) count() int {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return len(c.results)
}

package server

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/lumenfin/pulse/internal/analysis"
)

const analysisCacheKey = "analysis:latest"

// resultCache holds the most recent analysis result so repeated dashboard
// loads don't burn provider quota.
type resultCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func newResultCache(ttl time.Duration) (*resultCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	return &resultCache{cache: cache, ttl: ttl}, nil
}

func (c *resultCache) Get() (*analysis.Result, bool) {
	value, found := c.cache.Get(analysisCacheKey)
	if !found {
		return nil, false
	}
	result, ok := value.(*analysis.Result)
	return result, ok
}

func (c *resultCache) Set(result *analysis.Result) {
	c.cache.SetWithTTL(analysisCacheKey, result, 1, c.ttl)
	// Sets are async in ristretto; wait so the next read sees the value.
	c.cache.Wait()
}

func (c *resultCache) Invalidate() {
	c.cache.Del(analysisCacheKey)
}

func (c *resultCache) Close() {
	c.cache.Close()
}

package stomp

import (
	"time"

	"github.com/coocood/freecache"
)

const minDedupeCacheSize = 512 * 1024

// dedupeCache remembers delivered message ids for a while. freecache is safe
// for concurrent use.
type dedupeCache struct {
	cache *freecache.Cache
	ttl   int
}

func newDedupeCache(cfg DeduplicationConfig) *dedupeCache {
	size := cfg.Size
	if size < minDedupeCacheSize {
		size = minDedupeCacheSize
	}
	ttl := int(cfg.TTL / time.Second)
	if ttl <= 0 {
		ttl = 60
	}
	return &dedupeCache{cache: freecache.NewCache(size), ttl: ttl}
}

// seen reports whether id was already recorded and records it otherwise.
// Messages without an id are never duplicates.
func (d *dedupeCache) seen(id string) bool {
	if id == "" {
		return false
	}
	key := []byte(id)
	if _, err := d.cache.Get(key); err == nil {
		return true
	}
	_ = d.cache.Set(key, []byte{1}, d.ttl)
	return false
}

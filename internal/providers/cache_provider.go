package providers

import (
	"encoding/binary"
	"fmt"

	"github.com/coocood/freecache"

	"github.com/sadopc/newlife/internal/structures"
)

type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Del(key string)
}

// CacheProvider stores values in freecache. freecache rejects entries over
// 1/1024 of its size, so values are split into chunks below that limit and
// a header entry records the chunk count. A value with any chunk evicted
// reads as a miss.
type CacheProvider struct {
	cache    *freecache.Cache
	chunkLen int
}

// entryOverhead covers freecache's entry header and the chunk key.
const entryOverhead = 128

func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.SizeMB <= 0 {
		logger.Infof(TypeApp, "Cache disabled")
		return &noopCache{}
	}

	size := conf.Cache.SizeMB * 1024 * 1024
	logger.Infof(TypeApp, "Cache initialized: %dMB", conf.Cache.SizeMB)
	return &CacheProvider{
		cache:    freecache.NewCache(size),
		chunkLen: max(size/1024-entryOverhead, 64),
	}
}

func chunkKey(key string, i int) []byte {
	return []byte(fmt.Sprintf("%s#%d", key, i))
}

func (c *CacheProvider) Get(key string) ([]byte, bool) {
	head, err := c.cache.Get([]byte(key))
	if err != nil || len(head) != 4 {
		return nil, false
	}
	n := int(binary.BigEndian.Uint32(head))
	out := make([]byte, 0, n*c.chunkLen)
	for i := range n {
		part, err := c.cache.Get(chunkKey(key, i))
		if err != nil {
			return nil, false
		}
		out = append(out, part...)
	}
	return out, true
}

// Set stores value without expiry; entries leave the cache on Del or when
// freecache evicts them for space. Chunks are written before the header so
// a failed Set never leaves a readable partial value.
func (c *CacheProvider) Set(key string, value []byte) {
	c.Del(key)
	n := 0
	for start := 0; start < len(value) || n == 0; start += c.chunkLen {
		end := min(start+c.chunkLen, len(value))
		if err := c.cache.Set(chunkKey(key, n), value[start:end], 0); err != nil {
			return
		}
		n++
	}
	head := make([]byte, 4)
	binary.BigEndian.PutUint32(head, uint32(n))
	_ = c.cache.Set([]byte(key), head, 0)
}

func (c *CacheProvider) Del(key string) {
	head, err := c.cache.Get([]byte(key))
	c.cache.Del([]byte(key))
	if err != nil || len(head) != 4 {
		return
	}
	for i := range int(binary.BigEndian.Uint32(head)) {
		c.cache.Del(chunkKey(key, i))
	}
}

// MetricsCacheProvider counts hits and misses of the wrapped cache.
type MetricsCacheProvider struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *MetricsCacheProvider) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		c.metrics.IncCacheHits()
	} else {
		c.metrics.IncCacheMisses()
	}
	return val, ok
}

func (c *MetricsCacheProvider) Set(key string, value []byte) { c.inner.Set(key, value) }
func (c *MetricsCacheProvider) Del(key string)               { c.inner.Del(key) }

// NewInstrumentedCacheProvider wraps the cache with hit/miss counters. A
// disabled cache is returned bare so it does not count phantom misses.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if _, ok := inner.(*noopCache); ok {
		return inner
	}
	return &MetricsCacheProvider{inner: inner, metrics: metrics}
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool) { return nil, false }
func (n *noopCache) Set(_ string, _ []byte)      {}
func (n *noopCache) Del(_ string)                {}

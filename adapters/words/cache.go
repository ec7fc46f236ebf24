package words

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/elum-utils/gatekeeper/interfaces"
	"github.com/elum-utils/gatekeeper/models"
)

const (
	B  int = 1
	KB     = 1024 * B
	MB     = 1024 * KB
)

const (
	defaultCacheTTL      = 1 * time.Hour
	defaultCacheMaxBytes = 32 * MB
)

type cacheEntry struct {
	key       string
	value     models.SensitiveWordResult
	expiresAt time.Time
	sizeBytes int
}

// resultCache is an in-memory LRU cache with TTL.
type resultCache struct {
	mu         sync.Mutex
	maxBytes   int64
	totalBytes int64
	items      map[string]*list.Element
	lru        *list.List
}

func newResultCache(maxBytes int64) *resultCache {
	if maxBytes <= 0 {
		return nil
	}
	return &resultCache{
		maxBytes: maxBytes,
		items:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

func (c *resultCache) Get(key string, now time.Time) (models.SensitiveWordResult, bool) {
	if c == nil || key == "" {
		return models.SensitiveWordResult{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[key]
	if !ok {
		return models.SensitiveWordResult{}, false
	}
	entry := elem.Value.(*cacheEntry)
	if now.After(entry.expiresAt) {
		c.removeElement(elem)
		return models.SensitiveWordResult{}, false
	}
	c.lru.MoveToFront(elem)
	return entry.value, true
}

func (c *resultCache) Set(key string, value models.SensitiveWordResult, ttl time.Duration, now time.Time) {
	if c == nil || key == "" || ttl <= 0 {
		return
	}
	expiresAt := now.Add(ttl)
	newSize := estimateEntrySizeBytes(key, value)
	if int64(newSize) > c.maxBytes {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry)
		c.totalBytes -= int64(entry.sizeBytes)
		entry.value = value
		entry.expiresAt = expiresAt
		entry.sizeBytes = newSize
		c.totalBytes += int64(newSize)
		c.lru.MoveToFront(elem)
		c.evictToFitLocked()
		return
	}

	entry := &cacheEntry{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
		sizeBytes: newSize,
	}
	elem := c.lru.PushFront(entry)
	c.items[key] = elem
	c.totalBytes += int64(newSize)
	c.evictToFitLocked()
}

func (c *resultCache) RemoveExpired(now time.Time) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for elem := c.lru.Back(); elem != nil; {
		prev := elem.Prev()
		entry := elem.Value.(*cacheEntry)
		if now.After(entry.expiresAt) {
			c.removeElement(elem)
		}
		elem = prev
	}
}

func (c *resultCache) removeElement(elem *list.Element) {
	if elem == nil {
		return
	}
	entry := elem.Value.(*cacheEntry)
	delete(c.items, entry.key)
	c.lru.Remove(elem)
	c.totalBytes -= int64(entry.sizeBytes)
	if c.totalBytes < 0 {
		c.totalBytes = 0
	}
}

func (c *resultCache) evictToFitLocked() {
	for c.totalBytes > c.maxBytes && c.lru.Len() > 0 {
		c.removeElement(c.lru.Back())
	}
}

func estimateEntrySizeBytes(key string, value models.SensitiveWordResult) int {
	size := len(key)
	for _, word := range value.DetectedWords {
		size += len(word)
	}
	for _, word := range value.HighRiskWords {
		size += len(word)
	}
	for _, word := range value.MediumRiskWords {
		size += len(word)
	}
	// Approximate scalar/object overhead.
	size += 128
	return size
}

// CachedChecker memoizes lookups of a slower checker. Errors are never
// cached.
type CachedChecker struct {
	inner  interfaces.SensitiveWordChecker
	cache  *resultCache
	ttl    time.Duration
	logger interfaces.Logger
}

// CacheOptions configure the decorator.
type CacheOptions struct {
	TTL      time.Duration
	MaxBytes int
	Logger   interfaces.Logger
}

// NewCachedChecker wraps a checker with an LRU+TTL cache and starts its
// janitor.
func NewCachedChecker(inner interfaces.SensitiveWordChecker, opt CacheOptions) *CachedChecker {
	ttl := defaultCacheTTL
	if opt.TTL > 0 {
		ttl = opt.TTL
	}
	maxBytes := defaultCacheMaxBytes
	if opt.MaxBytes > 0 {
		maxBytes = opt.MaxBytes
	}
	c := &CachedChecker{
		inner:  inner,
		cache:  newResultCache(int64(maxBytes)),
		ttl:    ttl,
		logger: opt.Logger,
	}
	c.startJanitor()
	return c
}

func (c *CachedChecker) CheckContent(ctx context.Context, text string) (models.SensitiveWordResult, error) {
	if res, ok := c.cache.Get(text, time.Now()); ok {
		return res, nil
	}
	res, err := c.inner.CheckContent(ctx, text)
	if err != nil {
		return models.SensitiveWordResult{}, err
	}
	c.cache.Set(text, res, c.ttl, time.Now())
	return res, nil
}

func (c *CachedChecker) startJanitor() {
	if c.cache == nil {
		return
	}
	interval := time.Minute
	if c.ttl > 0 && c.ttl < interval {
		interval = c.ttl
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.logWarn("result cache janitor panic", map[string]any{"panic": fmt.Sprint(r)})
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			c.cache.RemoveExpired(time.Now())
		}
	}()
}

func (c *CachedChecker) logWarn(msg string, fields map[string]any) {
	if c.logger != nil {
		c.logger.Warn(msg, fields)
	}
}

package asset_scanner

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
)

// CacheEntry represents a cached code file with the metadata used for invalidation
type CacheEntry struct {
	Content  string
	FileSize int64
	ModTime  time.Time
	LoadedAt time.Time
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	TotalRequests int64
	CacheHits     int64
	CacheMisses   int64
	LastResetTime time.Time
	mutex         sync.RWMutex
}

// ContentCache keeps decoded code file contents in memory so a file is read
// at most once per scan, and not at all on a rescan when it is unchanged.
type ContentCache struct {
	entries map[uint64]*CacheEntry
	mutex   sync.RWMutex
	stats   *CacheStats
}

// NewContentCache creates an empty content cache
func NewContentCache() *ContentCache {
	return &ContentCache{
		entries: make(map[uint64]*CacheEntry),
		stats: &CacheStats{
			LastResetTime: time.Now(),
		},
	}
}

// generateCacheKey hashes a file path into a cache key
func (cc *ContentCache) generateCacheKey(filePath string) uint64 {
	return xxh3.HashString(filePath)
}

// isFileChanged checks if a file has been modified since it was cached
func isFileChanged(info os.FileInfo, entry *CacheEntry) bool {
	return !info.ModTime().Equal(entry.ModTime) || info.Size() != entry.FileSize
}

// Load returns the text of filePath, served from memory when the file's
// modification time and size still match the cached entry. Bytes that are
// not valid UTF-8 are dropped.
func (cc *ContentCache) Load(filePath string) (string, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		cc.Delete(filePath)
		cc.recordCacheMiss()
		return "", fmt.Errorf("failed to stat %s: %w", filePath, err)
	}

	key := cc.generateCacheKey(filePath)

	cc.mutex.RLock()
	entry, found := cc.entries[key]
	cc.mutex.RUnlock()

	if found && !isFileChanged(info, entry) {
		cc.recordCacheHit()
		return entry.Content, nil
	}
	cc.recordCacheMiss()

	raw, err := os.ReadFile(filePath)
	if err != nil {
		cc.Delete(filePath)
		return "", fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	content := strings.ToValidUTF8(string(raw), "")

	cc.mutex.Lock()
	cc.entries[key] = &CacheEntry{
		Content:  content,
		FileSize: info.Size(),
		ModTime:  info.ModTime(),
		LoadedAt: time.Now(),
	}
	cc.mutex.Unlock()

	return content, nil
}

// Delete removes a cache entry
func (cc *ContentCache) Delete(filePath string) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()
	delete(cc.entries, cc.generateCacheKey(filePath))
}

// Retain drops the entries of every file not in filePaths, so files
// deleted between scans do not stay in memory.
func (cc *ContentCache) Retain(filePaths []string) {
	keep := make(map[uint64]bool, len(filePaths))
	for _, filePath := range filePaths {
		keep[cc.generateCacheKey(filePath)] = true
	}

	cc.mutex.Lock()
	defer cc.mutex.Unlock()
	for key := range cc.entries {
		if !keep[key] {
			delete(cc.entries, key)
		}
	}
}

// recordCacheHit increments cache hit counter
func (cc *ContentCache) recordCacheHit() {
	cc.stats.mutex.Lock()
	defer cc.stats.mutex.Unlock()
	cc.stats.TotalRequests++
	cc.stats.CacheHits++
}

// recordCacheMiss increments cache miss counter
func (cc *ContentCache) recordCacheMiss() {
	cc.stats.mutex.Lock()
	defer cc.stats.mutex.Unlock()
	cc.stats.TotalRequests++
	cc.stats.CacheMisses++
}

// GetPerformanceStats returns cache performance statistics
func (cc *ContentCache) GetPerformanceStats() map[string]interface{} {
	cc.stats.mutex.RLock()
	defer cc.stats.mutex.RUnlock()

	hitRate := 0.0
	if cc.stats.TotalRequests > 0 {
		hitRate = float64(cc.stats.CacheHits) / float64(cc.stats.TotalRequests) * 100
	}

	var totalSize int64
	cc.mutex.RLock()
	for _, entry := range cc.entries {
		totalSize += entry.FileSize
	}
	cachedFiles := len(cc.entries)
	cc.mutex.RUnlock()

	return map[string]interface{}{
		"total_requests":   cc.stats.TotalRequests,
		"cache_hits":       cc.stats.CacheHits,
		"cache_misses":     cc.stats.CacheMisses,
		"hit_rate_percent": hitRate,
		"cached_files":     cachedFiles,
		"total_size":       totalSize,
		"uptime_human":     time.Since(cc.stats.LastResetTime).Round(time.Millisecond).String(),
	}
}

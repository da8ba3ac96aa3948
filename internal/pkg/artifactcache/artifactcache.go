// Package artifactcache provides an in-process LRU layer in front of the
// durable content cache for hot (language, lesson, type) artifacts.
// Invalidated when the Cleaner purges a demoted language.
package artifactcache

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lessonforge/lessonforge-backend/internal/models"
	"github.com/lessonforge/lessonforge-backend/internal/pkg/metrics"
)

// Cache holds recently served artifacts by (language, lesson, type).
// Thread-safe; a nil *Cache or size <= 0 disables it (every Get misses).
type Cache struct {
	store *lru.Cache[string, *models.CachedArtifact]
}

// New returns a cache bounded to size entries. size <= 0 disables caching.
func New(size int) *Cache {
	if size <= 0 {
		return &Cache{}
	}
	store, err := lru.New[string, *models.CachedArtifact](size)
	if err != nil {
		// lru.New only fails for size <= 0, already handled.
		return &Cache{}
	}
	return &Cache{store: store}
}

func key(lang string, lessonID int64, contentType string) string {
	return fmt.Sprintf("%s|%d|%s", lang, lessonID, contentType)
}

// Get returns a cached artifact if present. Records hit/miss.
func (c *Cache) Get(lang string, lessonID int64, contentType string) (*models.CachedArtifact, bool) {
	if c == nil || c.store == nil {
		metrics.HotCacheMissesTotal.Inc()
		return nil, false
	}
	artifact, ok := c.store.Get(key(lang, lessonID, contentType))
	if !ok {
		metrics.HotCacheMissesTotal.Inc()
		return nil, false
	}
	metrics.HotCacheHitsTotal.Inc()
	return artifact, true
}

// Set stores the artifact, evicting the least recently used entry when full.
func (c *Cache) Set(artifact *models.CachedArtifact) {
	if c == nil || c.store == nil || artifact == nil {
		return
	}
	c.store.Add(key(artifact.LanguageCode, artifact.LessonID, artifact.ContentType), artifact)
}

// InvalidateLanguage removes all cached entries for the language.
func (c *Cache) InvalidateLanguage(lang string) {
	if c == nil || c.store == nil {
		return
	}
	prefix := lang + "|"
	for _, k := range c.store.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.store.Remove(k)
		}
	}
}

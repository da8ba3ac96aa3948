package artifactcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lessonforge/lessonforge-backend/internal/models"
)

func artifact(lang string, lessonID int64, content string) *models.CachedArtifact {
	return &models.CachedArtifact{
		LanguageCode: lang,
		LessonID:     lessonID,
		ContentType:  models.ContentTypeText,
		ContentData:  content,
	}
}

func TestSetGet(t *testing.T) {
	c := New(8)
	c.Set(artifact("fr", 1, "bonjour"))

	got, ok := c.Get("fr", 1, models.ContentTypeText)
	require.True(t, ok)
	assert.Equal(t, "bonjour", got.ContentData)

	_, ok = c.Get("fr", 2, models.ContentTypeText)
	assert.False(t, ok)
}

func TestDisabledCacheAlwaysMisses(t *testing.T) {
	c := New(0)
	c.Set(artifact("fr", 1, "bonjour"))
	_, ok := c.Get("fr", 1, models.ContentTypeText)
	assert.False(t, ok)

	// A nil cache is also safe.
	var nilCache *Cache
	nilCache.Set(artifact("fr", 1, "bonjour"))
	_, ok = nilCache.Get("fr", 1, models.ContentTypeText)
	assert.False(t, ok)
}

func TestInvalidateLanguage(t *testing.T) {
	c := New(8)
	c.Set(artifact("de", 1, "eins"))
	c.Set(artifact("de", 2, "zwei"))
	c.Set(artifact("fr", 1, "un"))

	c.InvalidateLanguage("de")

	_, ok := c.Get("de", 1, models.ContentTypeText)
	assert.False(t, ok)
	_, ok = c.Get("de", 2, models.ContentTypeText)
	assert.False(t, ok)
	_, ok = c.Get("fr", 1, models.ContentTypeText)
	assert.True(t, ok, "other languages must survive invalidation")
}

func TestLRUEviction(t *testing.T) {
	c := New(2)
	c.Set(artifact("fr", 1, "a"))
	c.Set(artifact("fr", 2, "b"))
	c.Set(artifact("fr", 3, "c")) // evicts lesson 1

	_, ok := c.Get("fr", 1, models.ContentTypeText)
	assert.False(t, ok)
	_, ok = c.Get("fr", 3, models.ContentTypeText)
	assert.True(t, ok)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lessonforge/lessonforge-backend/internal/models"
)

func seedPreloadSource(source *fakeSource, n int) {
	for i := 1; i <= n; i++ {
		source.lessons = append(source.lessons, models.Lesson{ID: int64(i), Title: "Lesson", CreatedAt: time.Now()})
		source.addContent(int64(i), models.ContentTypeText, "en", "english text")
	}
}

func TestPreloadExplicitLanguage(t *testing.T) {
	tracker := newFakeTracker()
	cache := newFakeCache()
	source := newFakeSource()
	seedPreloadSource(source, 3)

	p := NewPreloader(testStores(tracker, cache, source), &fakeTranslator{}, nil)
	report, err := p.Run(context.Background(), PreloadOptions{Languages: []string{"fr"}})
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalPreloaded)
	assert.Zero(t, report.TotalSkipped)
	assert.Zero(t, report.TotalFailed)
	for i := int64(1); i <= 3; i++ {
		artifact, err := cache.Get(context.Background(), "fr", i, models.ContentTypeText)
		require.NoError(t, err)
		require.NotNil(t, artifact, "lesson %d should be cached", i)
		assert.Equal(t, "[fr<-en]english text", artifact.ContentData)
	}
}

func TestPreloadIsIdempotent(t *testing.T) {
	tracker := newFakeTracker()
	cache := newFakeCache()
	source := newFakeSource()
	seedPreloadSource(source, 3)

	p := NewPreloader(testStores(tracker, cache, source), &fakeTranslator{}, nil)
	opts := PreloadOptions{Languages: []string{"fr"}}

	first, err := p.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 3, first.TotalPreloaded)

	second, err := p.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Zero(t, second.TotalPreloaded, "second run must perform zero additional writes")
	assert.Equal(t, 3, second.TotalSkipped)
	assert.Equal(t, 3, cache.puts, "no extra cache writes on the re-run")
}

func TestPreloadDefaultsToFrequentLanguages(t *testing.T) {
	tracker := newFakeTracker()
	tracker.frequent["es"] = true
	cache := newFakeCache()
	source := newFakeSource()
	seedPreloadSource(source, 2)

	p := NewPreloader(testStores(tracker, cache, source), &fakeTranslator{}, nil)
	report, err := p.Run(context.Background(), PreloadOptions{})
	require.NoError(t, err)
	require.Len(t, report.Languages, 1)
	assert.Equal(t, "es", report.Languages[0].LanguageCode)
	assert.Equal(t, 2, report.TotalPreloaded)
}

func TestPreloadNoTargetsIsNoOp(t *testing.T) {
	tracker := newFakeTracker()
	cache := newFakeCache()
	source := newFakeSource()
	seedPreloadSource(source, 2)

	p := NewPreloader(testStores(tracker, cache, source), &fakeTranslator{}, nil)
	report, err := p.Run(context.Background(), PreloadOptions{})
	require.NoError(t, err)
	assert.Empty(t, report.Languages)
	assert.Zero(t, cache.puts)
}

func TestPreloadSkipsEnglishTranslation(t *testing.T) {
	tracker := newFakeTracker()
	cache := newFakeCache()
	source := newFakeSource()
	seedPreloadSource(source, 1)
	translator := &fakeTranslator{}

	p := NewPreloader(testStores(tracker, cache, source), translator, nil)
	_, err := p.Run(context.Background(), PreloadOptions{Languages: []string{"en"}})
	require.NoError(t, err)

	artifact, err := cache.Get(context.Background(), "en", 1, models.ContentTypeText)
	require.NoError(t, err)
	require.NotNil(t, artifact)
	assert.Equal(t, "english text", artifact.ContentData)
	assert.Zero(t, translator.calls, "same-language preload must not translate")
}

func TestPreloadContinuesAfterItemFailure(t *testing.T) {
	tracker := newFakeTracker()
	cache := newFakeCache()
	source := newFakeSource()
	// Lesson 1 has no source content; lessons 2 and 3 do.
	source.lessons = append(source.lessons, models.Lesson{ID: 1}, models.Lesson{ID: 2}, models.Lesson{ID: 3})
	source.addContent(2, models.ContentTypeText, "en", "two")
	source.addContent(3, models.ContentTypeText, "en", "three")

	p := NewPreloader(testStores(tracker, cache, source), &fakeTranslator{}, nil)
	report, err := p.Run(context.Background(), PreloadOptions{Languages: []string{"fr"}})
	require.NoError(t, err, "item failures must not abort the run")

	assert.Equal(t, 1, report.TotalFailed)
	assert.Equal(t, 2, report.TotalPreloaded)
	require.Len(t, report.Languages, 1)
	assert.Len(t, report.Languages[0].Errors, 1)
}

func TestPreloadRespectsMaxLessons(t *testing.T) {
	tracker := newFakeTracker()
	cache := newFakeCache()
	source := newFakeSource()
	seedPreloadSource(source, 10)

	p := NewPreloader(testStores(tracker, cache, source), &fakeTranslator{}, nil)
	report, err := p.Run(context.Background(), PreloadOptions{Languages: []string{"fr"}, MaxLessons: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, report.TotalPreloaded)
}

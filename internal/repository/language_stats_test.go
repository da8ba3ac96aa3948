package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementRequestCreatesLanguage(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.IncrementRequest(ctx, "fr"))
	require.NoError(t, store.IncrementRequest(ctx, "fr"))

	langs, err := store.GetPopularLanguages(ctx, 10)
	require.NoError(t, err)

	var found bool
	for _, l := range langs {
		if l.LanguageCode == "fr" {
			found = true
			assert.Equal(t, int64(2), l.TotalRequests)
			assert.False(t, l.IsFrequent, "new language should not be frequent")
			assert.False(t, l.IsPredefined)
		}
	}
	assert.True(t, found, "fr should have been created implicitly")
}

func TestConcurrentIncrementsAreNeverLost(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.IncrementRequest(ctx, "pt")
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	langs, err := store.GetPopularLanguages(ctx, 1)
	require.NoError(t, err)
	require.NotEmpty(t, langs)
	assert.Equal(t, "pt", langs[0].LanguageCode)
	assert.Equal(t, int64(n), langs[0].TotalRequests)
}

func TestIncrementLessonCount(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.IncrementLessonCount(ctx, "es"))
	require.NoError(t, store.IncrementLessonCount(ctx, "es"))
	require.NoError(t, store.IncrementLessonCount(ctx, "es"))

	stats, err := store.GetNonFrequentLanguages(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "es", stats[0].LanguageCode)
	assert.Equal(t, int64(3), stats[0].TotalLessons)
}

func TestRecalculateFrequencyPromotesAboveThreshold(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// fr: 1000 of 5000 global requests = 20% share.
	mustExec(t, store, `
		UPDATE language_stats SET total_requests = 4000 WHERE language_code = 'en';
		INSERT INTO language_stats (language_code, total_requests, total_lessons, is_frequent, is_predefined, last_used, updated_at)
		VALUES ('fr', 1000, 0, FALSE, FALSE, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`)

	promoted, demoted, evaluated, err := store.RecalculateFrequency(ctx, 0.05)
	require.NoError(t, err)
	assert.Equal(t, []string{"fr"}, promoted)
	assert.Empty(t, demoted)
	assert.Equal(t, 4, evaluated) // en, he, ar, fr

	frequent, err := store.IsFrequentLanguage(ctx, "fr")
	require.NoError(t, err)
	assert.True(t, frequent)
}

func TestRecalculateFrequencyDemotesBelowThreshold(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	mustExec(t, store, `
		UPDATE language_stats SET total_requests = 9990 WHERE language_code = 'en';
		INSERT INTO language_stats (language_code, total_requests, total_lessons, is_frequent, is_predefined, last_used, updated_at)
		VALUES ('de', 10, 0, TRUE, FALSE, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`)

	promoted, demoted, _, err := store.RecalculateFrequency(ctx, 0.05)
	require.NoError(t, err)
	assert.Empty(t, promoted)
	assert.Equal(t, []string{"de"}, demoted)
}

func TestRecalculateFrequencyKeepsPredefinedFrequent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// Predefined languages with zero traffic, plus a dominant newcomer.
	mustExec(t, store, `
		INSERT INTO language_stats (language_code, total_requests, total_lessons, is_frequent, is_predefined, last_used, updated_at)
		VALUES ('ja', 100000, 0, FALSE, FALSE, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`)

	_, _, _, err := store.RecalculateFrequency(ctx, 0.05)
	require.NoError(t, err)

	for _, code := range []string{"en", "he", "ar"} {
		frequent, err := store.IsFrequentLanguage(ctx, code)
		require.NoError(t, err)
		assert.True(t, frequent, "predefined language %s must stay frequent", code)
	}
}

func TestIsFrequentLanguageUnknownCode(t *testing.T) {
	store := setupTestStore(t)

	frequent, err := store.IsFrequentLanguage(context.Background(), "xx")
	require.NoError(t, err)
	assert.False(t, frequent)
}

func TestGetFrequentLanguages(t *testing.T) {
	store := setupTestStore(t)

	codes, err := store.GetFrequentLanguages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ar", "en", "he"}, codes)
}

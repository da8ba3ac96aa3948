package repository

import (
	"context"

	"github.com/lessonforge/lessonforge-backend/internal/models"
)

// LanguageUsageTracker defines durable per-language demand counters and the
// frequency flag the cache write-back policy is gated on.
type LanguageUsageTracker interface {
	// IncrementRequest bumps the request counter for code, creating the stat
	// row on first use. The increment is a single atomic statement so
	// concurrent calls are never lost.
	IncrementRequest(ctx context.Context, code string) error
	// IncrementLessonCount bumps the cached-lesson counter for code.
	IncrementLessonCount(ctx context.Context, code string) error
	GetFrequentLanguages(ctx context.Context) ([]string, error)
	IsFrequentLanguage(ctx context.Context, code string) (bool, error)
	// RecalculateFrequency reclassifies every language from lifetime counters:
	// non-predefined languages are frequent iff their share of global requests
	// exceeds threshold; predefined languages are always forced frequent.
	RecalculateFrequency(ctx context.Context, threshold float64) (promoted, demoted []string, evaluated int, err error)
	GetNonFrequentLanguages(ctx context.Context) ([]models.LanguageStat, error)
	GetPopularLanguages(ctx context.Context, n int) ([]models.PopularLanguage, error)
}

// ContentCacheStore is the durable store of rendered lesson artifacts keyed by
// (language, lesson, content type).
type ContentCacheStore interface {
	Exists(ctx context.Context, lang string, lessonID int64, contentType string) (bool, error)
	// Get returns the cached artifact, or (nil, nil) on a miss.
	Get(ctx context.Context, lang string, lessonID int64, contentType string) (*models.CachedArtifact, error)
	// Put overwrites any existing artifact for the key (last writer wins).
	Put(ctx context.Context, lang string, lessonID int64, contentType, content string) error
	// Delete removes all cached artifacts for the lesson in the given
	// language and returns how many rows were removed.
	Delete(ctx context.Context, lang string, lessonID int64) (int64, error)
	IsConfigured() bool
}

// SourceContentStore is the read-only view of canonical lesson content owned
// by the primary datastore.
type SourceContentStore interface {
	// FindLessonContent returns every canonical rendering of the lesson for
	// the content type, any language.
	FindLessonContent(ctx context.Context, lessonID int64, contentType string) ([]models.SourceContent, error)
	ListLessons(ctx context.Context, limit, offset int) ([]models.Lesson, error)
}

// Stores aggregates the durable store contracts the services depend on.
type Stores struct {
	Tracker LanguageUsageTracker
	Cache   ContentCacheStore
	Source  SourceContentStore
}

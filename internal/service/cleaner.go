package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lessonforge/lessonforge-backend/internal/models"
	"github.com/lessonforge/lessonforge-backend/internal/pkg/artifactcache"
	"github.com/lessonforge/lessonforge-backend/internal/pkg/metrics"
	"github.com/lessonforge/lessonforge-backend/internal/repository"
)

// DefaultCleanupMaxLessons bounds the lesson sweep per demoted language.
const DefaultCleanupMaxLessons = 500

// Cleaner purges cache artifacts for demoted languages. Best-effort and
// non-transactional: per-lesson and per-language failures are logged and the
// sweep continues, so a re-run finishes whatever a failed run left behind.
type Cleaner struct {
	tracker    repository.LanguageUsageTracker
	cache      repository.ContentCacheStore
	source     repository.SourceContentStore
	hot        *artifactcache.Cache
	maxLessons int
	log        *slog.Logger
}

func NewCleaner(stores repository.Stores, hot *artifactcache.Cache, maxLessons int, log *slog.Logger) *Cleaner {
	if maxLessons <= 0 {
		maxLessons = DefaultCleanupMaxLessons
	}
	if log == nil {
		log = slog.Default()
	}
	return &Cleaner{
		tracker:    stores.Tracker,
		cache:      stores.Cache,
		source:     stores.Source,
		hot:        hot,
		maxLessons: maxLessons,
		log:        log,
	}
}

// Run deletes cached artifacts for every language that is neither frequent
// nor predefined.
func (c *Cleaner) Run(ctx context.Context) (*models.CleanupReport, error) {
	report := &models.CleanupReport{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	defer func() {
		report.FinishedAt = time.Now().UTC()
		metrics.JobDurationSeconds.WithLabelValues("cleanup").Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	}()

	demoted, err := c.tracker.GetNonFrequentLanguages(ctx)
	if err != nil {
		return report, fmt.Errorf("list demoted languages: %w", err)
	}
	if len(demoted) == 0 {
		return report, nil
	}

	lessons, err := c.source.ListLessons(ctx, c.maxLessons, 0)
	if err != nil {
		return report, fmt.Errorf("list lessons for cleanup: %w", err)
	}

	for _, stat := range demoted {
		summary := c.cleanLanguage(ctx, stat.LanguageCode, lessons)
		report.Languages = append(report.Languages, summary)
		report.TotalDeleted += summary.Deleted
		c.log.Info("cleanup language done",
			"language", stat.LanguageCode,
			"deleted", summary.Deleted,
			"errors", len(summary.Errors),
		)
	}

	return report, nil
}

func (c *Cleaner) cleanLanguage(ctx context.Context, lang string, lessons []models.Lesson) models.LanguageCleanup {
	summary := models.LanguageCleanup{LanguageCode: lang}
	for _, lesson := range lessons {
		present := false
		for _, contentType := range models.AllContentTypes {
			exists, err := c.cache.Exists(ctx, lang, lesson.ID, contentType)
			if err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("lesson %d %s: %v", lesson.ID, contentType, err))
				c.log.Warn("cleanup existence check failed", "language", lang, "lesson", lesson.ID, "type", contentType, "error", err)
				continue
			}
			if exists {
				present = true
			}
		}
		if !present {
			continue
		}
		deleted, err := c.cache.Delete(ctx, lang, lesson.ID)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("lesson %d: %v", lesson.ID, err))
			c.log.Warn("cleanup delete failed", "language", lang, "lesson", lesson.ID, "error", err)
			continue
		}
		summary.Deleted += int(deleted)
	}
	c.hot.InvalidateLanguage(lang)
	return summary
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lessonforge/lessonforge-backend/internal/ai"
	"github.com/lessonforge/lessonforge-backend/internal/models"
	"github.com/lessonforge/lessonforge-backend/internal/pkg/metrics"
	"github.com/lessonforge/lessonforge-backend/internal/repository"
)

// DefaultPreloadMaxLessons bounds one preload run when no override is given.
const DefaultPreloadMaxLessons = 100

// preloadSourceLanguage is the canonical language preload translates from.
const preloadSourceLanguage = "en"

// PreloadOptions narrows one preload run. Zero values mean "frequent
// languages, default lesson bound".
type PreloadOptions struct {
	Languages  []string
	MaxLessons int
}

// Preloader batch-populates the cache for promoted languages. Safe to re-run:
// already-cached artifacts are skipped, and per-item failures never abort the
// run.
type Preloader struct {
	tracker    repository.LanguageUsageTracker
	cache      repository.ContentCacheStore
	source     repository.SourceContentStore
	translator ai.TranslationService
	log        *slog.Logger
}

func NewPreloader(stores repository.Stores, translator ai.TranslationService, log *slog.Logger) *Preloader {
	if log == nil {
		log = slog.Default()
	}
	return &Preloader{
		tracker:    stores.Tracker,
		cache:      stores.Cache,
		source:     stores.Source,
		translator: translator,
		log:        log,
	}
}

// Run populates the text cache for the target languages, sequentially, one
// (language, lesson) pair at a time.
func (p *Preloader) Run(ctx context.Context, opts PreloadOptions) (*models.PreloadReport, error) {
	report := &models.PreloadReport{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	defer func() {
		report.FinishedAt = time.Now().UTC()
		metrics.JobDurationSeconds.WithLabelValues("preload").Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	}()

	languages := opts.Languages
	if len(languages) == 0 {
		var err error
		languages, err = p.tracker.GetFrequentLanguages(ctx)
		if err != nil {
			return report, fmt.Errorf("resolve preload targets: %w", err)
		}
	}
	if len(languages) == 0 {
		p.log.Info("preload: no target languages, nothing to do", "report_id", report.ID)
		return report, nil
	}

	maxLessons := opts.MaxLessons
	if maxLessons <= 0 {
		maxLessons = DefaultPreloadMaxLessons
	}

	lessons, err := p.source.ListLessons(ctx, maxLessons, 0)
	if err != nil {
		return report, fmt.Errorf("list lessons for preload: %w", err)
	}

	for _, lang := range languages {
		summary := models.LanguagePreload{LanguageCode: lang}
		for _, lesson := range lessons {
			switch outcome, err := p.preloadOne(ctx, lang, lesson); {
			case err != nil:
				summary.Failed++
				summary.Errors = append(summary.Errors, fmt.Sprintf("lesson %d: %v", lesson.ID, err))
				p.log.Warn("preload item failed", "language", lang, "lesson", lesson.ID, "error", err)
			case outcome == preloadSkipped:
				summary.Skipped++
			default:
				summary.Preloaded++
			}
		}
		report.Languages = append(report.Languages, summary)
		report.TotalPreloaded += summary.Preloaded
		report.TotalSkipped += summary.Skipped
		report.TotalFailed += summary.Failed
		p.log.Info("preload language done",
			"language", lang,
			"preloaded", summary.Preloaded,
			"skipped", summary.Skipped,
			"failed", summary.Failed,
		)
	}

	return report, nil
}

type preloadOutcome int

const (
	preloadWritten preloadOutcome = iota
	preloadSkipped
)

func (p *Preloader) preloadOne(ctx context.Context, lang string, lesson models.Lesson) (preloadOutcome, error) {
	exists, err := p.cache.Exists(ctx, lang, lesson.ID, models.ContentTypeText)
	if err != nil {
		return 0, fmt.Errorf("existence check: %w", err)
	}
	if exists {
		return preloadSkipped, nil
	}

	records, err := p.source.FindLessonContent(ctx, lesson.ID, models.ContentTypeText)
	if err != nil {
		return 0, fmt.Errorf("fetch source: %w", err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("no source content")
	}

	content := records[0].ContentData
	sourceLang := records[0].Language
	if sourceLang == "" {
		sourceLang = preloadSourceLanguage
	}
	if sourceLang != lang {
		content, err = p.translator.TranslateStructured(ctx, content, sourceLang, lang)
		if err != nil {
			return 0, fmt.Errorf("translate: %w", err)
		}
	}

	if err := p.cache.Put(ctx, lang, lesson.ID, models.ContentTypeText, content); err != nil {
		return 0, fmt.Errorf("cache write: %w", err)
	}
	return preloadWritten, nil
}

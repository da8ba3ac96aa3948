package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lessonforge/lessonforge-backend/internal/ai"
	"github.com/lessonforge/lessonforge-backend/internal/models"
	"github.com/lessonforge/lessonforge-backend/internal/pkg/artifactcache"
	"github.com/lessonforge/lessonforge-backend/internal/pkg/metrics"
	"github.com/lessonforge/lessonforge-backend/internal/repository"
)

// DefaultFallbackLanguages is the ordered chain consulted before falling back
// to generation.
var DefaultFallbackLanguages = []string{"en", "he", "ar"}

// counterTimeout bounds the fire-and-forget usage increments so a slow
// database cannot pile up goroutines.
const counterTimeout = 5 * time.Second

// Resolver is the synchronous per-request read path:
// cache -> fallback languages -> source + translate -> generate.
type Resolver struct {
	tracker    repository.LanguageUsageTracker
	cache      repository.ContentCacheStore
	source     repository.SourceContentStore
	hot        *artifactcache.Cache
	translator ai.TranslationService
	generator  ai.GenerationService
	fallbacks  []string
	log        *slog.Logger
}

// NewResolver wires the read path. fallbacks defaults to
// DefaultFallbackLanguages when empty; hot may be nil to disable the
// in-process layer.
func NewResolver(
	stores repository.Stores,
	hot *artifactcache.Cache,
	translator ai.TranslationService,
	generator ai.GenerationService,
	fallbacks []string,
	log *slog.Logger,
) *Resolver {
	if len(fallbacks) == 0 {
		fallbacks = DefaultFallbackLanguages
	}
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		tracker:    stores.Tracker,
		cache:      stores.Cache,
		source:     stores.Source,
		hot:        hot,
		translator: translator,
		generator:  generator,
		fallbacks:  fallbacks,
		log:        log,
	}
}

// Resolve returns lesson content in the preferred language, consulting the
// cache, then cached fallback languages, then the canonical source plus
// translation, and finally from-scratch generation. Cache and counter errors
// degrade silently; translation or generation errors with no further fallback
// propagate to the caller.
func (r *Resolver) Resolve(ctx context.Context, lessonID int64, preferredLang, contentType string) (*models.ResolveResult, error) {
	start := time.Now()
	result, err := r.resolve(ctx, lessonID, preferredLang, contentType)
	if err == nil {
		metrics.ResolvesTotal.WithLabelValues(result.Source).Inc()
		metrics.ResolveDurationSeconds.Observe(time.Since(start).Seconds())
	}
	return result, err
}

func (r *Resolver) resolve(ctx context.Context, lessonID int64, preferredLang, contentType string) (*models.ResolveResult, error) {
	// Usage tracking never blocks or fails the request.
	r.incrementRequestAsync(preferredLang)

	// Preferred-language cache.
	if artifact, ok := r.hot.Get(preferredLang, lessonID, contentType); ok {
		return cacheHit(artifact), nil
	}
	artifact, err := r.cache.Get(ctx, preferredLang, lessonID, contentType)
	if err != nil {
		r.log.Error("cache lookup failed", "language", preferredLang, "lesson", lessonID, "error", err)
	} else if artifact != nil {
		r.hot.Set(artifact)
		return cacheHit(artifact), nil
	}

	// Frequency decides write-back below; checked once, before the walk.
	frequent, err := r.tracker.IsFrequentLanguage(ctx, preferredLang)
	if err != nil {
		r.log.Error("frequency check failed", "language", preferredLang, "error", err)
		frequent = false
	}

	sourceContent, sourceLang, fromCache, err := r.findSource(ctx, lessonID, preferredLang, contentType)
	if err != nil {
		return nil, err
	}

	// Nothing cached, nothing canonical: synthesize from scratch.
	if sourceContent == "" {
		content, err := r.generator.Generate(ctx, ai.GenerationRequest{
			LessonID:    lessonID,
			Language:    preferredLang,
			ContentType: contentType,
		})
		if err != nil {
			return nil, fmt.Errorf("generate lesson %d in %s: %w", lessonID, preferredLang, err)
		}
		return &models.ResolveResult{
			Content:  content,
			Source:   models.SourceGeneration,
			Language: preferredLang,
			Cached:   false,
			Outcome:  models.OutcomeGenerated,
		}, nil
	}

	// Source already in the preferred language: return unchanged.
	if sourceLang == preferredLang {
		source := models.SourceCanonical
		if fromCache {
			source = models.SourceCache
		}
		return &models.ResolveResult{
			Content:        sourceContent,
			Source:         source,
			Language:       preferredLang,
			SourceLanguage: sourceLang,
			Cached:         fromCache,
			Outcome:        models.OutcomeUnchanged,
		}, nil
	}

	translated, err := r.translator.TranslateStructured(ctx, sourceContent, sourceLang, preferredLang)
	if err != nil {
		return nil, fmt.Errorf("translate lesson %d from %s to %s: %w", lessonID, sourceLang, preferredLang, err)
	}

	if frequent {
		r.writeBack(ctx, preferredLang, lessonID, contentType, translated)
	}

	return &models.ResolveResult{
		Content:        translated,
		Source:         models.SourceTranslation,
		Language:       preferredLang,
		SourceLanguage: sourceLang,
		Cached:         false,
		Outcome:        models.OutcomeTranslatedFromFallback,
	}, nil
}

// findSource walks the fallback cache chain, then the canonical store.
// Returns empty content when the lesson exists nowhere.
func (r *Resolver) findSource(ctx context.Context, lessonID int64, preferredLang, contentType string) (content, lang string, fromCache bool, err error) {
	for _, fb := range r.fallbacks {
		if fb == preferredLang {
			continue
		}
		artifact, err := r.cache.Get(ctx, fb, lessonID, contentType)
		if err != nil {
			r.log.Error("fallback cache lookup failed", "language", fb, "lesson", lessonID, "error", err)
			continue
		}
		if artifact != nil {
			return artifact.ContentData, fb, true, nil
		}
	}

	records, err := r.source.FindLessonContent(ctx, lessonID, contentType)
	if err != nil {
		return "", "", false, fmt.Errorf("lookup source for lesson %d: %w", lessonID, err)
	}
	if len(records) == 0 {
		return "", "", false, nil
	}
	rec := records[0]
	lang = rec.Language
	if lang == "" {
		lang = "en"
	}
	return rec.ContentData, lang, false, nil
}

// writeBack stores a freshly translated artifact and bumps the lesson counter.
// Both are best-effort: failures are logged and the request proceeds.
func (r *Resolver) writeBack(ctx context.Context, lang string, lessonID int64, contentType, content string) {
	if err := r.cache.Put(ctx, lang, lessonID, contentType, content); err != nil {
		r.log.Error("cache write-back failed", "language", lang, "lesson", lessonID, "error", err)
		return
	}
	metrics.CacheWritebacksTotal.Inc()
	if err := r.tracker.IncrementLessonCount(ctx, lang); err != nil {
		r.log.Error("lesson count increment failed", "language", lang, "error", err)
	}
}

func (r *Resolver) incrementRequestAsync(lang string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), counterTimeout)
		defer cancel()
		if err := r.tracker.IncrementRequest(ctx, lang); err != nil {
			r.log.Warn("request counter increment failed", "language", lang, "error", err)
		}
	}()
}

func cacheHit(artifact *models.CachedArtifact) *models.ResolveResult {
	return &models.ResolveResult{
		Content:  artifact.ContentData,
		Source:   models.SourceCache,
		Language: artifact.LanguageCode,
		Cached:   true,
		Outcome:  models.OutcomeCacheHit,
	}
}

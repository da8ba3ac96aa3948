package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lessonforge/lessonforge-backend/internal/ai"
	"github.com/lessonforge/lessonforge-backend/internal/models"
	"github.com/lessonforge/lessonforge-backend/internal/repository"
)

// fakeTracker implements repository.LanguageUsageTracker in memory.
type fakeTracker struct {
	mu             sync.Mutex
	frequent       map[string]bool
	requests       map[string]int
	lessons        map[string]int
	nonFrequent    []models.LanguageStat
	recalcPromoted []string
	recalcDemoted  []string
	recalcErr      error
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		frequent: map[string]bool{},
		requests: map[string]int{},
		lessons:  map[string]int{},
	}
}

func (f *fakeTracker) IncrementRequest(ctx context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[code]++
	return nil
}

func (f *fakeTracker) IncrementLessonCount(ctx context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lessons[code]++
	return nil
}

func (f *fakeTracker) GetFrequentLanguages(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var codes []string
	for code, freq := range f.frequent {
		if freq {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes, nil
}

func (f *fakeTracker) IsFrequentLanguage(ctx context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frequent[code], nil
}

func (f *fakeTracker) RecalculateFrequency(ctx context.Context, threshold float64) ([]string, []string, int, error) {
	if f.recalcErr != nil {
		return nil, nil, 0, f.recalcErr
	}
	return f.recalcPromoted, f.recalcDemoted, len(f.frequent), nil
}

func (f *fakeTracker) GetNonFrequentLanguages(ctx context.Context) ([]models.LanguageStat, error) {
	return f.nonFrequent, nil
}

func (f *fakeTracker) GetPopularLanguages(ctx context.Context, n int) ([]models.PopularLanguage, error) {
	return nil, nil
}

// fakeCache implements repository.ContentCacheStore in memory.
type fakeCache struct {
	mu       sync.Mutex
	store    map[string]string
	puts     int
	putErr   error
	getErr   error
	existErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string]string{}}
}

func cacheKey(lang string, lessonID int64, contentType string) string {
	return fmt.Sprintf("%s|%d|%s", lang, lessonID, contentType)
}

func (f *fakeCache) Exists(ctx context.Context, lang string, lessonID int64, contentType string) (bool, error) {
	if f.existErr != nil {
		return false, f.existErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.store[cacheKey(lang, lessonID, contentType)]
	return ok, nil
}

func (f *fakeCache) Get(ctx context.Context, lang string, lessonID int64, contentType string) (*models.CachedArtifact, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.store[cacheKey(lang, lessonID, contentType)]
	if !ok {
		return nil, nil
	}
	return &models.CachedArtifact{
		LanguageCode: lang,
		LessonID:     lessonID,
		ContentType:  contentType,
		ContentData:  content,
	}, nil
}

func (f *fakeCache) Put(ctx context.Context, lang string, lessonID int64, contentType, content string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	f.store[cacheKey(lang, lessonID, contentType)] = content
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, lang string, lessonID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := fmt.Sprintf("%s|%d|", lang, lessonID)
	var deleted int64
	for k := range f.store {
		if strings.HasPrefix(k, prefix) {
			delete(f.store, k)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeCache) IsConfigured() bool { return true }

// fakeSource implements repository.SourceContentStore in memory.
type fakeSource struct {
	lessons  []models.Lesson
	contents map[string][]models.SourceContent
	listErr  error
}

func newFakeSource() *fakeSource {
	return &fakeSource{contents: map[string][]models.SourceContent{}}
}

func (f *fakeSource) addContent(lessonID int64, contentType, language, data string) {
	key := fmt.Sprintf("%d|%s", lessonID, contentType)
	f.contents[key] = append(f.contents[key], models.SourceContent{
		LessonID:    lessonID,
		ContentType: contentType,
		Language:    language,
		ContentData: data,
	})
}

func (f *fakeSource) FindLessonContent(ctx context.Context, lessonID int64, contentType string) ([]models.SourceContent, error) {
	return f.contents[fmt.Sprintf("%d|%s", lessonID, contentType)], nil
}

func (f *fakeSource) ListLessons(ctx context.Context, limit, offset int) ([]models.Lesson, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if offset >= len(f.lessons) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.lessons) {
		end = len(f.lessons)
	}
	return f.lessons[offset:end], nil
}

// fakeTranslator records calls and tags translations deterministically.
type fakeTranslator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeTranslator) TranslateStructured(ctx context.Context, content, sourceLang, targetLang string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("[%s<-%s]%s", targetLang, sourceLang, content), nil
}

// fakeGenerator records calls and synthesizes deterministic content.
type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeGenerator) Generate(ctx context.Context, req ai.GenerationRequest) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("generated:%s:%s:%d", req.Language, req.ContentType, req.LessonID), nil
}

var errBoom = errors.New("boom")

func testStores(tracker *fakeTracker, cache *fakeCache, source *fakeSource) repository.Stores {
	return repository.Stores{Tracker: tracker, Cache: cache, Source: source}
}

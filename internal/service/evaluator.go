package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lessonforge/lessonforge-backend/internal/models"
	"github.com/lessonforge/lessonforge-backend/internal/pkg/metrics"
	"github.com/lessonforge/lessonforge-backend/internal/repository"
)

// DefaultFrequentShareThreshold promotes a language once it exceeds this
// share of global requests.
const DefaultFrequentShareThreshold = 0.05

// Evaluator recomputes language frequency tiers from accumulated counters.
// It touches flags only, never cache contents; classification happens on the
// scheduled cycle rather than per request so short-term spikes cannot thrash
// the cache.
type Evaluator struct {
	tracker   repository.LanguageUsageTracker
	threshold float64
	log       *slog.Logger
}

func NewEvaluator(tracker repository.LanguageUsageTracker, threshold float64, log *slog.Logger) *Evaluator {
	if threshold <= 0 {
		threshold = DefaultFrequentShareThreshold
	}
	if log == nil {
		log = slog.Default()
	}
	return &Evaluator{tracker: tracker, threshold: threshold, log: log}
}

// Run performs one reclassification pass. Deterministic given current counter
// values; counters are lifetime-cumulative with no decay.
func (e *Evaluator) Run(ctx context.Context) (*models.EvaluationReport, error) {
	report := &models.EvaluationReport{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	defer func() {
		report.FinishedAt = time.Now().UTC()
		metrics.JobDurationSeconds.WithLabelValues("evaluate").Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	}()

	promoted, demoted, evaluated, err := e.tracker.RecalculateFrequency(ctx, e.threshold)
	if err != nil {
		return report, fmt.Errorf("recalculate frequency: %w", err)
	}
	report.Promoted = promoted
	report.Demoted = demoted
	report.Evaluated = evaluated

	if frequent, err := e.tracker.GetFrequentLanguages(ctx); err == nil {
		metrics.FrequentLanguages.Set(float64(len(frequent)))
	}

	e.log.Info("evaluation done",
		"report_id", report.ID,
		"evaluated", evaluated,
		"promoted", promoted,
		"demoted", demoted,
	)
	return report, nil
}

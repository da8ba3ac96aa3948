package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lessonforge/lessonforge-backend/internal/models"
)

// Orchestrator runs the Evaluator then the Cleaner as one reported cycle.
// Unlike the jobs it wraps, it does not swallow errors: a failure surfaces to
// the scheduler's guard, the one place that keeps the process alive.
type Orchestrator struct {
	evaluator *Evaluator
	cleaner   *Cleaner
	log       *slog.Logger
}

func NewOrchestrator(evaluator *Evaluator, cleaner *Cleaner, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{evaluator: evaluator, cleaner: cleaner, log: log}
}

// Run executes one evaluation cycle and merges both summaries.
func (o *Orchestrator) Run(ctx context.Context) (*models.EvaluationCycleReport, error) {
	report := &models.EvaluationCycleReport{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	defer func() { report.FinishedAt = time.Now().UTC() }()

	evaluation, err := o.evaluator.Run(ctx)
	if err != nil {
		return report, fmt.Errorf("evaluation cycle %s: %w", report.ID, err)
	}
	report.Evaluation = evaluation

	cleanup, err := o.cleaner.Run(ctx)
	if err != nil {
		return report, fmt.Errorf("evaluation cycle %s cleanup: %w", report.ID, err)
	}
	report.Cleanup = cleanup

	o.log.Info("evaluation cycle done",
		"report_id", report.ID,
		"promoted", len(evaluation.Promoted),
		"demoted", len(evaluation.Demoted),
		"deleted", cleanup.TotalDeleted,
	)
	return report, nil
}

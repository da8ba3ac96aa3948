package models

import "time"

// LanguagePreload summarizes one language within a preload run.
type LanguagePreload struct {
	LanguageCode string   `json:"language_code"`
	Preloaded    int      `json:"preloaded"`
	Skipped      int      `json:"skipped"`
	Failed       int      `json:"failed"`
	Errors       []string `json:"errors,omitempty"`
}

// PreloadReport is the ephemeral summary of one Preloader run. Returned to the
// caller and logged; never persisted.
type PreloadReport struct {
	ID             string            `json:"id"`
	StartedAt      time.Time         `json:"started_at"`
	FinishedAt     time.Time         `json:"finished_at"`
	Languages      []LanguagePreload `json:"languages"`
	TotalPreloaded int               `json:"total_preloaded"`
	TotalSkipped   int               `json:"total_skipped"`
	TotalFailed    int               `json:"total_failed"`
}

// EvaluationReport summarizes one frequency reclassification pass.
type EvaluationReport struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Promoted   []string  `json:"promoted"`
	Demoted    []string  `json:"demoted"`
	Evaluated  int       `json:"evaluated"`
}

// LanguageCleanup summarizes one language within a cleanup run.
type LanguageCleanup struct {
	LanguageCode string   `json:"language_code"`
	Deleted      int      `json:"deleted"`
	Errors       []string `json:"errors,omitempty"`
}

// CleanupReport is the ephemeral summary of one Cleaner run.
type CleanupReport struct {
	ID           string            `json:"id"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   time.Time         `json:"finished_at"`
	Languages    []LanguageCleanup `json:"languages"`
	TotalDeleted int               `json:"total_deleted"`
}

// EvaluationCycleReport merges the Evaluator and Cleaner summaries for one
// orchestrated cycle.
type EvaluationCycleReport struct {
	ID         string            `json:"id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Evaluation *EvaluationReport `json:"evaluation"`
	Cleanup    *CleanupReport    `json:"cleanup"`
}

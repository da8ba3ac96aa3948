// Package ai defines the external content collaborators: the translation
// engine and the from-scratch generation pipeline. Both are remote services;
// this package owns only their client contracts and HTTP plumbing.
package ai

import "context"

// TranslationService translates structured lesson content between languages.
type TranslationService interface {
	TranslateStructured(ctx context.Context, content, sourceLang, targetLang string) (string, error)
}

// GenerationRequest describes content to synthesize from scratch.
type GenerationRequest struct {
	LessonID    int64  `json:"lesson_id"`
	Title       string `json:"title,omitempty"`
	Language    string `json:"language"`
	ContentType string `json:"content_type"`
}

// GenerationService synthesizes lesson content when no source exists anywhere.
type GenerationService interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

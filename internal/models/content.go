package models

import "time"

// Content types a lesson can be rendered as. These are the artifact kinds the
// cache stores and the Cleaner sweeps.
const (
	ContentTypeText         = "text"
	ContentTypeCode         = "code"
	ContentTypePresentation = "presentation"
	ContentTypeAudio        = "audio"
	ContentTypeVideo        = "video"
)

// AllContentTypes is the fixed sweep list used by the Cleaner.
var AllContentTypes = []string{
	ContentTypeText,
	ContentTypeCode,
	ContentTypePresentation,
	ContentTypeAudio,
	ContentTypeVideo,
}

// CachedArtifact is one rendered lesson blob for a (language, lesson, type)
// key. Overwrites are last-writer-wins.
type CachedArtifact struct {
	LanguageCode string    `json:"language_code" db:"language_code"`
	LessonID     int64     `json:"lesson_id" db:"lesson_id"`
	ContentType  string    `json:"content_type" db:"content_type"`
	ContentData  string    `json:"content_data" db:"content_data"`
	StoredAt     time.Time `json:"stored_at" db:"stored_at"`
}

// SourceContent is a canonical lesson rendering owned by the primary
// datastore. Read-only to this service.
type SourceContent struct {
	LessonID    int64  `json:"lesson_id" db:"lesson_id"`
	ContentType string `json:"content_type" db:"content_type"`
	Language    string `json:"language" db:"language"`
	ContentData string `json:"content_data" db:"content_data"`
}

// Lesson is the canonical lesson record used to enumerate preload and cleanup
// targets.
type Lesson struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Subject   string    `json:"subject" db:"subject"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

package models

import "time"

// LanguageStat tracks accumulated demand for one language. A row is created
// implicitly on the first request increment and is never deleted; the Evaluator
// periodically recomputes IsFrequent from the lifetime counters.
type LanguageStat struct {
	LanguageCode  string    `json:"language_code" db:"language_code"`
	TotalRequests int64     `json:"total_requests" db:"total_requests"`
	TotalLessons  int64     `json:"total_lessons" db:"total_lessons"`
	IsFrequent    bool      `json:"is_frequent" db:"is_frequent"`
	IsPredefined  bool      `json:"is_predefined" db:"is_predefined"`
	LastUsed      time.Time `json:"last_used" db:"last_used"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// PopularLanguage is the trimmed view returned by popularity queries.
type PopularLanguage struct {
	LanguageCode  string `json:"language_code" db:"language_code"`
	TotalRequests int64  `json:"total_requests" db:"total_requests"`
	IsFrequent    bool   `json:"is_frequent" db:"is_frequent"`
	IsPredefined  bool   `json:"is_predefined" db:"is_predefined"`
}

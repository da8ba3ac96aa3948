package models

// ResolveOutcome tags how a resolve request was satisfied. Modelling the
// branches as an enum keeps every path visible to callers and tests instead of
// burying them in nested conditionals.
type ResolveOutcome int

const (
	// OutcomeCacheHit: the preferred language artifact was already cached.
	OutcomeCacheHit ResolveOutcome = iota
	// OutcomeTranslatedFromFallback: content was found in another language
	// (fallback cache or canonical source) and translated on demand.
	OutcomeTranslatedFromFallback
	// OutcomeGenerated: no content existed anywhere; it was synthesized from
	// scratch in the preferred language.
	OutcomeGenerated
	// OutcomeUnchanged: content was found already in the preferred language
	// outside the preferred cache key and returned as-is.
	OutcomeUnchanged
)

// Wire values for ResolveResult.Source.
const (
	SourceCache       = "cache"
	SourceTranslation = "translation"
	SourceGeneration  = "generation"
	SourceCanonical   = "source"
)

// ResolveResult is the answer to one lesson content request. Source and Cached
// let a caller distinguish a pre-materialized answer from one synthesized on
// the fly.
type ResolveResult struct {
	Content        string         `json:"content"`
	Source         string         `json:"source"`
	Language       string         `json:"language"`
	SourceLanguage string         `json:"source_language,omitempty"`
	Cached         bool           `json:"cached"`
	Outcome        ResolveOutcome `json:"-"`
}

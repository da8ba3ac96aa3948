package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lessonforge/lessonforge-backend/internal/models"
)

// IncrementRequest bumps the request counter for code in one atomic UPSERT.
// Concurrent increments are serialized by the database, never lost. A new
// language starts non-predefined and non-frequent; predefined rows are seeded
// by the schema migration.
func (s *Store) IncrementRequest(ctx context.Context, code string) error {
	return instrument("increment_request", func() error {
		q := s.db.Rebind(`
			INSERT INTO language_stats (language_code, total_requests, total_lessons, is_frequent, is_predefined, last_used, updated_at)
			VALUES (?, 1, 0, FALSE, FALSE, ?, ?)
			ON CONFLICT (language_code) DO UPDATE SET
				total_requests = language_stats.total_requests + 1,
				last_used = excluded.last_used,
				updated_at = excluded.updated_at`)
		now := time.Now().UTC()
		if _, err := s.db.ExecContext(ctx, q, code, now, now); err != nil {
			return fmt.Errorf("increment request for %s: %w", code, err)
		}
		return nil
	})
}

// IncrementLessonCount bumps the cached-lesson counter for code.
func (s *Store) IncrementLessonCount(ctx context.Context, code string) error {
	return instrument("increment_lesson_count", func() error {
		q := s.db.Rebind(`
			INSERT INTO language_stats (language_code, total_requests, total_lessons, is_frequent, is_predefined, last_used, updated_at)
			VALUES (?, 0, 1, FALSE, FALSE, ?, ?)
			ON CONFLICT (language_code) DO UPDATE SET
				total_lessons = language_stats.total_lessons + 1,
				updated_at = excluded.updated_at`)
		now := time.Now().UTC()
		if _, err := s.db.ExecContext(ctx, q, code, now, now); err != nil {
			return fmt.Errorf("increment lesson count for %s: %w", code, err)
		}
		return nil
	})
}

// GetFrequentLanguages returns every language code currently eligible for
// cache write-back.
func (s *Store) GetFrequentLanguages(ctx context.Context) ([]string, error) {
	var codes []string
	err := instrument("get_frequent_languages", func() error {
		const q = `SELECT language_code FROM language_stats WHERE is_frequent ORDER BY language_code`
		if err := s.db.SelectContext(ctx, &codes, q); err != nil {
			return fmt.Errorf("list frequent languages: %w", err)
		}
		return nil
	})
	return codes, err
}

// IsFrequentLanguage reports whether code is currently cache-eligible.
// Unknown languages are not frequent.
func (s *Store) IsFrequentLanguage(ctx context.Context, code string) (bool, error) {
	var frequent bool
	err := instrument("is_frequent_language", func() error {
		q := s.db.Rebind(`SELECT is_frequent FROM language_stats WHERE language_code = ?`)
		if err := s.db.GetContext(ctx, &frequent, q, code); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				frequent = false
				return nil
			}
			return fmt.Errorf("is frequent %s: %w", code, err)
		}
		return nil
	})
	return frequent, err
}

// RecalculateFrequency reclassifies every language in one transaction. Each
// non-predefined language's share of global requests is recomputed and
// is_frequent set accordingly; predefined languages are always forced
// frequent. Cache contents are never touched here.
func (s *Store) RecalculateFrequency(ctx context.Context, threshold float64) (promoted, demoted []string, evaluated int, err error) {
	err = instrument("recalculate_frequency", func() error {
		tx, txErr := s.db.BeginTxx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("begin recalculation: %w", txErr)
		}
		defer tx.Rollback()

		var stats []models.LanguageStat
		if selErr := tx.SelectContext(ctx, &stats, `SELECT * FROM language_stats`); selErr != nil {
			return fmt.Errorf("load language stats: %w", selErr)
		}

		var globalTotal int64
		for _, st := range stats {
			globalTotal += st.TotalRequests
		}

		update := tx.Rebind(`UPDATE language_stats SET is_frequent = ?, updated_at = ? WHERE language_code = ?`)
		now := time.Now().UTC()
		for _, st := range stats {
			frequent := st.IsPredefined
			if !frequent && globalTotal > 0 {
				frequent = float64(st.TotalRequests)/float64(globalTotal) > threshold
			}
			evaluated++
			if frequent == st.IsFrequent {
				continue
			}
			if _, upErr := tx.ExecContext(ctx, update, frequent, now, st.LanguageCode); upErr != nil {
				return fmt.Errorf("reclassify %s: %w", st.LanguageCode, upErr)
			}
			if frequent {
				promoted = append(promoted, st.LanguageCode)
			} else {
				demoted = append(demoted, st.LanguageCode)
			}
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, nil, 0, err
	}
	return promoted, demoted, evaluated, nil
}

// GetNonFrequentLanguages returns languages eligible for cache cleanup:
// currently infrequent and not in the predefined baseline.
func (s *Store) GetNonFrequentLanguages(ctx context.Context) ([]models.LanguageStat, error) {
	var stats []models.LanguageStat
	err := instrument("get_non_frequent_languages", func() error {
		const q = `
			SELECT * FROM language_stats
			WHERE NOT is_frequent AND NOT is_predefined
			ORDER BY language_code`
		if err := s.db.SelectContext(ctx, &stats, q); err != nil {
			return fmt.Errorf("list non-frequent languages: %w", err)
		}
		return nil
	})
	return stats, err
}

// GetPopularLanguages returns the top n languages by lifetime request count.
func (s *Store) GetPopularLanguages(ctx context.Context, n int) ([]models.PopularLanguage, error) {
	var langs []models.PopularLanguage
	err := instrument("get_popular_languages", func() error {
		q := s.db.Rebind(`
			SELECT language_code, total_requests, is_frequent, is_predefined
			FROM language_stats
			ORDER BY total_requests DESC, language_code
			LIMIT ?`)
		if err := s.db.SelectContext(ctx, &langs, q, n); err != nil {
			return fmt.Errorf("list popular languages: %w", err)
		}
		return nil
	})
	return langs, err
}

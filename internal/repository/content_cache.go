package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lessonforge/lessonforge-backend/internal/models"
)

// Exists reports whether an artifact is cached for the key.
func (s *Store) Exists(ctx context.Context, lang string, lessonID int64, contentType string) (bool, error) {
	var exists bool
	err := instrument("cache_exists", func() error {
		q := s.db.Rebind(`
			SELECT COUNT(*) > 0 FROM content_cache
			WHERE language_code = ? AND lesson_id = ? AND content_type = ?`)
		if err := s.db.GetContext(ctx, &exists, q, lang, lessonID, contentType); err != nil {
			return fmt.Errorf("cache exists (%s, %d, %s): %w", lang, lessonID, contentType, err)
		}
		return nil
	})
	return exists, err
}

// Get returns the cached artifact for the key, or (nil, nil) on a miss.
func (s *Store) Get(ctx context.Context, lang string, lessonID int64, contentType string) (*models.CachedArtifact, error) {
	var artifact models.CachedArtifact
	err := instrument("cache_get", func() error {
		q := s.db.Rebind(`
			SELECT * FROM content_cache
			WHERE language_code = ? AND lesson_id = ? AND content_type = ?`)
		if err := s.db.GetContext(ctx, &artifact, q, lang, lessonID, contentType); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errCacheMiss
			}
			return fmt.Errorf("cache get (%s, %d, %s): %w", lang, lessonID, contentType, err)
		}
		return nil
	})
	if errors.Is(err, errCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

var errCacheMiss = errors.New("cache miss")

// Put stores the artifact, overwriting any existing row (last writer wins).
func (s *Store) Put(ctx context.Context, lang string, lessonID int64, contentType, content string) error {
	return instrument("cache_put", func() error {
		q := s.db.Rebind(`
			INSERT INTO content_cache (language_code, lesson_id, content_type, content_data, stored_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (language_code, lesson_id, content_type) DO UPDATE SET
				content_data = excluded.content_data,
				stored_at = excluded.stored_at`)
		if _, err := s.db.ExecContext(ctx, q, lang, lessonID, contentType, content, time.Now().UTC()); err != nil {
			return fmt.Errorf("cache put (%s, %d, %s): %w", lang, lessonID, contentType, err)
		}
		return nil
	})
}

// Delete removes every cached artifact for the lesson in the given language
// and returns the number of rows removed.
func (s *Store) Delete(ctx context.Context, lang string, lessonID int64) (int64, error) {
	var deleted int64
	err := instrument("cache_delete", func() error {
		q := s.db.Rebind(`DELETE FROM content_cache WHERE language_code = ? AND lesson_id = ?`)
		res, err := s.db.ExecContext(ctx, q, lang, lessonID)
		if err != nil {
			return fmt.Errorf("cache delete (%s, %d): %w", lang, lessonID, err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}

// IsConfigured reports whether the cache store is usable.
func (s *Store) IsConfigured() bool {
	return s.db != nil
}

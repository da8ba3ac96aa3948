package repository

import (
	"context"
	"fmt"

	"github.com/lessonforge/lessonforge-backend/internal/models"
)

// FindLessonContent returns every canonical rendering of the lesson for the
// content type, any language. English rows sort first so callers that take
// the first record prefer the primary authoring language.
func (s *Store) FindLessonContent(ctx context.Context, lessonID int64, contentType string) ([]models.SourceContent, error) {
	var rows []models.SourceContent
	err := instrument("find_lesson_content", func() error {
		q := s.db.Rebind(`
			SELECT lesson_id, content_type, language, content_data
			FROM lesson_contents
			WHERE lesson_id = ? AND content_type = ?
			ORDER BY CASE WHEN language = 'en' THEN 0 ELSE 1 END, language`)
		if err := s.db.SelectContext(ctx, &rows, q, lessonID, contentType); err != nil {
			return fmt.Errorf("find lesson content (%d, %s): %w", lessonID, contentType, err)
		}
		return nil
	})
	return rows, err
}

// ListLessons pages through canonical lessons in creation order.
func (s *Store) ListLessons(ctx context.Context, limit, offset int) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := instrument("list_lessons", func() error {
		q := s.db.Rebind(`SELECT * FROM lessons ORDER BY id LIMIT ? OFFSET ?`)
		if err := s.db.SelectContext(ctx, &lessons, q, limit, offset); err != nil {
			return fmt.Errorf("list lessons: %w", err)
		}
		return nil
	})
	return lessons, err
}

package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"

	"eduplatform/internal/app/course"
	"eduplatform/internal/app/db"
)

const courseSelect = `
SELECT c.id, c.title, c.category, c.description, c.video_url, c.students, c.rating, c.created_at,
       COALESCE((SELECT array_agg(s.content ORDER BY s.position)
                 FROM syllabus_items s WHERE s.course_id = c.id), '{}'::text[]) AS syllabus,
       COALESCE((SELECT array_agg(i.instructor_name ORDER BY i.id)
                 FROM course_instructors i WHERE i.course_id = c.id), '{}'::text[]) AS instructors
FROM courses c`

// ListCourses returns courses newest first, optionally restricted to one category.
func (s *Store) ListCourses(ctx context.Context, category course.Category) ([]course.Course, error) {
	rows, err := s.db.Query(ctx, courseSelect+`
WHERE $1 = '' OR c.category = $1
ORDER BY c.created_at DESC, c.id DESC`, string(category))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[course.Course])
}

func (s *Store) GetCourse(ctx context.Context, id int64) (course.Course, error) {
	rows, err := s.db.Query(ctx, courseSelect+` WHERE c.id = $1`, id)
	if err != nil {
		return course.Course{}, err
	}
	c, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[course.Course])
	return c, db.NotFound(err)
}

// CreateCourse inserts the course with its syllabus and instructors in one transaction.
func (s *Store) CreateCourse(ctx context.Context, arg course.CreateParams) (course.Course, error) {
	var created course.Course

	err := s.inTx(ctx, func(q *Store) error {
		var id int64
		if err := q.db.QueryRow(ctx, `
INSERT INTO courses (title, category, description, video_url)
VALUES ($1, $2, $3, $4)
RETURNING id`, arg.Title, string(arg.Category), arg.Description, arg.VideoURL).Scan(&id); err != nil {
			return err
		}

		if err := q.replaceCourseDetails(ctx, id, arg.Syllabus, arg.Instructors); err != nil {
			return err
		}

		var err error
		created, err = q.GetCourse(ctx, id)
		return err
	})

	return created, err
}

// UpdateCourse applies a partial update. Syllabus and instructors are replaced
// wholesale when non-nil.
func (s *Store) UpdateCourse(ctx context.Context, id int64, arg course.UpdateParams) (course.Course, error) {
	var updated course.Course

	var category *string
	if arg.Category != nil {
		c := string(*arg.Category)
		category = &c
	}

	err := s.inTx(ctx, func(q *Store) error {
		tag, err := q.db.Exec(ctx, `
UPDATE courses SET
    title       = COALESCE($2, title),
    category    = COALESCE($3, category),
    description = COALESCE($4, description),
    video_url   = COALESCE($5, video_url)
WHERE id = $1`, id, arg.Title, category, arg.Description, arg.VideoURL)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return db.ErrNotFound
		}

		if arg.Syllabus != nil {
			if _, err := q.db.Exec(ctx, `DELETE FROM syllabus_items WHERE course_id = $1`, id); err != nil {
				return err
			}
		}
		if arg.Instructors != nil {
			if _, err := q.db.Exec(ctx, `DELETE FROM course_instructors WHERE course_id = $1`, id); err != nil {
				return err
			}
		}
		if err := q.replaceCourseDetails(ctx, id, arg.Syllabus, arg.Instructors); err != nil {
			return err
		}

		updated, err = q.GetCourse(ctx, id)
		return err
	})

	return updated, err
}

func (s *Store) replaceCourseDetails(ctx context.Context, courseID int64, syllabus, instructors []string) error {
	batch := &pgx.Batch{}
	for i, item := range syllabus {
		batch.Queue(`INSERT INTO syllabus_items (course_id, content, position) VALUES ($1, $2, $3)`, courseID, item, i)
	}
	for _, name := range instructors {
		batch.Queue(`INSERT INTO course_instructors (course_id, instructor_name) VALUES ($1, $2)`, courseID, name)
	}
	if batch.Len() == 0 {
		return nil
	}
	return s.db.SendBatch(ctx, batch).Close()
}

func (s *Store) DeleteCourse(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// SaveCourse is idempotent. A missing course surfaces as db.ErrNotFound.
func (s *Store) SaveCourse(ctx context.Context, userID, courseID int64) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO saved_courses (user_id, course_id) VALUES ($1, $2)
ON CONFLICT DO NOTHING`, userID, courseID)
	return foreignKeyAsNotFound(err)
}

func (s *Store) UnsaveCourse(ctx context.Context, userID, courseID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM saved_courses WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	return err
}

// EnrollCourse records the enrollment and refreshes the course's student count.
func (s *Store) EnrollCourse(ctx context.Context, userID, courseID int64) (course.Course, error) {
	var enrolled course.Course

	err := s.inTx(ctx, func(q *Store) error {
		if _, err := q.db.Exec(ctx, `
INSERT INTO enrolled_courses (user_id, course_id) VALUES ($1, $2)
ON CONFLICT DO NOTHING`, userID, courseID); err != nil {
			return foreignKeyAsNotFound(err)
		}

		if _, err := q.db.Exec(ctx, `
UPDATE courses SET students = (SELECT count(*) FROM enrolled_courses WHERE course_id = $1)
WHERE id = $1`, courseID); err != nil {
			return err
		}

		var err error
		enrolled, err = q.GetCourse(ctx, courseID)
		return err
	})

	return enrolled, err
}

// RateCourse upserts the user's rating and recomputes the course average.
func (s *Store) RateCourse(ctx context.Context, userID, courseID int64, rating int) (course.Course, error) {
	var rated course.Course

	err := s.inTx(ctx, func(q *Store) error {
		if _, err := q.db.Exec(ctx, `
INSERT INTO course_ratings (user_id, course_id, rating) VALUES ($1, $2, $3)
ON CONFLICT (user_id, course_id) DO UPDATE SET rating = EXCLUDED.rating, rated_at = now()`,
			userID, courseID, rating); err != nil {
			return foreignKeyAsNotFound(err)
		}

		if _, err := q.db.Exec(ctx, `
UPDATE courses SET rating = (SELECT avg(rating)::double precision FROM course_ratings WHERE course_id = $1)
WHERE id = $1`, courseID); err != nil {
			return err
		}

		var err error
		rated, err = q.GetCourse(ctx, courseID)
		return err
	})

	return rated, err
}

func (s *Store) ListSavedCourses(ctx context.Context, userID int64) ([]course.Course, error) {
	rows, err := s.db.Query(ctx, courseSelect+`
JOIN saved_courses sc ON sc.course_id = c.id
WHERE sc.user_id = $1
ORDER BY sc.saved_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[course.Course])
}

func (s *Store) ListEnrolledCourses(ctx context.Context, userID int64) ([]course.Course, error) {
	rows, err := s.db.Query(ctx, courseSelect+`
JOIN enrolled_courses ec ON ec.course_id = c.id
WHERE ec.user_id = $1
ORDER BY ec.enrolled_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[course.Course])
}

func foreignKeyAsNotFound(err error) error {
	if db.IsForeignKeyViolation(err) {
		return db.ErrNotFound
	}
	return err
}

package memdb

import (
	"cmp"
	"context"
	"slices"
	"time"

	"eduplatform/internal/app/course"
	"eduplatform/internal/app/db"
)

func cloneCourse(c course.Course) course.Course {
	c.Syllabus = append([]string{}, c.Syllabus...)
	c.Instructors = append([]string{}, c.Instructors...)
	return c
}

func newestFirst(a, b course.Course) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

func (s *Store) ListCourses(_ context.Context, category course.Category) ([]course.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]course.Course, 0, len(s.courses))
	for _, c := range s.courses {
		if category == "" || c.Category == category {
			out = append(out, cloneCourse(c))
		}
	}
	slices.SortFunc(out, newestFirst)
	return out, nil
}

func (s *Store) GetCourse(_ context.Context, id int64) (course.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.courses[id]
	if !ok {
		return course.Course{}, db.ErrNotFound
	}
	return cloneCourse(c), nil
}

func (s *Store) CreateCourse(_ context.Context, arg course.CreateParams) (course.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := course.Course{
		ID:          s.id("courses"),
		Title:       arg.Title,
		Category:    arg.Category,
		Description: arg.Description,
		VideoURL:    arg.VideoURL,
		Rating:      5.0,
		CreatedAt:   s.now(),
		Syllabus:    append([]string{}, arg.Syllabus...),
		Instructors: append([]string{}, arg.Instructors...),
	}
	s.courses[c.ID] = c
	return cloneCourse(c), nil
}

func (s *Store) UpdateCourse(_ context.Context, id int64, arg course.UpdateParams) (course.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.courses[id]
	if !ok {
		return course.Course{}, db.ErrNotFound
	}
	if arg.Title != nil {
		c.Title = *arg.Title
	}
	if arg.Category != nil {
		c.Category = *arg.Category
	}
	if arg.Description != nil {
		c.Description = *arg.Description
	}
	if arg.VideoURL != nil {
		c.VideoURL = *arg.VideoURL
	}
	if arg.Syllabus != nil {
		c.Syllabus = append([]string{}, arg.Syllabus...)
	}
	if arg.Instructors != nil {
		c.Instructors = append([]string{}, arg.Instructors...)
	}
	s.courses[id] = c
	return cloneCourse(c), nil
}

// DeleteCourse cascades to saved, enrolled and rating rows.
func (s *Store) DeleteCourse(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.courses, id)

	for _, rel := range []map[pair]time.Time{s.saved, s.enrolled} {
		for k := range rel {
			if k.courseID == id {
				delete(rel, k)
			}
		}
	}
	for k := range s.ratings {
		if k.courseID == id {
			delete(s.ratings, k)
		}
	}
	return nil
}

// checkRefsLocked mirrors the join tables' foreign keys.
func (s *Store) checkRefsLocked(userID, courseID int64) error {
	if _, ok := s.courses[courseID]; !ok {
		return db.ErrNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return db.ErrNotFound
	}
	return nil
}

func (s *Store) SaveCourse(_ context.Context, userID, courseID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRefsLocked(userID, courseID); err != nil {
		return err
	}
	k := pair{userID, courseID}
	if _, ok := s.saved[k]; !ok {
		s.saved[k] = s.now()
	}
	return nil
}

func (s *Store) UnsaveCourse(_ context.Context, userID, courseID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.saved, pair{userID, courseID})
	return nil
}

func (s *Store) EnrollCourse(_ context.Context, userID, courseID int64) (course.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRefsLocked(userID, courseID); err != nil {
		return course.Course{}, err
	}
	k := pair{userID, courseID}
	if _, ok := s.enrolled[k]; !ok {
		s.enrolled[k] = s.now()
	}
	s.recountLocked()
	return cloneCourse(s.courses[courseID]), nil
}

func (s *Store) RateCourse(_ context.Context, userID, courseID int64, rating int) (course.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRefsLocked(userID, courseID); err != nil {
		return course.Course{}, err
	}
	s.ratings[pair{userID, courseID}] = rating
	s.recountLocked()
	return cloneCourse(s.courses[courseID]), nil
}

// recountLocked refreshes the denormalized students and rating columns.
func (s *Store) recountLocked() {
	for id, c := range s.courses {
		students, sum, n := 0, 0, 0
		for k := range s.enrolled {
			if k.courseID == id {
				students++
			}
		}
		for k, r := range s.ratings {
			if k.courseID == id {
				sum += r
				n++
			}
		}
		c.Students = students
		if n > 0 {
			c.Rating = float64(sum) / float64(n)
		}
		s.courses[id] = c
	}
}

func (s *Store) listRelatedLocked(rel map[pair]time.Time, userID int64) []course.Course {
	type entry struct {
		c  course.Course
		at time.Time
	}
	var entries []entry
	for k, at := range rel {
		if k.userID == userID {
			if c, ok := s.courses[k.courseID]; ok {
				entries = append(entries, entry{cloneCourse(c), at})
			}
		}
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := b.at.Compare(a.at); c != 0 {
			return c
		}
		return cmp.Compare(b.c.ID, a.c.ID)
	})

	out := make([]course.Course, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.c)
	}
	return out
}

func (s *Store) ListSavedCourses(_ context.Context, userID int64) ([]course.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listRelatedLocked(s.saved, userID), nil
}

func (s *Store) ListEnrolledCourses(_ context.Context, userID int64) ([]course.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listRelatedLocked(s.enrolled, userID), nil
}

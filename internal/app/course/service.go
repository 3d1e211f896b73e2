package course

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"eduplatform/internal/app/db"
	"eduplatform/internal/pkg/errs"
	"eduplatform/internal/pkg/logx"
)

const (
	MinRating = 1
	MaxRating = 5

	maxTitleLength = 200
)

// Store is the catalog persistence the service needs.
type Store interface {
	ListCourses(ctx context.Context, category Category) ([]Course, error)
	GetCourse(ctx context.Context, id int64) (Course, error)
	CreateCourse(ctx context.Context, arg CreateParams) (Course, error)
	UpdateCourse(ctx context.Context, id int64, arg UpdateParams) (Course, error)
	DeleteCourse(ctx context.Context, id int64) error
	SaveCourse(ctx context.Context, userID, courseID int64) error
	UnsaveCourse(ctx context.Context, userID, courseID int64) error
	EnrollCourse(ctx context.Context, userID, courseID int64) (Course, error)
	RateCourse(ctx context.Context, userID, courseID int64, rating int) (Course, error)
	ListSavedCourses(ctx context.Context, userID int64) ([]Course, error)
	ListEnrolledCourses(ctx context.Context, userID int64) ([]Course, error)
}

type Service struct {
	store  Store
	logger zerolog.Logger
}

func NewService(store Store) *Service {
	return &Service{store: store, logger: logx.Component("course")}
}

// List returns the catalog newest first; an empty category lists everything.
func (s *Service) List(ctx context.Context, category Category) ([]Course, error) {
	if category != "" && !category.Valid() {
		return nil, errs.NewError(errs.ErrCourseCategoryInvalid)
	}
	return s.store.ListCourses(ctx, category)
}

func (s *Service) Get(ctx context.Context, id int64) (Course, error) {
	c, err := s.store.GetCourse(ctx, id)
	return c, notFound(err)
}

func (s *Service) Create(ctx context.Context, arg CreateParams) (Course, error) {
	arg.Title = strings.TrimSpace(arg.Title)
	arg.Description = strings.TrimSpace(arg.Description)
	arg.VideoURL = strings.TrimSpace(arg.VideoURL)

	if arg.Title == "" || arg.Description == "" || arg.VideoURL == "" || len(arg.Title) > maxTitleLength {
		return Course{}, errs.NewError(errs.ErrInvalidParams)
	}
	if !arg.Category.Valid() {
		return Course{}, errs.NewError(errs.ErrCourseCategoryInvalid)
	}
	if !validURL(arg.VideoURL) {
		return Course{}, errs.NewError(errs.ErrInvalidParams)
	}
	arg.Syllabus = cleanList(arg.Syllabus)
	arg.Instructors = cleanList(arg.Instructors)

	c, err := s.store.CreateCourse(ctx, arg)
	if err != nil {
		return Course{}, err
	}

	s.logger.Info().Int64("course_id", c.ID).Str("category", string(c.Category)).Msg("Course created")
	return c, nil
}

// Update applies the non-nil fields of arg.
func (s *Service) Update(ctx context.Context, id int64, arg UpdateParams) (Course, error) {
	if arg.Title != nil {
		t := strings.TrimSpace(*arg.Title)
		if t == "" || len(t) > maxTitleLength {
			return Course{}, errs.NewError(errs.ErrInvalidParams)
		}
		arg.Title = &t
	}
	if arg.Description != nil {
		d := strings.TrimSpace(*arg.Description)
		if d == "" {
			return Course{}, errs.NewError(errs.ErrInvalidParams)
		}
		arg.Description = &d
	}
	if arg.VideoURL != nil {
		v := strings.TrimSpace(*arg.VideoURL)
		if !validURL(v) {
			return Course{}, errs.NewError(errs.ErrInvalidParams)
		}
		arg.VideoURL = &v
	}
	if arg.Category != nil && !arg.Category.Valid() {
		return Course{}, errs.NewError(errs.ErrCourseCategoryInvalid)
	}
	if arg.Syllabus != nil {
		arg.Syllabus = cleanList(arg.Syllabus)
	}
	if arg.Instructors != nil {
		arg.Instructors = cleanList(arg.Instructors)
	}

	c, err := s.store.UpdateCourse(ctx, id, arg)
	return c, notFound(err)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteCourse(ctx, id); err != nil {
		return notFound(err)
	}
	s.logger.Info().Int64("course_id", id).Msg("Course deleted")
	return nil
}

func (s *Service) Save(ctx context.Context, userID, courseID int64) error {
	return notFound(s.store.SaveCourse(ctx, userID, courseID))
}

func (s *Service) Unsave(ctx context.Context, userID, courseID int64) error {
	return notFound(s.store.UnsaveCourse(ctx, userID, courseID))
}

// Enroll is idempotent and returns the course with its updated student count.
func (s *Service) Enroll(ctx context.Context, userID, courseID int64) (Course, error) {
	c, err := s.store.EnrollCourse(ctx, userID, courseID)
	return c, notFound(err)
}

// Rate records or replaces the user's rating and returns the new average.
func (s *Service) Rate(ctx context.Context, userID, courseID int64, rating int) (Course, error) {
	if rating < MinRating || rating > MaxRating {
		return Course{}, errs.NewError(errs.ErrRatingOutOfRange)
	}
	c, err := s.store.RateCourse(ctx, userID, courseID, rating)
	return c, notFound(err)
}

// Mine returns the caller's saved and enrolled courses.
func (s *Service) Mine(ctx context.Context, userID int64) (MyCourses, error) {
	saved, err := s.store.ListSavedCourses(ctx, userID)
	if err != nil {
		return MyCourses{}, err
	}
	enrolled, err := s.store.ListEnrolledCourses(ctx, userID)
	if err != nil {
		return MyCourses{}, err
	}
	return MyCourses{Saved: saved, Enrolled: enrolled}, nil
}

func notFound(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return errs.NewError(errs.ErrCourseNotFound)
	}
	return err
}

func validURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// cleanList trims entries and drops blanks, keeping order.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

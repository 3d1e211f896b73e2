package handler

import (
	"net/http"

	"eduplatform/internal/app/course"
	"eduplatform/internal/pkg/req"
	"eduplatform/internal/pkg/resp"
)

type CreateCourseInput struct {
	Title       string          `json:"title"`
	Category    course.Category `json:"category"`
	Description string          `json:"description"`
	VideoURL    string          `json:"video_url"`
	Syllabus    []string        `json:"syllabus"`
	Instructors []string        `json:"instructors"`
}

// UpdateCourseInput is a partial update: absent fields stay as they are,
// an explicit empty list clears syllabus or instructors.
type UpdateCourseInput struct {
	Title       *string          `json:"title"`
	Category    *course.Category `json:"category"`
	Description *string          `json:"description"`
	VideoURL    *string          `json:"video_url"`
	Syllabus    []string         `json:"syllabus"`
	Instructors []string         `json:"instructors"`
}

type RateCourseInput struct {
	Rating int `json:"rating"`
}

func HandleListCourses(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := course.Category(r.URL.Query().Get("category"))

		courses, err := deps.Courses.List(r.Context(), category)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, courses)
	}
}

func HandleGetCourse(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, customErr := req.PathID(r, "id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		c, err := deps.Courses.Get(r.Context(), id)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, c)
	}
}

func HandleCreateCourse(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CreateCourseInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		c, err := deps.Courses.Create(r.Context(), course.CreateParams(input))
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondCreated(w, r, c)
	}
}

func HandleUpdateCourse(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, customErr := req.PathID(r, "id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input UpdateCourseInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		c, err := deps.Courses.Update(r.Context(), id, course.UpdateParams(input))
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, c)
	}
}

func HandleDeleteCourse(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, customErr := req.PathID(r, "id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := deps.Courses.Delete(r.Context(), id); err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, nil)
	}
}

// courseAction runs fn for the caller and the {id} course.
func courseAction(fn func(r *http.Request, userID, courseID int64) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := identity(w, r)
		if !ok {
			return
		}

		id, customErr := req.PathID(r, "id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		data, err := fn(r, payload.UserID, id)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, data)
	}
}

func HandleSaveCourse(deps *AppDeps) http.HandlerFunc {
	return courseAction(func(r *http.Request, userID, courseID int64) (any, error) {
		return nil, deps.Courses.Save(r.Context(), userID, courseID)
	})
}

func HandleUnsaveCourse(deps *AppDeps) http.HandlerFunc {
	return courseAction(func(r *http.Request, userID, courseID int64) (any, error) {
		return nil, deps.Courses.Unsave(r.Context(), userID, courseID)
	})
}

func HandleEnrollCourse(deps *AppDeps) http.HandlerFunc {
	return courseAction(func(r *http.Request, userID, courseID int64) (any, error) {
		return deps.Courses.Enroll(r.Context(), userID, courseID)
	})
}

func HandleRateCourse(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RateCourseInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		courseAction(func(r *http.Request, userID, courseID int64) (any, error) {
			return deps.Courses.Rate(r.Context(), userID, courseID, input.Rating)
		})(w, r)
	}
}

func HandleMyCourses(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := identity(w, r)
		if !ok {
			return
		}

		mine, err := deps.Courses.Mine(r.Context(), payload.UserID)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, mine)
	}
}

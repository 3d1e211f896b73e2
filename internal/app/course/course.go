/*
Package course implements the course catalog: listing and filtering, admin
maintenance, and the per-user saved, enrolled and rating relations.
*/
package course

import "time"

// Category is the closed set of catalog categories.
type Category string

const (
	CategoryMedia    Category = "Media"
	CategoryIT       Category = "IT & Software"
	CategoryBusiness Category = "Business"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryMedia, CategoryIT, CategoryBusiness:
		return true
	}
	return false
}

// Course is a catalog entry with its syllabus and instructors.
type Course struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Category    Category  `json:"category" db:"category"`
	Description string    `json:"description" db:"description"`
	VideoURL    string    `json:"video_url" db:"video_url"`
	Students    int       `json:"students" db:"students"`
	Rating      float64   `json:"rating" db:"rating"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	Syllabus    []string  `json:"syllabus" db:"syllabus"`
	Instructors []string  `json:"instructors" db:"instructors"`
}

// CreateParams holds the fields of a new course.
type CreateParams struct {
	Title       string
	Category    Category
	Description string
	VideoURL    string
	Syllabus    []string
	Instructors []string
}

// UpdateParams is a partial update; nil fields are left unchanged.
type UpdateParams struct {
	Title       *string
	Category    *Category
	Description *string
	VideoURL    *string
	Syllabus    []string
	Instructors []string
}

// MyCourses groups the courses a user saved and enrolled in.
type MyCourses struct {
	Saved    []Course `json:"saved"`
	Enrolled []Course `json:"enrolled"`
}

package model

// Course represents one catalog row. Rows are loaded once at startup and are
// immutable afterwards.
type Course struct {
	// ID preserves the catalog's native row order.
	ID uint64 `json:"-" gorm:"primaryKey;autoIncrement"`

	// CourseID is the catalog identifier. Not unique; duplicates are tolerated
	// and all matching rows surface downstream.
	CourseID int64 `json:"course_id" gorm:"index:idx_course_id;not null"`

	Title   string `json:"course_title" gorm:"size:512;not null"`
	URL     string `json:"url" gorm:"size:1024;not null"`
	Subject string `json:"subject" gorm:"size:128"`

	// Category is derived from Subject at load time. nil when the subject is
	// absent or unmapped; nil never matches a concrete category filter.
	Category *string `json:"category" gorm:"size:128"`
}

// TableName returns the table name for GORM.
func (c *Course) TableName() string {
	return "courses"
}

// Recommendation is the request-scoped {title, url} projection of a course.
type Recommendation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// CategoryAll is the sentinel filter value that matches every row, including
// rows with no category.
const CategoryAll = "ALL"

// subjectCategories is the fixed subject-to-category lookup table.
var subjectCategories = map[string]string{
	"Web Development":     "Computer Science",
	"Business Finance":    "Other",
	"Graphic Design":      "Computer Science",
	"Musical Instruments": "Other",
}

// CategoryForSubject derives the category for a raw subject label.
// Returns nil for absent or unmapped subjects.
func CategoryForSubject(subject string) *string {
	if category, ok := subjectCategories[subject]; ok {
		return &category
	}
	return nil
}

package content

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/boletin/core"
)

// Evaluation types
const (
	EvalNumeric     = "numeric"
	EvalQualitative = "qualitative"
)

// ContentItem is a planned class topic or evaluation of a subject-course.
// Its bimester is resolved from ClassDate at creation and is not recomputed afterwards.
type ContentItem struct {
	ID              string    `json:"id"`
	SubjectCourseID string    `json:"subject_course_id"`
	Bimester        int       `json:"bimester"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	EvaluationType  string    `json:"evaluation_type"`
	ClassDate       time.Time `json:"class_date"`
	Order           int       `json:"order"` // 1-based within (SubjectCourseID, Bimester)
	Intensification bool      `json:"intensification"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
}

// NewContent contains information needed to create a new ContentItem.
type NewContent struct {
	SubjectCourseID string `json:"subject_course_id" validate:"required"`
	Title           string `json:"title" validate:"required,max=200"`
	Description     string `json:"description" validate:"max=2000"`
	EvaluationType  string `json:"evaluation_type" validate:"required,oneof=numeric qualitative"`
	ClassDate       string `json:"class_date" validate:"required,isodate"`
}

func (nc *NewContent) Validate(validate *validator.Validate) error {
	nc.SubjectCourseID = core.CleanString(nc.SubjectCourseID)
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.EvaluationType = core.CleanString(nc.EvaluationType, true /* lower */)
	nc.ClassDate = core.CleanString(nc.ClassDate)
	return validate.Struct(nc)
}

// DuplicateContent defines the copy of an existing ContentItem into another (or the same) subject-course.
type DuplicateContent struct {
	SourceID        string `json:"-" validate:"required"`
	SubjectCourseID string `json:"subject_course_id" validate:"required"`
	Title           string `json:"title" validate:"required,max=200"`
	ClassDate       string `json:"class_date" validate:"required,isodate"`
}

func (dc *DuplicateContent) Validate(validate *validator.Validate) error {
	dc.SourceID = core.CleanString(dc.SourceID)
	dc.SubjectCourseID = core.CleanString(dc.SubjectCourseID)
	dc.Title = core.CleanString(dc.Title)
	dc.ClassDate = core.CleanString(dc.ClassDate)
	return validate.Struct(dc)
}

type QueryFilter struct {
	SubjectCourseID string `query:"subject_course_id"`
	Bimester        int    `query:"bimester"`
	IncludeInactive bool   `query:"include_inactive"`
}

func (qf *QueryFilter) Clean() {
	qf.SubjectCourseID = core.CleanString(qf.SubjectCourseID)
}

// OrderingFields are the fields contents can be sorted by.
var OrderingFields = []string{"bimester", "order", "class_date", "title", "created_at"}

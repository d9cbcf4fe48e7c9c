package roster

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/boletin/core"
	"github.com/trezcool/boletin/core/period"
)

// Assignment places a student in a sub-group of a subject-course for a cycle.
// PeriodStart and PeriodEnd are period markers; both are period.Annual for non rotating subjects,
// PeriodEnd is empty while a rotation is open.
type Assignment struct {
	ID              string    `json:"id"`
	StudentID       string    `json:"student_id"`
	SubjectCourseID string    `json:"subject_course_id"`
	CycleID         string    `json:"cycle_id"`
	Subgroup        string    `json:"subgroup"`
	PeriodStart     string    `json:"period_start"`
	PeriodEnd       string    `json:"period_end,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"` // UTC
}

func (a Assignment) IsAnnual() bool {
	return a.PeriodStart == period.Annual
}

// Covers reports whether the assignment applies during trimester.
func (a Assignment) Covers(trimester string) bool {
	if a.IsAnnual() {
		return true
	}
	idx := trimesterIndex(trimester)
	if idx < 0 || idx < trimesterIndex(a.PeriodStart) {
		return false
	}
	return a.PeriodEnd == "" || idx <= trimesterIndex(a.PeriodEnd)
}

func trimesterIndex(marker string) int {
	for i, t := range period.Trimesters {
		if t == marker {
			return i
		}
	}
	return -1
}

// NewAssignment contains information needed to assign a student to a sub-group.
type NewAssignment struct {
	StudentID       string `json:"student_id" validate:"required"`
	SubjectCourseID string `json:"-" validate:"required"`
	Subgroup        string `json:"subgroup" validate:"required,max=50"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.StudentID = core.CleanString(na.StudentID)
	na.SubjectCourseID = core.CleanString(na.SubjectCourseID)
	na.Subgroup = core.CleanString(na.Subgroup)
	return validate.Struct(na)
}

type QueryFilter struct {
	SubjectCourseID string
	CycleID         string
	ActiveOnly      bool
}

package sqlxrepos

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/boletin/core"
	"github.com/trezcool/boletin/core/period"
	"github.com/trezcool/boletin/core/school"
)

type schoolRepository struct {
	baseRepository
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db core.DB) *schoolRepository {
	return &schoolRepository{baseRepository{db: db}}
}

const selectCycle = `SELECT id, year, active FROM academic_cycle`

func (repo schoolRepository) ActiveCycle(ctx context.Context, exec ...core.DBExecutor) (school.Cycle, error) {
	var c school.Cycle
	if err := repo.getExec(exec).GetContext(ctx, &c, selectCycle+` WHERE active`); err != nil {
		return school.Cycle{}, trapNoRowsErr(err, "active academic cycle", "", "finding active cycle")
	}
	return c, nil
}

func (repo schoolRepository) GetCycleByYear(ctx context.Context, year int, exec ...core.DBExecutor) (school.Cycle, error) {
	var c school.Cycle
	if err := repo.getExec(exec).GetContext(ctx, &c, selectCycle+` WHERE year = $1`, year); err != nil {
		return school.Cycle{}, trapNoRowsErr(err, "academic cycle", strconv.Itoa(year), "finding cycle by year")
	}
	return c, nil
}

func (repo schoolRepository) GetSubjectCourse(ctx context.Context, id string, exec ...core.DBExecutor) (school.SubjectCourse, error) {
	if !isUUID(id) {
		return school.SubjectCourse{}, core.NewNotFoundError("subject-course", id)
	}
	q := `
		SELECT sc.id, sc.subject_id, sc.course_id, sc.cycle_id, s.name AS subject_name, s.rotation
		FROM subject_course sc
		JOIN subject s ON s.id = sc.subject_id
		WHERE sc.id = $1`

	var sc school.SubjectCourse
	if err := repo.getExec(exec).GetContext(ctx, &sc, q, id); err != nil {
		return school.SubjectCourse{}, trapNoRowsErr(err, "subject-course", id, "finding subject-course")
	}
	return sc, nil
}

func (repo schoolRepository) ActiveEnrollment(ctx context.Context, studentID, cycleID string, exec ...core.DBExecutor) (school.Enrollment, error) {
	if !isUUID(studentID) || !isUUID(cycleID) {
		return school.Enrollment{}, core.NewNotFoundError("active enrollment of student", studentID)
	}
	q := `
		SELECT id, student_id, course_id, cycle_id, active
		FROM enrollment
		WHERE student_id = $1 AND cycle_id = $2 AND active`

	var enr school.Enrollment
	if err := repo.getExec(exec).GetContext(ctx, &enr, q, studentID, cycleID); err != nil {
		return school.Enrollment{}, trapNoRowsErr(err, "active enrollment of student", studentID, "finding active enrollment")
	}
	return enr, nil
}

func (repo schoolRepository) Teaches(ctx context.Context, teacherID, subjectCourseID string, exec ...core.DBExecutor) (bool, error) {
	if !isUUID(teacherID) || !isUUID(subjectCourseID) {
		return false, nil
	}
	q := `SELECT EXISTS (SELECT 1 FROM subject_course_teacher WHERE teacher_id = $1 AND subject_course_id = $2)`

	var ok bool
	if err := repo.getExec(exec).GetContext(ctx, &ok, q, teacherID, subjectCourseID); err != nil {
		return false, errors.Wrap(err, "checking subject-course teacher")
	}
	return ok, nil
}

func (repo schoolRepository) IntensificationWindows(ctx context.Context, cycleID string, exec ...core.DBExecutor) ([]period.Window, error) {
	q := `
		SELECT quarter, starts_on, ends_on
		FROM intensification_window
		WHERE cycle_id = $1
		ORDER BY starts_on`

	var windows []period.Window
	if err := repo.getExec(exec).SelectContext(ctx, &windows, q, cycleID); err != nil {
		return nil, errors.Wrap(err, "querying intensification windows")
	}
	return windows, nil
}

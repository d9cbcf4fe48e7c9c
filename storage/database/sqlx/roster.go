package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/boletin/core"
	"github.com/trezcool/boletin/core/roster"
)

type rosterRepository struct {
	baseRepository
}

var _ roster.Repository = (*rosterRepository)(nil) // interface compliance check

func NewRosterRepository(db core.DB) *rosterRepository {
	return &rosterRepository{baseRepository{db: db}}
}

type assignmentRow struct {
	ID              string      `db:"id"`
	StudentID       string      `db:"student_id"`
	SubjectCourseID string      `db:"subject_course_id"`
	CycleID         string      `db:"cycle_id"`
	Subgroup        string      `db:"subgroup"`
	PeriodStart     string      `db:"period_start"`
	PeriodEnd       null.String `db:"period_end"`
	Active          bool        `db:"active"`
	CreatedAt       time.Time   `db:"created_at"`
}

func (row assignmentRow) unpack() roster.Assignment {
	return roster.Assignment{
		ID:              row.ID,
		StudentID:       row.StudentID,
		SubjectCourseID: row.SubjectCourseID,
		CycleID:         row.CycleID,
		Subgroup:        row.Subgroup,
		PeriodStart:     row.PeriodStart,
		PeriodEnd:       row.PeriodEnd.String,
		Active:          row.Active,
		CreatedAt:       row.CreatedAt.UTC(),
	}
}

func unpackAssignments(rows []assignmentRow) []roster.Assignment {
	res := make([]roster.Assignment, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.unpack())
	}
	return res
}

const assignmentColumns = `id, student_id, subject_course_id, cycle_id, subgroup, period_start, period_end, active, created_at`

func (repo rosterRepository) CreateAssignment(ctx context.Context, a roster.Assignment, exec ...core.DBExecutor) (roster.Assignment, error) {
	a.ID = uuid.New().String()

	q := `INSERT INTO student_subject_assignment (` + assignmentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.getExec(exec).ExecContext(ctx, q,
		a.ID, a.StudentID, a.SubjectCourseID, a.CycleID, a.Subgroup,
		a.PeriodStart, null.NewString(a.PeriodEnd, a.PeriodEnd != ""), a.Active, a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return roster.Assignment{}, core.NewConflictError(
				"student %q already has an active assignment for subject-course %q", a.StudentID, a.SubjectCourseID,
			)
		}
		return roster.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return a, nil
}

func (repo rosterRepository) GetAssignment(ctx context.Context, id string, exec ...core.DBExecutor) (roster.Assignment, error) {
	if !isUUID(id) {
		return roster.Assignment{}, core.NewNotFoundError("assignment", id)
	}
	var row assignmentRow
	q := `SELECT ` + assignmentColumns + ` FROM student_subject_assignment WHERE id = $1`
	if err := repo.getExec(exec).GetContext(ctx, &row, q, id); err != nil {
		return roster.Assignment{}, trapNoRowsErr(err, "assignment", id, "finding assignment")
	}
	return row.unpack(), nil
}

func (repo rosterRepository) ActiveAssignment(ctx context.Context, studentID, subjectCourseID, cycleID string, exec ...core.DBExecutor) (roster.Assignment, error) {
	if !isUUID(studentID) || !isUUID(subjectCourseID) || !isUUID(cycleID) {
		return roster.Assignment{}, core.NewNotFoundError("assignment", studentID)
	}
	var row assignmentRow
	q := `
		SELECT ` + assignmentColumns + `
		FROM student_subject_assignment
		WHERE student_id = $1 AND subject_course_id = $2 AND cycle_id = $3 AND active`
	if err := repo.getExec(exec).GetContext(ctx, &row, q, studentID, subjectCourseID, cycleID); err != nil {
		return roster.Assignment{}, trapNoRowsErr(err, "assignment", studentID, "finding active assignment")
	}
	return row.unpack(), nil
}

func (repo rosterRepository) QueryAssignments(ctx context.Context, filter roster.QueryFilter, exec ...core.DBExecutor) ([]roster.Assignment, error) {
	var (
		where []string
		args  []interface{}
	)
	for _, f := range []struct {
		col string
		val string
	}{
		{"subject_course_id", filter.SubjectCourseID},
		{"cycle_id", filter.CycleID},
	} {
		if f.val == "" {
			continue
		}
		if !isUUID(f.val) {
			return []roster.Assignment{}, nil
		}
		args = append(args, f.val)
		where = append(where, f.col+" = $"+itoa(len(args)))
	}
	if filter.ActiveOnly {
		where = append(where, "active")
	}

	q := `SELECT ` + assignmentColumns + ` FROM student_subject_assignment`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY subgroup, student_id`

	var rows []assignmentRow
	if err := repo.getExec(exec).SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	return unpackAssignments(rows), nil
}

func (repo rosterRepository) FindOrphanedAssignments(ctx context.Context, subjectCourseID, courseID, cycleID string, exec ...core.DBExecutor) ([]roster.Assignment, error) {
	if !isUUID(subjectCourseID) || !isUUID(courseID) || !isUUID(cycleID) {
		return []roster.Assignment{}, nil
	}
	q := `
		SELECT ` + assignmentColumns + `
		FROM student_subject_assignment a
		WHERE a.subject_course_id = $1 AND a.cycle_id = $3 AND a.active
		  AND NOT EXISTS (
			SELECT 1 FROM enrollment e
			WHERE e.student_id = a.student_id AND e.cycle_id = a.cycle_id AND e.active AND e.course_id = $2
		  )
		ORDER BY a.subgroup, a.student_id`

	var rows []assignmentRow
	if err := repo.getExec(exec).SelectContext(ctx, &rows, q, subjectCourseID, courseID, cycleID); err != nil {
		return nil, errors.Wrap(err, "finding orphaned assignments")
	}
	return unpackAssignments(rows), nil
}

func (repo rosterRepository) DeactivateAssignment(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if !isUUID(id) {
		return core.NewNotFoundError("assignment", id)
	}
	res, err := repo.getExec(exec).ExecContext(ctx, `UPDATE student_subject_assignment SET active = false WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deactivating assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.NewNotFoundError("assignment", id)
	}
	return nil
}

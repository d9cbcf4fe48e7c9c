package roster

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/boletin/core"
	"github.com/trezcool/boletin/core/period"
	"github.com/trezcool/boletin/core/school"
)

var NowFunc = time.Now // mockable

type (
	Repository interface {
		// CreateAssignment returns a core.ConflictError when the student already holds an active
		// assignment for the subject-course and cycle.
		CreateAssignment(ctx context.Context, a Assignment, exec ...core.DBExecutor) (Assignment, error)
		// GetAssignment and ActiveAssignment return a core.NotFoundError when nothing matches.
		GetAssignment(ctx context.Context, id string, exec ...core.DBExecutor) (Assignment, error)
		ActiveAssignment(ctx context.Context, studentID, subjectCourseID, cycleID string, exec ...core.DBExecutor) (Assignment, error)
		QueryAssignments(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Assignment, error)
		// FindOrphanedAssignments returns the active assignments of the subject-course whose student has
		// no active enrollment in courseID for the cycle.
		FindOrphanedAssignments(ctx context.Context, subjectCourseID, courseID, cycleID string, exec ...core.DBExecutor) ([]Assignment, error)
		DeactivateAssignment(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	Service struct {
		repo   Repository
		school *school.Service
	}
)

func NewService(repo Repository, schoolSvc *school.Service) *Service {
	return &Service{repo: repo, school: schoolSvc}
}

func checkAdmin(caller core.Caller) error {
	if !caller.IsAdmin() {
		return core.NewPermissionError("only admins and directors can manage sub-groups")
	}
	return nil
}

// Assign puts a student in a sub-group of a subject-course for the active cycle.
// The student must be actively enrolled in the subject-course's course and hold no other active
// assignment for it.
func (svc *Service) Assign(ctx context.Context, caller core.Caller, na NewAssignment) (Assignment, error) {
	if err := checkAdmin(caller); err != nil {
		return Assignment{}, err
	}

	sc, cycle, err := svc.school.CurrentSubjectCourse(ctx, na.SubjectCourseID)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "finding subject-course")
	}
	enr, err := svc.school.ActiveEnrollment(ctx, na.StudentID, cycle.ID)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "finding active enrollment")
	}
	if enr.CourseID != sc.CourseID {
		return Assignment{}, core.NewConflictError(
			"student %q is enrolled in course %q but subject-course %q belongs to course %q",
			na.StudentID, enr.CourseID, sc.ID, sc.CourseID,
		)
	}

	if _, err = svc.repo.ActiveAssignment(ctx, na.StudentID, sc.ID, cycle.ID); err == nil {
		return Assignment{}, core.NewConflictError("student %q already has an active assignment for subject-course %q", na.StudentID, sc.ID)
	} else if !core.IsNotFound(err) {
		return Assignment{}, errors.Wrap(err, "finding active assignment")
	}

	a := Assignment{
		StudentID:       na.StudentID,
		SubjectCourseID: sc.ID,
		CycleID:         cycle.ID,
		Subgroup:        na.Subgroup,
		Active:          true,
		CreatedAt:       NowFunc().UTC(),
	}
	if sc.Rotation {
		a.PeriodStart = period.FirstTrimester
	} else {
		a.PeriodStart = period.Annual
		a.PeriodEnd = period.Annual
	}

	// the unique index still guards against a concurrent Assign slipping between the check and the insert
	return svc.repo.CreateAssignment(ctx, a)
}

// FindOrphans returns the active assignments of a subject-course whose student is no longer
// enrolled in the subject-course's course.
func (svc *Service) FindOrphans(ctx context.Context, caller core.Caller, subjectCourseID string) ([]Assignment, error) {
	if err := checkAdmin(caller); err != nil {
		return nil, err
	}
	sc, err := svc.school.GetSubjectCourse(ctx, subjectCourseID)
	if err != nil {
		return nil, errors.Wrap(err, "finding subject-course")
	}
	cycle, err := svc.school.ActiveCycle(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "getting active cycle")
	}
	return svc.repo.FindOrphanedAssignments(ctx, sc.ID, sc.CourseID, cycle.ID)
}

// Query lists the active assignments of a subject-course in the active cycle.
// When trimester is set, rotating assignments not covering it are left out; annual ones always stay.
func (svc *Service) Query(ctx context.Context, caller core.Caller, subjectCourseID, trimester string) ([]Assignment, error) {
	if trimester != "" && !period.IsTrimester(trimester) {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "trimester", Error: "unknown trimester"})
	}
	if _, err := svc.school.GetSubjectCourse(ctx, subjectCourseID); err != nil {
		return nil, errors.Wrap(err, "finding subject-course")
	}
	if err := svc.school.CheckTeaches(ctx, caller, subjectCourseID); err != nil {
		return nil, err
	}
	cycle, err := svc.school.ActiveCycle(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "getting active cycle")
	}

	all, err := svc.repo.QueryAssignments(ctx, QueryFilter{SubjectCourseID: subjectCourseID, CycleID: cycle.ID, ActiveOnly: true})
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	if trimester == "" {
		return all, nil
	}
	res := make([]Assignment, 0, len(all))
	for _, a := range all {
		if a.Covers(trimester) {
			res = append(res, a)
		}
	}
	return res, nil
}

// Deactivate ends an assignment, eg. to reconcile an orphan.
func (svc *Service) Deactivate(ctx context.Context, caller core.Caller, id string) error {
	if err := checkAdmin(caller); err != nil {
		return err
	}
	if _, err := svc.repo.GetAssignment(ctx, id); err != nil {
		return errors.Wrap(err, "finding assignment")
	}
	return svc.repo.DeactivateAssignment(ctx, id)
}

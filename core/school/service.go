package school

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/boletin/core"
	"github.com/trezcool/boletin/core/period"
)

type (
	Repository interface {
		// ActiveCycle returns a core.NotFoundError when no cycle is active.
		ActiveCycle(ctx context.Context, exec ...core.DBExecutor) (Cycle, error)
		GetCycleByYear(ctx context.Context, year int, exec ...core.DBExecutor) (Cycle, error)
		GetSubjectCourse(ctx context.Context, id string, exec ...core.DBExecutor) (SubjectCourse, error)
		// ActiveEnrollment returns a core.NotFoundError when the student has no active enrollment in the cycle.
		ActiveEnrollment(ctx context.Context, studentID, cycleID string, exec ...core.DBExecutor) (Enrollment, error)
		Teaches(ctx context.Context, teacherID, subjectCourseID string, exec ...core.DBExecutor) (bool, error)
		IntensificationWindows(ctx context.Context, cycleID string, exec ...core.DBExecutor) ([]period.Window, error)
	}

	Service struct {
		repo     Repository
		ranges   []period.MonthRange
		fallback int
	}
)

var _ period.CalendarSource = (*Service)(nil)

func NewService(repo Repository, conf *core.Config) (*Service, error) {
	ranges, err := period.ParseRanges(conf.Calendar.Ranges)
	if err != nil {
		return nil, errors.Wrap(err, "parsing calendar ranges")
	}
	svc := &Service{repo: repo, ranges: ranges, fallback: conf.Calendar.Fallback}
	if err = (period.Calendar{Ranges: ranges, Fallback: svc.fallback}).Validate(0); err != nil {
		return nil, errors.Wrap(err, "validating calendar")
	}
	return svc, nil
}

// Calendar combines the configured month table with the intensification windows stored for the cycle of year.
func (svc *Service) Calendar(ctx context.Context, year int) (period.Calendar, error) {
	cycle, err := svc.repo.GetCycleByYear(ctx, year)
	if err != nil {
		if core.IsNotFound(err) {
			return period.Calendar{}, core.NewNotFoundError("academic cycle", strconv.Itoa(year))
		}
		return period.Calendar{}, errors.Wrap(err, "finding cycle by year")
	}
	windows, err := svc.repo.IntensificationWindows(ctx, cycle.ID)
	if err != nil {
		return period.Calendar{}, errors.Wrap(err, "querying intensification windows")
	}

	cal := period.Calendar{Ranges: svc.ranges, Fallback: svc.fallback, Windows: windows}
	if err = cal.Validate(year); err != nil {
		return period.Calendar{}, errors.Wrapf(err, "validating calendar of %d", year)
	}
	return cal, nil
}

func (svc *Service) ActiveCycle(ctx context.Context) (Cycle, error) {
	return svc.repo.ActiveCycle(ctx)
}

func (svc *Service) GetSubjectCourse(ctx context.Context, id string) (SubjectCourse, error) {
	return svc.repo.GetSubjectCourse(ctx, id)
}

// CurrentSubjectCourse returns the subject-course with the active cycle, or a core.ConflictError when
// the subject-course belongs to another cycle.
func (svc *Service) CurrentSubjectCourse(ctx context.Context, id string) (SubjectCourse, Cycle, error) {
	sc, err := svc.repo.GetSubjectCourse(ctx, id)
	if err != nil {
		return SubjectCourse{}, Cycle{}, err
	}
	cycle, err := svc.repo.ActiveCycle(ctx)
	if err != nil {
		return SubjectCourse{}, Cycle{}, errors.Wrap(err, "getting active cycle")
	}
	if sc.CycleID != cycle.ID {
		return SubjectCourse{}, Cycle{}, core.NewConflictError("subject-course %q is not part of the active cycle %d", sc.ID, cycle.Year)
	}
	return sc, cycle, nil
}

func (svc *Service) ActiveEnrollment(ctx context.Context, studentID, cycleID string) (Enrollment, error) {
	return svc.repo.ActiveEnrollment(ctx, studentID, cycleID)
}

// CheckTeaches allows admins (directors included) through and teachers only on subject-courses they teach.
func (svc *Service) CheckTeaches(ctx context.Context, caller core.Caller, subjectCourseIDs ...string) error {
	if caller.IsAdmin() {
		return nil
	}
	if !caller.IsTeacher() {
		return core.NewPermissionError("only teachers, admins and directors can manage subject-courses")
	}
	for _, id := range subjectCourseIDs {
		ok, err := svc.repo.Teaches(ctx, caller.UserID, id)
		if err != nil {
			return errors.Wrap(err, "checking teacher")
		}
		if !ok {
			return core.NewPermissionError("you do not teach subject-course %q", id)
		}
	}
	return nil
}

package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/boletin/core"
	"github.com/trezcool/boletin/core/roster"
)

type rosterRepository struct {
	db *DB
}

var _ roster.Repository = (*rosterRepository)(nil) // interface compliance check

func NewRosterRepository(db *DB) *rosterRepository {
	return &rosterRepository{db: db}
}

// caller holds the lock
func (repo *rosterRepository) active(studentID, subjectCourseID, cycleID string) *roster.Assignment {
	for _, a := range repo.db.assignments {
		if a.Active && a.StudentID == studentID && a.SubjectCourseID == subjectCourseID && a.CycleID == cycleID {
			return a
		}
	}
	return nil
}

func (repo *rosterRepository) CreateAssignment(_ context.Context, a roster.Assignment, _ ...core.DBExecutor) (roster.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// same guarantee as the partial unique index of the SQL schema
	if a.Active && repo.active(a.StudentID, a.SubjectCourseID, a.CycleID) != nil {
		return roster.Assignment{}, core.NewConflictError("student %q already has an active assignment for subject-course %q", a.StudentID, a.SubjectCourseID)
	}
	a.ID = uuid.New().String()
	repo.db.assignments[a.ID] = &a
	return a, nil
}

func (repo *rosterRepository) GetAssignment(_ context.Context, id string, _ ...core.DBExecutor) (roster.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.assignments[id]; ok {
		return *a, nil
	}
	return roster.Assignment{}, core.NewNotFoundError("assignment", id)
}

func (repo *rosterRepository) ActiveAssignment(_ context.Context, studentID, subjectCourseID, cycleID string, _ ...core.DBExecutor) (roster.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a := repo.active(studentID, subjectCourseID, cycleID); a != nil {
		return *a, nil
	}
	return roster.Assignment{}, core.NewNotFoundError("active assignment of student", studentID)
}

func (repo *rosterRepository) QueryAssignments(_ context.Context, filter roster.QueryFilter, _ ...core.DBExecutor) ([]roster.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	res := make([]roster.Assignment, 0)
	for _, a := range repo.db.assignments {
		if filter.SubjectCourseID != "" && a.SubjectCourseID != filter.SubjectCourseID {
			continue
		}
		if filter.CycleID != "" && a.CycleID != filter.CycleID {
			continue
		}
		if filter.ActiveOnly && !a.Active {
			continue
		}
		res = append(res, *a)
	}
	sortAssignments(res)
	return res, nil
}

func (repo *rosterRepository) FindOrphanedAssignments(_ context.Context, subjectCourseID, courseID, cycleID string, _ ...core.DBExecutor) ([]roster.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	res := make([]roster.Assignment, 0)
	for _, a := range repo.db.assignments {
		if !a.Active || a.SubjectCourseID != subjectCourseID || a.CycleID != cycleID {
			continue
		}
		if enr := repo.db.activeEnrollment(a.StudentID, cycleID); enr == nil || enr.CourseID != courseID {
			res = append(res, *a)
		}
	}
	sortAssignments(res)
	return res, nil
}

func (repo *rosterRepository) DeactivateAssignment(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	a, ok := repo.db.assignments[id]
	if !ok {
		return core.NewNotFoundError("assignment", id)
	}
	a.Active = false
	return nil
}

func sortAssignments(as []roster.Assignment) {
	sort.Slice(as, func(i, j int) bool {
		if as[i].Subgroup != as[j].Subgroup {
			return as[i].Subgroup < as[j].Subgroup
		}
		if !as[i].CreatedAt.Equal(as[j].CreatedAt) {
			return as[i].CreatedAt.Before(as[j].CreatedAt)
		}
		return as[i].ID < as[j].ID
	})
}

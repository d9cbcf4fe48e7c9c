package inmemdb

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/trezcool/boletin/core"
	"github.com/trezcool/boletin/core/period"
	"github.com/trezcool/boletin/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) ActiveCycle(_ context.Context, _ ...core.DBExecutor) (school.Cycle, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, c := range repo.db.cycles {
		if c.Active {
			return *c, nil
		}
	}
	return school.Cycle{}, core.NewNotFoundError("active academic cycle", "")
}

func (repo *schoolRepository) GetCycleByYear(_ context.Context, year int, _ ...core.DBExecutor) (school.Cycle, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, c := range repo.db.cycles {
		if c.Year == year {
			return *c, nil
		}
	}
	return school.Cycle{}, core.NewNotFoundError("academic cycle", strconv.Itoa(year))
}

func (repo *schoolRepository) GetSubjectCourse(_ context.Context, id string, _ ...core.DBExecutor) (school.SubjectCourse, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sc, ok := repo.db.subjectCourses[id]
	if !ok {
		return school.SubjectCourse{}, core.NewNotFoundError("subject-course", id)
	}
	res := *sc
	if subj, ok := repo.db.subjects[sc.SubjectID]; ok {
		res.SubjectName = subj.Name
		res.Rotation = subj.Rotation
	}
	return res, nil
}

func (repo *schoolRepository) ActiveEnrollment(_ context.Context, studentID, cycleID string, _ ...core.DBExecutor) (school.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if enr := repo.db.activeEnrollment(studentID, cycleID); enr != nil {
		return *enr, nil
	}
	return school.Enrollment{}, core.NewNotFoundError("active enrollment of student", studentID)
}

func (repo *schoolRepository) Teaches(_ context.Context, teacherID, subjectCourseID string, _ ...core.DBExecutor) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.db.teachers[subjectCourseID][teacherID], nil
}

func (repo *schoolRepository) IntensificationWindows(_ context.Context, cycleID string, _ ...core.DBExecutor) ([]period.Window, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	windows := make([]period.Window, len(repo.db.windows[cycleID]))
	copy(windows, repo.db.windows[cycleID])
	return windows, nil
}

// caller holds the lock
func (db *DB) activeEnrollment(studentID, cycleID string) *school.Enrollment {
	for _, enr := range db.enrollments {
		if enr.StudentID == studentID && enr.CycleID == cycleID && enr.Active {
			return enr
		}
	}
	return nil
}

// Seeding helpers. They mirror what the admin back-office writes.

// AddCycle stores a cycle; an active one deactivates the others.
func (db *DB) AddCycle(year int, active bool) school.Cycle {
	db.Lock()
	defer db.Unlock()

	if active {
		for _, c := range db.cycles {
			c.Active = false
		}
	}
	c := &school.Cycle{ID: uuid.New().String(), Year: year, Active: active}
	db.cycles[c.ID] = c
	return *c
}

func (db *DB) AddCourse(name string, yearLevel int, division string) school.Course {
	db.Lock()
	defer db.Unlock()

	c := &school.Course{ID: uuid.New().String(), Name: name, YearLevel: yearLevel, Division: division}
	db.courses[c.ID] = c
	return *c
}

func (db *DB) AddSubject(name string, rotation bool) school.Subject {
	db.Lock()
	defer db.Unlock()

	s := &school.Subject{ID: uuid.New().String(), Name: name, Rotation: rotation}
	db.subjects[s.ID] = s
	return *s
}

func (db *DB) AddSubjectCourse(subject school.Subject, courseID, cycleID string, teacherIDs ...string) school.SubjectCourse {
	db.Lock()
	defer db.Unlock()

	sc := &school.SubjectCourse{
		ID:          uuid.New().String(),
		SubjectID:   subject.ID,
		CourseID:    courseID,
		CycleID:     cycleID,
		SubjectName: subject.Name,
		Rotation:    subject.Rotation,
	}
	db.subjectCourses[sc.ID] = sc
	db.teachers[sc.ID] = make(map[string]bool, len(teacherIDs))
	for _, id := range teacherIDs {
		db.teachers[sc.ID][id] = true
	}
	return *sc
}

// Enroll actively enrolls a student, closing any previous active enrollment in the cycle.
func (db *DB) Enroll(studentID, courseID, cycleID string) school.Enrollment {
	db.Lock()
	defer db.Unlock()

	if prev := db.activeEnrollment(studentID, cycleID); prev != nil {
		prev.Active = false
	}
	enr := &school.Enrollment{ID: uuid.New().String(), StudentID: studentID, CourseID: courseID, CycleID: cycleID, Active: true}
	db.enrollments[enr.ID] = enr
	return *enr
}

// Unenroll closes the active enrollment of a student in the cycle.
func (db *DB) Unenroll(studentID, cycleID string) {
	db.Lock()
	defer db.Unlock()

	if enr := db.activeEnrollment(studentID, cycleID); enr != nil {
		enr.Active = false
	}
}

func (db *DB) AddWindow(cycleID string, w period.Window) {
	db.Lock()
	defer db.Unlock()
	db.windows[cycleID] = append(db.windows[cycleID], w)
}

package roster_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/boletin/core"
	"github.com/trezcool/boletin/core/period"
	"github.com/trezcool/boletin/core/roster"
	"github.com/trezcool/boletin/tests"
)

func TestService_Assign(t *testing.T) {
	s := testutil.NewSchool(t)
	ctx := context.Background()
	admin := testutil.Admin()

	course, annual := s.SubjectCourse("Math", false)
	_, rotating := s.SubjectCourse("Workshop", true)
	otherCourse := s.DB.AddCourse("2nd year", 2, "B")

	student := testutil.Student("ana").UserID
	s.DB.Enroll(student, course.ID, s.Cycle.ID)
	rotatingCourseStudent := testutil.Student("beto").UserID
	s.DB.Enroll(rotatingCourseStudent, rotating.CourseID, s.Cycle.ID)
	stranger := testutil.Student("carla").UserID
	s.DB.Enroll(stranger, otherCourse.ID, s.Cycle.ID)
	lastCycle := s.DB.AddCycle(testutil.CycleYear-1, false)
	lastYear := s.DB.AddSubjectCourse(s.DB.AddSubject("Old Math", false), course.ID, lastCycle.ID)

	a, err := s.RosterSvc.Assign(ctx, admin, roster.NewAssignment{StudentID: student, SubjectCourseID: annual.ID, Subgroup: "A"})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, s.Cycle.ID, a.CycleID)
	assert.Equal(t, period.Annual, a.PeriodStart)
	assert.Equal(t, period.Annual, a.PeriodEnd)
	assert.True(t, a.Active)

	r, err := s.RosterSvc.Assign(ctx, testutil.Director(), roster.NewAssignment{StudentID: rotatingCourseStudent, SubjectCourseID: rotating.ID, Subgroup: "B"})
	require.NoError(t, err)
	assert.Equal(t, period.FirstTrimester, r.PeriodStart)
	assert.Empty(t, r.PeriodEnd)

	tests := []struct {
		name   string
		caller core.Caller
		na     roster.NewAssignment
		check  func(error) bool
	}{
		{
			name:   "second active assignment",
			caller: admin,
			na:     roster.NewAssignment{StudentID: student, SubjectCourseID: annual.ID, Subgroup: "B"},
			check:  core.IsConflict,
		},
		{
			name:   "subject-course of another cycle",
			caller: admin,
			na:     roster.NewAssignment{StudentID: student, SubjectCourseID: lastYear.ID, Subgroup: "A"},
			check:  core.IsConflict,
		},
		{
			name:   "enrolled in another course",
			caller: admin,
			na:     roster.NewAssignment{StudentID: stranger, SubjectCourseID: annual.ID, Subgroup: "A"},
			check:  core.IsConflict,
		},
		{
			name:   "not enrolled",
			caller: admin,
			na:     roster.NewAssignment{StudentID: testutil.Student("nobody").UserID, SubjectCourseID: annual.ID, Subgroup: "A"},
			check:  core.IsNotFound,
		},
		{
			name:   "unknown subject-course",
			caller: admin,
			na:     roster.NewAssignment{StudentID: student, SubjectCourseID: "unknown", Subgroup: "A"},
			check:  core.IsNotFound,
		},
		{
			name:   "teacher",
			caller: testutil.Teacher("teacher"),
			na:     roster.NewAssignment{StudentID: stranger, SubjectCourseID: annual.ID, Subgroup: "A"},
			check:  core.IsPermission,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.RosterSvc.Assign(ctx, tt.caller, tt.na)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}

	// a deactivated assignment frees the slot
	require.NoError(t, s.RosterSvc.Deactivate(ctx, admin, a.ID))
	_, err = s.RosterSvc.Assign(ctx, admin, roster.NewAssignment{StudentID: student, SubjectCourseID: annual.ID, Subgroup: "B"})
	assert.NoError(t, err)
}

func TestService_Assign_concurrent(t *testing.T) {
	s := testutil.NewSchool(t)
	ctx := context.Background()
	course, sc := s.SubjectCourse("Math", false)
	student := testutil.Student("ana").UserID
	s.DB.Enroll(student, course.ID, s.Cycle.ID)

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, confl int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.RosterSvc.Assign(ctx, testutil.Admin(), roster.NewAssignment{StudentID: student, SubjectCourseID: sc.ID, Subgroup: "A"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case core.IsConflict(err):
				confl++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, confl)
}

func TestService_FindOrphans(t *testing.T) {
	s := testutil.NewSchool(t)
	ctx := context.Background()
	admin := testutil.Admin()
	course, sc := s.SubjectCourse("Math", false)
	otherCourse := s.DB.AddCourse("2nd year", 2, "B")

	var students []string
	for _, name := range []string{"ana", "beto", "carla"} {
		id := testutil.Student(name).UserID
		s.DB.Enroll(id, course.ID, s.Cycle.ID)
		_, err := s.RosterSvc.Assign(ctx, admin, roster.NewAssignment{StudentID: id, SubjectCourseID: sc.ID, Subgroup: "A"})
		require.NoError(t, err)
		students = append(students, id)
	}

	orphans, err := s.RosterSvc.FindOrphans(ctx, admin, sc.ID)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	s.DB.Enroll(students[0], otherCourse.ID, s.Cycle.ID) // moved
	s.DB.Unenroll(students[1], s.Cycle.ID)               // left the school

	orphans, err = s.RosterSvc.FindOrphans(ctx, admin, sc.ID)
	require.NoError(t, err)
	got := make([]string, 0, len(orphans))
	for _, o := range orphans {
		got = append(got, o.StudentID)
	}
	assert.ElementsMatch(t, students[:2], got)

	_, err = s.RosterSvc.FindOrphans(ctx, testutil.Teacher("teacher"), sc.ID)
	assert.True(t, core.IsPermission(err))
	_, err = s.RosterSvc.FindOrphans(ctx, admin, "unknown")
	assert.True(t, core.IsNotFound(err))

	// reconciling removes them from the audit
	for _, o := range orphans {
		require.NoError(t, s.RosterSvc.Deactivate(ctx, admin, o.ID))
	}
	orphans, err = s.RosterSvc.FindOrphans(ctx, admin, sc.ID)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestService_Query(t *testing.T) {
	s := testutil.NewSchool(t)
	ctx := context.Background()
	admin := testutil.Admin()
	teacher := testutil.Teacher("teacher")
	course, sc := s.SubjectCourse("Workshop", true, teacher.UserID)

	student := testutil.Student("ana").UserID
	s.DB.Enroll(student, course.ID, s.Cycle.ID)
	a, err := s.RosterSvc.Assign(ctx, admin, roster.NewAssignment{StudentID: student, SubjectCourseID: sc.ID, Subgroup: "A"})
	require.NoError(t, err)

	list, err := s.RosterSvc.Query(ctx, teacher, sc.ID, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	list, err = s.RosterSvc.Query(ctx, teacher, sc.ID, period.ThirdTrimester)
	require.NoError(t, err)
	assert.Len(t, list, 1, "open rotation covers later trimesters")

	_, err = s.RosterSvc.Query(ctx, teacher, sc.ID, "4to_trimestre")
	assert.IsType(t, &core.ValidationError{}, err)

	_, err = s.RosterSvc.Query(ctx, testutil.Teacher("other"), sc.ID, "")
	assert.True(t, core.IsPermission(err))
}

func TestAssignment_Covers(t *testing.T) {
	tests := []struct {
		name      string
		a         roster.Assignment
		trimester string
		want      bool
	}{
		{"annual", roster.Assignment{PeriodStart: period.Annual, PeriodEnd: period.Annual}, period.SecondTrimester, true},
		{"open rotation", roster.Assignment{PeriodStart: period.FirstTrimester}, period.ThirdTrimester, true},
		{"before start", roster.Assignment{PeriodStart: period.SecondTrimester}, period.FirstTrimester, false},
		{"closed rotation inside", roster.Assignment{PeriodStart: period.FirstTrimester, PeriodEnd: period.SecondTrimester}, period.SecondTrimester, true},
		{"closed rotation after", roster.Assignment{PeriodStart: period.FirstTrimester, PeriodEnd: period.FirstTrimester}, period.SecondTrimester, false},
		{"unknown trimester", roster.Assignment{PeriodStart: period.FirstTrimester}, "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Covers(tt.trimester))
		})
	}
}

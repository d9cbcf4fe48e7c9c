package content_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/boletin/core"
	"github.com/trezcool/boletin/core/content"
	"github.com/trezcool/boletin/core/period"
	"github.com/trezcool/boletin/tests"
)

func newContent(scID, title, date string) content.NewContent {
	return content.NewContent{
		SubjectCourseID: scID,
		Title:           title,
		Description:     "description of " + title,
		EvaluationType:  content.EvalNumeric,
		ClassDate:       date,
	}
}

func TestService_ResolvePeriod(t *testing.T) {
	s := testutil.NewSchool(t)
	ctx := context.Background()

	got, err := s.ContentSvc.ResolvePeriod(ctx, testutil.Date(t, "2024-04-15"), 0)
	require.NoError(t, err)
	assert.Equal(t, period.Period{Bimester: 1, Quarter: 1}, got)

	got, err = s.ContentSvc.ResolvePeriod(ctx, testutil.Date(t, "2024-12-05"), testutil.CycleYear)
	require.NoError(t, err)
	assert.Equal(t, period.Period{Bimester: 4, Quarter: 2, IsIntensification: true}, got)

	_, err = s.ContentSvc.ResolvePeriod(ctx, testutil.Date(t, "2023-04-15"), 0)
	assert.True(t, period.IsInvalidPeriod(err), "date outside the active cycle")

	_, err = s.ContentSvc.ResolvePeriod(ctx, testutil.Date(t, "2019-04-15"), 2019)
	assert.True(t, core.IsNotFound(err), "unknown cycle year")
}

func TestService_Create(t *testing.T) {
	s := testutil.NewSchool(t)
	ctx := context.Background()
	teacher := testutil.Teacher("teacher")
	other := testutil.Teacher("other")
	_, sc := s.SubjectCourse("Math", false, teacher.UserID)

	content.NowFunc = func() time.Time { return time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC) }
	defer func() { content.NowFunc = time.Now }()

	item, err := s.ContentSvc.Create(ctx, teacher, newContent(sc.ID, "Fractions", "2024-04-15"))
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, 1, item.Bimester)
	assert.Equal(t, 1, item.Order)
	assert.False(t, item.Intensification)
	assert.True(t, item.Active)
	assert.Equal(t, content.NowFunc(), item.CreatedAt)

	item, err = s.ContentSvc.Create(ctx, teacher, newContent(sc.ID, "Review", "2024-08-05"))
	require.NoError(t, err)
	assert.Equal(t, 2, item.Bimester, "intensification remaps to the quarter's last bimester")
	assert.True(t, item.Intensification)
	assert.Equal(t, 1, item.Order)

	_, err = s.ContentSvc.Create(ctx, other, newContent(sc.ID, "Nope", "2024-04-15"))
	assert.True(t, core.IsPermission(err))

	_, err = s.ContentSvc.Create(ctx, testutil.Student("student"), newContent(sc.ID, "Nope", "2024-04-15"))
	assert.True(t, core.IsPermission(err))

	_, err = s.ContentSvc.Create(ctx, testutil.Director(), newContent(sc.ID, "Directed", "2024-04-16"))
	assert.NoError(t, err, "directors manage every subject-course")

	_, err = s.ContentSvc.Create(ctx, teacher, newContent(sc.ID, "Last year", "2023-04-15"))
	assert.True(t, period.IsInvalidPeriod(err))

	_, err = s.ContentSvc.Create(ctx, teacher, newContent("unknown", "Nope", "2024-04-15"))
	assert.True(t, core.IsNotFound(err))

	lastCycle := s.DB.AddCycle(testutil.CycleYear-1, false)
	lastYear := s.DB.AddSubjectCourse(s.DB.AddSubject("Old Math", false), sc.CourseID, lastCycle.ID, teacher.UserID)
	_, err = s.ContentSvc.Create(ctx, teacher, newContent(lastYear.ID, "Late", "2024-04-15"))
	assert.True(t, core.IsConflict(err), "subject-course of another cycle: %v", err)
}

func TestService_Duplicate(t *testing.T) {
	s := testutil.NewSchool(t)
	ctx := context.Background()
	teacher := testutil.Teacher("teacher")
	other := testutil.Teacher("other")
	_, src := s.SubjectCourse("Math", false, teacher.UserID)
	_, dst := s.SubjectCourse("Physics", false, teacher.UserID, other.UserID)

	orig, err := s.ContentSvc.Create(ctx, teacher, content.NewContent{
		SubjectCourseID: src.ID,
		Title:           "Vectors",
		Description:     "intro to vectors",
		EvaluationType:  content.EvalQualitative,
		ClassDate:       "2024-04-10",
	})
	require.NoError(t, err)
	_, err = s.ContentSvc.Create(ctx, teacher, newContent(dst.ID, "Existing", "2024-06-03"))
	require.NoError(t, err)

	dc := content.DuplicateContent{SourceID: orig.ID, SubjectCourseID: dst.ID, Title: "Vectors again", ClassDate: "2024-06-10"}
	first, err := s.ContentSvc.Duplicate(ctx, teacher, dc)
	require.NoError(t, err)
	assert.NotEqual(t, orig.ID, first.ID)
	assert.Equal(t, dst.ID, first.SubjectCourseID)
	assert.Equal(t, 2, first.Bimester)
	assert.Equal(t, 2, first.Order)
	assert.Equal(t, "Vectors again", first.Title)
	assert.Equal(t, orig.Description, first.Description)
	assert.Equal(t, orig.EvaluationType, first.EvaluationType)

	// not idempotent
	second, err := s.ContentSvc.Duplicate(ctx, teacher, dc)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 3, second.Order)

	// other teaches the destination but not the source
	_, err = s.ContentSvc.Duplicate(ctx, other, dc)
	assert.True(t, core.IsPermission(err))

	_, err = s.ContentSvc.Duplicate(ctx, teacher, content.DuplicateContent{SourceID: "unknown", SubjectCourseID: dst.ID, Title: "x", ClassDate: "2024-06-10"})
	assert.True(t, core.IsNotFound(err))

	dc.ClassDate = "2025-03-10"
	_, err = s.ContentSvc.Duplicate(ctx, teacher, dc)
	assert.True(t, period.IsInvalidPeriod(err))
	dc.ClassDate = "2024-06-10"

	lastCycle := s.DB.AddCycle(testutil.CycleYear-1, false)
	lastYear := s.DB.AddSubjectCourse(s.DB.AddSubject("Old Physics", false), dst.CourseID, lastCycle.ID, teacher.UserID)
	_, err = s.ContentSvc.Duplicate(ctx, teacher, content.DuplicateContent{SourceID: orig.ID, SubjectCourseID: lastYear.ID, Title: "x", ClassDate: "2024-06-10"})
	assert.True(t, core.IsConflict(err), "destination of another cycle: %v", err)

	// deactivated items stay readable but cannot be copied
	require.NoError(t, s.ContentSvc.Deactivate(ctx, teacher, orig.ID))
	_, err = s.ContentSvc.Get(ctx, teacher, orig.ID)
	assert.NoError(t, err)
	_, err = s.ContentSvc.Duplicate(ctx, teacher, dc)
	assert.True(t, core.IsNotFound(err), "deactivated source: %v", err)
}

func TestService_Duplicate_concurrentOrder(t *testing.T) {
	s := testutil.NewSchool(t)
	ctx := context.Background()
	teacher := testutil.Teacher("teacher")
	_, sc := s.SubjectCourse("Math", false, teacher.UserID)

	orig, err := s.ContentSvc.Create(ctx, teacher, newContent(sc.ID, "Seed", "2024-03-04"))
	require.NoError(t, err)

	const n = 10
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		orders = make(map[int]bool, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item, err := s.ContentSvc.Duplicate(ctx, teacher, content.DuplicateContent{
				SourceID: orig.ID, SubjectCourseID: sc.ID, Title: "Copy", ClassDate: "2024-04-01",
			})
			if assert.NoError(t, err) {
				mu.Lock()
				orders[item.Order] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, orders, n, "orders are unique")
	for o := 2; o <= n+1; o++ {
		assert.True(t, orders[o], "order %d", o)
	}
}

func TestService_QueryAndDeactivate(t *testing.T) {
	s := testutil.NewSchool(t)
	ctx := context.Background()
	teacher := testutil.Teacher("teacher")
	_, sc := s.SubjectCourse("Math", false, teacher.UserID)

	a, err := s.ContentSvc.Create(ctx, teacher, newContent(sc.ID, "A", "2024-04-01"))
	require.NoError(t, err)
	b, err := s.ContentSvc.Create(ctx, teacher, newContent(sc.ID, "B", "2024-06-01"))
	require.NoError(t, err)
	c, err := s.ContentSvc.Create(ctx, teacher, newContent(sc.ID, "C", "2024-04-02"))
	require.NoError(t, err)

	items, err := s.ContentSvc.Query(ctx, teacher, content.QueryFilter{SubjectCourseID: sc.ID}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, ids(items))

	items, err = s.ContentSvc.Query(ctx, teacher, content.QueryFilter{SubjectCourseID: sc.ID, Bimester: 1},
		[]core.DBOrdering{{Field: "order", Ascending: false}, {Field: "bogus", Ascending: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, a.ID}, ids(items))

	_, err = s.ContentSvc.Query(ctx, teacher, content.QueryFilter{}, nil)
	assert.IsType(t, &core.ValidationError{}, err)
	_, err = s.ContentSvc.Query(ctx, teacher, content.QueryFilter{SubjectCourseID: sc.ID, Bimester: 5}, nil)
	assert.IsType(t, &core.ValidationError{}, err)

	require.NoError(t, s.ContentSvc.Deactivate(ctx, teacher, a.ID))
	items, err = s.ContentSvc.Query(ctx, teacher, content.QueryFilter{SubjectCourseID: sc.ID}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, b.ID}, ids(items))

	items, err = s.ContentSvc.Query(ctx, teacher, content.QueryFilter{SubjectCourseID: sc.ID, IncludeInactive: true}, nil)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	assert.True(t, core.IsPermission(s.ContentSvc.Deactivate(ctx, testutil.Teacher("other"), b.ID)))
	assert.True(t, core.IsNotFound(s.ContentSvc.Deactivate(ctx, teacher, "unknown")))
}

func TestNewContent_Validate(t *testing.T) {
	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)

	nc := content.NewContent{SubjectCourseID: " sc ", Title: " Title ", EvaluationType: "NUMERIC", ClassDate: "2024-04-01"}
	require.NoError(t, nc.Validate(validate))
	assert.Equal(t, "sc", nc.SubjectCourseID)
	assert.Equal(t, content.EvalNumeric, nc.EvaluationType)

	nc = content.NewContent{SubjectCourseID: "sc", Title: "T", EvaluationType: "graded", ClassDate: "01/04/2024"}
	err := nc.Validate(validate)
	require.Error(t, err)
	fields := make(map[string]string)
	for _, fe := range err.(validator.ValidationErrors) {
		fields[fe.Field()] = fe.Translate(translator)
	}
	assert.Contains(t, fields, "evaluation_type")
	assert.Equal(t, "must be a date formatted as YYYY-MM-DD", fields["class_date"])
}

func ids(items []content.ContentItem) []string {
	res := make([]string, 0, len(items))
	for _, it := range items {
		res = append(res, it.ID)
	}
	return res
}

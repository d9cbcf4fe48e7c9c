package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/boletin/core/content"
	"github.com/trezcool/boletin/tests"
)

func Test_contentApi(t *testing.T) {
	s, server := setup(t)
	teacher := testutil.Teacher("teacher")
	_, sc := s.SubjectCourse("Math", false, teacher.UserID)
	_, other := s.SubjectCourse("Art", false)
	teacherToken := getToken(t, s.Conf, teacher)
	studentToken := getToken(t, s.Conf, testutil.Student("ana"))

	// create
	body := marchallObj(t, content.NewContent{
		SubjectCourseID: sc.ID,
		Title:           "Fractions",
		Description:     "halves and quarters",
		EvaluationType:  "numeric",
		ClassDate:       "2024-04-15",
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/contents", teacherToken, body)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created content.ContentItem
	env := decode(t, rec, &created)
	assert.True(t, env.Success)
	assert.Equal(t, 1, created.Bimester)
	assert.Equal(t, 1, created.Order)

	runTests(t, server, []httpTest{
		{
			name:     "create: invalid input",
			method:   http.MethodPost,
			path:     "/v1/contents",
			body:     []byte(`{"subject_course_id":"` + sc.ID + `","title":"","evaluation_type":"graded","class_date":"2024-04-15"}`),
			token:    teacherToken,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "create: not my subject",
			method:   http.MethodPost,
			path:     "/v1/contents",
			body:     marchallObj(t, content.NewContent{SubjectCourseID: other.ID, Title: "x", EvaluationType: "numeric", ClassDate: "2024-04-15"}),
			token:    teacherToken,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "create: student",
			method:   http.MethodPost,
			path:     "/v1/contents",
			body:     body,
			token:    studentToken,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "create: date outside cycle",
			method:   http.MethodPost,
			path:     "/v1/contents",
			body:     marchallObj(t, content.NewContent{SubjectCourseID: sc.ID, Title: "x", EvaluationType: "numeric", ClassDate: "2025-04-15"}),
			token:    teacherToken,
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "duplicate: unknown source",
			method:   http.MethodPost,
			path:     "/v1/contents/unknown/duplicate",
			body:     []byte(`{"subject_course_id":"` + sc.ID + `","title":"copy","class_date":"2024-04-16"}`),
			token:    teacherToken,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "duplicate: missing fields",
			method:   http.MethodPost,
			path:     "/v1/contents/" + created.ID + "/duplicate",
			body:     []byte(`{}`),
			token:    teacherToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"subject_course_id":"this field is required","title":"this field is required","class_date":"this field is required"}`),
		},
		{
			name:     "query: missing subject-course",
			method:   http.MethodGet,
			path:     "/v1/contents",
			token:    teacherToken,
			wantCode: http.StatusBadRequest,
		},
	})

	// duplicate twice: two new items with increasing order
	dup := []byte(`{"subject_course_id":"` + sc.ID + `","title":"Fractions II","class_date":"2024-05-02"}`)
	var orders []int
	for i := 0; i < 2; i++ {
		req, rec = newAuthRequest(http.MethodPost, "/v1/contents/"+created.ID+"/duplicate", teacherToken, dup)
		server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var item content.ContentItem
		decode(t, rec, &item)
		assert.Equal(t, created.Description, item.Description)
		orders = append(orders, item.Order)
	}
	assert.Equal(t, []int{2, 3}, orders)

	// query
	req, rec = newAuthRequest(http.MethodGet, "/v1/contents?subject_course_id="+sc.ID+"&bimester=1&ordering=-order", teacherToken)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var items []content.ContentItem
	decode(t, rec, &items)
	require.Len(t, items, 3)
	assert.Equal(t, 3, items[0].Order)
	assert.Equal(t, created.ID, items[2].ID)

	// deactivate
	runTests(t, server, []httpTest{
		{name: "delete: unknown", method: http.MethodDelete, path: "/v1/contents/unknown", token: teacherToken, wantCode: http.StatusNotFound},
		{name: "delete", method: http.MethodDelete, path: "/v1/contents/" + created.ID, token: teacherToken, wantCode: http.StatusOK},
	})
	req, rec = newAuthRequest(http.MethodGet, "/v1/contents/"+created.ID, teacherToken)
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var deactivated content.ContentItem
	decode(t, rec, &deactivated)
	assert.False(t, deactivated.Active)
}

package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaller_roles(t *testing.T) {
	tests := []struct {
		name                  string
		roles                 []string
		admin, teacher, staff bool
	}{
		{name: "admin", roles: []string{RoleAdmin}, admin: true, staff: true},
		{name: "director", roles: []string{RoleAdminDirector}, admin: true, staff: true},
		{name: "teacher", roles: []string{RoleTeacher}, teacher: true, staff: true},
		{name: "student", roles: []string{RoleStudent}},
		{name: "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Caller{Roles: tt.roles}
			assert.Equal(t, tt.admin, c.IsAdmin())
			assert.Equal(t, tt.teacher, c.IsTeacher())
			assert.Equal(t, tt.staff, c.IsStaff())
		})
	}
}

func TestErrors(t *testing.T) {
	err := errors.Wrap(NewNotFoundError("content", "42"), "finding content")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsConflict(err))
	assert.Equal(t, `finding content: content "42" not found`, err.Error())

	err = errors.Wrap(NewPermissionError("you do not teach %q", "x"), "checking")
	assert.True(t, IsPermission(err))
	assert.Equal(t, `checking: permission denied: you do not teach "x"`, err.Error())

	assert.True(t, IsConflict(NewConflictError("taken")))
	assert.True(t, IsShutdown(errors.WithStack(NewShutdownError("bye"))))
	assert.Equal(t, "invalid input", NewValidationError(nil).Error())
}

func TestFilterOrderings(t *testing.T) {
	got := FilterOrderings(
		[]DBOrdering{{Field: "title", Ascending: true}, {Field: "title; DROP TABLE x"}, {Field: "order"}},
		"title", "order",
	)
	assert.Equal(t, []DBOrdering{{Field: "title", Ascending: true}, {Field: "order"}}, got)
	assert.Equal(t, "order DESC", got[1].String())
}

func TestParseAddressList(t *testing.T) {
	got, err := parseAddressList(" ")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseAddressList("Secretary <secretary@school.test>, director@school.test")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Secretary", got[0].Name)
	assert.Equal(t, "director@school.test", got[1].Address)

	_, err = parseAddressList("not an address")
	assert.Error(t, err)
}

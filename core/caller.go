package core

import "strings"

// Roles
const (
	// Admin
	RoleAdmin         = "admin:"
	RoleAdminDirector = "admin:director"

	// Teacher
	RoleTeacher = "teacher:"

	// Student
	RoleStudent = "student:"
)

// Caller is the identity a request acts on behalf of.
// It is built once per request (from the auth token) and handed down to services explicitly.
type Caller struct {
	UserID   string
	Username string
	Email    string
	Roles    []string
}

func (c Caller) RoleStartsWith(prefix string) bool {
	for _, role := range c.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

// IsAdmin is true for admins and directors.
func (c Caller) IsAdmin() bool {
	return c.RoleStartsWith(RoleAdmin)
}

func (c Caller) IsTeacher() bool {
	return c.RoleStartsWith(RoleTeacher)
}

// IsStaff is true for teachers and admins (directors included).
func (c Caller) IsStaff() bool {
	return c.IsAdmin() || c.IsTeacher()
}

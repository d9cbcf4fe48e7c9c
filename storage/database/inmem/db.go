// Package inmemdb keeps every table in memory. It backs tests and local experiments.
package inmemdb

import (
	"sync"

	"github.com/trezcool/boletin/core/content"
	"github.com/trezcool/boletin/core/period"
	"github.com/trezcool/boletin/core/roster"
	"github.com/trezcool/boletin/core/school"
)

type (
	DB struct {
		sync.RWMutex

		cycles         map[string]*school.Cycle
		courses        map[string]*school.Course
		subjects       map[string]*school.Subject
		subjectCourses map[string]*school.SubjectCourse
		teachers       map[string]map[string]bool // {subjectCourseID: {teacherID}}
		enrollments    map[string]*school.Enrollment
		windows        map[string][]period.Window // {cycleID: windows}
		contents       map[string]*content.ContentItem
		assignments    map[string]*roster.Assignment
	}
)

func Open() *DB {
	return &DB{
		cycles:         make(map[string]*school.Cycle),
		courses:        make(map[string]*school.Course),
		subjects:       make(map[string]*school.Subject),
		subjectCourses: make(map[string]*school.SubjectCourse),
		teachers:       make(map[string]map[string]bool),
		enrollments:    make(map[string]*school.Enrollment),
		windows:        make(map[string][]period.Window),
		contents:       make(map[string]*content.ContentItem),
		assignments:    make(map[string]*roster.Assignment),
	}
}

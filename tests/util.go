// Package testutil builds an in-memory school for tests.
package testutil

import (
	"net/mail"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/boletin/core"
	"github.com/trezcool/boletin/core/content"
	"github.com/trezcool/boletin/core/period"
	"github.com/trezcool/boletin/core/roster"
	"github.com/trezcool/boletin/core/school"
	inmemdb "github.com/trezcool/boletin/storage/database/inmem"
)

// CycleYear is the year of the active cycle NewSchool creates.
const CycleYear = 2024

// NewConfig returns the config tests run with.
func NewConfig() *core.Config {
	return &core.Config{
		Env:              "TEST",
		TestMode:         true,
		AppName:          "Boletin",
		SecretKey:        "test-secret",
		DefaultFromEmail: mail.Address{Name: "Boletin", Address: "no-reply@boletin.test"},
		AuditRecipients:  []mail.Address{{Name: "Secretary", Address: "secretary@boletin.test"}},
		Server: core.ServerConfig{
			JWTExpirationDelta: time.Hour,
			DisableReqLogs:     true,
		},
		Calendar: core.CalendarConfig{Ranges: "3-5:1,6-7:2,8-10:3", Fallback: 4},
	}
}

// School is an in-memory school with an active cycle and its services.
type School struct {
	DB    *inmemdb.DB
	Conf  *core.Config
	Cycle school.Cycle

	SchoolSvc  *school.Service
	ContentSvc *content.Service
	RosterSvc  *roster.Service
}

// NewSchool opens an in-memory DB with an active 2024 cycle and intensification windows
// on 2024-08-01..16 (first quarter) and 2024-12-02..20 (second quarter).
func NewSchool(t *testing.T) *School {
	t.Helper()

	conf := NewConfig()
	db := inmemdb.Open()
	cycle := db.AddCycle(CycleYear, true)
	db.AddWindow(cycle.ID, period.Window{Quarter: period.FirstQuarter, Start: Date(t, "2024-08-01"), End: Date(t, "2024-08-16")})
	db.AddWindow(cycle.ID, period.Window{Quarter: period.SecondQuarter, Start: Date(t, "2024-12-02"), End: Date(t, "2024-12-20")})

	schoolSvc, err := school.NewService(inmemdb.NewSchoolRepository(db), conf)
	if err != nil {
		t.Fatalf("school.NewService() failed: %v", err)
	}
	return &School{
		DB:         db,
		Conf:       conf,
		Cycle:      cycle,
		SchoolSvc:  schoolSvc,
		ContentSvc: content.NewService(inmemdb.NewContentRepository(db), schoolSvc),
		RosterSvc:  roster.NewService(inmemdb.NewRosterRepository(db), schoolSvc),
	}
}

// SubjectCourse creates a course and a subject taught in it by teacherIDs.
func (s *School) SubjectCourse(name string, rotation bool, teacherIDs ...string) (school.Course, school.SubjectCourse) {
	course := s.DB.AddCourse("1st year "+name, 1, "A")
	subject := s.DB.AddSubject(name, rotation)
	return course, s.DB.AddSubjectCourse(subject, course.ID, s.Cycle.ID, teacherIDs...)
}

func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(core.DateLayout, s)
	if err != nil {
		t.Fatalf("Date() failed: %v", err)
	}
	return d
}

func Admin() core.Caller {
	return core.Caller{UserID: uuid.New().String(), Username: "admin", Email: "admin@boletin.test", Roles: []string{core.RoleAdmin}}
}

func Director() core.Caller {
	return core.Caller{UserID: uuid.New().String(), Username: "director", Email: "director@boletin.test", Roles: []string{core.RoleAdminDirector}}
}

func Teacher(username string) core.Caller {
	return core.Caller{UserID: uuid.New().String(), Username: username, Email: username + "@boletin.test", Roles: []string{core.RoleTeacher}}
}

func Student(username string) core.Caller {
	return core.Caller{UserID: uuid.New().String(), Username: username, Email: username + "@boletin.test", Roles: []string{core.RoleStudent}}
}

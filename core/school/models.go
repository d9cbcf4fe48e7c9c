package school

type (
	// Cycle is an academic year. Exactly one cycle is active at a time.
	Cycle struct {
		ID     string `json:"id" db:"id"`
		Year   int    `json:"year" db:"year"`
		Active bool   `json:"active" db:"active"`
	}

	Course struct {
		ID        string `json:"id" db:"id"`
		Name      string `json:"name" db:"name"`
		YearLevel int    `json:"year_level" db:"year_level"`
		Division  string `json:"division" db:"division"`
	}

	Subject struct {
		ID       string `json:"id" db:"id"`
		Name     string `json:"name" db:"name"`
		Rotation bool   `json:"rotation" db:"rotation"` // students rotate between sub-groups every trimester
	}

	// SubjectCourse is a subject as taught to one course during one cycle.
	SubjectCourse struct {
		ID          string `json:"id" db:"id"`
		SubjectID   string `json:"subject_id" db:"subject_id"`
		CourseID    string `json:"course_id" db:"course_id"`
		CycleID     string `json:"cycle_id" db:"cycle_id"`
		SubjectName string `json:"subject_name" db:"subject_name"`
		Rotation    bool   `json:"rotation" db:"rotation"`
	}

	// Enrollment places a student in a course for a cycle. At most one is active per student and cycle.
	Enrollment struct {
		ID        string `json:"id" db:"id"`
		StudentID string `json:"student_id" db:"student_id"`
		CourseID  string `json:"course_id" db:"course_id"`
		CycleID   string `json:"cycle_id" db:"cycle_id"`
		Active    bool   `json:"active" db:"active"`
	}
)

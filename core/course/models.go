package course

import (
	"time"

	"github.com/aulaproject/aula/core"
)

// Status is the canonical outcome of a student on one exercise.
type Status string

const (
	StatusGreen  Status = "GREEN"
	StatusYellow Status = "YELLOW"
	StatusRed    Status = "RED"

	// StatusUnrecognized is never stored; it only flags rejected input tokens.
	StatusUnrecognized Status = "UNRECOGNIZED"
)

type Subject struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	TeacherID string    `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Enrollment links one student to one subject; at most one per pair.
// The student fields are filled in from the linked user record.
type Enrollment struct {
	ID               string    `json:"id"`
	SubjectID        string    `json:"subject_id"`
	StudentID        string    `json:"student_id"`
	StudentEmail     string    `json:"student_email"`
	StudentFirstName string    `json:"student_first_name"`
	StudentLastName  string    `json:"student_last_name"`
	CreatedAt        time.Time `json:"created_at"` // UTC
}

// Exercise is a gradable unit within a subject. Order is assigned once at
// creation (previous exercise count + 1) and never renumbered.
type Exercise struct {
	ID        string `json:"id"`
	SubjectID string `json:"subject_id"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
}

type Result struct {
	ID           string    `json:"id"`
	EnrollmentID string    `json:"enrollment_id"`
	ExerciseID   string    `json:"exercise_id"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required,subjectcode"`
}

func (ns *NewSubject) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code)
	return core.Validate.Struct(ns)
}

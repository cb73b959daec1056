package course

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/aulaproject/aula/core"
	"github.com/aulaproject/aula/core/user"
)

var (
	// errors
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrCodeExists         = errors.New("a subject with this code already exists")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrExerciseNotFound   = errors.New("exercise not found")
	ErrResultNotFound     = errors.New("result not found")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string, exec ...core.DBExecutor) error
		CreateSubject(ctx context.Context, subj Subject, exec ...core.DBExecutor) (Subject, error)
		GetSubjectByID(ctx context.Context, id string, exec ...core.DBExecutor) (Subject, error)
		GetSubjectByCode(ctx context.Context, code string, exec ...core.DBExecutor) (Subject, error)
		QuerySubjectsByTeacher(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]Subject, error)

		CreateEnrollment(ctx context.Context, enr Enrollment, exec ...core.DBExecutor) (Enrollment, error)
		GetEnrollment(ctx context.Context, subjectID, studentID string, exec ...core.DBExecutor) (Enrollment, error)
		GetEnrollmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (Enrollment, error)
		// QueryEnrollments returns a subject's enrollments ordered by student
		// first name, last name, email.
		QueryEnrollments(ctx context.Context, subjectID string, exec ...core.DBExecutor) ([]Enrollment, error)
		QueryStudentEnrollments(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]Enrollment, error)

		CreateExercise(ctx context.Context, ex Exercise, exec ...core.DBExecutor) (Exercise, error)
		// QueryExercises returns a subject's exercises ordered by (order, id).
		QueryExercises(ctx context.Context, subjectID string, exec ...core.DBExecutor) ([]Exercise, error)
		CountExercises(ctx context.Context, subjectID string, exec ...core.DBExecutor) (int, error)

		CreateResult(ctx context.Context, res Result, exec ...core.DBExecutor) (Result, error)
		GetResult(ctx context.Context, enrollmentID, exerciseID string, exec ...core.DBExecutor) (Result, error)
		UpdateResultStatus(ctx context.Context, id string, status Status, exec ...core.DBExecutor) error
		QueryResults(ctx context.Context, enrollmentID string, exec ...core.DBExecutor) ([]Result, error)
		CountResultStatuses(ctx context.Context, enrollmentID string, exec ...core.DBExecutor) (green, yellow, red int, err error)
	}

	Service struct {
		db     core.DB
		repo   Repository
		users  *user.Service
		mailer core.EmailService
		logger core.Logger
	}
)

func NewService(db core.DB, repo Repository, users *user.Service, mailer core.EmailService, logger core.Logger) *Service {
	return &Service{
		db:     db,
		repo:   repo,
		users:  users,
		mailer: mailer,
		logger: logger,
	}
}

func (svc *Service) CreateSubject(ctx context.Context, ns NewSubject, teacher user.User) (Subject, error) {
	if err := svc.repo.CheckCodeUniqueness(ctx, ns.Code); err != nil {
		if err == ErrCodeExists {
			return Subject{}, core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return Subject{}, err
	}
	return svc.repo.CreateSubject(ctx, Subject{
		ID:        uuid.New().String(),
		Name:      ns.Name,
		Code:      ns.Code,
		TeacherID: teacher.ID,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) GetSubject(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *Service) GetSubjectByCode(ctx context.Context, code string) (Subject, error) {
	return svc.repo.GetSubjectByCode(ctx, core.CleanString(code))
}

func (svc *Service) QueryTeacherSubjects(ctx context.Context, teacherID string) ([]Subject, error) {
	return svc.repo.QuerySubjectsByTeacher(ctx, teacherID)
}

func (svc *Service) QueryEnrollments(ctx context.Context, subj Subject) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx, subj.ID)
}

// Enroll registers one existing student into a subject. A duplicate
// enrollment is not an error: the existing record is returned with
// created=false, mirroring the bulk CSV semantics.
func (svc *Service) Enroll(ctx context.Context, subj Subject, email string) (enr Enrollment, created bool, err error) {
	email = core.CleanString(email, true /* lower */)

	student, err := svc.users.GetByEmail(ctx, email)
	if err != nil {
		if err == user.ErrNotFound {
			return Enrollment{}, false, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return Enrollment{}, false, err
	}

	enr, err = svc.repo.GetEnrollment(ctx, subj.ID, student.ID)
	if err == nil {
		return enr, false, nil
	}
	if err != ErrEnrollmentNotFound {
		return Enrollment{}, false, err
	}

	enr, err = svc.createEnrollment(ctx, subj, student)
	return enr, err == nil, err
}

func (svc *Service) createEnrollment(ctx context.Context, subj Subject, student user.User, exec ...core.DBExecutor) (Enrollment, error) {
	return svc.repo.CreateEnrollment(ctx, Enrollment{
		ID:               uuid.New().String(),
		SubjectID:        subj.ID,
		StudentID:        student.ID,
		StudentEmail:     student.Email,
		StudentFirstName: student.FirstName,
		StudentLastName:  student.LastName,
		CreatedAt:        time.Now().UTC(),
	}, exec...)
}

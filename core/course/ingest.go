package course

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/aulaproject/aula/core"
	"github.com/aulaproject/aula/core/user"
)

// row error messages
const (
	errEmptyEmail     = "empty email"
	errInvalidColumns = "invalid data in required columns"
)

// RowError is a non-fatal failure tied to one input row. It is data, not
// control flow: callers must not infer overall failure from a non-empty list.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type EnrollmentSummary struct {
	Created int        `json:"created"`
	Existed int        `json:"existed"`
	Errors  []RowError `json:"errors"`
}

type ResultSummary struct {
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Skipped int        `json:"skipped"`
	Errors  []RowError `json:"errors"`
}

// ImportEnrollments ingests an enrollment CSV (required column `email`,
// optional `first_name`/`last_name`) into the subject. Unknown students are
// created on the fly. Each row runs in its own transaction; no row aborts
// the batch. The only fatal failure is a *SchemaError.
//
// Concurrent imports into the same subject are not mutually excluded; the
// resolve-or-create sequences can race. Accepted for this low-frequency,
// admin-driven workflow.
func (svc *Service) ImportEnrollments(ctx context.Context, subj Subject, file []byte) (EnrollmentSummary, error) {
	f, err := newCSVFile(file, "email")
	if err != nil {
		return EnrollmentSummary{}, err
	}

	sum := EnrollmentSummary{Errors: []RowError{}}
	for {
		row, ok := f.Next()
		if !ok {
			break
		}
		if row.Err != nil {
			sum.Errors = append(sum.Errors, RowError{Row: row.Num, Error: fmt.Sprintf("malformed row: %v", row.Err)})
			continue
		}

		email := core.CleanString(row.Get("email"), true /* lower */)
		if email == "" {
			sum.Errors = append(sum.Errors, RowError{Row: row.Num, Error: errEmptyEmail})
			continue
		}
		firstName := row.Get("first_name")
		lastName := row.Get("last_name")

		created, err := svc.enrollRow(ctx, subj, email, firstName, lastName)
		if err != nil {
			sum.Errors = append(sum.Errors, RowError{Row: row.Num, Error: err.Error()})
			continue
		}
		if created {
			sum.Created++
		} else {
			sum.Existed++
		}
	}
	return sum, nil
}

// enrollRow resolves or creates the student and their enrollment within one
// transaction, so a mid-row failure never leaves the row half-written.
func (svc *Service) enrollRow(ctx context.Context, subj Subject, email, firstName, lastName string) (created bool, err error) {
	tx, err := svc.db.Begin(ctx)
	if err != nil {
		return false, errors.Wrap(err, "beginning row transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	student, err := svc.users.GetByEmail(ctx, email, tx)
	switch err {
	case nil:
	case user.ErrNotFound:
		if student, err = svc.users.CreateStudent(ctx, email, firstName, lastName, tx); err != nil {
			return false, err
		}
	default:
		return false, err
	}

	// update stored names in place when provided and different
	if student.ApplyNames(firstName, lastName) {
		if student, err = svc.users.Update(ctx, student, tx); err != nil {
			return false, err
		}
	}

	_, err = svc.repo.GetEnrollment(ctx, subj.ID, student.ID, tx)
	switch err {
	case nil:
	case ErrEnrollmentNotFound:
		if _, err = svc.createEnrollment(ctx, subj, student, tx); err != nil {
			return false, err
		}
		created = true
	default:
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, errors.Wrap(err, "committing row transaction")
	}
	return created, nil
}

// ImportResults ingests a result CSV (required columns `student_email`,
// `exercise_name`, `status`) into the subject. Unknown exercise names are
// created with order = previous exercise count + 1; results are upserted
// last-write-wins, so replaying an identical file yields created=0,
// updated=N with statuses unchanged.
func (svc *Service) ImportResults(ctx context.Context, subj Subject, file []byte) (ResultSummary, error) {
	f, err := newCSVFile(file, "student_email", "exercise_name", "status")
	if err != nil {
		return ResultSummary{}, err
	}

	// batch-scoped exercise lookup by lowered name, pre-populated once and
	// updated as exercises are created so repeated references to a new name
	// reuse the same record
	exercises, err := svc.repo.QueryExercises(ctx, subj.ID)
	if err != nil {
		return ResultSummary{}, errors.Wrap(err, "querying exercises")
	}
	cache := make(map[string]Exercise, len(exercises))
	for _, ex := range exercises {
		cache[strings.ToLower(ex.Name)] = ex
	}

	sum := ResultSummary{Errors: []RowError{}}
	for {
		row, ok := f.Next()
		if !ok {
			break
		}
		if row.Err != nil {
			sum.Errors = append(sum.Errors, RowError{Row: row.Num, Error: fmt.Sprintf("malformed row: %v", row.Err)})
			continue
		}

		email := core.CleanString(row.Get("student_email"), true /* lower */)
		exName := row.Get("exercise_name")
		status := NormalizeStatus(row.Get("status"))
		if email == "" || exName == "" || status == StatusUnrecognized {
			sum.Errors = append(sum.Errors, RowError{Row: row.Num, Error: errInvalidColumns})
			continue
		}

		created, err := svc.resultRow(ctx, subj, cache, email, exName, status)
		if err != nil {
			sum.Errors = append(sum.Errors, RowError{Row: row.Num, Error: err.Error()})
			continue
		}
		if created {
			sum.Created++
		} else {
			sum.Updated++
		}
	}

	svc.notifyResultsPublished(ctx, subj, sum)
	return sum, nil
}

func (svc *Service) resultRow(ctx context.Context, subj Subject, cache map[string]Exercise, email, exName string, status Status) (created bool, err error) {
	tx, err := svc.db.Begin(ctx)
	if err != nil {
		return false, errors.Wrap(err, "beginning row transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	student, err := svc.users.GetByEmail(ctx, email, tx)
	if err != nil {
		if err == user.ErrNotFound {
			return false, fmt.Errorf("student not found: %s", email)
		}
		return false, err
	}

	enr, err := svc.repo.GetEnrollment(ctx, subj.ID, student.ID, tx)
	if err != nil {
		if err == ErrEnrollmentNotFound {
			return false, fmt.Errorf("student not enrolled in subject: %s", email)
		}
		return false, err
	}

	ex, cached := cache[strings.ToLower(exName)]
	if !cached {
		count, cntErr := svc.repo.CountExercises(ctx, subj.ID, tx)
		if cntErr != nil {
			return false, cntErr
		}
		if ex, err = svc.repo.CreateExercise(ctx, Exercise{
			ID:        uuid.New().String(),
			SubjectID: subj.ID,
			Name:      exName,
			Order:     count + 1,
		}, tx); err != nil {
			return false, err
		}
	}

	now := time.Now().UTC()
	res, err := svc.repo.GetResult(ctx, enr.ID, ex.ID, tx)
	switch err {
	case nil:
		if err = svc.repo.UpdateResultStatus(ctx, res.ID, status, tx); err != nil {
			return false, err
		}
	case ErrResultNotFound:
		if _, err = svc.repo.CreateResult(ctx, Result{
			ID:           uuid.New().String(),
			EnrollmentID: enr.ID,
			ExerciseID:   ex.ID,
			Status:       status,
			CreatedAt:    now,
			UpdatedAt:    now,
		}, tx); err != nil {
			return false, err
		}
		created = true
	default:
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, errors.Wrap(err, "committing row transaction")
	}
	// only expose a new exercise to later rows once its row committed
	if !cached {
		cache[strings.ToLower(exName)] = ex
	}
	return created, nil
}

// notifyResultsPublished mails the subject's teacher a summary.
// Fire-and-forget: failures are logged and never affect the aggregate.
func (svc *Service) notifyResultsPublished(ctx context.Context, subj Subject, sum ResultSummary) {
	if svc.mailer == nil {
		return
	}
	teacher, err := svc.users.GetByID(ctx, subj.TeacherID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("results notification skipped: %v", err), err)
		return
	}
	svc.mailer.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: teacher.FirstName + " " + teacher.LastName, Address: teacher.Email}},
		Subject: fmt.Sprintf("Results updated for %s", subj.Code),
		BodyStr: fmt.Sprintf(
			"Results import for %s (%s) finished: %d created, %d updated, %d row errors.",
			subj.Name, subj.Code, sum.Created, sum.Updated, len(sum.Errors),
		),
	})
}

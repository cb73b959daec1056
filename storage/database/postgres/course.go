package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/aulaproject/aula/core"
	"github.com/aulaproject/aula/core/course"
)

var (
	subjectColumns = []string{"id", "name", "code", "teacher_id", "created_at"}

	enrollmentColumns = []string{
		"e.id", "e.subject_id", "e.student_id", "u.email", "u.first_name",
		"u.last_name", "e.created_at",
	}

	exerciseColumns = []string{"id", "subject_id", "name", `"order"`}

	resultColumns = []string{"id", "enrollment_id", "exercise_id", "status", "created_at", "updated_at"}
)

type courseRepository struct {
	repository
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec core.DBExecutor) *courseRepository {
	return &courseRepository{repository{exec: exec}}
}

// Subjects

func (repo courseRepository) scanSubject(row sq.RowScanner) (course.Subject, error) {
	var subj course.Subject
	err := row.Scan(&subj.ID, &subj.Name, &subj.Code, &subj.TeacherID, &subj.CreatedAt)
	return subj, err
}

func (repo courseRepository) CheckCodeUniqueness(ctx context.Context, code string, exec ...core.DBExecutor) error {
	q, args, err := psql.
		Select("COUNT(*)").
		From("subject").
		Where(sq.Eq{"code": code}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building uniqueness query")
	}

	var count int
	if err = repo.getExec(exec).QueryRowContext(ctx, q, args...).Scan(&count); err != nil {
		return errors.Wrap(err, "checking code uniqueness")
	}
	if count > 0 {
		return course.ErrCodeExists
	}
	return nil
}

func (repo courseRepository) CreateSubject(ctx context.Context, subj course.Subject, exec ...core.DBExecutor) (course.Subject, error) {
	q, args, err := psql.
		Insert("subject").
		Columns(subjectColumns...).
		Values(subj.ID, subj.Name, subj.Code, subj.TeacherID, subj.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return course.Subject{}, errors.Wrap(err, "building subject insert")
	}

	if _, err = repo.getExec(exec).ExecContext(ctx, q, args...); err != nil {
		return course.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return subj, nil
}

func (repo courseRepository) getSubjectBy(ctx context.Context, pred sq.Eq, exec []core.DBExecutor) (course.Subject, error) {
	q, args, err := psql.
		Select(subjectColumns...).
		From("subject").
		Where(pred).
		ToSql()
	if err != nil {
		return course.Subject{}, errors.Wrap(err, "building subject query")
	}

	subj, err := repo.scanSubject(repo.getExec(exec).QueryRowContext(ctx, q, args...))
	if err != nil {
		return course.Subject{}, trapNoRowsErr(err, course.ErrSubjectNotFound, "finding subject")
	}
	return subj, nil
}

func (repo courseRepository) GetSubjectByID(ctx context.Context, id string, exec ...core.DBExecutor) (course.Subject, error) {
	return repo.getSubjectBy(ctx, sq.Eq{"id": id}, exec)
}

func (repo courseRepository) GetSubjectByCode(ctx context.Context, code string, exec ...core.DBExecutor) (course.Subject, error) {
	return repo.getSubjectBy(ctx, sq.Eq{"code": code}, exec)
}

func (repo courseRepository) QuerySubjectsByTeacher(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]course.Subject, error) {
	q, args, err := psql.
		Select(subjectColumns...).
		From("subject").
		Where(sq.Eq{"teacher_id": teacherID}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building subjects query")
	}

	rows, err := repo.getExec(exec).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	defer func() { _ = rows.Close() }()

	subjects := make([]course.Subject, 0)
	for rows.Next() {
		subj, err := repo.scanSubject(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning subject")
		}
		subjects = append(subjects, subj)
	}
	return subjects, errors.Wrap(rows.Err(), "querying subjects")
}

// Enrollments

func (repo courseRepository) scanEnrollment(row sq.RowScanner) (course.Enrollment, error) {
	var enr course.Enrollment
	err := row.Scan(
		&enr.ID, &enr.SubjectID, &enr.StudentID, &enr.StudentEmail,
		&enr.StudentFirstName, &enr.StudentLastName, &enr.CreatedAt,
	)
	return enr, err
}

func (repo courseRepository) enrollmentQuery() sq.SelectBuilder {
	return psql.
		Select(enrollmentColumns...).
		From("enrollment e").
		Join(`"user" u ON u.id = e.student_id`)
}

func (repo courseRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment, exec ...core.DBExecutor) (course.Enrollment, error) {
	q, args, err := psql.
		Insert("enrollment").
		Columns("id", "subject_id", "student_id", "created_at").
		Values(enr.ID, enr.SubjectID, enr.StudentID, enr.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return course.Enrollment{}, errors.Wrap(err, "building enrollment insert")
	}

	if _, err = repo.getExec(exec).ExecContext(ctx, q, args...); err != nil {
		return course.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo courseRepository) GetEnrollment(ctx context.Context, subjectID, studentID string, exec ...core.DBExecutor) (course.Enrollment, error) {
	q, args, err := repo.enrollmentQuery().
		Where(sq.Eq{"e.subject_id": subjectID, "e.student_id": studentID}).
		ToSql()
	if err != nil {
		return course.Enrollment{}, errors.Wrap(err, "building enrollment query")
	}

	enr, err := repo.scanEnrollment(repo.getExec(exec).QueryRowContext(ctx, q, args...))
	if err != nil {
		return course.Enrollment{}, trapNoRowsErr(err, course.ErrEnrollmentNotFound, "finding enrollment")
	}
	return enr, nil
}

func (repo courseRepository) GetEnrollmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (course.Enrollment, error) {
	q, args, err := repo.enrollmentQuery().
		Where(sq.Eq{"e.id": id}).
		ToSql()
	if err != nil {
		return course.Enrollment{}, errors.Wrap(err, "building enrollment query")
	}

	enr, err := repo.scanEnrollment(repo.getExec(exec).QueryRowContext(ctx, q, args...))
	if err != nil {
		return course.Enrollment{}, trapNoRowsErr(err, course.ErrEnrollmentNotFound, "finding enrollment")
	}
	return enr, nil
}

func (repo courseRepository) queryEnrollments(ctx context.Context, pred sq.Eq, orderBy []string, exec []core.DBExecutor) ([]course.Enrollment, error) {
	q, args, err := repo.enrollmentQuery().
		Where(pred).
		OrderBy(orderBy...).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building enrollments query")
	}

	rows, err := repo.getExec(exec).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	defer func() { _ = rows.Close() }()

	enrollments := make([]course.Enrollment, 0)
	for rows.Next() {
		enr, err := repo.scanEnrollment(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning enrollment")
		}
		enrollments = append(enrollments, enr)
	}
	return enrollments, errors.Wrap(rows.Err(), "querying enrollments")
}

func (repo courseRepository) QueryEnrollments(ctx context.Context, subjectID string, exec ...core.DBExecutor) ([]course.Enrollment, error) {
	return repo.queryEnrollments(ctx, sq.Eq{"e.subject_id": subjectID}, []string{"u.first_name", "u.last_name", "u.email"}, exec)
}

func (repo courseRepository) QueryStudentEnrollments(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]course.Enrollment, error) {
	return repo.queryEnrollments(ctx, sq.Eq{"e.student_id": studentID}, []string{"e.created_at"}, exec)
}

// Exercises

func (repo courseRepository) CreateExercise(ctx context.Context, ex course.Exercise, exec ...core.DBExecutor) (course.Exercise, error) {
	q, args, err := psql.
		Insert("exercise").
		Columns(exerciseColumns...).
		Values(ex.ID, ex.SubjectID, ex.Name, ex.Order).
		ToSql()
	if err != nil {
		return course.Exercise{}, errors.Wrap(err, "building exercise insert")
	}

	if _, err = repo.getExec(exec).ExecContext(ctx, q, args...); err != nil {
		return course.Exercise{}, errors.Wrap(err, "inserting exercise")
	}
	return ex, nil
}

func (repo courseRepository) QueryExercises(ctx context.Context, subjectID string, exec ...core.DBExecutor) ([]course.Exercise, error) {
	q, args, err := psql.
		Select(exerciseColumns...).
		From("exercise").
		Where(sq.Eq{"subject_id": subjectID}).
		OrderBy(`"order"`, "id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building exercises query")
	}

	rows, err := repo.getExec(exec).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying exercises")
	}
	defer func() { _ = rows.Close() }()

	exercises := make([]course.Exercise, 0)
	for rows.Next() {
		var ex course.Exercise
		if err = rows.Scan(&ex.ID, &ex.SubjectID, &ex.Name, &ex.Order); err != nil {
			return nil, errors.Wrap(err, "scanning exercise")
		}
		exercises = append(exercises, ex)
	}
	return exercises, errors.Wrap(rows.Err(), "querying exercises")
}

func (repo courseRepository) CountExercises(ctx context.Context, subjectID string, exec ...core.DBExecutor) (int, error) {
	q, args, err := psql.
		Select("COUNT(*)").
		From("exercise").
		Where(sq.Eq{"subject_id": subjectID}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building exercise count")
	}

	var count int
	if err = repo.getExec(exec).QueryRowContext(ctx, q, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "counting exercises")
	}
	return count, nil
}

// Results

func (repo courseRepository) scanResult(row sq.RowScanner) (course.Result, error) {
	var res course.Result
	err := row.Scan(&res.ID, &res.EnrollmentID, &res.ExerciseID, &res.Status, &res.CreatedAt, &res.UpdatedAt)
	return res, err
}

func (repo courseRepository) CreateResult(ctx context.Context, res course.Result, exec ...core.DBExecutor) (course.Result, error) {
	q, args, err := psql.
		Insert("result").
		Columns(resultColumns...).
		Values(res.ID, res.EnrollmentID, res.ExerciseID, res.Status, res.CreatedAt.UTC(), res.UpdatedAt.UTC()).
		ToSql()
	if err != nil {
		return course.Result{}, errors.Wrap(err, "building result insert")
	}

	if _, err = repo.getExec(exec).ExecContext(ctx, q, args...); err != nil {
		return course.Result{}, errors.Wrap(err, "inserting result")
	}
	return res, nil
}

func (repo courseRepository) GetResult(ctx context.Context, enrollmentID, exerciseID string, exec ...core.DBExecutor) (course.Result, error) {
	q, args, err := psql.
		Select(resultColumns...).
		From("result").
		Where(sq.Eq{"enrollment_id": enrollmentID, "exercise_id": exerciseID}).
		ToSql()
	if err != nil {
		return course.Result{}, errors.Wrap(err, "building result query")
	}

	res, err := repo.scanResult(repo.getExec(exec).QueryRowContext(ctx, q, args...))
	if err != nil {
		return course.Result{}, trapNoRowsErr(err, course.ErrResultNotFound, "finding result")
	}
	return res, nil
}

func (repo courseRepository) UpdateResultStatus(ctx context.Context, id string, status course.Status, exec ...core.DBExecutor) error {
	q, args, err := psql.
		Update("result").
		Set("status", status).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building result update")
	}

	if _, err = repo.getExec(exec).ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "updating result")
	}
	return nil
}

func (repo courseRepository) QueryResults(ctx context.Context, enrollmentID string, exec ...core.DBExecutor) ([]course.Result, error) {
	q, args, err := psql.
		Select(resultColumns...).
		From("result").
		Where(sq.Eq{"enrollment_id": enrollmentID}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building results query")
	}

	rows, err := repo.getExec(exec).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying results")
	}
	defer func() { _ = rows.Close() }()

	results := make([]course.Result, 0)
	for rows.Next() {
		res, err := repo.scanResult(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning result")
		}
		results = append(results, res)
	}
	return results, errors.Wrap(rows.Err(), "querying results")
}

func (repo courseRepository) CountResultStatuses(ctx context.Context, enrollmentID string, exec ...core.DBExecutor) (green, yellow, red int, err error) {
	q, args, err := psql.
		Select("status", "COUNT(*)").
		From("result").
		Where(sq.Eq{"enrollment_id": enrollmentID}).
		GroupBy("status").
		ToSql()
	if err != nil {
		return 0, 0, 0, errors.Wrap(err, "building status count")
	}

	rows, err := repo.getExec(exec).QueryContext(ctx, q, args...)
	if err != nil {
		return 0, 0, 0, errors.Wrap(err, "counting result statuses")
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var status course.Status
		var count int
		if err = rows.Scan(&status, &count); err != nil {
			return 0, 0, 0, errors.Wrap(err, "scanning status count")
		}
		switch status {
		case course.StatusGreen:
			green = count
		case course.StatusYellow:
			yellow = count
		case course.StatusRed:
			red = count
		}
	}
	return green, yellow, red, errors.Wrap(rows.Err(), "counting result statuses")
}

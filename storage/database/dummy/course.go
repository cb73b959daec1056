package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/aulaproject/aula/core"
	"github.com/aulaproject/aula/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

// Subjects

func (repo *courseRepository) CheckCodeUniqueness(_ context.Context, code string, _ ...core.DBExecutor) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, subj := range repo.db.subjects {
		if subj.Code == code {
			return course.ErrCodeExists
		}
	}
	return nil
}

func (repo *courseRepository) CreateSubject(_ context.Context, subj course.Subject, _ ...core.DBExecutor) (course.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.subjects[subj.ID] = &subj
	return subj, nil
}

func (repo *courseRepository) GetSubjectByID(_ context.Context, id string, _ ...core.DBExecutor) (course.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if subj, ok := repo.db.subjects[id]; ok {
		return *subj, nil
	}
	return course.Subject{}, course.ErrSubjectNotFound
}

func (repo *courseRepository) GetSubjectByCode(_ context.Context, code string, _ ...core.DBExecutor) (course.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, subj := range repo.db.subjects {
		if subj.Code == code {
			return *subj, nil
		}
	}
	return course.Subject{}, course.ErrSubjectNotFound
}

func (repo *courseRepository) QuerySubjectsByTeacher(_ context.Context, teacherID string, _ ...core.DBExecutor) ([]course.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]course.Subject, 0)
	for _, subj := range repo.db.subjects {
		if subj.TeacherID == teacherID {
			subjects = append(subjects, *subj)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

// Enrollments

func (repo *courseRepository) CreateEnrollment(_ context.Context, enr course.Enrollment, _ ...core.DBExecutor) (course.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.enrollments[enr.ID] = &enr
	return enr, nil
}

func (repo *courseRepository) GetEnrollment(_ context.Context, subjectID, studentID string, _ ...core.DBExecutor) (course.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, enr := range repo.db.enrollments {
		if enr.SubjectID == subjectID && enr.StudentID == studentID {
			return *enr, nil
		}
	}
	return course.Enrollment{}, course.ErrEnrollmentNotFound
}

func (repo *courseRepository) GetEnrollmentByID(_ context.Context, id string, _ ...core.DBExecutor) (course.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if enr, ok := repo.db.enrollments[id]; ok {
		return *enr, nil
	}
	return course.Enrollment{}, course.ErrEnrollmentNotFound
}

func (repo *courseRepository) QueryEnrollments(_ context.Context, subjectID string, _ ...core.DBExecutor) ([]course.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	enrollments := make([]course.Enrollment, 0)
	for _, enr := range repo.db.enrollments {
		if enr.SubjectID == subjectID {
			enrollments = append(enrollments, *enr)
		}
	}
	sort.Slice(enrollments, func(i, j int) bool {
		a, b := enrollments[i], enrollments[j]
		if a.StudentFirstName != b.StudentFirstName {
			return a.StudentFirstName < b.StudentFirstName
		}
		if a.StudentLastName != b.StudentLastName {
			return a.StudentLastName < b.StudentLastName
		}
		return a.StudentEmail < b.StudentEmail
	})
	return enrollments, nil
}

func (repo *courseRepository) QueryStudentEnrollments(_ context.Context, studentID string, _ ...core.DBExecutor) ([]course.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	enrollments := make([]course.Enrollment, 0)
	for _, enr := range repo.db.enrollments {
		if enr.StudentID == studentID {
			enrollments = append(enrollments, *enr)
		}
	}
	sort.Slice(enrollments, func(i, j int) bool {
		return enrollments[i].CreatedAt.Before(enrollments[j].CreatedAt)
	})
	return enrollments, nil
}

// Exercises

func (repo *courseRepository) CreateExercise(_ context.Context, ex course.Exercise, _ ...core.DBExecutor) (course.Exercise, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.exercises[ex.ID] = &ex
	return ex, nil
}

func (repo *courseRepository) QueryExercises(_ context.Context, subjectID string, _ ...core.DBExecutor) ([]course.Exercise, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	exercises := make([]course.Exercise, 0)
	for _, ex := range repo.db.exercises {
		if ex.SubjectID == subjectID {
			exercises = append(exercises, *ex)
		}
	}
	sort.Slice(exercises, func(i, j int) bool {
		if exercises[i].Order != exercises[j].Order {
			return exercises[i].Order < exercises[j].Order
		}
		return exercises[i].ID < exercises[j].ID
	})
	return exercises, nil
}

func (repo *courseRepository) CountExercises(_ context.Context, subjectID string, _ ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, ex := range repo.db.exercises {
		if ex.SubjectID == subjectID {
			count++
		}
	}
	return count, nil
}

// FindExercise looks an exercise up by case-insensitive name; test helper.
func (repo *courseRepository) FindExercise(subjectID, name string) (course.Exercise, bool) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, ex := range repo.db.exercises {
		if ex.SubjectID == subjectID && strings.EqualFold(ex.Name, name) {
			return *ex, true
		}
	}
	return course.Exercise{}, false
}

// Results

func (repo *courseRepository) CreateResult(_ context.Context, res course.Result, _ ...core.DBExecutor) (course.Result, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.results[res.ID] = &res
	return res, nil
}

func (repo *courseRepository) GetResult(_ context.Context, enrollmentID, exerciseID string, _ ...core.DBExecutor) (course.Result, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, res := range repo.db.results {
		if res.EnrollmentID == enrollmentID && res.ExerciseID == exerciseID {
			return *res, nil
		}
	}
	return course.Result{}, course.ErrResultNotFound
}

func (repo *courseRepository) UpdateResultStatus(_ context.Context, id string, status course.Status, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	res, ok := repo.db.results[id]
	if !ok {
		return course.ErrResultNotFound
	}
	res.Status = status
	res.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *courseRepository) QueryResults(_ context.Context, enrollmentID string, _ ...core.DBExecutor) ([]course.Result, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	results := make([]course.Result, 0)
	for _, res := range repo.db.results {
		if res.EnrollmentID == enrollmentID {
			results = append(results, *res)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.Before(results[j].CreatedAt)
		}
		return results[i].ID < results[j].ID
	})
	return results, nil
}

func (repo *courseRepository) CountResultStatuses(_ context.Context, enrollmentID string, _ ...core.DBExecutor) (green, yellow, red int, err error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, res := range repo.db.results {
		if res.EnrollmentID != enrollmentID {
			continue
		}
		switch res.Status {
		case course.StatusGreen:
			green++
		case course.StatusYellow:
			yellow++
		case course.StatusRed:
			red++
		}
	}
	return green, yellow, red, nil
}

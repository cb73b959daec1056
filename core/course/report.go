package course

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

var consolidatedHeader = []string{"student_email", "total", "green", "yellow", "red", "grade"}

type (
	DashboardEntry struct {
		EnrollmentID string `json:"enrollment_id"`
		StudentEmail string `json:"student_email"`
		Stats
	}

	DashboardAggregates struct {
		AvgGrade  float64 `json:"avg_grade"`
		PctGreen  float64 `json:"pct_green"`
		PctYellow float64 `json:"pct_yellow"`
		PctRed    float64 `json:"pct_red"`
	}

	Dashboard struct {
		SubjectID      string              `json:"subject_id"`
		SubjectCode    string              `json:"subject_code"`
		SubjectName    string              `json:"subject_name"`
		TotalExercises int                 `json:"total_exercises"`
		Enrollments    []DashboardEntry    `json:"enrollments"`
		Aggregates     DashboardAggregates `json:"aggregates"`
	}

	ResultEntry struct {
		ExerciseID   string    `json:"exercise_id"`
		ExerciseName string    `json:"exercise_name"`
		Status       Status    `json:"status"`
		UpdatedAt    time.Time `json:"updated_at"`
	}

	EnrollmentResults struct {
		EnrollmentID string        `json:"enrollment_id"`
		StudentEmail string        `json:"student_email"`
		Results      []ResultEntry `json:"results"`
		Stats        Stats         `json:"stats"`
	}

	EnrollmentOverview struct {
		EnrollmentID string `json:"enrollment_id"`
		SubjectID    string `json:"subject_id"`
		SubjectCode  string `json:"subject_code"`
		SubjectName  string `json:"subject_name"`
		Stats        Stats  `json:"stats"`
	}
)

// EnrollmentStats recomputes the derived aggregate from the current results.
func (svc *Service) EnrollmentStats(ctx context.Context, enrollmentID string) (Stats, error) {
	green, yellow, red, err := svc.repo.CountResultStatuses(ctx, enrollmentID)
	if err != nil {
		return Stats{}, errors.Wrap(err, "counting result statuses")
	}
	return ComputeStats(green, yellow, red), nil
}

// ExportConsolidated writes the subject's consolidated report as CSV:
// one row per enrollment, grade formatted to 2 decimal places.
func (svc *Service) ExportConsolidated(ctx context.Context, subj Subject, w io.Writer) error {
	enrollments, err := svc.repo.QueryEnrollments(ctx, subj.ID)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}

	cw := csv.NewWriter(w)
	if err = cw.Write(consolidatedHeader); err != nil {
		return errors.Wrap(err, "writing report header")
	}
	for _, enr := range enrollments {
		stats, err := svc.EnrollmentStats(ctx, enr.ID)
		if err != nil {
			return err
		}
		record := []string{
			enr.StudentEmail,
			strconv.Itoa(stats.Total),
			strconv.Itoa(stats.Green),
			strconv.Itoa(stats.Yellow),
			strconv.Itoa(stats.Red),
			strconv.FormatFloat(stats.Grade, 'f', 2, 64),
		}
		if err = cw.Write(record); err != nil {
			return errors.Wrap(err, "writing report row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing report")
}

// Dashboard returns per-enrollment stats plus subject-wide aggregates.
func (svc *Service) Dashboard(ctx context.Context, subj Subject) (Dashboard, error) {
	exCount, err := svc.repo.CountExercises(ctx, subj.ID)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "counting exercises")
	}
	enrollments, err := svc.repo.QueryEnrollments(ctx, subj.ID)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "querying enrollments")
	}

	dash := Dashboard{
		SubjectID:      subj.ID,
		SubjectCode:    subj.Code,
		SubjectName:    subj.Name,
		TotalExercises: exCount,
		Enrollments:    make([]DashboardEntry, 0, len(enrollments)),
	}

	var gradeSum float64
	var greens, yellows, reds, totals int
	for _, enr := range enrollments {
		stats, err := svc.EnrollmentStats(ctx, enr.ID)
		if err != nil {
			return Dashboard{}, err
		}
		dash.Enrollments = append(dash.Enrollments, DashboardEntry{
			EnrollmentID: enr.ID,
			StudentEmail: enr.StudentEmail,
			Stats:        stats,
		})
		gradeSum += stats.Grade
		greens += stats.Green
		yellows += stats.Yellow
		reds += stats.Red
		totals += stats.Total
	}

	if n := len(dash.Enrollments); n > 0 {
		dash.Aggregates.AvgGrade = Round2(gradeSum / float64(n))
	}
	if totals > 0 {
		dash.Aggregates.PctGreen = Round2(100.0 * float64(greens) / float64(totals))
		dash.Aggregates.PctYellow = Round2(100.0 * float64(yellows) / float64(totals))
		dash.Aggregates.PctRed = Round2(100.0 * float64(reds) / float64(totals))
	}
	return dash, nil
}

// EnrollmentResultsList returns one enrollment's per-exercise results along
// with the recomputed stats.
func (svc *Service) EnrollmentResultsList(ctx context.Context, enrollmentID string) (EnrollmentResults, error) {
	enr, err := svc.repo.GetEnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return EnrollmentResults{}, err
	}
	exercises, err := svc.repo.QueryExercises(ctx, enr.SubjectID)
	if err != nil {
		return EnrollmentResults{}, errors.Wrap(err, "querying exercises")
	}
	exNames := make(map[string]string, len(exercises))
	for _, ex := range exercises {
		exNames[ex.ID] = ex.Name
	}

	results, err := svc.repo.QueryResults(ctx, enrollmentID)
	if err != nil {
		return EnrollmentResults{}, errors.Wrap(err, "querying results")
	}
	out := EnrollmentResults{
		EnrollmentID: enr.ID,
		StudentEmail: enr.StudentEmail,
		Results:      make([]ResultEntry, 0, len(results)),
	}
	for _, res := range results {
		out.Results = append(out.Results, ResultEntry{
			ExerciseID:   res.ExerciseID,
			ExerciseName: exNames[res.ExerciseID],
			Status:       res.Status,
			UpdatedAt:    res.UpdatedAt,
		})
	}
	if out.Stats, err = svc.EnrollmentStats(ctx, enrollmentID); err != nil {
		return EnrollmentResults{}, err
	}
	return out, nil
}

// StudentEnrollments lists one student's enrollments across subjects.
func (svc *Service) StudentEnrollments(ctx context.Context, studentID string) ([]EnrollmentOverview, error) {
	enrollments, err := svc.repo.QueryStudentEnrollments(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying student enrollments")
	}
	out := make([]EnrollmentOverview, 0, len(enrollments))
	for _, enr := range enrollments {
		subj, err := svc.repo.GetSubjectByID(ctx, enr.SubjectID)
		if err != nil {
			return nil, err
		}
		stats, err := svc.EnrollmentStats(ctx, enr.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, EnrollmentOverview{
			EnrollmentID: enr.ID,
			SubjectID:    subj.ID,
			SubjectCode:  subj.Code,
			SubjectName:  subj.Name,
			Stats:        stats,
		})
	}
	return out, nil
}

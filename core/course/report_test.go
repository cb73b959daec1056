package course_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/aulaproject/aula/core/course"
)

func importFiles(t *testing.T, env *testEnv, subj course.Subject, enrCSV, resCSV string) {
	t.Helper()
	ctx := context.Background()

	sum, err := env.courseSvc.ImportEnrollments(ctx, subj, []byte(enrCSV))
	if err != nil {
		t.Fatalf("ImportEnrollments() failed, %v", err)
	}
	if len(sum.Errors) != 0 {
		t.Fatalf("ImportEnrollments() errors = %+v", sum.Errors)
	}
	if resCSV != "" {
		rSum, err := env.courseSvc.ImportResults(ctx, subj, []byte(resCSV))
		if err != nil {
			t.Fatalf("ImportResults() failed, %v", err)
		}
		if len(rSum.Errors) != 0 {
			t.Fatalf("ImportResults() errors = %+v", rSum.Errors)
		}
	}
}

func TestService_ExportConsolidated(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	subj := env.createSubject(t, "MATH-101")

	importFiles(t, env, subj,
		"email,first_name,last_name\n"+
			"awe@test.cd,Awe,Some\n"+
			"mdr@test.cd,Mdr,Lol\n"+
			"zed@test.cd,Zed,End\n",
		"student_email,exercise_name,status\n"+
			"awe@test.cd,Lab 1,green\n"+
			"awe@test.cd,Lab 2,green\n"+
			"mdr@test.cd,Lab 1,yellow\n"+
			"mdr@test.cd,Lab 2,red\n",
	)

	var buf bytes.Buffer
	if err := env.courseSvc.ExportConsolidated(ctx, subj, &buf); err != nil {
		t.Fatalf("ExportConsolidated() failed, %v", err)
	}

	// one row per enrollment ordered by student name, grades to 2 decimals,
	// students without results included with zero counts
	want := "student_email,total,green,yellow,red,grade\n" +
		"awe@test.cd,2,2,0,0,5.00\n" +
		"mdr@test.cd,2,0,1,1,0.00\n" +
		"zed@test.cd,0,0,0,0,0.00\n"
	if got := buf.String(); got != want {
		t.Errorf("ExportConsolidated() =\n%s\nwant\n%s", got, want)
	}
}

func TestService_Dashboard(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	subj := env.createSubject(t, "MATH-101")

	importFiles(t, env, subj,
		"email,first_name\nawe@test.cd,Awe\nmdr@test.cd,Mdr\n",
		"student_email,exercise_name,status\n"+
			"awe@test.cd,Lab 1,green\n"+
			"awe@test.cd,Lab 2,green\n"+
			"mdr@test.cd,Lab 1,yellow\n"+
			"mdr@test.cd,Lab 2,red\n",
	)

	dash, err := env.courseSvc.Dashboard(ctx, subj)
	if err != nil {
		t.Fatalf("Dashboard() failed, %v", err)
	}
	if dash.SubjectCode != subj.Code || dash.SubjectID != subj.ID {
		t.Errorf("dashboard subject = (%s, %s), want (%s, %s)", dash.SubjectID, dash.SubjectCode, subj.ID, subj.Code)
	}
	if dash.TotalExercises != 2 {
		t.Errorf("TotalExercises = %d, want 2", dash.TotalExercises)
	}
	if len(dash.Enrollments) != 2 {
		t.Fatalf("enrollments = %d, want 2", len(dash.Enrollments))
	}

	awe, mdr := dash.Enrollments[0], dash.Enrollments[1]
	if awe.StudentEmail != "awe@test.cd" || awe.Grade != 5.0 || awe.Semaphore != course.StatusGreen {
		t.Errorf("awe entry = %+v, want grade=5 semaphore=GREEN", awe)
	}
	if mdr.StudentEmail != "mdr@test.cd" || mdr.Grade != 0.0 || mdr.Semaphore != course.StatusRed {
		t.Errorf("mdr entry = %+v, want grade=0 semaphore=RED", mdr)
	}

	agg := dash.Aggregates
	if agg.AvgGrade != 2.5 {
		t.Errorf("AvgGrade = %v, want 2.5", agg.AvgGrade)
	}
	if agg.PctGreen != 50.0 || agg.PctYellow != 25.0 || agg.PctRed != 25.0 {
		t.Errorf("pcts = (%v, %v, %v), want (50, 25, 25)", agg.PctGreen, agg.PctYellow, agg.PctRed)
	}
}

func TestService_Dashboard_empty(t *testing.T) {
	env := setup(t)
	subj := env.createSubject(t, "MATH-101")

	dash, err := env.courseSvc.Dashboard(context.Background(), subj)
	if err != nil {
		t.Fatalf("Dashboard() failed, %v", err)
	}
	if len(dash.Enrollments) != 0 || dash.TotalExercises != 0 {
		t.Errorf("dashboard = %+v, want empty", dash)
	}
	if agg := dash.Aggregates; agg.AvgGrade != 0 || agg.PctGreen != 0 || agg.PctYellow != 0 || agg.PctRed != 0 {
		t.Errorf("aggregates = %+v, want all zero", dash.Aggregates)
	}
}

func TestService_EnrollmentResultsList(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	subj := env.createSubject(t, "MATH-101")

	importFiles(t, env, subj,
		"email\nawe@test.cd\n",
		"student_email,exercise_name,status\n"+
			"awe@test.cd,Lab 1,green\n"+
			"awe@test.cd,Lab 2,red\n",
	)

	enrs, err := env.courseSvc.QueryEnrollments(ctx, subj)
	if err != nil {
		t.Fatalf("QueryEnrollments() failed, %v", err)
	}

	out, err := env.courseSvc.EnrollmentResultsList(ctx, enrs[0].ID)
	if err != nil {
		t.Fatalf("EnrollmentResultsList() failed, %v", err)
	}
	if out.StudentEmail != "awe@test.cd" {
		t.Errorf("StudentEmail = %q, want awe@test.cd", out.StudentEmail)
	}
	if len(out.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(out.Results))
	}
	if out.Results[0].ExerciseName != "Lab 1" || out.Results[0].Status != course.StatusGreen {
		t.Errorf("result[0] = %+v, want Lab 1 GREEN", out.Results[0])
	}
	if out.Results[1].ExerciseName != "Lab 2" || out.Results[1].Status != course.StatusRed {
		t.Errorf("result[1] = %+v, want Lab 2 RED", out.Results[1])
	}
	if out.Stats.Total != 2 || out.Stats.Grade != 2.5 {
		t.Errorf("stats = %+v, want total=2 grade=2.5", out.Stats)
	}
}

func TestService_EnrollmentResultsList_notFound(t *testing.T) {
	env := setup(t)

	_, err := env.courseSvc.EnrollmentResultsList(context.Background(), "nope")
	if err != course.ErrEnrollmentNotFound {
		t.Errorf("error = %v, want ErrEnrollmentNotFound", err)
	}
}

func TestService_StudentEnrollments(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	math := env.createSubject(t, "MATH-101")
	phys := env.createSubject(t, "PHYS-201")

	importFiles(t, env, math,
		"email\nawe@test.cd\n",
		"student_email,exercise_name,status\nawe@test.cd,Lab 1,green\n")
	importFiles(t, env, phys, "email\nawe@test.cd\n", "")

	student, err := env.usrSvc.GetByEmail(ctx, "awe@test.cd")
	if err != nil {
		t.Fatalf("GetByEmail() failed, %v", err)
	}

	out, err := env.courseSvc.StudentEnrollments(ctx, student.ID)
	if err != nil {
		t.Fatalf("StudentEnrollments() failed, %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("enrollments = %d, want 2", len(out))
	}
	for _, ov := range out {
		switch ov.SubjectCode {
		case "MATH-101":
			if ov.Stats.Total != 1 || ov.Stats.Grade != 5.0 {
				t.Errorf("MATH-101 stats = %+v, want total=1 grade=5", ov.Stats)
			}
		case "PHYS-201":
			if ov.Stats.Total != 0 {
				t.Errorf("PHYS-201 stats = %+v, want empty", ov.Stats)
			}
		default:
			t.Errorf("unexpected subject %q", ov.SubjectCode)
		}
	}
}

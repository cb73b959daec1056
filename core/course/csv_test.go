package course

import (
	"testing"
)

func TestNewCSVFile_schemaCheck(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		required   []string
		wantErrStr string
	}{
		{
			name:       "empty file",
			data:       "",
			required:   []string{"email"},
			wantErrStr: "invalid CSV: missing required columns: email",
		},
		{
			name:       "missing column",
			data:       "first_name,last_name\nAwe,Some\n",
			required:   []string{"email"},
			wantErrStr: "invalid CSV: missing required columns: email",
		},
		{
			name:       "missing columns are sorted",
			data:       "lol\n",
			required:   []string{"student_email", "exercise_name", "status"},
			wantErrStr: "invalid CSV: missing required columns: exercise_name, status, student_email",
		},
		{name: "exact header", data: "email\n", required: []string{"email"}},
		{name: "superset header", data: "email,first_name,last_name\n", required: []string{"email"}},
		{name: "header is case-insensitive", data: "EMail\n", required: []string{"email"}},
		{name: "header cells are trimmed", data: " email , first_name\n", required: []string{"email"}},
		{name: "BOM is stripped", data: "\xef\xbb\xbfemail\n", required: []string{"email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newCSVFile([]byte(tt.data), tt.required...)
			if tt.wantErrStr == "" {
				if err != nil {
					t.Fatalf("newCSVFile() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("newCSVFile() expected an error, got nil")
			}
			if !IsSchemaError(err) {
				t.Errorf("IsSchemaError() = false, want true")
			}
			if err.Error() != tt.wantErrStr {
				t.Errorf("newCSVFile() error = %q, want %q", err.Error(), tt.wantErrStr)
			}
		})
	}
}

func TestCSVFile_Next(t *testing.T) {
	data := "Email, First_Name \nawe@test.cd, Awe \nmdr@test.cd\n\nking@test.cd,King,extra\n"
	f, err := newCSVFile([]byte(data), "email")
	if err != nil {
		t.Fatalf("newCSVFile() failed, %v", err)
	}

	type want struct {
		num       int
		email     string
		firstName string
	}
	// the blank line is skipped by the reader, not numbered
	wants := []want{
		{num: 2, email: "awe@test.cd", firstName: "Awe"},
		{num: 3, email: "mdr@test.cd", firstName: ""}, // short row: absent cells read as ""
		{num: 4, email: "king@test.cd", firstName: "King"},
	}
	for i, w := range wants {
		row, ok := f.Next()
		if !ok {
			t.Fatalf("Next() exhausted after %d rows, want %d", i, len(wants))
		}
		if row.Err != nil {
			t.Fatalf("Next() row %d error = %v", row.Num, row.Err)
		}
		if row.Num != w.num {
			t.Errorf("row.Num = %d, want %d", row.Num, w.num)
		}
		if got := row.Get("email"); got != w.email {
			t.Errorf("Get(email) = %q, want %q", got, w.email)
		}
		// column lookup is case-insensitive, cells come back trimmed
		if got := row.Get("FIRST_NAME"); got != w.firstName {
			t.Errorf("Get(FIRST_NAME) = %q, want %q", got, w.firstName)
		}
	}
	if _, ok := f.Next(); ok {
		t.Error("Next() ok = true after exhaustion, want false")
	}
}

func TestCSVFile_invalidUTF8(t *testing.T) {
	f, err := newCSVFile([]byte("email,first_name\nawe@test.cd,Aw\xffe\n"), "email")
	if err != nil {
		t.Fatalf("newCSVFile() failed, %v", err)
	}
	row, ok := f.Next()
	if !ok || row.Err != nil {
		t.Fatalf("Next() = (%+v, %v), want a readable row", row, ok)
	}
	// invalid bytes are replaced, never rejected
	if got := row.Get("first_name"); got != "Aw�e" {
		t.Errorf("Get(first_name) = %q, want %q", got, "Aw�e")
	}
}

package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	. "github.com/aulaproject/aula/apps/api/echo"
	"github.com/aulaproject/aula/core"
	"github.com/aulaproject/aula/core/course"
	"github.com/aulaproject/aula/core/user"
	emailsvc "github.com/aulaproject/aula/services/email"
	dummydb "github.com/aulaproject/aula/storage/database/dummy"
)

var (
	db        *dummydb.DB
	app       Server
	usrSvc    *user.Service
	courseSvc *course.Service
)

func TestMain(m *testing.M) {
	// set up DB & repos
	db = dummydb.Open()

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc = user.NewService(dummydb.NewUserRepository(db))
	courseSvc = course.NewService(db, dummydb.NewCourseRepository(db), usrSvc, mailSvc, core.NopLogger{})

	// set up server
	app = NewServer(
		&Options{
			DisableReqLogs: true,
			Logger:         core.NopLogger{},
			UserSvc:        usrSvc,
			CourseSvc:      courseSvc,
		},
	)

	os.Exit(m.Run())
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
	extra    interface{}
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func newUploadRequest(t *testing.T, path string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", "upload.csv")
	if err != nil {
		t.Fatalf("CreateFormFile(): %v", err)
	}
	if _, err = fw.Write(content); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err = mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	return req, rec
}

func createTeacher(t *testing.T, email string) user.User {
	t.Helper()
	teacher, err := usrSvc.Create(context.Background(), user.NewUser{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     email,
		Roles:     []string{user.RoleTeacher},
	})
	if err != nil {
		t.Fatalf("createTeacher(): %v", err)
	}
	return teacher
}

func createSubject(t *testing.T, code string, teacher user.User) course.Subject {
	t.Helper()
	subj, err := courseSvc.CreateSubject(context.Background(), course.NewSubject{Name: "Subject " + code, Code: code}, teacher)
	if err != nil {
		t.Fatalf("createSubject(): %v", err)
	}
	return subj
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func TestHome(t *testing.T) {
	req, rec := newRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "Welcome to Aula API!" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

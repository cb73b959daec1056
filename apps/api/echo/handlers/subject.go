package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aulaproject/aula/core"
	"github.com/aulaproject/aula/core/course"
	"github.com/aulaproject/aula/core/user"
)

var (
	errHttpNotFound      = echo.NewHTTPError(http.StatusNotFound, "not found")
	errFileRequired      = echo.NewHTTPError(http.StatusBadRequest, "a `file` upload is required")
	subjNotFoundInCtxErr = errors.New("subject object not found in echo.Context")
)

type subjectApi struct {
	service *course.Service
	users   *user.Service
}

func RegisterSubjectAPI(g *echo.Group, svc *course.Service, users *user.Service) {
	api := subjectApi{service: svc, users: users}

	sg := g.Group("/subjects")
	sg.POST("", api.subjectCreate)
	sg.GET("", api.subjectQuery)

	// detail endpoints
	dg := sg.Group("/:id", ctxSubjectMiddleware(api.service))
	dg.GET("", api.subjectRetrieve)
	dg.GET("/enrollments", api.enrollmentQuery)
	dg.POST("/enrollments", api.enroll)
	dg.POST("/enrollments/upload-csv", api.uploadEnrollmentsCSV)
	dg.POST("/results/upload-csv", api.uploadResultsCSV)
	dg.GET("/dashboard", api.dashboard)
	dg.GET("/export-csv", api.exportCSV)

	g.GET("/enrollments/:id/results", api.enrollmentResults)
	g.GET("/students/:email/enrollments", api.studentEnrollments)
}

// ctxSubjectMiddleware resolves the `:id` subject and stores it in the
// echo.Context for detail handlers.
func ctxSubjectMiddleware(svc *course.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			subj, err := svc.GetSubject(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if err == course.ErrSubjectNotFound {
					return errHttpNotFound
				}
				return err
			}
			ctx.Set("subject", subj)
			return next(ctx)
		}
	}
}

func ctxSubject(ctx echo.Context) (course.Subject, error) {
	subj, ok := ctx.Get("subject").(course.Subject)
	if !ok {
		return course.Subject{}, subjNotFoundInCtxErr
	}
	return subj, nil
}

// Bindings

type NewSubjectRequest struct {
	course.NewSubject
	TeacherEmail string `json:"teacher_email" validate:"required,email"`
}

func (r *NewSubjectRequest) Validate() error {
	r.TeacherEmail = core.CleanString(r.TeacherEmail, true /* lower */)
	if err := core.Validate.Struct(r); err != nil {
		return err
	}
	return r.NewSubject.Validate()
}

type EnrollRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *EnrollRequest) Validate() error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return core.Validate.Struct(r)
}

// Handlers

func (api *subjectApi) subjectCreate(ctx echo.Context) error {
	data := new(NewSubjectRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	teacher, err := api.users.GetByEmail(ctx.Request().Context(), data.TeacherEmail)
	if err != nil {
		if err == user.ErrNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "teacher_email", Error: err.Error()})
		}
		return err
	}

	subj, err := api.service.CreateSubject(ctx.Request().Context(), data.NewSubject, teacher)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, subj)
}

func (api *subjectApi) subjectQuery(ctx echo.Context) error {
	teacherEmail := core.CleanString(ctx.QueryParam("teacher"), true /* lower */)
	if teacherEmail == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "a `teacher` query param is required")
	}
	teacher, err := api.users.GetByEmail(ctx.Request().Context(), teacherEmail)
	if err != nil {
		if err == user.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}

	subjects, err := api.service.QueryTeacherSubjects(ctx.Request().Context(), teacher.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *subjectApi) subjectRetrieve(ctx echo.Context) error {
	subj, err := ctxSubject(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subj)
}

func (api *subjectApi) enrollmentQuery(ctx echo.Context) error {
	subj, err := ctxSubject(ctx)
	if err != nil {
		return err
	}
	enrollments, err := api.service.QueryEnrollments(ctx.Request().Context(), subj)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

func (api *subjectApi) enroll(ctx echo.Context) error {
	subj, err := ctxSubject(ctx)
	if err != nil {
		return err
	}
	data := new(EnrollRequest)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = data.Validate(); err != nil {
		return err
	}

	enr, created, err := api.service.Enroll(ctx.Request().Context(), subj, data.Email)
	if err != nil {
		return err
	}
	code := http.StatusOK // already enrolled: benign, not an error
	if created {
		code = http.StatusCreated
	}
	return ctx.JSON(code, enr)
}

func (api *subjectApi) uploadEnrollmentsCSV(ctx echo.Context) error {
	subj, err := ctxSubject(ctx)
	if err != nil {
		return err
	}
	data, err := readUpload(ctx)
	if err != nil {
		return err
	}

	sum, err := api.service.ImportEnrollments(ctx.Request().Context(), subj, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *subjectApi) uploadResultsCSV(ctx echo.Context) error {
	subj, err := ctxSubject(ctx)
	if err != nil {
		return err
	}
	data, err := readUpload(ctx)
	if err != nil {
		return err
	}

	sum, err := api.service.ImportResults(ctx.Request().Context(), subj, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *subjectApi) dashboard(ctx echo.Context) error {
	subj, err := ctxSubject(ctx)
	if err != nil {
		return err
	}
	dash, err := api.service.Dashboard(ctx.Request().Context(), subj)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *subjectApi) exportCSV(ctx echo.Context) error {
	subj, err := ctxSubject(ctx)
	if err != nil {
		return err
	}

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv")
	res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s_consolidado.csv"`, subj.Code))
	res.WriteHeader(http.StatusOK)
	return api.service.ExportConsolidated(ctx.Request().Context(), subj, res)
}

func (api *subjectApi) enrollmentResults(ctx echo.Context) error {
	results, err := api.service.EnrollmentResultsList(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if err == course.ErrEnrollmentNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *subjectApi) studentEnrollments(ctx echo.Context) error {
	student, err := api.users.GetByEmail(ctx.Request().Context(), ctx.Param("email"))
	if err != nil {
		if err == user.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	enrollments, err := api.service.StudentEnrollments(ctx.Request().Context(), student.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

// readUpload buffers the whole uploaded `file` in memory; size limits are the
// transport layer's concern.
func readUpload(ctx echo.Context) ([]byte, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return nil, errFileRequired
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

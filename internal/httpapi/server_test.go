package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/repository"
	"github.com/alexanderramin/workprog/internal/service"
	"github.com/alexanderramin/workprog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler  http.Handler
	refs     repository.ReferenceRepo
	programs repository.WorkProgramRepo
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	refs := repository.NewSQLiteReferenceRepo(database)
	departments := repository.NewSQLiteDepartmentRepo(database)
	programs := repository.NewSQLiteWorkProgramRepo(database)

	handler := New(Config{
		WorkPrograms: service.NewWorkProgramService(programs, departments, "web-user", uow),
		Selection: service.NewSelectionService(refs, departments,
			repository.NewSQLiteEmployeeRepo(database), repository.NewSQLiteProjectRepo(database)),
		Imports: service.NewImportService("web-user", uow),
		Now:     func() time.Time { return time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC) },
	})
	return &testServer{handler: handler, refs: refs, programs: programs}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) addRef(t *testing.T, ref *domain.RefEntity) *domain.RefEntity {
	t.Helper()
	require.NoError(t, s.refs.Create(context.Background(), ref))
	return ref
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error apiErrorBody `json:"error"`
	}
	decodeBody(t, rec, &body)
	return body.Error.Code
}

func TestHealthz(t *testing.T) {
	srv := setupServer(t)
	rec := srv.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestFormMetadata(t *testing.T) {
	srv := setupServer(t)
	srv.addRef(t, testutil.NewTestActivity("Review"))

	rec := srv.do(t, httptest.NewRequest(http.MethodGet, "/work_program/form", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var meta service.FormMetadata
	decodeBody(t, rec, &meta)
	assert.Len(t, meta.Activities, 1)
	assert.Equal(t, "june", meta.DefaultMonth)
	assert.Equal(t, "2025-06-09", meta.DefaultWeek)
	assert.Len(t, meta.Months, 12)
}

func submitRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/work_program/submit", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestSubmitAndView(t *testing.T) {
	srv := setupServer(t)
	act := srv.addRef(t, testutil.NewTestActivity("Review"))

	rec := srv.do(t, submitRequest(url.Values{
		"name":                  {"Close books"},
		"activity_id":           {act.ID},
		"completion_percentage": {"25"},
		"week_start":            {"2025-06-09"},
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created programResponse
	decodeBody(t, rec, &created)
	assert.Equal(t, "Close books", created.Name)
	assert.Equal(t, "web-user", created.OwnerID)
	assert.Equal(t, act.ID, created.ActivityID)
	assert.Equal(t, 25.0, created.CompletionPct)
	assert.Equal(t, "2025-06-09", created.WeekStart)

	rec = srv.do(t, httptest.NewRequest(http.MethodGet, "/work_program/"+created.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var viewed programResponse
	decodeBody(t, rec, &viewed)
	assert.Equal(t, created.ID, viewed.ID)
	require.NotNil(t, viewed.IsExternalDepartment)
	assert.False(t, *viewed.IsExternalDepartment)
}

func TestSubmitErrors(t *testing.T) {
	cases := []struct {
		name   string
		values url.Values
		status int
		code   string
	}{
		{"invalid value", url.Values{"completion_percentage": {"150"}}, http.StatusUnprocessableEntity, "validation_failed"},
		{"unknown reference", url.Values{"activity_id": {"missing"}}, http.StatusUnprocessableEntity, "unknown_reference"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := setupServer(t)
			rec := srv.do(t, submitRequest(tc.values))
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, errorCode(t, rec))

			all, err := srv.programs.List(context.Background(), repository.WorkProgramFilter{})
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestViewMissing(t *testing.T) {
	srv := setupServer(t)
	rec := srv.do(t, httptest.NewRequest(http.MethodGet, "/work_program/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))
}

func TestOnChange(t *testing.T) {
	srv := setupServer(t)
	act := srv.addRef(t, testutil.NewTestActivity("Review"))
	proc := srv.addRef(t, testutil.NewTestProcedure(act.ID, "Sign off"))

	body := `{"form":{"procedure_id":"stale"},"field":"activity_id","value":"` + act.ID + `"}`
	rec := srv.do(t, httptest.NewRequest(http.MethodPost, "/work_program/onchange", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		Form struct {
			ActivityID  string `json:"activity_id"`
			ProcedureID string `json:"procedure_id"`
		} `json:"form"`
		Choices map[string][]struct {
			Value string `json:"value"`
		} `json:"choices"`
	}
	decodeBody(t, rec, &res)
	assert.Equal(t, act.ID, res.Form.ActivityID)
	require.Len(t, res.Choices["procedure_id"], 1)
	assert.Equal(t, proc.ID, res.Choices["procedure_id"][0].Value)
}

func TestOnChangeRejectsBadRequests(t *testing.T) {
	srv := setupServer(t)
	for _, body := range []string{`{"field":"deliverable_ids"}`, `{"field":`, `{"unknown":1}`} {
		rec := srv.do(t, httptest.NewRequest(http.MethodPost, "/work_program/onchange", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body=%s", body)
		assert.Equal(t, "bad_request", errorCode(t, rec))
	}
}

func TestImportJSONRows(t *testing.T) {
	srv := setupServer(t)
	body := `[{"name":"Audit","domain":"Finance","activity":"Review"},{"name":"Payroll","active":"no"}]`
	req := httptest.NewRequest(http.MethodPost, "/import/hierarchy", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := srv.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res importResponse
	decodeBody(t, rec, &res)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 0, res.Failed)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 2, res.Rows[0].CreatedRef)
	assert.Equal(t, "created", res.Rows[1].Outcome)
}

func multipartRequest(t *testing.T, target, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import/"+target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImportUpload(t *testing.T) {
	srv := setupServer(t)
	srv.addRef(t, testutil.NewTestActivity("Review"))

	csv := "Task Description,Activity,Departments\nClose books,Reveiw,\n"
	rec := srv.do(t, multipartRequest(t, "work_program", "programs.csv", csv))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res importResponse
	decodeBody(t, rec, &res)
	assert.Equal(t, 1, res.Created)
	require.Len(t, res.Rows, 1)
	// The task description column is also looked up as a task formulation.
	require.Len(t, res.Rows[0].Unresolved, 2)
	assert.Equal(t, "Activity", res.Rows[0].Unresolved[0].Column)
	assert.Equal(t, "Reveiw", res.Rows[0].Unresolved[0].Name)
	assert.Equal(t, []string{"Review"}, res.Rows[0].Unresolved[0].Suggestions)
}

func TestImportErrors(t *testing.T) {
	srv := setupServer(t)

	rec := srv.do(t, multipartRequest(t, "work_program", "programs.txt", "x"))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, "unsupported_format", errorCode(t, rec))

	rec = srv.do(t, httptest.NewRequest(http.MethodPost, "/import/budget", strings.NewReader("[]")))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, httptest.NewRequest(http.MethodPost, "/import/hierarchy", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulas/aulas-bff/internal/auth"
)

func TestProtectedRoutesRequireToken(t *testing.T) {
	fb := newFakeBackend(t)
	r := newTestRouter(t, fb)

	noToken := `{"error":"No token found"}`
	tests := []httpTest{
		{name: "class", method: http.MethodGet, path: "/api/classes/5", wantCode: http.StatusUnauthorized, wantData: noToken},
		{name: "student classes", method: http.MethodGet, path: "/api/classes/student-classes", wantCode: http.StatusUnauthorized, wantData: noToken},
		{name: "create class", method: http.MethodPost, path: "/api/classes/create", body: []byte(`{}`), wantCode: http.StatusUnauthorized, wantData: noToken},
		{name: "add students", method: http.MethodPost, path: "/api/classes/5/student", body: []byte(`{"studentIds":[1]}`), wantCode: http.StatusUnauthorized, wantData: noToken},
		{name: "class assignments", method: http.MethodGet, path: "/api/assignments/class/5", wantCode: http.StatusUnauthorized, wantData: noToken},
		{name: "own submission", method: http.MethodGet, path: "/api/submissions/submit/9", wantCode: http.StatusUnauthorized, wantData: noToken},
		{name: "submissions", method: http.MethodGet, path: "/api/submissions/assignment/9", wantCode: http.StatusUnauthorized, wantData: noToken},
		{name: "grade", method: http.MethodPost, path: "/api/submissions/grade/7", body: []byte(`{"grade":87}`), wantCode: http.StatusUnauthorized, wantData: noToken},
		{name: "file", method: http.MethodGet, path: "/api/files/report.pdf", wantCode: http.StatusUnauthorized, wantData: noToken},
		{name: "students", method: http.MethodGet, path: "/api/users/students", wantCode: http.StatusUnauthorized, wantData: noToken},
		{name: "me", method: http.MethodGet, path: "/api/users/me", wantCode: http.StatusUnauthorized, wantData: noToken},
		{name: "overview", method: http.MethodGet, path: "/api/classes/5/overview", wantCode: http.StatusUnauthorized, wantData: noToken},
		{name: "export", method: http.MethodGet, path: "/api/submissions/assignment/9/export", wantCode: http.StatusUnauthorized, wantData: noToken},
		{name: "create class action", method: http.MethodPost, path: "/actions/classes", body: []byte(`{}`), wantCode: http.StatusUnauthorized, wantData: noToken},
	}
	runHTTPTests(t, r, tests)

	assert.Empty(t, fb.requests(), "no backend call without a token")
}

func TestProxyRelaysBackendJSON(t *testing.T) {
	fb := newFakeBackend(t)
	fb.json(http.MethodGet, "/classes/classId/5", http.StatusOK, `{"id":5,"title":"Math","unknownField":[1,2]}`)
	fb.json(http.MethodGet, "/classes/student-classes/with-teacher", http.StatusOK, `[{"id":5,"teacherName":"Bo"}]`)
	fb.json(http.MethodGet, "/assignments/class/5", http.StatusOK, `[{"id":9,"title":"HW1"}]`)
	fb.json(http.MethodGet, "/submissions/assignment/9", http.StatusOK, `[{"id":7,"studentName":"Ana"}]`)
	fb.json(http.MethodGet, "/users/students", http.StatusOK, `[{"id":1,"name":"Ana","email":"ana@aulas.dev"}]`)
	fb.json(http.MethodGet, "/users/", http.StatusOK, `{"id":12,"name":"Ana"}`)
	r := newTestRouter(t, fb)

	cookies := sessionCookies("STUDENT")
	tests := []httpTest{
		{name: "class", method: http.MethodGet, path: "/api/classes/5", cookies: cookies, wantCode: http.StatusOK, wantData: `{"id":5,"title":"Math","unknownField":[1,2]}`},
		{name: "student classes", method: http.MethodGet, path: "/api/classes/student-classes", cookies: cookies, wantCode: http.StatusOK, wantData: `[{"id":5,"teacherName":"Bo"}]`},
		{name: "class assignments", method: http.MethodGet, path: "/api/assignments/class/5", cookies: cookies, wantCode: http.StatusOK, wantData: `[{"id":9,"title":"HW1"}]`},
		{name: "submissions", method: http.MethodGet, path: "/api/submissions/assignment/9", cookies: cookies, wantCode: http.StatusOK, wantData: `[{"id":7,"studentName":"Ana"}]`},
		{name: "students", method: http.MethodGet, path: "/api/users/students", cookies: cookies, wantCode: http.StatusOK, wantData: `[{"id":1,"name":"Ana","email":"ana@aulas.dev"}]`},
		{name: "me", method: http.MethodGet, path: "/api/users/me", cookies: cookies, wantCode: http.StatusOK, wantData: `{"id":12,"name":"Ana"}`},
	}
	runHTTPTests(t, r, tests)

	for _, req := range fb.requests() {
		assert.Equal(t, []string{"Bearer " + testToken}, req.Authorization, req.Path)
	}
}

func TestBackendErrorsKeepStatusAndHideBody(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on(http.MethodGet, "/classes/classId/5", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "java.lang.IllegalStateException: secret stack", http.StatusForbidden)
	})
	fb.json(http.MethodGet, "/users/students", http.StatusOK, `{not json`)
	r := newTestRouter(t, fb)

	runHTTPTests(t, r, []httpTest{
		{name: "upstream 403", method: http.MethodGet, path: "/api/classes/5", cookies: sessionCookies("STUDENT"),
			wantCode: http.StatusForbidden, wantData: `{"error":"Failed to fetch class details"}`},
		{name: "malformed body", method: http.MethodGet, path: "/api/users/students", cookies: sessionCookies("STUDENT"),
			wantCode: http.StatusInternalServerError, wantData: `{"error":"Internal server error"}`},
	})
}

func TestTransportFailureIs500(t *testing.T) {
	fb := newFakeBackend(t)
	url := fb.srv.URL
	fb.srv.Close()

	r := newTestRouterWith(t, testConfig(url), stubPinger{})
	runHTTPTests(t, r, []httpTest{
		{name: "closed backend", method: http.MethodGet, path: "/api/classes/5", cookies: sessionCookies("STUDENT"),
			wantCode: http.StatusInternalServerError, wantData: `{"error":"Internal server error"}`},
	})
}

func TestPendingAssignmentsTokenOptional(t *testing.T) {
	fb := newFakeBackend(t)
	fb.json(http.MethodGet, "/assignments/student-pending-assignments", http.StatusOK, `[]`)
	r := newTestRouter(t, fb)

	rec := serve(r, newRequest(http.MethodGet, "/api/assignments/student-assignments/pending", nil, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, []string{""}, fb.last(t).Authorization)

	rec = serve(r, newRequest(http.MethodGet, "/api/assignments/student-assignments/pending", nil, sessionCookies("STUDENT")))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Bearer " + testToken}, fb.last(t).Authorization)
}

func TestOwnSubmission(t *testing.T) {
	fb := newFakeBackend(t)
	fb.json(http.MethodGet, "/submissions/my-submissions/9", http.StatusOK, `{"id":7,"submissionFile":"homework.pdf","submissionDate":"2025-03-10"}`)
	fb.on(http.MethodGet, "/submissions/my-submissions/10", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Submission not found", http.StatusNotFound)
	})
	fb.json(http.MethodGet, "/submissions/my-submissions/11", http.StatusBadGateway, `{}`)
	r := newTestRouter(t, fb)

	cookies := sessionCookies("STUDENT")
	runHTTPTests(t, r, []httpTest{
		{name: "submitted", method: http.MethodGet, path: "/api/submissions/submit/9", cookies: cookies,
			wantCode: http.StatusOK, wantData: `{"id":7,"submissionFile":"homework.pdf","submissionDate":"2025-03-10"}`},
		{name: "nothing submitted", method: http.MethodGet, path: "/api/submissions/submit/10", cookies: cookies,
			wantCode: http.StatusNotFound, wantData: `{"message":"No submission"}`},
		{name: "other failure", method: http.MethodGet, path: "/api/submissions/submit/11", cookies: cookies,
			wantCode: http.StatusBadGateway, wantData: `{"error":"Failed to fetch existing submission"}`},
	})
}

func multipartBody(t *testing.T, field, name, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file"))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestSubmitForwardsMultipartFile(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on(http.MethodPost, "/submissions/submit/9", func(w http.ResponseWriter, r *http.Request) {
		f, fh, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		content, _ := io.ReadAll(f)
		assert.Equal(t, "homework.pdf", fh.Filename)
		assert.Equal(t, "%PDF-1.4 answers", string(content))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":7,"submissionFile":"homework.pdf","submissionDate":"2025-03-10T09:00:00"}`))
	})
	r := newTestRouter(t, fb)

	body, ct := multipartBody(t, "file", "homework.pdf", "%PDF-1.4 answers")
	req := newRequest(http.MethodPost, "/api/submissions/submit/9", nil, sessionCookies("STUDENT"))
	req.Body = io.NopCloser(body)
	req.Header.Set("Content-Type", ct)

	rec := serve(r, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7,"submissionFile":"homework.pdf","submissionDate":"2025-03-10T09:00:00"}`, rec.Body.String())

	got := fb.last(t)
	assert.Equal(t, []string{"Bearer " + testToken}, got.Authorization)
	mediaType, _, err := mime.ParseMediaType(got.ContentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)
}

func TestSubmitWithoutFile(t *testing.T) {
	fb := newFakeBackend(t)
	r := newTestRouter(t, fb)

	body, ct := multipartBody(t, "", "", "")
	req := newRequest(http.MethodPost, "/api/submissions/submit/9", nil, sessionCookies("STUDENT"))
	req.Body = io.NopCloser(body)
	req.Header.Set("Content-Type", ct)

	rec := serve(r, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No file found in the form data."}`, rec.Body.String())
	assert.Empty(t, fb.requests())
}

func TestGradeValidation(t *testing.T) {
	fb := newFakeBackend(t)
	r := newTestRouter(t, fb)

	invalid := `{"error":"Invalid grade. Must be a number between 0 and 100."}`
	cookies := sessionCookies("TEACHER")
	runHTTPTests(t, r, []httpTest{
		{name: "negative", method: http.MethodPost, path: "/api/submissions/grade/7", body: []byte(`{"grade":-1}`), cookies: cookies, wantCode: http.StatusBadRequest, wantData: invalid},
		{name: "above range", method: http.MethodPost, path: "/api/submissions/grade/7", body: []byte(`{"grade":101}`), cookies: cookies, wantCode: http.StatusBadRequest, wantData: invalid},
		{name: "string", method: http.MethodPost, path: "/api/submissions/grade/7", body: []byte(`{"grade":"abc"}`), cookies: cookies, wantCode: http.StatusBadRequest, wantData: invalid},
		{name: "fraction", method: http.MethodPost, path: "/api/submissions/grade/7", body: []byte(`{"grade":87.5}`), cookies: cookies, wantCode: http.StatusBadRequest, wantData: invalid},
		{name: "missing", method: http.MethodPost, path: "/api/submissions/grade/7", body: []byte(`{}`), cookies: cookies, wantCode: http.StatusBadRequest, wantData: invalid},
		{name: "huge", method: http.MethodPost, path: "/api/submissions/grade/7", body: []byte(`{"grade":1e300}`), cookies: cookies, wantCode: http.StatusBadRequest, wantData: invalid},
	})

	assert.Empty(t, fb.requests(), "invalid grades never reach the backend")
}

func TestGradeForwardsPut(t *testing.T) {
	fb := newFakeBackend(t)
	fb.json(http.MethodPut, "/submissions/grade/7", http.StatusOK, `{"id":7,"grade":87}`)
	r := newTestRouter(t, fb)

	runHTTPTests(t, r, []httpTest{
		{name: "87", method: http.MethodPost, path: "/api/submissions/grade/7", body: []byte(`{"grade":87}`), cookies: sessionCookies("TEACHER"),
			wantCode: http.StatusOK, wantData: `{"success":true,"data":{"id":7,"grade":87}}`},
		{name: "boundary 0", method: http.MethodPost, path: "/api/submissions/grade/7", body: []byte(`{"grade":0}`), cookies: sessionCookies("TEACHER"),
			wantCode: http.StatusOK},
		{name: "boundary 100", method: http.MethodPost, path: "/api/submissions/grade/7", body: []byte(`{"grade":100}`), cookies: sessionCookies("TEACHER"),
			wantCode: http.StatusOK},
	})

	reqs := fb.requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, http.MethodPut, reqs[0].Method)
	assert.JSONEq(t, `{"grade":87}`, string(reqs[0].Body))
	assert.JSONEq(t, `{"grade":100}`, string(reqs[2].Body))
}

func TestDownloadFile(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on(http.MethodGet, "/files/report.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.7 report"))
	})
	r := newTestRouter(t, fb)

	rec := serve(r, newRequest(http.MethodGet, "/api/files/report.pdf", nil, sessionCookies("TEACHER")))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="report.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.7 report", rec.Body.String())
	assert.Equal(t, []string{"Bearer " + testToken}, fb.last(t).Authorization)
}

func TestDownloadMissingFile(t *testing.T) {
	fb := newFakeBackend(t)
	r := newTestRouter(t, fb)

	rec := serve(r, newRequest(http.MethodGet, "/api/files/missing.pdf", nil, sessionCookies("TEACHER")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to download file"}`, rec.Body.String())
}

func TestCreateClass(t *testing.T) {
	fb := newFakeBackend(t)
	fb.json(http.MethodPost, "/classes/create", http.StatusOK, `{"id":5,"title":"Math"}`)
	r := newTestRouter(t, fb)

	payload := `{"title":"Math","description":"Algebra","place":"Room 1","startDate":"2025-03-01T10:00:00Z","endDate":"2025-06-30"}`
	runHTTPTests(t, r, []httpTest{
		{name: "created", method: http.MethodPost, path: "/api/classes/create", body: []byte(payload), cookies: sessionCookies("TEACHER"),
			wantCode: http.StatusCreated, wantData: `{"success":true,"data":{"id":5,"title":"Math"}}`},
	})

	var sent map[string]any
	require.NoError(t, json.Unmarshal(fb.last(t).Body, &sent))
	assert.Equal(t, "2025-03-01", sent["startDate"])
	assert.Equal(t, "2025-06-30", sent["endDate"])
	assert.EqualValues(t, 12, sent["teacher_id"])

	noID := sessionCookies("TEACHER")
	delete(noID, auth.CookieUserID)
	runHTTPTests(t, r, []httpTest{
		{name: "missing fields", method: http.MethodPost, path: "/api/classes/create", body: []byte(`{"title":"Math"}`), cookies: sessionCookies("TEACHER"),
			wantCode: http.StatusBadRequest, wantData: `{"error":"Missing required fields"}`},
		{name: "no id cookie", method: http.MethodPost, path: "/api/classes/create", body: []byte(payload), cookies: noID,
			wantCode: http.StatusUnauthorized, wantData: `{"error":"User ID not found in cookies"}`},
	})
	assert.Len(t, fb.requests(), 1)
}

func TestAddStudents(t *testing.T) {
	fb := newFakeBackend(t)
	fb.json(http.MethodPost, "/classes/add-students", http.StatusOK, `{"enrolled":2}`)
	r := newTestRouter(t, fb)

	invalid := `{"error":"Invalid payload. 'studentIds' must be an array of numbers."}`
	cookies := sessionCookies("TEACHER")
	runHTTPTests(t, r, []httpTest{
		{name: "not an array", method: http.MethodPost, path: "/api/classes/5/student", body: []byte(`{"studentIds":"1,2"}`), cookies: cookies, wantCode: http.StatusBadRequest, wantData: invalid},
		{name: "missing", method: http.MethodPost, path: "/api/classes/5/student", body: []byte(`{}`), cookies: cookies, wantCode: http.StatusBadRequest, wantData: invalid},
		{name: "strings in array", method: http.MethodPost, path: "/api/classes/5/student", body: []byte(`{"studentIds":["a"]}`), cookies: cookies, wantCode: http.StatusBadRequest, wantData: invalid},
	})
	assert.Empty(t, fb.requests())

	runHTTPTests(t, r, []httpTest{
		{name: "enrolled", method: http.MethodPost, path: "/api/classes/5/student", body: []byte(`{"studentIds":[1,2]}`), cookies: cookies,
			wantCode: http.StatusOK, wantData: `{"success":true,"data":{"enrolled":2}}`},
	})
	assert.JSONEq(t, `{"classId":5,"studentIds":[1,2]}`, string(fb.last(t).Body))
}

package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulas/aulas-bff/internal/auth"
)

func TestCreateClassAction(t *testing.T) {
	fb := newFakeBackend(t)
	fb.json(http.MethodPost, "/classes/create", http.StatusOK, `{"id":5}`)
	r := newTestRouter(t, fb)

	payload := []byte(`{"title":"Math","description":"Algebra","place":"Room 1","startDate":"2025-03-01","endDate":"2025-06-30T00:00:00Z"}`)
	noID := sessionCookies("TEACHER")
	delete(noID, auth.CookieUserID)

	runHTTPTests(t, r, []httpTest{
		{name: "no id cookie", method: http.MethodPost, path: "/actions/classes", body: payload, cookies: noID,
			wantCode: http.StatusUnauthorized, wantData: `{"success":false,"error":"User ID not found in cookies"}`},
		{name: "created", method: http.MethodPost, path: "/actions/classes", body: payload, cookies: sessionCookies("TEACHER"),
			wantCode: http.StatusOK, wantData: `{"success":true}`},
	})

	var sent map[string]any
	require.NoError(t, json.Unmarshal(fb.last(t).Body, &sent))
	assert.Equal(t, "2025-06-30", sent["endDate"])
	assert.EqualValues(t, 12, sent["teacher_id"])
	assert.Len(t, fb.requests(), 1)
}

func TestCreateClassActionBackendFailure(t *testing.T) {
	fb := newFakeBackend(t)
	fb.json(http.MethodPost, "/classes/create", http.StatusInternalServerError, `{"message":"constraint violation"}`)
	r := newTestRouter(t, fb)

	payload := []byte(`{"title":"Math","description":"Algebra","place":"Room 1","startDate":"2025-03-01","endDate":"2025-06-30"}`)
	runHTTPTests(t, r, []httpTest{
		{name: "failed", method: http.MethodPost, path: "/actions/classes", body: payload, cookies: sessionCookies("TEACHER"),
			wantCode: http.StatusOK, wantData: `{"success":false,"error":"Failed to add class"}`},
	})
}

func TestCreateAssignmentAction(t *testing.T) {
	fb := newFakeBackend(t)
	fb.json(http.MethodPost, "/assignments/create/5", http.StatusOK, `{"id":9,"title":"HW1","dueDate":"2025-04-01"}`)
	r := newTestRouter(t, fb)

	runHTTPTests(t, r, []httpTest{
		{name: "missing fields", method: http.MethodPost, path: "/actions/classes/5/assignments", body: []byte(`{"title":"HW1"}`), cookies: sessionCookies("TEACHER"),
			wantCode: http.StatusBadRequest, wantData: `{"error":"Missing required fields"}`},
		{name: "created", method: http.MethodPost, path: "/actions/classes/5/assignments",
			body:    []byte(`{"title":"HW1","description":"Exercises 1-10","dueDate":"2025-04-01"}`),
			cookies: sessionCookies("TEACHER"), wantCode: http.StatusOK, wantData: `{"id":9,"title":"HW1","dueDate":"2025-04-01"}`},
	})

	assert.Len(t, fb.requests(), 1)
	assert.JSONEq(t, `{"title":"HW1","description":"Exercises 1-10","dueDate":"2025-04-01"}`, string(fb.last(t).Body))
}

func TestAddStudentAction(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on(http.MethodPost, "/classes/add-student", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("Student added to class"))
	})
	r := newTestRouter(t, fb)

	runHTTPTests(t, r, []httpTest{
		{name: "added", method: http.MethodPost, path: "/actions/classes/5/students", body: []byte(`{"studentId":3}`), cookies: sessionCookies("TEACHER"),
			wantCode: http.StatusOK, wantData: `{"message":"Student added to class"}`},
		{name: "no student", method: http.MethodPost, path: "/actions/classes/5/students", body: []byte(`{}`), cookies: sessionCookies("TEACHER"),
			wantCode: http.StatusBadRequest},
		{name: "bad class id", method: http.MethodPost, path: "/actions/classes/abc/students", body: []byte(`{"studentId":3}`), cookies: sessionCookies("TEACHER"),
			wantCode: http.StatusBadRequest, wantData: `{"error":"Invalid class id"}`},
	})

	assert.Len(t, fb.requests(), 1)
	assert.JSONEq(t, `{"classId":5,"studentId":3}`, string(fb.last(t).Body))
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2025-03-01", "2025-03-01"},
		{"2025-03-01T10:00:00Z", "2025-03-01"},
		{"2025-03-01T23:30:00-03:00", "2025-03-01"},
		{"next monday", "next monday"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeDate(tt.in), tt.in)
	}
}

package backend

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/aulas/aulas-bff/internal/models"
)

// Resource calls. out is decoded with encoding/json, so handlers pass a
// *json.RawMessage to relay bodies unchanged and the workflow passes typed values.

func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	var res models.LoginResult
	if err := c.SendJSON(ctx, "", http.MethodPost, "/users/login", creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, reg models.Registration) error {
	return c.SendJSON(ctx, "", http.MethodPost, "/users/register", reg, nil)
}

func (c *Client) CurrentUser(ctx context.Context, token string, out any) error {
	return c.SendJSON(ctx, token, http.MethodGet, "/users/", nil, out)
}

func (c *Client) Students(ctx context.Context, token string, out any) error {
	return c.SendJSON(ctx, token, http.MethodGet, "/users/students", nil, out)
}

func (c *Client) Class(ctx context.Context, token, classID string, out any) error {
	return c.SendJSON(ctx, token, http.MethodGet, "/classes/classId/"+seg(classID), nil, out)
}

func (c *Client) StudentClasses(ctx context.Context, token string, out any) error {
	return c.SendJSON(ctx, token, http.MethodGet, "/classes/student-classes/with-teacher", nil, out)
}

func (c *Client) CreateClass(ctx context.Context, token string, class models.NewClass, out any) error {
	return c.SendJSON(ctx, token, http.MethodPost, "/classes/create", class, out)
}

func (c *Client) AddStudents(ctx context.Context, token string, enrollment models.BulkEnrollment, out any) error {
	return c.SendJSON(ctx, token, http.MethodPost, "/classes/add-students", enrollment, out)
}

// AddStudent answers with a plain-text confirmation message.
func (c *Client) AddStudent(ctx context.Context, token string, enrollment models.Enrollment) (string, error) {
	return c.SendText(ctx, token, http.MethodPost, "/classes/add-student", enrollment)
}

func (c *Client) ClassAssignments(ctx context.Context, token, classID string, out any) error {
	return c.SendJSON(ctx, token, http.MethodGet, "/assignments/class/"+seg(classID), nil, out)
}

func (c *Client) CreateAssignment(ctx context.Context, token, classID string, a models.NewAssignment, out any) error {
	return c.SendJSON(ctx, token, http.MethodPost, "/assignments/create/"+seg(classID), a, out)
}

// PendingAssignments may be called without a token; the header is then sent empty.
func (c *Client) PendingAssignments(ctx context.Context, token string, out any) error {
	return c.SendJSON(ctx, token, http.MethodGet, "/assignments/student-pending-assignments", nil, out)
}

// MySubmission returns an error matching ErrNotFound when nothing was submitted yet.
func (c *Client) MySubmission(ctx context.Context, token, assignmentID string, out any) error {
	return c.SendJSON(ctx, token, http.MethodGet, "/submissions/my-submissions/"+seg(assignmentID), nil, out)
}

func (c *Client) Submit(ctx context.Context, token, assignmentID, fileName string, content io.Reader, out any) error {
	return c.Upload(ctx, token, "/submissions/submit/"+seg(assignmentID), fileName, content, out)
}

func (c *Client) AssignmentSubmissions(ctx context.Context, token, assignmentID string, out any) error {
	return c.SendJSON(ctx, token, http.MethodGet, "/submissions/assignment/"+seg(assignmentID), nil, out)
}

func (c *Client) Grade(ctx context.Context, token, submissionID string, grade int, out any) error {
	return c.SendJSON(ctx, token, http.MethodPut, "/submissions/grade/"+seg(submissionID), models.GradeUpdate{Grade: grade}, out)
}

func (c *Client) DownloadFile(ctx context.Context, token, fileName string) (*File, error) {
	return c.Download(ctx, token, "/files/"+seg(fileName))
}

// Session binds a Client to one bearer token and exposes the typed calls the
// submission workflow needs.
type Session struct {
	client *Client
	token  string
}

func (c *Client) WithToken(token string) *Session {
	return &Session{client: c, token: token}
}

func (s *Session) ClassAssignments(ctx context.Context, classID int64) ([]models.Assignment, error) {
	var out []models.Assignment
	if err := s.client.ClassAssignments(ctx, s.token, id(classID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) MySubmission(ctx context.Context, assignmentID int64) (*models.Submission, error) {
	var out models.Submission
	if err := s.client.MySubmission(ctx, s.token, id(assignmentID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) AssignmentSubmissions(ctx context.Context, assignmentID int64) ([]models.Submission, error) {
	var out []models.Submission
	if err := s.client.AssignmentSubmissions(ctx, s.token, id(assignmentID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) SubmitFile(ctx context.Context, assignmentID int64, fileName string, content io.Reader) error {
	return s.client.Submit(ctx, s.token, id(assignmentID), fileName, content, nil)
}

func (s *Session) GradeSubmission(ctx context.Context, submissionID int64, grade int) error {
	return s.client.Grade(ctx, s.token, id(submissionID), grade, nil)
}

func id(n int64) string {
	return strconv.FormatInt(n, 10)
}

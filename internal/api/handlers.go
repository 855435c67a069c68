package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/aulas/aulas-bff/internal/auth"
	"github.com/aulas/aulas-bff/internal/backend"
	"github.com/aulas/aulas-bff/internal/logger"
	"github.com/aulas/aulas-bff/internal/models"
	"github.com/aulas/aulas-bff/internal/workflow"
)

// ErrorResponse is the body of every failed call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler serves the proxy routes. Each one reads the token cookie, calls
// the Backend Service once and reshapes the answer.
type Handler struct {
	backend *backend.Client
	log     zerolog.Logger
}

func NewHandler(client *backend.Client) *Handler {
	return &Handler{backend: client, log: logger.Get()}
}

func token(c *gin.Context) string {
	return c.GetString(auth.CookieToken)
}

// fail maps a backend error to the client. Upstream statuses are kept with
// a generic message; anything else is a 500.
func (h *Handler) fail(c *gin.Context, err error, msg string) {
	var se *backend.StatusError
	if errors.As(err, &se) {
		h.log.Error().Int("status", se.Status).Str("body", se.Body).Str("path", c.Request.URL.Path).Msg(msg)
		c.JSON(se.Status, ErrorResponse{Error: msg})
		return
	}
	h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
}

// GetClass godoc
// @Summary      Get class
// @Description  Fetches one class from the Backend Service
// @Tags         classes
// @Produce      json
// @Param        classId  path      string  true  "Class ID"
// @Success      200      {object}  models.ClassInfo
// @Failure      401      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Security     CookieAuth
// @Router       /api/classes/{classId} [get]
func (h *Handler) GetClass(c *gin.Context) {
	var out json.RawMessage
	if err := h.backend.Class(c.Request.Context(), token(c), c.Param("classId"), &out); err != nil {
		h.fail(c, err, "Failed to fetch class details")
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetStudentClasses godoc
// @Summary      List enrolled classes
// @Tags         classes
// @Produce      json
// @Success      200  {array}   models.ClassInfo
// @Failure      401  {object}  ErrorResponse
// @Security     CookieAuth
// @Router       /api/classes/student-classes [get]
func (h *Handler) GetStudentClasses(c *gin.Context) {
	var out json.RawMessage
	if err := h.backend.StudentClasses(c.Request.Context(), token(c), &out); err != nil {
		h.fail(c, err, "Failed to fetch student classes")
		return
	}
	c.JSON(http.StatusOK, out)
}

// CreateClass godoc
// @Summary      Create class
// @Description  Creates a class owned by the logged-in teacher (id cookie)
// @Tags         classes
// @Accept       json
// @Produce      json
// @Param        body  body      models.NewClass  true  "Class"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Security     CookieAuth
// @Router       /api/classes/create [post]
func (h *Handler) CreateClass(c *gin.Context) {
	var req models.NewClass
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing required fields"})
		return
	}

	teacherID, err := teacherID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in cookies"})
		return
	}
	req.TeacherID = teacherID
	req.StartDate = normalizeDate(req.StartDate)
	req.EndDate = normalizeDate(req.EndDate)

	var out json.RawMessage
	if err := h.backend.CreateClass(c.Request.Context(), token(c), req, &out); err != nil {
		h.fail(c, err, "Failed to add class")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": out})
}

type addStudentsRequest struct {
	StudentIDs []int64 `json:"studentIds" binding:"required"`
}

// AddStudents godoc
// @Summary      Enroll students
// @Tags         classes
// @Accept       json
// @Produce      json
// @Param        classId  path      string              true  "Class ID"
// @Param        body     body      addStudentsRequest  true  "Student ids"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  ErrorResponse
// @Security     CookieAuth
// @Router       /api/classes/{classId}/student [post]
func (h *Handler) AddStudents(c *gin.Context) {
	var req addStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid payload. 'studentIds' must be an array of numbers."})
		return
	}

	classID, err := parseID(c.Param("classId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid class id"})
		return
	}

	var out json.RawMessage
	body := models.BulkEnrollment{ClassID: classID, StudentIDs: req.StudentIDs}
	if err := h.backend.AddStudents(c.Request.Context(), token(c), body, &out); err != nil {
		h.fail(c, err, "Failed to add students to the class.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}

// GetClassAssignments godoc
// @Summary      List assignments of a class
// @Tags         assignments
// @Produce      json
// @Param        classId  path      string  true  "Class ID"
// @Success      200      {array}   models.Assignment
// @Failure      401      {object}  ErrorResponse
// @Security     CookieAuth
// @Router       /api/assignments/class/{classId} [get]
func (h *Handler) GetClassAssignments(c *gin.Context) {
	var out json.RawMessage
	if err := h.backend.ClassAssignments(c.Request.Context(), token(c), c.Param("classId"), &out); err != nil {
		h.fail(c, err, "Failed to fetch assignments")
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetPendingAssignments godoc
// @Summary      List pending assignments of the current student
// @Description  The token is optional here; without it an empty Authorization header is forwarded
// @Tags         assignments
// @Produce      json
// @Success      200  {array}   models.Assignment
// @Router       /api/assignments/student-assignments/pending [get]
func (h *Handler) GetPendingAssignments(c *gin.Context) {
	tok, _ := auth.Token(c)
	var out json.RawMessage
	if err := h.backend.PendingAssignments(c.Request.Context(), tok, &out); err != nil {
		h.fail(c, err, "Failed to fetch pending assignments")
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetMySubmission godoc
// @Summary      Check own submission
// @Description  404 with {"message":"No submission"} means nothing was submitted yet
// @Tags         submissions
// @Produce      json
// @Param        assignmentId  path      string  true  "Assignment ID"
// @Success      200           {object}  models.Submission
// @Failure      404           {object}  map[string]string
// @Security     CookieAuth
// @Router       /api/submissions/submit/{assignmentId} [get]
func (h *Handler) GetMySubmission(c *gin.Context) {
	var out json.RawMessage
	err := h.backend.MySubmission(c.Request.Context(), token(c), c.Param("assignmentId"), &out)
	if errors.Is(err, backend.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "No submission"})
		return
	}
	if err != nil {
		h.fail(c, err, "Failed to fetch existing submission")
		return
	}
	c.JSON(http.StatusOK, out)
}

// Submit godoc
// @Summary      Submit a file
// @Description  Forwards the upload as multipart field "file", keeping the file name
// @Tags         submissions
// @Accept       multipart/form-data
// @Produce      json
// @Param        assignmentId  path      string  true  "Assignment ID"
// @Param        file          formData  file    true  "Submission file"
// @Success      200           {object}  models.Submission
// @Failure      400           {object}  ErrorResponse
// @Security     CookieAuth
// @Router       /api/submissions/submit/{assignmentId} [post]
func (h *Handler) Submit(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No file found in the form data."})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.fail(c, err, "Failed to read upload")
		return
	}
	defer f.Close()

	var out json.RawMessage
	if err := h.backend.Submit(c.Request.Context(), token(c), c.Param("assignmentId"), fh.Filename, f, &out); err != nil {
		h.fail(c, err, "Failed to forward file")
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetAssignmentSubmissions godoc
// @Summary      List submissions of an assignment (teacher)
// @Tags         submissions
// @Produce      json
// @Param        assignmentId  path      string  true  "Assignment ID"
// @Success      200           {array}   models.Submission
// @Security     CookieAuth
// @Router       /api/submissions/assignment/{assignmentId} [get]
func (h *Handler) GetAssignmentSubmissions(c *gin.Context) {
	var out json.RawMessage
	if err := h.backend.AssignmentSubmissions(c.Request.Context(), token(c), c.Param("assignmentId"), &out); err != nil {
		h.fail(c, err, "Failed to fetch submissions")
		return
	}
	c.JSON(http.StatusOK, out)
}

type gradeRequest struct {
	Grade *float64 `json:"grade"`
}

// integer accepts whole numbers in 0..100 only; 87.5 is rejected.
func (r gradeRequest) integer() (int, bool) {
	if r.Grade == nil || *r.Grade != math.Trunc(*r.Grade) || *r.Grade < 0 || *r.Grade > 100 {
		return 0, false
	}
	grade := int(*r.Grade)
	return grade, workflow.ValidateGrade(grade) == nil
}

// GradeSubmission godoc
// @Summary      Grade a submission
// @Description  Grade must be an integer between 0 and 100; sent to the Backend Service with PUT
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        submissionId  path      string              true  "Submission ID"
// @Param        body          body      models.GradeUpdate  true  "Grade"
// @Success      200           {object}  map[string]interface{}
// @Failure      400           {object}  ErrorResponse
// @Security     CookieAuth
// @Router       /api/submissions/grade/{submissionId} [post]
func (h *Handler) GradeSubmission(c *gin.Context) {
	var req gradeRequest
	grade, ok := 0, false
	if err := c.ShouldBindJSON(&req); err == nil {
		grade, ok = req.integer()
	}
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid grade. Must be a number between 0 and 100."})
		return
	}

	var out json.RawMessage
	if err := h.backend.Grade(c.Request.Context(), token(c), c.Param("submissionId"), grade, &out); err != nil {
		h.fail(c, err, "Failed to grade submission")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}

// DownloadFile godoc
// @Summary      Download a submitted file
// @Tags         files
// @Produce      octet-stream
// @Param        fileName  path  string  true  "File name"
// @Success      200
// @Failure      401  {object}  ErrorResponse
// @Security     CookieAuth
// @Router       /api/files/{fileName} [get]
func (h *Handler) DownloadFile(c *gin.Context) {
	name := c.Param("fileName")
	f, err := h.backend.DownloadFile(c.Request.Context(), token(c), name)
	if err != nil {
		h.fail(c, err, "Failed to download file")
		return
	}
	defer f.Body.Close()

	c.DataFromReader(http.StatusOK, f.Length, f.ContentType, f.Body, map[string]string{
		"Content-Disposition": attachment(name),
	})
}

// GetStudents godoc
// @Summary      List students
// @Description  Students available for the enrollment picker
// @Tags         users
// @Produce      json
// @Success      200  {array}   models.Student
// @Security     CookieAuth
// @Router       /api/users/students [get]
func (h *Handler) GetStudents(c *gin.Context) {
	var out json.RawMessage
	if err := h.backend.Students(c.Request.Context(), token(c), &out); err != nil {
		h.fail(c, err, "Failed to fetch available students.")
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetMe godoc
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Security     CookieAuth
// @Router       /api/users/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	var out json.RawMessage
	if err := h.backend.CurrentUser(c.Request.Context(), token(c), &out); err != nil {
		h.fail(c, err, "Failed to fetch user")
		return
	}
	c.JSON(http.StatusOK, out)
}

func attachment(name string) string {
	return fmt.Sprintf(`attachment; filename="%s"`, strings.ReplaceAll(name, `"`, `\"`))
}

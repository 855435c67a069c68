package api

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/aulas/aulas-bff/internal/auth"
	"github.com/aulas/aulas-bff/internal/models"
)

var errNoUserID = errors.New("id cookie missing")

var plainDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func teacherID(c *gin.Context) (int64, error) {
	raw, ok := auth.UserID(c)
	if !ok {
		return 0, errNoUserID
	}
	return parseID(raw)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, errors.Wrapf(err, "invalid id %q", raw)
}

// normalizeDate reduces timestamps to YYYY-MM-DD. Values it cannot parse are
// passed through for the Backend Service to reject.
func normalizeDate(s string) string {
	if plainDate.MatchString(s) {
		return s
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("2006-01-02")
	}
	return s
}

// CreateClassAction godoc
// @Summary      Create class (form action)
// @Tags         actions
// @Accept       json
// @Produce      json
// @Param        body  body      models.NewClass  true  "Class"
// @Success      200   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]interface{}
// @Security     CookieAuth
// @Router       /actions/classes [post]
func (h *Handler) CreateClassAction(c *gin.Context) {
	teacherID, err := teacherID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User ID not found in cookies"})
		return
	}

	var req models.NewClass
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing required fields"})
		return
	}
	req.TeacherID = teacherID
	req.StartDate = normalizeDate(req.StartDate)
	req.EndDate = normalizeDate(req.EndDate)

	if err := h.backend.CreateClass(c.Request.Context(), token(c), req, nil); err != nil {
		h.log.Error().Err(err).Int64("teacher_id", teacherID).Msg("create class action failed")
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Failed to add class"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateAssignmentAction godoc
// @Summary      Create assignment (form action)
// @Tags         actions
// @Accept       json
// @Produce      json
// @Param        classId  path      string                true  "Class ID"
// @Param        body     body      models.NewAssignment  true  "Assignment"
// @Success      200      {object}  models.Assignment
// @Failure      400      {object}  ErrorResponse
// @Security     CookieAuth
// @Router       /actions/classes/{classId}/assignments [post]
func (h *Handler) CreateAssignmentAction(c *gin.Context) {
	var req models.NewAssignment
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing required fields"})
		return
	}

	var out json.RawMessage
	if err := h.backend.CreateAssignment(c.Request.Context(), token(c), c.Param("classId"), req, &out); err != nil {
		h.fail(c, err, "Failed to create assignment")
		return
	}
	c.JSON(http.StatusOK, out)
}

type addStudentForm struct {
	StudentID int64 `json:"studentId" form:"studentId" binding:"required"`
}

// AddStudentAction godoc
// @Summary      Enroll one student (form action)
// @Tags         actions
// @Accept       json
// @Produce      json
// @Param        classId  path      string          true  "Class ID"
// @Param        body     body      addStudentForm  true  "Student"
// @Success      200      {object}  map[string]string
// @Failure      400      {object}  ErrorResponse
// @Security     CookieAuth
// @Router       /actions/classes/{classId}/students [post]
func (h *Handler) AddStudentAction(c *gin.Context) {
	var req addStudentForm
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing required fields"})
		return
	}
	classID, err := parseID(c.Param("classId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid class id"})
		return
	}

	msg, err := h.backend.AddStudent(c.Request.Context(), token(c), models.Enrollment{ClassID: classID, StudentID: req.StudentID})
	if err != nil {
		h.fail(c, err, "Failed to add student to the class.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

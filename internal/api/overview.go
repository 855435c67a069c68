package api

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aulas/aulas-bff/internal/auth"
	"github.com/aulas/aulas-bff/internal/excel"
	"github.com/aulas/aulas-bff/internal/models"
	"github.com/aulas/aulas-bff/internal/workflow"
)

// ClassOverview is the class page in one response.
type ClassOverview struct {
	Class       models.ClassInfo          `json:"class"`
	Progress    float64                   `json:"progress"`
	Role        models.Role               `json:"role"`
	Assignments []workflow.AssignmentView `json:"assignments"`
}

// GetClassOverview godoc
// @Summary      Class page
// @Description  Class details, period progress and every assignment with its submission state.
// @Description  Teachers (role cookie) get submission lists; everyone else gets their own submission.
// @Tags         classes
// @Produce      json
// @Param        classId  path      string  true  "Class ID"
// @Success      200      {object}  ClassOverview
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Security     CookieAuth
// @Router       /api/classes/{classId}/overview [get]
func (h *Handler) GetClassOverview(c *gin.Context) {
	ctx := c.Request.Context()
	classID, err := parseID(c.Param("classId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid class id"})
		return
	}

	var class models.ClassInfo
	if err := h.backend.Class(ctx, token(c), c.Param("classId"), &class); err != nil {
		h.fail(c, err, "Failed to fetch class details")
		return
	}

	session := h.backend.WithToken(token(c))
	assignments, err := session.ClassAssignments(ctx, classID)
	if err != nil {
		h.fail(c, err, "Failed to fetch assignments")
		return
	}

	role := models.RoleStudent
	if s, _ := auth.ReadSession(c); s.Role == models.RoleTeacher {
		role = models.RoleTeacher
	}

	wf := workflow.New(workflow.NewStore(assignments), session)
	if role == models.RoleTeacher {
		wf.LoadTeacher(ctx)
	} else {
		wf.LoadStudent(ctx)
	}

	c.JSON(http.StatusOK, ClassOverview{
		Class:       class,
		Progress:    workflow.Progress(class, workflow.NowFunc()),
		Role:        role,
		Assignments: wf.Store().Snapshot(role == models.RoleTeacher),
	})
}

// ExportSubmissions godoc
// @Summary      Export gradebook
// @Description  All submissions of an assignment as an xlsx sheet
// @Tags         submissions
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        assignmentId  path  string  true  "Assignment ID"
// @Success      200
// @Failure      401  {object}  ErrorResponse
// @Security     CookieAuth
// @Router       /api/submissions/assignment/{assignmentId}/export [get]
func (h *Handler) ExportSubmissions(c *gin.Context) {
	id := c.Param("assignmentId")

	var subs []models.Submission
	if err := h.backend.AssignmentSubmissions(c.Request.Context(), token(c), id, &subs); err != nil {
		h.fail(c, err, "Failed to fetch submissions")
		return
	}

	var buf bytes.Buffer
	if err := excel.WriteGradebook(&buf, subs); err != nil {
		h.fail(c, err, "Failed to build gradebook")
		return
	}

	c.Header("Content-Disposition", attachment(excel.FileName(id)))
	c.Data(http.StatusOK, excel.ContentType, buf.Bytes())
}

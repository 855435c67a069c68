package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/aulas/aulas-bff/docs"
	"github.com/aulas/aulas-bff/internal/auth"
	"github.com/aulas/aulas-bff/internal/backend"
	"github.com/aulas/aulas-bff/internal/config"
	"github.com/aulas/aulas-bff/internal/cron"
	"github.com/aulas/aulas-bff/internal/logger"
)

// @title           Aulas BFF API
// @version         1.0
// @description     Session gate and proxy in front of the Aulas Backend Service.
// @host            localhost:8000
// @BasePath        /

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name authToken
func SetupRouter(cfg *config.Config, client *backend.Client, gate *auth.Gate, monitor *cron.Monitor) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(), gate.Middleware())

	// Public routes
	r.GET("/health", func(c *gin.Context) {
		if ok, _ := monitor.Healthy(); !ok {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "backend_unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Session
	session := auth.NewHandler(cfg, client)
	r.POST("/login", session.Login)
	r.POST("/register", session.Register)
	r.POST("/logout", session.Logout)
	r.GET("/api/session", session.Me)

	h := NewHandler(client)

	// Token is optional here
	r.GET("/api/assignments/student-assignments/pending", h.GetPendingAssignments)

	// Protected
	apiGroup := r.Group("/api")
	apiGroup.Use(auth.RequireToken())
	{
		apiGroup.GET("/classes/student-classes", h.GetStudentClasses)
		apiGroup.POST("/classes/create", h.CreateClass)
		apiGroup.GET("/classes/:classId", h.GetClass)
		apiGroup.GET("/classes/:classId/overview", h.GetClassOverview)
		apiGroup.POST("/classes/:classId/student", h.AddStudents)

		apiGroup.GET("/assignments/class/:classId", h.GetClassAssignments)

		apiGroup.GET("/submissions/submit/:assignmentId", h.GetMySubmission)
		apiGroup.POST("/submissions/submit/:assignmentId", h.Submit)
		apiGroup.GET("/submissions/assignment/:assignmentId", h.GetAssignmentSubmissions)
		apiGroup.GET("/submissions/assignment/:assignmentId/export", h.ExportSubmissions)
		apiGroup.POST("/submissions/grade/:submissionId", h.GradeSubmission)

		apiGroup.GET("/files/:fileName", h.DownloadFile)

		apiGroup.GET("/users/students", h.GetStudents)
		apiGroup.GET("/users/me", h.GetMe)
	}

	actions := r.Group("/actions")
	actions.Use(auth.RequireToken())
	{
		actions.POST("/classes", h.CreateClassAction)
		actions.POST("/classes/:classId/assignments", h.CreateAssignmentAction)
		actions.POST("/classes/:classId/students", h.AddStudentAction)
	}

	if cfg.FrontendDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(gin.Dir(cfg.FrontendDir, false))))
	} else {
		r.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
		})
	}

	return r
}

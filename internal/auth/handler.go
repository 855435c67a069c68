package auth

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/aulas/aulas-bff/internal/backend"
	"github.com/aulas/aulas-bff/internal/config"
	"github.com/aulas/aulas-bff/internal/logger"
	"github.com/aulas/aulas-bff/internal/models"
)

const (
	loginFailedMessage    = "email or password is incorrect"
	registerFailedMessage = "Error during registration"
	missingFieldsMessage  = "All fields are required"
)

// Handler serves the session form actions.
type Handler struct {
	backend *backend.Client
	secure  bool
	log     zerolog.Logger
}

func NewHandler(cfg *config.Config, client *backend.Client) *Handler {
	return &Handler{
		backend: client,
		secure:  cfg.IsProduction(),
		log:     logger.Get(),
	}
}

type loginForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type registerForm struct {
	Name     string `form:"name" binding:"required"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	Role     string `form:"role" binding:"required,oneof=TEACHER STUDENT"`
}

// Login godoc
// @Summary      Log in
// @Description  Authenticates against the Backend Service and sets the four session cookies
// @Tags         session
// @Accept       x-www-form-urlencoded
// @Param        email     formData  string  true  "Email"
// @Param        password  formData  string  true  "Password"
// @Success      303
// @Router       /login [post]
func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		redirectWithError(c, LoginPath, loginFailedMessage)
		return
	}

	res, err := h.backend.Login(c.Request.Context(), models.Credentials{Email: form.Email, Password: form.Password})
	if err == nil && res.Token == "" {
		err = errors.New("login response has no token")
	}
	if err != nil {
		h.log.Error().Err(err).Str("email", form.Email).Msg("login failed")
		redirectWithError(c, LoginPath, loginFailedMessage)
		return
	}

	SetSession(c.Writer, Session{
		Token:    res.Token,
		UserName: res.Username,
		Role:     models.Role(res.Role),
		UserID:   res.ID.String(),
	}, h.secure)

	h.log.Info().Str("user", res.Username).Str("role", res.Role).Msg("✅ session created")
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Register godoc
// @Summary      Register
// @Description  Creates an account in the Backend Service, then sends the user to the login page
// @Tags         session
// @Accept       x-www-form-urlencoded
// @Param        name      formData  string  true  "Full name"
// @Param        email     formData  string  true  "Email"
// @Param        password  formData  string  true  "Password"
// @Param        role      formData  string  true  "TEACHER or STUDENT"
// @Success      303
// @Router       /register [post]
func (h *Handler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		redirectWithError(c, "/register", missingFieldsMessage)
		return
	}

	err := h.backend.Register(c.Request.Context(), models.Registration{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		Role:     form.Role,
	})
	if err != nil {
		h.log.Error().Err(err).Str("email", form.Email).Msg("registration failed")
		redirectWithError(c, "/register", registerFailedMessage)
		return
	}

	c.Redirect(http.StatusSeeOther, LoginPath)
}

// Logout godoc
// @Summary      Log out
// @Description  Clears the session cookies (authToken, userName, role, id)
// @Tags         session
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Router       /logout [post]
func (h *Handler) Logout(c *gin.Context) {
	ClearSession(c.Writer, h.secure)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me godoc
// @Summary      Current session
// @Description  Returns the user name, role and id stored in the session cookies
// @Tags         session
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/session [get]
func (h *Handler) Me(c *gin.Context) {
	s, ok := ReadSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userName": s.UserName,
		"role":     s.Role,
		"id":       s.UserID,
	})
}

func redirectWithError(c *gin.Context, path, msg string) {
	c.Redirect(http.StatusSeeOther, path+"?error="+url.QueryEscape(msg))
}

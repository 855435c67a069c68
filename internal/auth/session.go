package auth

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aulas/aulas-bff/internal/models"
)

const (
	CookieToken    = "authToken"
	CookieUserName = "userName"
	CookieRole     = "role"
	CookieUserID   = "id"

	SessionTTL = 7 * 24 * time.Hour
)

// SessionCookies is the complete session cookie set. Login writes all of
// them and logout clears exactly these.
var SessionCookies = []string{CookieToken, CookieUserName, CookieRole, CookieUserID}

// NowFunc is swapped in tests.
var NowFunc = time.Now

type Session struct {
	Token    string
	UserName string
	Role     models.Role
	UserID   string
}

// SetSession writes the four session cookies with the same expiry and flags.
func SetSession(w http.ResponseWriter, s Session, secure bool) {
	expires := NowFunc().Add(SessionTTL)
	values := map[string]string{
		CookieToken:    s.Token,
		CookieUserName: s.UserName,
		CookieRole:     string(s.Role),
		CookieUserID:   s.UserID,
	}
	for _, name := range SessionCookies {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    url.QueryEscape(values[name]),
			Path:     "/",
			MaxAge:   int(SessionTTL.Seconds()),
			Expires:  expires,
			Secure:   secure,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// ClearSession overwrites the session cookies with empty values expiring at
// the epoch. Other cookies are left alone.
func ClearSession(w http.ResponseWriter, secure bool) {
	for _, name := range SessionCookies {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			Secure:   secure,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// Token returns the bearer token cookie, if any.
func Token(c *gin.Context) (string, bool) {
	token, err := c.Cookie(CookieToken)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

// UserID returns the id cookie, if any.
func UserID(c *gin.Context) (string, bool) {
	id, err := c.Cookie(CookieUserID)
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}

// ReadSession returns whatever session cookies are present. ok is false
// when there is no token.
func ReadSession(c *gin.Context) (Session, bool) {
	var s Session
	token, ok := Token(c)
	if !ok {
		return s, false
	}
	s.Token = token
	s.UserName, _ = c.Cookie(CookieUserName)
	role, _ := c.Cookie(CookieRole)
	s.Role = models.Role(role)
	s.UserID, _ = UserID(c)
	return s, true
}

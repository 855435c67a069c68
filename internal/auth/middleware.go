package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/aulas/aulas-bff/internal/config"
	"github.com/aulas/aulas-bff/internal/logger"
)

// LoginPath is where the gate sends unauthenticated visitors.
const LoginPath = "/login"

var publicPrefixes = []string{"/login", "/register"}

// Decision is the outcome of the request gate for one request.
type Decision int

const (
	Allow Decision = iota
	Redirect
)

// Gate decides allow/redirect from the token cookie alone. In the default
// mode it does not verify signatures, so it only drives redirects.
type Gate struct {
	protected []string
	reader    ClaimsReader
	log       zerolog.Logger
}

func NewGate(cfg *config.Config, reader ClaimsReader) *Gate {
	return &Gate{
		protected: cfg.ProtectedPrefixes,
		reader:    reader,
		log:       logger.Get(),
	}
}

// Protects reports whether path falls under one of the gated prefixes.
func (g *Gate) Protects(path string) bool {
	return hasAnyPrefix(path, g.protected)
}

// Decide runs the gate algorithm for a path and the raw authToken value
// (empty when the cookie is missing).
func (g *Gate) Decide(path, token string) Decision {
	if hasAnyPrefix(path, publicPrefixes) {
		return Allow
	}
	if token == "" {
		g.log.Debug().Str("path", path).Msg("gate: no token")
		return Redirect
	}

	claims, err := g.reader.Claims(token)
	if err != nil {
		g.log.Debug().Err(err).Str("path", path).Msg("gate: unreadable token")
		return Redirect
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		g.log.Debug().Err(err).Str("path", path).Msg("gate: bad exp claim")
		return Redirect
	}
	// Whole seconds: a token expiring this second is still allowed.
	if exp != nil && exp.Unix() < NowFunc().Unix() {
		g.log.Debug().Time("exp", exp.Time).Str("path", path).Msg("gate: token expired")
		return Redirect
	}
	return Allow
}

// Middleware applies the gate to protected paths; everything else passes.
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !g.Protects(path) {
			c.Next()
			return
		}

		token, _ := Token(c)
		if g.Decide(path, token) == Redirect {
			c.Redirect(http.StatusTemporaryRedirect, LoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireToken is the per-route check that runs independently of the gate.
func RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := Token(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token found"})
			return
		}
		c.Set(CookieToken, token)
		c.Next()
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

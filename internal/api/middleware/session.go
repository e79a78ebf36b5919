package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthCookie is the name of the session cookie.
const AuthCookie = "auth_token"

// LoginPath stays reachable without a session.
const LoginPath = "/api/login"

// TokenValidator reports whether a session token is live.
type TokenValidator interface {
	Valid(token string) bool
}

// RequireSession rejects /api requests that lack a valid session cookie.
// Paths outside /api (static UI, health, metrics) pass through.
func RequireSession(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !strings.HasPrefix(path, "/api") || path == LoginPath {
			c.Next()
			return
		}

		token, err := c.Cookie(AuthCookie)
		if err != nil || !v.Valid(token) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Not logged in"})
			return
		}
		c.Next()
	}
}

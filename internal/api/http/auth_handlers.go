package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/filedeck/internal/api/middleware"
	"github.com/GriffinCanCode/filedeck/internal/providers/auth"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Login checks the credentials and sets the session cookie.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing JSON body"})
		return
	}

	token, err := h.auth.Login(req.Login, req.Password)
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing credentials"})
		return
	case errors.Is(err, auth.ErrLocked):
		h.metrics.IncLoginFailures()
		c.JSON(http.StatusForbidden, gin.H{"error": "The account has been locked, please change the password and try again."})
		return
	case err != nil:
		h.metrics.IncLoginFailures()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Wrong credential"})
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AuthCookie, token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged_in"})
}

// Logoff drops the session and clears the cookie.
func (h *Handlers) Logoff(c *gin.Context) {
	if token, err := c.Cookie(middleware.AuthCookie); err == nil {
		h.auth.Logout(token)
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AuthCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged_off"})
}

// IsLogged is only reachable through the session check, so it always says yes.
func (h *Handlers) IsLogged(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"logged": true})
}

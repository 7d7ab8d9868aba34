package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/growmap/internal/constants"
	apierrors "github.com/yukikurage/growmap/internal/errors"
)

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !loadUser(c) {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePage is RequireAuth for HTML routes: anonymous visitors are sent
// to the login page instead of receiving a 401.
func RequirePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !loadUser(c) {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// loadUser copies the session identity into the request context.
func loadUser(c *gin.Context) bool {
	session := sessions.Default(c)
	userID := session.Get(constants.ContextKeyUserID)
	if userID == nil {
		return false
	}

	c.Set(constants.ContextKeyUserID, userID)
	if username, ok := session.Get(constants.ContextKeyUsername).(string); ok {
		c.Set(constants.ContextKeyUsername, username)
	}
	return true
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetUsername returns the username stored at login, or "".
func GetUsername(c *gin.Context) string {
	return c.GetString(constants.ContextKeyUsername)
}

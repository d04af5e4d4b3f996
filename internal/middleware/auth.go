package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireSession blocks write routes for visitors without a session. The
// body tells the page where to send the user.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetManager(c).Current(); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "You must be logged in to proceed.",
				"redirect": "/login",
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin hides admin routes from non-admin sessions. It only gates
// what the storefront shows; the store service checks again.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := GetManager(c).Current()
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "You must be logged in to proceed.",
				"redirect": "/login",
			})
			return
		}
		if !s.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    "Admin access required",
				"redirect": "/",
			})
			return
		}
		c.Next()
	}
}

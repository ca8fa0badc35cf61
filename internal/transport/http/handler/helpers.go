package handler

import (
	"github.com/gin-gonic/gin"

	"docuquery/internal/transport/http/middleware"
)

func getUserIDFromContext(c *gin.Context) (uint, bool) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := raw.(uint)
	if !ok || userID == 0 {
		return 0, false
	}
	return userID, true
}

// getEmailFromContext returns the verified principal set by the auth
// middleware. Handlers never trust client-supplied identity.
func getEmailFromContext(c *gin.Context) (string, bool) {
	raw, exists := c.Get(middleware.ContextEmailKey)
	if !exists {
		return "", false
	}
	email, ok := raw.(string)
	if !ok || email == "" {
		return "", false
	}
	return email, true
}

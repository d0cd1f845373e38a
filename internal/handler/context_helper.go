package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/vucems/campus-events-api/internal/middleware"
	"github.com/vucems/campus-events-api/internal/models"
)

// claimsFromContext extracts JWT claims set by the auth middleware. The
// second return is false for anonymous requests.
func claimsFromContext(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok
}

package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/wiki-drafts/internal/models"
	appErrors "github.com/noah-isme/wiki-drafts/pkg/errors"
	"github.com/noah-isme/wiki-drafts/pkg/response"
)

// RequireCapability lets the request through only when the principal holds want,
// directly or through its role.
func RequireCapability(want models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFromContext(c)
		if principal == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !principal.Can(want) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

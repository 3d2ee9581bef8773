package middleware

import (
	"acumenus/startpage-api/internal/apperr"
	"acumenus/startpage-api/internal/httpx"

	"github.com/gin-gonic/gin"
)

// AdminOnly must run after the JWT middleware
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			httpx.Abort(c, apperr.New(apperr.KindAuthenticationRequired, "Authentication required"))
			return
		}

		if !id.IsAdmin {
			httpx.Abort(c, apperr.New(apperr.KindAdminRequired, "Admin privileges required"))
			return
		}

		c.Next()
	}
}

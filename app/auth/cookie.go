// Package auth contains the session endpoints
package auth

import (
	"acumenus/startpage-api/internal"
	"acumenus/startpage-api/pkg/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
)

// setSessionCookie stores token in an HttpOnly cookie. Production needs
// SameSite=None so the separately hosted frontend can send it, and browsers
// only accept that on secure cookies.
func setSessionCookie(c *gin.Context, d *internal.Deps, token string, maxAge int) {
	secure := d.Config.Production()

	if secure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}

	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", secure, true)
}

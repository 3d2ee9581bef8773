package auth

import (
	"acumenus/startpage-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Logout clears the session cookie. Tokens are stateless, so one that was
// copied elsewhere stays valid until it expires.
func Logout(c *gin.Context, d *internal.Deps) {
	setSessionCookie(c, d, "", -1)

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

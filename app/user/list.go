// Package user contains the admin endpoints that manage user accounts
package user

import (
	"acumenus/startpage-api/internal"
	"acumenus/startpage-api/internal/httpx"
	"net/http"

	"github.com/gin-gonic/gin"
)

func UserList(c *gin.Context, d *internal.Deps) {
	users, err := d.Users.List(c.Request.Context())
	if err != nil {
		httpx.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

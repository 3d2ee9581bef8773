package user

import (
	"acumenus/startpage-api/internal"
	"acumenus/startpage-api/internal/httpx"
	"acumenus/startpage-api/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func UserUpdate(c *gin.Context, d *internal.Deps) {
	var data service.UserPatch
	if !httpx.BindJSON(c, &data) {
		return
	}

	u, err := d.Users.Update(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		httpx.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

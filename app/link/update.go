package link

import (
	"acumenus/startpage-api/internal"
	"acumenus/startpage-api/internal/httpx"
	"acumenus/startpage-api/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func LinkUpdate(c *gin.Context, d *internal.Deps) {
	var data service.LinkInput
	if !httpx.BindJSON(c, &data) {
		return
	}

	l, err := d.Links.Update(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		httpx.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, l)
}

package link

import (
	"acumenus/startpage-api/internal"
	"acumenus/startpage-api/internal/httpx"
	"net/http"

	"github.com/gin-gonic/gin"
)

func LinkFetch(c *gin.Context, d *internal.Deps) {
	l, err := d.Links.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, l)
}

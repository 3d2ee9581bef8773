// Package link contains the application link endpoints
package link

import (
	"acumenus/startpage-api/internal"
	"acumenus/startpage-api/internal/httpx"
	"net/http"

	"github.com/gin-gonic/gin"
)

func LinkList(c *gin.Context, d *internal.Deps) {
	links, err := d.Links.List(c.Request.Context())
	if err != nil {
		httpx.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, links)
}

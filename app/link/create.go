package link

import (
	"acumenus/startpage-api/internal"
	"acumenus/startpage-api/internal/httpx"
	"acumenus/startpage-api/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func LinkCreate(c *gin.Context, d *internal.Deps) {
	var data service.LinkInput
	if !httpx.BindJSON(c, &data) {
		return
	}

	l, err := d.Links.Create(c.Request.Context(), data)
	if err != nil {
		httpx.Abort(c, err)
		return
	}

	zap.L().Info("Application link created", zap.String("id", l.ID), zap.String("requestID", httpx.RequestID(c)))
	c.JSON(http.StatusCreated, l)
}

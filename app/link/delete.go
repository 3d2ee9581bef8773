package link

import (
	"acumenus/startpage-api/internal"
	"acumenus/startpage-api/internal/httpx"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func LinkDelete(c *gin.Context, d *internal.Deps) {
	err := d.Links.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Abort(c, err)
		return
	}

	zap.L().Info("Application link deleted", zap.String("id", c.Param("id")), zap.String("requestID", httpx.RequestID(c)))
	c.JSON(http.StatusOK, gin.H{
		"message": "Application link deleted successfully",
	})
}

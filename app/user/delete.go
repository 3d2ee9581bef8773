package user

import (
	"acumenus/startpage-api/internal"
	"acumenus/startpage-api/internal/httpx"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func UserDelete(c *gin.Context, d *internal.Deps) {
	err := d.Users.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Abort(c, err)
		return
	}

	zap.L().Info("User deleted", zap.String("id", c.Param("id")), zap.String("requestID", httpx.RequestID(c)))
	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}

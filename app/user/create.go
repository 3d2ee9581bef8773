package user

import (
	"acumenus/startpage-api/internal"
	"acumenus/startpage-api/internal/httpx"
	"acumenus/startpage-api/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func UserCreate(c *gin.Context, d *internal.Deps) {
	var data service.NewUser
	if !httpx.BindJSON(c, &data) {
		return
	}

	u, err := d.Users.Create(c.Request.Context(), data)
	if err != nil {
		httpx.Abort(c, err)
		return
	}

	zap.L().Info("User created", zap.Uint("id", u.ID), zap.String("requestID", httpx.RequestID(c)))
	c.JSON(http.StatusCreated, u)
}

package auth

import (
	"acumenus/startpage-api/internal"
	"acumenus/startpage-api/internal/httpx"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func Login(c *gin.Context, d *internal.Deps) {
	var data loginBody
	if !httpx.BindJSON(c, &data) {
		return
	}

	res, err := d.Users.Login(c.Request.Context(), data.Username, data.Password)
	if err != nil {
		zap.L().Debug("Login failed", zap.String("username", data.Username), zap.String("requestID", httpx.RequestID(c)))

		httpx.Abort(c, err)
		return
	}

	setSessionCookie(c, d, res.Token, int(d.Tokens.TTL().Seconds()))
	c.JSON(http.StatusOK, res)
}

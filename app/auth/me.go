package auth

import (
	"acumenus/startpage-api/internal"
	"acumenus/startpage-api/internal/apperr"
	"acumenus/startpage-api/internal/httpx"
	"acumenus/startpage-api/pkg/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
)

func Me(c *gin.Context, d *internal.Deps) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		httpx.Abort(c, apperr.New(apperr.KindAuthenticationRequired, "Authentication required"))
		return
	}

	u, err := d.Users.Me(c.Request.Context(), id)
	if err != nil {
		httpx.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

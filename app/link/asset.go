package link

import (
	"acumenus/startpage-api/internal"
	"acumenus/startpage-api/internal/httpx"
	"acumenus/startpage-api/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LinkAsset uploads an image from the multipart field "file" and attaches
// it to the link as the kind named by the "kind" form field
func LinkAsset(c *gin.Context, d *internal.Deps) {
	fh, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpx.Message(c, http.StatusRequestEntityTooLarge, "Request body size exceeds limit")
			return
		}

		httpx.Message(c, http.StatusBadRequest, "No file provided")
		return
	}

	f, err := fh.Open()
	if err != nil {
		httpx.Abort(c, err)
		return
	}
	defer f.Close()

	kind := service.AssetKind(c.PostForm("kind"))

	l, err := d.Links.AttachAsset(c.Request.Context(), c.Param("id"), kind, f)
	if err != nil {
		httpx.Abort(c, err)
		return
	}

	zap.L().Info("Asset attached",
		zap.String("id", l.ID),
		zap.String("kind", string(kind)),
		zap.Int64("size", fh.Size),
		zap.String("requestID", httpx.RequestID(c)),
	)
	c.JSON(http.StatusOK, l)
}

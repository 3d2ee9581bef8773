// Package httpx holds the small helpers handlers share for writing errors
// and reading request bodies
package httpx

import (
	"acumenus/startpage-api/internal/apperr"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestID returns the id the request id middleware assigned to c
func RequestID(c *gin.Context) string {
	return c.GetString("requestID")
}

// Abort stops the chain and writes err as {message, requestID}. Errors that
// aren't an *apperr.Error, and server kind errors, are logged and hidden
// behind a generic message.
func Abort(c *gin.Context, err error) {
	requestID := RequestID(c)

	var e *apperr.Error
	if !errors.As(err, &e) {
		e = apperr.Server(err)
	}

	if e.Kind == apperr.KindServer {
		zap.L().Error(e.Message, zap.Error(err), zap.String("requestID", requestID))
	}

	c.AbortWithStatusJSON(e.Kind.Status(), gin.H{
		"message":   e.Message,
		"requestID": requestID,
	})
}

// Message aborts with a plain status and message
func Message(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"message":   msg,
		"requestID": RequestID(c),
	})
}

// BindJSON decodes the body into dst. On failure it writes a 400 and
// returns false.
func BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			Message(c, http.StatusRequestEntityTooLarge, "Request body size exceeds limit")
			return false
		}

		Message(c, http.StatusBadRequest, "Invalid request body")

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", RequestID(c)))
		return false
	}

	return true
}

// Package root contains liveness and health endpoints
package root

import (
	"acumenus/startpage-api/db"
	"acumenus/startpage-api/internal"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Heartbeat answers as long as the process serves requests
func Heartbeat(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
}

// Health reports whether the database answers, and the asset bucket when
// storage is enabled. Only the database decides the status code.
func Health(c *gin.Context, d *internal.Deps) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	res := gin.H{
		"status":   "ok",
		"database": "up",
		"storage":  "disabled",
	}

	if err := db.Ping(ctx, d.DB); err != nil {
		zap.L().Warn("Database health check failed", zap.Error(err))

		status = http.StatusServiceUnavailable
		res["status"] = "unavailable"
		res["database"] = "down"
	}

	if d.Assets != nil {
		res["storage"] = "up"

		if err := d.Assets.Ping(ctx); err != nil {
			zap.L().Warn("Storage health check failed", zap.Error(err))
			res["storage"] = "down"
		}
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(status, res)
}

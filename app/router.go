package app

import (
	"acumenus/startpage-api/app/auth"
	"acumenus/startpage-api/app/link"
	"acumenus/startpage-api/app/root"
	"acumenus/startpage-api/app/user"
	"acumenus/startpage-api/internal"
	"acumenus/startpage-api/internal/httpx"
	"acumenus/startpage-api/pkg/middleware"
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const jsonBodyLimit = 1 << 20

// NewRouter wires every endpoint under /api. Background work started here,
// like the rate limiter sweep, stops when ctx is done.
func NewRouter(ctx context.Context, d *internal.Deps) (*gin.Engine, error) {
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{d.Config.Host.AllowedOrigin},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == http.MethodHead
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("user_id", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = d.Config.Upload.MaxBytes()

	router.NoRoute(func(c *gin.Context) {
		httpx.Message(c, http.StatusNotFound, "Not found")
	})
	router.NoMethod(func(c *gin.Context) {
		httpx.Message(c, http.StatusMethodNotAllowed, "Method not allowed")
	})

	jwt := middleware.NewJWTMiddleware(d.Tokens)
	admin := middleware.AdminOnly()
	jsonBody := middleware.BodySizeLimiter(jsonBodyLimit)
	// Multipart framing adds a little on top of the file itself
	uploadBody := middleware.BodySizeLimiter(d.Config.Upload.MaxBytes() + 64<<10)

	lc, err := newLinksCache(ctx, d.Config)
	if err != nil {
		return nil, err
	}

	m := router.Group("/api")
	if rps := d.Config.Security.RateLimit; rps > 0 {
		m.Use(middleware.RateLimiterMiddleware(ctx, middleware.RateLimiterConfig{
			RequestsPerSecond: rps,
			Burst:             rps * 2,
		}))
	}
	{
		// HEAD|GET /api/heartbeat 	-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)
		m.GET("/heartbeat", root.Heartbeat)

		// GET /api/health		-> Reports database and storage reachability
		m.GET("/health", func(c *gin.Context) { root.Health(c, d) })
	}

	a := m.Group("/auth")
	{
		// POST /api/auth/login		-> Logs in a user, sets the session cookie and returns the token
		a.POST("/login", jsonBody, func(c *gin.Context) { auth.Login(c, d) })

		// POST /api/auth/logout	-> Clears the session cookie
		a.POST("/logout", func(c *gin.Context) { auth.Logout(c, d) })

		// GET /api/auth/me		-> Returns the logged in user
		a.GET("/me", jwt, func(c *gin.Context) { auth.Me(c, d) })
	}

	u := m.Group("/users", jwt, admin)
	{
		// GET /api/users		-> Lists all users
		u.GET("", func(c *gin.Context) { user.UserList(c, d) })

		// GET /api/users/:id		-> Returns a user by their ID
		u.GET("/:id", func(c *gin.Context) { user.UserFetch(c, d) })

		// POST /api/users		-> Creates a user
		u.POST("", jsonBody, func(c *gin.Context) { user.UserCreate(c, d) })

		// PUT /api/users/:id		-> Updates a user
		u.PUT("/:id", jsonBody, func(c *gin.Context) { user.UserUpdate(c, d) })

		// DELETE /api/users/:id	-> Deletes a user, except admin
		u.DELETE("/:id", func(c *gin.Context) { user.UserDelete(c, d) })
	}

	l := m.Group("/links", jwt)
	{
		// GET /api/links		-> Lists all application links
		l.GET("", lc.read, func(c *gin.Context) { link.LinkList(c, d) })

		// GET /api/links/:id		-> Returns an application link by its ID
		l.GET("/:id", lc.read, func(c *gin.Context) { link.LinkFetch(c, d) })

		// POST /api/links		-> Creates an application link
		l.POST("", admin, lc.purge, jsonBody, func(c *gin.Context) { link.LinkCreate(c, d) })

		// PUT /api/links/:id		-> Updates an application link
		l.PUT("/:id", admin, lc.purge, jsonBody, func(c *gin.Context) { link.LinkUpdate(c, d) })

		// DELETE /api/links/:id	-> Deletes an application link with everything attached to it
		l.DELETE("/:id", admin, lc.purge, func(c *gin.Context) { link.LinkDelete(c, d) })

		// POST /api/links/:id/assets	-> Uploads a logo, banner or screenshot
		l.POST("/:id/assets", admin, lc.purge, uploadBody, func(c *gin.Context) { link.LinkAsset(c, d) })
	}

	return router, nil
}

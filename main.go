package main

import (
	"acumenus/startpage-api/app"
	"acumenus/startpage-api/config"
	"acumenus/startpage-api/db"
	"acumenus/startpage-api/internal"
	"acumenus/startpage-api/pkg/logger"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	c, err := config.Setup(os.Args[1:])
	if err != nil {
		return err
	}

	log, err := logger.Setup(c.App.LogLevel, c.Production())
	if err != nil {
		return err
	}
	defer log.Sync()

	if c.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.New(c.DB, c.App.LogLevel)
	if err != nil {
		return err
	}
	defer db.Close(conn)

	if err := db.Migrate(conn); err != nil {
		return err
	}

	d, err := internal.NewDeps(ctx, c, conn)
	if err != nil {
		return err
	}

	if c.SeedAdmin {
		_, err := db.SeedAdmin(ctx, conn, d.Argon, c.Auth.BootstrapUsername, c.Auth.BootstrapPassword)
		if err != nil {
			return err
		}
	}

	if c.JWT.Secret == config.DefaultJWTSecret {
		zap.L().Warn("Using the default JWT secret, set JWT_SECRET before exposing this server")
	}

	router, err := app.NewRouter(ctx, d)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(c.Host.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("Server starting", zap.Int("port", c.Host.Port), zap.String("env", c.App.Env))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		zap.L().Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down cleanly, %w", err)
		}
	}

	return nil
}

// Package apptest builds handler dependencies over an in-memory database
// for tests that exercise the real router
package apptest

import (
	"acumenus/startpage-api/config"
	"acumenus/startpage-api/db/dbtest"
	"acumenus/startpage-api/internal"
	"acumenus/startpage-api/internal/service"
	"acumenus/startpage-api/pkg/security"
	"testing"

	"github.com/stretchr/testify/require"
)

// Config returns a development config with the bootstrap pair admin/admin123,
// rate limiting and caching off, and storage disabled
func Config() *config.Config {
	return &config.Config{
		App:    config.App{Env: "development", LogLevel: "error"},
		Host:   config.Host{Port: 3009, AllowedOrigin: "http://localhost:5173"},
		JWT:    config.JWT{Secret: "test-secret"},
		Auth:   config.Auth{BootstrapUsername: "admin", BootstrapPassword: "admin123"},
		Cache:  config.Cache{Store: "memory"},
		Upload: config.Upload{MaxSize: 1},
	}
}

// Deps wires the services for c. The password hasher uses minimal argon2
// parameters to keep tests fast.
func Deps(t testing.TB, c *config.Config) *internal.Deps {
	t.Helper()

	conn := dbtest.Open(t)
	argon := &security.ArgonHash{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

	tokens, err := service.NewTokenService(c.JWT.Secret)
	require.NoError(t, err)

	return &internal.Deps{
		Config: c,
		DB:     conn,
		Argon:  argon,
		Tokens: tokens,
		Users: service.NewUserService(conn, argon, tokens, service.Bootstrap{
			Username: c.Auth.BootstrapUsername,
			Password: c.Auth.BootstrapPassword,
		}),
		Links: service.NewLinkService(conn, nil),
	}
}

package main

import (
	"acumenus/startpage-api/app"
	"acumenus/startpage-api/app/apptest"
	"acumenus/startpage-api/internal/service"
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	t         *testing.T
	api       string
	tokenFile string
	links     *service.LinkService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	d := apptest.Deps(t, apptest.Config())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	r, err := app.NewRouter(ctx, d)
	require.NoError(t, err)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &env{
		t:         t,
		api:       srv.URL + "/api",
		tokenFile: filepath.Join(t.TempDir(), "startpage", "token"),
		links:     d.Links,
	}
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()

	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = orig })
}

func (e *env) run(stdin string, args ...string) (string, error) {
	e.t.Helper()

	var out bytes.Buffer
	full := append([]string{"--server", e.api, "--token-file", e.tokenFile}, args...)
	err := run(context.Background(), full, strings.NewReader(stdin), &out)
	return out.String(), err
}

func str(s string) *string { return &s }

func TestLoginSavesToken(t *testing.T) {
	e := newEnv(t)
	stubPassword(t, "admin123")

	out, err := e.run("admin\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as admin (admin)")

	token, err := loadToken(e.tokenFile)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	info, err := os.Stat(e.tokenFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoginWrongPassword(t *testing.T) {
	e := newEnv(t)
	stubPassword(t, "nope")

	_, err := e.run("", "login", "admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid username or password")

	token, err := loadToken(e.tokenFile)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestCommandsNeedSession(t *testing.T) {
	e := newEnv(t)

	for _, cmd := range [][]string{{"me"}, {"links"}, {"users"}, {"link", "1"}} {
		_, err := e.run("", cmd...)
		assert.ErrorIs(t, err, errNotLoggedIn, cmd)
	}

	require.NoError(t, saveToken(e.tokenFile, "garbage"))
	_, err := e.run("", "links")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestLinksAndLink(t *testing.T) {
	e := newEnv(t)
	stubPassword(t, "admin123")
	_, err := e.run("", "login", "admin")
	require.NoError(t, err)

	ctx := context.Background()
	atlas, err := e.links.Create(ctx, service.LinkInput{
		Name:        str("Atlas"),
		URL:         str("https://atlas"),
		Description: str("Cohort builder"),
		Features:    []string{"Cohorts"},
	})
	require.NoError(t, err)
	_, err = e.links.Create(ctx, service.LinkInput{
		Name:        str("Achilles"),
		URL:         str("https://achilles"),
		Description: str("Data characterization"),
	})
	require.NoError(t, err)

	out, err := e.run("", "links")
	require.NoError(t, err)
	assert.Contains(t, out, "Atlas")
	assert.Contains(t, out, "Achilles")

	out, err = e.run("", "--search", "cohort", "links")
	require.NoError(t, err)
	assert.Contains(t, out, "Atlas")
	assert.NotContains(t, out, "Achilles")

	out, err = e.run("", "link", atlas.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Atlas (https://atlas)")
	assert.Contains(t, out, "  - Cohorts")

	_, err = e.run("", "link", "42")
	assert.Error(t, err)
}

func TestUsersAndMe(t *testing.T) {
	e := newEnv(t)
	stubPassword(t, "admin123")
	_, err := e.run("", "login", "admin")
	require.NoError(t, err)

	out, err := e.run("", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "USERNAME")

	// The bootstrap login has no stored row behind it
	_, err = e.run("", "me")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "User not found")
}

func TestLogout(t *testing.T) {
	e := newEnv(t)
	stubPassword(t, "admin123")
	_, err := e.run("", "login", "admin")
	require.NoError(t, err)

	out, err := e.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	_, err = os.Stat(e.tokenFile)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// Logging out twice is fine
	_, err = e.run("", "logout")
	assert.NoError(t, err)
}

func TestUnknownCommand(t *testing.T) {
	e := newEnv(t)

	_, err := e.run("", "frobnicate")
	assert.Error(t, err)

	_, err = e.run("")
	assert.Error(t, err)

	_, err = e.run("", "link")
	assert.Error(t, err)
}

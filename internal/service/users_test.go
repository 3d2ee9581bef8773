package service

import (
	"acumenus/startpage-api/db/dbtest"
	"acumenus/startpage-api/internal/apperr"
	"acumenus/startpage-api/internal/model"
	"acumenus/startpage-api/pkg/security"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func cheapArgon() *security.ArgonHash {
	return &security.ArgonHash{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func newUsers(t *testing.T) (*UserService, *gorm.DB) {
	t.Helper()

	conn := dbtest.Open(t)
	return NewUserService(conn, cheapArgon(), newTokens(t, "k"), Bootstrap{Username: "admin", Password: "admin123"}), conn
}

func strPtr(s string) *string { return &s }

func TestCreateUserHidesCredential(t *testing.T) {
	s, conn := newUsers(t)
	ctx := context.Background()

	u, err := s.Create(ctx, NewUser{Username: "jane", Email: "jane@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "jane", u.Username)
	assert.False(t, u.IsAdmin)

	var stored model.User
	require.NoError(t, conn.First(&stored, u.ID).Error)
	require.NotNil(t, stored.PasswordHash)
	assert.NotEqual(t, "pw", *stored.PasswordHash)
}

func TestCreateUserValidation(t *testing.T) {
	s, _ := newUsers(t)
	ctx := context.Background()

	_, err := s.Create(ctx, NewUser{Username: "jane", Email: "jane@example.com"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = s.Create(ctx, NewUser{Username: "jane", Email: "not-an-email", Password: "pw"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = s.Create(ctx, NewUser{Username: "jane", Email: "jane@example.com", Password: strings.Repeat("x", 256)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCreateUserConflictLeavesStoreUnchanged(t *testing.T) {
	s, conn := newUsers(t)
	ctx := context.Background()

	_, err := s.Create(ctx, NewUser{Username: "jane", Email: "jane@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = s.Create(ctx, NewUser{Username: "jane", Email: "other@example.com", Password: "pw"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = s.Create(ctx, NewUser{Username: "other", Email: "jane@example.com", Password: "pw"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	var n int64
	require.NoError(t, conn.Model(&model.User{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestGetUser(t *testing.T) {
	s, _ := newUsers(t)
	ctx := context.Background()

	created, err := s.Create(ctx, NewUser{Username: "jane", Email: "jane@example.com", Password: "pw", IsAdmin: true})
	require.NoError(t, err)

	got, err := s.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.IsAdmin)

	_, err = s.Get(ctx, "999")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = s.Get(ctx, "abc")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdateUser(t *testing.T) {
	s, _ := newUsers(t)
	ctx := context.Background()

	jane, err := s.Create(ctx, NewUser{Username: "jane", Email: "jane@example.com", Password: "pw"})
	require.NoError(t, err)
	_, err = s.Create(ctx, NewUser{Username: "bob", Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)

	id := "1"
	require.EqualValues(t, 1, jane.ID)

	unchanged, err := s.Update(ctx, id, UserPatch{})
	require.NoError(t, err)
	assert.Equal(t, "jane", unchanged.Username)

	// Re-submitting your own username is not a conflict
	same, err := s.Update(ctx, id, UserPatch{Username: strPtr("jane")})
	require.NoError(t, err)
	assert.Equal(t, "jane", same.Username)

	_, err = s.Update(ctx, id, UserPatch{Email: strPtr("bob@example.com")})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	admin := true
	updated, err := s.Update(ctx, id, UserPatch{Username: strPtr("janet"), IsAdmin: &admin, Password: strPtr("new")})
	require.NoError(t, err)
	assert.Equal(t, "janet", updated.Username)
	assert.Equal(t, "jane@example.com", updated.Email)
	assert.True(t, updated.IsAdmin)

	_, err = s.Login(ctx, "janet", "pw")
	assert.True(t, apperr.Is(err, apperr.KindInvalidCredentials))
	_, err = s.Login(ctx, "janet", "new")
	assert.NoError(t, err)

	_, err = s.Update(ctx, "42", UserPatch{Username: strPtr("x")})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteUser(t *testing.T) {
	s, _ := newUsers(t)
	ctx := context.Background()

	_, err := s.Create(ctx, NewUser{Username: "admin", Email: "admin@example.com", Password: "pw", IsAdmin: true})
	require.NoError(t, err)
	_, err = s.Create(ctx, NewUser{Username: "jane", Email: "jane@example.com", Password: "pw"})
	require.NoError(t, err)

	err = s.Delete(ctx, "1")
	require.True(t, apperr.Is(err, apperr.KindForbidden))
	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "Cannot delete the admin user", e.Message)

	require.NoError(t, s.Delete(ctx, "2"))

	_, err = s.Get(ctx, "2")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = s.Delete(ctx, "2")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestLoginStoredUser(t *testing.T) {
	s, conn := newUsers(t)
	ctx := context.Background()
	stamp := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return stamp }

	_, err := s.Create(ctx, NewUser{Username: "jane", Email: "jane@example.com", Password: "pw"})
	require.NoError(t, err)

	res, err := s.Login(ctx, "jane", "pw")
	require.NoError(t, err)
	assert.Equal(t, "jane", res.User.Username)
	require.NotNil(t, res.User.LastLogin)

	id, err := s.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id.UserID)
	assert.False(t, id.IsAdmin)

	var stored model.User
	require.NoError(t, conn.First(&stored, res.User.ID).Error)
	require.NotNil(t, stored.LastLogin)
	assert.True(t, stamp.Equal(stored.LastLogin.UTC()))
}

func TestLoginFailuresLookAlike(t *testing.T) {
	s, _ := newUsers(t)
	ctx := context.Background()

	_, err := s.Create(ctx, NewUser{Username: "jane", Email: "jane@example.com", Password: "pw"})
	require.NoError(t, err)

	_, wrongPass := s.Login(ctx, "jane", "nope")
	_, noUser := s.Login(ctx, "ghost", "nope")

	var a, b *apperr.Error
	require.ErrorAs(t, wrongPass, &a)
	require.ErrorAs(t, noUser, &b)
	assert.Equal(t, apperr.KindInvalidCredentials, a.Kind)
	assert.Equal(t, a.Kind, b.Kind)
	assert.Equal(t, "Invalid username or password", a.Message)
	assert.Equal(t, a.Message, b.Message)
}

func TestLoginBootstrap(t *testing.T) {
	s, conn := newUsers(t)

	res, err := s.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.User.ID)
	assert.Equal(t, "admin", res.User.Username)
	assert.True(t, res.User.IsAdmin)

	id, err := s.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.True(t, id.IsAdmin)

	var n int64
	require.NoError(t, conn.Model(&model.User{}).Count(&n).Error)
	assert.Zero(t, n, "bootstrap login must not touch storage")
}

func TestLoginBootstrapDisabled(t *testing.T) {
	conn := dbtest.Open(t)
	s := NewUserService(conn, cheapArgon(), newTokens(t, "k"), Bootstrap{Username: "admin"})

	_, err := s.Login(context.Background(), "admin", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = s.Login(context.Background(), "admin", "admin123")
	assert.True(t, apperr.Is(err, apperr.KindInvalidCredentials))
}

func TestLoginLegacyBcryptRow(t *testing.T) {
	s, conn := newUsers(t)

	h, err := bcrypt.GenerateFromPassword([]byte("legacy"), bcrypt.MinCost)
	require.NoError(t, err)
	hash := string(h)
	require.NoError(t, conn.Create(&model.User{Username: "old", Email: "old@example.com", PasswordHash: &hash}).Error)

	_, err = s.Login(context.Background(), "old", "legacy")
	assert.NoError(t, err)
}

func TestLoginRowWithoutCredential(t *testing.T) {
	s, conn := newUsers(t)

	require.NoError(t, conn.Create(&model.User{Username: "nohash", Email: "nohash@example.com"}).Error)

	_, err := s.Login(context.Background(), "nohash", "anything")
	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apperr.KindServer, e.Kind)
	assert.Equal(t, "Server configuration error", e.Message)
}

func TestMe(t *testing.T) {
	s, _ := newUsers(t)
	ctx := context.Background()

	_, err := s.Me(ctx, Identity{UserID: 1})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	created, err := s.Create(ctx, NewUser{Username: "jane", Email: "jane@example.com", Password: "pw"})
	require.NoError(t, err)

	me, err := s.Me(ctx, Identity{UserID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", me.Email)
}

func TestListUsers(t *testing.T) {
	s, _ := newUsers(t)
	ctx := context.Background()

	empty, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, name := range []string{"a", "b"} {
		_, err := s.Create(ctx, NewUser{Username: name, Email: name + "@example.com", Password: "pw"})
		require.NoError(t, err)
	}

	users, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a", users[0].Username)
	assert.Equal(t, "b", users[1].Username)
}

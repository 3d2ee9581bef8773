package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func cheap() *ArgonHash {
	return &ArgonHash{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func TestArgonRoundTrip(t *testing.T) {
	a := cheap()

	enc, err := a.GenerateFromPassword("hunter2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(enc, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := a.VerifyPasswd("hunter2", enc)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.VerifyPasswd("hunter3", enc)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaltsDiffer(t *testing.T) {
	a := cheap()

	first, err := a.GenerateFromPassword("same")
	require.NoError(t, err)
	second, err := a.GenerateFromPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyBcrypt(t *testing.T) {
	h, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := cheap().VerifyPasswd("admin123", string(h))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cheap().VerifyPasswd("wrong", string(h))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyRejectsUnknownFormat(t *testing.T) {
	_, err := cheap().VerifyPasswd("x", "plaintext")
	assert.ErrorIs(t, err, ErrUnknownHash)

	_, err = cheap().VerifyPasswd("x", "$argon2id$v=19$broken")
	assert.Error(t, err)
}

func TestBurnDoesNotPanic(t *testing.T) {
	a := cheap()
	a.Burn("anything")
	a.Burn("again")
	assert.NotEmpty(t, a.dummy)
}

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindAuthenticationRequired: http.StatusUnauthorized,
		KindInvalidToken:           http.StatusForbidden,
		KindInvalidCredentials:     http.StatusUnauthorized,
		KindAdminRequired:          http.StatusForbidden,
		KindNotFound:               http.StatusNotFound,
		KindConflict:               http.StatusConflict,
		KindValidation:             http.StatusBadRequest,
		KindServiceUnavailable:     http.StatusServiceUnavailable,
		KindServer:                 http.StatusInternalServerError,
		Kind(99):                   http.StatusInternalServerError,
	}

	for k, want := range cases {
		assert.Equal(t, want, k.Status(), "kind %d", k)
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("User not found"))

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindConflict))
	assert.Equal(t, KindServer, KindOf(errors.New("boom")))
}

func TestServerKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Server(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Server error", err.Message)
	assert.Contains(t, err.Error(), "connection refused")
}

package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestClientCookie(t *testing.T) {
	cookie, err := newClientCookie("secret", "Lead Dashboard", time.Hour)
	require.NoError(t, err)

	namespace := uuid.NewString()
	signed, err := cookie.sign(namespace, time.Now())
	require.NoError(t, err)

	parsed, err := cookie.parse(signed)
	require.NoError(t, err)
	require.Equal(t, namespace, parsed)

	t.Run("other secret", func(t *testing.T) {
		other, err := newClientCookie("another", "Lead Dashboard", time.Hour)
		require.NoError(t, err)
		_, err = other.parse(signed)
		require.ErrorIs(t, err, apperrors.ErrInvalidSession)
	})

	t.Run("expired", func(t *testing.T) {
		old, err := cookie.sign(namespace, time.Now().Add(-2*time.Hour))
		require.NoError(t, err)
		_, err = cookie.parse(old)
		require.ErrorIs(t, err, apperrors.ErrInvalidSession)
		require.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("not a namespace", func(t *testing.T) {
		bad, err := cookie.sign("browser-1", time.Now())
		require.NoError(t, err)
		_, err = cookie.parse(bad)
		require.ErrorIs(t, err, apperrors.ErrInvalidSession)
	})

	t.Run("empty secret", func(t *testing.T) {
		_, err := newClientCookie("", "Lead Dashboard", time.Hour)
		require.Error(t, err)
	})
}

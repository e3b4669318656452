package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	s := newTestSession(t)

	assert.False(t, s.Authenticated())
	assert.Empty(t, s.AccessToken())

	require.NoError(t, s.SaveTokens("access-1", "refresh-1"))
	assert.True(t, s.Authenticated())
	assert.Equal(t, "access-1", s.AccessToken())
	assert.Equal(t, "refresh-1", s.RefreshToken())

	require.NoError(t, s.Clear())
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.RefreshToken())
}

func TestSessionUserRoundTrip(t *testing.T) {
	s := newTestSession(t)

	_, ok := s.User()
	assert.False(t, ok)

	u := User{ID: "u1", Name: "Ana", Email: "ana@example.com"}
	require.NoError(t, s.SaveUser(u))
	got, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, u, got)
}

func TestTokenExpiry(t *testing.T) {
	s := newTestSession(t)

	assert.True(t, s.TokenExpiry().IsZero(), "no token means zero expiry")

	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("client-never-verifies"))
	require.NoError(t, err)
	require.NoError(t, s.SaveTokens(signed, "refresh-1"))

	assert.True(t, s.TokenExpiry().Equal(exp))

	// Garbage tokens degrade to zero rather than erroring.
	require.NoError(t, s.SaveTokens("not.a.jwt", "refresh-1"))
	assert.True(t, s.TokenExpiry().IsZero())
}

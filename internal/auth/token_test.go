package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret")

	token, err := m.Issue(42, time.Hour)
	require.NoError(t, err)

	claims, err := m.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("one").Issue(1, time.Hour)
	require.NoError(t, err)

	_, err = NewTokenManager("two").Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager("secret")
	token, err := m.Issue(1, -time.Minute)
	require.NoError(t, err)

	_, err = m.Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsMissingUser(t *testing.T) {
	m := NewTokenManager("secret")
	token, err := m.Issue(0, time.Hour)
	require.NoError(t, err)

	_, err = m.Decode(token)
	assert.ErrorIs(t, err, ErrMissingUser)
}

func TestTokenManager_RejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{UserID: 1}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret").Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def", "abc.def"},
		{"bearer abc", "abc"},
		{"  Bearer   abc  ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractBearer(tt.header), tt.header)
	}
}

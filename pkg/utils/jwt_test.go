package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", 42, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestValidateTokenRejects(t *testing.T) {
	token, err := GenerateToken("secret", 42, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken("other-secret", token)
	assert.Error(t, err)

	expired, err := GenerateToken("secret", 42, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken("secret", expired)
	assert.Error(t, err)

	_, err = ValidateToken("secret", "not.a.token")
	assert.Error(t, err)
}

func TestGenerateRandomKey(t *testing.T) {
	a, err := GenerateRandomKey(32)
	require.NoError(t, err)
	b, err := GenerateRandomKey(32)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
	assert.False(t, strings.ContainsAny(a, "+/="))
}

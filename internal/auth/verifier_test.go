package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPlainVerifier(t *testing.T) {
	v := PlainVerifier{}

	assert.True(t, v.Verify("1234", "1234"))
	assert.False(t, v.Verify("1234", "4321"))
	// An empty stored secret never authenticates, even against an
	// empty presented one.
	assert.False(t, v.Verify("", ""))
}

func TestBcryptVerifier(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	require.NoError(t, err)

	v := BcryptVerifier{}
	assert.True(t, v.Verify(string(hash), "1234"))
	assert.False(t, v.Verify(string(hash), "4321"))
	assert.False(t, v.Verify("not-a-hash", "1234"))
}

func TestForMode(t *testing.T) {
	assert.IsType(t, BcryptVerifier{}, ForMode("bcrypt"))
	assert.IsType(t, PlainVerifier{}, ForMode("plain"))
	assert.IsType(t, PlainVerifier{}, ForMode(""))
}

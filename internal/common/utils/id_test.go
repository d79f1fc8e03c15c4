package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexPattern = regexp.MustCompile(`^[0-9a-f]+$`)

func TestGenerateRandomID(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		wantLen int
	}{
		{"short", 8, 8},
		{"api key length", 64, 64},
		{"secret key length", 128, 128},
		{"odd length truncates", 7, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateRandomID(tt.length)
			require.NoError(t, err)
			assert.Len(t, id, tt.wantLen)
			assert.Regexp(t, hexPattern, id)
		})
	}
}

func TestGenerateAPIKey_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key, err := GenerateAPIKey()
		require.NoError(t, err)
		assert.Len(t, key, 64)
		assert.False(t, seen[key], "duplicate API key generated")
		seen[key] = true
	}
}

func TestGenerateSecretKey(t *testing.T) {
	secret, err := GenerateSecretKey()
	require.NoError(t, err)
	assert.Len(t, secret, 128)
	assert.Regexp(t, hexPattern, secret)
}

func TestNewEndpointID(t *testing.T) {
	a := NewEndpointID()
	b := NewEndpointID()

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

// Package utils provides small helpers for ID and credential generation
// used throughout the service.
package utils

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/lucsky/cuid"
)

// GenerateRandomID generates a cryptographically secure random hex string.
//
// The length parameter is the desired length of the hex string; length/2
// random bytes are generated, so odd lengths come out one character short.
func GenerateRandomID(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateAPIKey generates a 256-bit hex-encoded API key.
func GenerateAPIKey() (string, error) {
	return GenerateRandomID(64)
}

// GenerateSecretKey generates a 512-bit hex-encoded secret key.
func GenerateSecretKey() (string, error) {
	return GenerateRandomID(128)
}

// NewEndpointID generates a collision-resistant identifier for a webhook
// endpoint registration.
func NewEndpointID() string {
	return cuid.New()
}

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// MinSecretLen is the minimum accepted signing secret length in bytes.
const MinSecretLen = 32

// GenerateSecret returns a random hex-encoded signing secret of n bytes.
func GenerateSecret(n int) (string, error) {
	if n < MinSecretLen {
		n = MinSecretLen
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

package util

import (
	"crypto/rand"
	"encoding/hex"
)

const resetTokenBytes = 20

// GenerateResetToken returns a 40 char hex token.
func GenerateResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

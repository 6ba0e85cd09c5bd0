package utilities

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/segmentio/ksuid"
)

// SessionTokenBytes is the amount of entropy in a session token.
const SessionTokenBytes = 48

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewRequestID returns an identifier for correlating log lines of one request.
func NewRequestID() string {
	return NewKSUID()
}

// NewSessionToken returns SessionTokenBytes of crypto/rand entropy, hex encoded.
func NewSessionToken() (string, error) {
	b := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(b), nil
}

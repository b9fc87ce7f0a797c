// Package request holds helpers for deriving audit identity from an
// incoming HTTP request.
package request

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const defaultUserAgent = "unknown"

// HashIP returns the hex SHA-256 of the client IP. Audit rows and
// correlation only ever see the hash, never the raw address.
func HashIP(ip string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(ip)))
	return hex.EncodeToString(sum[:])
}

func UserAgentOrDefault(userAgent string) string {
	trimmed := strings.TrimSpace(userAgent)
	if trimmed == "" {
		return defaultUserAgent
	}
	return trimmed
}

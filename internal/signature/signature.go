// Package signature verifies that a webhook body was signed by the trusted sender.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns the hex-encoded HMAC-SHA256 of body keyed with secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether header carries the signature of the raw, unparsed body.
//
// An empty secret makes Verify accept every request. That mode is insecure and
// exists only for local development; callers should warn when it is active.
func Verify(body []byte, header, secret string) bool {
	if secret == "" {
		return true
	}
	if header == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(body, secret)), []byte(header))
}

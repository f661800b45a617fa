package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

const (
	// HeaderName is the header GitHub uses for the SHA-256 payload signature.
	HeaderName = "X-Hub-Signature-256"

	prefix = "sha256="
)

// Sign returns the hex encoded HMAC-SHA256 of payload keyed by secret.
func Sign(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)

	return hex.EncodeToString(mac.Sum(nil))
}

// Header returns the X-Hub-Signature-256 value for payload.
func Header(secret, payload []byte) string {
	return prefix + Sign(secret, payload)
}

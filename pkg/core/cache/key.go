package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key derives a fixed-size cache key from a namespace and free text
func Key(namespace, text string) string {
	hash := sha256.Sum256([]byte(namespace + "|" + text))
	return namespace + ":" + hex.EncodeToString(hash[:16]) // Use first 16 bytes
}

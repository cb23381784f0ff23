package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key builds a namespaced cache key "namespace:<sha256(parts)>". Parts are
// joined with a NUL byte so ("ab", "c") and ("a", "bc") differ.
func Key(namespace string, parts ...string) string {
	return namespace + ":" + Hash([]byte(strings.Join(parts, "\x00")))
}

// Hash computes the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

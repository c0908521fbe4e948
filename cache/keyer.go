package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// JoinKey builds a deterministic key from parts.
//
// Each part is length-prefixed, so ("a:b", "c") and ("a", "b:c") never produce
// the same key. Format: <len>.<part>[:<len>.<part>...]
func JoinKey(parts ...string) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte('.')
		b.WriteString(p)
	}
	return b.String()
}

// Fingerprint returns a stable, non-reversible identifier for secret material
// such as a connection string. The result is the first 16 bytes of
// SHA-256(secret), hex encoded.
func Fingerprint(secret string) string {
	hash := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(hash[:16])
}

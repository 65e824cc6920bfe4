package random

import (
	"crypto/rand"
	"encoding/hex"
)

// Bytes returns n bytes from the system's secure random source.
func Bytes(n int) []byte {
	b := make([]byte, n)

	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(b)

	return b
}

// Hex returns n random bytes hex encoded, a string of length 2n.
func Hex(n int) string {
	return hex.EncodeToString(Bytes(n))
}

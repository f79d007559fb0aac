package common

import (
	"crypto/rand"
	"encoding/base64"
)

// MakeRandURLString generates size random bytes and encodes them with the
// URL-safe base64 alphabet without padding, so the result can be embedded
// in links as is. The output length is base64.RawURLEncoding.EncodedLen(size).
//
// It returns an error if the random number generator fails.
func MakeRandURLString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// This is useful for removing sensitive data such as passwords from memory
// after use.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}

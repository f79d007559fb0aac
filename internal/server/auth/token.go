package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// OpaqueTokenSize is the number of random bytes in verification and refresh
// tokens (256 bits).
const OpaqueTokenSize = 32

// NewOpaqueToken returns a fresh URL-safe random token.
func NewOpaqueToken() (string, error) {
	return common.MakeRandURLString(OpaqueTokenSize)
}

// DigestToken returns the hex SHA-256 digest under which a token is stored.
func DigestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

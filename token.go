package membership

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io"

	goerrors "github.com/goliatone/go-errors"
)

// tokenBytes is the entropy of bearer and CSRF tokens: 32 bytes = 256 bits.
const tokenBytes = 32

// GenerateToken returns a cryptographically random bearer token encoded as
// hex. It is the only secret ever placed in a cookie; the server keeps a
// hash of it, never the token itself.
func GenerateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "unable to generate token")
	}
	return hex.EncodeToString(b), nil
}

// HashToken is the one-way hash used to store and look up tokens at rest.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

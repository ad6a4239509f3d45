package membership

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/argon2"
)

const (
	argonAlgorithm   = "argon2id"
	argonMemory      = uint32(64 * 1024)
	argonTime        = uint32(3)
	argonParallelism = uint8(2)
	argonSaltLength  = 16
	argonKeyLength   = uint32(32)
)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = goerrors.New("password cannot be empty", goerrors.CategoryValidation).
	WithTextCode("EMPTY_PASSWORD").
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is returned when verification fails
var ErrMismatchedHashAndPassword = goerrors.New("password does not match", goerrors.CategoryAuth).
	WithTextCode("PASSWORD_MISMATCH").
	WithCode(goerrors.CodeUnauthorized)

// HashPassword will generate a password hash using argon2id with a fresh
// random salt, encoded in the PHC string format so the hash is
// self-describing.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	salt := make([]byte, argonSaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "unable to generate salt")
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonParallelism, argonKeyLength)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argonAlgorithm,
		argon2.Version,
		argonMemory,
		argonTime,
		argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// ComparePasswordAndHash will validate the given cleartext password matches
// the hashed password. Malformed hashes fail closed: the caller gets an
// error, never a match.
func ComparePasswordAndHash(password, hash string) error {
	memory, timeCost, parallelism, salt, key, err := decodeArgonHash(hash)
	if err != nil {
		return err
	}

	computed := argon2.IDKey([]byte(password), salt, timeCost, memory, parallelism, uint32(len(key)))
	if subtle.ConstantTimeCompare(computed, key) != 1 {
		return ErrMismatchedHashAndPassword
	}

	return nil
}

func decodeArgonHash(hash string) (memory, timeCost uint32, parallelism uint8, salt, key []byte, err error) {
	malformed := func(reason string) error {
		return goerrors.New("malformed password hash", goerrors.CategoryAuth).
			WithTextCode("MALFORMED_HASH").
			WithCode(goerrors.CodeUnauthorized).
			WithMetadata(map[string]any{"reason": reason})
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[0] != "" {
		return 0, 0, 0, nil, nil, malformed("field count")
	}

	if parts[1] != argonAlgorithm {
		return 0, 0, 0, nil, nil, malformed("algorithm")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return 0, 0, 0, nil, nil, malformed("version")
	}

	for _, pair := range strings.Split(parts[3], ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return 0, 0, 0, nil, nil, malformed("parameters")
		}
		v, perr := strconv.ParseUint(kv[1], 10, 32)
		if perr != nil {
			return 0, 0, 0, nil, nil, malformed("parameters")
		}
		switch kv[0] {
		case "m":
			memory = uint32(v)
		case "t":
			timeCost = uint32(v)
		case "p":
			parallelism = uint8(v)
		default:
			return 0, 0, 0, nil, nil, malformed("parameters")
		}
	}
	if memory == 0 || timeCost == 0 || parallelism == 0 {
		return 0, 0, 0, nil, nil, malformed("parameters")
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return 0, 0, 0, nil, nil, malformed("salt")
	}

	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return 0, 0, 0, nil, nil, malformed("digest")
	}

	return memory, timeCost, parallelism, salt, key, nil
}

type argonAuthenticator struct{}

// NewPasswordAuthenticator returns the default argon2id implementation
func NewPasswordAuthenticator() PasswordAuthenticator {
	return argonAuthenticator{}
}

func (argonAuthenticator) HashPassword(password string) (string, error) {
	return HashPassword(password)
}

func (argonAuthenticator) ComparePasswordAndHash(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}

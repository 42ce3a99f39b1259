// Package credential verifies submitted secrets against stored password hashes.
package credential

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// DummyHash is a well-formed argon2id hash that matches no password. Verifying
// against it costs the same as verifying against a real hash.
//
//nolint:gosec // not a credential
const DummyHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Verify reports whether plaintext matches storedHash.
//
// bcrypt ($2a$, $2b$, $2y$) and argon2id PHC strings are accepted. A malformed
// or unknown hash never matches.
func Verify(plaintext, storedHash string) bool {
	switch {
	case strings.HasPrefix(storedHash, "$argon2id$"):
		return verifyArgon2id(plaintext, storedHash)
	case strings.HasPrefix(storedHash, "$2a$"),
		strings.HasPrefix(storedHash, "$2b$"),
		strings.HasPrefix(storedHash, "$2y$"):
		return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext)) == nil
	default:
		return false
	}
}

// Upper bounds on stored argon2id cost parameters. Memory is in KiB.
const (
	maxArgon2Memory = 1 << 22
	maxArgon2Time   = 16
)

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func verifyArgon2id(plaintext, encoded string) bool {
	p, err := parseArgon2id(encoded)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(plaintext), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))

	return subtle.ConstantTimeCompare(computed, p.key) == 1
}

// parseArgon2id decodes $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>.
func parseArgon2id(encoded string) (argon2Params, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return argon2Params{}, fmt.Errorf("invalid argon2id hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return argon2Params{}, fmt.Errorf("invalid argon2id version: %w", err)
	}
	if version != argon2.Version {
		return argon2Params{}, fmt.Errorf("unsupported argon2id version %d", version)
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return argon2Params{}, fmt.Errorf("invalid argon2id parameters: %w", err)
	}
	if threads == 0 || threads > 255 || time == 0 || memory == 0 ||
		time > maxArgon2Time || memory > maxArgon2Memory {
		return argon2Params{}, fmt.Errorf("argon2id parameters out of range")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return argon2Params{}, fmt.Errorf("invalid argon2id salt: %w", err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return argon2Params{}, fmt.Errorf("invalid argon2id key: %w", err)
	}
	if len(key) == 0 || len(key) > 1024 {
		return argon2Params{}, fmt.Errorf("invalid argon2id key length %d", len(key))
	}

	return argon2Params{
		memory:  memory,
		time:    time,
		threads: uint8(threads),
		salt:    salt,
		key:     key,
	}, nil
}

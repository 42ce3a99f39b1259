package credential

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	saltLen = 16
	keyLen  = 32
)

// KDFParams holds argon2id cost parameters.
type KDFParams struct {
	Time   uint32
	MemKiB uint32
	Par    uint8
}

// DefaultKDFParams are the OWASP-recommended argon2id settings.
var DefaultKDFParams = KDFParams{Time: 1, MemKiB: 64 * 1024, Par: 4}

// Hasher produces argon2id password hashes in PHC string format.
type Hasher struct {
	params KDFParams
}

// NewHasher creates a Hasher. Zero fields fall back to DefaultKDFParams and
// costs above what Verify accepts are clamped.
func NewHasher(params KDFParams) *Hasher {
	params.Time = min(params.Time, maxArgon2Time)
	params.MemKiB = min(params.MemKiB, maxArgon2Memory)
	if params.Time == 0 {
		params.Time = DefaultKDFParams.Time
	}
	if params.MemKiB == 0 {
		params.MemKiB = DefaultKDFParams.MemKiB
	}
	if params.Par == 0 {
		params.Par = DefaultKDFParams.Par
	}
	return &Hasher{params: params}
}

// Hash returns the argon2id hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.MemKiB, h.params.Par, keyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemKiB,
		h.params.Time,
		h.params.Par,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

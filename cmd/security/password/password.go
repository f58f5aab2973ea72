package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2Version = 19 // argon2.Version (0x13)

// Hasher derives and verifies Argon2id credentials with fixed cost params.
// The zero value is not usable; construct with New.
type Hasher struct {
	params Params
}

// New returns a Hasher using the given cost parameters.
func New(p Params) Hasher {
	return Hasher{params: p}
}

// Hash derives a credential string from plaintext using a fresh random salt.
func (h Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(plaintext),
		salt,
		h.params.Iterations,
		h.params.MemoryKiB,
		h.params.Parallelism,
		h.params.KeyLength,
	)

	b64 := base64.RawStdEncoding
	enc := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Version,
		h.params.MemoryKiB,
		h.params.Iterations,
		h.params.Parallelism,
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	)

	return enc, nil
}

// Verify reports whether plaintext matches the stored credential.
// Returns (false, ErrInvalidHash) when stored is malformed or its embedded
// parameters fall outside the accepted bounds; (false, nil) for a mismatch.
func (h Hasher) Verify(stored, plaintext string) (bool, error) {
	params, salt, expected, err := decode(stored)
	if err != nil {
		return false, err
	}

	// Stored strings are untrusted: accept older/cheaper settings but refuse
	// costs far above the configured ceiling.
	if !withinBounds(params, h.params) {
		return false, ErrInvalidHash
	}

	key := argon2.IDKey(
		[]byte(plaintext),
		salt,
		params.Iterations,
		params.MemoryKiB,
		params.Parallelism,
		uint32(len(expected)), // #nosec G115 -- length bounded by decode(); safe conversion.
	)

	if subtle.ConstantTimeCompare(key, expected) == 1 {
		return true, nil
	}
	return false, nil
}

func withinBounds(got, limits Params) bool {
	if got.MemoryKiB > limits.MemoryKiB*2 {
		return false
	}
	if got.Iterations > limits.Iterations*2 {
		return false
	}
	if got.Parallelism > limits.Parallelism*2 {
		return false
	}
	if got.SaltLength < 8 || got.SaltLength > 64 {
		return false
	}
	if got.KeyLength < 16 || got.KeyLength > 128 {
		return false
	}
	return true
}

// decode parses a stored credential into params, salt and expected key.
func decode(stored string) (Params, []byte, []byte, error) {
	parts := strings.Split(stored, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrInvalidHash
	}

	if parts[2] != fmt.Sprintf("v=%d", argon2Version) {
		return Params{}, nil, nil, ErrInvalidHash
	}

	var mem, it, par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &it, &par); err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}
	if mem == 0 || it == 0 || par == 0 || par > 255 {
		return Params{}, nil, nil, ErrInvalidHash
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}

	params := Params{
		MemoryKiB:   mem,
		Iterations:  it,
		Parallelism: uint8(par),          // #nosec G115 -- bounded above; safe conversion.
		SaltLength:  uint32(len(salt)),   // #nosec G115 -- bounded by withinBounds; safe conversion.
		KeyLength:   uint32(len(key)),    // #nosec G115 -- bounded by withinBounds; safe conversion.
	}

	return params, salt, key, nil
}

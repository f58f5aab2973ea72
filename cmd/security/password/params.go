package password

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Params controls Argon2id hashing cost. MemoryKiB is in KiB, as required by
// argon2.IDKey. Params are fixed process-wide at startup.
type Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams returns a baseline suitable for interactive logins.
// Parallelism follows the host CPU count, clamped to [1..4] so resource
// usage stays predictable in containers.
func DefaultParams() Params {
	threads := runtime.NumCPU()
	if threads <= 0 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Params{
		MemoryKiB:   64 * 1024, // 64 MiB
		Iterations:  3,
		Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4] above; safe conversion.
		SaltLength:  16,
		KeyLength:   32,
	}
}

// ParamsFromEnv loads hashing cost overrides from environment variables.
//
// Env surface:
//   - CONDUIT_ARGON2_MEMORY_KIB
//   - CONDUIT_ARGON2_ITERATIONS
//   - CONDUIT_ARGON2_PARALLELISM
func ParamsFromEnv() (Params, error) {
	p := DefaultParams()

	if v, ok := os.LookupEnv("CONDUIT_ARGON2_MEMORY_KIB"); ok {
		u, err := atou32(v, 8*1024, 1024*1024) // 8 MiB .. 1 GiB
		if err != nil {
			return Params{}, fmt.Errorf("CONDUIT_ARGON2_MEMORY_KIB: %w", err)
		}
		p.MemoryKiB = u
	}

	if v, ok := os.LookupEnv("CONDUIT_ARGON2_ITERATIONS"); ok {
		u, err := atou32(v, 1, 20)
		if err != nil {
			return Params{}, fmt.Errorf("CONDUIT_ARGON2_ITERATIONS: %w", err)
		}
		p.Iterations = u
	}

	if v, ok := os.LookupEnv("CONDUIT_ARGON2_PARALLELISM"); ok {
		u, err := atou32(v, 1, 255)
		if err != nil {
			return Params{}, fmt.Errorf("CONDUIT_ARGON2_PARALLELISM: %w", err)
		}
		p.Parallelism = uint8(u) // #nosec G115 -- bounded to [1..255] by atou32.
	}

	return p, nil
}

func atou32(s string, minVal, maxVal uint32) (uint32, error) {
	s = strings.TrimSpace(s)
	u64, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an unsigned integer")
	}

	u := uint32(u64)
	if u < minVal || u > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return u, nil
}

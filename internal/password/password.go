// internal/password/password.go
//
// Salted, memory-hard password hashing (argon2id).
//
// Context
// -------
// Account passwords are stored as PHC-formatted argon2id strings:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<b64 salt>$<b64 key>
//
// Hash() draws a fresh random salt per call; Verify() re-derives the
// key with the parameters embedded in the stored string and compares in
// constant time, so parameter upgrades never invalidate old hashes.
//
// Notes
// -----
// • Verify answers only yes/no.  Callers must not leak which part of a
//   credential check failed.

package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Default parameters: 64 MiB, 3 passes, 2 lanes.  Tuned for an
// interactive login path on a small VPS.
const (
	defaultMemoryKiB   = 64 * 1024
	defaultTime        = 3
	defaultParallelism = 2
	saltLen            = 16
	keyLen             = 32
)

// ErrMalformedHash is returned when a stored hash cannot be parsed.
var ErrMalformedHash = errors.New("password: malformed hash string")

// Hash returns a PHC-formatted argon2id hash of plaintext.
func Hash(plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(plaintext), salt,
		defaultTime, defaultMemoryKiB, defaultParallelism, keyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, defaultMemoryKiB, defaultTime, defaultParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether candidate matches the stored PHC hash.  Any
// parse or version problem counts as a mismatch plus an error for the
// log; callers surface only the boolean.
func Verify(stored, candidate string) (bool, error) {
	memory, time, par, salt, key, err := parsePHC(stored)
	if err != nil {
		return false, err
	}

	derived := argon2.IDKey([]byte(candidate), salt,
		time, memory, par, uint32(len(key)))

	return subtle.ConstantTimeCompare(derived, key) == 1, nil
}

// parsePHC splits "$argon2id$v=19$m=..,t=..,p=..$salt$key".
func parsePHC(s string) (memory, time uint32, par uint8, salt, key []byte, err error) {
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	for _, kv := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return 0, 0, 0, nil, nil, ErrMalformedHash
		}
		n, perr := strconv.ParseUint(v, 10, 32)
		if perr != nil {
			return 0, 0, 0, nil, nil, ErrMalformedHash
		}
		switch k {
		case "m":
			memory = uint32(n)
		case "t":
			time = uint32(n)
		case "p":
			par = uint8(n)
		default:
			return 0, 0, 0, nil, nil, ErrMalformedHash
		}
	}
	if memory == 0 || time == 0 || par == 0 {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}
	if key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(key) == 0 {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}
	return memory, time, par, salt, key, nil
}

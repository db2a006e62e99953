package cryptox

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

// Argon2id parameters. Tuned for interactive logins.
const (
	iterations  = 3
	memory      = 64 * 1024 // KiB
	parallelism = 2
	saltLength  = 16
	keyLength   = 32
)

// ErrPasswordMismatch is returned when a password does not match its hash.
var ErrPasswordMismatch = errors.New("cryptox: password mismatch")

var pepper string

// SetPepper installs a process-wide pepper mixed into password hashes.
// Call once during startup, before any Hash/Verify.
func SetPepper(p string) { pepper = p }

// HashPassword generates a PHC-format Argon2id hash string including salt
// and parameters.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password+pepper), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword compares a plaintext password against a PHC-style Argon2id
// hash. Returns ErrPasswordMismatch when they do not match.
func VerifyPassword(password, encodedHash string) error {
	// PHC format: $argon2id$v=19$m=X,t=Y,p=Z$salt$hash
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return errors.New("cryptox: invalid hash format")
	}

	var m, t uint32
	var p uint8
	for param := range strings.SplitSeq(parts[3], ",") {
		k, v, ok := strings.Cut(param, "=")
		if !ok {
			return errors.New("cryptox: invalid hash parameters")
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return errors.New("cryptox: invalid hash parameters")
		}
		switch k {
		case "m":
			m = uint32(n)
		case "t":
			t = uint32(n)
		case "p":
			p = uint8(n)
		}
	}
	if m == 0 || t == 0 || p == 0 {
		return errors.New("cryptox: invalid hash parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return errors.New("cryptox: invalid salt encoding")
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return errors.New("cryptox: invalid hash encoding")
	}

	got := argon2.IDKey([]byte(password+pepper), salt, t, m, p, uint32(len(want)))
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

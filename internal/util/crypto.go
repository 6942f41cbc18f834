package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 100_000
	pbkdf2KeyLen     = 64
	saltLen          = 16
)

// HashPassword derives a PBKDF2-SHA256 hash and returns it in the stored
// "hex(salt):hex(hash)" form.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is empty")
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(hash), nil
}

// CheckPassword verifies a plaintext password against a stored hash. Legacy
// bcrypt hashes ("$2..." prefix) from the old admin module still verify;
// callers should rehash those via NeedsRehash after a successful login.
func CheckPassword(password, stored string) bool {
	if password == "" || stored == "" {
		return false
	}

	if NeedsRehash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}

	parts := strings.Split(stored, ":")
	if len(parts) != 2 {
		return false
	}

	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return false
	}
	expected, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}

	hash := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, len(expected), sha256.New)

	// constant time compare
	if len(hash) != len(expected) {
		return false
	}
	var diff byte
	for i := range hash {
		diff |= hash[i] ^ expected[i]
	}
	return diff == 0
}

// NeedsRehash reports whether a stored hash uses the retired bcrypt scheme.
func NeedsRehash(stored string) bool {
	return strings.HasPrefix(stored, "$2")
}

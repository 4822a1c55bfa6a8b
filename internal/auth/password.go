package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 12

const (
	// HasherSHA256 stores an unsalted SHA-256 hex digest. It is the format of
	// existing user files and is weak against offline guessing.
	HasherSHA256 = "sha256"
	// HasherBcrypt stores a salted bcrypt hash.
	HasherBcrypt = "bcrypt"
)

// HashPassword digests password with the named scheme. The password is used
// as given, without trimming, so existing digests keep matching.
func HashPassword(password, scheme string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is required")
	}

	switch normalizeScheme(scheme) {
	case HasherBcrypt:
		hash, err := bcrypt.GenerateFromPassword([]byte(password), DefaultBcryptCost)
		if err != nil {
			return "", fmt.Errorf("hash password: %w", err)
		}
		return string(hash), nil
	case HasherSHA256:
		return sha256Hex(password), nil
	default:
		return "", fmt.Errorf("unknown password hasher %q", scheme)
	}
}

// VerifyPassword accepts both bcrypt hashes and SHA-256 hex digests.
func VerifyPassword(password, hash string) bool {
	trimmedHash := strings.TrimSpace(hash)
	if password == "" || trimmedHash == "" {
		return false
	}
	if isBcryptHash(trimmedHash) {
		return bcrypt.CompareHashAndPassword([]byte(trimmedHash), []byte(password)) == nil
	}
	candidate := sha256Hex(password)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(strings.ToLower(trimmedHash))) == 1
}

// UserID derives the stable public id for an email: the first 12 hex
// characters of its SHA-256 digest.
func UserID(email string) string {
	return sha256Hex(email)[:12]
}

func sha256Hex(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func isBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

func normalizeScheme(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return HasherSHA256
	}
	return value
}

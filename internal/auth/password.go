// Package auth provides credential hashing and JWT token management for the
// blog API. Password storage delegates to bcrypt; token issuance and
// verification delegate to github.com/golang-jwt/jwt.
package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a raw password with bcrypt at the default cost.
func HashPassword(raw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether raw matches the stored bcrypt hash.
func VerifyPassword(raw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

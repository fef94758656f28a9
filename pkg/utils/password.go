package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes the plain password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a plain password with a hashed password.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ValidatePasswordFormat rejects passwords that are empty or not plain
// printable text. Strength scoring happens separately.
func ValidatePasswordFormat(password string) bool {
	if password == "" {
		return false
	}
	for _, r := range password {
		if r == '\n' || r == '\r' || r == 0 {
			return false
		}
	}
	return true
}

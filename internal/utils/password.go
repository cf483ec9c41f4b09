package utils

import "golang.org/x/crypto/bcrypt"

// BcryptCost applies to every stored password hash.
const BcryptCost = 14

// HashPassword derives the bcrypt hash stored on the user document.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasswordHash reports whether password matches the stored hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

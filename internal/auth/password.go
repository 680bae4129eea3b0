package auth

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt work factor applied to every stored password.
const PasswordCost = 10

// HashPassword returns the bcrypt encoding of plaintext. Salt and digest are
// stored together in the returned string.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), PasswordCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches hash. A malformed hash is
// treated as a mismatch.
func VerifyPassword(plaintext string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

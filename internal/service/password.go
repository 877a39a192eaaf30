package service

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the work factor the rest of the system was sized for.
const bcryptCost = 10

// HashPassword derives a salted bcrypt digest from the plaintext.
// The salt is generated fresh and embedded in the digest.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether plain matches the stored digest.
// A mismatch is not an error, it is just false.
func CheckPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

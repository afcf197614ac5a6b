package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes an account password at the given cost.
// Cost comes from config so tests can run at the cheap end.
func HashPassword(plain string, cost int) (string, error) {
    b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
    if err != nil {
        return "", err
    }
    return string(b), nil
}

// VerifyPassword reports whether plain matches the stored hash.
// bcrypt's comparison is constant time, so login timing leaks nothing.
func VerifyPassword(hash, plain string) bool {
    return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

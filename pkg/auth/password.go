package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword generates a bcrypt hash of the password. The plaintext is
// never stored or logged anywhere downstream of this call.
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckPassword compares a bcrypt hashed password with its possible plaintext
// equivalent using bcrypt's constant-time comparison.
func CheckPassword(password, hashedPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// DummyCompare burns the same work as a real verification. Called on unknown
// usernames so response timing does not reveal whether an account exists.
func DummyCompare(password string) {
	_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

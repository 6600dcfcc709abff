// internal/app/system/credentials/credentials.go
package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	// PasswordLength is the length of generated member passwords.
	PasswordLength = 12
	// BcryptCost for hashing generated passwords.
	BcryptCost = 10
)

// charset covers upper/lower case letters, digits, and a fixed punctuation
// set. Kept stable so generated passwords are typeable everywhere.
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"

// Generate returns a fresh random password and its bcrypt hash. The
// plaintext is surfaced exactly once (in the approval notification) and is
// never stored; only the hash is persisted on the account.
func Generate() (plaintext, hash string, err error) {
	buf := make([]byte, PasswordLength)
	max := big.NewInt(int64(len(charset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", "", fmt.Errorf("random source: %w", err)
		}
		buf[i] = charset[n.Int64()]
	}
	plaintext = string(buf)

	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), BcryptCost)
	if err != nil {
		return "", "", fmt.Errorf("hash password: %w", err)
	}
	return plaintext, string(h), nil
}

// Verify reports whether plaintext matches a stored hash. bcrypt's
// comparison is constant-time.
func Verify(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// internal/credential/password.go
//
// bcrypt helpers shared by both principal kinds.
package credential

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced before hashing for every credential
// write (central registration, site-admin upsert, password change).
const MinPasswordLength = 8

// ErrPasswordTooShort rejects plaintexts below MinPasswordLength.
var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

// DummyHash is a valid bcrypt digest of random bytes generated at
// process start.  Login handlers compare against it when the account
// does not exist, so the unknown-email path costs the same as a real
// comparison and timing cannot be used to enumerate accounts.  No
// plaintext can match it short of guessing 32 random bytes.
var DummyHash = func() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	h, err := bcrypt.GenerateFromPassword(buf, bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

// HashPassword returns the bcrypt hash of plain at the default work
// factor.  Length policy is applied here so no caller can forget it.
func HashPassword(plain string) (string, error) {
	if len(plain) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether plain matches the stored hash.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

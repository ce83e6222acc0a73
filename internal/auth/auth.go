package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// NewToken returns a 32-byte random token, hex encoded. Used for session
// and CSRF tokens; the value is opaque and only meaningful server-side.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// DeriveCancelToken derives the cancellation credential for an appointment:
// a digest of the id and the stored, lower-cased email. It is pure and has
// no expiry, so the link embedded in a confirmation email keeps working
// without any server-side token state. Changing the construction breaks
// links in already-sent emails.
func DeriveCancelToken(appointmentID, email string) string {
	h := sha256.Sum256([]byte(appointmentID + ":" + strings.ToLower(email)))
	return hex.EncodeToString(h[:])
}

// VerifyCancelToken recomputes the token and compares in constant time.
func VerifyCancelToken(appointmentID, email, supplied string) bool {
	want := DeriveCancelToken(appointmentID, email)
	return subtle.ConstantTimeCompare([]byte(want), []byte(supplied)) == 1
}

package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"center-booking-api/internal/cache"
)

const (
	codeTTL         = 10 * time.Minute
	maxCodeAttempts = 3
)

var (
	ErrCodeNotFound    = errors.New("code not found or expired")
	ErrTooManyAttempts = errors.New("too many attempts, request a new code")
)

type twoFactorCode struct {
	code      string
	createdAt time.Time
	expiresAt time.Time
	attempts  int
}

// Challenge manages one pending 6-digit code per email. Issuing a new code
// silently discards any prior one.
type Challenge struct {
	codes *cache.Cache[twoFactorCode]
}

func NewChallenge() *Challenge {
	return &Challenge{codes: cache.New[twoFactorCode](time.Minute)}
}

func (c *Challenge) Stop() { c.codes.Stop() }

// Issue generates a fresh code for email and returns it for delivery.
func (c *Challenge) Issue(email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	now := time.Now()
	c.codes.Set(codeKey(email), twoFactorCode{
		code:      code,
		createdAt: now,
		expiresAt: now.Add(codeTTL),
	}, codeTTL)
	return code, nil
}

// Verify checks a submitted code. The attempt ceiling is enforced before
// the comparison, so an exhausted challenge rejects even the right code.
// A match consumes the entry; replaying it afterwards fails as not found.
func (c *Challenge) Verify(email, submitted string) error {
	var result error
	c.codes.Mutate(codeKey(email), func(e twoFactorCode, ok bool) (twoFactorCode, time.Duration, bool) {
		if !ok {
			result = ErrCodeNotFound
			return e, 0, false
		}
		if e.attempts >= maxCodeAttempts {
			result = ErrTooManyAttempts
			return e, 0, false
		}
		e.attempts++
		if e.code == submitted {
			result = nil
			return e, 0, false
		}
		result = fmt.Errorf("invalid code, %d attempt(s) remaining", maxCodeAttempts-e.attempts)
		return e, time.Until(e.expiresAt), true
	})
	return result
}

func codeKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package session

import (
	"time"

	"center-booking-api/internal/auth"
	"center-booking-api/internal/cache"
)

const csrfTTL = time.Hour

// CSRFStore issues and checks the tokens required on state-changing admin
// requests. GET requests are exempt by middleware policy; issuing to a
// caller without a session grants nothing, since verification only gates
// requests that already passed session auth.
type CSRFStore struct {
	tokens *cache.Cache[string]
}

func NewCSRFStore() *CSRFStore {
	return &CSRFStore{tokens: cache.New[string](time.Minute)}
}

func (c *CSRFStore) Stop() { c.tokens.Stop() }

// Issue mints a token bound to sessionID (may be empty for anonymous
// callers) and reports how long it stays valid.
func (c *CSRFStore) Issue(sessionID string) (string, time.Duration, error) {
	tok, err := auth.NewToken()
	if err != nil {
		return "", 0, err
	}
	c.tokens.Set(tok, sessionID, csrfTTL)
	return tok, csrfTTL, nil
}

// Verify reports whether token is known and unexpired. An expired token is
// evicted on detection.
func (c *CSRFStore) Verify(token string) bool {
	if token == "" {
		return false
	}
	_, ok := c.tokens.Get(token)
	return ok
}

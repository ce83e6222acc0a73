package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"center-booking-api/internal/middleware"
	"center-booking-api/internal/model"
	"center-booking-api/internal/session"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:54321"
	assert.Equal(t, "10.0.0.1", middleware.ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", middleware.ClientIP(r))
}

func TestCSRFExemptsReads(t *testing.T) {
	store := session.NewCSRFStore()
	defer store.Stop()
	h := middleware.CSRF(store)(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFRejectsMissingToken(t *testing.T) {
	store := session.NewCSRFStore()
	defer store.Stop()
	h := middleware.CSRF(store)(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "CSRF")
}

func TestCSRFAcceptsIssuedToken(t *testing.T) {
	store := session.NewCSRFStore()
	defer store.Stop()
	tok, _, err := store.Issue("sess")
	require.NoError(t, err)

	h := middleware.CSRF(store)(okHandler)
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set(middleware.CSRFHeader, tok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireVerified(t *testing.T) {
	sessions := session.NewStore()
	defer sessions.Stop()
	admin := &model.Admin{ID: "a1", Email: "admin@center.fr", Role: "admin"}

	seen := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := r.Context().Value(middleware.SessionKey).(session.Session)
		require.True(t, ok)
		assert.Equal(t, "a1", sess.AdminID)
		w.WriteHeader(http.StatusOK)
	})
	h := middleware.RequireVerified(sessions)(seen)

	// no cookie
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// unknown token
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "bogus"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// temporary session awaiting 2FA
	temp, err := sessions.Create(admin, false)
	require.NoError(t, err)
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: temp})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "two-factor verification required")

	// verified session passes and lands in the context
	require.True(t, sessions.MarkVerified(temp))
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: temp})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
}

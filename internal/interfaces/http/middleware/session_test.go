package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ecsledger/backend/internal/infrastructure/auth"
	"github.com/ecsledger/backend/internal/infrastructure/config"
	"github.com/ecsledger/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type failingRevocations struct{}

func (failingRevocations) Revoke(context.Context, string, time.Duration) error { return nil }
func (failingRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis: connection refused")
}

type sessionFixture struct {
	sessions    *auth.SessionService
	revocations *auth.InMemoryRevocationList
	router      *gin.Engine
	clock       time.Time
}

func newSessionFixture(t *testing.T, revocations auth.RevocationList) *sessionFixture {
	t.Helper()
	f := &sessionFixture{clock: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	f.sessions = auth.NewSessionService(config.JWTConfig{Secret: testSecret}, auth.WithClock(func() time.Time { return f.clock }))
	if revocations == nil {
		f.revocations = auth.NewInMemoryRevocationList()
		revocations = f.revocations
	}

	f.router = gin.New()
	f.router.Use(Session(SessionConfig{
		Sessions:    f.sessions,
		Revocations: revocations,
		CookieName:  "session",
	}))
	f.router.GET("/api/v1/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": GetSessionUserID(c),
			"ctx_uid": logger.GetUserID(c.Request.Context()),
		})
	})
	f.router.GET("/companies", func(c *gin.Context) {
		c.String(http.StatusOK, "page")
	})
	f.router.POST("/api/v1/auth/login", func(c *gin.Context) {
		_, ok := GetSessionClaims(c)
		c.JSON(http.StatusOK, gin.H{"has_claims": ok})
	})
	return f
}

func (f *sessionFixture) issue(t *testing.T) *auth.Session {
	t.Helper()
	s, err := f.sessions.IssueSession(auth.Identity{UserID: 7, Username: "mira"})
	require.NoError(t, err)
	return s
}

func (f *sessionFixture) get(path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func withCookie(token string) func(*http.Request) {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "session", Value: token})
	}
}

func TestSessionValidCookie(t *testing.T) {
	f := newSessionFixture(t, nil)
	s := f.issue(t)

	w := f.get("/api/v1/stats", withCookie(s.Token))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id": 7, "ctx_uid": 7}`, w.Body.String())
}

func TestSessionBearerHeader(t *testing.T) {
	f := newSessionFixture(t, nil)
	s := f.issue(t)

	w := f.get("/api/v1/stats", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+s.Token)
	})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionMissingTokenOnAPI(t *testing.T) {
	f := newSessionFixture(t, nil)

	w := f.get("/api/v1/stats", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_SESSION_REJECTED")
}

func TestSessionExpiredTokenRedirectsPages(t *testing.T) {
	f := newSessionFixture(t, nil)
	s := f.issue(t)
	f.clock = f.clock.Add(31 * 24 * time.Hour)

	w := f.get("/companies", withCookie(s.Token))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, auth.LoginPath, w.Header().Get("Location"))
}

func TestSessionPublicPathWithoutToken(t *testing.T) {
	f := newSessionFixture(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"has_claims": false}`, w.Body.String())
}

func TestSessionRevokedToken(t *testing.T) {
	f := newSessionFixture(t, nil)
	s := f.issue(t)
	require.NoError(t, f.revocations.Revoke(context.Background(), s.JTI, time.Hour))

	w := f.get("/api/v1/stats", withCookie(s.Token))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionRevocationStoreDown(t *testing.T) {
	f := newSessionFixture(t, failingRevocations{})
	s := f.issue(t)

	w := f.get("/api/v1/stats", withCookie(s.Token))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*http.Request)
		want   string
	}{
		{"cookie", withCookie("from-cookie"), "from-cookie"},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, "abc"},
		{"lowercase bearer", func(r *http.Request) { r.Header.Set("Authorization", "bearer abc") }, "abc"},
		{"basic is ignored", func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }, ""},
		{"cookie wins", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "session", Value: "c"})
			r.Header.Set("Authorization", "Bearer h")
		}, "c"},
		{"none", func(*http.Request) {}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			tt.mutate(c.Request)

			assert.Equal(t, tt.want, extractToken(c, "session"))
		})
	}
}

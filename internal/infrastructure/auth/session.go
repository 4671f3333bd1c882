// Package auth issues and checks the signed session tokens that guard every
// non-public route.
package auth

import (
	"errors"
	"time"

	"github.com/ecsledger/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionTTL is how long a session stays valid after login
const DefaultSessionTTL = 30 * 24 * time.Hour

// ErrSessionRejected is the single outcome of every validation failure:
// bad signature, wrong algorithm, expired, malformed or missing claims.
var ErrSessionRejected = errors.New("session rejected")

// Identity is what a session asserts about its holder
type Identity struct {
	UserID   uint64
	Username string
}

// SessionClaims is the JWT payload: {id, username, exp} plus jti and iat
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID   uint64 `json:"id"`
	Username string `json:"username"`
}

// Identity returns the holder asserted by the claims
func (c *SessionClaims) Identity() Identity {
	return Identity{UserID: c.UserID, Username: c.Username}
}

// RemainingTTL returns the time left before expiry, never negative
func (c *SessionClaims) RemainingTTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if d := c.ExpiresAt.Time.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Session is a freshly issued token
type Session struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// SessionService signs and verifies session tokens with HMAC-SHA256
type SessionService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// SessionOption customizes a SessionService
type SessionOption func(*SessionService)

// WithClock replaces time.Now for issuing and validating tokens
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionService) { s.now = now }
}

// NewSessionService creates a session service from the jwt config section
func NewSessionService(cfg config.JWTConfig, opts ...SessionOption) *SessionService {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s := &SessionService{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the lifetime given to new sessions
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Now returns the service clock's current time
func (s *SessionService) Now() time.Time {
	return s.now()
}

// IssueSession signs a new token for id
func (s *SessionService) IssueSession(id Identity) (*Session, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	jti := uuid.NewString()

	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:   id.UserID,
		Username: id.Username,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, JTI: jti, ExpiresAt: expiresAt}, nil
}

// ValidateSession verifies the signature and expiry of token. Any failure
// is reported as ErrSessionRejected.
func (s *SessionService) ValidateSession(token string) (*SessionClaims, error) {
	if token == "" {
		return nil, ErrSessionRejected
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, ErrSessionRejected
	}
	if claims.UserID == 0 || claims.Username == "" || claims.ID == "" {
		return nil, ErrSessionRejected
	}
	return claims, nil
}

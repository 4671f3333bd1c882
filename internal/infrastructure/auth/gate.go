package auth

import "strings"

// LoginPath is where rejected requests are sent
const LoginPath = "/login"

// publicPaths are reachable without a session
var publicPaths = map[string]struct{}{
	"/login":              {},
	"/signup":             {},
	"/api/v1/auth/login":  {},
	"/api/v1/auth/signup": {},
	"/health":             {},
}

const staticPrefix = "/static/"

// Outcome is the gate's verdict on a request
type Outcome int

const (
	// Allow lets the request through
	Allow Outcome = iota
	// Redirect sends the request to Decision.Location
	Redirect
)

// Decision is the result of Gate
type Decision struct {
	Outcome  Outcome
	Location string
	// Claims is set when the request carried a valid session
	Claims *SessionClaims
}

// Allowed reports whether the request may proceed
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// IsPublicPath reports whether path is on the allow-list
func IsPublicPath(path string) bool {
	if _, ok := publicPaths[path]; ok {
		return true
	}
	return strings.HasPrefix(path, staticPrefix)
}

// Gate decides whether a request for path carrying token may proceed.
// Public paths always pass; every other path needs a valid session.
// It performs no I/O: revocation is checked by the caller.
func (s *SessionService) Gate(path, token string) Decision {
	if IsPublicPath(path) {
		return Decision{Outcome: Allow}
	}
	claims, err := s.ValidateSession(token)
	if err != nil {
		return Decision{Outcome: Redirect, Location: LoginPath}
	}
	return Decision{Outcome: Allow, Claims: claims}
}
